package parsers

import (
	tok "github.com/mfkiwl/xocfe/tokenizers"

	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/types"
)

var simpleSpecFlags = map[string]types.Des{
	"void":     types.SPEC_VOID,
	"_Bool":    types.SPEC_BOOL,
	"char":     types.SPEC_CHAR,
	"short":    types.SPEC_SHORT,
	"int":      types.SPEC_INT,
	"long":     types.SPEC_LONG,
	"float":    types.SPEC_FLOAT,
	"double":   types.SPEC_DOUBLE,
	"signed":   types.SPEC_SIGNED,
	"unsigned": types.SPEC_UNSIGNED,
}

var storageFlags = map[string]types.Des{
	"auto":     types.STOR_AUTO,
	"register": types.STOR_REGISTER,
	"static":   types.STOR_STATIC,
	"extern":   types.STOR_EXTERN,
	"inline":   types.STOR_INLINE,
	"typedef":  types.STOR_TYPEDEF,
}

var qualifierFlags = map[string]types.Des{
	"const":    types.QUAL_CONST,
	"volatile": types.QUAL_VOLATILE,
	"restrict": types.QUAL_RESTRICT,
}

// isSpecStart reports whether the current token can begin a declaration
// specifier, counting visible typedef names.
func (p *Parser) isSpecStart(t tok.Token) bool {
	if _, ok := simpleSpecFlags[t.T]; ok {
		return true
	}
	if _, ok := storageFlags[t.T]; ok {
		return true
	}
	if _, ok := qualifierFlags[t.T]; ok {
		return true
	}
	switch t.T {
	case "struct", "union", "enum":
		return true
	}
	if t.T == tok.ID {
		_, ok := scopes.FindTypedefInOuter(p.scope.Cur(), t.V)
		return ok
	}
	return false
}

// isTypeNameStart is isSpecStart minus storage classes, for cast and
// sizeof positions.
func (p *Parser) isTypeNameStart(t tok.Token) bool {
	if _, ok := storageFlags[t.T]; ok {
		return false
	}
	return p.isSpecStart(t)
}

// parseSpecifier accumulates storage-class, qualifier and type-keyword
// tokens into one TypeSpec bitset, then complements and legality-checks
// it. Returns nil after consuming to ';' on an illegal combination.
func (p *Parser) parseSpecifier(allowStorage bool) *types.TypeSpec {
	ts := types.NewTypeSpec()
	seen := false

	for !p.cur.IsEOF() {
		if flag, ok := simpleSpecFlags[p.cur.T]; ok {
			if p.cur.T == "long" {
				p.addLong(ts)
			} else {
				if ts.Has(flag) && (flag == types.SPEC_SIGNED || flag == types.SPEC_UNSIGNED) {
					p.tracker.Err(p.line(), "duplicate '%s'", p.cur.T)
				}
				ts.Set(flag)
			}
			seen = true
			p.next()
			continue
		}
		if flag, ok := storageFlags[p.cur.T]; ok {
			if !allowStorage {
				p.tracker.Err(p.line(), "storage class '%s' is not allowed here", p.cur.T)
			} else if ts.Has(flag) {
				p.tracker.Err(p.line(), "duplicate storage class '%s'", p.cur.T)
			}
			ts.Set(flag)
			seen = true
			p.next()
			continue
		}
		if flag, ok := qualifierFlags[p.cur.T]; ok {
			if ts.Has(flag) {
				p.tracker.Err(p.line(), "same type qualifier used more than once")
			}
			ts.Set(flag)
			seen = true
			p.next()
			continue
		}
		if p.cur.T == "struct" || p.cur.T == "union" {
			p.parseAggrSpec(ts, p.cur.T == "union")
			seen = true
			continue
		}
		if p.cur.T == "enum" {
			p.parseEnumSpec(ts)
			seen = true
			continue
		}
		if p.cur.T == tok.ID {
			if !p.foldTypeIdent(ts, &seen) {
				break
			}
			continue
		}
		break
	}

	if !seen {
		return nil
	}
	types.ComplementSpec(ts)
	if err := types.CheckSpecLegally(ts); err != nil {
		p.tracker.Err(p.line(), "%s", err.Error())
		p.consumeToSemi()
		return nil
	}
	return ts
}

// two longs collapse into long long, a third is an error
func (p *Parser) addLong(ts *types.TypeSpec) {
	if ts.Has(types.SPEC_LONGLONG) {
		p.tracker.Err(p.line(), "too many 'long' for a type")
		return
	}
	if ts.Has(types.SPEC_LONG) {
		ts.Remove(types.SPEC_LONG)
		ts.Set(types.SPEC_LONGLONG)
		return
	}
	ts.Set(types.SPEC_LONG)
}

// foldTypeIdent resolves an identifier seen in specifier position, in
// order against typedef names, struct tags and union tags of the visible
// scopes. Returns false when the identifier is not a type (it is the
// declarator name) and the specifier loop should stop.
func (p *Parser) foldTypeIdent(ts *types.TypeSpec, seen *bool) bool {
	name := p.cur.V
	hasBase := ts.IsSimpleBase() || ts.Has(types.SPEC_STRUCT|types.SPEC_UNION|types.SPEC_ENUM|types.SPEC_USER_TYPE)

	if td, ok := scopes.FindTypedefInOuter(p.scope.Cur(), name); ok {
		if hasBase {
			p.tracker.Err(p.line(), "'%s' redeclared", name)
			return false
		}
		ts.Set(types.SPEC_USER_TYPE)
		ts.UserType = td
		*seen = true
		p.next()
		return true
	}
	if hasBase {
		return false
	}
	if a, ok := scopes.FindStructInOuter(p.scope.Cur(), name); ok {
		ts.Set(types.SPEC_STRUCT)
		ts.Aggr = a
		*seen = true
		p.next()
		return true
	}
	if a, ok := scopes.FindUnionInOuter(p.scope.Cur(), name); ok {
		ts.Set(types.SPEC_UNION)
		ts.Aggr = a
		*seen = true
		p.next()
		return true
	}
	return false
}

// parseAggrSpec handles struct/union references, forward declarations and
// definitions, folding the aggregate into ts.
func (p *Parser) parseAggrSpec(ts *types.TypeSpec, isUnion bool) {
	kw := "struct"
	if isUnion {
		kw = "union"
	}
	line := p.line()
	p.next()

	var tagName string
	if p.cur.T == tok.ID {
		tagName = p.cur.V
		p.next()
	}

	if p.cur.T != "{" {
		// pure reference; forward-declare on first sight
		if tagName == "" {
			p.tracker.Err(line, "expected tag or body after '%s'", kw)
			return
		}
		a, ok := p.findAggrInOuter(tagName, isUnion)
		if !ok {
			a = types.NewAggr(p.strtab.Add(tagName), isUnion, p.scope.Cur(), p.pragmaAlign)
			p.registerAggr(a)
		}
		p.setAggrSpec(ts, a, isUnion)
		return
	}

	// definition
	var a *types.Aggr
	if tagName != "" {
		if found, ok := p.findAggrInOuter(tagName, isUnion); ok {
			if found.Complete {
				p.tracker.Err(line, "'%s %s' redefined", kw, tagName)
				// parse the body into a throwaway to keep going
				a = types.NewAggr(nil, isUnion, p.scope.Cur(), p.pragmaAlign)
			} else {
				a = found
			}
		} else {
			a = types.NewAggr(p.strtab.Add(tagName), isUnion, p.scope.Cur(), p.pragmaAlign)
			p.registerAggr(a)
		}
	} else {
		a = types.NewAggr(nil, isUnion, p.scope.Cur(), p.pragmaAlign)
	}
	if p.pragmaAlign > 0 {
		a.PackAlign = p.pragmaAlign
	}

	p.match("{")
	fields := p.parseFieldList()
	if p.cur.T != "}" {
		p.tracker.Err(p.line(), "expected '}'")
		p.consumeToSemi()
	} else {
		p.next()
	}

	// an empty body gets one synthetic byte-sized field
	if len(fields) == 0 {
		fields = append(fields, p.placeholderField())
	}
	a.SetFields(fields)
	p.setAggrSpec(ts, a, isUnion)
}

func (p *Parser) setAggrSpec(ts *types.TypeSpec, a *types.Aggr, isUnion bool) {
	if isUnion {
		ts.Set(types.SPEC_UNION)
	} else {
		ts.Set(types.SPEC_STRUCT)
	}
	ts.Aggr = a
}

func (p *Parser) findAggrInOuter(tag string, isUnion bool) (*types.Aggr, bool) {
	if isUnion {
		return scopes.FindUnionInOuter(p.scope.Cur(), tag)
	}
	return scopes.FindStructInOuter(p.scope.Cur(), tag)
}

func (p *Parser) registerAggr(a *types.Aggr) {
	if a.IsUnion {
		p.scope.Cur().RegisterUnion(a)
	} else {
		p.scope.Cur().RegisterStruct(a)
	}
}

func (p *Parser) placeholderField() *types.Decl {
	id := types.NewDcl(types.DCL_ID)
	id.Sym = p.strtab.Add(types.PlaceholderField)
	spec := types.NewTypeSpec()
	spec.Set(types.SPEC_CHAR)
	return &types.Decl{Spec: spec, Dclr: id, Line: p.line()}
}

// parseFieldList reads struct/union member declarations until '}'.
func (p *Parser) parseFieldList() []*types.Decl {
	fields := []*types.Decl{}
	for p.cur.T != "}" && !p.cur.IsEOF() && !p.tracker.TooManyErrors() {
		spec := p.parseSpecifier(false)
		if spec == nil {
			p.tracker.Err(p.line(), "expected field declaration")
			p.consumeToSemi()
			continue
		}
		spec.Align = p.pragmaAlign
		for {
			f := p.parseFieldDeclarator(spec)
			if f != nil {
				if _, dup := fieldByName(fields, f.Name()); dup && f.Name() != "" {
					p.tracker.Err(f.Line, "'%s' already defined", f.Name())
				} else {
					fields = append(fields, f)
				}
			}
			if p.cur.T != "," {
				break
			}
			p.next()
		}
		if !p.match(";") {
			p.consumeToSemi()
		}
	}
	return fields
}

func fieldByName(fields []*types.Decl, name string) (*types.Decl, bool) {
	for _, f := range fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// parseFieldDeclarator parses one member, with optional bit-field width.
func (p *Parser) parseFieldDeclarator(spec *types.TypeSpec) *types.Decl {
	line := p.line()
	var chain *types.Dcl
	if p.cur.T != ":" {
		chain = p.parseDeclarator(false)
		if chain == nil {
			p.tracker.Err(line, "expected declarator")
			return nil
		}
	}
	d := &types.Decl{Spec: types.CopySpec(spec), Dclr: chain, Line: line}
	p.computeArrayDims(d, false)
	p.expandUserType(d)
	p.checkAggrComplete(d)

	if p.cur.T == ":" {
		p.next()
		width := p.parseBitFieldWidth(d)
		if chain == nil {
			// unnamed bit-field reserves space
			id := types.NewDcl(types.DCL_ID)
			id.BitWidth = width
			d.Dclr = id
		} else if id := types.IdOf(d.Dclr); id != nil {
			id.BitWidth = width
		}
	}
	return d
}

func (p *Parser) parseBitFieldWidth(d *types.Decl) int {
	line := p.line()
	expr := p.parseConditionalExp()
	if expr == nil {
		return 0
	}
	v, err := evalConstInt(expr)
	if err != nil {
		p.tracker.Err(line, "bit field width must be a constant")
		return 0
	}
	if d.IsPointer() || d.IsArray() || !d.Spec.IsInteger() {
		p.tracker.Err(line, "bit field must have integer type")
		return 0
	}
	if v <= 0 || int(v) > types.SpecBitSize(d.Spec) {
		p.tracker.Err(line, "illegal bit field width %d", v)
		return 0
	}
	return int(v)
}

// parseEnumSpec handles enum references and definitions, back-filling
// missing enumerator values.
func (p *Parser) parseEnumSpec(ts *types.TypeSpec) {
	line := p.line()
	p.next()

	var tagName string
	if p.cur.T == tok.ID {
		tagName = p.cur.V
		p.next()
	}

	if p.cur.T != "{" {
		if tagName == "" {
			p.tracker.Err(line, "expected tag or body after 'enum'")
			return
		}
		e, ok := scopes.FindEnumInOuter(p.scope.Cur(), tagName)
		if !ok {
			p.tracker.Err(line, "enum '%s' is undefined", tagName)
			return
		}
		ts.Set(types.SPEC_ENUM)
		ts.Enum = e
		return
	}

	if tagName != "" {
		if _, ok := p.scope.Cur().FindEnumInScope(tagName); ok {
			p.tracker.Err(line, "enum type redefinition : '%s'", tagName)
		}
	}

	e := &types.Enum{Line: line}
	if tagName != "" {
		e.Name = p.strtab.Add(tagName)
	}
	p.match("{")

	next := int64(0)
	for p.cur.T != "}" && !p.cur.IsEOF() {
		if p.cur.T != tok.ID {
			p.tracker.Err(p.line(), "expected enumerator name")
			break
		}
		cname := p.cur.V
		cline := p.line()
		p.next()
		if _, clash := p.enumConsts.Lookup(cname); clash && p.enumConsts.DefinedLocally(cname) {
			p.tracker.Err(cline, "'%s' already defined", cname)
		}
		val := next
		if p.cur.T == "=" {
			p.next()
			expr := p.parseConditionalExp()
			v, err := evalConstInt(expr)
			if err != nil {
				p.tracker.Err(cline, "enumerator value must be a constant")
			} else {
				val = v
			}
		}
		c := &types.EnumConst{Name: p.strtab.Add(cname), Value: val, E: e}
		e.Consts = append(e.Consts, c)
		p.enumConsts.Define(cname, c)
		next = val + 1

		if p.cur.T != "," {
			break
		}
		p.next()
	}
	if p.cur.T != "}" {
		p.tracker.Err(p.line(), "expected '}'")
	} else {
		p.next()
	}

	p.scope.Cur().RegisterEnum(e)
	ts.Set(types.SPEC_ENUM)
	ts.Enum = e
}
