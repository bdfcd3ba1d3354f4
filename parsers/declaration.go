package parsers

import (
	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/types"
)

// parseDeclaration assembles one declaration: specifier, then an
// init-declarator list, or a function definition when '{' follows a
// function-shaped first declarator.
func (p *Parser) parseDeclaration() {
	atGlobal := p.scope.Cur().Level == scopes.GLOBAL_SCOPE
	align := p.pragmaAlign

	spec := p.parseSpecifier(true)
	if spec == nil {
		p.tracker.Err(p.line(), "expected declaration specifier")
		p.consumeToSemi()
		return
	}
	spec.Align = align

	// bare specifier: tag declarations like "struct T;"
	if p.cur.T == ";" {
		p.next()
		return
	}

	first := true
	for !p.cur.IsEOF() {
		d := p.parseInitDeclarator(spec)
		if d == nil {
			p.consumeToSemi()
			return
		}
		if first && d.IsFunDecl() && p.cur.T == "{" {
			p.parseFunctionDefinition(d, atGlobal)
			return
		}
		p.finishDeclarator(d)
		first = false
		if p.cur.T != "," {
			break
		}
		p.next()
	}
	if p.cur.T != ";" {
		p.tracker.Err(p.line(), "miss ';'")
		p.consumeToSemi()
		return
	}
	p.next()
}

// parseInitDeclarator builds the declaration header for one declarator:
// canonical chain, array dimensions, typedef expansion, completeness and
// bit-field checks.
func (p *Parser) parseInitDeclarator(spec *types.TypeSpec) *types.Decl {
	line := p.line()
	chain := p.parseDeclarator(false)
	if chain == nil || types.IdOf(chain) == nil {
		p.tracker.Err(line, "expected identifier in declaration")
		return nil
	}
	d := &types.Decl{Spec: types.CopySpec(spec), Dclr: chain, Line: line}
	p.computeArrayDims(d, true)
	p.expandUserType(d)
	p.checkAggrComplete(d)
	return d
}

// finishDeclarator registers the declaration and handles its optional
// initializer.
func (p *Parser) finishDeclarator(d *types.Decl) {
	sc := p.scope.Cur()
	if _, dup := sc.FindDeclInScope(d.Name()); dup {
		p.tracker.Err(d.Line, "'%s' already defined", d.Name())
		if p.cur.T == "=" {
			p.next()
			p.parseInitval()
		}
		return
	}
	sc.AddDecl(d)
	if d.IsTypedef() {
		sc.RegisterTypedef(d)
		if p.cur.T == "=" {
			p.tracker.Err(d.Line, "typedef '%s' cannot be initialized", d.Name())
			p.next()
			p.parseInitval()
		}
		return
	}

	if p.cur.T == "=" {
		p.next()
		init := p.parseInitval()
		d.InitTree = init
		p.matchInitializer(d, init)
	}

	// an open outermost dimension must have been fixed by now
	if d.IsArray() && !d.Spec.IsExtern() {
		if arr := firstArrayNode(d.Dclr); arr != nil && arr.DimVal == 0 && arr.DimExpr == nil && d.InitTree == nil {
			p.tracker.Err(d.Line, "size of array '%s' is unknown", d.Name())
		}
	}
}

func firstArrayNode(head *types.Dcl) *types.Dcl {
	for n := head; n != nil; n = n.Next {
		switch n.Kind {
		case types.DCL_ID:
			continue
		case types.DCL_ARRAY:
			return n
		default:
			return nil
		}
	}
	return nil
}

// expandUserType replaces a typedef reference by its definition: the
// typedef's specifier bits minus TYPEDEF, with the outer storage and
// qualifier bits kept, and the typedef's type operators appended after
// this declarator's own. Expansion runs to a fixed point for typedefs of
// typedefs.
func (p *Parser) expandUserType(d *types.Decl) {
	for d.Spec != nil && d.Spec.IsUserType() {
		td := d.Spec.UserType
		if td == nil {
			return
		}
		outer := d.Spec
		spec := types.CopySpec(td.Spec)
		spec.Remove(types.STOR_TYPEDEF)
		// outer storage class and qualifiers propagate onto the expansion
		spec.Des |= outer.Des &^ types.SPEC_USER_TYPE
		spec.Align = outer.Align

		tdChain := types.CopyDclChain(td.Dclr)
		if tdChain != nil && tdChain.Kind == types.DCL_ID {
			tdChain = tdChain.Next
			if tdChain != nil {
				tdChain.Prev = nil
			}
		}
		for n := tdChain; n != nil; {
			next := n.Next
			n.Prev = nil
			n.Next = nil
			d.Dclr = types.AppendDcl(d.Dclr, n)
			n = next
		}
		d.Spec = spec
	}
}

// checkAggrComplete rejects direct use of an incomplete aggregate;
// references through pointer or array stay legal.
func (p *Parser) checkAggrComplete(d *types.Decl) {
	if d.Spec == nil || !d.Spec.IsAggr() || d.Spec.Aggr == nil {
		return
	}
	if d.Spec.Aggr.Complete || d.IsIndirection() || d.IsFunDecl() {
		return
	}
	kw := "struct"
	if d.Spec.IsUnion() {
		kw = "union"
	}
	tag := ""
	if d.Spec.Aggr.Tag != nil {
		tag = d.Spec.Aggr.Tag.Name
	}
	p.tracker.Err(d.Line, "'%s' uses incomplete defined %s %s", d.Name(), kw, tag)
}

// parseFunctionDefinition binds the function body scope, re-registers the
// parameters in it, delegates to the statement grammar and resolves
// labels when the body closes.
func (p *Parser) parseFunctionDefinition(d *types.Decl, atGlobal bool) {
	d.IsFunDef = true
	if !atGlobal {
		p.tracker.Err(d.Line, "function definition is only allowed at global scope")
		p.skipBalanced("{", "}")
		return
	}
	sc := p.scope.Cur()
	if prev, dup := sc.FindDeclInScope(d.Name()); dup {
		if prev.IsFunDef {
			p.tracker.Err(d.Line, "'%s' already defined", d.Name())
		}
	} else {
		sc.AddDecl(d)
	}

	fnScope := p.scope.Push(false)
	fnScope.FnDecl = d
	p.enumConsts.EnterScope()

	if params, ok := types.ParamsOf(d.Dclr); ok {
		for _, prm := range params {
			if prm.IsVariadicMarker() || prm.Sym() == nil {
				continue
			}
			fnScope.AddDecl(types.CopyDeclFully(prm))
		}
	}

	p.parseCompoundStmt(fnScope)
	p.checkLabels(fnScope)

	p.enumConsts.LeaveScope()
	p.scope.Pop()
}

// checkLabels runs at function-definition close: every goto must name a
// defined label, every defined label should be referenced.
func (p *Parser) checkLabels(fnScope *scopes.Scope) {
	for _, ref := range fnScope.LabelRefs {
		li, ok := fnScope.FindLabel(ref.Name)
		if !ok {
			p.tracker.Err(ref.Line, "label '%s' was undefined", ref.Name)
			continue
		}
		li.Used = true
	}
	for _, def := range fnScope.Labels {
		if !def.Used {
			p.tracker.Warn(def.Line, "label '%s' defined but not referenced", def.Name)
		}
	}
}
