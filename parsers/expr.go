package parsers

import (
	"strconv"
	"strings"

	"github.com/mfkiwl/xocfe/ast"
	"github.com/mfkiwl/xocfe/scopes"
	tok "github.com/mfkiwl/xocfe/tokenizers"
	"github.com/mfkiwl/xocfe/types"
)

func (p *Parser) li() ast.LineInfo {
	return ast.LineInfo{LineNumber: p.line()}
}

// parseExp parses a full expression including the comma operator.
func (p *Parser) parseExp() ast.Node {
	first := p.parseAssignmentExp()
	if p.cur.T != "," {
		return first
	}
	list := &ast.ExprList{Exprs: []ast.Node{first}, LineInfo: p.li()}
	for p.cur.T == "," {
		p.next()
		list.Exprs = append(list.Exprs, p.parseAssignmentExp())
	}
	return list
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func (p *Parser) parseAssignmentExp() ast.Node {
	l := p.parseConditionalExp()
	if assignOps[p.cur.T] {
		op := p.cur.T
		li := p.li()
		p.next()
		r := p.parseAssignmentExp()
		return &ast.AssignmentExpression{Op: op, Lhs: l, Rhs: r, LineInfo: li}
	}
	return l
}

func (p *Parser) parseConditionalExp() ast.Node {
	cond := p.parseLogicalOrExp()
	if p.cur.T != "?" {
		return cond
	}
	li := p.li()
	p.next()
	then := p.parseExp()
	p.match(":")
	els := p.parseConditionalExp()
	return &ast.ConditionalExpression{Cond: cond, Then: then, Else: els, LineInfo: li}
}

// binary operator levels from weakest to tightest
func (p *Parser) parseLogicalOrExp() ast.Node {
	return p.parseBinaryLevel([]string{"||"}, p.parseLogicalAndExp)
}

func (p *Parser) parseLogicalAndExp() ast.Node {
	return p.parseBinaryLevel([]string{"&&"}, p.parseInclusiveOrExp)
}

func (p *Parser) parseInclusiveOrExp() ast.Node {
	return p.parseBinaryLevel([]string{"|"}, p.parseExclusiveOrExp)
}

func (p *Parser) parseExclusiveOrExp() ast.Node {
	return p.parseBinaryLevel([]string{"^"}, p.parseAndExp)
}

func (p *Parser) parseAndExp() ast.Node {
	return p.parseBinaryLevel([]string{"&"}, p.parseEqualityExp)
}

func (p *Parser) parseEqualityExp() ast.Node {
	return p.parseBinaryLevel([]string{"==", "!="}, p.parseRelationalExp)
}

func (p *Parser) parseRelationalExp() ast.Node {
	return p.parseBinaryLevel([]string{"<", ">", "<=", ">="}, p.parseShiftExp)
}

func (p *Parser) parseShiftExp() ast.Node {
	return p.parseBinaryLevel([]string{"<<", ">>"}, p.parseAdditiveExp)
}

func (p *Parser) parseAdditiveExp() ast.Node {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicativeExp)
}

func (p *Parser) parseMultiplicativeExp() ast.Node {
	return p.parseBinaryLevel([]string{"*", "/", "%"}, p.parseCastExp)
}

func (p *Parser) parseBinaryLevel(ops []string, nextLevel func() ast.Node) ast.Node {
	l := nextLevel()
	for {
		matched := ""
		for _, op := range ops {
			if p.cur.T == op {
				matched = op
				break
			}
		}
		if matched == "" {
			return l
		}
		li := p.li()
		p.next()
		r := nextLevel()
		l = &ast.BinaryExpression{Op: matched, Lhs: l, Rhs: r, LineInfo: li}
	}
}

func (p *Parser) parseCastExp() ast.Node {
	if p.cur.T == "(" && p.isTypeNameStart(p.lookahead()) {
		li := p.li()
		p.next()
		tn := p.parseTypeName()
		p.match(")")
		expr := p.parseCastExp()
		return &ast.CastExpression{Type: tn, Expr: expr, LineInfo: li}
	}
	return p.parseUnaryExp()
}

// parseTypeName reads a stand-alone type: specifier-qualifier list plus an
// abstract declarator.
func (p *Parser) parseTypeName() *types.TypeName {
	spec := p.parseSpecifier(false)
	if spec == nil {
		p.tracker.Err(p.line(), "expected type name")
		return nil
	}
	chain := p.parseDeclarator(true)
	d := &types.Decl{Spec: spec, Dclr: chain, Line: p.line()}
	p.computeArrayDims(d, true)
	p.expandUserType(d)
	return &types.TypeName{Spec: d.Spec, Dclr: d.Dclr}
}

func (p *Parser) parseUnaryExp() ast.Node {
	switch p.cur.T {
	case "++", "--":
		op := p.cur.T
		li := p.li()
		p.next()
		operand := p.parseUnaryExp()
		return &ast.UnaryExpression{Op: op, Operand: operand, LineInfo: li}
	case "*", "+", "-", "!", "~", "&":
		op := p.cur.T
		li := p.li()
		p.next()
		operand := p.parseCastExp()
		return &ast.UnaryExpression{Op: op, Operand: operand, LineInfo: li}
	case "sizeof":
		li := p.li()
		p.next()
		if p.cur.T == "(" && p.isTypeNameStart(p.lookahead()) {
			p.next()
			tn := p.parseTypeName()
			p.match(")")
			return &ast.SizeofExpression{Type: tn, LineInfo: li}
		}
		operand := p.parseUnaryExp()
		return &ast.SizeofExpression{Expr: operand, LineInfo: li}
	}
	return p.parsePostfixExp()
}

func (p *Parser) parsePostfixExp() ast.Node {
	l := p.parsePrimaryExp()
	for {
		switch p.cur.T {
		case "[":
			li := p.li()
			p.next()
			idx := p.parseExp()
			p.match("]")
			l = &ast.IndexExpression{Base: l, Index: idx, LineInfo: li}
		case ".", "->":
			arrow := p.cur.T == "->"
			li := p.li()
			p.next()
			if p.cur.T != tok.ID {
				p.tracker.Err(p.line(), "expected member name after '%s'", map[bool]string{true: "->", false: "."}[arrow])
				return l
			}
			field := &ast.Identifier{Name: p.cur.V, LineInfo: p.li()}
			p.next()
			l = &ast.MemberExpression{Base: l, Field: field, Arrow: arrow, LineInfo: li}
		case "(":
			li := p.li()
			p.next()
			call := &ast.CallExpression{Fun: l, LineInfo: li}
			for p.cur.T != ")" && !p.cur.IsEOF() {
				call.Args = append(call.Args, p.parseAssignmentExp())
				if p.cur.T != "," {
					break
				}
				p.next()
			}
			p.match(")")
			l = call
		case "++", "--":
			l = &ast.UnaryExpression{Op: p.cur.T, Operand: l, Postfix: true, LineInfo: p.li()}
			p.next()
		default:
			return l
		}
	}
}

func (p *Parser) parsePrimaryExp() ast.Node {
	switch p.cur.T {
	case tok.ID:
		n := &ast.Identifier{Name: p.cur.V, LineInfo: p.li()}
		p.bindIdentifier(n)
		p.next()
		return n
	case tok.NUM:
		n := p.parseIntConst()
		p.next()
		return n
	case tok.FNUM:
		n := p.parseFloatConst()
		p.next()
		return n
	case tok.CH:
		n := &ast.CharConst{Value: charValue(p.cur.V), LineInfo: p.li()}
		p.next()
		return n
	case tok.STR:
		n := &ast.StrConst{Value: unescape(p.cur.V), LineInfo: p.li()}
		p.next()
		return n
	case "(":
		p.next()
		e := p.parseExp()
		p.match(")")
		return e
	}
	p.tracker.Err(p.line(), "expected an identifier, constant, string or expression")
	n := &ast.IntConst{LineInfo: p.li()}
	p.next()
	return n
}

// bindIdentifier resolves the name against the visible declarations, then
// the enum constants.
func (p *Parser) bindIdentifier(n *ast.Identifier) {
	if d, ok := scopes.FindDeclInOuter(p.scope.Cur(), n.Name); ok {
		n.Decl = d
		return
	}
	if c, ok := p.enumConsts.Lookup(n.Name); ok {
		n.EnumConst = c
		return
	}
	p.tracker.Err(n.LineNumber, "'%s' is not defined", n.Name)
}

// parseIntConst classifies the literal by suffix; magnitude promotion to
// long long happens during type transform.
func (p *Parser) parseIntConst() *ast.IntConst {
	text := p.cur.V
	kind := ast.IMM
	lower := strings.ToLower(text)
	unsigned := strings.Contains(lower, "u")
	long := strings.Contains(lower, "l")
	trimmed := strings.TrimRight(text, "uUlL")
	switch {
	case unsigned && long:
		kind = ast.IMMUL
	case long:
		kind = ast.IMML
	case unsigned:
		kind = ast.IMMU
	}
	v, err := strconv.ParseUint(trimmed, 0, 64)
	if err != nil {
		p.tracker.Err(p.line(), "illegal integer constant '%s'", text)
	}
	return &ast.IntConst{Value: int64(v), Kind: kind, LineInfo: p.li()}
}

func (p *Parser) parseFloatConst() *ast.FloatConst {
	text := p.cur.V
	kind := ast.FP
	switch {
	case strings.HasSuffix(text, "f"), strings.HasSuffix(text, "F"):
		kind = ast.FPF
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "l"), strings.HasSuffix(text, "L"):
		kind = ast.FPLD
		text = text[:len(text)-1]
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.tracker.Err(p.line(), "illegal floating constant '%s'", p.cur.V)
	}
	return &ast.FloatConst{Value: v, Kind: kind, LineInfo: p.li()}
}

var escapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0, '\\': '\\',
	'\'': '\'', '"': '"', 'a': 7, 'b': 8, 'f': 12, 'v': 11,
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if r, ok := escapes[s[i+1]]; ok {
				sb.WriteByte(r)
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func charValue(s string) int64 {
	u := unescape(s)
	if len(u) == 0 {
		return 0
	}
	return int64(u[0])
}
