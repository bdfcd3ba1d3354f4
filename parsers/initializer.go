package parsers

import (
	"github.com/mfkiwl/xocfe/ast"
	"github.com/mfkiwl/xocfe/types"
)

// parseInitval reads one initializer: either an assignment expression or
// a brace-enclosed list of initializers, possibly nested.
func (p *Parser) parseInitval() ast.Node {
	if p.cur.T != "{" {
		return p.parseAssignmentExp()
	}
	scope := &ast.InitvalScope{LineInfo: ast.LineInfo{LineNumber: p.line()}}
	p.next()
	for p.cur.T != "}" && !p.cur.IsEOF() {
		scope.Children = append(scope.Children, p.parseInitval())
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
	return scope
}

// matchInitializer descends jointly over the declared type and the
// initializer tree, back-filling an open outermost array dimension from
// the number of initializers consumed.
func (p *Parser) matchInitializer(d *types.Decl, init ast.Node) {
	if init == nil {
		return
	}
	first := firstTypeNodeOf(d.Dclr)
	p.matchType(d.Spec, first, init, true)
}

func firstTypeNodeOf(head *types.Dcl) *types.Dcl {
	for n := head; n != nil; n = n.Next {
		if n.Kind != types.DCL_ID && n.Kind != types.DCL_VARIADIC {
			return n
		}
	}
	return nil
}

// matchType matches one initializer against the type denoted by
// (spec, chain position).
func (p *Parser) matchType(spec *types.TypeSpec, pos *types.Dcl, init ast.Node, outermost bool) {
	if pos != nil && pos.Kind == types.DCL_ARRAY {
		p.matchArray(spec, pos, init, outermost)
		return
	}
	if pos == nil && spec.IsAggr() && spec.Aggr != nil {
		if scope, ok := init.(*ast.InitvalScope); ok {
			p.matchAggr(spec.Aggr, scope)
			return
		}
		// scalar expression initializing an aggregate: leave the
		// compatibility question to the type-transform pass
		return
	}
	// pointer or scalar target consumes a single expression
	if scope, ok := init.(*ast.InitvalScope); ok {
		if len(scope.Children) > 1 {
			p.tracker.Err(scope.LineNumber, "too many initializers than declared")
		}
		if len(scope.Children) == 1 {
			p.matchType(spec, pos, scope.Children[0], false)
		}
	}
}

func (p *Parser) matchArray(spec *types.TypeSpec, arr *types.Dcl, init ast.Node, outermost bool) {
	declared := int(arr.DimVal)

	if str, ok := init.(*ast.StrConst); ok {
		// string literal fills a char array, terminator included
		n := len(str.Value) + 1
		if declared == 0 {
			arr.DimVal = int64(n)
		} else if n > declared+1 {
			p.tracker.Err(str.LineNumber, "too many initializers than declared")
		}
		return
	}

	scope, ok := init.(*ast.InitvalScope)
	if !ok {
		p.tracker.Err(lineOf(init), "unmatched initial value type")
		return
	}

	consumed := 0
	for _, child := range scope.Children {
		if declared > 0 && consumed >= declared {
			if outermost {
				p.tracker.Err(scope.LineNumber, "too many initializers than declared")
			}
			break
		}
		p.matchType(spec, arr.Next, child, false)
		consumed++
	}
	if declared == 0 {
		arr.DimVal = int64(consumed)
	}
}

func (p *Parser) matchAggr(a *types.Aggr, scope *ast.InitvalScope) {
	if !a.Complete {
		p.tracker.Err(scope.LineNumber, "cannot initialize incomplete aggregate")
		return
	}
	if a.IsUnion {
		// only the first field participates
		if len(scope.Children) > 0 && len(a.Fields) > 0 {
			p.matchField(a.Fields[0], scope.Children[0])
		}
		if len(scope.Children) > 1 {
			p.tracker.Err(scope.LineNumber, "too many initializers than declared")
		}
		return
	}
	idx := 0
	for _, child := range scope.Children {
		if idx >= len(a.Fields) {
			p.tracker.Err(scope.LineNumber, "too many initializers than declared")
			break
		}
		p.matchField(a.Fields[idx], child)
		idx++
	}
	// missing trailing initializers are zero-filled conceptually
}

func (p *Parser) matchField(f *types.Decl, init ast.Node) {
	p.matchType(f.Spec, firstTypeNodeOf(f.Dclr), init, false)
}

func lineOf(n ast.Node) int {
	if n == nil {
		return 0
	}
	return n.GetLineInfo().LineNumber
}
