package parsers

import (
	"github.com/mfkiwl/xocfe/ast"
	tok "github.com/mfkiwl/xocfe/tokenizers"
	"github.com/mfkiwl/xocfe/types"
)

// parseDeclarator parses the declarator grammar
//
//	declarator  := pointer? direct_declarator
//	direct_decl := ID | '(' declarator ')'  then  ('[' e? ']' | '(' params ')')*
//	pointer     := ('*' type-qualifier*)+
//
// and returns the chain in reverse order, immediately reversed into the
// canonical form: ID first, then type operators innermost-first.
func (p *Parser) parseDeclarator(abstract bool) *types.Dcl {
	rev := p.parseDeclaratorRev(abstract)
	return types.ReverseChain(rev)
}

// parseDeclaratorRev builds the reverse chain: outermost-applied operator
// first, the ID (if any) last.
func (p *Parser) parseDeclaratorRev(abstract bool) *types.Dcl {
	var rev *types.Dcl

	// prefix pointers: the leftmost '*' is applied outermost
	for p.cur.T == "*" {
		ptr := types.NewDcl(types.DCL_POINTER)
		p.next()
		for {
			if q, ok := qualifierFlags[p.cur.T]; ok {
				ptr.Qualifier |= q
				p.next()
				continue
			}
			break
		}
		rev = types.AppendDcl(rev, ptr)
	}

	inner, tails := p.parseDirectDeclaratorRev(abstract)

	// tail operators apply before the prefix pointers, in reverse source
	// order relative to each other
	for i := len(tails) - 1; i >= 0; i-- {
		rev = types.AppendDcl(rev, tails[i])
	}
	for d := inner; d != nil; {
		next := d.Next
		d.Prev = nil
		d.Next = nil
		rev = types.AppendDcl(rev, d)
		d = next
	}
	return rev
}

// parseDirectDeclaratorRev returns the reverse chain of the base
// declarator plus the tail operators in source order.
func (p *Parser) parseDirectDeclaratorRev(abstract bool) (inner *types.Dcl, tails []*types.Dcl) {
	switch {
	case p.cur.T == tok.ID && !abstract:
		id := types.NewDcl(types.DCL_ID)
		id.Sym = p.strtab.Add(p.cur.V)
		p.scope.Cur().AddSym(id.Sym)
		inner = id
		p.next()
	case p.cur.T == "(" && p.nestedDeclaratorFollows(abstract):
		p.next()
		inner = p.parseDeclaratorRev(abstract)
		for d := inner; d != nil; d = d.Next {
			d.Paren = true
		}
		p.match(")")
	default:
		// abstract declarator without a base, or a missing name
		if !abstract && p.cur.T != "[" && p.cur.T != "(" {
			return nil, nil
		}
	}

	for {
		switch p.cur.T {
		case "[":
			arr := types.NewDcl(types.DCL_ARRAY)
			p.next()
			if p.cur.T != "]" {
				arr.DimExpr = p.parseConditionalExp()
			}
			if !p.match("]") {
				return inner, tails
			}
			tails = append(tails, arr)
		case "(":
			fun := types.NewDcl(types.DCL_FUN)
			p.next()
			fun.Params, fun.Variadic = p.parseParamList()
			p.match(")")
			tails = append(tails, fun)
		default:
			return inner, tails
		}
	}
}

// nestedDeclaratorFollows disambiguates '(' declarator ')' from a
// parameter list: a '(' opening a parameter list is followed by a
// specifier token or ')'.
func (p *Parser) nestedDeclaratorFollows(abstract bool) bool {
	la := p.lookahead()
	if la.T == ")" || p.isTypeNameStart(la) {
		return false
	}
	if abstract {
		switch la.T {
		case "*", "(", "[":
			return true
		}
		return false
	}
	return true
}

// parseParamList reads a parameter-type-list inside a transient scope that
// is discarded from the lexical tree when the declarator closes.
func (p *Parser) parseParamList() (params []*types.Decl, variadic bool) {
	p.scope.Push(true)
	p.enumConsts.EnterScope()
	defer func() {
		p.enumConsts.LeaveScope()
		p.scope.Pop()
	}()

	if p.cur.T == ")" {
		return nil, false
	}

	for {
		if p.cur.T == "..." {
			line := p.line()
			p.next()
			variadic = true
			marker := &types.Decl{Dclr: types.NewDcl(types.DCL_VARIADIC), Line: line}
			params = append(params, marker)
			if p.cur.T == "," {
				p.tracker.Err(line, "'...' must be the last parameter")
				p.next()
				continue
			}
			break
		}

		line := p.line()
		spec := p.parseSpecifier(false)
		if spec == nil {
			p.tracker.Err(line, "expected parameter declaration")
			for p.cur.T != "," && p.cur.T != ")" && !p.cur.IsEOF() {
				p.next()
			}
			if p.cur.T == "," {
				p.next()
				continue
			}
			break
		}
		chain := p.parseDeclarator(false)
		param := &types.Decl{Spec: spec, Dclr: chain, Line: line}
		p.computeArrayDims(param, true)
		p.expandUserType(param)
		p.rewriteParamArray(param)
		p.scope.Cur().AddDecl(param)
		params = append(params, param)

		if p.cur.T != "," {
			break
		}
		p.next()
	}

	return p.rewriteVoidParams(params), variadic
}

// rewriteVoidParams applies the canonical void rewrites: foo(void)
// collapses to an empty list, foo(void x) is an incomplete first
// parameter.
func (p *Parser) rewriteVoidParams(params []*types.Decl) []*types.Decl {
	if len(params) != 1 {
		return params
	}
	prm := params[0]
	if prm.Spec == nil || !prm.Spec.IsVoid() || prm.IsPointer() {
		return params
	}
	if prm.Sym() != nil {
		p.tracker.Err(prm.Line, "first parameter has incomplete type")
		return nil
	}
	if types.ChainLen(prm.Dclr) == 0 {
		return nil
	}
	return params
}

// rewriteParamArray turns an array parameter into a pointer to its
// element type: char p[][20] becomes char (*p)[20].
func (p *Parser) rewriteParamArray(d *types.Decl) {
	if !d.IsArray() {
		return
	}
	head := d.Dclr
	var first *types.Dcl
	if head.Kind == types.DCL_ARRAY {
		first = head
	} else {
		first = head.Next
	}
	ptr := types.NewDcl(types.DCL_POINTER)
	ptr.Prev = first.Prev
	ptr.Next = first.Next
	if first.Prev != nil {
		first.Prev.Next = ptr
	} else {
		d.Dclr = ptr
	}
	if first.Next != nil {
		first.Next.Prev = ptr
	}
}

// computeArrayDims evaluates every array dimension on the chain. The
// outermost dimension may stay open for parameters and initialized
// declarations; inner dimensions are mandatory.
func (p *Parser) computeArrayDims(d *types.Decl, allowDim0Empty bool) {
	dim := 0
	for n := d.Dclr; n != nil; n = n.Next {
		if n.Kind != types.DCL_ARRAY {
			continue
		}
		if n.DimExpr == nil {
			if dim == 0 {
				if !allowDim0Empty {
					p.tracker.Err(d.Line, "array dimension is required")
				}
			} else {
				p.tracker.Err(d.Line, "multidimensional array must have bounds for all dimensions except the first")
			}
			dim++
			continue
		}
		expr, ok := n.DimExpr.(ast.Node)
		if !ok {
			dim++
			continue
		}
		v, err := evalConstInt(expr)
		switch {
		case err != nil:
			p.tracker.Err(d.Line, "array dimension must be a constant integer")
		case v < 0:
			p.tracker.Err(d.Line, "array dimension cannot be negative")
		case v == 0:
			p.tracker.Err(d.Line, "array of constant size 0")
		default:
			n.DimVal = v
		}
		dim++
	}
}
