package semantics

import (
	"github.com/mfkiwl/xocfe/types"
)

func simpleTypeName(flags types.Des) *types.TypeName {
	return &types.TypeName{Spec: types.SpecOf(flags)}
}

// immediate constants carry the const qualifier on their result type
func constTypeName(flags types.Des) *types.TypeName {
	return simpleTypeName(flags | types.QUAL_CONST)
}

func copyTn(tn *types.TypeName) *types.TypeName {
	return types.CopyTypeName(tn)
}

func firstOp(tn *types.TypeName) *types.Dcl {
	for n := tn.Dclr; n != nil; n = n.Next {
		if n.Kind != types.DCL_ID && n.Kind != types.DCL_VARIADIC {
			return n
		}
	}
	return nil
}

func (e *TypeEngine) isScalar(tn *types.TypeName) bool {
	return tn.IsPointer() || tn.IsArray() || (firstOp(tn) == nil && tn.Spec.IsArith())
}

func (e *TypeEngine) isArith(tn *types.TypeName) bool {
	return firstOp(tn) == nil && tn.Spec.IsArith()
}

func (e *TypeEngine) isInteger(tn *types.TypeName) bool {
	return firstOp(tn) == nil && tn.Spec.IsInteger()
}

func (e *TypeEngine) isAggrValue(tn *types.TypeName) bool {
	return firstOp(tn) == nil && tn.Spec.IsAggr()
}

// stripOne removes the leading POINTER or ARRAY operator, the shared
// behavior of '*e' and 'e[i]'. A FUN operator is accepted unchanged:
// dereferencing a function designator yields the function again.
func stripOne(tn *types.TypeName) (*types.TypeName, bool) {
	cp := copyTn(tn)
	first := firstOp(cp)
	if first == nil {
		return nil, false
	}
	if first.Kind == types.DCL_FUN {
		return cp, true
	}
	if first.Kind != types.DCL_POINTER && first.Kind != types.DCL_ARRAY {
		return nil, false
	}
	unlink(cp, first)
	return cp, true
}

func unlink(tn *types.TypeName, n *types.Dcl) {
	if n.Prev != nil {
		n.Prev.Next = n.Next
	} else {
		tn.Dclr = n.Next
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	}
}

// decayToPointer turns an array result into a pointer to its element
// type; pointers pass through.
func decayToPointer(tn *types.TypeName) *types.TypeName {
	cp := copyTn(tn)
	first := firstOp(cp)
	if first == nil || first.Kind != types.DCL_ARRAY {
		return cp
	}
	ptr := types.NewDcl(types.DCL_POINTER)
	ptr.Prev = first.Prev
	ptr.Next = first.Next
	if first.Prev != nil {
		first.Prev.Next = ptr
	} else {
		cp.Dclr = ptr
	}
	if first.Next != nil {
		first.Next.Prev = ptr
	}
	return cp
}

func prependPointer(tn *types.TypeName) *types.TypeName {
	cp := copyTn(tn)
	ptr := types.NewDcl(types.DCL_POINTER)
	ptr.Next = cp.Dclr
	if cp.Dclr != nil {
		cp.Dclr.Prev = ptr
	}
	cp.Dclr = ptr
	return cp
}

// returnTypeOf strips the leading pointers and the FUN operator from a
// callable's type. Multiple pointer layers collapse, so calling through
// '****f' behaves like '*f'.
func returnTypeOf(tn *types.TypeName) (*types.TypeName, bool) {
	cp := copyTn(tn)
	n := firstOp(cp)
	for n != nil && n.Kind == types.DCL_POINTER {
		next := n.Next
		unlink(cp, n)
		n = next
	}
	if n == nil || n.Kind != types.DCL_FUN {
		return nil, false
	}
	unlink(cp, n)
	return cp, true
}

// rankResult picks the common type of a binary arithmetic operation.
func rankResult(a *types.TypeName, b *types.TypeName) *types.TypeName {
	winner := types.PickByRank(a.Spec, b.Spec)
	if winner == a.Spec {
		return copyTn(a)
	}
	return copyTn(b)
}
