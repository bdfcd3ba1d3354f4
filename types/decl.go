package types

import (
	"github.com/mfkiwl/xocfe/symtab"
)

type DclKind int

const (
	DCL_ID DclKind = iota
	DCL_POINTER
	DCL_ARRAY
	DCL_FUN
	DCL_VARIADIC
)

// Dcl is one node of a declarator chain. The canonical order is: ID at the
// head, then the type operators in the order they apply to that identifier,
// innermost-first. E.g.
//
//	int *a                       -> ID(a) -> POINTER
//	int (*q)[30]                 -> ID(q) -> POINTER -> ARRAY(30)
//	double (*arr[10][40])[20][30]-> ID(arr) -> ARRAY(10) -> ARRAY(40)
//	                                -> POINTER -> ARRAY(20) -> ARRAY(30)
//
// An abstract declarator is the same chain without the leading ID.
type Dcl struct {
	Kind DclKind
	Prev *Dcl
	Next *Dcl

	// ID
	Sym      *symtab.Sym
	BitWidth int

	// POINTER / ID qualifier bits (const/volatile/restrict)
	Qualifier Des

	// ARRAY
	DimVal  int64
	DimExpr any

	// FUN
	Params   []*Decl
	Variadic bool

	// source had parentheses around this node, kept for formatting only
	Paren bool
}

// Decl is a complete declaration: specifier plus canonical declarator chain.
// The same structure represents variables, fields, parameters, typedefs and
// abstract type names (nil Sym on the chain head or no ID node at all).
type Decl struct {
	Spec *TypeSpec
	// head of the canonical chain, nil for a bare specifier
	Dclr *Dcl
	Line int

	// owning scope, a *scopes.Scope kept opaque here
	Scope any
	// initializer tree, an ast.Node
	InitTree any

	IsSubField bool
	FieldIndex int
	// byte offset within the owning aggregate, filled by layout
	FieldOffset int
	// bit offset within the storage unit for bit-fields
	BitOffset int
	// explicit per-field alignment, 0 means natural
	FieldAlign int

	IsFunDef bool
}

// TypeName is a stand-alone type: a specifier with an abstract declarator
// chain. Expression result types and cast targets use this form.
type TypeName struct {
	Spec *TypeSpec
	Dclr *Dcl
}

func NewDcl(kind DclKind) *Dcl {
	return &Dcl{Kind: kind}
}

// AppendDcl links n after the tail of the chain at head and returns the head.
func AppendDcl(head *Dcl, n *Dcl) *Dcl {
	if head == nil {
		return n
	}
	t := head
	for t.Next != nil {
		t = t.Next
	}
	t.Next = n
	n.Prev = t
	return head
}

// ReverseChain turns the parser's reverse-order chain into canonical order.
func ReverseChain(head *Dcl) *Dcl {
	var prev *Dcl
	cur := head
	for cur != nil {
		next := cur.Next
		cur.Next = prev
		cur.Prev = next
		prev = cur
		cur = next
	}
	return prev
}

func ChainLen(head *Dcl) int {
	n := 0
	for d := head; d != nil; d = d.Next {
		n++
	}
	return n
}

func ChainTail(head *Dcl) *Dcl {
	if head == nil {
		return nil
	}
	t := head
	for t.Next != nil {
		t = t.Next
	}
	return t
}

// IdOf returns the chain's ID node, which occurs only at the head.
func IdOf(head *Dcl) *Dcl {
	if head != nil && head.Kind == DCL_ID {
		return head
	}
	return nil
}

// firstTypeNode skips the leading ID (and stray VARIADIC markers) and
// returns the first type operator.
func firstTypeNode(head *Dcl) *Dcl {
	d := head
	for d != nil && (d.Kind == DCL_ID || d.Kind == DCL_VARIADIC) {
		d = d.Next
	}
	return d
}

func chainIsPointer(head *Dcl) bool {
	first := firstTypeNode(head)
	if first == nil {
		return false
	}
	if first.Kind == DCL_POINTER {
		return true
	}
	return first.Kind == DCL_FUN && first.Prev != nil && first.Prev.Kind == DCL_POINTER
}

func chainIsArray(head *Dcl) bool {
	first := firstTypeNode(head)
	return first != nil && first.Kind == DCL_ARRAY
}

func chainIsFunDecl(head *Dcl) bool {
	first := firstTypeNode(head)
	return first != nil && first.Kind == DCL_FUN
}

func chainIsFunPointer(head *Dcl) bool {
	for d := head; d != nil; d = d.Next {
		if d.Kind == DCL_POINTER && d.Next != nil && d.Next.Kind == DCL_FUN {
			return true
		}
	}
	return false
}

func (d *Decl) IsPointer() bool    { return chainIsPointer(d.Dclr) }
func (d *Decl) IsArray() bool      { return chainIsArray(d.Dclr) }
func (d *Decl) IsFunDecl() bool    { return chainIsFunDecl(d.Dclr) }
func (d *Decl) IsFunPointer() bool { return chainIsFunPointer(d.Dclr) }

func (tn *TypeName) IsPointer() bool    { return chainIsPointer(tn.Dclr) }
func (tn *TypeName) IsArray() bool      { return chainIsArray(tn.Dclr) }
func (tn *TypeName) IsFunDecl() bool    { return chainIsFunDecl(tn.Dclr) }
func (tn *TypeName) IsFunPointer() bool { return chainIsFunPointer(tn.Dclr) }

// indirection through pointer or array makes an incomplete aggregate legal
func (d *Decl) IsIndirection() bool {
	return d.IsPointer() || d.IsArray()
}

func (d *Decl) Sym() *symtab.Sym {
	if id := IdOf(d.Dclr); id != nil {
		return id.Sym
	}
	return nil
}

func (d *Decl) Name() string {
	if s := d.Sym(); s != nil {
		return s.Name
	}
	return ""
}

func (d *Decl) IsBitField() bool {
	id := IdOf(d.Dclr)
	return id != nil && id.BitWidth > 0
}

func (d *Decl) IsVariadicMarker() bool {
	return d.Dclr != nil && d.Dclr.Kind == DCL_VARIADIC
}

func (d *Decl) IsTypedef() bool {
	return d.Spec != nil && d.Spec.IsTypedef()
}

func (d *Decl) IsUserTypeRef() bool {
	return d.Spec != nil && d.Spec.IsUserType()
}

// ParamsOf returns the parameter list of a function declarator, looking
// through the leading pointers for function pointers.
func ParamsOf(head *Dcl) ([]*Decl, bool) {
	for d := firstTypeNode(head); d != nil; d = d.Next {
		if d.Kind == DCL_FUN {
			return d.Params, true
		}
		if d.Kind != DCL_POINTER {
			break
		}
	}
	return nil, false
}

// CopyDcl copies a single chain node, unlinked.
func CopyDcl(src *Dcl) *Dcl {
	cp := *src
	cp.Prev = nil
	cp.Next = nil
	return &cp
}

// CopyDclChain structurally copies a whole chain starting at head.
func CopyDclChain(head *Dcl) *Dcl {
	var newHead *Dcl
	for d := head; d != nil; d = d.Next {
		newHead = AppendDcl(newHead, CopyDcl(d))
	}
	return newHead
}

// CopyDecl copies the declaration header and its specifier; the chain is
// shared with src.
func CopyDecl(src *Decl) *Decl {
	cp := *src
	cp.Spec = CopySpec(src.Spec)
	return &cp
}

// CopyDeclFully copies the declaration, its specifier and its whole chain.
// Copying is structural: predicates are stable under it.
func CopyDeclFully(src *Decl) *Decl {
	cp := CopyDecl(src)
	cp.Dclr = CopyDclChain(src.Dclr)
	return cp
}

func CopyTypeName(src *TypeName) *TypeName {
	return &TypeName{
		Spec: CopySpec(src.Spec),
		Dclr: CopyDclChain(src.Dclr),
	}
}

// AsTypeName views a declaration as a type name, dropping the leading ID.
// A bit-field keeps an anonymous ID node so the bit-field marker survives
// on the result type's declarator.
func (d *Decl) AsTypeName() *TypeName {
	chain := CopyDclChain(d.Dclr)
	if chain != nil && chain.Kind == DCL_ID {
		if chain.BitWidth > 0 {
			chain.Sym = nil
		} else {
			chain = chain.Next
			if chain != nil {
				chain.Prev = nil
			}
		}
	}
	return &TypeName{Spec: CopySpec(d.Spec), Dclr: chain}
}
