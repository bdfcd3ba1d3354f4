package ast

import (
	"github.com/mfkiwl/xocfe/types"
)

// ImmKind classifies a numeric literal by its suffix and magnitude.
type ImmKind int

const (
	IMM ImmKind = iota
	IMMU
	IMML
	IMMUL
	FP
	FPF
	FPLD
)

type Identifier struct {
	Name string
	// binding established at parse time; exactly one is set on success
	Decl      *types.Decl
	EnumConst *types.EnumConst
	LineInfo
}

type IntConst struct {
	Value int64
	Kind  ImmKind
	LineInfo
}

type FloatConst struct {
	Value float64
	Kind  ImmKind
	LineInfo
}

type CharConst struct {
	Value int64
	LineInfo
}

type StrConst struct {
	Value string
	LineInfo
}

type UnaryExpression struct {
	// one of + - ~ ! * & ++ --
	Op      string
	Operand Node
	Postfix bool
	LineInfo
}

type BinaryExpression struct {
	Op  string
	Lhs Node
	Rhs Node
	LineInfo
}

type AssignmentExpression struct {
	// = += -= *= /= %= &= |= ^= <<= >>=
	Op  string
	Lhs Node
	Rhs Node
	LineInfo
}

type ConditionalExpression struct {
	Cond Node
	Then Node
	Else Node
	LineInfo
}

type CastExpression struct {
	Type *types.TypeName
	Expr Node
	LineInfo
}

// Cvt is an implicit conversion inserted by the type-transform pass,
// e.g. double -> float truncation on call arguments.
type Cvt struct {
	To   *types.TypeName
	Expr Node
	LineInfo
}

type CallExpression struct {
	Fun  Node
	Args []Node
	LineInfo
}

type IndexExpression struct {
	Base  Node
	Index Node
	LineInfo
}

type MemberExpression struct {
	Base  Node
	Field *Identifier
	Arrow bool
	LineInfo
}

type SizeofExpression struct {
	// exactly one of Type / Expr is set
	Type *types.TypeName
	Expr Node
	LineInfo
}

type ExprList struct {
	Exprs []Node
	LineInfo
}

// InitvalScope is a brace-enclosed initializer wrapping the list of
// initializer expressions, possibly nested.
type InitvalScope struct {
	Children []Node
	LineInfo
}
