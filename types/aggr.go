package types

import (
	"github.com/mfkiwl/xocfe/symtab"
)

// PlaceholderField names the synthetic one-byte field inserted into an
// aggregate declared with an empty body.
const PlaceholderField = "#placeholder"

// Aggr is a struct or union type. A tag plus its declaring scope uniquely
// identifies an aggregate; anonymous aggregates are reachable only through
// the specifier that introduced them. Completion flips Complete false->true
// exactly once and never reverses.
type Aggr struct {
	Tag     *symtab.Sym
	IsUnion bool
	// declaring scope, a *scopes.Scope kept opaque here
	Scope    any
	Fields   []*Decl
	Complete bool

	Align      int
	FieldAlign int
	PackAlign  int

	// total byte size, computed lazily once complete
	size       int
	sizeValid  bool
}

func NewAggr(tag *symtab.Sym, isUnion bool, scope any, align int) *Aggr {
	return &Aggr{
		Tag:     tag,
		IsUnion: isUnion,
		Scope:   scope,
		Align:   align,
	}
}

// FindField searches the field list by name, direct fields only.
func (a *Aggr) FindField(name string) (*Decl, bool) {
	for _, f := range a.Fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// SetFields completes the aggregate. Field indices are positional.
func (a *Aggr) SetFields(fields []*Decl) {
	for i, f := range fields {
		f.IsSubField = true
		f.FieldIndex = i
	}
	a.Fields = fields
	a.Complete = true
	a.sizeValid = false
}

// Enum is a name-optional ordered list of (name, value) constants.
type Enum struct {
	Name   *symtab.Sym
	Consts []*EnumConst
	Line   int
}

type EnumConst struct {
	Name  *symtab.Sym
	Value int64
	E     *Enum
}

// HasConst reports whether the enum defines a constant with that name.
func (e *Enum) HasConst(name string) bool {
	for _, c := range e.Consts {
		if c.Name.Name == name {
			return true
		}
	}
	return false
}
