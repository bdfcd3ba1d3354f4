package types

import (
	"errors"
)

// Des is the flat specifier bitset accumulated while reading a declaration
// specifier. C's specifier syntax is order-free and multi-token, so single
// tokens OR their flag in and legality is checked once at finalization.
type Des uint32

const (
	SPEC_VOID Des = 1 << iota
	SPEC_BOOL
	SPEC_CHAR
	SPEC_SHORT
	SPEC_INT
	SPEC_LONG
	SPEC_LONGLONG
	SPEC_FLOAT
	SPEC_DOUBLE
	SPEC_SIGNED
	SPEC_UNSIGNED
	SPEC_STRUCT
	SPEC_UNION
	SPEC_ENUM
	SPEC_USER_TYPE

	STOR_AUTO
	STOR_REGISTER
	STOR_STATIC
	STOR_EXTERN
	STOR_INLINE
	STOR_TYPEDEF

	QUAL_CONST
	QUAL_VOLATILE
	QUAL_RESTRICT
)

const specBaseMask = SPEC_VOID | SPEC_BOOL | SPEC_CHAR | SPEC_SHORT | SPEC_INT |
	SPEC_LONG | SPEC_LONGLONG | SPEC_FLOAT | SPEC_DOUBLE |
	SPEC_STRUCT | SPEC_UNION | SPEC_ENUM | SPEC_USER_TYPE

const simpleBaseMask = SPEC_VOID | SPEC_BOOL | SPEC_CHAR | SPEC_SHORT | SPEC_INT |
	SPEC_LONG | SPEC_LONGLONG | SPEC_FLOAT | SPEC_DOUBLE |
	SPEC_SIGNED | SPEC_UNSIGNED

const storMask = STOR_AUTO | STOR_REGISTER | STOR_STATIC | STOR_EXTERN |
	STOR_INLINE | STOR_TYPEDEF

const qualMask = QUAL_CONST | QUAL_VOLATILE | QUAL_RESTRICT

// TypeSpec is the base specifier of a declaration. The ancillary references
// are co-valid with the base kind bits: Aggr with SPEC_STRUCT/SPEC_UNION,
// Enum with SPEC_ENUM, UserType with SPEC_USER_TYPE.
type TypeSpec struct {
	Des      Des
	Aggr     *Aggr
	Enum     *Enum
	UserType *Decl
	// pragma alignment frozen into the declaration at parse time
	Align int
}

func NewTypeSpec() *TypeSpec {
	return &TypeSpec{}
}

func (ts *TypeSpec) Has(flag Des) bool {
	return ts.Des&flag != 0
}

func (ts *TypeSpec) Set(flag Des) {
	ts.Des |= flag
}

func (ts *TypeSpec) Remove(flag Des) {
	ts.Des &^= flag
}

func (ts *TypeSpec) IsSimpleBase() bool {
	return ts.Des&simpleBaseMask != 0 && ts.Des&(SPEC_STRUCT|SPEC_UNION|SPEC_ENUM|SPEC_USER_TYPE) == 0
}

func (ts *TypeSpec) IsStruct() bool { return ts.Has(SPEC_STRUCT) }
func (ts *TypeSpec) IsUnion() bool  { return ts.Has(SPEC_UNION) }
func (ts *TypeSpec) IsAggr() bool   { return ts.Has(SPEC_STRUCT | SPEC_UNION) }
func (ts *TypeSpec) IsEnum() bool   { return ts.Has(SPEC_ENUM) }
func (ts *TypeSpec) IsUserType() bool {
	return ts.Has(SPEC_USER_TYPE)
}

func (ts *TypeSpec) IsVoid() bool {
	return ts.Has(SPEC_VOID)
}

// integer includes enum, per the usual arithmetic rules
func (ts *TypeSpec) IsInteger() bool {
	return ts.Has(SPEC_BOOL|SPEC_CHAR|SPEC_SHORT|SPEC_INT|SPEC_LONG|SPEC_LONGLONG|
		SPEC_SIGNED|SPEC_UNSIGNED|SPEC_ENUM) && !ts.Has(SPEC_FLOAT|SPEC_DOUBLE)
}

func (ts *TypeSpec) IsFloating() bool {
	return ts.Has(SPEC_FLOAT | SPEC_DOUBLE)
}

func (ts *TypeSpec) IsArith() bool {
	return ts.IsInteger() || ts.IsFloating()
}

func (ts *TypeSpec) IsUnsigned() bool {
	return ts.Has(SPEC_UNSIGNED)
}

func (ts *TypeSpec) IsConst() bool {
	return ts.Has(QUAL_CONST)
}

func (ts *TypeSpec) IsTypedef() bool {
	return ts.Has(STOR_TYPEDEF)
}

func (ts *TypeSpec) IsExtern() bool {
	return ts.Has(STOR_EXTERN)
}

func (ts *TypeSpec) IsStatic() bool {
	return ts.Has(STOR_STATIC)
}

// ComplementSpec fills in what a finished specifier left implicit: a bare
// signed / unsigned gets an INT base. A specifier with no base kind at all,
// e.g. "register x", is left as is and BaseKind reads it as int. Runs once
// after the whole specifier is read.
func ComplementSpec(ts *TypeSpec) {
	if ts.Des&specBaseMask == 0 {
		if ts.Has(SPEC_SIGNED | SPEC_UNSIGNED) {
			ts.Set(SPEC_INT)
		}
	}
}

// CheckSpecLegally runs the legality table over a finished specifier:
// exactly one base-kind family, no contradictory pairs, at most one of
// auto/register/static/extern. Returns nil on a legal combination.
func CheckSpecLegally(ts *TypeSpec) error {
	c1 := ts.Has(SPEC_STRUCT | SPEC_UNION)
	c2 := ts.Has(SPEC_ENUM)
	c3 := ts.Has(simpleBaseMask)
	c4 := ts.Has(SPEC_USER_TYPE)

	if c1 && c2 {
		return errors.New("struct or union cannot be combined with enum")
	}
	if c1 && c3 {
		return errors.New("struct or union cannot be combined with base type")
	}
	if c1 && c4 {
		return errors.New("struct or union cannot be combined with user type")
	}
	if c2 && c3 {
		return errors.New("enum cannot be combined with base type")
	}
	if c2 && c4 {
		return errors.New("enum cannot be combined with user type")
	}
	if c3 && c4 {
		return errors.New("user type cannot be combined with base type")
	}

	if c3 {
		if err := checkSimpleBase(ts); err != nil {
			return err
		}
	}
	if ts.Has(STOR_STATIC) && ts.Has(STOR_EXTERN) {
		return errors.New("static and extern cannot be combined")
	}
	nstor := 0
	for _, s := range []Des{STOR_AUTO, STOR_REGISTER, STOR_STATIC, STOR_EXTERN} {
		if ts.Has(s) {
			nstor++
		}
	}
	if nstor > 1 {
		return errors.New("more than one storage class specified")
	}
	return nil
}

func checkSimpleBase(ts *TypeSpec) error {
	if ts.Has(SPEC_SIGNED) && ts.Has(SPEC_UNSIGNED) {
		return errors.New("signed and unsigned cannot be combined")
	}
	shortLong := ts.Des & (SPEC_SHORT | SPEC_LONG | SPEC_LONGLONG)
	if shortLong != 0 {
		if ts.Has(SPEC_SHORT) && ts.Has(SPEC_LONG|SPEC_LONGLONG) {
			return errors.New("short and long cannot be combined")
		}
		// short/long modifiers only attach to int; long also to double
		if ts.Has(SPEC_VOID | SPEC_BOOL | SPEC_CHAR | SPEC_FLOAT) {
			return errors.New("illegal length modifier for base type")
		}
		if ts.Has(SPEC_DOUBLE) && ts.Has(SPEC_SHORT|SPEC_LONGLONG) {
			return errors.New("illegal length modifier for 'double'")
		}
	}
	nbase := 0
	for _, b := range []Des{SPEC_VOID, SPEC_BOOL, SPEC_CHAR, SPEC_INT, SPEC_FLOAT, SPEC_DOUBLE} {
		if ts.Has(b) {
			nbase++
		}
	}
	if nbase > 1 {
		return errors.New("more than one base type specified")
	}
	return nil
}

// BaseKind collapses the bitset to one canonical kind for semantic use.
// Only meaningful after CheckSpecLegally passed.
type BaseKind int

const (
	K_VOID BaseKind = iota
	K_BOOL
	K_CHAR
	K_SHORT
	K_INT
	K_LONG
	K_LONGLONG
	K_FLOAT
	K_DOUBLE
	K_STRUCT
	K_UNION
	K_ENUM
	K_USER
)

func (ts *TypeSpec) BaseKind() BaseKind {
	switch {
	case ts.Has(SPEC_STRUCT):
		return K_STRUCT
	case ts.Has(SPEC_UNION):
		return K_UNION
	case ts.Has(SPEC_ENUM):
		return K_ENUM
	case ts.Has(SPEC_USER_TYPE):
		return K_USER
	case ts.Has(SPEC_VOID):
		return K_VOID
	case ts.Has(SPEC_BOOL):
		return K_BOOL
	case ts.Has(SPEC_CHAR):
		return K_CHAR
	case ts.Has(SPEC_LONGLONG):
		return K_LONGLONG
	case ts.Has(SPEC_LONG):
		if ts.Has(SPEC_DOUBLE) {
			return K_DOUBLE
		}
		return K_LONG
	case ts.Has(SPEC_SHORT):
		return K_SHORT
	case ts.Has(SPEC_FLOAT):
		return K_FLOAT
	case ts.Has(SPEC_DOUBLE):
		return K_DOUBLE
	default:
		// bare signed/unsigned/int, or empty specifier defaulting to int
		return K_INT
	}
}

// CopySpec is a shallow structural copy; ancillary references are shared.
func CopySpec(ts *TypeSpec) *TypeSpec {
	cp := *ts
	return &cp
}

// helper for tests and diagnostics
func SpecOf(flags Des) *TypeSpec {
	return &TypeSpec{Des: flags}
}
