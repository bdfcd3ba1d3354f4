package types

import (
	"github.com/mfkiwl/xocfe/conf"
)

const BITS_PER_BYTE = 8

var target = conf.Default()

// Configure installs the target description sizes are computed against.
// Must run before any layout query; defaults match a 64-bit target.
func Configure(t conf.Target) {
	target = t
}

func PointerSize() int {
	return target.PointerSize
}

func PointerAlignment() int {
	return target.PointerAlignment
}

func DefaultAlign() int {
	return target.DefaultAlign
}

// SpecTypeSize is the byte size of the specifier's base kind. void has
// size 1, following the byte-oriented convention for void* arithmetic.
func SpecTypeSize(ts *TypeSpec) int {
	switch ts.BaseKind() {
	case K_VOID:
		return 1
	case K_BOOL, K_CHAR:
		return 1
	case K_SHORT:
		return 2
	case K_INT, K_ENUM:
		return 4
	case K_LONG:
		return 4
	case K_LONGLONG:
		return 8
	case K_FLOAT:
		return 4
	case K_DOUBLE:
		return 8
	case K_STRUCT, K_UNION:
		if ts.Aggr == nil {
			return 0
		}
		return AggrSize(ts.Aggr)
	case K_USER:
		if ts.UserType == nil {
			return 0
		}
		return DeclSize(ts.UserType)
	}
	return 0
}

// SpecBitSize is the bit width of an integer scalar specifier, used to
// validate bit-field widths.
func SpecBitSize(ts *TypeSpec) int {
	return SpecTypeSize(ts) * BITS_PER_BYTE
}

// DeclSize computes the byte size of a declared object from its canonical
// chain: the first type operator decides.
func DeclSize(d *Decl) int {
	return chainSize(d.Spec, d.Dclr)
}

func TypeNameSize(tn *TypeName) int {
	return chainSize(tn.Spec, tn.Dclr)
}

func chainSize(spec *TypeSpec, head *Dcl) int {
	first := firstTypeNode(head)
	if first == nil {
		return SpecTypeSize(spec)
	}
	switch first.Kind {
	case DCL_POINTER, DCL_FUN:
		return target.PointerSize
	case DCL_ARRAY:
		return arraySize(spec, first)
	}
	return SpecTypeSize(spec)
}

// arraySize multiplies the consecutive dimensions by the element size.
// A missing outermost dimension counts as 1 for sizing.
func arraySize(spec *TypeSpec, first *Dcl) int {
	elems := 1
	d := first
	for d != nil && d.Kind == DCL_ARRAY {
		dim := int(d.DimVal)
		if dim == 0 {
			dim = 1
		}
		elems *= dim
		d = d.Next
	}
	var elemSize int
	if d == nil {
		elemSize = SpecTypeSize(spec)
	} else {
		elemSize = chainSize(spec, d)
	}
	return elems * elemSize
}

// ArrayElemSize is the size of one element of the outermost dimension.
func ArrayElemSize(spec *TypeSpec, head *Dcl) int {
	first := firstTypeNode(head)
	if first == nil || first.Kind != DCL_ARRAY {
		return chainSize(spec, head)
	}
	return chainSize(spec, first.Next)
}

func padAlign(size int, align int) int {
	if align <= 1 {
		return size
	}
	if rem := size % align; rem != 0 {
		return size + align - rem
	}
	return size
}

// fieldNaturalAlign is the boundary a field is padded to: its scalar size,
// the element size for arrays, the aggregate alignment for nested
// aggregates, capped by the owning aggregate's declared alignment.
func fieldNaturalAlign(a *Aggr, f *Decl) int {
	if f.FieldAlign > 0 {
		return f.FieldAlign
	}
	var align int
	first := firstTypeNode(f.Dclr)
	switch {
	case first != nil && first.Kind == DCL_POINTER:
		align = target.PointerAlignment
	case first != nil && first.Kind == DCL_ARRAY:
		align = ArrayElemSize(f.Spec, f.Dclr)
	case f.Spec.IsAggr() && f.Spec.Aggr != nil:
		align = AggrAlign(f.Spec.Aggr)
	default:
		align = SpecTypeSize(f.Spec)
	}
	if a.Align > 0 && align > a.Align {
		align = a.Align
	}
	return align
}

// AggrAlign is the alignment an aggregate imposes on enclosing layouts:
// pack alignment when pragma'd, otherwise the largest field size.
func AggrAlign(a *Aggr) int {
	if a.PackAlign > 0 {
		return a.PackAlign
	}
	maxField := 1
	for _, f := range a.Fields {
		if fs := DeclSize(f); fs > maxField {
			maxField = fs
		}
	}
	if a.Align > 0 && maxField > a.Align {
		return a.Align
	}
	return maxField
}

// AggrSize lays the aggregate out, filling per-field byte and bit offsets,
// and returns the padded total size. Results are cached until the field
// list changes.
func AggrSize(a *Aggr) int {
	if a.sizeValid {
		return a.size
	}
	if a.IsUnion {
		a.size = unionSize(a)
	} else {
		a.size = structSize(a)
	}
	a.sizeValid = true
	return a.size
}

func structSize(a *Aggr) int {
	ofst := 0
	// state of the open bit-field group
	groupKind := BaseKind(-1)
	groupBits := 0
	groupUnit := 0
	groupOfst := 0

	closeGroup := func() {
		if groupBits > 0 {
			ofst = groupOfst + groupUnit
		}
		groupKind = BaseKind(-1)
		groupBits = 0
		groupUnit = 0
	}

	for _, f := range a.Fields {
		if f.IsBitField() {
			id := IdOf(f.Dclr)
			unit := SpecTypeSize(f.Spec)
			kind := f.Spec.BaseKind()
			if groupBits == 0 || kind != groupKind ||
				groupBits+id.BitWidth > groupUnit*BITS_PER_BYTE {
				closeGroup()
				ofst = padAlign(ofst, capAlign(a, unit))
				groupKind = kind
				groupUnit = unit
				groupOfst = ofst
				groupBits = 0
			}
			f.FieldOffset = groupOfst
			f.BitOffset = groupBits
			groupBits += id.BitWidth
			continue
		}
		closeGroup()
		align := fieldNaturalAlign(a, f)
		ofst = padAlign(ofst, align)
		f.FieldOffset = ofst
		f.BitOffset = 0
		ofst += DeclSize(f)
	}
	closeGroup()
	return padAlign(ofst, AggrAlign(a))
}

func unionSize(a *Aggr) int {
	max := 0
	for _, f := range a.Fields {
		f.FieldOffset = 0
		f.BitOffset = 0
		sz := DeclSize(f)
		if f.IsBitField() {
			sz = SpecTypeSize(f.Spec)
		}
		if sz > max {
			max = sz
		}
	}
	return padAlign(max, AggrAlign(a))
}

func capAlign(a *Aggr, align int) int {
	if a.Align > 0 && align > a.Align {
		return a.Align
	}
	return align
}
