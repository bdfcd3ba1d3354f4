package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfkiwl/xocfe/symtab"
)

var testStrtab = symtab.NewStrtab()

func field(name string, flags Des, bitWidth int) *Decl {
	id := NewDcl(DCL_ID)
	id.Sym = testStrtab.Add(name)
	id.BitWidth = bitWidth
	return &Decl{Spec: SpecOf(flags), Dclr: id}
}

func arrayField(name string, flags Des, dims ...int64) *Decl {
	f := field(name, flags, 0)
	for _, dim := range dims {
		arr := NewDcl(DCL_ARRAY)
		arr.DimVal = dim
		f.Dclr = AppendDcl(f.Dclr, arr)
	}
	return f
}

func TestScalarSizes(t *testing.T) {
	assert.Equal(t, 1, SpecTypeSize(SpecOf(SPEC_CHAR)))
	assert.Equal(t, 1, SpecTypeSize(SpecOf(SPEC_BOOL)))
	assert.Equal(t, 1, SpecTypeSize(SpecOf(SPEC_VOID)))
	assert.Equal(t, 2, SpecTypeSize(SpecOf(SPEC_SHORT)))
	assert.Equal(t, 4, SpecTypeSize(SpecOf(SPEC_INT)))
	assert.Equal(t, 4, SpecTypeSize(SpecOf(SPEC_LONG)))
	assert.Equal(t, 8, SpecTypeSize(SpecOf(SPEC_LONGLONG)))
	assert.Equal(t, 4, SpecTypeSize(SpecOf(SPEC_FLOAT)))
	assert.Equal(t, 8, SpecTypeSize(SpecOf(SPEC_DOUBLE)))
	assert.Equal(t, 4, SpecTypeSize(SpecOf(SPEC_ENUM)))
}

func TestArraySize(t *testing.T) {
	f := arrayField("a", SPEC_INT, 4)
	assert.Equal(t, 16, DeclSize(f))

	multi := arrayField("m", SPEC_CHAR, 3, 5)
	assert.Equal(t, 15, DeclSize(multi))

	// open outermost dimension counts as one element
	open := arrayField("x", SPEC_INT, 0, 20)
	assert.Equal(t, 80, DeclSize(open))
}

func TestPointerSizeOnChain(t *testing.T) {
	f := field("p", SPEC_INT, 0)
	f.Dclr = AppendDcl(f.Dclr, NewDcl(DCL_POINTER))
	assert.Equal(t, PointerSize(), DeclSize(f))
}

func TestStructLayoutWithBitFields(t *testing.T) {
	a := NewAggr(testStrtab.Add("S"), false, nil, 0)
	fa := field("a", SPEC_INT, 3)
	fb := field("b", SPEC_INT, 5)
	fc := field("c", SPEC_INT, 0)
	a.SetFields([]*Decl{fa, fb, fc})

	// one int holds the bit-field group, another holds c
	assert.Equal(t, 8, AggrSize(a))
	assert.Equal(t, 0, fa.FieldOffset)
	assert.Equal(t, 0, fa.BitOffset)
	assert.Equal(t, 0, fb.FieldOffset)
	assert.Equal(t, 3, fb.BitOffset)
	assert.Equal(t, 4, fc.FieldOffset)
	assert.Equal(t, 0, fc.BitOffset)
}

func TestBitFieldGroupOverflowStartsNewUnit(t *testing.T) {
	a := NewAggr(testStrtab.Add("Wide"), false, nil, 0)
	f1 := field("x", SPEC_INT, 20)
	f2 := field("y", SPEC_INT, 20)
	a.SetFields([]*Decl{f1, f2})

	assert.Equal(t, 8, AggrSize(a))
	assert.Equal(t, 0, f1.FieldOffset)
	assert.Equal(t, 4, f2.FieldOffset)
	assert.Equal(t, 0, f2.BitOffset)
}

func TestBitFieldBaseKindChangeEndsGroup(t *testing.T) {
	a := NewAggr(testStrtab.Add("Mix"), false, nil, 0)
	f1 := field("x", SPEC_CHAR, 2)
	f2 := field("y", SPEC_INT, 2)
	a.SetFields([]*Decl{f1, f2})

	assert.Equal(t, 0, f1.FieldOffset)
	assert.Equal(t, 4, f2.FieldOffset)
	assert.Equal(t, 0, f2.BitOffset)
	assert.Equal(t, 8, AggrSize(a))
}

func TestStructPadding(t *testing.T) {
	a := NewAggr(testStrtab.Add("Pad"), false, nil, 0)
	fc := field("c", SPEC_CHAR, 0)
	fi := field("i", SPEC_INT, 0)
	a.SetFields([]*Decl{fc, fi})

	assert.Equal(t, 0, fc.FieldOffset)
	assert.Equal(t, 4, fi.FieldOffset)
	assert.Equal(t, 8, AggrSize(a))
}

func TestPackAlignOverridesPadding(t *testing.T) {
	a := NewAggr(testStrtab.Add("Packed"), false, nil, 0)
	a.PackAlign = 1
	fc := field("c", SPEC_CHAR, 0)
	fi := field("i", SPEC_INT, 0)
	fi.FieldAlign = 1
	a.SetFields([]*Decl{fc, fi})

	assert.Equal(t, 0, fc.FieldOffset)
	assert.Equal(t, 1, fi.FieldOffset)
	assert.Equal(t, 5, AggrSize(a))
}

func TestUnionSizeIsMaxField(t *testing.T) {
	u := NewAggr(testStrtab.Add("U"), true, nil, 0)
	fc := field("c", SPEC_CHAR, 0)
	fd := field("d", SPEC_DOUBLE, 0)
	u.SetFields([]*Decl{fc, fd})

	assert.Equal(t, 8, AggrSize(u))
	assert.Equal(t, 0, fc.FieldOffset)
	assert.Equal(t, 0, fd.FieldOffset)
}

func TestFieldIndicesArePositional(t *testing.T) {
	a := NewAggr(testStrtab.Add("Idx"), false, nil, 0)
	fs := []*Decl{field("a", SPEC_INT, 0), field("b", SPEC_INT, 0), field("c", SPEC_CHAR, 0)}
	a.SetFields(fs)
	for i, f := range a.Fields {
		assert.Equal(t, i, f.FieldIndex)
		assert.True(t, f.IsSubField)
		assert.Greater(t, DeclSize(f), 0)
	}
}

func TestNestedAggrFieldSize(t *testing.T) {
	inner := NewAggr(testStrtab.Add("Inner"), false, nil, 0)
	inner.SetFields([]*Decl{field("a", SPEC_INT, 0), field("b", SPEC_INT, 0)})

	outerField := field("in", SPEC_STRUCT, 0)
	outerField.Spec.Aggr = inner
	outer := NewAggr(testStrtab.Add("Outer"), false, nil, 0)
	outer.SetFields([]*Decl{field("c", SPEC_CHAR, 0), outerField})

	assert.Equal(t, 8, AggrSize(inner))
	assert.Equal(t, 4, outerField.FieldOffset)
	// total pads to the largest field size
	assert.Equal(t, 16, AggrSize(outer))
}
