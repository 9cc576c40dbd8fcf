package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testClass(name string, base *Class, members ...Member) *Class {
	c := NewClass(name)
	c.Base = base
	c.Members = members
	c.Complete = true
	return c
}

func TestType_Size(t *testing.T) {
	assert := assert.New(t)

	base := testClass("B", nil, Member{"x", Int})
	derived := testClass("D", base, Member{"y", Int}, Member{"z", Double})
	empty := testClass("E", nil)
	fromEmpty := testClass("F", empty, Member{"x", Int})

	table := []struct {
		t    *Type
		size int64
	}{
		{Bool, 1},
		{Char, 1},
		{Int, 4},
		{Float, 4},
		{Double, 8},
		{PointerTo(Char), 8},
		{ArrayOf(Int, 5), 20},
		{ArrayOf(ArrayOf(Char, 3), 2), 6},
		{ClassType(base), 4},
		{ClassType(derived), 16},
		{ClassType(empty), 1},
		{ClassType(fromEmpty), 5},
		{ArrayOf(ClassType(empty), 3), 3},
		{ReferenceTo(Int), 0},
		{Void, 0},
	}

	for _, entry := range table {
		assert.Equal(entry.size, entry.t.Size(), entry.t.String())
	}
}

func TestType_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("int", Int.String())
	assert.Equal("const int", Int.Qualified(true, false).String())
	assert.Equal("int *", PointerTo(Int).String())
	assert.Equal("int *p", PointerTo(Int).Declare("p"))
	assert.Equal("int * const p", PointerTo(Int).Qualified(true, false).Declare("p"))
	assert.Equal("int[3]", ArrayOf(Int, 3).String())
	assert.Equal("int(*)[3]", PointerTo(ArrayOf(Int, 3)).String())
	assert.Equal("int(double, char)", FunctionOf(Int, []*Type{Double, Char}, false).String())
	assert.Equal("int &r", ReferenceTo(Int).Declare("r"))
	assert.Equal("B", ClassType(testClass("B", nil)).String())
}

func TestSameType(t *testing.T) {
	assert := assert.New(t)

	a := testClass("A", nil)
	a2 := testClass("A", nil)

	assert.True(SameType(PointerTo(Int), PointerTo(Int)))
	assert.False(SameType(PointerTo(Int), PointerTo(Int.Qualified(true, false))))
	assert.True(Similar(PointerTo(Int), PointerTo(Int.Qualified(true, false))))
	assert.False(SameType(ArrayOf(Int, 3), ArrayOf(Int, 4)))
	assert.False(SameType(ClassType(a), ClassType(a2)))

	a2.Link(a)
	assert.True(SameType(ClassType(a), ClassType(a2)))
	assert.Same(a, a2.Canonical())
	a.Link(a2)
	assert.Same(a, a.Canonical())
}

func TestSameSignature(t *testing.T) {
	assert := assert.New(t)

	f1 := FunctionOf(Int, []*Type{Int, Double}, false)
	f2 := FunctionOf(Void, []*Type{Int.Qualified(true, false), Double}, false)
	f3 := FunctionOf(Int, []*Type{Int, Double}, true)

	assert.True(SameSignature(f1, f2))
	assert.False(SameReturnType(f1, f2))
	assert.False(SameSignature(f1, f3))
	assert.False(SameParamTypes(f1.Params, []*Type{Int}))
}

func TestReferenceCompatible(t *testing.T) {
	assert := assert.New(t)

	base := testClass("B", nil)
	derived := testClass("D", base)

	assert.True(ReferenceCompatible(Int, Int))
	assert.True(ReferenceCompatible(Int, Int.Qualified(true, false)))
	assert.False(ReferenceCompatible(Int.Qualified(true, false), Int))
	assert.True(ReferenceCompatible(ClassType(derived), ClassType(base)))
	assert.False(ReferenceCompatible(ClassType(base), ClassType(derived)))
	assert.False(ReferenceCompatible(Int, Double))
}

func TestIsCovariantReturn(t *testing.T) {
	assert := assert.New(t)

	base := ClassType(testClass("B", nil))
	derived := ClassType(testClass("D", base.Class))

	assert.True(IsCovariantReturn(Int, Int))
	assert.False(IsCovariantReturn(Double, Int))
	assert.True(IsCovariantReturn(PointerTo(derived), PointerTo(base)))
	assert.True(IsCovariantReturn(ReferenceTo(derived), ReferenceTo(base)))
	assert.True(IsCovariantReturn(PointerTo(derived), PointerTo(base.Qualified(true, false))))
	assert.False(IsCovariantReturn(PointerTo(derived.Qualified(true, false)), PointerTo(base)))
	assert.False(IsCovariantReturn(PointerTo(base), PointerTo(derived)))
	assert.False(IsCovariantReturn(ReferenceTo(derived), PointerTo(base)))
	assert.False(IsCovariantReturn(PointerTo(Int), PointerTo(Double)))
	assert.False(IsCovariantReturn(derived, base))
}

func TestIsCvConvertible(t *testing.T) {
	assert := assert.New(t)

	cInt := Int.Qualified(true, false)

	assert.True(IsCvConvertible(PointerTo(Int), PointerTo(cInt)))
	assert.False(IsCvConvertible(PointerTo(cInt), PointerTo(Int)))
	assert.False(IsCvConvertible(PointerTo(PointerTo(Int)), PointerTo(PointerTo(cInt))))
	assert.True(IsCvConvertible(PointerTo(PointerTo(Int)), PointerTo(PointerTo(cInt).Qualified(true, false))))
	assert.False(IsCvConvertible(PointerTo(Int), PointerTo(Double)))
}

func TestType_EncodeDecode(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		t   *Type
		raw any
	}{
		{Bool, int64(1)},
		{Bool, int64(0)},
		{Char, int64('A')},
		{Char, int64(-5)},
		{Int, int64(123456)},
		{Int, int64(-42)},
		{Int, int64(math.MaxInt32)},
		{Int, int64(math.MinInt32)},
		{Float, float64(1.5)},
		{Double, float64(3.14159)},
		{Double, float64(-0.25)},
		{PointerTo(Int), int64(5432)},
	}

	for _, entry := range table {
		data := entry.t.Encode(entry.raw)
		assert.Equal(int(entry.t.Size()), len(data))
		assert.Equal(entry.raw, entry.t.Decode(data), entry.t.String())
	}

	assert.Equal([]byte{0x78, 0x56, 0x34, 0x12}, Int.Encode(int64(0x12345678)))
}

func TestType_Normalize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(int64(1), Bool.Normalize(float64(0.5)))
	assert.Equal(int64(0), Bool.Normalize(int64(0)))
	assert.Equal(int64(-56), Char.Normalize(int64(200)))
	assert.Equal(int64(3), Int.Normalize(float64(3.99)))
	assert.Equal(int64(-3), Int.Normalize(float64(-3.99)))
	assert.Equal(float64(2), Double.Normalize(int64(2)))
}
