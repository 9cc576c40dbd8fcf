package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

func kinds(seq Sequence) (out []Kind) {
	for _, c := range seq.Steps {
		out = append(out, c.Kind)
	}
	return
}

func TestStandard(t *testing.T) {
	assert := assert.New(t)

	base := types.NewClass("B")
	base.Complete = true
	derived := types.NewClass("D")
	derived.Base = base
	derived.Complete = true

	cInt := types.Int.Qualified(true, false)

	table := []struct {
		name  string
		from  *types.Type
		cat   types.Category
		to    *types.Type
		null  bool
		ok    bool
		kinds []Kind
	}{
		{"int prvalue to int", types.Int, types.PRVALUE, types.Int, false, true, nil},
		{"int lvalue to int", types.Int, types.LVALUE, types.Int, false, true, []Kind{LVALUE_TO_RVALUE}},
		{"const int lvalue to int", cInt, types.LVALUE, types.Int, false, true, []Kind{LVALUE_TO_RVALUE}},
		{"int to const int", types.Int, types.PRVALUE, cInt, false, true, nil},
		{"char to int", types.Char, types.PRVALUE, types.Int, false, true, []Kind{INTEGRAL_PROMOTION}},
		{"int to char", types.Int, types.PRVALUE, types.Char, false, true, []Kind{INTEGRAL_CONVERSION}},
		{"char to double", types.Char, types.PRVALUE, types.Double, false, true, []Kind{INTEGRAL_TO_FLOAT}},
		{"float to double", types.Float, types.PRVALUE, types.Double, false, true, []Kind{FLOATING_PROMOTION}},
		{"double to float", types.Double, types.PRVALUE, types.Float, false, true, []Kind{FLOATING_CONVERSION}},
		{"double lvalue to int", types.Double, types.LVALUE, types.Int, false, true, []Kind{LVALUE_TO_RVALUE, FLOAT_TO_INTEGRAL}},
		{"array to pointer", types.ArrayOf(types.Int, 3), types.LVALUE, types.PointerTo(types.Int), false, true, []Kind{ARRAY_TO_POINTER}},
		{"array to bool", types.ArrayOf(types.Int, 3), types.LVALUE, types.Bool, false, true, []Kind{ARRAY_TO_POINTER, POINTER_TO_BOOL}},
		{"array to const pointer", types.ArrayOf(types.Int, 3), types.LVALUE, types.PointerTo(cInt), false, true, []Kind{ARRAY_TO_POINTER, QUALIFICATION}},
		{"null literal", types.Int, types.PRVALUE, types.PointerTo(types.Double), true, true, []Kind{NULL_POINTER}},
		{"int to pointer", types.Int, types.PRVALUE, types.PointerTo(types.Double), false, false, nil},
		{"derived to base pointer", types.PointerTo(types.ClassType(derived)), types.PRVALUE, types.PointerTo(types.ClassType(base)), false, true, []Kind{POINTER_CONVERSION}},
		{"base to derived pointer", types.PointerTo(types.ClassType(base)), types.PRVALUE, types.PointerTo(types.ClassType(derived)), false, false, nil},
		{"const pointer drop", types.PointerTo(cInt), types.PRVALUE, types.PointerTo(types.Int), false, false, nil},
		{"pointer to void pointer", types.PointerTo(types.Int), types.PRVALUE, types.PointerTo(types.Void), false, true, []Kind{POINTER_CONVERSION}},
		{"class to int", types.ClassType(base), types.LVALUE, types.Int, false, false, nil},
		{"class copy", types.ClassType(base), types.LVALUE, types.ClassType(base), false, true, []Kind{LVALUE_TO_RVALUE}},
	}

	for _, entry := range table {
		seq, ok := Standard(entry.from, entry.cat, entry.to, entry.null)
		assert.Equal(entry.ok, ok, entry.name)
		if entry.ok {
			assert.Equal(entry.kinds, kinds(seq), entry.name)
			assert.Equal(len(entry.kinds), seq.Len(), entry.name)
		}
	}
}

func TestConversion_Apply(t *testing.T) {
	assert := assert.New(t)

	c := Conversion{Kind: FLOAT_TO_INTEGRAL, From: types.Double, To: types.Int}
	assert.Equal(int64(3), c.Apply(value.New(types.Double, 3.9)).Int())
	assert.Equal(int64(-3), c.Apply(value.New(types.Double, -3.9)).Int())

	b := Conversion{Kind: FLOAT_TO_INTEGRAL, From: types.Double, To: types.Bool}
	assert.True(b.Apply(value.New(types.Double, 0.1)).Bool())
	assert.False(b.Apply(value.New(types.Double, 0.0)).Bool())

	i2f := Conversion{Kind: INTEGRAL_TO_FLOAT, From: types.Int, To: types.Double}
	v := i2f.Apply(value.New(types.Int, int64(7)))
	assert.Equal(float64(7), v.Raw())
	assert.True(types.SameType(types.Double, v.Type))

	inv := i2f.Apply(value.Invalid(types.Int))
	assert.False(inv.IsValid())

	ptr := Conversion{Kind: POINTER_TO_BOOL, From: types.PointerTo(types.Int), To: types.Bool}
	assert.False(ptr.Apply(value.Pointer(types.PointerTo(types.Int), 0)).Bool())
	assert.True(ptr.Apply(value.Pointer(types.PointerTo(types.Int), 40)).Bool())

	null := Conversion{Kind: NULL_POINTER, From: types.Int, To: types.PointerTo(types.Int)}
	assert.Equal(int64(0), null.Apply(value.New(types.Int, int64(0))).Int())
}

func TestSequence_Apply(t *testing.T) {
	assert := assert.New(t)

	seq, ok := Standard(types.Double, types.LVALUE, types.Char, false)
	assert.True(ok)
	v := seq.Apply(value.New(types.Double, 65.7))
	assert.Equal("A", v.String())

	short, _ := Standard(types.Char, types.PRVALUE, types.Char, false)
	long, _ := Standard(types.Char, types.PRVALUE, types.Double, false)
	assert.Less(Compare(short, long), 0)
	assert.Greater(Compare(long, short), 0)
}

func TestArithmetic(t *testing.T) {
	assert := assert.New(t)

	assert.Same(types.Int, IntegralPromotion(types.Char))
	assert.Same(types.Int, IntegralPromotion(types.Bool))
	assert.Same(types.Double, IntegralPromotion(types.Double))

	assert.Same(types.Double, UsualArithmetic(types.Int, types.Double))
	assert.Same(types.Float, UsualArithmetic(types.Float, types.Char))
	assert.Same(types.Int, UsualArithmetic(types.Char, types.Bool))
}
