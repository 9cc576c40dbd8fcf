package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesjuett/lobster-sub011/types"
)

func TestValue_String(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		v    Value
		text string
	}{
		{New(types.Int, int64(-17)), "-17"},
		{New(types.Bool, int64(5)), "1"},
		{New(types.Bool, int64(0)), "0"},
		{New(types.Char, int64('x')), "x"},
		{New(types.Double, 3.14), "3.14"},
		{New(types.Double, 1e6), "1e+06"},
		{New(types.Double, 100000.0), "100000"},
		{New(types.Double, 1.0/3.0), "0.333333"},
		{New(types.Float, 1.1), "1.1"},
		{New(types.Double, math.Inf(1)), "inf"},
		{Pointer(types.PointerTo(types.Int), 0x1234), "0x1234"},
		{Composite(types.ArrayOf(types.Int, 2), []Value{New(types.Int, int64(1)), New(types.Int, int64(2))}), "{1, 2}"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.v.String())
	}
}

func TestValue_Validity(t *testing.T) {
	assert := assert.New(t)

	v := New(types.Int, int64(3))
	assert.True(v.IsValid())
	assert.False(Invalid(types.Int).IsValid())
	assert.False(v.WithValid(false).IsValid())

	arr := Composite(types.ArrayOf(types.Int, 2), []Value{v, Invalid(types.Int)})
	assert.False(arr.IsValid())
	assert.True(arr.IsComposite())

	fromBytes := FromBytes(types.Int, types.Int.Encode(int64(99)), false)
	assert.Equal(int64(99), fromBytes.Int())
	assert.False(fromBytes.IsValid())
}

func TestValue_Conversion(t *testing.T) {
	assert := assert.New(t)

	d := New(types.Double, -2.75)
	i := d.WithType(types.Int)
	assert.Equal(int64(-2), i.Int())
	assert.True(i.Bool())

	c := New(types.Int, int64(65)).WithType(types.Char)
	assert.Equal("A", c.String())

	b := New(types.Double, 0.0).WithType(types.Bool)
	assert.False(b.Bool())
}

func TestValue_Pointer(t *testing.T) {
	assert := assert.New(t)

	p := ArrayPointer(types.PointerTo(types.Int), 100, Bounds{Start: 100, End: 112})
	bounds, ok := p.Bounds()
	assert.True(ok)
	assert.True(bounds.Contains(108, 4))
	assert.False(bounds.Contains(112, 4))
	assert.False(bounds.Contains(96, 4))

	moved := p.WithRaw(int64(104))
	assert.Equal(int64(104), moved.Int())
	_, ok = moved.Bounds()
	assert.True(ok)

	_, ok = moved.WithoutBounds().Bounds()
	assert.False(ok)
}

func TestValue_Equal(t *testing.T) {
	assert := assert.New(t)

	assert.True(New(types.Int, int64(1)).Equal(New(types.Int, int64(1))))
	assert.False(New(types.Int, int64(1)).Equal(New(types.Char, int64(1))))
	assert.False(New(types.Int, int64(1)).Equal(Invalid(types.Int)))
	assert.Equal([]byte{1, 0, 0, 0, 2, 0, 0, 0},
		Composite(types.ArrayOf(types.Int, 2), []Value{New(types.Int, int64(1)), New(types.Int, int64(2))}).Bytes())
}
