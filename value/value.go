// Package value holds the typed runtime values passed between expressions.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/jamesjuett/lobster-sub011/types"
)

// Bounds is the byte range [Start, End) of the array a pointer was derived from.
type Bounds struct {
	Start int64
	End   int64
}

// Contains reports whether the n bytes at address lie within the bounds.
func (b Bounds) Contains(address, n int64) bool {
	return address >= b.Start && address+n <= b.End
}

// Value is a typed runtime value. Scalars hold an int64 or float64; arrays
// and classes hold one Value per subobject. A value read from storage that
// was never initialized is invalid, but still carries whatever bits were
// read.
type Value struct {
	Type *types.Type

	raw    any
	elems  []Value
	valid  bool
	bounds *Bounds
}

// New returns a valid scalar value, normalized to the width of t.
func New(t *types.Type, raw any) Value {
	return Value{Type: t, raw: t.Normalize(raw), valid: true}
}

// FromBytes decodes a scalar of type t.
func FromBytes(t *types.Type, data []byte, valid bool) Value {
	return Value{Type: t, raw: t.Decode(data), valid: valid}
}

// Invalid returns an invalid zero value of type t.
func Invalid(t *types.Type) Value {
	return Value{Type: t, raw: t.Zero()}
}

// Composite returns an array or class value from its subobject values.
func Composite(t *types.Type, elems []Value) Value {
	valid := true
	for _, e := range elems {
		valid = valid && e.valid
	}
	return Value{Type: t, elems: elems, valid: valid}
}

// Pointer returns a pointer value of type t holding address.
func Pointer(t *types.Type, address int64) Value {
	return Value{Type: t, raw: address, valid: true}
}

// ArrayPointer returns a pointer value that remembers the array it points into.
func ArrayPointer(t *types.Type, address int64, bounds Bounds) Value {
	return Value{Type: t, raw: address, valid: true, bounds: &bounds}
}

// IsValid reports whether the value was ever initialized.
func (v Value) IsValid() bool {
	return v.valid
}

// IsComposite reports whether the value is an array or class value.
func (v Value) IsComposite() bool {
	return v.elems != nil || (v.Type != nil && (v.Type.IsArray() || v.Type.IsClass()))
}

// Raw returns the underlying int64 or float64.
func (v Value) Raw() any {
	return v.raw
}

func (v Value) Int() int64 {
	return types.AsInt(v.raw)
}

func (v Value) Float() float64 {
	return types.AsFloat(v.raw)
}

// Bool is the C++ truth of a scalar: nonzero is true.
func (v Value) Bool() bool {
	if v.Type != nil && v.Type.IsFloating() {
		return v.Float() != 0
	}
	return v.Int() != 0
}

// Elements of a composite value.
func (v Value) Elements() []Value {
	return v.elems
}

// Bounds of the array a pointer value was derived from.
func (v Value) Bounds() (b Bounds, ok bool) {
	if v.bounds == nil {
		return
	}
	return *v.bounds, true
}

// WithType returns v converted to t, keeping validity and provenance.
func (v Value) WithType(t *types.Type) Value {
	if !v.IsComposite() {
		v.raw = t.Normalize(v.raw)
	}
	v.Type = t
	return v
}

// WithRaw returns v holding a new raw scalar, keeping validity and provenance.
func (v Value) WithRaw(raw any) Value {
	v.raw = v.Type.Normalize(raw)
	return v
}

// WithValid returns v with its validity replaced.
func (v Value) WithValid(valid bool) Value {
	v.valid = valid
	return v
}

// WithoutBounds returns v without array provenance.
func (v Value) WithoutBounds() Value {
	v.bounds = nil
	return v
}

// Bytes encodes the value as it is laid out in memory.
func (v Value) Bytes() (data []byte) {
	if v.IsComposite() {
		for _, e := range v.elems {
			data = append(data, e.Bytes()...)
		}
		return
	}
	return v.Type.Encode(v.raw)
}

// Equal compares type, raw contents and validity.
func (v Value) Equal(other Value) bool {
	if !types.SameType(v.Type, other.Type) || v.valid != other.valid {
		return false
	}
	if v.IsComposite() {
		if len(v.elems) != len(other.elems) {
			return false
		}
		for n := range v.elems {
			if !v.elems[n].Equal(other.elems[n]) {
				return false
			}
		}
		return true
	}
	return v.raw == other.raw
}

// FormatFloat renders a floating value the way an ostream does by default.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func (v Value) String() string {
	if v.IsComposite() {
		parts := make([]string, len(v.elems))
		for n, e := range v.elems {
			parts[n] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}

	switch v.Type.Kind {
	case types.BOOL:
		if v.Bool() {
			return "1"
		}
		return "0"
	case types.CHAR:
		return string(rune(byte(v.Int())))
	case types.FLOAT, types.DOUBLE:
		return FormatFloat(v.Float())
	case types.POINTER:
		return "0x" + strconv.FormatInt(v.Int(), 16)
	case types.VOID:
		return ""
	}
	return strconv.FormatInt(v.Int(), 10)
}
