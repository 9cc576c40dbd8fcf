package types

import (
	"encoding/binary"
	"math"
)

// Category is the value category of an expression.
type Category int

const (
	PRVALUE = Category(0)
	LVALUE  = Category(1)
)

func (c Category) String() string {
	if c == LVALUE {
		return "lvalue"
	}
	return "prvalue"
}

// AsInt converts a raw scalar to int64, truncating floats toward zero.
func AsInt(raw any) int64 {
	switch v := raw.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// AsFloat converts a raw scalar to float64.
func AsFloat(raw any) float64 {
	switch v := raw.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Zero is the raw zero value of a scalar type.
func (t *Type) Zero() any {
	if t.IsFloating() {
		return float64(0)
	}
	return int64(0)
}

// Normalize converts raw into the canonical raw form of t: int64 for
// integral and pointer types, float64 for floating types, truncated to the
// width of t.
func (t *Type) Normalize(raw any) any {
	switch t.Kind {
	case BOOL:
		if AsFloat(raw) != 0 {
			return int64(1)
		}
		return int64(0)
	case CHAR:
		return int64(int8(AsInt(raw)))
	case INT:
		return int64(int32(AsInt(raw)))
	case FLOAT:
		return float64(float32(AsFloat(raw)))
	case DOUBLE:
		return AsFloat(raw)
	case POINTER:
		return AsInt(raw)
	}
	return raw
}

// Encode a raw scalar into little-endian bytes of length t.Size().
func (t *Type) Encode(raw any) (data []byte) {
	data = make([]byte, t.Size())
	switch t.Kind {
	case BOOL:
		if AsFloat(raw) != 0 {
			data[0] = 1
		}
	case CHAR:
		data[0] = byte(int8(AsInt(raw)))
	case INT:
		binary.LittleEndian.PutUint32(data, uint32(int32(AsInt(raw))))
	case FLOAT:
		binary.LittleEndian.PutUint32(data, math.Float32bits(float32(AsFloat(raw))))
	case DOUBLE:
		binary.LittleEndian.PutUint64(data, math.Float64bits(AsFloat(raw)))
	case POINTER:
		binary.LittleEndian.PutUint64(data, uint64(AsInt(raw)))
	}
	return
}

// Decode little-endian bytes into a raw scalar of type t.
func (t *Type) Decode(data []byte) any {
	if int64(len(data)) < t.Size() {
		return t.Zero()
	}
	switch t.Kind {
	case BOOL:
		if data[0] != 0 {
			return int64(1)
		}
		return int64(0)
	case CHAR:
		return int64(int8(data[0]))
	case INT:
		return int64(int32(binary.LittleEndian.Uint32(data)))
	case FLOAT:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	case DOUBLE:
		return math.Float64frombits(binary.LittleEndian.Uint64(data))
	case POINTER:
		return int64(binary.LittleEndian.Uint64(data))
	}
	return nil
}
