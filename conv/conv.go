// Package conv ranks and applies standard conversion sequences.
//
// A standard conversion sequence is at most three conversions, in order:
// an lvalue transformation (lvalue-to-rvalue or array-to-pointer), one
// real conversion (promotion, numeric, pointer or boolean conversion),
// and a qualification adjustment. Each step is a Conversion with its own
// Apply; a Sequence records the chain and its length.
package conv

import (
	"math"
	"strconv"

	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

type Kind int

const (
	LVALUE_TO_RVALUE    = Kind(0)
	ARRAY_TO_POINTER    = Kind(1)
	QUALIFICATION       = Kind(2)
	NULL_POINTER        = Kind(3)
	POINTER_CONVERSION  = Kind(4)
	POINTER_TO_BOOL     = Kind(5)
	INTEGRAL_PROMOTION  = Kind(6)
	INTEGRAL_CONVERSION = Kind(7)
	FLOATING_PROMOTION  = Kind(8)
	FLOATING_CONVERSION = Kind(9)
	INTEGRAL_TO_FLOAT   = Kind(10)
	FLOAT_TO_INTEGRAL   = Kind(11)
)

var _kind_names = [...]string{
	LVALUE_TO_RVALUE:    "lvalue-to-rvalue",
	ARRAY_TO_POINTER:    "array-to-pointer",
	QUALIFICATION:       "qualification",
	NULL_POINTER:        "null pointer",
	POINTER_CONVERSION:  "pointer conversion",
	POINTER_TO_BOOL:     "pointer to bool",
	INTEGRAL_PROMOTION:  "integral promotion",
	INTEGRAL_CONVERSION: "integral conversion",
	FLOATING_PROMOTION:  "floating point promotion",
	FLOATING_CONVERSION: "floating point conversion",
	INTEGRAL_TO_FLOAT:   "integral to floating",
	FLOAT_TO_INTEGRAL:   "floating to integral",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(_kind_names) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return _kind_names[k]
}

// Conversion is a single step of a standard conversion sequence.
type Conversion struct {
	Kind Kind
	From *types.Type
	To   *types.Type
}

// Category of the converted expression: every conversion yields a prvalue.
func (c Conversion) Category() types.Category {
	return types.PRVALUE
}

// Apply the conversion to a value of type From. Lvalue transformations
// are applied by the caller, which owns the object being read; here they
// only retype the value. Conversions never fail; an invalid input yields
// an invalid output.
func (c Conversion) Apply(v value.Value) value.Value {
	switch c.Kind {
	case LVALUE_TO_RVALUE, ARRAY_TO_POINTER, QUALIFICATION, POINTER_CONVERSION:
		return v.WithType(c.To)
	case NULL_POINTER:
		return value.Pointer(c.To, 0).WithValid(v.IsValid())
	case POINTER_TO_BOOL:
		return value.New(c.To, v.Int() != 0).WithValid(v.IsValid())
	case FLOAT_TO_INTEGRAL:
		f := v.Float()
		if c.To.Kind == types.BOOL {
			return value.New(c.To, f != 0).WithValid(v.IsValid())
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return value.Invalid(c.To)
		}
		return value.New(c.To, int64(math.Trunc(f))).WithValid(v.IsValid())
	}

	return value.New(c.To, v.Raw()).WithValid(v.IsValid())
}

// Sequence is a composed chain of conversions.
type Sequence struct {
	Steps []Conversion
	From  *types.Type
	To    *types.Type
}

// Len is the number of conversions in the chain.
func (s Sequence) Len() int {
	return len(s.Steps)
}

// Apply every step in order.
func (s Sequence) Apply(v value.Value) value.Value {
	for _, c := range s.Steps {
		v = c.Apply(v)
	}
	return v
}

// Compare ranks two sequences by chain length: negative when a is better.
func Compare(a, b Sequence) int {
	return a.Len() - b.Len()
}

// IntegralPromotion returns the promoted type of t: bool and char promote
// to int; everything else is unchanged.
func IntegralPromotion(t *types.Type) *types.Type {
	if t.Kind == types.BOOL || t.Kind == types.CHAR {
		return types.Int
	}
	return t.Unqualified()
}

// UsualArithmetic returns the common type of two arithmetic operands.
func UsualArithmetic(a, b *types.Type) *types.Type {
	if a.Kind == types.DOUBLE || b.Kind == types.DOUBLE {
		return types.Double
	}
	if a.Kind == types.FLOAT || b.Kind == types.FLOAT {
		return types.Float
	}
	return types.Int
}

// Decay returns the lvalue transformation for an operand of type t with
// the given category, and the resulting prvalue type. Class lvalues are
// copied by value.
func Decay(t *types.Type, cat types.Category) (c Conversion, to *types.Type, ok bool) {
	switch {
	case t.Kind == types.ARRAY:
		to = types.PointerTo(t.Elem)
		c = Conversion{Kind: ARRAY_TO_POINTER, From: t, To: to}
		ok = true
	case cat == types.LVALUE:
		to = t.Unqualified()
		c = Conversion{Kind: LVALUE_TO_RVALUE, From: t, To: to}
		ok = true
	default:
		to = t
	}
	return
}

// Standard computes the standard conversion sequence turning an
// expression of type from and category cat into a prvalue of type to.
// isNull marks an integer literal zero, which converts to any pointer.
// Reference binding is not a standard conversion and is handled by the
// caller.
func Standard(from *types.Type, cat types.Category, to *types.Type, isNull bool) (seq Sequence, ok bool) {
	seq.From = from
	seq.To = to

	cur := from
	if c, decayed, did := Decay(from, cat); did && to.Kind != types.ARRAY {
		seq.Steps = append(seq.Steps, c)
		cur = decayed
	}

	target := to.Unqualified()
	if step, next, found := realConversion(cur, target, isNull); found {
		seq.Steps = append(seq.Steps, step)
		cur = next
	}

	if cur.Kind == types.POINTER && target.Kind == types.POINTER &&
		!types.SameType(cur.Unqualified(), target) &&
		types.IsCvConvertible(cur, target) {
		seq.Steps = append(seq.Steps, Conversion{Kind: QUALIFICATION, From: cur, To: target})
		cur = target
	}

	ok = types.SameType(cur.Unqualified(), target)
	return
}

func realConversion(from, to *types.Type, isNull bool) (c Conversion, next *types.Type, ok bool) {
	if types.Similar(from.Unqualified(), to) {
		return
	}

	kind := Kind(-1)
	next = to

	switch {
	case to.Kind == types.BOOL && from.Kind == types.POINTER:
		kind = POINTER_TO_BOOL
	case to.Kind == types.POINTER && isNull && from.IsIntegral():
		kind = NULL_POINTER
	case to.Kind == types.POINTER && from.Kind == types.POINTER:
		switch {
		case to.Elem.IsVoid() && from.Elem.IsObject():
			kind = POINTER_CONVERSION
		case types.IsDerivedFrom(from.Elem, to.Elem):
			kind = POINTER_CONVERSION
		}
		if kind == POINTER_CONVERSION {
			// Pointee keeps its qualification; the qualification step checks it.
			next = types.PointerTo(to.Elem.Qualified(from.Elem.Const, from.Elem.Volatile))
		}
	case to.IsIntegral() && from.IsIntegral():
		if to.Kind == types.INT && (from.Kind == types.BOOL || from.Kind == types.CHAR) {
			kind = INTEGRAL_PROMOTION
		} else {
			kind = INTEGRAL_CONVERSION
		}
	case to.IsIntegral() && from.IsFloating():
		kind = FLOAT_TO_INTEGRAL
	case to.IsFloating() && from.IsFloating():
		if to.Kind == types.DOUBLE && from.Kind == types.FLOAT {
			kind = FLOATING_PROMOTION
		} else {
			kind = FLOATING_CONVERSION
		}
	case to.IsFloating() && from.IsIntegral():
		kind = INTEGRAL_TO_FLOAT
	}

	if kind < 0 {
		next = nil
		return
	}

	c = Conversion{Kind: kind, From: from, To: next}
	ok = true
	return
}
