// Package types describes the C++ types understood by the simulator.
//
// A Type is an immutable descriptor: fundamental types, pointers,
// references, arrays, functions and classes. Types know their size in
// bytes, how to encode and decode a scalar value to and from memory, and
// the compatibility predicates used by conversions and name lookup.
package types

import (
	"strconv"
	"strings"
)

type Kind int

const (
	VOID      = Kind(0)
	BOOL      = Kind(1)
	CHAR      = Kind(2)
	INT       = Kind(3)
	FLOAT     = Kind(4)
	DOUBLE    = Kind(5)
	POINTER   = Kind(6)
	REFERENCE = Kind(7)
	ARRAY     = Kind(8)
	FUNCTION  = Kind(9)
	CLASS     = Kind(10)
	OSTREAM   = Kind(11)
)

var _kind_names = [...]string{
	VOID:      "void",
	BOOL:      "bool",
	CHAR:      "char",
	INT:       "int",
	FLOAT:     "float",
	DOUBLE:    "double",
	POINTER:   "pointer",
	REFERENCE: "reference",
	ARRAY:     "array",
	FUNCTION:  "function",
	CLASS:     "class",
	OSTREAM:   "ostream",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(_kind_names) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return _kind_names[k]
}

const (
	POINTER_SIZE = 8 // Size of any pointer.
	OSTREAM_SIZE = 4 // Placeholder storage for stream objects.
)

// Type is an immutable C++ type descriptor.
type Type struct {
	Kind     Kind
	Const    bool
	Volatile bool

	Elem      *Type   // Pointee, referent or array element.
	Length    int     // Array length; negative when unknown.
	Return    *Type   // Function return type.
	Params    []*Type // Function parameter types.
	ThisConst bool    // Member function callable on a const receiver.

	Class *Class // Class descriptor for CLASS types.
}

// Predeclared fundamental types.
var (
	Void    = &Type{Kind: VOID}
	Bool    = &Type{Kind: BOOL}
	Char    = &Type{Kind: CHAR}
	Int     = &Type{Kind: INT}
	Float   = &Type{Kind: FLOAT}
	Double  = &Type{Kind: DOUBLE}
	Ostream = &Type{Kind: OSTREAM}
)

// Fundamental returns the predeclared type with the given name.
func Fundamental(name string) (t *Type, ok bool) {
	switch name {
	case "void":
		t = Void
	case "bool":
		t = Bool
	case "char":
		t = Char
	case "int":
		t = Int
	case "float":
		t = Float
	case "double":
		t = Double
	case "ostream":
		t = Ostream
	default:
		return
	}
	ok = true
	return
}

// PointerTo returns the type of a pointer to elem.
func PointerTo(elem *Type) *Type {
	return &Type{Kind: POINTER, Elem: elem}
}

// ReferenceTo returns the type of a reference to elem.
func ReferenceTo(elem *Type) *Type {
	return &Type{Kind: REFERENCE, Elem: elem}
}

// ArrayOf returns the type of an array of length elements.
func ArrayOf(elem *Type, length int) *Type {
	return &Type{Kind: ARRAY, Elem: elem, Length: length}
}

// FunctionOf returns a function type.
func FunctionOf(ret *Type, params []*Type, thisConst bool) *Type {
	return &Type{Kind: FUNCTION, Return: ret, Params: params, ThisConst: thisConst}
}

// ClassType returns the type naming class c.
func ClassType(c *Class) *Type {
	return &Type{Kind: CLASS, Class: c}
}

// Qualified returns a copy of t with the given top-level cv-qualification.
func (t *Type) Qualified(isConst, isVolatile bool) *Type {
	if t.Const == isConst && t.Volatile == isVolatile {
		return t
	}
	cp := *t
	cp.Const = isConst
	cp.Volatile = isVolatile
	return &cp
}

// Unqualified returns t without top-level cv-qualification.
func (t *Type) Unqualified() *Type {
	return t.Qualified(false, false)
}

// Size in bytes of an object of type t.
func (t *Type) Size() int64 {
	switch t.Kind {
	case BOOL, CHAR:
		return 1
	case INT, FLOAT:
		return 4
	case DOUBLE:
		return 8
	case POINTER:
		return POINTER_SIZE
	case OSTREAM:
		return OSTREAM_SIZE
	case ARRAY:
		if t.Length < 0 {
			return 0
		}
		return t.Elem.Size() * int64(t.Length)
	case CLASS:
		return t.Class.Size()
	}
	return 0
}

func (t *Type) IsVoid() bool      { return t.Kind == VOID }
func (t *Type) IsPointer() bool   { return t.Kind == POINTER }
func (t *Type) IsReference() bool { return t.Kind == REFERENCE }
func (t *Type) IsArray() bool     { return t.Kind == ARRAY }
func (t *Type) IsFunction() bool  { return t.Kind == FUNCTION }
func (t *Type) IsClass() bool     { return t.Kind == CLASS }

// IsIntegral is true for bool, char and int.
func (t *Type) IsIntegral() bool {
	return t.Kind == BOOL || t.Kind == CHAR || t.Kind == INT
}

// IsFloating is true for float and double.
func (t *Type) IsFloating() bool {
	return t.Kind == FLOAT || t.Kind == DOUBLE
}

func (t *Type) IsArithmetic() bool {
	return t.IsIntegral() || t.IsFloating()
}

// IsScalar is true for types held in a single encoded value.
func (t *Type) IsScalar() bool {
	return t.IsArithmetic() || t.Kind == POINTER
}

// IsObject is true for types that describe storage.
func (t *Type) IsObject() bool {
	switch t.Kind {
	case VOID, FUNCTION, REFERENCE:
		return false
	}
	return true
}

// IsComplete is true when the size of t is known.
func (t *Type) IsComplete() bool {
	switch t.Kind {
	case VOID:
		return false
	case ARRAY:
		return t.Length >= 0 && t.Elem.IsComplete()
	case CLASS:
		return t.Class.Canonical().Complete
	}
	return true
}

// IsObjectPointer is true for pointers to object types or void.
func (t *Type) IsObjectPointer() bool {
	return t.Kind == POINTER && (t.Elem.IsObject() || t.Elem.IsVoid())
}

func (t *Type) String() string {
	return t.Declare("")
}

func cvPrefix(t *Type) (s string) {
	if t.Const {
		s += "const "
	}
	if t.Volatile {
		s += "volatile "
	}
	return
}

// Declare renders a declaration of name with type t, as C++ would spell it.
func (t *Type) Declare(name string) string {
	wrap := func(s string) string {
		if t.Elem != nil && (t.Elem.Kind == ARRAY || t.Elem.Kind == FUNCTION) {
			return "(" + s + ")"
		}
		return s
	}

	switch t.Kind {
	case POINTER:
		s := "*"
		if t.Const {
			s += " const"
		}
		if t.Volatile {
			s += " volatile"
		}
		if t.Const || t.Volatile {
			if name != "" {
				s += " "
			}
		}
		return t.Elem.Declare(wrap(s + name))
	case REFERENCE:
		return t.Elem.Declare(wrap("&" + name))
	case ARRAY:
		n := ""
		if t.Length >= 0 {
			n = strconv.Itoa(t.Length)
		}
		return t.Elem.Declare(name + "[" + n + "]")
	case FUNCTION:
		params := make([]string, len(t.Params))
		for n, p := range t.Params {
			params[n] = p.String()
		}
		s := name + "(" + strings.Join(params, ", ") + ")"
		if t.ThisConst {
			s += " const"
		}
		return t.Return.Declare(s)
	}

	base := cvPrefix(t)
	if t.Kind == CLASS {
		base += t.Class.Name
	} else {
		base += t.Kind.String()
	}
	if name == "" || name[0] == '[' || name[0] == '(' {
		return base + name
	}
	return base + " " + name
}
