package types

// SameType reports whether a and b are the identical type, cv-qualifiers
// included at every level.
func SameType(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Const != b.Const || a.Volatile != b.Volatile {
		return false
	}
	return sameShape(a, b, SameType)
}

// Similar reports whether a and b are the same type ignoring cv-qualifiers
// at every level.
func Similar(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return sameShape(a, b, Similar)
}

func sameShape(a, b *Type, same func(a, b *Type) bool) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case POINTER, REFERENCE:
		return same(a.Elem, b.Elem)
	case ARRAY:
		return a.Length == b.Length && same(a.Elem, b.Elem)
	case FUNCTION:
		return a.ThisConst == b.ThisConst &&
			SameType(a.Return, b.Return) &&
			SameParamTypes(a.Params, b.Params)
	case CLASS:
		return a.Class.Same(b.Class)
	}
	return true
}

// SameParamTypes compares parameter lists, ignoring top-level cv.
func SameParamTypes(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !SameType(a[n].Unqualified(), b[n].Unqualified()) {
			return false
		}
	}
	return true
}

// SameSignature compares two function types by parameters and receiver
// constness, ignoring the return type.
func SameSignature(a, b *Type) bool {
	return a.ThisConst == b.ThisConst && SameParamTypes(a.Params, b.Params)
}

// SameReturnType compares the return types of two function types.
func SameReturnType(a, b *Type) bool {
	return SameType(a.Return, b.Return)
}

// IsCovariantReturn reports whether an overrider returning from may
// override a function returning to. Both are the same type, or both
// point or refer to classes where from's class is to's or derived from
// it, and no more cv-qualified.
func IsCovariantReturn(from, to *Type) bool {
	if SameType(from, to) {
		return true
	}
	if from.Kind != to.Kind || (from.Kind != POINTER && from.Kind != REFERENCE) {
		return false
	}
	if from.Const != to.Const || from.Volatile != to.Volatile {
		return false
	}
	return from.Elem.IsClass() && to.Elem.IsClass() && ReferenceCompatible(from.Elem, to.Elem)
}

// IsDerivedFrom reports whether a is a class type derived from class type b.
func IsDerivedFrom(a, b *Type) bool {
	return a.Kind == CLASS && b.Kind == CLASS && a.Class.IsDerivedFrom(b.Class)
}

// ReferenceRelated is true when a reference to `to` may refer to an object
// of type from: the same type or one of its base classes.
func ReferenceRelated(from, to *Type) bool {
	return SameType(from.Unqualified(), to.Unqualified()) || IsDerivedFrom(from, to)
}

// ReferenceCompatible is ReferenceRelated with `to` at least as cv-qualified.
func ReferenceCompatible(from, to *Type) bool {
	if !ReferenceRelated(from, to) {
		return false
	}
	return (!from.Const || to.Const) && (!from.Volatile || to.Volatile)
}

// IsCvConvertible reports whether a qualification conversion turns
// pointer type from into pointer type to.
func IsCvConvertible(from, to *Type) bool {
	if !Similar(from, to) {
		return false
	}

	allConst := true
	for f, t, level := from, to, 0; f != nil && t != nil; f, t, level = f.Elem, t.Elem, level+1 {
		if level > 0 {
			if (f.Const && !t.Const) || (f.Volatile && !t.Volatile) {
				return false
			}
			if (f.Const != t.Const || f.Volatile != t.Volatile) && !allConst {
				return false
			}
			allConst = allConst && t.Const
		}
		if f.Kind != POINTER {
			break
		}
	}

	return true
}
