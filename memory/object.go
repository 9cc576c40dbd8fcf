package memory

import (
	"fmt"
	"strconv"

	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

// Kind of storage an object lives in.
type Kind int

const (
	AUTO           = Kind(0) // Local variable in a stack frame.
	STATIC         = Kind(1) // Global or static local variable.
	DYNAMIC        = Kind(2) // Created by a new-expression.
	TEMPORARY      = Kind(3) // Expression temporary.
	SUBOBJECT      = Kind(4) // Array element, base class or member.
	ANONYMOUS      = Kind(5) // Synthesized for an address with no live object.
	STRING_LITERAL = Kind(6) // Character array of a string literal.
)

var _kind_names = [...]string{
	AUTO:           "automatic",
	STATIC:         "static",
	DYNAMIC:        "dynamic",
	TEMPORARY:      "temporary",
	SUBOBJECT:      "subobject",
	ANONYMOUS:      "anonymous",
	STRING_LITERAL: "string literal",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(_kind_names) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return _kind_names[k]
}

// Object is an addressed instance of a type. Arrays own one subobject
// per element; classes own a base class subobject (if any) followed by one
// subobject per member. Subobjects are contiguous and derive their
// liveness from their parent.
type Object struct {
	Kind    Kind
	Name    string
	Type    *types.Type
	Address int64

	Parent     *Object
	Subobjects []*Object
	Index      int    // Element index within a parent array.
	Member     string // Member name within a parent class.
	IsBase     bool   // Base class subobject.
	ArrayNew   bool   // Allocated by new[].

	mem      *Memory
	alive    bool
	valid    bool
	bounds   *value.Bounds
	boundsAt int64
}

// NewObject creates an unallocated object of type t with its subobjects.
func NewObject(kind Kind, name string, t *types.Type) (obj *Object) {
	obj = &Object{Kind: kind, Name: name, Type: t, Index: -1}
	obj.build()
	return
}

func (obj *Object) build() {
	t := obj.Type
	switch t.Kind {
	case types.ARRAY:
		for n := 0; n < t.Length; n++ {
			sub := &Object{
				Kind:   SUBOBJECT,
				Name:   fmt.Sprintf("%s[%d]", obj.Name, n),
				Type:   t.Elem,
				Parent: obj,
				Index:  n,
			}
			sub.build()
			obj.Subobjects = append(obj.Subobjects, sub)
		}
	case types.CLASS:
		c := t.Class.Canonical()
		if c.Base != nil {
			sub := &Object{
				Kind:   SUBOBJECT,
				Name:   obj.Name,
				Type:   types.ClassType(c.Base).Qualified(t.Const, t.Volatile),
				Parent: obj,
				Index:  -1,
				IsBase: true,
			}
			sub.build()
			obj.Subobjects = append(obj.Subobjects, sub)
		}
		for _, m := range c.Members {
			mt := m.Type
			if t.Const && !mt.IsReference() {
				mt = mt.Qualified(true, mt.Volatile)
			}
			sub := &Object{
				Kind:   SUBOBJECT,
				Name:   obj.Name + "." + m.Name,
				Type:   mt,
				Parent: obj,
				Index:  -1,
				Member: m.Name,
			}
			sub.build()
			obj.Subobjects = append(obj.Subobjects, sub)
		}
	}
}

// place assigns addresses to obj and its subobjects.
func (obj *Object) place(mem *Memory, address int64) {
	obj.mem = mem
	obj.Address = address
	for _, sub := range obj.Subobjects {
		sub.place(mem, address)
		address += sub.Size()
	}
}

// Size in bytes.
func (obj *Object) Size() int64 {
	return obj.Type.Size()
}

// IsAlive reports whether the object's lifetime has begun and not ended.
func (obj *Object) IsAlive() bool {
	if obj.Parent != nil {
		return obj.Parent.IsAlive()
	}
	return obj.alive
}

// IsValid reports whether every scalar in the object has been initialized.
func (obj *Object) IsValid() bool {
	if len(obj.Subobjects) > 0 {
		for _, sub := range obj.Subobjects {
			if !sub.IsValid() {
				return false
			}
		}
		return true
	}
	return obj.valid
}

// Invalidate marks every scalar in the object uninitialized.
func (obj *Object) Invalidate() {
	obj.valid = false
	obj.bounds = nil
	for _, sub := range obj.Subobjects {
		sub.Invalidate()
	}
}

// Complete returns the most-derived object that obj is a base subobject of.
func (obj *Object) Complete() *Object {
	for obj.IsBase && obj.Parent != nil {
		obj = obj.Parent
	}
	return obj
}

// Base returns the base class subobject, if any.
func (obj *Object) Base() (base *Object, ok bool) {
	if len(obj.Subobjects) > 0 && obj.Subobjects[0].IsBase {
		return obj.Subobjects[0], true
	}
	return
}

// MemberNamed returns the member subobject called name, searching base
// class subobjects when obj itself declares no such member.
func (obj *Object) MemberNamed(name string) (member *Object, ok bool) {
	for _, sub := range obj.Subobjects {
		if !sub.IsBase && sub.Member == name {
			return sub, true
		}
	}
	if base, found := obj.Base(); found {
		return base.MemberNamed(name)
	}
	return
}

// AsBase returns the subobject of obj whose class is c.
func (obj *Object) AsBase(c *types.Class) (sub *Object, ok bool) {
	for sub = obj; sub != nil; {
		if sub.Type.IsClass() && sub.Type.Class.Same(c) {
			return sub, true
		}
		next, found := sub.Base()
		if !found {
			break
		}
		sub = next
	}
	sub = nil
	return
}

// Element returns element n of an array object. Indices outside the array
// yield an anonymous object at the computed address.
func (obj *Object) Element(n int) *Object {
	if n >= 0 && n < len(obj.Subobjects) {
		return obj.Subobjects[n]
	}

	elem := obj.Type.Elem
	anon := NewObject(ANONYMOUS, fmt.Sprintf("%s[%d]", obj.Name, n), elem)
	anon.place(obj.mem, obj.Address+int64(n)*elem.Size())
	anon.alive = true
	anon.setValidAll(true)
	return anon
}

func (obj *Object) setValidAll(valid bool) {
	obj.valid = valid
	for _, sub := range obj.Subobjects {
		sub.setValidAll(valid)
	}
}

// find returns the object or subobject at address whose type is similar to t.
func (obj *Object) find(address int64, t *types.Type) *Object {
	if obj.Address == address && types.Similar(obj.Type, t) {
		return obj
	}
	for _, sub := range obj.Subobjects {
		if address >= sub.Address && address < sub.Address+sub.Size() {
			if found := sub.find(address, t); found != nil {
				return found
			}
		}
	}
	return nil
}

// Value returns the object's value without notifying any hook.
func (obj *Object) Value() value.Value {
	return obj.get(false)
}

// ReadValue returns the object's value and notifies the read hooks.
func (obj *Object) ReadValue() value.Value {
	return obj.get(true)
}

func (obj *Object) get(notify bool) (v value.Value) {
	if obj.Type.IsArray() || obj.Type.IsClass() {
		elems := make([]value.Value, len(obj.Subobjects))
		for n, sub := range obj.Subobjects {
			elems[n] = sub.get(notify)
		}
		return value.Composite(obj.Type, elems)
	}

	var data []byte
	if notify {
		data = obj.mem.ReadBytes(obj.Address, obj.Size())
	} else {
		data = obj.mem.GetBytes(obj.Address, obj.Size())
	}
	v = value.FromBytes(obj.Type.Unqualified(), data, obj.valid)
	if obj.bounds != nil && obj.boundsAt == v.Int() {
		v = value.ArrayPointer(v.Type, v.Int(), *obj.bounds).WithValid(obj.valid)
	}

	if notify {
		obj.mem.Hooks.valueRead(obj, v)
	}
	return
}

// SetValue stores v without notifying any hook.
func (obj *Object) SetValue(v value.Value) {
	obj.set(v, false)
}

// WriteValue stores v and notifies the write hooks.
func (obj *Object) WriteValue(v value.Value) {
	obj.set(v, true)
}

func (obj *Object) set(v value.Value, notify bool) {
	if obj.Type.IsArray() || obj.Type.IsClass() {
		elems := v.Elements()
		for n, sub := range obj.Subobjects {
			if n < len(elems) {
				sub.set(elems[n], notify)
			} else {
				sub.Invalidate()
			}
		}
		return
	}

	data := obj.Type.Encode(v.Raw())
	if notify {
		obj.mem.WriteBytes(obj.Address, data)
	} else {
		obj.mem.SetBytes(obj.Address, data)
	}
	obj.valid = v.IsValid()
	obj.bounds = nil
	if b, ok := v.Bounds(); ok {
		obj.bounds = &b
		obj.boundsAt = v.Int()
	}

	if notify {
		obj.mem.Hooks.valueWritten(obj, v)
	}
}

// Describe names the object for diagnostics.
func (obj *Object) Describe() string {
	if obj.Name != "" {
		return obj.Name
	}
	return fmt.Sprintf("%s object at 0x%x", obj.Kind, obj.Address)
}

func (obj *Object) String() string {
	return fmt.Sprintf("%s %s @0x%x", obj.Type, obj.Describe(), obj.Address)
}
