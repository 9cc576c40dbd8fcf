package construct

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/conv"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

var (
	ErrNoFrame    = errors.New(f("automatic object outside a function call"))
	ErrNoReceiver = errors.New(f("member access without an object"))
	ErrUnbound    = errors.New(f("reference used before it was bound"))
	ErrNoStorage  = errors.New(f("static object has no storage"))
)

// operand is the single sub-expression of a conversion or operator.
func operand(inst *Instance) *Instance {
	return inst.Child(0)
}

// literal is a constant prvalue.
type literal struct {
	expr
	v    value.Value
	null bool // Integer literal zero.
}

func (l *literal) StepForward(rt Runtime, inst *Instance) error {
	inst.Value = l.v
	inst.finish(rt)
	return nil
}

// stringLiteral is the static character array of a string literal.
type stringLiteral struct {
	expr
	text string
}

func (s *stringLiteral) StepForward(rt Runtime, inst *Instance) (err error) {
	inst.Object, err = rt.Memory().AllocateStringLiteral(s.text)
	if err != nil {
		return
	}
	inst.finish(rt)
	return
}

// identifier names an object or a reference.
type identifier struct {
	expr
	entity *scope.Entity
}

func (id *identifier) StepForward(rt Runtime, inst *Instance) (err error) {
	inst.Object, err = id.resolve(rt, inst)
	if err != nil {
		return
	}
	inst.finish(rt)
	return
}

func (id *identifier) resolve(rt Runtime, inst *Instance) (obj *memory.Object, err error) {
	e := id.entity.Canonical()
	var ok bool

	switch e.Kind {
	case scope.AUTO_OBJECT:
		if inst.Frame == nil {
			return nil, ErrNoFrame
		}
		obj, ok = inst.Frame.Object(e.Key)
	case scope.REFERENCE:
		if inst.Frame == nil {
			return nil, ErrNoFrame
		}
		if obj, ok = inst.Frame.Reference(e.Key); !ok {
			return nil, ErrUnbound
		}
	case scope.STATIC_OBJECT:
		if obj, ok = rt.Static(e); !ok {
			return nil, ErrNoStorage
		}
	case scope.MEMBER_OBJECT:
		if inst.Receiver == nil {
			return nil, ErrNoReceiver
		}
		var self *memory.Object
		if self, ok = inst.Receiver.AsBase(e.Class); ok {
			obj, ok = self.MemberNamed(e.Name)
		}
	}

	if !ok {
		err = ErrNoStorage
	}
	return
}

// thisPointer is the `this` prvalue of a member function.
type thisPointer struct {
	expr
}

func (t *thisPointer) StepForward(rt Runtime, inst *Instance) error {
	if inst.Receiver == nil {
		return ErrNoReceiver
	}
	r := inst.Receiver
	inst.Value = value.ArrayPointer(t.typ, r.Address, value.Bounds{Start: r.Address, End: r.Address + r.Size()})
	inst.finish(rt)
	return nil
}

// thisObject is the implicit `*this` receiver of an unqualified member
// function call.
type thisObject struct {
	expr
}

func (t *thisObject) UpNext(rt Runtime, inst *Instance) error {
	if inst.Receiver == nil {
		return ErrNoReceiver
	}
	inst.Object = inst.Receiver
	inst.finish(rt)
	return nil
}

// lvalueToRvalue reads the object an lvalue designates.
type lvalueToRvalue struct {
	expr
	subs []Expression
}

func (c *lvalueToRvalue) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, c.subs); pushed || err != nil {
		return err
	}

	obj := operand(inst).Object
	if !obj.IsAlive() {
		report(rt, UNDEFINED_BEHAVIOR, c, "%v is read after its lifetime ended", obj.Describe())
	}

	v := obj.ReadValue()
	if !v.IsComposite() && !v.IsValid() {
		report(rt, UNDEFINED_BEHAVIOR, c, "%v is read before it was initialized", obj.Describe())
	}

	inst.Value = v.WithType(c.typ)
	inst.finish(rt)
	return nil
}

// arrayToPointer decays an array lvalue to a pointer to its first element.
type arrayToPointer struct {
	expr
	subs []Expression
}

func (c *arrayToPointer) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, c.subs); pushed || err != nil {
		return err
	}

	obj := operand(inst).Object
	inst.Value = value.ArrayPointer(c.typ, obj.Address, value.Bounds{Start: obj.Address, End: obj.Address + obj.Size()})
	inst.finish(rt)
	return nil
}

// standardConversion applies the conversions after an lvalue
// transformation.
type standardConversion struct {
	expr
	subs  []Expression
	steps []conv.Conversion
}

func (c *standardConversion) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, c.subs); pushed || err != nil {
		return err
	}

	v := operand(inst).Value
	for _, step := range c.steps {
		v = step.Apply(v)
	}
	inst.Value = v
	inst.finish(rt)
	return nil
}

// baseSubobject designates the base class subobject of a class lvalue.
type baseSubobject struct {
	expr
	subs []Expression
}

func (c *baseSubobject) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, c.subs); pushed || err != nil {
		return err
	}

	obj := operand(inst).Object
	sub, ok := obj.AsBase(c.typ.Class)
	if !ok {
		return ErrNoStorage
	}
	inst.Object = sub
	inst.finish(rt)
	return nil
}

// materialize places a prvalue in a temporary object.
type materialize struct {
	expr
	subs []Expression
}

func (c *materialize) UpNext(rt Runtime, inst *Instance) (err error) {
	if pushed, err := pushNext(rt, inst, c.subs); pushed || err != nil {
		return err
	}

	v := operand(inst).Value
	inst.Object, err = inst.temporary(rt, v.WithType(c.typ.Unqualified()))
	if err != nil {
		return
	}
	inst.finish(rt)
	return
}

// access returns the object of type t a pointer value designates,
// reporting null, uninitialized, out of bounds and dangling accesses.
func access(rt Runtime, c Construct, ptr value.Value, t *types.Type) (obj *memory.Object) {
	address := ptr.Int()
	bounds, bounded := ptr.Bounds()

	obj = rt.Memory().Dereference(address, t)

	switch {
	case !ptr.IsValid():
		report(rt, UNDEFINED_BEHAVIOR, c, "dereference of an uninitialized pointer")
	case address == 0:
		report(rt, UNDEFINED_BEHAVIOR, c, "dereference of a null pointer")
	case bounded && !bounds.Contains(address, t.Size()):
		report(rt, UNDEFINED_BEHAVIOR, c, "access at 0x%x is outside the bounds of its array", address)
	case obj.Kind == memory.ANONYMOUS:
		report(rt, UNDEFINED_BEHAVIOR, c, "no live object of type %v at 0x%x", t, address)
	}
	return
}

// offset moves pointer p by n elements, keeping its array bounds.
func offset(p value.Value, n int64) value.Value {
	return p.WithRaw(p.Int() + n*p.Type.Elem.Size())
}

// zeroValue is the value of a zero-initialized object of type t.
func zeroValue(t *types.Type) value.Value {
	switch {
	case t.IsArray():
		elems := make([]value.Value, t.Length)
		for n := range elems {
			elems[n] = zeroValue(t.Elem)
		}
		return value.Composite(t, elems)
	case t.IsClass():
		var elems []value.Value
		c := t.Class.Canonical()
		if c.Base != nil {
			elems = append(elems, zeroValue(types.ClassType(c.Base)))
		}
		for _, m := range c.Members {
			elems = append(elems, zeroValue(m.Type))
		}
		return value.Composite(t, elems)
	}
	return value.New(t.Unqualified(), t.Zero())
}
