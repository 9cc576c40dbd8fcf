package construct

import (
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

// OpClass selects how a binary operator combines its operands.
type OpClass int

const (
	OP_ARITHMETIC   = OpClass(0) // Operands converted to the result type.
	OP_COMPARE      = OpClass(1) // Operands converted to a common type.
	OP_POINTER_ADD  = OpClass(2) // Pointer plus or minus an integer.
	OP_POINTER_DIFF = OpClass(3) // Pointer minus pointer.
)

// arith computes a op b in type t. A problem is returned for undefined
// results, which are invalid.
func arith(op string, t *types.Type, a, b value.Value) (v value.Value, problem string) {
	valid := a.IsValid() && b.IsValid()

	if t.IsFloating() {
		x, y := a.Float(), b.Float()
		var r float64
		switch op {
		case "+":
			r = x + y
		case "-":
			r = x - y
		case "*":
			r = x * y
		case "/":
			r = x / y
		}
		return value.New(t, r).WithValid(valid), ""
	}

	x, y := a.Int(), b.Int()
	var r int64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "/", "%":
		if y == 0 {
			return value.Invalid(t), f("division by zero")
		}
		if op == "/" {
			r = x / y
		} else {
			r = x % y
		}
	case "&":
		r = x & y
	case "|":
		r = x | y
	case "^":
		r = x ^ y
	case "<<", ">>":
		if y < 0 || y >= 32 {
			return value.Invalid(t), f("shift by %d bits", y)
		}
		if op == "<<" {
			r = x << y
		} else {
			r = x >> y
		}
	}
	return value.New(t, r).WithValid(valid), ""
}

// compare evaluates a relational or equality operator.
func compare(op string, a, b value.Value) bool {
	var c int
	if a.Type.IsFloating() || b.Type.IsFloating() {
		x, y := a.Float(), b.Float()
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else {
		x, y := a.Int(), b.Int()
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	}

	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	}
	return c >= 0
}

// binary is an operator on two prvalues.
type binary struct {
	expr
	op    string
	class OpClass
	subs  []Expression
}

func (b *binary) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, b.subs)
	return
}

func (b *binary) StepForward(rt Runtime, inst *Instance) error {
	x, y := inst.Child(0).Value, inst.Child(1).Value
	valid := x.IsValid() && y.IsValid()

	switch b.class {
	case OP_ARITHMETIC:
		v, problem := arith(b.op, b.typ, x, y)
		if problem != "" {
			report(rt, UNDEFINED_BEHAVIOR, b, "%v", problem)
		}
		inst.Value = v
	case OP_COMPARE:
		inst.Value = value.New(types.Bool, compare(b.op, x, y)).WithValid(valid)
	case OP_POINTER_ADD:
		if !x.Type.IsPointer() {
			x, y = y, x
		}
		n := y.Int()
		if b.op == "-" {
			n = -n
		}
		inst.Value = offset(x, n).WithValid(valid)
		if bounds, ok := inst.Value.Bounds(); ok && valid {
			if at := inst.Value.Int(); at < bounds.Start || at > bounds.End {
				report(rt, UNDEFINED_BEHAVIOR, b, "pointer arithmetic leaves its array")
			}
		}
	case OP_POINTER_DIFF:
		size := max(x.Type.Elem.Size(), 1)
		inst.Value = value.New(types.Int, (x.Int()-y.Int())/size).WithValid(valid)
		xb, xok := x.Bounds()
		yb, yok := y.Bounds()
		if xok && yok && xb != yb {
			report(rt, UNDEFINED_BEHAVIOR, b, "subtraction of pointers into different arrays")
		}
	}

	inst.finish(rt)
	return nil
}

// logical is a short-circuiting && or || on bool prvalues.
type logical struct {
	expr
	op   string
	x, y Expression
}

func (l *logical) UpNext(rt Runtime, inst *Instance) (err error) {
	switch len(inst.Children) {
	case 0:
		_, err = CreateAndPushInstance(rt, l.x, inst)
	case 1:
		left := inst.Child(0).Value.Bool()
		if (l.op == "&&") == left {
			_, err = CreateAndPushInstance(rt, l.y, inst)
		}
	}
	return
}

func (l *logical) StepForward(rt Runtime, inst *Instance) error {
	inst.Value = inst.Last().Value
	inst.finish(rt)
	return nil
}

// unary is a prefix operator.
type unary struct {
	expr
	op   string
	subs []Expression
}

func (u *unary) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, u.subs)
	return
}

func (u *unary) StepForward(rt Runtime, inst *Instance) error {
	x := operand(inst)

	switch u.op {
	case "-":
		inst.Value, _ = arith("-", u.typ, value.New(u.typ, 0), x.Value)
	case "+":
		inst.Value = x.Value
	case "~":
		inst.Value = value.New(u.typ, ^x.Value.Int()).WithValid(x.Value.IsValid())
	case "!":
		inst.Value = value.New(types.Bool, !x.Value.Bool()).WithValid(x.Value.IsValid())
	case "*":
		inst.Object = access(rt, u, x.Value, u.typ)
	case "&":
		obj := x.Object
		bounds := value.Bounds{Start: obj.Address, End: obj.Address + obj.Size()}
		if p := obj.Parent; p != nil && p.Type.IsArray() {
			bounds = value.Bounds{Start: p.Address, End: p.Address + p.Size()}
		}
		inst.Value = value.ArrayPointer(u.typ, obj.Address, bounds)
	case "++", "--":
		inst.Object = x.Object
		step(rt, u, u.op, x.Object)
	}

	inst.finish(rt)
	return nil
}

// step increments or decrements an arithmetic or pointer object and
// returns its previous value.
func step(rt Runtime, c Construct, op string, obj *memory.Object) (old value.Value) {
	if !obj.IsAlive() {
		report(rt, UNDEFINED_BEHAVIOR, c, "%v is modified after its lifetime ended", obj.Describe())
	}

	old = obj.ReadValue().WithType(obj.Type.Unqualified())
	if !old.IsValid() {
		report(rt, UNDEFINED_BEHAVIOR, c, "%v is read before it was initialized", obj.Describe())
	}

	delta := int64(1)
	if op == "--" {
		delta = -1
	}

	var next value.Value
	switch t := old.Type; {
	case t.IsPointer():
		next = offset(old, delta)
	case t.Kind == types.BOOL:
		next = value.New(t, true).WithValid(old.IsValid())
	default:
		next, _ = arith("+", t, old, value.New(t, delta))
	}
	obj.WriteValue(next)
	return
}

// postfix is x++ or x--.
type postfix struct {
	expr
	op   string
	subs []Expression
}

func (p *postfix) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, p.subs)
	return
}

func (p *postfix) StepForward(rt Runtime, inst *Instance) error {
	inst.Value = step(rt, p, p.op, operand(inst).Object)
	inst.finish(rt)
	return nil
}

// assign stores into an lvalue. A compound assignment combines the old
// value in the operation type first.
type assign struct {
	expr
	op    string // "=" or the arithmetic operator of a compound assignment.
	opTyp *types.Type
	class OpClass
	subs  []Expression
}

func (a *assign) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, a.subs)
	return
}

func (a *assign) StepForward(rt Runtime, inst *Instance) error {
	obj := inst.Child(0).Object
	v := inst.Child(1).Value

	if !obj.IsAlive() {
		report(rt, UNDEFINED_BEHAVIOR, a, "%v is written after its lifetime ended", obj.Describe())
	}

	if a.op != "=" {
		old := obj.ReadValue().WithType(obj.Type.Unqualified())
		if !old.IsValid() {
			report(rt, UNDEFINED_BEHAVIOR, a, "%v is read before it was initialized", obj.Describe())
		}
		switch a.class {
		case OP_POINTER_ADD:
			n := v.Int()
			if a.op == "-" {
				n = -n
			}
			v = offset(old, n).WithValid(old.IsValid() && v.IsValid())
		default:
			var problem string
			v, problem = arith(a.op, a.opTyp, old.WithType(a.opTyp), v)
			if problem != "" {
				report(rt, UNDEFINED_BEHAVIOR, a, "%v", problem)
			}
		}
	}

	obj.WriteValue(v.WithType(obj.Type.Unqualified()))
	inst.Object = obj
	inst.finish(rt)
	return nil
}

// conditional is `cond ? then : else`. Both branches share a type and
// category.
type conditional struct {
	expr
	cond, then, els Expression
}

func (c *conditional) UpNext(rt Runtime, inst *Instance) (err error) {
	switch len(inst.Children) {
	case 0:
		_, err = CreateAndPushInstance(rt, c.cond, inst)
	case 2:
		branch := inst.Last()
		inst.Value, inst.Object = branch.Value, branch.Object
		inst.finish(rt)
	}
	return
}

func (c *conditional) StepForward(rt Runtime, inst *Instance) (err error) {
	branch := c.els
	if inst.Child(0).Value.Bool() {
		branch = c.then
	}
	_, err = CreateAndPushInstance(rt, branch, inst)
	return
}

// member designates a data member of a class object. `p->m` is compiled
// as `(*p).m`.
type member struct {
	expr
	entity *scope.Entity
	subs   []Expression
}

func (m *member) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, m.subs)
	return
}

func (m *member) StepForward(rt Runtime, inst *Instance) error {
	self, ok := operand(inst).Object.AsBase(m.entity.Class)
	if !ok {
		return ErrNoStorage
	}
	sub, ok := self.MemberNamed(m.entity.Name)
	if !ok {
		return ErrNoStorage
	}

	inst.Object = sub
	inst.finish(rt)
	return nil
}

// subscript designates element index of the array a pointer points into.
type subscript struct {
	expr
	subs []Expression
}

func (s *subscript) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, s.subs)
	return
}

func (s *subscript) StepForward(rt Runtime, inst *Instance) error {
	p, n := inst.Child(0).Value, inst.Child(1).Value
	at := offset(p, n.Int()).WithValid(p.IsValid() && n.IsValid())
	inst.Object = access(rt, s, at, s.typ)
	inst.finish(rt)
	return nil
}
