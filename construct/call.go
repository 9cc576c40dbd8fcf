package construct

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

var ErrNoDefinition = errors.New(f("call of a function without a definition"))

// ASSERT_EXIT_CODE is the exit code of a program stopped by a failed
// assertion.
const ASSERT_EXIT_CODE = 134

// Builtin runs a library function on its evaluated arguments. It must
// finish the call instance unless it aborts the program.
type Builtin func(rt Runtime, call *Instance, args []*Instance) error

// Function is a function definition. Its instance owns one frame.
type Function struct {
	base
	Entity *scope.Entity
	Scope  *scope.Scope // Parameters and locals.
	Params []*scope.Entity
	Class  *types.Class // Owning class of a member function.
	Return *types.Type
	Body   *block

	decl    *ast.FunctionDef
	builtin Builtin
}

// IsMember reports whether fn has a receiver.
func (fn *Function) IsMember() bool {
	return fn.Class != nil
}

// thisType is the type of `this` in a member function.
func (fn *Function) thisType() *types.Type {
	self := types.ClassType(fn.Class).Qualified(fn.Entity.Type.ThisConst, false)
	return types.PointerTo(self).Qualified(true, false)
}

// Locals is the frame layout of one call.
func (fn *Function) Locals() (locals []memory.Local) {
	if fn.IsMember() {
		locals = append(locals, memory.Local{Key: memory.THIS_KEY, Name: "this", Type: fn.thisType()})
	}
	return append(locals, fn.Scope.Locals()...)
}

func (fn *Function) UpNext(rt Runtime, inst *Instance) (err error) {
	switch inst.Step {
	case STEP_START:
		inst.Step = STEP_BODY
		_, err = CreateAndPushInstance(rt, fn.Body, inst)
	case STEP_BODY:
		// The body finished without a return statement.
		switch {
		case fn.Return.IsVoid():
		case fn.Entity.Name == "main" && fn.Class == nil:
			inst.Value = value.New(types.Int, 0)
		default:
			report(rt, UNDEFINED_BEHAVIOR, fn, "%v ends without returning a value", fn.Entity.QualifiedName())
			inst.Value = value.Invalid(fn.Return)
		}
		inst.Step = STEP_EXIT
	}
	return
}

// StepForward pops the frame of a returning call.
func (fn *Function) StepForward(rt Runtime, inst *Instance) (err error) {
	if _, err = rt.Memory().Stack.PopFrame(); err != nil {
		return
	}
	inst.releaseTemporaries(rt)
	inst.finish(rt)
	return
}

// invoke pushes a frame for fn, passes args and pushes the body. The
// receiver is nil for free functions.
func (fn *Function) invoke(rt Runtime, call *Instance, receiver *memory.Object, args []*Instance) (err error) {
	if fn.builtin != nil {
		return fn.builtin(rt, call, args)
	}
	if fn.Body == nil {
		return ErrNoDefinition
	}

	frame, err := rt.Memory().Stack.PushFrame(fn.Entity.QualifiedName(), fn.Locals())
	if err != nil {
		return
	}

	var self *memory.Object
	if fn.IsMember() {
		var ok bool
		if self, ok = receiver.AsBase(fn.Class); !ok {
			return ErrNoReceiver
		}
		this, _ := frame.This()
		this.WriteValue(value.ArrayPointer(this.Type.Unqualified(), self.Address, value.Bounds{Start: self.Address, End: self.Address + self.Size()}))
	}

	for n, p := range fn.Params {
		if p.Kind == scope.REFERENCE {
			frame.BindReference(p.Key, args[n].Object)
			continue
		}
		obj, _ := frame.Object(p.Key)
		obj.WriteValue(args[n].Value.WithType(obj.Type.Unqualified()))
	}

	callee := &Instance{
		Construct: fn,
		Parent:    call,
		Frame:     frame,
		Receiver:  self,
	}
	callee.Function = callee
	callee.owner = callee
	call.Children = append(call.Children, callee)
	call.Step = STEP_RETURN

	return rt.Push(callee)
}

// call is a function call. For member functions the first operand is
// the receiver object.
type call struct {
	expr
	target  *scope.Entity
	member  bool
	virtual bool
	subs    []Expression
}

func (c *call) UpNext(rt Runtime, inst *Instance) (err error) {
	switch inst.Step {
	case STEP_START:
		if pushed, err := pushNext(rt, inst, c.subs); pushed || err != nil {
			return err
		}
		inst.Step = STEP_CALL
	case STEP_RETURN:
		callee := inst.Last()
		inst.Value, inst.Object = callee.Value, callee.Object
		inst.finish(rt)
	}
	return
}

func (c *call) StepForward(rt Runtime, inst *Instance) error {
	target := c.target.Canonical()
	args := inst.Children[:len(c.subs)]

	var receiver *memory.Object
	if c.member {
		receiver = args[0].Object
		args = args[1:]
		if !receiver.IsAlive() {
			report(rt, UNDEFINED_BEHAVIOR, c, "member function %v called on %v after its lifetime ended", target.Name, receiver.Describe())
		}
		if c.virtual && target.Virtual {
			target = dispatch(rt.Program(), receiver.Complete(), target)
		}
	}

	fn, ok := target.Definition.(*Function)
	if !ok {
		return ErrNoDefinition
	}
	return fn.invoke(rt, inst, receiver, args)
}

// dispatch finds the final overrider of virtual function e for the
// complete object obj.
func dispatch(p *Program, obj *memory.Object, e *scope.Entity) *scope.Entity {
	if !obj.Type.IsClass() {
		return e
	}

	opts := scope.Options{NoBase: true, ExactMatch: true, Params: e.Type.Params, ThisConst: e.Type.ThisConst}
	for cls := obj.Type.Class.Canonical(); cls != nil; {
		if cs, ok := p.ClassScope(cls); ok {
			if ents, st := cs.MemberLookup(e.Name, opts); st == scope.FOUND {
				return ents[0].Canonical()
			}
		}
		if cls.Base == nil {
			break
		}
		cls = cls.Base.Canonical()
	}
	return e
}

// returnStmt ends the enclosing function call.
type returnStmt struct {
	base
	subs []Expression
}

func (r *returnStmt) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, r.subs)
	return
}

func (r *returnStmt) StepForward(rt Runtime, inst *Instance) error {
	fn := inst.Function
	if len(inst.Children) > 0 {
		result := inst.Child(0)
		fn.Value, fn.Object = result.Value, result.Object
	}
	fn.Step = STEP_EXIT
	if fn.Parent != nil {
		// The result may refer to them until the call's full expression ends.
		inst.extendTemporaries(fn.Parent.owner)
	}
	unwind(rt, inst, fn)
	return nil
}

func builtinAssert(rt Runtime, call *Instance, args []*Instance) error {
	if args[0].Value.Bool() {
		call.finish(rt)
		return nil
	}

	text := call.Construct.Pos().Text
	if text == "" {
		text = "assert"
	}
	report(rt, ASSERTION_FAILURE, call.Construct, "assertion failed: %v", text)
	rt.Abort(ASSERT_EXIT_CODE)
	return nil
}

// Start runs the static initializers and then main. Its instance is the
// root of every run.
type Start struct {
	base
	Statics []*Init
	Main    Expression
}

// NewStart returns the entry construct of p, which must have a main.
func NewStart(p *Program) *Start {
	e := p.Main
	main := &call{
		expr:   expr{base: base{span: mainSpan(e)}, typ: types.Int},
		target: e,
	}
	return &Start{Statics: p.Statics, Main: main}
}

func mainSpan(e *scope.Entity) ast.Span {
	if node, ok := e.Decl.(ast.Node); ok {
		return node.Pos()
	}
	return ast.Span{}
}

func (s *Start) UpNext(rt Runtime, inst *Instance) (err error) {
	switch inst.Step {
	case STEP_START:
		if pushed, err := pushNext(rt, inst, s.Statics); pushed || err != nil {
			return err
		}
		inst.Step = STEP_CALL
		_, err = CreateAndPushInstance(rt, s.Main, inst)
	case STEP_CALL:
		inst.Value = inst.Last().Value
		inst.Step = STEP_EXIT
	}
	return
}

// StepForward ends the program.
func (s *Start) StepForward(rt Runtime, inst *Instance) error {
	inst.releaseTemporaries(rt)
	inst.finish(rt)
	return nil
}
