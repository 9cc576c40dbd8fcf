package construct

import (
	"io"
	"slices"
	"strconv"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

// Step is the program counter of an instance.
type Step int

const (
	STEP_START      = Step(0)  // Initial step of every instance.
	STEP_COND       = Step(1)  // Evaluate a condition.
	STEP_CHECK_COND = Step(2)  // Branch on the evaluated condition.
	STEP_BODY       = Step(3)  // Run a loop or function body.
	STEP_POST       = Step(4)  // Run a for-loop increment.
	STEP_EVALUATE   = Step(5)  // Operands done; compute the result.
	STEP_BRANCH     = Step(6)  // Run the selected branch.
	STEP_CALL       = Step(7)  // Arguments done; push the frame.
	STEP_RETURN     = Step(8)  // Waiting for the callee.
	STEP_EXIT       = Step(9)  // Callee returned; pop the frame.
	STEP_DONE       = Step(10) // Nothing left but to finish.
)

var _step_names = [...]string{
	STEP_START:      "start",
	STEP_COND:       "condition",
	STEP_CHECK_COND: "check condition",
	STEP_BODY:       "body",
	STEP_POST:       "post",
	STEP_EVALUATE:   "evaluate",
	STEP_BRANCH:     "branch",
	STEP_CALL:       "call",
	STEP_RETURN:     "return",
	STEP_EXIT:       "exit",
	STEP_DONE:       "done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(_step_names) {
		return "Step(" + strconv.Itoa(int(s)) + ")"
	}
	return _step_names[s]
}

// Construct is the compiled, immutable form of a piece of source.
//
// UpNext either pushes the child instance to run next, finishes inst, or
// does nothing to ask for StepForward. StepForward performs exactly one
// observable side effect.
type Construct interface {
	Pos() ast.Span
	UpNext(rt Runtime, inst *Instance) error
	StepForward(rt Runtime, inst *Instance) error
}

// Expression is a construct yielding a value (prvalue) or an object
// (lvalue).
type Expression interface {
	Construct
	Type() *types.Type
	Category() types.Category
}

// Runtime is the driver an instance executes against.
type Runtime interface {
	Memory() *memory.Memory
	Program() *Program
	Output() io.Writer

	// Push makes inst the top of the instance stack.
	Push(inst *Instance) error
	// Pop removes inst, which is the top of the instance stack.
	Pop(inst *Instance)
	// PopUntil removes every instance above inst.
	PopUntil(inst *Instance)

	// Static returns the storage of a static entity.
	Static(e *scope.Entity) (obj *memory.Object, ok bool)

	// Report records a runtime event.
	Report(ev Event)
	// Abort ends the program with exit code.
	Abort(code int)
}

// Instance is the runtime record of one execution of a construct.
type Instance struct {
	Construct Construct
	Parent    *Instance
	Children  []*Instance
	Step      Step
	Index     int // Next child to push, for constructs with a list.
	Finished  bool

	Function *Instance      // Enclosing function call.
	Frame    *memory.Frame  // Frame of the enclosing function.
	Receiver *memory.Object // Object a member function runs on.

	Value  value.Value    // Result of a prvalue expression.
	Object *memory.Object // Result of an lvalue expression.

	owner       *Instance // Holds the temporaries of this full expression.
	temporaries []*memory.Object
}

// CreateAndPushInstance starts executing c as a child of parent, which
// is nil for a top-level construct.
func CreateAndPushInstance(rt Runtime, c Construct, parent *Instance) (inst *Instance, err error) {
	inst = &Instance{Construct: c, Parent: parent}
	if parent != nil {
		inst.Function = parent.Function
		inst.Frame = parent.Frame
		inst.Receiver = parent.Receiver
		parent.Children = append(parent.Children, inst)
	}
	inst.owner = inst
	if _, ok := c.(Expression); ok && parent != nil {
		inst.owner = parent.owner
	}

	err = rt.Push(inst)
	return
}

// Child returns the n-th child instance.
func (inst *Instance) Child(n int) *Instance {
	return inst.Children[n]
}

// Last returns the most recently created child instance.
func (inst *Instance) Last() *Instance {
	return inst.Children[len(inst.Children)-1]
}

func (inst *Instance) String() string {
	return inst.Construct.Pos().Text + " [" + inst.Step.String() + "]"
}

// finish pops a completed instance, ending the temporaries it holds.
func (inst *Instance) finish(rt Runtime) {
	inst.releaseTemporaries(rt)
	inst.Finished = true
	inst.Step = STEP_DONE
	rt.Pop(inst)
}

// restart drops the children and temporaries of a previous loop
// iteration.
func (inst *Instance) restart(rt Runtime) {
	inst.releaseTemporaries(rt)
	inst.Children = nil
	inst.Index = 0
}

// temporary places a prvalue in the temporary region. It lives until
// the statement or initializer holding the full expression finishes.
func (inst *Instance) temporary(rt Runtime, v value.Value) (obj *memory.Object, err error) {
	obj = memory.NewObject(memory.TEMPORARY, "", v.Type)
	err = rt.Memory().AllocateTemporaryObject(obj)
	if err != nil {
		return
	}
	obj.WriteValue(v)

	inst.owner.temporaries = append(inst.owner.temporaries, obj)
	return
}

// extendTemporaries hands the temporaries of inst to to, which must
// outlive it. A nil to keeps them alive until the program ends.
func (inst *Instance) extendTemporaries(to *Instance) {
	if to == inst {
		return
	}
	if to != nil {
		to.temporaries = append(to.temporaries, inst.temporaries...)
	}
	inst.temporaries = nil
}

// enclosingBlock is the innermost block instance around inst, or the
// enclosing function when there is none. Namespace scope has neither
// and returns nil.
func enclosingBlock(inst *Instance) *Instance {
	for it := inst.Parent; it != nil; it = it.Parent {
		if _, ok := it.Construct.(*block); ok {
			return it
		}
	}
	return inst.Function
}

// releaseTemporaries ends the lifetime of every temporary inst holds,
// newest first.
func (inst *Instance) releaseTemporaries(rt Runtime) {
	for _, obj := range slices.Backward(inst.temporaries) {
		rt.Memory().DeallocateTemporaryObject(obj)
	}
	inst.temporaries = nil
}

// unwind ends the temporaries of every instance from inst up to, but
// not including, at, and pops them.
func unwind(rt Runtime, inst *Instance, at *Instance) {
	for it := inst; it != nil && it != at; it = it.Parent {
		it.releaseTemporaries(rt)
	}
	rt.PopUntil(at)
}

// pushNext pushes the next construct of subs, if any remain.
func pushNext[C Construct](rt Runtime, inst *Instance, subs []C) (pushed bool, err error) {
	if inst.Index >= len(subs) {
		return
	}
	sub := subs[inst.Index]
	inst.Index++
	_, err = CreateAndPushInstance(rt, sub, inst)
	return true, err
}

// report sends a formatted event about construct c.
func report(rt Runtime, kind EventKind, c Construct, format string, args ...any) {
	rt.Report(Event{Kind: kind, Span: c.Pos(), Message: f(format, args...)})
}

// base carries the source span of a construct and default step hooks.
type base struct {
	span ast.Span
}

func (b *base) Pos() ast.Span {
	return b.span
}

func (b *base) UpNext(rt Runtime, inst *Instance) error {
	return nil
}

func (b *base) StepForward(rt Runtime, inst *Instance) error {
	inst.finish(rt)
	return nil
}

// expr carries the static type and value category of an expression.
type expr struct {
	base
	typ *types.Type
	cat types.Category
}

func (e *expr) Type() *types.Type {
	return e.typ
}

func (e *expr) Category() types.Category {
	return e.cat
}
