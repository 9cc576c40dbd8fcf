package sim

import (
	"bytes"
	"context"
	"io"
	"iter"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/construct"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/scope"
)

const (
	DEFAULT_STEP_LIMIT = 100000 // Steps Run takes before giving up.
)

// Hooks observe the simulation. Any of them may be nil. Hooks are not
// called while StepBackward replays.
type Hooks struct {
	InstancePushed func(inst *construct.Instance)
	InstancePopped func(inst *construct.Instance)
	Event          func(ev construct.Event)
}

// Simulation state. Program + memory + instance stack.
type Simulation struct {
	ID      uuid.UUID   // Identifies this run in logs.
	Verbose bool        // If set, logs every step.
	Logger  *zap.Logger // Never nil.
	Hooks   Hooks

	Stack    Stack
	Steps    int               // Steps taken since the last reset.
	ExitCode int               // Valid once AtEnd.
	Events   []construct.Event // Runtime events since the last reset.

	program *construct.Program
	mem     *memory.Memory
	start   *construct.Start
	entry   *construct.Instance
	statics map[*scope.Entity]*memory.Object
	output  bytes.Buffer

	aborted   bool
	crashed   bool
	ended     bool
	replaying bool
}

var _ construct.Runtime = (*Simulation)(nil)

// New creates a simulation of p, reset to the start of the program.
func New(p *construct.Program, layout memory.Layout) (sim *Simulation, err error) {
	if p.HasErrors() {
		err = ErrCompile
		return
	}
	if p.Main == nil {
		err = ErrNoMain
		return
	}

	sim = &Simulation{
		ID:      uuid.New(),
		Logger:  p.Logger,
		program: p,
		mem:     memory.New(layout),
		start:   construct.NewStart(p),
	}
	if sim.Logger == nil {
		sim.Logger = zap.NewNop()
	}

	err = sim.Reset()
	return
}

// Reset discards the run and starts the program over.
func (sim *Simulation) Reset() (err error) {
	sim.mem.Reset()
	sim.Stack.Reset()
	sim.output.Reset()
	sim.Steps = 0
	sim.ExitCode = 0
	sim.Events = nil
	sim.aborted = false
	sim.crashed = false
	sim.ended = false

	sim.statics = map[*scope.Entity]*memory.Object{}
	for e := range sim.program.Arena.Statics() {
		if e.Kind != scope.STATIC_OBJECT {
			continue
		}
		obj := memory.NewObject(memory.STATIC, e.QualifiedName(), e.Type)
		if err = sim.mem.AllocateStatic(obj); err != nil {
			return
		}
		sim.statics[e] = obj
	}

	sim.Logger.Debug("reset",
		zap.Stringer("run", sim.ID),
		zap.Int("statics", len(sim.statics)),
		zap.Int64("static_top", sim.mem.StaticTop()),
	)

	sim.entry, err = construct.CreateAndPushInstance(sim, sim.start, nil)
	if err != nil {
		return
	}
	sim.entry.Function = sim.entry

	return sim.upNext()
}

// Program returns the program being simulated.
func (sim *Simulation) Program() *construct.Program {
	return sim.program
}

// Memory returns the simulated address space.
func (sim *Simulation) Memory() *memory.Memory {
	return sim.mem
}

// Output is where the program writes std::cout.
func (sim *Simulation) Output() io.Writer {
	return &sim.output
}

// Stdout returns everything the program has written so far.
func (sim *Simulation) Stdout() string {
	return sim.output.String()
}

// AtEnd reports whether the program has finished, aborted or crashed.
func (sim *Simulation) AtEnd() bool {
	return sim.Stack.Empty()
}

// Crashed reports whether the run stopped on a fatal error.
func (sim *Simulation) Crashed() bool {
	return sim.crashed
}

// Top returns the instance that steps next.
func (sim *Simulation) Top() (inst *construct.Instance, ok bool) {
	return sim.Stack.Peek()
}

// Push makes inst the top of the instance stack.
func (sim *Simulation) Push(inst *construct.Instance) (err error) {
	if err = sim.Stack.Push(inst); err != nil {
		return
	}
	if sim.Verbose {
		sim.Logger.Debug("push", zap.Stringer("instance", inst), zap.Int("depth", sim.Stack.Depth()))
	}
	if !sim.replaying && sim.Hooks.InstancePushed != nil {
		sim.Hooks.InstancePushed(inst)
	}
	return
}

// Pop removes inst if it is the top of the instance stack.
func (sim *Simulation) Pop(inst *construct.Instance) {
	top, ok := sim.Stack.Peek()
	if !ok || top != inst {
		return
	}
	sim.Stack.Pop()
	if !sim.replaying && sim.Hooks.InstancePopped != nil {
		sim.Hooks.InstancePopped(inst)
	}
}

// PopUntil removes every instance above inst.
func (sim *Simulation) PopUntil(inst *construct.Instance) {
	for {
		top, ok := sim.Stack.Peek()
		if !ok || top == inst {
			return
		}
		sim.Pop(top)
	}
}

// Static returns the storage of a static entity.
func (sim *Simulation) Static(e *scope.Entity) (obj *memory.Object, ok bool) {
	obj, ok = sim.statics[e.Canonical()]
	return
}

// Report records a runtime event.
func (sim *Simulation) Report(ev construct.Event) {
	ev.Step = sim.Steps
	sim.Events = append(sim.Events, ev)

	sim.Logger.Debug("event",
		zap.Stringer("run", sim.ID),
		zap.Stringer("kind", ev.Kind),
		zap.Int("step", ev.Step),
		zap.Stringer("at", ev.Span),
		zap.String("message", ev.Message),
	)

	if !sim.replaying && sim.Hooks.Event != nil {
		sim.Hooks.Event(ev)
	}
}

// Abort ends the program with exit code.
func (sim *Simulation) Abort(code int) {
	sim.aborted = true
	sim.ExitCode = code
	sim.Stack.Reset()
}

// Globals iterates over the static objects of the program by qualified
// name. Library objects are skipped.
func (sim *Simulation) Globals() iter.Seq2[string, *memory.Object] {
	return func(yield func(string, *memory.Object) bool) {
		for e := range sim.program.Arena.Statics() {
			obj, ok := sim.statics[e]
			if !ok || e.Inline {
				continue
			}
			if !yield(e.QualifiedName(), obj) {
				return
			}
		}
	}
}

// Count returns the number of events of kind.
func (sim *Simulation) Count(kind construct.EventKind) (n int) {
	for _, ev := range sim.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return
}

// upNext lets the top of the stack schedule work until it asks for a
// StepForward.
func (sim *Simulation) upNext() (err error) {
	for {
		top, ok := sim.Stack.Peek()
		if !ok {
			return
		}
		if err = top.Construct.UpNext(sim, top); err != nil {
			return
		}
		if next, ok := sim.Stack.Peek(); ok && next == top {
			return
		}
	}
}

// StepForward performs one step of the program.
func (sim *Simulation) StepForward() (err error) {
	if sim.AtEnd() {
		return
	}

	var span ast.Span
	defer func() {
		if err != nil {
			sim.crash(span, err)
			err = &ErrRuntime{Step: sim.Steps, Span: span, Err: err}
		}
	}()

	if err = sim.upNext(); err != nil {
		return
	}

	top, ok := sim.Stack.Peek()
	if ok {
		span = top.Construct.Pos()
		if sim.Verbose {
			sim.Logger.Debug("step",
				zap.Stringer("run", sim.ID),
				zap.Int("step", sim.Steps),
				zap.Stringer("instance", top),
				zap.Int("depth", sim.Stack.Depth()),
			)
		}
		if err = top.Construct.StepForward(sim, top); err != nil {
			return
		}
		sim.Steps++
	}

	if err = sim.upNext(); err != nil {
		return
	}

	if sim.AtEnd() {
		sim.end()
	}
	return
}

// Tick performs a single step of the simulation.
func (sim *Simulation) Tick() (done bool, err error) {
	err = sim.StepForward()
	done = sim.AtEnd()
	return
}

// Run steps until the program ends, ctx is done, or limit steps have
// been taken. A limit of zero means DEFAULT_STEP_LIMIT.
func (sim *Simulation) Run(ctx context.Context, limit int) (err error) {
	if limit <= 0 {
		limit = DEFAULT_STEP_LIMIT
	}

	for !sim.AtEnd() {
		if sim.Steps >= limit {
			return ErrStepLimit
		}
		if err = ctx.Err(); err != nil {
			return
		}
		if err = sim.StepForward(); err != nil {
			return
		}
	}
	return
}

// StepBackward undoes n steps by replaying the run from the start.
func (sim *Simulation) StepBackward(n int) (err error) {
	target := max(sim.Steps-n, 0)

	hooks := sim.mem.Hooks
	sim.mem.Hooks = memory.Hooks{}
	sim.replaying = true
	defer func() {
		sim.replaying = false
		sim.mem.Hooks = hooks
	}()

	if err = sim.Reset(); err != nil {
		return
	}
	for sim.Steps < target && !sim.AtEnd() {
		if err = sim.StepForward(); err != nil {
			return
		}
	}
	return
}

// end records the exit code and reports leaked heap objects.
func (sim *Simulation) end() {
	if sim.ended {
		return
	}
	sim.ended = true

	if !sim.aborted {
		sim.ExitCode = int(sim.entry.Value.Int())
	}

	for obj := range sim.mem.Heap.Objects() {
		sim.Report(construct.Event{
			Kind:    construct.MEMORY_LEAK,
			Message: f("%v was never deleted", obj.Describe()),
		})
	}

	sim.Logger.Debug("end",
		zap.Stringer("run", sim.ID),
		zap.Int("steps", sim.Steps),
		zap.Int("exit_code", sim.ExitCode),
		zap.Int("events", len(sim.Events)),
	)
}

// crash stops the run on a fatal error.
func (sim *Simulation) crash(span ast.Span, err error) {
	sim.Report(construct.Event{Kind: construct.CRASH, Span: span, Message: err.Error()})
	sim.crashed = true
	sim.ended = true
	sim.Stack.Reset()
}
