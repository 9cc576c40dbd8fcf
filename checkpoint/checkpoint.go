// Package checkpoint checks predicates against the state of a
// simulation.
//
// A predicate is a Starlark expression. It sees:
//
//	output      string written to std::cout
//	steps       steps taken
//	finished    bool, true once the program ended
//	exit_code   int
//	events      list of {"kind", "message", "step", "line"} dicts
//	globals     dict of global name to value; None when uninitialized
//	count(kind) number of events of kind, such as "memory_leak"
package checkpoint

import (
	"io"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"gopkg.in/yaml.v3"

	"github.com/jamesjuett/lobster-sub011/construct"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/sim"
	"github.com/jamesjuett/lobster-sub011/types"
)

// Checkpoint is a named predicate.
type Checkpoint struct {
	Name   string `yaml:"name"`
	Expect string `yaml:"expect"`
}

// Result of checking one checkpoint.
type Result struct {
	Checkpoint
	Passed bool
	Err    error
}

type file struct {
	Checkpoints []Checkpoint `yaml:"checkpoints"`
}

// Load reads a YAML checkpoint list:
//
//	checkpoints:
//	  - name: prints hello
//	    expect: output == "hello\n"
func Load(r io.Reader) (cps []Checkpoint, err error) {
	var in file
	if err = yaml.NewDecoder(r).Decode(&in); err != nil {
		return
	}
	for _, cp := range in.Checkpoints {
		if cp.Name == "" {
			return nil, ErrNoName
		}
	}
	cps = in.Checkpoints
	return
}

// Check evaluates every checkpoint against s.
func Check(s *sim.Simulation, cps ...Checkpoint) (results []Result) {
	env := Environment(s)
	for _, cp := range cps {
		passed, err := Eval(env, cp.Expect)
		if err != nil {
			err = &ErrCheck{Name: cp.Name, Err: err}
		}
		results = append(results, Result{Checkpoint: cp, Passed: passed, Err: err})
	}
	return
}

// Eval evaluates a bool expression in env.
func Eval(env starlark.StringDict, expr string) (passed bool, err error) {
	thread := starlark.Thread{Name: "checkpoint"}
	opts := syntax.FileOptions{}
	prog := "rc = (" + expr + ")\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "checkpoint", prog, env)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrNoResult
		return
	}
	st_bool, ok := st_rc.(starlark.Bool)
	if !ok {
		err = ErrNotBool
		return
	}
	passed = bool(st_bool)
	return
}

// Environment is the predeclared state of s seen by predicates.
func Environment(s *sim.Simulation) starlark.StringDict {
	events := make([]starlark.Value, 0, len(s.Events))
	for _, ev := range s.Events {
		d := starlark.NewDict(4)
		_ = d.SetKey(starlark.String("kind"), starlark.String(ev.Kind.String()))
		_ = d.SetKey(starlark.String("message"), starlark.String(ev.Message))
		_ = d.SetKey(starlark.String("step"), starlark.MakeInt(ev.Step))
		_ = d.SetKey(starlark.String("line"), starlark.MakeInt(ev.Span.Line))
		events = append(events, d)
	}

	globals := starlark.NewDict(0)
	for name, obj := range s.Globals() {
		_ = globals.SetKey(starlark.String(name), fromObject(obj))
	}

	count := starlark.NewBuiltin("count", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var kind string
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &kind); err != nil {
			return nil, err
		}
		n := 0
		for _, ev := range s.Events {
			if ev.Kind.String() == kind {
				n++
			}
		}
		return starlark.MakeInt(n), nil
	})

	kinds := make([]starlark.Value, 0, len(construct.EventKinds()))
	for _, k := range construct.EventKinds() {
		kinds = append(kinds, starlark.String(k))
	}

	return starlark.StringDict{
		"output":      starlark.String(s.Stdout()),
		"steps":       starlark.MakeInt(s.Steps),
		"finished":    starlark.Bool(s.AtEnd()),
		"exit_code":   starlark.MakeInt(s.ExitCode),
		"events":      starlark.NewList(events),
		"event_kinds": starlark.NewList(kinds),
		"globals":     globals,
		"count":       count,
	}
}

// fromObject converts the current value of obj. Arrays become lists
// and classes become dicts of their members, base members included.
func fromObject(obj *memory.Object) starlark.Value {
	t := obj.Type
	switch {
	case t.IsArray():
		elems := make([]starlark.Value, 0, len(obj.Subobjects))
		for _, sub := range obj.Subobjects {
			elems = append(elems, fromObject(sub))
		}
		return starlark.NewList(elems)
	case t.IsClass():
		d := starlark.NewDict(len(obj.Subobjects))
		addMembers(d, obj)
		return d
	}

	v := obj.Value()
	if !v.IsValid() {
		return starlark.None
	}
	switch {
	case t.Kind == types.BOOL:
		return starlark.Bool(v.Bool())
	case t.IsFloating():
		return starlark.Float(v.Float())
	}
	return starlark.MakeInt64(v.Int())
}

func addMembers(d *starlark.Dict, obj *memory.Object) {
	for _, sub := range obj.Subobjects {
		if sub.IsBase {
			addMembers(d, sub)
			continue
		}
		_ = d.SetKey(starlark.String(sub.Member), fromObject(sub))
	}
}
