package sim

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/translate"
)

var f = translate.From

var (
	ErrCompile   = errors.New(f("program has compile errors"))
	ErrNoMain    = errors.New(f("program has no main function"))
	ErrStackFull = errors.New(f("instance stack full"))
	ErrStepLimit = errors.New(f("step limit reached"))
)

// ErrRuntime indicates the step and location of a fatal runtime error.
type ErrRuntime struct {
	Step int
	Span ast.Span
	Err  error
}

func (err *ErrRuntime) Error() string {
	return f("step %d at %v: %v", err.Step, err.Span, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
