package checkpoint

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/translate"
)

var f = translate.From

var (
	ErrNoResult = errors.New(f("expression has no result"))
	ErrNotBool  = errors.New(f("expression is not a bool"))
	ErrNoName   = errors.New(f("checkpoint has no name"))
)

// ErrCheck wraps the failure to evaluate a checkpoint.
type ErrCheck struct {
	Name string
	Err  error
}

func (err *ErrCheck) Error() string {
	return f("checkpoint %v: %v", err.Name, err.Err)
}

func (err *ErrCheck) Unwrap() error {
	return err.Err
}
