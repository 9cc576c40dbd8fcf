package frontend

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/translate"
)

var f = translate.From

var (
	ErrSyntax      = errors.New(f("syntax error"))
	ErrUnsupported = errors.New(f("unsupported construct"))
)

// ErrSource locates a frontend error in the source.
type ErrSource struct {
	Span ast.Span
	What string // Grammar node type or source text.
	Err  error
}

func (err *ErrSource) Error() string {
	return f("%v: %v: %v", err.Span, err.Err, err.What)
}

func (err *ErrSource) Unwrap() error {
	return err.Err
}
