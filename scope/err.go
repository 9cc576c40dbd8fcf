package scope

import (
	"errors"

	"github.com/jamesjuett/lobster-sub011/translate"
	"github.com/jamesjuett/lobster-sub011/types"
)

var f = translate.From

var (
	// Families of structured errors.
	ErrLookup = errors.New(f("lookup"))
	ErrLink   = errors.New(f("link"))
)

// ErrNotFound is a name with no declaration in any enclosing scope.
type ErrNotFound struct {
	Name string
}

func (err *ErrNotFound) Error() string {
	return f("%v was not declared in this scope", err.Name)
}

func (err *ErrNotFound) Unwrap() error { return ErrLookup }

// ErrHidden is a name whose visible declarations do not match, while an
// outer declaration that would have matched is hidden by them.
type ErrHidden struct {
	Name string
}

func (err *ErrHidden) Error() string {
	return f("%v is hidden by a declaration in a closer scope", err.Name)
}

func (err *ErrHidden) Unwrap() error { return ErrLookup }

// ErrNoMatch is an overload set with no viable candidate.
type ErrNoMatch struct {
	Name string
}

func (err *ErrNoMatch) Error() string {
	return f("no matching function for call to %v", err.Name)
}

func (err *ErrNoMatch) Unwrap() error { return ErrLookup }

// ErrAmbiguous is an overload set with more than one best candidate.
type ErrAmbiguous struct {
	Name       string
	Candidates []*Entity
}

func (err *ErrAmbiguous) Error() string {
	return f("call to %v is ambiguous (%d candidates)", err.Name, len(err.Candidates))
}

func (err *ErrAmbiguous) Unwrap() error { return ErrLookup }

// ErrReturnTypeMismatch is a function redeclared with the same parameters
// but a different return type.
type ErrReturnTypeMismatch struct {
	Name     string
	Existing *types.Type
	New      *types.Type
}

func (err *ErrReturnTypeMismatch) Error() string {
	return f("%v redeclared returning %v, previously returning %v", err.Name, err.New.Return, err.Existing.Return)
}

func (err *ErrReturnTypeMismatch) Unwrap() error { return ErrLink }

// ErrMultipleDefinition is a second definition of the same entity.
type ErrMultipleDefinition struct {
	Name string
}

func (err *ErrMultipleDefinition) Error() string {
	return f("multiple definitions of %v", err.Name)
}

func (err *ErrMultipleDefinition) Unwrap() error { return ErrLink }

// ErrClassTokens is a class defined twice with different definitions.
type ErrClassTokens struct {
	Name string
}

func (err *ErrClassTokens) Error() string {
	return f("class %v is defined differently in different places", err.Name)
}

func (err *ErrClassTokens) Unwrap() error { return ErrLink }

// ErrTypeMismatch is a redeclaration with an incompatible type or kind.
type ErrTypeMismatch struct {
	Name     string
	Existing *types.Type
	New      *types.Type
}

func (err *ErrTypeMismatch) Error() string {
	return f("%v redeclared as %v, previously %v", err.Name, err.New, err.Existing)
}

func (err *ErrTypeMismatch) Unwrap() error { return ErrLink }
