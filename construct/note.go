package construct

import (
	"errors"
	"strconv"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/translate"
)

var f = translate.From

type Severity int

const (
	ERROR   = Severity(0)
	WARNING = Severity(1)
	STYLE   = Severity(2)
)

var _severity_names = [...]string{
	ERROR:   "error",
	WARNING: "warning",
	STYLE:   "style",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(_severity_names) {
		return "Severity(" + strconv.Itoa(int(s)) + ")"
	}
	return _severity_names[s]
}

// Note keys.
const (
	NOTE_LOOKUP_NOT_FOUND      = "lookup.not_found"
	NOTE_LOOKUP_HIDDEN         = "lookup.hidden"
	NOTE_LOOKUP_NO_MATCH       = "lookup.no_match"
	NOTE_LOOKUP_AMBIGUOUS      = "lookup.ambiguous"
	NOTE_LINK_RETURN_TYPES     = "link.func.returnTypesMatch"
	NOTE_LINK_MULTIPLE_DEF     = "link.multiple_def"
	NOTE_LINK_CLASS_TOKENS     = "link.class_same_tokens"
	NOTE_LINK_TYPE_MISMATCH    = "link.type_mismatch"
	NOTE_LINK_DEF_NOT_FOUND    = "link.def_not_found"
	NOTE_TYPE_CONVERSION       = "type.conversion"
	NOTE_TYPE_INCOMPLETE       = "type.incomplete"
	NOTE_TYPE_NOT_A_TYPE       = "type.not_a_type"
	NOTE_DECL_UNSUPPORTED      = "decl.unsupported"
	NOTE_DECL_ARRAY_LENGTH     = "decl.array_length"
	NOTE_DECL_REF_INIT         = "decl.reference_init"
	NOTE_DECL_CONST_INIT       = "decl.const_init"
	NOTE_DECL_INIT_COUNT       = "decl.init_count"
	NOTE_DECL_NON_COVARIANT    = "declaration.func.nonCovariantReturnType"
	NOTE_STMT_BREAK            = "stmt.break_outside_loop"
	NOTE_STMT_CONTINUE         = "stmt.continue_outside_loop"
	NOTE_STMT_RETURN           = "stmt.return_type"
	NOTE_EXPR_LVALUE_REQUIRED  = "expr.lvalue_required"
	NOTE_EXPR_CONST_ASSIGN     = "expr.const_assign"
	NOTE_EXPR_NOT_CALLABLE     = "expr.not_callable"
	NOTE_EXPR_OPERANDS         = "expr.invalid_operands"
	NOTE_EXPR_NOT_A_MEMBER     = "expr.not_a_member"
	NOTE_EXPR_THIS_OUTSIDE     = "expr.this_outside_member"
	NOTE_EXPR_NON_CONST_MEMBER = "expr.non_const_member_call"
	NOTE_EXPR_UNSUPPORTED      = "expr.unsupported"
)

// Note is a compile-time diagnostic attached to a source location.
type Note struct {
	Severity Severity
	Key      string
	Message  string
	Span     ast.Span
}

func (n Note) String() string {
	return f("%v: %v: %v [%v]", n.Span, n.Severity, n.Message, n.Key)
}

// lookupKey maps a lookup or link error to its note key.
func lookupKey(err error) string {
	var (
		notFound  *scope.ErrNotFound
		hidden    *scope.ErrHidden
		noMatch   *scope.ErrNoMatch
		ambiguous *scope.ErrAmbiguous
		returns   *scope.ErrReturnTypeMismatch
		multiple  *scope.ErrMultipleDefinition
		tokens    *scope.ErrClassTokens
	)

	switch {
	case errors.As(err, &notFound):
		return NOTE_LOOKUP_NOT_FOUND
	case errors.As(err, &hidden):
		return NOTE_LOOKUP_HIDDEN
	case errors.As(err, &noMatch):
		return NOTE_LOOKUP_NO_MATCH
	case errors.As(err, &ambiguous):
		return NOTE_LOOKUP_AMBIGUOUS
	case errors.As(err, &returns):
		return NOTE_LINK_RETURN_TYPES
	case errors.As(err, &multiple):
		return NOTE_LINK_MULTIPLE_DEF
	case errors.As(err, &tokens):
		return NOTE_LINK_CLASS_TOKENS
	}
	return NOTE_LINK_TYPE_MISMATCH
}

type EventKind int

const (
	UNDEFINED_BEHAVIOR              = EventKind(0)
	UNSPECIFIED_BEHAVIOR            = EventKind(1)
	IMPLEMENTATION_DEFINED_BEHAVIOR = EventKind(2)
	MEMORY_LEAK                     = EventKind(3)
	ASSERTION_FAILURE               = EventKind(4)
	CRASH                           = EventKind(5)
)

var _event_kind_names = [...]string{
	UNDEFINED_BEHAVIOR:              "undefined_behavior",
	UNSPECIFIED_BEHAVIOR:            "unspecified_behavior",
	IMPLEMENTATION_DEFINED_BEHAVIOR: "implementation_defined_behavior",
	MEMORY_LEAK:                     "memory_leak",
	ASSERTION_FAILURE:               "assertion_failure",
	CRASH:                           "crash",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(_event_kind_names) {
		return "EventKind(" + strconv.Itoa(int(k)) + ")"
	}
	return _event_kind_names[k]
}

// EventKinds lists the event kind names in kind order.
func EventKinds() []string {
	return _event_kind_names[:]
}

// Event is a runtime anomaly. Execution continues after every event
// except a crash.
type Event struct {
	Kind    EventKind
	Message string
	Span    ast.Span
	Step    int // Set by the driver.
}

func (ev Event) String() string {
	return f("%v: %v: %v", ev.Span, ev.Kind, ev.Message)
}
