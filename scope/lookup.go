package scope

import (
	"strconv"

	"github.com/jamesjuett/lobster-sub011/conv"
	"github.com/jamesjuett/lobster-sub011/types"
)

// Status of a lookup.
type Status int

const (
	FOUND     = Status(0)
	NOT_FOUND = Status(1)
	HIDDEN    = Status(2)
	NO_MATCH  = Status(3)
	AMBIGUOUS = Status(4)
)

var _status_names = [...]string{
	FOUND:     "found",
	NOT_FOUND: "not found",
	HIDDEN:    "hidden",
	NO_MATCH:  "no match",
	AMBIGUOUS: "ambiguous",
}

func (st Status) String() string {
	if st < 0 || int(st) >= len(_status_names) {
		return "Status(" + strconv.Itoa(int(st)) + ")"
	}
	return _status_names[st]
}

// Arg describes one argument expression for overload resolution.
type Arg struct {
	Type     *types.Type
	Category types.Category
	Null     bool // Integer literal zero.
}

// Options filter a lookup.
type Options struct {
	Own          bool // Only the scope itself, no parents.
	NoBase       bool // Class member lookup ignores base classes.
	NoNameHiding bool // Keep searching outward past a non-matching overload set.

	ExactMatch bool          // Keep only functions whose parameters are Params.
	Params     []*types.Type // Parameter types for ExactMatch.

	Call bool  // Run overload resolution with Args.
	Args []Arg // Argument expressions for Call.

	ThisConst bool // Receiver of a member function call is const.
}

// ParamTypes returns options resolving a call with prvalue arguments of
// the given types.
func ParamTypes(params ...*types.Type) (opts Options) {
	opts.Call = true
	for _, p := range params {
		opts.Args = append(opts.Args, Arg{Type: p, Category: types.PRVALUE})
	}
	return
}

// Lookup finds name starting at s and continuing outward. An overload
// set that filters to nothing yields HIDDEN when an outer scope would
// have matched, even past another hiding scope, NO_MATCH otherwise.
func (s *Scope) Lookup(name string, opts Options) (ents []*Entity, st Status) {
	if s.Kind == CLASS_SCOPE {
		ents, st = s.MemberLookup(name, opts)
		if st != NOT_FOUND || opts.Own || s.Parent == nil {
			return
		}
		return s.Parent.Lookup(name, opts)
	}

	ents, st = s.lookupHere(name, opts)
	switch st {
	case NOT_FOUND:
		if opts.Own {
			return
		}
		for _, ns := range s.usings {
			if ents, st = ns.lookupHere(name, opts); st != NOT_FOUND {
				return
			}
		}
		if s.Parent != nil {
			return s.Parent.Lookup(name, opts)
		}
	case NO_MATCH:
		if opts.Own || s.Parent == nil {
			return
		}
		outer, outerSt := s.Parent.Lookup(name, opts)
		if opts.NoNameHiding {
			return outer, outerSt
		}
		ents = nil
		st = NO_MATCH
		if outerSt == FOUND || outerSt == AMBIGUOUS || outerSt == HIDDEN {
			st = HIDDEN
		}
	}
	return
}

// MemberLookup finds name in a class scope, then in its base classes
// unless NoBase is set. A base class member hidden by a non-matching
// overload set in the derived class yields HIDDEN.
func (s *Scope) MemberLookup(name string, opts Options) (ents []*Entity, st Status) {
	ents, st = s.lookupHere(name, opts)
	if opts.NoBase || s.Base == nil {
		return
	}

	switch st {
	case NOT_FOUND:
		return s.Base.MemberLookup(name, opts)
	case NO_MATCH:
		inBase, baseSt := s.Base.MemberLookup(name, opts)
		if opts.NoNameHiding {
			return inBase, baseSt
		}
		if baseSt == FOUND || baseSt == AMBIGUOUS || baseSt == HIDDEN {
			st = HIDDEN
		}
	}
	return
}

// QualifiedLookup finds path::name starting from the root scope. The
// qualifier names namespaces or classes; an empty path is the global
// scope.
func (s *Scope) QualifiedLookup(path []string, name string, opts Options) (ents []*Entity, st Status) {
	at := s.Root()
	for _, part := range path {
		child, ok := at.Child(part)
		if !ok {
			st = NOT_FOUND
			return
		}
		at = child
	}

	if at.Kind == CLASS_SCOPE {
		return at.MemberLookup(name, opts)
	}

	ents, st = at.lookupHere(name, opts)
	if st == NOT_FOUND {
		for _, ns := range at.usings {
			if ents, st = ns.lookupHere(name, opts); st != NOT_FOUND {
				return
			}
		}
	}
	return
}

// RequiredLookup is Lookup reporting every unsuccessful outcome as an
// error. A found overload set of more than one function is ambiguous.
func (s *Scope) RequiredLookup(name string, opts Options) (e *Entity, err error) {
	ents, st := s.Lookup(name, opts)
	return Require(name, ents, st)
}

// Require converts a lookup outcome to a single entity or an error.
func Require(name string, ents []*Entity, st Status) (e *Entity, err error) {
	switch st {
	case FOUND:
		if len(ents) == 1 {
			return ents[0], nil
		}
		err = &ErrAmbiguous{Name: name, Candidates: ents}
	case NOT_FOUND:
		err = &ErrNotFound{Name: name}
	case HIDDEN:
		err = &ErrHidden{Name: name}
	case NO_MATCH:
		err = &ErrNoMatch{Name: name}
	case AMBIGUOUS:
		err = &ErrAmbiguous{Name: name, Candidates: ents}
	}
	return
}

func (s *Scope) lookupHere(name string, opts Options) (ents []*Entity, st Status) {
	all := s.entities[name]
	if len(all) == 0 {
		st = NOT_FOUND
		return
	}

	if !all[0].Kind.IsFunction() {
		return all[:1], FOUND
	}

	switch {
	case opts.ExactMatch:
		for _, e := range all {
			if !types.SameParamTypes(e.Type.Params, opts.Params) {
				continue
			}
			if e.Kind == MEMBER_FUNCTION && e.Type.ThisConst != opts.ThisConst {
				continue
			}
			ents = append(ents, e)
		}
	case opts.Call:
		ents = OverloadResolution(all, opts.Args, opts.ThisConst)
		if len(ents) > 1 {
			st = AMBIGUOUS
			return
		}
	default:
		ents = all
	}

	if len(ents) == 0 {
		st = NO_MATCH
		return
	}
	st = FOUND
	return
}

// Rank returns the conversion length of passing arg to a parameter of
// type param, and whether it is possible at all. Reference parameters
// bind directly with length zero; a const reference may also bind to a
// converted temporary.
func Rank(arg Arg, param *types.Type) (length int, ok bool) {
	target := param
	if param.IsReference() {
		target = param.Elem
		if arg.Category == types.LVALUE && types.ReferenceCompatible(arg.Type, target) {
			return 0, true
		}
		if !target.Const || target.Volatile {
			return
		}
	}

	seq, ok := conv.Standard(arg.Type, arg.Category, target.Unqualified(), arg.Null)
	if !ok {
		return
	}
	return seq.Len(), true
}

type candidate struct {
	e    *Entity
	lens []int
}

// better reports whether a is no worse than b for every argument and
// strictly better for at least one.
func (a candidate) better(b candidate) bool {
	strictly := false
	for n := range min(len(a.lens), len(b.lens)) {
		switch {
		case a.lens[n] > b.lens[n]:
			return false
		case a.lens[n] < b.lens[n]:
			strictly = true
		}
	}
	return strictly
}

// OverloadResolution returns the single best viable candidate for a call
// with args, or every viable candidate when no single one is best. Each
// argument is ranked by the length of its conversion sequence; a member
// function's receiver counts as an extra argument.
func OverloadResolution(cands []*Entity, args []Arg, thisConst bool) (best []*Entity) {
	var viable []candidate

	for _, e := range cands {
		params := e.Type.Params
		if len(params) != len(args) {
			continue
		}

		c := candidate{e: e}
		if e.Kind == MEMBER_FUNCTION {
			if thisConst && !e.Type.ThisConst {
				continue
			}
			receiver := 0
			if e.Type.ThisConst != thisConst {
				receiver = 1
			}
			c.lens = append(c.lens, receiver)
		}

		ok := true
		for n, p := range params {
			length, can := Rank(args[n], p)
			if !can {
				ok = false
				break
			}
			c.lens = append(c.lens, length)
		}
		if ok {
			viable = append(viable, c)
		}
	}

	for _, c := range viable {
		wins := true
		for _, other := range viable {
			if other.e != c.e && !c.better(other) {
				wins = false
				break
			}
		}
		if wins {
			return []*Entity{c.e}
		}
	}

	for _, c := range viable {
		best = append(best, c.e)
	}
	return
}
