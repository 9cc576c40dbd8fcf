package scope

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jamesjuett/lobster-sub011/types"
)

// EntityKind distinguishes the things a declaration can introduce.
type EntityKind int

const (
	AUTO_OBJECT     = EntityKind(0)
	STATIC_OBJECT   = EntityKind(1)
	DYNAMIC_OBJECT  = EntityKind(2)
	MEMBER_OBJECT   = EntityKind(3)
	REFERENCE       = EntityKind(4)
	FUNCTION        = EntityKind(5)
	MEMBER_FUNCTION = EntityKind(6)
	CLASS           = EntityKind(7)
	NAMESPACE       = EntityKind(8)
)

var _entity_kind_names = [...]string{
	AUTO_OBJECT:     "automatic object",
	STATIC_OBJECT:   "static object",
	DYNAMIC_OBJECT:  "dynamic object",
	MEMBER_OBJECT:   "member object",
	REFERENCE:       "reference",
	FUNCTION:        "function",
	MEMBER_FUNCTION: "member function",
	CLASS:           "class",
	NAMESPACE:       "namespace",
}

func (k EntityKind) String() string {
	if k < 0 || int(k) >= len(_entity_kind_names) {
		return "EntityKind(" + strconv.Itoa(int(k)) + ")"
	}
	return _entity_kind_names[k]
}

// IsFunction is true for free and member functions.
func (k EntityKind) IsFunction() bool {
	return k == FUNCTION || k == MEMBER_FUNCTION
}

// EntityID is an entity's index in its Arena.
type EntityID int

// Entity is a named, typed thing introduced by a declaration.
type Entity struct {
	ID   EntityID
	Kind EntityKind
	Name string
	Type *types.Type

	Scope   *Scope       // Declaring scope.
	Class   *types.Class // Owning class of members.
	Key     int          // Frame key of automatic objects and references.
	Virtual bool         // Virtual member function.
	Param   bool         // Function parameter.
	Extern  bool         // Declaration only, defined elsewhere.
	Inline  bool         // May be defined identically in several units.

	Defined    bool
	Definition any    // Function body or initializer, owned by the compiler.
	Tokens     string // Class definition text, for cross-unit comparison.
	Decl       any    // Declaring AST node, for diagnostics.

	canon *Entity
}

// Canonical returns the entity e was merged into, or e itself.
func (e *Entity) Canonical() *Entity {
	for e.canon != nil {
		e = e.canon
	}
	return e
}

// QualifiedName is the name prefixed by enclosing namespaces and classes.
func (e *Entity) QualifiedName() string {
	var parts []string
	for s := e.Scope; s != nil; s = s.Parent {
		if (s.Kind == NAMESPACE_SCOPE || s.Kind == CLASS_SCOPE) && s.Name != "" {
			parts = append([]string{s.Name}, parts...)
		}
	}
	return strings.Join(append(parts, e.Name), "::")
}

// IsObject is true for entities that denote storage.
func (e *Entity) IsObject() bool {
	switch e.Kind {
	case AUTO_OBJECT, STATIC_OBJECT, DYNAMIC_OBJECT, MEMBER_OBJECT:
		return true
	}
	return false
}

func (e *Entity) String() string {
	if e.Type == nil {
		return e.QualifiedName()
	}
	return e.Type.Declare(e.QualifiedName())
}

// StripSpace removes all whitespace from source text.
func StripSpace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
