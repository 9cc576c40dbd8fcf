// Package scope resolves names.
//
// Scopes map names to entities and chain to a parent for lookup. Block
// scopes hand their automatic objects to the enclosing function scope,
// which owns the per-call frame layout. Namespace scopes merge across
// translation units. Class scopes add member lookup through the base
// class chain. An Arena owns every entity and scope of one compilation.
package scope

import (
	"errors"
	"iter"
	"maps"
	"slices"
	"strconv"

	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/types"
)

type ScopeKind int

const (
	BLOCK_SCOPE     = ScopeKind(0)
	FUNCTION_SCOPE  = ScopeKind(1)
	NAMESPACE_SCOPE = ScopeKind(2)
	CLASS_SCOPE     = ScopeKind(3)
)

var _scope_kind_names = [...]string{
	BLOCK_SCOPE:     "block",
	FUNCTION_SCOPE:  "function",
	NAMESPACE_SCOPE: "namespace",
	CLASS_SCOPE:     "class",
}

func (k ScopeKind) String() string {
	if k < 0 || int(k) >= len(_scope_kind_names) {
		return "ScopeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return _scope_kind_names[k]
}

// ScopeID is a scope's index in its Arena.
type ScopeID int

// Arena owns the entities and scopes of one compilation.
type Arena struct {
	entities []*Entity
	scopes   []*Scope
	statics  []*Entity
	isStatic map[*Entity]bool
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{isStatic: map[*Entity]bool{}}
}

// NewEntity creates an entity owned by the arena.
func (a *Arena) NewEntity(kind EntityKind, name string, t *types.Type) (e *Entity) {
	e = &Entity{
		ID:   EntityID(len(a.entities)),
		Kind: kind,
		Name: name,
		Type: t,
	}
	a.entities = append(a.entities, e)
	return
}

// Entity returns the entity with the given id.
func (a *Arena) Entity(id EntityID) (e *Entity, ok bool) {
	if id < 0 || int(id) >= len(a.entities) {
		return
	}
	return a.entities[id], true
}

// Entities iterates over every entity in creation order.
func (a *Arena) Entities() iter.Seq[*Entity] {
	return slices.Values(a.entities)
}

// NewScope creates a scope owned by the arena.
func (a *Arena) NewScope(kind ScopeKind, name string, parent *Scope) (s *Scope) {
	s = &Scope{
		ID:       ScopeID(len(a.scopes)),
		Kind:     kind,
		Name:     name,
		Parent:   parent,
		arena:    a,
		entities: map[string][]*Entity{},
		children: map[string]*Scope{},
	}
	a.scopes = append(a.scopes, s)
	return
}

// Scope returns the scope with the given id.
func (a *Arena) Scope(id ScopeID) (s *Scope, ok bool) {
	if id < 0 || int(id) >= len(a.scopes) {
		return
	}
	return a.scopes[id], true
}

// Statics iterates over static-storage entities in declaration order.
// Entities merged into another are skipped.
func (a *Arena) Statics() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range a.statics {
			if e.Canonical() != e {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

func (a *Arena) addStatic(e *Entity) {
	if a.isStatic[e] {
		return
	}
	a.isStatic[e] = true
	a.statics = append(a.statics, e)
}

// Scope maps names to entities.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Name   string
	Parent *Scope

	Class *types.Class // Class of a CLASS_SCOPE.
	Base  *Scope       // Scope of the base class of a CLASS_SCOPE.

	// Automatic objects and references of a FUNCTION_SCOPE, in frame order.
	Automatics []*Entity

	arena    *Arena
	names    []string
	entities map[string][]*Entity
	children map[string]*Scope
	usings   []*Scope
}

// Arena that owns the scope.
func (s *Scope) Arena() *Arena {
	return s.arena
}

// Root returns the outermost enclosing scope.
func (s *Scope) Root() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// FunctionScope returns the nearest enclosing function scope.
func (s *Scope) FunctionScope() (fs *Scope, ok bool) {
	for fs = s; fs != nil; fs = fs.Parent {
		switch fs.Kind {
		case FUNCTION_SCOPE:
			return fs, true
		case CLASS_SCOPE, NAMESPACE_SCOPE:
			return nil, false
		}
	}
	return
}

// Child returns the nested namespace or class scope called name.
func (s *Scope) Child(name string) (child *Scope, ok bool) {
	child, ok = s.children[name]
	return
}

// Namespace returns the nested namespace called name, creating it and
// its namespace entity as needed.
func (s *Scope) Namespace(name string) (ns *Scope) {
	if ns, ok := s.children[name]; ok && ns.Kind == NAMESPACE_SCOPE {
		return ns
	}
	ns = s.arena.NewScope(NAMESPACE_SCOPE, name, s)
	s.children[name] = ns
	e := s.arena.NewEntity(NAMESPACE, name, nil)
	_, _ = s.AddDeclaredEntity(e)
	return
}

// ClassScope creates the member scope of class c, nested in s.
func (s *Scope) ClassScope(c *types.Class, base *Scope) (cs *Scope) {
	cs = s.arena.NewScope(CLASS_SCOPE, c.Name, s)
	cs.Class = c
	cs.Base = base
	s.children[c.Name] = cs
	return
}

// Using makes the names of namespace ns visible in s.
func (s *Scope) Using(ns *Scope) {
	if !slices.Contains(s.usings, ns) {
		s.usings = append(s.usings, ns)
	}
}

// AllEntities iterates over the entities declared directly in s, in
// declaration order.
func (s *Scope) AllEntities() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, name := range s.names {
			for _, e := range s.entities[name] {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Locals is the frame layout of a function scope.
func (s *Scope) Locals() (locals []memory.Local) {
	for _, e := range s.Automatics {
		locals = append(locals, memory.Local{
			Key:       e.Key,
			Name:      e.Name,
			Type:      e.Type,
			Reference: e.Kind == REFERENCE,
		})
	}
	return
}

// AddDeclaredEntity installs e in s. A same-named entity already in s is
// merged with e when it is a non-function or a function with the same
// signature; otherwise e is added as a further overload. The entity now
// denoting the declaration is returned.
func (s *Scope) AddDeclaredEntity(e *Entity) (installed *Entity, err error) {
	if e.Scope == nil {
		e.Scope = s
	}

	existing := s.entities[e.Name]
	if len(existing) == 0 {
		s.install(e)
		return e, nil
	}

	if !e.Kind.IsFunction() || !existing[0].Kind.IsFunction() {
		return merge(existing[0], e)
	}

	for _, other := range existing {
		if !types.SameSignature(other.Type, e.Type) {
			continue
		}
		if !types.SameReturnType(other.Type, e.Type) {
			err = &ErrReturnTypeMismatch{Name: e.QualifiedName(), Existing: other.Type, New: e.Type}
			return
		}
		return merge(other, e)
	}

	s.install(e)
	return e, nil
}

func (s *Scope) install(e *Entity) {
	if _, ok := s.entities[e.Name]; !ok {
		s.names = append(s.names, e.Name)
	}
	s.entities[e.Name] = append(s.entities[e.Name], e)

	switch e.Kind {
	case AUTO_OBJECT, REFERENCE:
		if fs, ok := s.FunctionScope(); ok {
			e.Key = len(fs.Automatics)
			fs.Automatics = append(fs.Automatics, e)
		}
	case STATIC_OBJECT:
		s.arena.addStatic(e)
	}
}

// merge two declarations of the same entity. The surviving entity adopts
// a definition from either; e is linked to it.
func merge(existing, e *Entity) (survivor *Entity, err error) {
	name := e.QualifiedName()

	if existing.Kind != e.Kind {
		err = &ErrTypeMismatch{Name: name, Existing: existing.Type, New: e.Type}
		return
	}

	switch existing.Kind {
	case NAMESPACE:
		e.canon = existing
		return existing, nil
	case CLASS:
		switch {
		case existing.Defined && e.Defined:
			if StripSpace(existing.Tokens) != StripSpace(e.Tokens) {
				err = &ErrClassTokens{Name: name}
				return
			}
			e.Type.Class.Link(existing.Type.Class)
		case e.Defined:
			existing.Defined = true
			existing.Tokens = e.Tokens
			existing.Decl = e.Decl
			existing.Type.Class.Link(e.Type.Class)
		default:
			e.Type.Class.Link(existing.Type.Class)
		}
		e.canon = existing
		return existing, nil
	case MEMBER_OBJECT:
		err = &ErrMultipleDefinition{Name: name}
		return
	}

	if !types.SameType(existing.Type, e.Type) {
		err = &ErrTypeMismatch{Name: name, Existing: existing.Type, New: e.Type}
		return
	}

	if existing.Defined && e.Defined {
		if existing.Inline && e.Inline {
			e.canon = existing
			return existing, nil
		}
		err = &ErrMultipleDefinition{Name: name}
		return
	}

	if e.Defined {
		existing.Defined = true
		existing.Definition = e.Definition
		existing.Decl = e.Decl
		existing.Extern = false
	}
	e.canon = existing

	return existing, nil
}

// Merge folds the namespace other, typically the global scope of another
// translation unit, into s. Every conflict is reported.
func (s *Scope) Merge(other *Scope) (err error) {
	var errs []error

	for e := range other.AllEntities() {
		if _, addErr := s.AddDeclaredEntity(e); addErr != nil {
			errs = append(errs, addErr)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(other.children)) {
		child := other.children[name]
		mine, ok := s.children[name]
		switch {
		case !ok:
			child.Parent = s
			s.children[name] = child
		case mine.Kind == NAMESPACE_SCOPE && child.Kind == NAMESPACE_SCOPE:
			errs = append(errs, mine.Merge(child))
		case mine.Kind == CLASS_SCOPE && child.Kind == CLASS_SCOPE:
			// Data members were compared with the class definition.
			for e := range child.AllEntities() {
				if !e.Kind.IsFunction() {
					continue
				}
				if _, addErr := mine.AddDeclaredEntity(e); addErr != nil {
					errs = append(errs, addErr)
				}
			}
		}
	}

	return errors.Join(errs...)
}
