package construct

import (
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/internal"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
)

// Program is the compiled form of a set of translation units.
type Program struct {
	Arena  *scope.Arena
	Global *scope.Scope
	Notes  []Note
	Main   *scope.Entity

	// Statics are the initializers of static objects, run in order at
	// program start. Statics without one are zero-initialized.
	Statics []*Init

	Logger *zap.Logger

	classes []classScope
	uses    []use
}

type classScope struct {
	class *types.Class
	scope *scope.Scope
}

type use struct {
	entity *scope.Entity
	span   ast.Span
}

// Compile builds the construct tree of units. Each unit is compiled in
// its own namespace and then merged into the global namespace. Semantic
// errors never stop compilation; they are collected as notes.
func Compile(logger *zap.Logger, units ...*ast.TranslationUnit) (p *Program) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p = &Program{
		Arena:  scope.NewArena(),
		Logger: logger,
	}
	p.Global = p.Arena.NewScope(scope.NAMESPACE_SCOPE, "", nil)

	for _, unit := range units {
		c := &compiler{program: p, arena: p.Arena, file: unit.File}
		us := c.compileUnit(unit)
		for _, err := range flatten(p.Global.Merge(us)) {
			key, name := classify(err)
			p.note(ERROR, key, p.spanOf(name, unit.File), err.Error())
		}
	}

	p.link()

	for _, n := range p.Notes {
		logger.Debug("compile note",
			zap.String("key", n.Key),
			zap.Stringer("severity", n.Severity),
			zap.Stringer("at", n.Span),
			zap.String("message", n.Message))
	}

	return
}

// Errors iterates over the notes of ERROR severity.
func (p *Program) Errors() iter.Seq[Note] {
	return internal.IterSeqFilter(slices.Values(p.Notes), func(n Note) bool {
		return n.Severity == ERROR
	})
}

// HasErrors reports whether any note is an error.
func (p *Program) HasErrors() bool {
	return internal.IterSeqCount(p.Errors()) > 0
}

// ClassScope returns the member scope of class c.
func (p *Program) ClassScope(c *types.Class) (cs *scope.Scope, ok bool) {
	for _, entry := range p.classes {
		if entry.class.Same(c) {
			return entry.scope, true
		}
	}
	return
}

func (p *Program) note(severity Severity, key string, span ast.Span, message string) {
	p.Notes = append(p.Notes, Note{Severity: severity, Key: key, Message: message, Span: span})
}

// spanOf locates the declaration of name in file, for link errors.
func (p *Program) spanOf(name string, file string) (span ast.Span) {
	span.File = file
	for e := range p.Arena.Entities() {
		node, ok := e.Decl.(ast.Node)
		if !ok || e.QualifiedName() != name {
			continue
		}
		if at := node.Pos(); at.File == file || at.File == "" {
			span = at
			span.File = file
			return
		}
	}
	return
}

// link resolves main, reports used but undefined entities and drops
// duplicate definitions of merged statics.
func (p *Program) link() {
	ents, st := p.Global.Lookup("main", scope.Options{Own: true})
	if st == scope.FOUND {
		for _, e := range ents {
			e = e.Canonical()
			if e.Kind == scope.FUNCTION && e.Defined && len(e.Type.Params) == 0 {
				p.Main = e
			}
		}
	}

	reported := map[*scope.Entity]bool{}
	for _, u := range p.uses {
		e := u.entity.Canonical()
		if e.Defined || reported[e] {
			continue
		}
		reported[e] = true
		p.note(ERROR, NOTE_LINK_DEF_NOT_FOUND, u.span, f("%v is used but never defined", e.QualifiedName()))
	}

	var statics []*Init
	done := map[*scope.Entity]bool{}
	for _, init := range p.Statics {
		e := init.Entity.Canonical()
		if done[e] {
			continue
		}
		done[e] = true
		statics = append(statics, init)
	}
	p.Statics = statics
}

// flatten unpacks joined errors.
func flatten(err error) (errs []error) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			errs = append(errs, flatten(e)...)
		}
		return
	}
	return []error{err}
}

// classify returns the note key of a lookup or link error and the name
// it concerns.
func classify(err error) (key string, name string) {
	key = lookupKey(err)
	switch err := err.(type) {
	case *scope.ErrNotFound:
		name = err.Name
	case *scope.ErrHidden:
		name = err.Name
	case *scope.ErrNoMatch:
		name = err.Name
	case *scope.ErrAmbiguous:
		name = err.Name
	case *scope.ErrReturnTypeMismatch:
		name = err.Name
	case *scope.ErrMultipleDefinition:
		name = err.Name
	case *scope.ErrClassTokens:
		name = err.Name
	case *scope.ErrTypeMismatch:
		name = err.Name
	}
	return
}

// compiler compiles one translation unit.
type compiler struct {
	program *Program
	arena   *scope.Arena
	file    string
}

// context is the position of the code being compiled.
type context struct {
	scope *scope.Scope
	fn    *Function // nil outside function bodies.
	loop  *loop     // Innermost enclosing loop.
}

func (c *compiler) note(severity Severity, key string, node ast.Node, format string, args ...any) {
	span := node.Pos()
	if span.File == "" {
		span.File = c.file
	}
	c.program.note(severity, key, span, f(format, args...))
}

func (c *compiler) errorf(key string, node ast.Node, format string, args ...any) {
	c.note(ERROR, key, node, format, args...)
}

// noteErr converts a lookup or link error to a note.
func (c *compiler) noteErr(node ast.Node, err error) {
	c.note(ERROR, lookupKey(err), node, "%v", err)
}

func (c *compiler) compileUnit(unit *ast.TranslationUnit) (us *scope.Scope) {
	us = c.arena.NewScope(scope.NAMESPACE_SCOPE, "", nil)

	c.declarePrelude(us)

	for _, d := range unit.Decls {
		c.compileDecl(d, us)
	}

	return
}

// declarePrelude declares the builtin library in a unit: std::cout,
// std::endl and assert. Every unit gets identical inline copies.
func (c *compiler) declarePrelude(us *scope.Scope) {
	std := &ast.Namespace{Name: "std", Decls: []ast.Decl{
		ast.Var("ostream", "cout", nil),
		ast.Var("const char", "endl", ast.Char('\n')),
	}}
	c.compileDecl(std, us)
	for e := range us.Namespace("std").AllEntities() {
		e.Inline = true
	}

	t := types.FunctionOf(types.Void, []*types.Type{types.Bool}, false)
	assert := c.arena.NewEntity(scope.FUNCTION, "assert", t)
	assert.Defined = true
	assert.Inline = true
	assert.Definition = &Function{Entity: assert, Return: types.Void, builtin: builtinAssert}
	_, _ = us.AddDeclaredEntity(assert)
}

func (c *compiler) compileDecl(d ast.Decl, s *scope.Scope) {
	switch d := d.(type) {
	case *ast.SimpleDecl:
		c.declareObjects(d, context{scope: s})
	case *ast.FunctionDef:
		if fn := c.defineFunction(d, s, false); fn != nil {
			c.compileBody(fn)
		}
	case *ast.ClassDef:
		c.defineClass(d, s)
	case *ast.Namespace:
		ns := s.Namespace(d.Name)
		for _, inner := range d.Decls {
			c.compileDecl(inner, ns)
		}
	case *ast.UsingDirective:
		ns, ok := c.findScope(s, append(append([]string{}, d.Qualified...), d.Name))
		if !ok || ns.Kind != scope.NAMESPACE_SCOPE {
			c.noteErr(d, &scope.ErrNotFound{Name: d.Name})
			return
		}
		s.Using(ns)
	default:
		c.errorf(NOTE_DECL_UNSUPPORTED, d, "unsupported declaration")
	}
}

// findScope resolves a qualifier path to a namespace or class scope,
// searching outward from s.
func (c *compiler) findScope(s *scope.Scope, path []string) (found *scope.Scope, ok bool) {
	for from := s; from != nil; from = from.Parent {
		at := from
		for _, part := range path {
			if at, ok = at.Child(part); !ok {
				break
			}
		}
		if ok {
			return at, true
		}
	}
	return
}

// qualifiedLookup finds path::name, first from the root and then
// relative to the enclosing scopes of s.
func (c *compiler) qualifiedLookup(s *scope.Scope, path []string, name string, opts scope.Options) (ents []*scope.Entity, st scope.Status) {
	ents, st = s.QualifiedLookup(path, name, opts)
	if st != scope.NOT_FOUND {
		return
	}

	at, ok := c.findScope(s, path)
	if !ok {
		return
	}
	if at.Kind == scope.CLASS_SCOPE {
		return at.MemberLookup(name, opts)
	}
	opts.Own = true
	return at.Lookup(name, opts)
}

// lookup resolves a possibly qualified name.
func (c *compiler) lookup(s *scope.Scope, path []string, name string, opts scope.Options) (ents []*scope.Entity, st scope.Status) {
	if len(path) > 0 {
		return c.qualifiedLookup(s, path, name, opts)
	}
	return s.Lookup(name, opts)
}

// declareObjects declares every declarator of d and returns the
// initializers of the automatic objects among them.
func (c *compiler) declareObjects(d *ast.SimpleDecl, ctx context) (inits []*Init) {
	for _, id := range d.Decls {
		t, ok := c.declaredType(d.Spec, &id.Declarator, ctx.scope)
		if !ok {
			continue
		}

		if t.IsFunction() {
			c.declareFunction(d.Spec, &id.Declarator, t, ctx.scope)
			continue
		}

		if t.IsArray() && t.Length < 0 {
			t = c.deduceLength(t, id.Init)
			if t.Length < 0 {
				c.errorf(NOTE_DECL_ARRAY_LENGTH, id, "array %v needs a length or an initializer", id.Name)
				continue
			}
		}

		static := ctx.fn == nil || d.Spec.Static
		kind := scope.AUTO_OBJECT
		switch {
		case t.IsReference() && static:
			c.errorf(NOTE_DECL_UNSUPPORTED, id, "static reference %v is not supported", id.Name)
			continue
		case t.IsReference():
			kind = scope.REFERENCE
		case static:
			kind = scope.STATIC_OBJECT
		}

		if !t.IsReference() && !t.IsComplete() {
			c.errorf(NOTE_TYPE_INCOMPLETE, id, "%v has incomplete type %v", id.Name, t)
			continue
		}

		e := c.arena.NewEntity(kind, id.Name, t)
		e.Decl = id
		e.Extern = d.Spec.Extern && id.Init == nil
		e.Defined = !e.Extern
		if _, err := ctx.scope.AddDeclaredEntity(e); err != nil {
			c.noteErr(id, err)
			continue
		}
		if e.Extern {
			continue
		}

		if id.Init == nil {
			switch {
			case t.IsReference():
				c.errorf(NOTE_DECL_REF_INIT, id, "reference %v must be initialized", id.Name)
				continue
			case t.Const && !t.IsClass():
				c.errorf(NOTE_DECL_CONST_INIT, id, "const %v must be initialized", id.Name)
				continue
			}
		}

		init := c.compileInit(e, id, ctx)
		if init == nil {
			continue
		}
		if kind == scope.STATIC_OBJECT {
			if id.Init != nil {
				c.program.Statics = append(c.program.Statics, init)
			}
			continue
		}
		inits = append(inits, init)
	}
	return
}

// deduceLength completes an array type of unknown length from its
// initializer.
func (c *compiler) deduceLength(t *types.Type, init *ast.Initializer) *types.Type {
	if init == nil {
		return t
	}
	if init.Kind == ast.LIST_INIT {
		return types.ArrayOf(t.Elem, len(init.Args)).Qualified(t.Const, t.Volatile)
	}
	if len(init.Args) == 1 {
		if lit, ok := init.Args[0].(*ast.StringLit); ok && t.Elem.Kind == types.CHAR {
			return types.ArrayOf(t.Elem, len(lit.Value)+1).Qualified(t.Const, t.Volatile)
		}
	}
	return t
}

// declareFunction declares a function without defining it.
func (c *compiler) declareFunction(spec ast.TypeSpec, d *ast.Declarator, t *types.Type, s *scope.Scope) (e *scope.Entity) {
	kind := scope.FUNCTION
	if s.Kind == scope.CLASS_SCOPE {
		kind = scope.MEMBER_FUNCTION
	}

	e = c.arena.NewEntity(kind, d.Name, t)
	e.Decl = d
	if kind == scope.MEMBER_FUNCTION {
		e.Class = s.Class
		overridden, ok := c.overriddenVirtual(s, d.Name, t)
		e.Virtual = spec.Virtual || ok
		if ok {
			c.checkOverride(d, d.Name, t, overridden)
		}
	}

	if _, err := s.AddDeclaredEntity(e); err != nil {
		c.noteErr(d, err)
	}
	return
}

// overriddenVirtual finds the virtual function of a base class that a
// member function of class scope cs overrides.
func (c *compiler) overriddenVirtual(cs *scope.Scope, name string, t *types.Type) (overridden *scope.Entity, ok bool) {
	if cs.Base == nil {
		return
	}
	ents, st := cs.Base.MemberLookup(name, scope.Options{ExactMatch: true, Params: t.Params, ThisConst: t.ThisConst})
	if st != scope.FOUND || !ents[0].Canonical().Virtual {
		return
	}
	return ents[0].Canonical(), true
}

// checkOverride requires an overrider of type t to return the type of
// the function it overrides, or a covariant class pointer or reference.
func (c *compiler) checkOverride(node ast.Node, name string, t *types.Type, overridden *scope.Entity) {
	if types.IsCovariantReturn(t.Return, overridden.Type.Return) {
		return
	}
	c.errorf(NOTE_DECL_NON_COVARIANT, node, "return type %v of %v is not covariant with %v of %v",
		t.Return, name, overridden.Type.Return, overridden.QualifiedName())
}

// defineFunction declares the function defined by d and prepares its
// scope and parameters. The body is compiled by compileBody.
func (c *compiler) defineFunction(d *ast.FunctionDef, s *scope.Scope, inClass bool) (fn *Function) {
	ds := s
	if len(d.Declarator.Qualified) > 0 {
		found, ok := c.findScope(s, d.Declarator.Qualified)
		if !ok {
			c.noteErr(&d.Declarator, &scope.ErrNotFound{Name: d.Declarator.Qualified[len(d.Declarator.Qualified)-1]})
			return
		}
		ds = found
	}

	t, ok := c.declaredType(d.Spec, &d.Declarator, s)
	if !ok {
		return
	}
	if !t.IsFunction() || len(d.Declarator.Ops) == 0 || d.Declarator.Ops[0].Kind != ast.FUNCTION {
		c.errorf(NOTE_DECL_UNSUPPORTED, d, "unsupported function declarator")
		return
	}

	name := d.Declarator.Name
	kind := scope.FUNCTION
	var cls *types.Class
	if ds.Kind == scope.CLASS_SCOPE {
		kind = scope.MEMBER_FUNCTION
		cls = ds.Class
		if !inClass {
			_, st := ds.MemberLookup(name, scope.Options{NoBase: true, ExactMatch: true, Params: t.Params, ThisConst: t.ThisConst})
			if st != scope.FOUND {
				c.errorf(NOTE_LOOKUP_NO_MATCH, &d.Declarator, "no member function %v declared in class %v", t.Declare(name), cls.Name)
				return
			}
		}
	}

	e := c.arena.NewEntity(kind, name, t)
	e.Decl = d
	e.Defined = true
	e.Inline = d.Spec.Inline || inClass
	e.Class = cls
	if kind == scope.MEMBER_FUNCTION {
		overridden, ok := c.overriddenVirtual(ds, name, t)
		e.Virtual = d.Spec.Virtual || ok
		if ok && inClass {
			c.checkOverride(&d.Declarator, name, t, overridden)
		}
	}

	fn = &Function{
		base:   base{span: d.Span},
		Entity: e,
		Class:  cls,
		Return: t.Return,
		decl:   d,
	}
	e.Definition = fn

	if _, err := ds.AddDeclaredEntity(e); err != nil {
		c.noteErr(&d.Declarator, err)
	}

	if name == "main" && kind == scope.FUNCTION && ds.Parent == nil && !types.SameType(t.Return, types.Int) {
		c.errorf(NOTE_DECL_UNSUPPORTED, d, "main must return int")
	}

	fn.Scope = c.arena.NewScope(scope.FUNCTION_SCOPE, name, ds)
	for n, p := range d.Declarator.Ops[0].Params {
		pt := t.Params[n]
		pname := p.Declarator.Name
		if pname == "" {
			pname = fmt.Sprintf("#%d", n)
		}
		kind := scope.AUTO_OBJECT
		if pt.IsReference() {
			kind = scope.REFERENCE
		}
		pe := c.arena.NewEntity(kind, pname, pt)
		pe.Param = true
		pe.Defined = true
		pe.Decl = p
		if _, err := fn.Scope.AddDeclaredEntity(pe); err != nil {
			c.noteErr(p, err)
		}
		fn.Params = append(fn.Params, pe)
	}

	return
}

// compileBody compiles the body of a function prepared by defineFunction.
func (c *compiler) compileBody(fn *Function) {
	ctx := context{scope: fn.Scope, fn: fn}
	fn.Body = c.compileStmts(fn.decl.Body, ctx)
}

// defineClass declares a class and its members. Inline member function
// bodies are compiled once the class is complete.
func (c *compiler) defineClass(d *ast.ClassDef, s *scope.Scope) {
	cls := types.NewClass(d.Name)
	e := c.arena.NewEntity(scope.CLASS, d.Name, types.ClassType(cls))
	e.Decl = d
	e.Tokens = d.Span.Text
	e.Defined = !d.Forward
	if _, err := s.AddDeclaredEntity(e); err != nil {
		c.noteErr(d, err)
		return
	}
	if d.Forward {
		return
	}

	var baseScope *scope.Scope
	if d.Base != "" {
		ents, st := c.lookup(s, d.BaseQualified, d.Base, scope.Options{})
		b, err := scope.Require(d.Base, ents, st)
		switch {
		case err != nil:
			c.noteErr(d, err)
		case b.Kind != scope.CLASS:
			c.errorf(NOTE_TYPE_NOT_A_TYPE, d, "%v is not a class", d.Base)
		case !b.Type.IsComplete():
			c.errorf(NOTE_TYPE_INCOMPLETE, d, "base class %v is incomplete", d.Base)
		default:
			cls.Base = b.Type.Class.Canonical()
			baseScope, _ = c.program.ClassScope(cls.Base)
		}
	}

	cs := s.ClassScope(cls, baseScope)
	c.program.classes = append(c.program.classes, classScope{class: cls, scope: cs})
	cls.Tokens = scope.StripSpace(d.Span.Text)

	var bodies []*Function
	for _, m := range d.Members {
		switch m := m.(type) {
		case *ast.SimpleDecl:
			c.declareMembers(m, cls, cs)
		case *ast.FunctionDef:
			if len(m.Declarator.Qualified) > 0 {
				c.errorf(NOTE_DECL_UNSUPPORTED, m, "qualified member definition inside a class")
				continue
			}
			if fn := c.defineFunction(m, cs, true); fn != nil {
				bodies = append(bodies, fn)
			}
		default:
			c.errorf(NOTE_DECL_UNSUPPORTED, m, "unsupported member declaration")
		}
	}

	cls.Complete = true

	for _, fn := range bodies {
		c.compileBody(fn)
	}
}

// declareMembers declares data members and member function declarations.
func (c *compiler) declareMembers(d *ast.SimpleDecl, cls *types.Class, cs *scope.Scope) {
	for _, id := range d.Decls {
		t, ok := c.declaredType(d.Spec, &id.Declarator, cs)
		if !ok {
			continue
		}

		if t.IsFunction() {
			c.declareFunction(d.Spec, &id.Declarator, t, cs)
			continue
		}

		switch {
		case d.Spec.Static:
			c.errorf(NOTE_DECL_UNSUPPORTED, id, "static data member %v is not supported", id.Name)
			continue
		case t.IsReference():
			c.errorf(NOTE_DECL_UNSUPPORTED, id, "reference member %v is not supported", id.Name)
			continue
		case !t.IsComplete():
			c.errorf(NOTE_TYPE_INCOMPLETE, id, "%v has incomplete type %v", id.Name, t)
			continue
		case id.Init != nil:
			c.errorf(NOTE_DECL_UNSUPPORTED, id, "default member initializer for %v is not supported", id.Name)
		}

		e := c.arena.NewEntity(scope.MEMBER_OBJECT, id.Name, t)
		e.Decl = id
		e.Class = cls
		e.Defined = true
		if _, err := cs.AddDeclaredEntity(e); err != nil {
			c.noteErr(id, err)
			continue
		}
		cls.Members = append(cls.Members, types.Member{Name: id.Name, Type: t})
	}
}
