package construct

import (
	"strconv"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

// InitKind is the form of an initialization.
type InitKind int

const (
	INIT_DEFAULT   = InitKind(0) // Automatic objects start uninitialized.
	INIT_VALUE     = InitKind(1) // Copy or direct initialization.
	INIT_ZERO      = InitKind(2) // Empty braces.
	INIT_LIST      = InitKind(3) // Aggregate from a brace list.
	INIT_STRING    = InitKind(4) // char array from a string literal.
	INIT_REFERENCE = InitKind(5) // Reference binding.
)

var _init_kind_names = [...]string{
	INIT_DEFAULT:   "default",
	INIT_VALUE:     "value",
	INIT_ZERO:      "zero",
	INIT_LIST:      "list",
	INIT_STRING:    "string",
	INIT_REFERENCE: "reference",
}

func (k InitKind) String() string {
	if k < 0 || int(k) >= len(_init_kind_names) {
		return "InitKind(" + strconv.Itoa(int(k)) + ")"
	}
	return _init_kind_names[k]
}

// Init initializes the object or reference an entity declares.
type Init struct {
	base
	Entity *scope.Entity
	Kind   InitKind
	subs   []Expression
}

func (i *Init) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, i.subs)
	return
}

func (i *Init) StepForward(rt Runtime, inst *Instance) (err error) {
	e := i.Entity.Canonical()

	if i.Kind == INIT_REFERENCE {
		if inst.Frame == nil {
			return ErrNoFrame
		}
		inst.Frame.BindReference(e.Key, inst.Child(0).Object)
		// A temporary bound to a reference lives as long as the reference.
		inst.extendTemporaries(enclosingBlock(inst))
		inst.finish(rt)
		return
	}

	obj, err := i.target(rt, inst, e)
	if err != nil {
		return
	}
	t := obj.Type

	switch i.Kind {
	case INIT_DEFAULT:
		if obj.Kind == memory.AUTO {
			obj.Invalidate()
		}
	case INIT_VALUE:
		obj.WriteValue(inst.Child(0).Value.WithType(t.Unqualified()))
	case INIT_ZERO:
		obj.WriteValue(zeroValue(t))
	case INIT_LIST:
		zero := zeroValue(t).Elements()
		elems := make([]value.Value, len(zero))
		for n := range elems {
			elems[n] = zero[n]
			if n < len(inst.Children) {
				elems[n] = inst.Child(n).Value
			}
		}
		obj.WriteValue(value.Composite(t, elems))
	case INIT_STRING:
		text := inst.Child(0).Object.Value().Elements()
		elems := make([]value.Value, t.Length)
		for n := range elems {
			if n < len(text) {
				elems[n] = text[n].WithType(t.Elem.Unqualified())
			} else {
				elems[n] = zeroValue(t.Elem)
			}
		}
		obj.WriteValue(value.Composite(t, elems))
	}

	inst.finish(rt)
	return
}

func (i *Init) target(rt Runtime, inst *Instance, e *scope.Entity) (obj *memory.Object, err error) {
	var ok bool
	switch e.Kind {
	case scope.STATIC_OBJECT:
		obj, ok = rt.Static(e)
	default:
		if inst.Frame == nil {
			return nil, ErrNoFrame
		}
		obj, ok = inst.Frame.Object(e.Key)
	}
	if !ok {
		err = ErrNoStorage
	}
	return
}

// compileInit compiles the initializer of a declared object or
// reference.
func (c *compiler) compileInit(e *scope.Entity, id *ast.InitDeclarator, ctx context) (init *Init) {
	init = &Init{base: base{span: id.Span}, Entity: e}

	in := id.Init
	if in == nil || in.Kind == ast.DEFAULT_INIT {
		return
	}

	var args []Expression
	for _, a := range in.Args {
		x := c.compileExpr(a, ctx)
		if x == nil {
			return nil
		}
		args = append(args, x)
	}

	t := e.Type
	switch {
	case t.IsReference():
		if len(args) != 1 {
			c.errorf(NOTE_DECL_INIT_COUNT, in, "reference %v needs exactly one initializer", e.Name)
			return nil
		}
		x := c.bindReference(args[0], t, in)
		if x == nil {
			return nil
		}
		init.Kind = INIT_REFERENCE
		init.subs = []Expression{x}
	case in.Kind == ast.LIST_INIT && (t.IsArray() || t.IsClass()):
		return c.listInit(init, t, args, in)
	case t.IsArray():
		lit, ok := args[0].(*stringLiteral)
		if len(args) != 1 || !ok || t.Elem.Kind != types.CHAR {
			c.errorf(NOTE_DECL_UNSUPPORTED, in, "array %v must be initialized with a brace list", e.Name)
			return nil
		}
		if len(lit.text)+1 > t.Length {
			c.errorf(NOTE_DECL_INIT_COUNT, in, "string literal is too long for %v", t.Declare(e.Name))
			return nil
		}
		init.Kind = INIT_STRING
		init.subs = args
	case len(args) == 0:
		init.Kind = INIT_ZERO
	case len(args) > 1:
		c.errorf(NOTE_DECL_INIT_COUNT, in, "too many initializers for %v", t.Declare(e.Name))
		return nil
	default:
		x := c.convertTo(args[0], t.Unqualified(), in)
		if x == nil {
			return nil
		}
		init.Kind = INIT_VALUE
		init.subs = []Expression{x}
	}
	return
}

// listInit initializes an array or an aggregate class element by
// element. Missing elements are zeroed.
func (c *compiler) listInit(init *Init, t *types.Type, args []Expression, node ast.Node) *Init {
	var targets []*types.Type
	switch {
	case t.IsArray():
		for range t.Length {
			targets = append(targets, t.Elem)
		}
	default:
		cls := t.Class.Canonical()
		if cls.Base != nil {
			c.errorf(NOTE_DECL_UNSUPPORTED, node, "brace initialization of derived class %v", cls.Name)
			return nil
		}
		for _, m := range cls.Members {
			targets = append(targets, m.Type)
		}
	}

	if len(args) > len(targets) {
		c.errorf(NOTE_DECL_INIT_COUNT, node, "too many initializers for %v", t)
		return nil
	}

	init.Kind = INIT_LIST
	for n, a := range args {
		x := c.convertTo(a, targets[n].Unqualified(), node)
		if x == nil {
			return nil
		}
		init.subs = append(init.subs, x)
	}
	return init
}
