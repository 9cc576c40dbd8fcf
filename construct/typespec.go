package construct

import (
	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
)

// declaredType is the type a declarator gives its name.
func (c *compiler) declaredType(spec ast.TypeSpec, d *ast.Declarator, s *scope.Scope) (t *types.Type, ok bool) {
	if t, ok = c.baseType(spec, s); !ok {
		return
	}
	return c.derive(t, d.Ops, d, s)
}

// baseType resolves the type a declaration specifier names.
func (c *compiler) baseType(spec ast.TypeSpec, s *scope.Scope) (t *types.Type, ok bool) {
	std := len(spec.Qualified) == 0 || (len(spec.Qualified) == 1 && spec.Qualified[0] == "std")
	if ft, found := types.Fundamental(spec.Name); found && std {
		return ft.Qualified(spec.Const, spec.Volatile), true
	}

	ents, st := c.lookup(s, spec.Qualified, spec.Name, scope.Options{})
	e, err := scope.Require(spec.Name, ents, st)
	if err != nil {
		c.noteErr(spec, err)
		return
	}
	if e.Kind != scope.CLASS {
		c.errorf(NOTE_TYPE_NOT_A_TYPE, spec, "%v does not name a type", spec.Name)
		return
	}

	return e.Type.Qualified(spec.Const, spec.Volatile), true
}

// derive applies declarator operations, listed from the name outward,
// to base type t.
func (c *compiler) derive(t *types.Type, ops []ast.DeclaratorOp, node ast.Node, s *scope.Scope) (_ *types.Type, ok bool) {
	for n := len(ops) - 1; n >= 0; n-- {
		op := ops[n]
		switch op.Kind {
		case ast.POINTER:
			if t.IsReference() {
				c.errorf(NOTE_DECL_UNSUPPORTED, node, "pointer to reference")
				return
			}
			t = types.PointerTo(t).Qualified(op.Const, op.Volatile)
		case ast.REFERENCE:
			if t.IsReference() || t.IsVoid() {
				c.errorf(NOTE_DECL_UNSUPPORTED, node, "reference to %v", t)
				return
			}
			t = types.ReferenceTo(t)
		case ast.ARRAY:
			if !t.IsObject() || (t.IsArray() && t.Length < 0) {
				c.errorf(NOTE_DECL_UNSUPPORTED, node, "array of %v", t)
				return
			}
			length := -1
			if op.Length != nil {
				v, isConst := constant(op.Length)
				if !isConst || v <= 0 {
					c.errorf(NOTE_DECL_ARRAY_LENGTH, node, "array length must be a positive constant")
					return
				}
				length = int(v)
			}
			t = types.ArrayOf(t, length)
		case ast.FUNCTION:
			if t.IsArray() || t.IsFunction() {
				c.errorf(NOTE_DECL_UNSUPPORTED, node, "function returning %v", t)
				return
			}
			params, paramsOk := c.paramTypes(op.Params, s)
			if !paramsOk {
				return
			}
			t = types.FunctionOf(t, params, op.ConstThis)
		}
	}
	return t, true
}

// paramTypes adjusts array parameters to pointers. A lone unnamed void
// parameter declares none.
func (c *compiler) paramTypes(params []*ast.Param, s *scope.Scope) (ts []*types.Type, ok bool) {
	if len(params) == 1 {
		p := params[0]
		if p.Spec.Name == "void" && len(p.Declarator.Ops) == 0 && p.Declarator.Name == "" {
			return nil, true
		}
	}

	for _, p := range params {
		pt, found := c.declaredType(p.Spec, &p.Declarator, s)
		if !found {
			return
		}
		switch {
		case pt.IsArray():
			pt = types.PointerTo(pt.Elem)
		case pt.IsVoid():
			c.errorf(NOTE_DECL_UNSUPPORTED, p, "parameter of type void")
			return
		}
		ts = append(ts, pt)
	}
	return ts, true
}

// constant evaluates an integral constant expression of literals.
func constant(x ast.Expr) (v int64, ok bool) {
	switch x := x.(type) {
	case *ast.IntLit:
		return x.Value, true
	case *ast.CharLit:
		return int64(x.Value), true
	case *ast.BoolLit:
		if x.Value {
			return 1, true
		}
		return 0, true
	case *ast.Unary:
		a, aok := constant(x.X)
		if !aok {
			return
		}
		switch x.Op {
		case "-":
			return -a, true
		case "+":
			return a, true
		}
	case *ast.Binary:
		a, aok := constant(x.X)
		b, bok := constant(x.Y)
		if !aok || !bok {
			return
		}
		switch x.Op {
		case "+":
			return a + b, true
		case "-":
			return a - b, true
		case "*":
			return a * b, true
		case "/", "%":
			if b == 0 {
				return
			}
			if x.Op == "/" {
				return a / b, true
			}
			return a % b, true
		}
	}
	return
}
