package construct

import (
	"strings"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/conv"
	"github.com/jamesjuett/lobster-sub011/scope"
	"github.com/jamesjuett/lobster-sub011/types"
	"github.com/jamesjuett/lobster-sub011/value"
)

func mkexpr(node ast.Node, t *types.Type, cat types.Category) expr {
	return expr{base: base{span: node.Pos()}, typ: t, cat: cat}
}

func isNull(x Expression) bool {
	lit, ok := x.(*literal)
	return ok && lit.null
}

// compileExpr returns nil after noting an error.
func (c *compiler) compileExpr(x ast.Expr, ctx context) Expression {
	switch x := x.(type) {
	case *ast.IntLit:
		return &literal{expr: mkexpr(x, types.Int, types.PRVALUE), v: value.New(types.Int, x.Value), null: x.Value == 0}
	case *ast.FloatLit:
		t := types.Double
		if x.Float {
			t = types.Float
		}
		return &literal{expr: mkexpr(x, t, types.PRVALUE), v: value.New(t, x.Value)}
	case *ast.CharLit:
		return &literal{expr: mkexpr(x, types.Char, types.PRVALUE), v: value.New(types.Char, int64(x.Value))}
	case *ast.BoolLit:
		return &literal{expr: mkexpr(x, types.Bool, types.PRVALUE), v: value.New(types.Bool, x.Value)}
	case *ast.NullPtr:
		return &literal{expr: mkexpr(x, types.Int, types.PRVALUE), v: value.New(types.Int, 0), null: true}
	case *ast.StringLit:
		t := types.ArrayOf(types.Char.Qualified(true, false), len(x.Value)+1)
		return &stringLiteral{expr: mkexpr(x, t, types.LVALUE), text: x.Value}
	case *ast.Ident:
		return c.compileIdent(x, ctx)
	case *ast.This:
		if ctx.fn == nil || !ctx.fn.IsMember() {
			c.errorf(NOTE_EXPR_THIS_OUTSIDE, x, "this used outside a member function")
			return nil
		}
		return &thisPointer{expr: mkexpr(x, ctx.fn.thisType().Unqualified(), types.PRVALUE)}
	case *ast.Binary:
		return c.compileBinary(x, ctx)
	case *ast.Assign:
		return c.compileAssign(x, ctx)
	case *ast.Unary:
		return c.compileUnary(x, ctx)
	case *ast.Postfix:
		return c.compilePostfix(x, ctx)
	case *ast.Call:
		return c.compileCall(x, ctx)
	case *ast.Subscript:
		return c.compileSubscript(x, ctx)
	case *ast.Member:
		return c.compileMember(x, ctx)
	case *ast.New:
		return c.compileNew(x, ctx)
	case *ast.Delete:
		return c.compileDelete(x, ctx)
	case *ast.Conditional:
		return c.compileConditional(x, ctx)
	}

	c.errorf(NOTE_EXPR_UNSUPPORTED, x, "unsupported expression")
	return nil
}

func (c *compiler) compileIdent(x *ast.Ident, ctx context) Expression {
	ents, st := c.lookup(ctx.scope, x.Qualified, x.Name, scope.Options{})
	e, err := scope.Require(x.Name, ents, st)
	if err != nil {
		c.noteErr(x, err)
		return nil
	}

	t := e.Type
	switch e.Kind {
	case scope.AUTO_OBJECT, scope.STATIC_OBJECT:
		if e.Extern {
			c.program.uses = append(c.program.uses, use{entity: e, span: x.Span})
		}
	case scope.REFERENCE:
		t = t.Elem
	case scope.MEMBER_OBJECT:
		if ctx.fn == nil || !ctx.fn.IsMember() {
			c.errorf(NOTE_EXPR_THIS_OUTSIDE, x, "member %v used outside a member function", x.Name)
			return nil
		}
		if ctx.fn.Entity.Type.ThisConst {
			t = t.Qualified(true, t.Volatile)
		}
	case scope.FUNCTION, scope.MEMBER_FUNCTION:
		c.errorf(NOTE_EXPR_UNSUPPORTED, x, "function %v can only be called", x.Name)
		return nil
	default:
		c.errorf(NOTE_EXPR_UNSUPPORTED, x, "%v is not an object", x.Name)
		return nil
	}

	return &identifier{expr: mkexpr(x, t, types.LVALUE), entity: e}
}

// rvalue applies the lvalue transformation to x.
func (c *compiler) rvalue(x Expression) Expression {
	t := x.Type()
	switch {
	case t.IsArray():
		return &arrayToPointer{expr: mkexpr(x, types.PointerTo(t.Elem), types.PRVALUE), subs: []Expression{x}}
	case x.Category() == types.LVALUE:
		return &lvalueToRvalue{expr: mkexpr(x, t.Unqualified(), types.PRVALUE), subs: []Expression{x}}
	}
	return x
}

// convertTo converts x to a prvalue of type t, or binds a reference when t
// is one.
func (c *compiler) convertTo(x Expression, t *types.Type, node ast.Node) Expression {
	if t.IsReference() {
		return c.bindReference(x, t, node)
	}

	from := x.Type()
	if t.IsClass() || from.IsClass() {
		if !from.IsClass() || !t.IsClass() || !(from.Class.Same(t.Class) || from.Class.IsDerivedFrom(t.Class)) {
			c.errorf(NOTE_TYPE_CONVERSION, node, "cannot convert %v to %v", from, t)
			return nil
		}
		if !from.Class.Same(t.Class) {
			if x.Category() == types.PRVALUE {
				x = &materialize{expr: mkexpr(x, from, types.LVALUE), subs: []Expression{x}}
			}
			x = &baseSubobject{expr: mkexpr(x, t.Qualified(from.Const, from.Volatile), types.LVALUE), subs: []Expression{x}}
		}
		return c.rvalue(x)
	}

	seq, ok := conv.Standard(from, x.Category(), t, isNull(x))
	if !ok {
		c.errorf(NOTE_TYPE_CONVERSION, node, "cannot convert %v to %v", from, t)
		return nil
	}

	steps := seq.Steps
	if len(steps) > 0 && (steps[0].Kind == conv.LVALUE_TO_RVALUE || steps[0].Kind == conv.ARRAY_TO_POINTER) {
		x = c.rvalue(x)
		steps = steps[1:]
	}
	if len(steps) > 0 {
		x = &standardConversion{expr: mkexpr(x, t.Unqualified(), types.PRVALUE), subs: []Expression{x}, steps: steps}
	}
	return x
}

// bindReference yields the object a reference of type t binds to. A
// const reference may bind to a converted temporary.
func (c *compiler) bindReference(x Expression, t *types.Type, node ast.Node) Expression {
	target := t.Elem
	from := x.Type()

	if x.Category() == types.LVALUE && types.ReferenceCompatible(from, target) {
		if from.IsClass() && !from.Class.Same(target.Class) {
			return &baseSubobject{expr: mkexpr(x, target, types.LVALUE), subs: []Expression{x}}
		}
		return x
	}

	if !target.Const || target.Volatile {
		if x.Category() == types.LVALUE {
			c.errorf(NOTE_TYPE_CONVERSION, node, "cannot bind %v to an lvalue of type %v", t, from)
		} else {
			c.errorf(NOTE_TYPE_CONVERSION, node, "cannot bind %v to a temporary", t)
		}
		return nil
	}

	v := c.convertTo(x, target.Unqualified(), node)
	if v == nil {
		return nil
	}
	return &materialize{expr: mkexpr(x, target, types.LVALUE), subs: []Expression{v}}
}

// condition converts x to bool.
func (c *compiler) condition(x ast.Expr, ctx context) Expression {
	e := c.compileExpr(x, ctx)
	if e == nil {
		return nil
	}
	return c.convertTo(e, types.Bool, x)
}

// operandValue compiles x as an arithmetic or pointer prvalue.
func (c *compiler) operandValue(x ast.Expr, ctx context) Expression {
	e := c.compileExpr(x, ctx)
	if e == nil {
		return nil
	}
	return c.scalar(e, x)
}

func (c *compiler) scalar(e Expression, node ast.Node) Expression {
	if t := e.Type(); t.IsClass() || t.Kind == types.OSTREAM || t.IsVoid() {
		c.errorf(NOTE_EXPR_OPERANDS, node, "invalid operand of type %v", t)
		return nil
	}
	return c.rvalue(e)
}

func (c *compiler) compileBinary(x *ast.Binary, ctx context) Expression {
	switch x.Op {
	case "&&", "||":
		l, r := c.condition(x.X, ctx), c.condition(x.Y, ctx)
		if l == nil || r == nil {
			return nil
		}
		return &logical{expr: mkexpr(x, types.Bool, types.PRVALUE), op: x.Op, x: l, y: r}
	}

	left := c.compileExpr(x.X, ctx)
	if left == nil {
		return nil
	}
	if x.Op == "<<" && left.Type().Kind == types.OSTREAM {
		return c.compileOutput(x, left, ctx)
	}

	l, r := c.scalar(left, x.X), c.operandValue(x.Y, ctx)
	if l == nil || r == nil {
		return nil
	}
	lt, rt := l.Type(), r.Type()

	invalid := func() Expression {
		c.errorf(NOTE_EXPR_OPERANDS, x, "invalid operands to %v: %v and %v", x.Op, lt, rt)
		return nil
	}

	switch x.Op {
	case "+", "-":
		switch {
		case lt.IsPointer() && rt.IsIntegral():
			return c.pointerAdd(x, l, r, lt)
		case x.Op == "+" && lt.IsIntegral() && rt.IsPointer():
			return c.pointerAdd(x, r, l, rt)
		case x.Op == "-" && lt.IsPointer() && rt.IsPointer():
			if !types.SameType(lt.Elem.Unqualified(), rt.Elem.Unqualified()) || !lt.Elem.IsComplete() {
				return invalid()
			}
			return &binary{expr: mkexpr(x, types.Int, types.PRVALUE), op: x.Op, class: OP_POINTER_DIFF, subs: []Expression{l, r}}
		}
		fallthrough
	case "*", "/":
		if !lt.IsArithmetic() || !rt.IsArithmetic() {
			return invalid()
		}
		return c.arithmetic(x, l, r, conv.UsualArithmetic(lt, rt))
	case "%", "&", "|", "^":
		if !lt.IsIntegral() || !rt.IsIntegral() {
			return invalid()
		}
		return c.arithmetic(x, l, r, types.Int)
	case "<<", ">>":
		if !lt.IsIntegral() || !rt.IsIntegral() {
			return invalid()
		}
		return c.arithmetic(x, l, r, types.Int)
	case "==", "!=", "<", "<=", ">", ">=":
		var common *types.Type
		switch {
		case lt.IsArithmetic() && rt.IsArithmetic():
			common = conv.UsualArithmetic(lt, rt)
		case lt.IsPointer() && (rt.IsPointer() || isNull(r)):
			common = lt.Unqualified()
		case rt.IsPointer() && isNull(l):
			common = rt.Unqualified()
		default:
			return invalid()
		}
		if lt.IsPointer() && rt.IsPointer() {
			if types.IsCvConvertible(rt, lt) || rt.Elem.IsVoid() {
				common = lt.Unqualified()
			} else if types.IsCvConvertible(lt, rt) {
				common = rt.Unqualified()
			} else if !types.Similar(lt.Unqualified(), rt.Unqualified()) {
				return invalid()
			}
		}
		lc, rc := c.convertTo(l, common, x), c.convertTo(r, common, x)
		if lc == nil || rc == nil {
			return nil
		}
		return &binary{expr: mkexpr(x, types.Bool, types.PRVALUE), op: x.Op, class: OP_COMPARE, subs: []Expression{lc, rc}}
	}

	c.errorf(NOTE_EXPR_UNSUPPORTED, x, "unsupported operator %v", x.Op)
	return nil
}

func (c *compiler) arithmetic(x *ast.Binary, l, r Expression, t *types.Type) Expression {
	lc, rc := c.convertTo(l, t, x), c.convertTo(r, t, x)
	if lc == nil || rc == nil {
		return nil
	}
	return &binary{expr: mkexpr(x, t, types.PRVALUE), op: x.Op, class: OP_ARITHMETIC, subs: []Expression{lc, rc}}
}

func (c *compiler) pointerAdd(x *ast.Binary, p, n Expression, pt *types.Type) Expression {
	if !pt.Elem.IsComplete() {
		c.errorf(NOTE_EXPR_OPERANDS, x, "arithmetic on pointer to incomplete type %v", pt.Elem)
		return nil
	}
	nc := c.convertTo(n, types.Int, x)
	if nc == nil {
		return nil
	}
	return &binary{expr: mkexpr(x, pt.Unqualified(), types.PRVALUE), op: x.Op, class: OP_POINTER_ADD, subs: []Expression{p, nc}}
}

func (c *compiler) compileOutput(x *ast.Binary, stream Expression, ctx context) Expression {
	if stream.Category() != types.LVALUE {
		c.errorf(NOTE_EXPR_OPERANDS, x, "output to a stream prvalue")
		return nil
	}

	v := c.operandValue(x.Y, ctx)
	if v == nil {
		return nil
	}
	t := v.Type()

	str := t.IsPointer() && t.Elem.Kind == types.CHAR
	return &output{expr: mkexpr(x, types.Ostream, types.LVALUE), str: str, subs: []Expression{stream, v}}
}

// modifiable compiles x as an lvalue that may be written.
func (c *compiler) modifiable(x ast.Expr, op string, ctx context) Expression {
	e := c.compileExpr(x, ctx)
	if e == nil {
		return nil
	}
	t := e.Type()
	switch {
	case e.Category() != types.LVALUE:
		c.errorf(NOTE_EXPR_LVALUE_REQUIRED, x, "%v requires an lvalue", op)
		return nil
	case t.Const:
		c.errorf(NOTE_EXPR_CONST_ASSIGN, x, "%v of const %v", op, t)
		return nil
	case t.IsArray() || t.Kind == types.OSTREAM:
		c.errorf(NOTE_EXPR_OPERANDS, x, "%v of %v", op, t)
		return nil
	}
	return e
}

func (c *compiler) compileAssign(x *ast.Assign, ctx context) Expression {
	lhs := c.modifiable(x.X, "assignment", ctx)
	rhs := c.compileExpr(x.Y, ctx)
	if lhs == nil || rhs == nil {
		return nil
	}
	t := lhs.Type()

	a := &assign{expr: mkexpr(x, t, types.LVALUE), op: "="}
	if x.Op == "=" {
		r := c.convertTo(rhs, t.Unqualified(), x)
		if r == nil {
			return nil
		}
		a.subs = []Expression{lhs, r}
		return a
	}

	a.op = strings.TrimSuffix(x.Op, "=")
	rt := rhs.Type()
	switch {
	case t.IsPointer() && (a.op == "+" || a.op == "-") && rt.IsIntegral():
		a.class = OP_POINTER_ADD
		a.opTyp = t.Unqualified()
		rhs = c.convertTo(rhs, types.Int, x)
	case !t.IsArithmetic() || !rt.IsArithmetic():
		c.errorf(NOTE_EXPR_OPERANDS, x, "invalid operands to %v: %v and %v", x.Op, t, rt)
		return nil
	case a.op == "+" || a.op == "-" || a.op == "*" || a.op == "/":
		a.opTyp = conv.UsualArithmetic(t, rt)
		rhs = c.convertTo(rhs, a.opTyp, x)
	default:
		if !t.IsIntegral() || !rt.IsIntegral() {
			c.errorf(NOTE_EXPR_OPERANDS, x, "invalid operands to %v: %v and %v", x.Op, t, rt)
			return nil
		}
		a.opTyp = types.Int
		rhs = c.convertTo(rhs, types.Int, x)
	}
	if rhs == nil {
		return nil
	}

	a.subs = []Expression{lhs, rhs}
	return a
}

func (c *compiler) compileUnary(x *ast.Unary, ctx context) Expression {
	switch x.Op {
	case "-", "+", "~":
		v := c.operandValue(x.X, ctx)
		if v == nil {
			return nil
		}
		if !v.Type().IsArithmetic() || (x.Op == "~" && !v.Type().IsIntegral()) {
			c.errorf(NOTE_EXPR_OPERANDS, x, "invalid operand to unary %v: %v", x.Op, v.Type())
			return nil
		}
		t := conv.IntegralPromotion(v.Type())
		if v = c.convertTo(v, t, x); v == nil {
			return nil
		}
		return &unary{expr: mkexpr(x, t, types.PRVALUE), op: x.Op, subs: []Expression{v}}
	case "!":
		v := c.condition(x.X, ctx)
		if v == nil {
			return nil
		}
		return &unary{expr: mkexpr(x, types.Bool, types.PRVALUE), op: x.Op, subs: []Expression{v}}
	case "*":
		v := c.operandValue(x.X, ctx)
		if v == nil {
			return nil
		}
		return c.deref(x, v)
	case "&":
		e := c.compileExpr(x.X, ctx)
		if e == nil {
			return nil
		}
		if e.Category() != types.LVALUE {
			c.errorf(NOTE_EXPR_LVALUE_REQUIRED, x, "address of a prvalue")
			return nil
		}
		return &unary{expr: mkexpr(x, types.PointerTo(e.Type()), types.PRVALUE), op: x.Op, subs: []Expression{e}}
	case "++", "--":
		e := c.modifiable(x.X, x.Op, ctx)
		if e == nil || !c.steppable(x, e) {
			return nil
		}
		return &unary{expr: mkexpr(x, e.Type(), types.LVALUE), op: x.Op, subs: []Expression{e}}
	}

	c.errorf(NOTE_EXPR_UNSUPPORTED, x, "unsupported operator %v", x.Op)
	return nil
}

// deref designates the object pointer prvalue v points to.
func (c *compiler) deref(node ast.Node, v Expression) Expression {
	t := v.Type()
	if !t.IsPointer() || !t.Elem.IsObject() || !t.Elem.IsComplete() {
		c.errorf(NOTE_EXPR_OPERANDS, node, "cannot dereference %v", t)
		return nil
	}
	return &unary{expr: mkexpr(node, t.Elem, types.LVALUE), op: "*", subs: []Expression{v}}
}

func (c *compiler) steppable(x ast.Node, e Expression) bool {
	t := e.Type()
	if t.IsArithmetic() || (t.IsPointer() && t.Elem.IsComplete()) {
		return true
	}
	c.errorf(NOTE_EXPR_OPERANDS, x, "cannot increment or decrement %v", t)
	return false
}

func (c *compiler) compilePostfix(x *ast.Postfix, ctx context) Expression {
	e := c.modifiable(x.X, x.Op, ctx)
	if e == nil || !c.steppable(x, e) {
		return nil
	}
	return &postfix{expr: mkexpr(x, e.Type().Unqualified(), types.PRVALUE), op: x.Op, subs: []Expression{e}}
}

func (c *compiler) compileSubscript(x *ast.Subscript, ctx context) Expression {
	p, n := c.operandValue(x.X, ctx), c.operandValue(x.Index, ctx)
	if p == nil || n == nil {
		return nil
	}
	if !p.Type().IsPointer() && n.Type().IsPointer() {
		p, n = n, p
	}

	t := p.Type()
	if !t.IsPointer() || !t.Elem.IsObject() || !t.Elem.IsComplete() || !n.Type().IsIntegral() {
		c.errorf(NOTE_EXPR_OPERANDS, x, "invalid subscript of %v by %v", t, n.Type())
		return nil
	}
	if n = c.convertTo(n, types.Int, x); n == nil {
		return nil
	}
	return &subscript{expr: mkexpr(x, t.Elem, types.LVALUE), subs: []Expression{p, n}}
}

// object compiles the class operand of `.` or `->`. The result is an
// lvalue of class type.
func (c *compiler) object(x ast.Expr, arrow bool, ctx context) (obj Expression, t *types.Type) {
	obj = c.compileExpr(x, ctx)
	if obj == nil {
		return
	}

	if arrow {
		if obj = c.rvalue(obj); !obj.Type().IsPointer() || !obj.Type().Elem.IsClass() {
			c.errorf(NOTE_EXPR_NOT_A_MEMBER, x, "%v is not a pointer to a class", obj.Type())
			return nil, nil
		}
		if obj = c.deref(x, obj); obj == nil {
			return
		}
	}

	t = obj.Type()
	switch {
	case !t.IsClass():
		c.errorf(NOTE_EXPR_NOT_A_MEMBER, x, "%v is not a class object", t)
		return nil, nil
	case !t.IsComplete():
		c.errorf(NOTE_TYPE_INCOMPLETE, x, "%v is incomplete", t)
		return nil, nil
	case obj.Category() == types.PRVALUE:
		obj = &materialize{expr: mkexpr(x, t, types.LVALUE), subs: []Expression{obj}}
	}
	return
}

// memberLookup finds a member of the class of t.
func (c *compiler) memberLookup(node ast.Node, t *types.Type, path []string, name string, opts scope.Options) (ents []*scope.Entity, st scope.Status) {
	cs, ok := c.program.ClassScope(t.Class)
	if !ok {
		return nil, scope.NOT_FOUND
	}
	if len(path) > 0 {
		at, found := c.findScope(cs.Parent, path)
		if !found || at.Kind != scope.CLASS_SCOPE || !(at.Class.Same(t.Class) || t.Class.IsDerivedFrom(at.Class)) {
			return nil, scope.NOT_FOUND
		}
		cs = at
	}
	return cs.MemberLookup(name, opts)
}

func (c *compiler) compileMember(x *ast.Member, ctx context) Expression {
	obj, t := c.object(x.X, x.Arrow, ctx)
	if obj == nil {
		return nil
	}

	ents, st := c.memberLookup(x, t, x.Qualified, x.Name, scope.Options{})
	e, err := scope.Require(x.Name, ents, st)
	if err != nil {
		c.noteErr(x, err)
		return nil
	}
	if e.Kind != scope.MEMBER_OBJECT {
		c.errorf(NOTE_EXPR_UNSUPPORTED, x, "member function %v can only be called", x.Name)
		return nil
	}

	mt := e.Type
	if t.Const {
		mt = mt.Qualified(true, mt.Volatile)
	}
	return &member{expr: mkexpr(x, mt, types.LVALUE), entity: e, subs: []Expression{obj}}
}

func (c *compiler) compileCall(x *ast.Call, ctx context) Expression {
	var args []Expression
	var sargs []scope.Arg
	for _, a := range x.Args {
		e := c.compileExpr(a, ctx)
		if e == nil {
			return nil
		}
		args = append(args, e)
		sargs = append(sargs, scope.Arg{Type: e.Type(), Category: e.Category(), Null: isNull(e)})
	}

	opts := scope.Options{Call: true, Args: sargs}

	var receiver Expression
	var name string
	var ents []*scope.Entity
	var st scope.Status
	qualified := false

	switch fn := x.Fn.(type) {
	case *ast.Ident:
		name = fn.Name
		qualified = len(fn.Qualified) > 0
		if ctx.fn != nil && ctx.fn.IsMember() {
			opts.ThisConst = ctx.fn.Entity.Type.ThisConst
		}
		ents, st = c.lookup(ctx.scope, fn.Qualified, fn.Name, opts)
	case *ast.Member:
		var t *types.Type
		if receiver, t = c.object(fn.X, fn.Arrow, ctx); receiver == nil {
			return nil
		}
		name = fn.Name
		qualified = len(fn.Qualified) > 0
		opts.ThisConst = t.Const
		ents, st = c.memberLookup(fn, t, fn.Qualified, fn.Name, opts)
	default:
		c.errorf(NOTE_EXPR_NOT_CALLABLE, x, "expression is not callable")
		return nil
	}

	e, err := scope.Require(name, ents, st)
	if err != nil {
		c.noteErr(x, err)
		return nil
	}
	if !e.Kind.IsFunction() {
		c.errorf(NOTE_EXPR_NOT_CALLABLE, x, "%v is not a function", name)
		return nil
	}

	ft := e.Type
	var subs []Expression
	if e.Kind == scope.MEMBER_FUNCTION {
		if receiver == nil {
			if ctx.fn == nil || !ctx.fn.IsMember() {
				c.errorf(NOTE_EXPR_THIS_OUTSIDE, x, "member function %v called without an object", name)
				return nil
			}
			self := types.ClassType(ctx.fn.Class).Qualified(ctx.fn.Entity.Type.ThisConst, false)
			receiver = &thisObject{expr: mkexpr(x, self, types.LVALUE)}
		}
		if receiver.Type().Const && !ft.ThisConst {
			c.errorf(NOTE_EXPR_NON_CONST_MEMBER, x, "non-const member function %v called on a const object", name)
			return nil
		}
		subs = append(subs, receiver)
	} else if receiver != nil {
		c.errorf(NOTE_EXPR_UNSUPPORTED, x, "%v is not a member function", name)
		return nil
	}

	for n, a := range args {
		p := c.convertTo(a, ft.Params[n], x.Args[n])
		if p == nil {
			return nil
		}
		subs = append(subs, p)
	}

	c.program.uses = append(c.program.uses, use{entity: e, span: x.Span})

	rt, cat := ft.Return, types.PRVALUE
	if rt.IsReference() {
		rt, cat = rt.Elem, types.LVALUE
	}
	return &call{
		expr:    mkexpr(x, rt, cat),
		target:  e,
		member:  e.Kind == scope.MEMBER_FUNCTION,
		virtual: !qualified,
		subs:    subs,
	}
}

func (c *compiler) compileNew(x *ast.New, ctx context) Expression {
	t, ok := c.baseType(x.Spec, ctx.scope)
	if !ok {
		return nil
	}
	if t, ok = c.derive(t, x.Ops, x, ctx.scope); !ok {
		return nil
	}
	if !t.IsObject() || !t.IsComplete() {
		c.errorf(NOTE_TYPE_INCOMPLETE, x, "new of incomplete type %v", t)
		return nil
	}

	n := &newExpr{expr: mkexpr(x, types.PointerTo(t), types.PRVALUE), elem: t}
	if x.ArrayLen != nil {
		l := c.operandValue(x.ArrayLen, ctx)
		if l == nil {
			return nil
		}
		if l = c.convertTo(l, types.Int, x.ArrayLen); l == nil {
			return nil
		}
		n.array = true
		n.length = l
		n.subs = append(n.subs, l)
	}

	if in := x.Init; in != nil {
		n.list = in.Kind == ast.LIST_INIT
		n.zero = len(in.Args) == 0
		if !n.array && len(in.Args) > 1 {
			c.errorf(NOTE_DECL_INIT_COUNT, in, "too many initializers for new %v", t)
			return nil
		}
		for _, a := range in.Args {
			e := c.compileExpr(a, ctx)
			if e == nil {
				return nil
			}
			if e = c.convertTo(e, t.Unqualified(), a); e == nil {
				return nil
			}
			n.subs = append(n.subs, e)
		}
		if n.array && !n.list && !n.zero {
			c.errorf(NOTE_DECL_UNSUPPORTED, in, "new[] initializer must be a brace list")
			return nil
		}
	}

	return n
}

func (c *compiler) compileDelete(x *ast.Delete, ctx context) Expression {
	p := c.operandValue(x.X, ctx)
	if p == nil {
		return nil
	}
	if t := p.Type(); !t.IsPointer() || !t.Elem.IsObject() {
		c.errorf(NOTE_EXPR_OPERANDS, x, "delete of %v", t)
		return nil
	}
	return &deleteExpr{expr: mkexpr(x, types.Void, types.PRVALUE), array: x.Array, subs: []Expression{p}}
}

func (c *compiler) compileConditional(x *ast.Conditional, ctx context) Expression {
	cond := c.condition(x.Cond, ctx)
	then, els := c.compileExpr(x.Then, ctx), c.compileExpr(x.Else, ctx)
	if cond == nil || then == nil || els == nil {
		return nil
	}

	tt, et := then.Type(), els.Type()
	if then.Category() == types.LVALUE && els.Category() == types.LVALUE && types.SameType(tt, et) {
		return &conditional{expr: mkexpr(x, tt, types.LVALUE), cond: cond, then: then, els: els}
	}

	then, els = c.rvalue(then), c.rvalue(els)
	tt, et = then.Type(), els.Type()

	var common *types.Type
	switch {
	case tt.IsArithmetic() && et.IsArithmetic():
		common = conv.UsualArithmetic(tt, et)
	case tt.IsPointer() && (isNull(els) || types.IsCvConvertible(et, tt)):
		common = tt
	case et.IsPointer() && (isNull(then) || types.IsCvConvertible(tt, et)):
		common = et
	case types.SameType(tt.Unqualified(), et.Unqualified()):
		common = tt.Unqualified()
	default:
		c.errorf(NOTE_EXPR_OPERANDS, x, "conditional branches have types %v and %v", tt, et)
		return nil
	}

	then, els = c.convertTo(then, common, x.Then), c.convertTo(els, common, x.Else)
	if then == nil || els == nil {
		return nil
	}
	return &conditional{expr: mkexpr(x, common, types.PRVALUE), cond: cond, then: then, els: els}
}
