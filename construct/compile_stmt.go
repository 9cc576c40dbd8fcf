package construct

import (
	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/scope"
)

// nested returns ctx inside a new block scope.
func (c *compiler) nested(ctx context) context {
	ctx.scope = c.arena.NewScope(scope.BLOCK_SCOPE, "", ctx.scope)
	return ctx
}

// compileStmts compiles the statements of b in the scope of ctx.
func (c *compiler) compileStmts(b *ast.Block, ctx context) *block {
	out := &block{base: base{span: b.Span}}
	for _, s := range b.Stmts {
		out.stmts = append(out.stmts, c.compileStmt(s, ctx))
	}
	return out
}

// compileStmt never fails; a statement with errors compiles to a null
// statement.
func (c *compiler) compileStmt(s ast.Stmt, ctx context) Construct {
	null := &nullStmt{base: base{span: s.Pos()}}

	switch s := s.(type) {
	case *ast.Block:
		return c.compileStmts(s, c.nested(ctx))
	case *ast.ExprStmt:
		x := c.compileExpr(s.X, ctx)
		if x == nil {
			return null
		}
		return &exprStmt{base: base{span: s.Span}, subs: []Expression{x}}
	case *ast.DeclStmt:
		return &declStmt{base: base{span: s.Span}, inits: c.declareObjects(s.Decl, ctx)}
	case *ast.If:
		cond := c.condition(s.Cond, ctx)
		st := &ifStmt{base: base{span: s.Span}, cond: cond}
		st.then = c.compileStmt(s.Then, c.nested(ctx))
		if s.Else != nil {
			st.els = c.compileStmt(s.Else, c.nested(ctx))
		}
		if cond == nil {
			return null
		}
		return st
	case *ast.While:
		l := &loop{base: base{span: s.Span}, cond: c.condition(s.Cond, ctx)}
		inner := c.nested(ctx)
		inner.loop = l
		l.body = c.compileStmt(s.Body, inner)
		if l.cond == nil {
			return null
		}
		return l
	case *ast.DoWhile:
		l := &loop{base: base{span: s.Span}, doLoop: true}
		inner := c.nested(ctx)
		inner.loop = l
		l.body = c.compileStmt(s.Body, inner)
		if l.cond = c.condition(s.Cond, ctx); l.cond == nil {
			return null
		}
		return l
	case *ast.For:
		return c.compileFor(s, ctx)
	case *ast.Return:
		return c.compileReturn(s, ctx)
	case *ast.Break:
		if ctx.loop == nil {
			c.errorf(NOTE_STMT_BREAK, s, "break outside a loop")
			return null
		}
		return &jump{base: base{span: s.Span}, target: ctx.loop, leave: true}
	case *ast.Continue:
		if ctx.loop == nil {
			c.errorf(NOTE_STMT_CONTINUE, s, "continue outside a loop")
			return null
		}
		return &jump{base: base{span: s.Span}, target: ctx.loop}
	case *ast.Null:
		return null
	}

	c.errorf(NOTE_DECL_UNSUPPORTED, s, "unsupported statement")
	return null
}

func (c *compiler) compileFor(s *ast.For, ctx context) Construct {
	outer := c.nested(ctx)
	l := &loop{base: base{span: s.Span}}
	ok := true

	if s.Init != nil {
		l.init = c.compileStmt(s.Init, outer)
	}
	if s.Cond != nil {
		l.cond = c.condition(s.Cond, outer)
		ok = l.cond != nil
	}
	if s.Post != nil {
		l.post = c.compileExpr(s.Post, outer)
		ok = ok && l.post != nil
	}

	inner := c.nested(outer)
	inner.loop = l
	l.body = c.compileStmt(s.Body, inner)

	if !ok {
		return &nullStmt{base: base{span: s.Span}}
	}
	return l
}

func (c *compiler) compileReturn(s *ast.Return, ctx context) Construct {
	r := &returnStmt{base: base{span: s.Span}}
	fn := ctx.fn
	if fn == nil {
		c.errorf(NOTE_STMT_RETURN, s, "return outside a function")
		return &nullStmt{base: base{span: s.Span}}
	}

	ret := fn.Return
	if s.X == nil {
		if !ret.IsVoid() {
			c.errorf(NOTE_STMT_RETURN, s, "%v must return a value of type %v", fn.Entity.Name, ret)
		}
		return r
	}

	x := c.compileExpr(s.X, ctx)
	if x == nil {
		return r
	}

	switch {
	case ret.IsVoid() && !x.Type().IsVoid():
		c.errorf(NOTE_STMT_RETURN, s, "%v returns void but a value of type %v is returned", fn.Entity.Name, x.Type())
		return r
	case ret.IsVoid():
	default:
		if x = c.convertTo(x, ret, s); x == nil {
			return r
		}
	}

	r.subs = []Expression{x}
	return r
}
