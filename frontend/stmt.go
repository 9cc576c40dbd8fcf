package frontend

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jamesjuett/lobster-sub011/ast"
)

func (c *converter) block(n *sitter.Node) *ast.Block {
	b := &ast.Block{Span: c.span(n)}
	for _, child := range children(n) {
		b.Stmts = append(b.Stmts, c.stmt(child))
	}
	return b
}

// condition unwraps `( x )` and condition clauses.
func (c *converter) condition(n *sitter.Node) ast.Expr {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "condition_clause":
		if v := n.ChildByFieldName("value"); v != nil {
			return c.expr(v)
		}
		inner := children(n)
		if len(inner) != 1 {
			c.unsupported(n)
			return nil
		}
		return c.expr(inner[0])
	case "parenthesized_expression":
		inner := children(n)
		if len(inner) != 1 {
			c.unsupported(n)
			return nil
		}
		return c.expr(inner[0])
	}
	return c.expr(n)
}

// stmt never returns nil; unsupported statements become null statements.
func (c *converter) stmt(n *sitter.Node) ast.Stmt {
	if n == nil {
		return &ast.Null{}
	}
	span := c.span(n)

	switch n.Type() {
	case "compound_statement":
		return c.block(n)
	case "expression_statement":
		inner := children(n)
		if len(inner) == 0 {
			return &ast.Null{Span: span}
		}
		return &ast.ExprStmt{Span: span, X: c.expr(inner[0])}
	case "declaration":
		class, decl := c.declaration(n)
		if class != nil {
			c.unsupported(n)
		}
		if decl == nil {
			return &ast.Null{Span: span}
		}
		return &ast.DeclStmt{Span: span, Decl: decl}
	case "if_statement":
		s := &ast.If{Span: span, Cond: c.condition(n.ChildByFieldName("condition"))}
		s.Then = c.stmt(n.ChildByFieldName("consequence"))
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				if inner := children(alt); len(inner) > 0 {
					s.Else = c.stmt(inner[0])
				}
			} else {
				s.Else = c.stmt(alt)
			}
		}
		return s
	case "while_statement":
		return &ast.While{
			Span: span,
			Cond: c.condition(n.ChildByFieldName("condition")),
			Body: c.stmt(n.ChildByFieldName("body")),
		}
	case "do_statement":
		return &ast.DoWhile{
			Span: span,
			Body: c.stmt(n.ChildByFieldName("body")),
			Cond: c.condition(n.ChildByFieldName("condition")),
		}
	case "for_statement":
		s := &ast.For{Span: span}
		if init := n.ChildByFieldName("initializer"); init != nil {
			if init.Type() == "declaration" {
				s.Init = c.stmt(init)
			} else {
				s.Init = &ast.ExprStmt{Span: c.span(init), X: c.expr(init)}
			}
		}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			s.Cond = c.condition(cond)
		}
		if post := n.ChildByFieldName("update"); post != nil {
			s.Post = c.expr(post)
		}
		s.Body = c.stmt(n.ChildByFieldName("body"))
		return s
	case "return_statement":
		s := &ast.Return{Span: span}
		if inner := children(n); len(inner) > 0 {
			s.X = c.expr(inner[0])
		}
		return s
	case "break_statement":
		return &ast.Break{Span: span}
	case "continue_statement":
		return &ast.Continue{Span: span}
	}

	c.unsupported(n)
	return &ast.Null{Span: span}
}
