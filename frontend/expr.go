package frontend

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jamesjuett/lobster-sub011/ast"
)

func (c *converter) exprs(n *sitter.Node) (out []ast.Expr) {
	for _, child := range children(n) {
		out = append(out, c.expr(child))
	}
	return
}

func (c *converter) field(n *sitter.Node, name string) ast.Expr {
	child := n.ChildByFieldName(name)
	if child == nil {
		c.unsupported(n)
		return nil
	}
	return c.expr(child)
}

func (c *converter) operator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return c.text(op)
	}
	return ""
}

// expr returns nil for an unsupported expression, after reporting it.
func (c *converter) expr(n *sitter.Node) ast.Expr {
	span := c.span(n)

	switch n.Type() {
	case "number_literal":
		return c.number(n, span)
	case "char_literal":
		text := c.text(n)
		s, ok := unescape(strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'"))
		if !ok || len(s) != 1 {
			c.fail(n, ErrUnsupported, text)
			return nil
		}
		return &ast.CharLit{Span: span, Value: s[0]}
	case "string_literal":
		s, ok := c.str(n)
		if !ok {
			return nil
		}
		return &ast.StringLit{Span: span, Value: s}
	case "concatenated_string":
		var b strings.Builder
		for _, part := range children(n) {
			s, ok := c.str(part)
			if !ok {
				return nil
			}
			b.WriteString(s)
		}
		return &ast.StringLit{Span: span, Value: b.String()}
	case "true", "false":
		return &ast.BoolLit{Span: span, Value: n.Type() == "true"}
	case "null", "nullptr":
		return &ast.NullPtr{Span: span}
	case "identifier", "field_identifier":
		return &ast.Ident{Span: span, Name: c.text(n)}
	case "qualified_identifier":
		id := &ast.Ident{Span: span}
		id.Qualified, id.Name = c.qualified(n)
		return id
	case "this":
		return &ast.This{Span: span}
	case "parenthesized_expression":
		inner := children(n)
		if len(inner) != 1 {
			c.unsupported(n)
			return nil
		}
		return c.expr(inner[0])
	case "binary_expression":
		return &ast.Binary{Span: span, Op: c.operator(n), X: c.field(n, "left"), Y: c.field(n, "right")}
	case "assignment_expression":
		return &ast.Assign{Span: span, Op: c.operator(n), X: c.field(n, "left"), Y: c.field(n, "right")}
	case "unary_expression", "pointer_expression":
		return &ast.Unary{Span: span, Op: c.operator(n), X: c.field(n, "argument")}
	case "update_expression":
		op, arg := n.ChildByFieldName("operator"), n.ChildByFieldName("argument")
		if op == nil || arg == nil {
			c.unsupported(n)
			return nil
		}
		if op.StartByte() < arg.StartByte() {
			return &ast.Unary{Span: span, Op: c.text(op), X: c.expr(arg)}
		}
		return &ast.Postfix{Span: span, Op: c.text(op), X: c.expr(arg)}
	case "call_expression":
		return &ast.Call{Span: span, Fn: c.field(n, "function"), Args: c.exprs(n.ChildByFieldName("arguments"))}
	case "subscript_expression":
		x := &ast.Subscript{Span: span, X: c.field(n, "argument")}
		if index := n.ChildByFieldName("index"); index != nil {
			x.Index = c.expr(index)
		} else if indices := children(n.ChildByFieldName("indices")); len(indices) == 1 {
			x.Index = c.expr(indices[0])
		} else {
			c.unsupported(n)
			return nil
		}
		return x
	case "field_expression":
		x := &ast.Member{Span: span, X: c.field(n, "argument"), Arrow: c.operator(n) == "->"}
		name := n.ChildByFieldName("field")
		if name == nil {
			c.unsupported(n)
			return nil
		}
		x.Qualified, x.Name = c.qualified(name)
		return x
	case "conditional_expression":
		return &ast.Conditional{
			Span: span,
			Cond: c.field(n, "condition"),
			Then: c.field(n, "consequence"),
			Else: c.field(n, "alternative"),
		}
	case "new_expression":
		return c.newExpr(n, span)
	case "delete_expression":
		inner := children(n)
		if len(inner) != 1 {
			c.unsupported(n)
			return nil
		}
		return &ast.Delete{Span: span, Array: c.hasChild(n, "[", ""), X: c.expr(inner[0])}
	}

	c.unsupported(n)
	return nil
}

func (c *converter) newExpr(n *sitter.Node, span ast.Span) ast.Expr {
	x := &ast.New{Span: span}

	t := n.ChildByFieldName("type")
	if t == nil || n.ChildByFieldName("placement") != nil {
		c.unsupported(n)
		return nil
	}
	x.Spec.Span = c.span(t)
	switch t.Type() {
	case "qualified_identifier":
		x.Spec.Qualified, x.Spec.Name = c.qualified(t)
	default:
		x.Spec.Name = strings.Join(strings.Fields(c.text(t)), " ")
	}

	if d := n.ChildByFieldName("declarator"); d != nil {
		length := d.ChildByFieldName("length")
		if length == nil || d.ChildByFieldName("declarator") != nil {
			c.unsupported(d)
			return nil
		}
		x.ArrayLen = c.expr(length)
	}

	if args := n.ChildByFieldName("arguments"); args != nil {
		x.Init = c.initializer(args)
	}
	return x
}

// number converts an integer or floating literal, ignoring suffixes.
func (c *converter) number(n *sitter.Node, span ast.Span) ast.Expr {
	text := strings.ReplaceAll(c.text(n), "'", "")
	lower := strings.ToLower(text)
	hex := strings.HasPrefix(lower, "0x")

	if !hex && strings.ContainsAny(lower, ".e") || !hex && strings.HasSuffix(lower, "f") {
		float := strings.HasSuffix(lower, "f")
		v, err := strconv.ParseFloat(strings.TrimRight(lower, "fl"), 64)
		if err != nil {
			c.fail(n, ErrUnsupported, text)
			return nil
		}
		return &ast.FloatLit{Span: span, Value: v, Float: float}
	}

	digits := strings.TrimRight(lower, "ul")
	if len(digits) > 1 && digits[0] == '0' && !hex && !strings.HasPrefix(digits, "0b") {
		digits = "0o" + digits[1:]
	}
	v, err := strconv.ParseInt(digits, 0, 64)
	if err != nil {
		c.fail(n, ErrUnsupported, text)
		return nil
	}
	return &ast.IntLit{Span: span, Value: v}
}

// str decodes a string literal node.
func (c *converter) str(n *sitter.Node) (s string, ok bool) {
	text := c.text(n)
	if n.Type() != "string_literal" || !strings.HasPrefix(text, `"`) || !strings.HasSuffix(text, `"`) || len(text) < 2 {
		c.fail(n, ErrUnsupported, text)
		return
	}
	if s, ok = unescape(text[1 : len(text)-1]); !ok {
		c.fail(n, ErrUnsupported, text)
	}
	return
}

// unescape decodes C escape sequences.
func unescape(in string) (out string, ok bool) {
	var b strings.Builder
	for len(in) > 0 {
		if strings.HasPrefix(in, `\0`) && (len(in) == 2 || in[2] < '0' || in[2] > '7') {
			b.WriteByte(0)
			in = in[2:]
			continue
		}
		if in[0] != '\\' {
			b.WriteByte(in[0])
			in = in[1:]
			continue
		}
		if len(in) >= 2 && strings.IndexByte(`?'"`, in[1]) >= 0 {
			b.WriteByte(in[1])
			in = in[2:]
			continue
		}
		r, _, tail, err := strconv.UnquoteChar(in, 0)
		if err != nil || r > 0xff {
			return
		}
		b.WriteByte(byte(r))
		in = tail
	}
	return b.String(), true
}
