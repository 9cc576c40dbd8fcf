package frontend

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jamesjuett/lobster-sub011/ast"
)

// converter turns one tree-sitter tree into ast nodes.
type converter struct {
	file string
	src  []byte
	errs []error
}

func (c *converter) span(n *sitter.Node) ast.Span {
	at := n.StartPoint()
	return ast.Span{
		File:   c.file,
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Line:   int(at.Row) + 1,
		Column: int(at.Column) + 1,
		Text:   c.text(n),
	}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) fail(n *sitter.Node, err error, what string) {
	c.errs = append(c.errs, &ErrSource{Span: c.span(n), What: what, Err: err})
}

func (c *converter) unsupported(n *sitter.Node) {
	c.fail(n, ErrUnsupported, n.Type())
}

// children iterates over the named children of n, skipping comments.
func children(n *sitter.Node) (out []*sitter.Node) {
	if n == nil {
		return
	}
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return
}

// fields returns every child of n in field name.
func fields(n *sitter.Node, name string) (out []*sitter.Node) {
	for i := range int(n.ChildCount()) {
		if n.FieldNameForChild(i) == name {
			out = append(out, n.Child(i))
		}
	}
	return
}

// hasChild reports whether n has a direct child of the given type and,
// when text is not empty, that text.
func (c *converter) hasChild(n *sitter.Node, typ string, text string) bool {
	for i := range int(n.ChildCount()) {
		child := n.Child(i)
		if child.Type() == typ && (text == "" || c.text(child) == text) {
			return true
		}
	}
	return false
}

// qualified splits `a::b::c` into its path and name.
func (c *converter) qualified(n *sitter.Node) (path []string, name string) {
	var parts []string
	for _, p := range strings.Split(strings.Join(strings.Fields(c.text(n)), ""), "::") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return
	}
	name = parts[len(parts)-1]
	if len(parts) > 1 {
		path = parts[:len(parts)-1]
	}
	return
}

func (c *converter) decls(n *sitter.Node) (out []ast.Decl) {
	for _, child := range children(n) {
		switch typ := child.Type(); {
		case strings.HasPrefix(typ, "preproc_"), typ == "ERROR":
		case typ == "function_definition":
			if fn := c.functionDef(child); fn != nil {
				out = append(out, fn)
			}
		case typ == "declaration":
			class, decl := c.declaration(child)
			if class != nil {
				out = append(out, class)
			}
			if decl != nil {
				out = append(out, decl)
			}
		case typ == "class_specifier", typ == "struct_specifier":
			if class := c.classDef(child); class != nil {
				out = append(out, class)
			}
		case typ == "namespace_definition":
			ns := &ast.Namespace{Span: c.span(child)}
			if name := child.ChildByFieldName("name"); name != nil {
				ns.Name = c.text(name)
			}
			ns.Decls = c.decls(child.ChildByFieldName("body"))
			out = append(out, ns)
		case typ == "using_declaration":
			if !c.hasChild(child, "namespace", "") {
				c.unsupported(child)
				continue
			}
			names := children(child)
			if len(names) == 0 {
				c.unsupported(child)
				continue
			}
			u := &ast.UsingDirective{Span: c.span(child)}
			u.Qualified, u.Name = c.qualified(names[len(names)-1])
			out = append(out, u)
		default:
			c.unsupported(child)
		}
	}
	return
}

// typeSpec reads the declaration specifiers of n. A class defined in
// place is returned too.
func (c *converter) typeSpec(n *sitter.Node) (spec ast.TypeSpec, class *ast.ClassDef) {
	for i := range int(n.ChildCount()) {
		child := n.Child(i)
		switch child.Type() {
		case "type_qualifier":
			switch c.text(child) {
			case "const":
				spec.Const = true
			case "volatile":
				spec.Volatile = true
			}
		case "storage_class_specifier":
			switch c.text(child) {
			case "static":
				spec.Static = true
			case "extern":
				spec.Extern = true
			case "inline":
				spec.Inline = true
			}
		case "virtual", "virtual_function_specifier":
			spec.Virtual = true
		}
	}

	t := n.ChildByFieldName("type")
	if t == nil {
		c.unsupported(n)
		return
	}
	spec.Span = c.span(t)

	switch t.Type() {
	case "primitive_type", "type_identifier", "sized_type_specifier":
		spec.Name = strings.Join(strings.Fields(c.text(t)), " ")
	case "qualified_identifier":
		spec.Qualified, spec.Name = c.qualified(t)
	case "class_specifier", "struct_specifier":
		if name := t.ChildByFieldName("name"); name != nil {
			spec.Name = c.text(name)
		}
		if t.ChildByFieldName("body") != nil {
			class = c.classDef(t)
		}
	default:
		c.unsupported(t)
	}
	return
}

// declarator reads a possibly nested declarator and its initializer.
func (c *converter) declarator(n *sitter.Node) (d ast.Declarator, init *ast.Initializer) {
	if n != nil {
		d.Span = c.span(n)
	}

	// Collected from the outside in; the ast lists them from the name out.
	var ops []ast.DeclaratorOp
	defer func() {
		slices.Reverse(ops)
		d.Ops = ops
	}()

	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier", "type_identifier":
			d.Name = c.text(n)
			return
		case "qualified_identifier":
			d.Qualified, d.Name = c.qualified(n)
			return
		case "init_declarator":
			init = c.initializer(n.ChildByFieldName("value"))
			n = n.ChildByFieldName("declarator")
		case "pointer_declarator", "abstract_pointer_declarator":
			op := ast.Ptr()
			op.Const = c.hasChild(n, "type_qualifier", "const")
			op.Volatile = c.hasChild(n, "type_qualifier", "volatile")
			ops = append(ops, op)
			n = n.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			if c.hasChild(n, "&&", "") {
				c.unsupported(n)
			}
			ops = append(ops, ast.Ref())
			inner := children(n)
			n = nil
			if len(inner) > 0 {
				n = inner[len(inner)-1]
			}
		case "array_declarator", "abstract_array_declarator":
			op := ast.DeclaratorOp{Kind: ast.ARRAY}
			if size := n.ChildByFieldName("size"); size != nil {
				op.Length = c.expr(size)
			}
			ops = append(ops, op)
			n = n.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			op := ast.DeclaratorOp{Kind: ast.FUNCTION}
			op.Params = c.params(n.ChildByFieldName("parameters"))
			op.ConstThis = c.hasChild(n, "type_qualifier", "const")
			ops = append(ops, op)
			n = n.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			inner := children(n)
			n = nil
			if len(inner) > 0 {
				n = inner[0]
			}
		default:
			c.unsupported(n)
			return
		}
	}
	return
}

func (c *converter) initializer(n *sitter.Node) *ast.Initializer {
	if n == nil {
		return nil
	}
	in := &ast.Initializer{Span: c.span(n)}
	switch n.Type() {
	case "initializer_list":
		in.Kind = ast.LIST_INIT
		in.Args = c.exprs(n)
	case "argument_list":
		in.Kind = ast.DIRECT_INIT
		in.Args = c.exprs(n)
	default:
		in.Kind = ast.COPY_INIT
		in.Args = []ast.Expr{c.expr(n)}
	}
	return in
}

func (c *converter) params(n *sitter.Node) (out []*ast.Param) {
	for _, child := range children(n) {
		if child.Type() != "parameter_declaration" {
			c.unsupported(child)
			continue
		}
		p := &ast.Param{Span: c.span(child)}
		p.Spec, _ = c.typeSpec(child)
		p.Declarator, _ = c.declarator(child.ChildByFieldName("declarator"))
		out = append(out, p)
	}
	return
}

// declaration converts a simple declaration. A class defined in its
// specifier is returned separately.
func (c *converter) declaration(n *sitter.Node) (class *ast.ClassDef, decl *ast.SimpleDecl) {
	spec, class := c.typeSpec(n)

	ds := fields(n, "declarator")
	if len(ds) == 0 {
		return
	}

	decl = &ast.SimpleDecl{Span: c.span(n), Spec: spec}
	for _, d := range ds {
		id := &ast.InitDeclarator{}
		id.Declarator, id.Init = c.declarator(d)
		decl.Decls = append(decl.Decls, id)
	}
	return
}

func (c *converter) functionDef(n *sitter.Node) *ast.FunctionDef {
	if n.ChildByFieldName("type") == nil {
		// Constructors and destructors.
		c.unsupported(n)
		return nil
	}

	fn := &ast.FunctionDef{Span: c.span(n)}
	fn.Spec, _ = c.typeSpec(n)
	fn.Declarator, _ = c.declarator(n.ChildByFieldName("declarator"))

	body := n.ChildByFieldName("body")
	if body == nil {
		c.unsupported(n)
		return nil
	}
	fn.Body = c.block(body)
	return fn
}

func (c *converter) classDef(n *sitter.Node) *ast.ClassDef {
	class := &ast.ClassDef{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		class.Name = c.text(name)
	} else {
		c.unsupported(n)
		return nil
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		class.Forward = true
		return class
	}

	for _, child := range children(n) {
		if child.Type() != "base_class_clause" {
			continue
		}
		var bases []*sitter.Node
		for _, b := range children(child) {
			if b.Type() != "access_specifier" {
				bases = append(bases, b)
			}
		}
		if len(bases) != 1 {
			c.unsupported(child)
			continue
		}
		class.BaseQualified, class.Base = c.qualified(bases[0])
	}

	for _, member := range children(body) {
		switch member.Type() {
		case "access_specifier":
		case "field_declaration":
			if member.ChildByFieldName("default_value") != nil {
				c.unsupported(member)
				continue
			}
			_, decl := c.declaration(member)
			if decl != nil {
				class.Members = append(class.Members, decl)
			}
		case "function_definition":
			if fn := c.functionDef(member); fn != nil {
				class.Members = append(class.Members, fn)
			}
		default:
			c.unsupported(member)
		}
	}
	return class
}
