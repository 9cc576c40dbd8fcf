package ast

import (
	"strings"
)

// Builders for hand-written trees, such as the builtin prelude.

// Spec names a base type; a leading "const " is honoured.
func Spec(name string) (spec TypeSpec) {
	if rest, ok := strings.CutPrefix(name, "const "); ok {
		spec.Const = true
		name = rest
	}
	parts := strings.Split(name, "::")
	spec.Name = parts[len(parts)-1]
	spec.Qualified = parts[:len(parts)-1]
	if len(spec.Qualified) == 0 {
		spec.Qualified = nil
	}
	return
}

func Ptr() DeclaratorOp { return DeclaratorOp{Kind: POINTER} }

func Ref() DeclaratorOp { return DeclaratorOp{Kind: REFERENCE} }

// Arr is an array derivation; a negative length is omitted.
func Arr(length int) (op DeclaratorOp) {
	op.Kind = ARRAY
	if length >= 0 {
		op.Length = Int(int64(length))
	}
	return
}

func Func(params ...*Param) DeclaratorOp {
	return DeclaratorOp{Kind: FUNCTION, Params: params}
}

func Par(spec string, name string, ops ...DeclaratorOp) *Param {
	return &Param{
		Spec:       Spec(spec),
		Declarator: Declarator{Name: name, Ops: ops},
	}
}

// Var declares one object, copy-initialized from init unless it is nil.
func Var(spec string, name string, init Expr, ops ...DeclaratorOp) *SimpleDecl {
	d := &InitDeclarator{Declarator: Declarator{Name: name, Ops: ops}}
	if init != nil {
		d.Init = &Initializer{Kind: COPY_INIT, Args: []Expr{init}}
	}
	return &SimpleDecl{Spec: Spec(spec), Decls: []*InitDeclarator{d}}
}

// List declares one object, list-initialized from items.
func List(spec string, name string, items []Expr, ops ...DeclaratorOp) *SimpleDecl {
	d := &InitDeclarator{
		Declarator: Declarator{Name: name, Ops: ops},
		Init:       &Initializer{Kind: LIST_INIT, Args: items},
	}
	return &SimpleDecl{Spec: Spec(spec), Decls: []*InitDeclarator{d}}
}

// Fn defines a function. A qualified name such as "A::f" defines a member
// out of line.
func Fn(ret string, name string, params []*Param, body ...Stmt) *FunctionDef {
	parts := strings.Split(name, "::")
	decl := Declarator{
		Name: parts[len(parts)-1],
		Ops:  []DeclaratorOp{Func(params...)},
	}
	if len(parts) > 1 {
		decl.Qualified = parts[:len(parts)-1]
	}
	return &FunctionDef{Spec: Spec(ret), Declarator: decl, Body: Blk(body...)}
}

// Class defines a class; base may be empty.
func Class(name string, base string, members ...Decl) *ClassDef {
	return &ClassDef{Name: name, Base: base, Members: members}
}

func Unit(file string, decls ...Decl) *TranslationUnit {
	return &TranslationUnit{File: file, Decls: decls}
}

func Int(v int64) *IntLit { return &IntLit{Value: v} }

func Float64(v float64) *FloatLit { return &FloatLit{Value: v} }

func Char(c byte) *CharLit { return &CharLit{Value: c} }

func Bool(b bool) *BoolLit { return &BoolLit{Value: b} }

func Str(s string) *StringLit { return &StringLit{Value: s} }

// Id names an entity; "std::cout" is qualified.
func Id(name string) *Ident {
	parts := strings.Split(name, "::")
	id := &Ident{Name: parts[len(parts)-1]}
	if len(parts) > 1 {
		id.Qualified = parts[:len(parts)-1]
	}
	return id
}

func Bin(op string, x, y Expr) *Binary { return &Binary{Op: op, X: x, Y: y} }

func Set(x, y Expr) *Assign { return &Assign{Op: "=", X: x, Y: y} }

func Pre(op string, x Expr) *Unary { return &Unary{Op: op, X: x} }

func Post(op string, x Expr) *Postfix { return &Postfix{Op: op, X: x} }

func CallOf(fn Expr, args ...Expr) *Call { return &Call{Fn: fn, Args: args} }

func Index(x, i Expr) *Subscript { return &Subscript{X: x, Index: i} }

func Dot(x Expr, name string) *Member { return &Member{X: x, Name: name} }

func Arrow(x Expr, name string) *Member { return &Member{X: x, Arrow: true, Name: name} }

func Eval(x Expr) *ExprStmt { return &ExprStmt{X: x} }

func Local(d *SimpleDecl) *DeclStmt { return &DeclStmt{Decl: d} }

func Blk(stmts ...Stmt) *Block { return &Block{Stmts: stmts} }

func IfElse(cond Expr, then, otherwise Stmt) *If {
	return &If{Cond: cond, Then: then, Else: otherwise}
}

func WhileLoop(cond Expr, body Stmt) *While { return &While{Cond: cond, Body: body} }

func ForLoop(init Stmt, cond, post Expr, body Stmt) *For {
	return &For{Init: init, Cond: cond, Post: post, Body: body}
}

func Ret(x Expr) *Return { return &Return{X: x} }

// Print is `std::cout << items[0] << items[1] ...`.
func Print(items ...Expr) *ExprStmt {
	var x Expr = Id("std::cout")
	for _, item := range items {
		x = Bin("<<", x, item)
	}
	return Eval(x)
}
