// Package ast is the syntax tree consumed by the compiler.
//
// Nodes carry a Span with their source location and text. The compiler
// propagates spans into diagnostics and runtime events but never
// interprets them.
package ast

import (
	"fmt"
)

// Span locates a node in its source file.
type Span struct {
	File   string
	Start  int // Byte offset of the first character.
	End    int // Byte offset past the last character.
	Line   int // 1-based.
	Column int // 1-based.
	Text   string
}

// Pos returns the span itself, so embedding a Span implements Node.
func (s Span) Pos() Span {
	return s
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

type Node interface {
	Pos() Span
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Decl interface {
	Node
	declNode()
}

// TypeSpec is the declaration specifier sequence naming the base type.
type TypeSpec struct {
	Span
	Name      string   // Fundamental type or class name.
	Qualified []string // Enclosing namespaces or classes of Name.
	Const     bool
	Volatile  bool
	Static    bool
	Extern    bool
	Virtual   bool
	Inline    bool
}

type OpKind int

const (
	POINTER   = OpKind(0)
	REFERENCE = OpKind(1)
	ARRAY     = OpKind(2)
	FUNCTION  = OpKind(3)
)

var _op_kind_names = [...]string{
	POINTER:   "pointer",
	REFERENCE: "reference",
	ARRAY:     "array",
	FUNCTION:  "function",
}

func (k OpKind) String() string {
	if k < 0 || int(k) >= len(_op_kind_names) {
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
	return _op_kind_names[k]
}

// DeclaratorOp is one derivation applied to the base type. A declarator
// lists them from the name outward: `int *a[3]` is {ARRAY 3, POINTER}.
type DeclaratorOp struct {
	Kind      OpKind
	Const     bool     // `* const`.
	Volatile  bool     // `* volatile`.
	Length    Expr     // ARRAY length, nil when omitted.
	Params    []*Param // FUNCTION parameters.
	ConstThis bool     // FUNCTION trailing `const`.
}

type Declarator struct {
	Span
	Name      string
	Qualified []string // `A::f` has Qualified {"A"}.
	Ops       []DeclaratorOp
}

type Param struct {
	Span
	Spec       TypeSpec
	Declarator Declarator
}

type InitKind int

const (
	DEFAULT_INIT = InitKind(0) // `T x;`
	DIRECT_INIT  = InitKind(1) // `T x(a);`
	COPY_INIT    = InitKind(2) // `T x = a;`
	LIST_INIT    = InitKind(3) // `T x = {a, b};` or `T x{a, b};`
)

type Initializer struct {
	Span
	Kind InitKind
	Args []Expr
}

type InitDeclarator struct {
	Declarator
	Init *Initializer // nil for DEFAULT_INIT.
}

// SimpleDecl declares objects, references or functions.
type SimpleDecl struct {
	Span
	Spec  TypeSpec
	Decls []*InitDeclarator
}

type FunctionDef struct {
	Span
	Spec       TypeSpec
	Declarator Declarator
	Body       *Block
}

// ClassDef is a class or struct definition, or a forward declaration
// when Forward is set.
type ClassDef struct {
	Span
	Name          string
	Forward       bool
	Base          string
	BaseQualified []string
	Members       []Decl // SimpleDecl or FunctionDef.
}

type Namespace struct {
	Span
	Name  string
	Decls []Decl
}

// UsingDirective is `using namespace Name;`.
type UsingDirective struct {
	Span
	Name      string
	Qualified []string
}

type TranslationUnit struct {
	File  string
	Decls []Decl
}

func (*SimpleDecl) declNode()     {}
func (*FunctionDef) declNode()    {}
func (*ClassDef) declNode()       {}
func (*Namespace) declNode()      {}
func (*UsingDirective) declNode() {}

// Statements.

type Block struct {
	Span
	Stmts []Stmt
}

type ExprStmt struct {
	Span
	X Expr
}

type DeclStmt struct {
	Span
	Decl *SimpleDecl
}

type If struct {
	Span
	Cond Expr
	Then Stmt
	Else Stmt // May be nil.
}

type While struct {
	Span
	Cond Expr
	Body Stmt
}

type DoWhile struct {
	Span
	Body Stmt
	Cond Expr
}

type For struct {
	Span
	Init Stmt // ExprStmt, DeclStmt or nil.
	Cond Expr // May be nil.
	Post Expr // May be nil.
	Body Stmt
}

type Return struct {
	Span
	X Expr // May be nil.
}

type Break struct{ Span }

type Continue struct{ Span }

type Null struct{ Span }

func (*Block) stmtNode()    {}
func (*ExprStmt) stmtNode() {}
func (*DeclStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*DoWhile) stmtNode()  {}
func (*For) stmtNode()      {}
func (*Return) stmtNode()   {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}
func (*Null) stmtNode()     {}

// Expressions.

type IntLit struct {
	Span
	Value int64
}

type FloatLit struct {
	Span
	Value float64
	Float bool // `f` suffix.
}

type CharLit struct {
	Span
	Value byte
}

type BoolLit struct {
	Span
	Value bool
}

// StringLit holds the decoded literal text, without the terminating NUL.
type StringLit struct {
	Span
	Value string
}

type NullPtr struct{ Span }

type Ident struct {
	Span
	Qualified []string
	Name      string
}

// Binary is an arithmetic, relational, logical or bitwise operator.
type Binary struct {
	Span
	Op string
	X  Expr
	Y  Expr
}

// Assign is `=` or a compound assignment such as `+=`.
type Assign struct {
	Span
	Op string
	X  Expr
	Y  Expr
}

// Unary is a prefix operator: - + ! ~ * & ++ --.
type Unary struct {
	Span
	Op string
	X  Expr
}

// Postfix is x++ or x--.
type Postfix struct {
	Span
	Op string
	X  Expr
}

type Call struct {
	Span
	Fn   Expr
	Args []Expr
}

type Subscript struct {
	Span
	X     Expr
	Index Expr
}

type Member struct {
	Span
	X         Expr
	Arrow     bool
	Name      string
	Qualified []string // `x.B::f()` has Qualified {"B"}.
}

type New struct {
	Span
	Spec     TypeSpec
	Ops      []DeclaratorOp // Abstract pointer derivations, such as `new int*`.
	ArrayLen Expr           // `new T[n]`.
	Init     *Initializer
}

type Delete struct {
	Span
	Array bool
	X     Expr
}

type Conditional struct {
	Span
	Cond Expr
	Then Expr
	Else Expr
}

type This struct{ Span }

func (*IntLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*CharLit) exprNode()     {}
func (*BoolLit) exprNode()     {}
func (*StringLit) exprNode()   {}
func (*NullPtr) exprNode()     {}
func (*Ident) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Assign) exprNode()      {}
func (*Unary) exprNode()       {}
func (*Postfix) exprNode()     {}
func (*Call) exprNode()        {}
func (*Subscript) exprNode()   {}
func (*Member) exprNode()      {}
func (*New) exprNode()         {}
func (*Delete) exprNode()      {}
func (*Conditional) exprNode() {}
func (*This) exprNode()        {}
