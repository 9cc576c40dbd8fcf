package construct

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jamesjuett/lobster-sub011/ast"
)

// keys lists the note keys of every error in p.
func keys(p *Program) (out []string) {
	for n := range p.Errors() {
		out = append(out, n.Key)
	}
	return
}

func mainOf(body ...ast.Stmt) *ast.FunctionDef {
	return ast.Fn("int", "main", nil, body...)
}

func TestCompile_Valid(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := Compile(zaptest.NewLogger(t), ast.Unit("main.cpp",
		ast.Var("int", "g", ast.Int(7)),
		mainOf(
			ast.Local(ast.Var("int", "x", ast.Int(3))),
			ast.Print(ast.Id("x"), ast.Id("std::endl")),
			ast.Eval(ast.CallOf(ast.Id("assert"), ast.Bin("==", ast.Id("x"), ast.Int(3)))),
			ast.Ret(ast.Id("g")),
		),
	))

	assert.False(p.HasErrors(), "%v", p.Notes)
	require.NotNil(p.Main)
	assert.Equal("main", p.Main.Name)
	assert.True(slices.ContainsFunc(p.Statics, func(init *Init) bool {
		return init.Entity.Name == "g" && init.Kind == INIT_VALUE
	}))
}

func TestCompile_NoMain(t *testing.T) {
	assert := assert.New(t)

	p := Compile(nil, ast.Unit("lib.cpp",
		ast.Fn("int", "twice", []*ast.Param{ast.Par("int", "x")},
			ast.Ret(ast.Bin("*", ast.Id("x"), ast.Int(2)))),
	))

	assert.False(p.HasErrors())
	assert.Nil(p.Main)
}

func TestCompile_Notes(t *testing.T) {
	square := ast.Fn("int", "square", []*ast.Param{ast.Par("int", "x")},
		ast.Ret(ast.Bin("*", ast.Id("x"), ast.Id("x"))))

	undefined := &ast.SimpleDecl{
		Spec: ast.Spec("int"),
		Decls: []*ast.InitDeclarator{{
			Declarator: ast.Declarator{Name: "g", Ops: []ast.DeclaratorOp{ast.Func()}},
		}},
	}

	table := map[string]struct {
		decls []ast.Decl
		key   string
	}{
		"undeclared": {
			decls: []ast.Decl{mainOf(ast.Ret(ast.Id("y")))},
			key:   NOTE_LOOKUP_NOT_FOUND,
		},
		"break": {
			decls: []ast.Decl{mainOf(&ast.Break{})},
			key:   NOTE_STMT_BREAK,
		},
		"continue": {
			decls: []ast.Decl{mainOf(ast.IfElse(ast.Bool(true), &ast.Continue{}, nil))},
			key:   NOTE_STMT_CONTINUE,
		},
		"const-assign": {
			decls: []ast.Decl{mainOf(
				ast.Local(ast.Var("const int", "c", ast.Int(1))),
				ast.Eval(ast.Set(ast.Id("c"), ast.Int(2))),
			)},
			key: NOTE_EXPR_CONST_ASSIGN,
		},
		"const-uninitialized": {
			decls: []ast.Decl{mainOf(ast.Local(ast.Var("const int", "c", nil)))},
			key:   NOTE_DECL_CONST_INIT,
		},
		"rvalue-assign": {
			decls: []ast.Decl{mainOf(ast.Eval(ast.Set(ast.Int(1), ast.Int(2))))},
			key:   NOTE_EXPR_LVALUE_REQUIRED,
		},
		"arity": {
			decls: []ast.Decl{square, mainOf(ast.Ret(ast.CallOf(ast.Id("square"), ast.Int(1), ast.Int(2))))},
			key:   NOTE_LOOKUP_NO_MATCH,
		},
		"undefined-function": {
			decls: []ast.Decl{undefined, mainOf(ast.Ret(ast.CallOf(ast.Id("g"))))},
			key:   NOTE_LINK_DEF_NOT_FOUND,
		},
		"void-return-value": {
			decls: []ast.Decl{
				ast.Fn("void", "f", nil, ast.Ret(ast.Int(1))),
				mainOf(),
			},
			key: NOTE_STMT_RETURN,
		},
		"array-length": {
			decls: []ast.Decl{mainOf(ast.Local(ast.Var("int", "a", nil, ast.Arr(0))))},
			key:   NOTE_DECL_ARRAY_LENGTH,
		},
		"not-a-type": {
			decls: []ast.Decl{
				ast.Var("int", "n", nil),
				mainOf(ast.Local(ast.Var("n", "x", nil))),
			},
			key: NOTE_TYPE_NOT_A_TYPE,
		},
		"too-many-initializers": {
			decls: []ast.Decl{mainOf(ast.Local(ast.List("int", "a",
				[]ast.Expr{ast.Int(1), ast.Int(2), ast.Int(3)}, ast.Arr(2))))},
			key: NOTE_DECL_INIT_COUNT,
		},
		"const-object-call": {
			decls: []ast.Decl{
				ast.Class("A", "",
					ast.Var("int", "v", nil),
					ast.Fn("int", "get", nil, ast.Ret(ast.Id("v"))),
				),
				mainOf(
					ast.Local(ast.List("const A", "a", nil)),
					ast.Ret(ast.CallOf(ast.Dot(ast.Id("a"), "get"))),
				),
			},
			key: NOTE_EXPR_NON_CONST_MEMBER,
		},
		"non-covariant-return": {
			decls: []ast.Decl{
				ast.Class("A", "", virtualFn("int", "f", ast.Ret(ast.Int(1)))),
				ast.Class("B", "A", ast.Fn("double", "f", nil, ast.Ret(ast.Float64(2)))),
				mainOf(),
			},
			key: NOTE_DECL_NON_COVARIANT,
		},
		"no-member": {
			decls: []ast.Decl{
				ast.Class("A", "", ast.Var("int", "v", nil)),
				mainOf(
					ast.Local(ast.Var("A", "a", nil)),
					ast.Ret(ast.Dot(ast.Id("a"), "w")),
				),
			},
			key: NOTE_EXPR_NOT_A_MEMBER,
		},
	}

	for name, tc := range table {
		t.Run(name, func(t *testing.T) {
			p := Compile(zaptest.NewLogger(t), ast.Unit("main.cpp", tc.decls...))
			assert.True(t, slices.Contains(keys(p), tc.key), "want %v in %v", tc.key, p.Notes)
		})
	}
}

func virtualFn(ret string, name string, body ...ast.Stmt) *ast.FunctionDef {
	fn := ast.Fn(ret, name, nil, body...)
	fn.Spec.Virtual = true
	return fn
}

// returning makes fn return a pointer to, or a reference to, its
// declared return type.
func returning(fn *ast.FunctionDef, op ast.DeclaratorOp) *ast.FunctionDef {
	fn.Declarator.Ops = append(fn.Declarator.Ops, op)
	return fn
}

func TestCompile_CovariantReturn(t *testing.T) {
	table := map[string]struct {
		base, derived *ast.FunctionDef
		ok            bool
	}{
		"same": {
			base:    virtualFn("int", "f", ast.Ret(ast.Int(1))),
			derived: ast.Fn("int", "f", nil, ast.Ret(ast.Int(2))),
			ok:      true,
		},
		"derived-pointer": {
			base:    returning(virtualFn("A", "f", ast.Ret(&ast.NullPtr{})), ast.Ptr()),
			derived: returning(ast.Fn("B", "f", nil, ast.Ret(&ast.This{})), ast.Ptr()),
			ok:      true,
		},
		"less-qualified-pointer": {
			base:    returning(virtualFn("const A", "f", ast.Ret(&ast.NullPtr{})), ast.Ptr()),
			derived: returning(ast.Fn("B", "f", nil, ast.Ret(&ast.This{})), ast.Ptr()),
			ok:      true,
		},
		"more-qualified-pointer": {
			base:    returning(virtualFn("A", "f", ast.Ret(&ast.NullPtr{})), ast.Ptr()),
			derived: returning(ast.Fn("const B", "f", nil, ast.Ret(&ast.NullPtr{})), ast.Ptr()),
		},
		"pointer-to-reference": {
			base:    returning(virtualFn("A", "f", ast.Ret(&ast.NullPtr{})), ast.Ptr()),
			derived: returning(ast.Fn("B", "f", nil, ast.Ret(ast.Pre("*", &ast.This{}))), ast.Ref()),
		},
		"unrelated-pointer": {
			base:    returning(virtualFn("int", "f", ast.Ret(&ast.NullPtr{})), ast.Ptr()),
			derived: returning(ast.Fn("B", "f", nil, ast.Ret(&ast.This{})), ast.Ptr()),
		},
		"different-value": {
			base:    virtualFn("int", "f", ast.Ret(ast.Int(1))),
			derived: ast.Fn("double", "f", nil, ast.Ret(ast.Float64(2))),
		},
	}

	for name, tc := range table {
		t.Run(name, func(t *testing.T) {
			p := Compile(zaptest.NewLogger(t), ast.Unit("main.cpp",
				ast.Class("A", "", ast.Var("int", "v", nil), tc.base),
				ast.Class("B", "A", tc.derived),
				mainOf(),
			))
			assert.Equal(t, !tc.ok, slices.Contains(keys(p), NOTE_DECL_NON_COVARIANT), "%v", p.Notes)
			if tc.ok {
				assert.False(t, p.HasErrors(), "%v", p.Notes)
			}
		})
	}
}

func TestCompile_MultipleUnits(t *testing.T) {
	assert := assert.New(t)

	twice := func() *ast.FunctionDef {
		return ast.Fn("int", "twice", []*ast.Param{ast.Par("int", "x")},
			ast.Ret(ast.Bin("+", ast.Id("x"), ast.Id("x"))))
	}
	decl := &ast.SimpleDecl{
		Spec: ast.Spec("int"),
		Decls: []*ast.InitDeclarator{{
			Declarator: ast.Declarator{Name: "twice", Ops: []ast.DeclaratorOp{ast.Func(ast.Par("int", "x"))}},
		}},
	}

	p := Compile(nil,
		ast.Unit("main.cpp", decl, mainOf(ast.Ret(ast.CallOf(ast.Id("twice"), ast.Int(2))))),
		ast.Unit("twice.cpp", twice()),
	)
	assert.False(p.HasErrors(), "%v", p.Notes)

	p = Compile(nil,
		ast.Unit("a.cpp", twice()),
		ast.Unit("b.cpp", twice(), mainOf()),
	)
	assert.Contains(keys(p), NOTE_LINK_MULTIPLE_DEF)
}

func TestNote_String(t *testing.T) {
	assert := assert.New(t)

	n := Note{
		Severity: ERROR,
		Key:      NOTE_STMT_BREAK,
		Message:  "break outside a loop",
		Span:     ast.Span{File: "main.cpp", Line: 4, Column: 2},
	}
	assert.Equal("main.cpp:4:2: error: break outside a loop [stmt.break_outside_loop]", n.String())
	assert.Equal("Severity(7)", Severity(7).String())
}
