package frontend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/construct"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/sim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const shapes = `#include <iostream>
using namespace std;

class Shape {
public:
  int sides;
  virtual int area() const { return 0; }
};

class Square : public Shape {
public:
  int side;
  int area() const { return side * side; }
};

int total(const Shape &s, int times) {
  int sum = 0;
  for (int i = 0; i < times; ++i) {
    sum += s.area();
  }
  return sum;
}

int main() {
  Square sq;
  sq.sides = 4;
  sq.side = 3;
  int *counts = new int[2];
  counts[0] = total(sq, 2);
  counts[1] = 'a' == 97 ? 1 : 0;
  cout << "total " << counts[0] << " " << counts[1] << endl;
  delete[] counts;
  char name[] = "sq\t";
  cout << name << sq.sides << endl;
  return 0;
}
`

func TestParse_Run(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := &Parser{Logger: zaptest.NewLogger(t)}
	unit, err := p.Parse(context.Background(), "shapes.cpp", []byte(shapes))
	require.NoError(err)
	assert.Equal("shapes.cpp", unit.File)

	prog := construct.Compile(zaptest.NewLogger(t), unit)
	require.False(prog.HasErrors(), "%v", prog.Notes)

	s, err := sim.New(prog, memory.DefaultLayout())
	require.NoError(err)
	require.NoError(s.Run(context.Background(), 0))

	assert.Equal("total 18 1\nsq\t4\n", s.Stdout())
	assert.Equal(0, s.ExitCode)
	assert.Empty(s.Events)
}

func TestParse_Tree(t *testing.T) {
	src := `int g = 0x10;
int *f(int a[], const char c) { return 0; }
`
	unit, err := (&Parser{}).Parse(context.Background(), "tree.cpp", []byte(src))
	require.NoError(t, err)

	want := &ast.TranslationUnit{
		File: "tree.cpp",
		Decls: []ast.Decl{
			&ast.SimpleDecl{
				Spec: ast.TypeSpec{Name: "int"},
				Decls: []*ast.InitDeclarator{{
					Declarator: ast.Declarator{Name: "g"},
					Init:       &ast.Initializer{Kind: ast.COPY_INIT, Args: []ast.Expr{&ast.IntLit{Value: 16}}},
				}},
			},
			&ast.FunctionDef{
				Spec: ast.TypeSpec{Name: "int"},
				Declarator: ast.Declarator{
					Name: "f",
					Ops: []ast.DeclaratorOp{
						{Kind: ast.FUNCTION, Params: []*ast.Param{
							{Spec: ast.TypeSpec{Name: "int"}, Declarator: ast.Declarator{Name: "a", Ops: []ast.DeclaratorOp{{Kind: ast.ARRAY}}}},
							{Spec: ast.TypeSpec{Name: "char", Const: true}, Declarator: ast.Declarator{Name: "c"}},
						}},
						{Kind: ast.POINTER},
					},
				},
				Body: &ast.Block{Stmts: []ast.Stmt{&ast.Return{X: &ast.IntLit{Value: 0}}}},
			},
		},
	}

	if diff := cmp.Diff(want, unit, cmpopts.IgnoreTypes(ast.Span{})); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := (&Parser{}).Parse(context.Background(), "bad.cpp", []byte("int main( {\n"))
	assert.ErrorIs(err, ErrSyntax)

	unit, err := (&Parser{}).Parse(context.Background(), "lambda.cpp", []byte("int main() { auto f = [](){ return 1; }; return 0; }\n"))
	assert.ErrorIs(err, ErrUnsupported)
	var src *ErrSource
	if assert.ErrorAs(err, &src) {
		assert.Equal("lambda.cpp", src.Span.File)
		assert.Equal(1, src.Span.Line)
	}
	assert.Len(unit.Decls, 1)
}

func TestUnescape(t *testing.T) {
	assert := assert.New(t)

	table := map[string]string{
		`plain`:     "plain",
		`a\nb`:      "a\nb",
		`\0`:        "\x00",
		`\'\"\?\\`:  `'"?\`,
		`\x41\101`:  "AA",
		`tab\there`: "tab\there",
	}
	for in, want := range table {
		got, ok := unescape(in)
		assert.True(ok, in)
		assert.Equal(want, got, in)
	}

	_, ok := unescape(`\q`)
	assert.False(ok)
}

func TestParseFiles(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	files := map[string]string{
		"main.cpp":  "int twice(int x);\nint main() { return twice(21); }\n",
		"twice.cpp": "int twice(int x) { return x + x; }\n",
	}
	var paths []string
	for _, name := range []string{"main.cpp", "twice.cpp"} {
		path := filepath.Join(dir, name)
		require.NoError(os.WriteFile(path, []byte(files[name]), 0o644))
		paths = append(paths, path)
	}

	units, err := (&Parser{}).ParseFiles(context.Background(), paths...)
	require.NoError(err)
	require.Len(units, 2)
	assert.Equal(paths[0], units[0].File)
	assert.Equal(paths[1], units[1].File)

	prog := construct.Compile(nil, units...)
	require.False(prog.HasErrors(), "%v", prog.Notes)
	s, err := sim.New(prog, memory.DefaultLayout())
	require.NoError(err)
	require.NoError(s.Run(context.Background(), 0))
	assert.Equal(42, s.ExitCode)

	_, err = (&Parser{}).ParseFiles(context.Background(), filepath.Join(dir, "missing.cpp"))
	assert.ErrorIs(err, os.ErrNotExist)
}
