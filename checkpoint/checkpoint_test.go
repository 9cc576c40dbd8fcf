package checkpoint

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/jamesjuett/lobster-sub011/ast"
	"github.com/jamesjuett/lobster-sub011/construct"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/sim"
)

func finished(t *testing.T) *sim.Simulation {
	t.Helper()
	p := construct.Compile(nil, ast.Unit("main.cpp",
		ast.Var("int", "count", ast.Int(0)),
		ast.List("int", "squares", nil, ast.Arr(3)),
		ast.Class("P", "", ast.Var("int", "x", nil), ast.Var("double", "y", nil)),
		ast.Var("P", "origin", nil),
		ast.Fn("int", "main", nil,
			ast.ForLoop(
				ast.Local(ast.Var("int", "i", ast.Int(0))),
				ast.Bin("<", ast.Id("i"), ast.Int(3)),
				ast.Pre("++", ast.Id("i")),
				ast.Blk(
					ast.Eval(ast.Set(ast.Index(ast.Id("squares"), ast.Id("i")), ast.Bin("*", ast.Id("i"), ast.Id("i")))),
					ast.Eval(ast.Post("++", ast.Id("count"))),
				),
			),
			ast.Local(ast.Var("int", "p", &ast.New{Spec: ast.Spec("int")}, ast.Ptr())),
			ast.Print(ast.Str("done"), ast.Id("std::endl")),
			ast.Ret(ast.Int(2)),
		),
	))
	require.False(t, p.HasErrors(), "%v", p.Notes)

	s, err := sim.New(p, memory.DefaultLayout())
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), 0))
	return s
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)

	s := finished(t)
	results := Check(s,
		Checkpoint{Name: "output", Expect: `output == "done\n"`},
		Checkpoint{Name: "finished", Expect: "finished and exit_code == 2"},
		Checkpoint{Name: "globals", Expect: `globals["count"] == 3 and globals["squares"] == [0, 1, 4]`},
		Checkpoint{Name: "class", Expect: `globals["origin"] == {"x": 0, "y": 0.0}`},
		Checkpoint{Name: "leak", Expect: `count("memory_leak") == 1 and events[0]["kind"] == "memory_leak"`},
		Checkpoint{Name: "steps", Expect: "steps > 10"},
		Checkpoint{Name: "wrong", Expect: "exit_code == 0"},
		Checkpoint{Name: "not-bool", Expect: "steps"},
		Checkpoint{Name: "syntax", Expect: "output =="},
	)
	require.Len(t, results, 9)

	for _, r := range results[:6] {
		assert.NoError(r.Err, r.Name)
		assert.True(r.Passed, r.Name)
	}

	assert.NoError(results[6].Err)
	assert.False(results[6].Passed)

	assert.ErrorIs(results[7].Err, ErrNotBool)
	var check *ErrCheck
	assert.ErrorAs(results[8].Err, &check)
	assert.Equal("syntax", check.Name)
}

func TestEval_Uninitialized(t *testing.T) {
	assert := assert.New(t)

	env := starlark.StringDict{"x": starlark.None}
	passed, err := Eval(env, "x == None")
	assert.NoError(err)
	assert.True(passed)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	cps, err := Load(strings.NewReader(`
checkpoints:
  - name: hello
    expect: output == "hello\n"
  - name: clean
    expect: count("memory_leak") == 0
`))
	assert.NoError(err)
	assert.Equal([]Checkpoint{
		{Name: "hello", Expect: `output == "hello\n"`},
		{Name: "clean", Expect: `count("memory_leak") == 0`},
	}, cps)

	_, err = Load(strings.NewReader("checkpoints:\n  - expect: true\n"))
	assert.ErrorIs(err, ErrNoName)
}
