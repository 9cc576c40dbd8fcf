package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/jamesjuett/lobster-sub011/construct"
	"github.com/jamesjuett/lobster-sub011/frontend"
	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/sim"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const hello = `#include <iostream>
using namespace std;

int count = 0;

int main() {
  for (int i = 0; i < 3; ++i) {
    ++count;
  }
  cout << "hello " << count << endl;
  int *leak = new int(4);
  return count;
}
`

// workspace writes files into a temp dir, along with an empty config.
func workspace(t *testing.T, files map[string]string) (dir string) {
	t.Helper()
	dir = t.TempDir()
	files["config.yaml"] = ""
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return
}

func execute(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errs bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errs)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "config.yaml")}, args...))
	err = root.ExecuteContext(context.Background())
	return out.String(), errs.String(), err
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	dir := workspace(t, map[string]string{"hello.cpp": hello})
	stdout, stderr, err := execute(t, dir, "run", filepath.Join(dir, "hello.cpp"))

	var exit *exitError
	if assert.ErrorAs(err, &exit) {
		assert.Equal(3, exit.code)
	}
	assert.Equal("hello 3\n", stdout)
	assert.Contains(stderr, "memory_leak")
}

func TestRun_NotCompiled(t *testing.T) {
	assert := assert.New(t)

	dir := workspace(t, map[string]string{"bad.cpp": "int main() { return nope; }\n"})
	stdout, stderr, err := execute(t, dir, "run", filepath.Join(dir, "bad.cpp"))

	assert.ErrorIs(err, ErrNotCompiled)
	assert.Empty(stdout)
	assert.Contains(stderr, construct.NOTE_LOOKUP_NOT_FOUND)
	assert.Contains(stderr, "bad.cpp:1:")
}

func TestRun_Checkpoints(t *testing.T) {
	assert := assert.New(t)

	dir := workspace(t, map[string]string{
		"hello.cpp": hello,
		"pass.yaml": `checkpoints:
  - name: greets
    expect: output.startswith("hello")
  - name: counted
    expect: globals["count"] == 3
`,
		"fail.yaml": `checkpoints:
  - name: no leaks
    expect: count("memory_leak") == 0
`,
	})

	_, stderr, err := execute(t, dir, "run", "--checkpoints", filepath.Join(dir, "pass.yaml"), filepath.Join(dir, "hello.cpp"))
	assert.ErrorAs(err, new(*exitError))
	assert.Contains(stderr, "PASS greets")
	assert.Contains(stderr, "PASS counted")

	_, stderr, err = execute(t, dir, "run", "--checkpoints", filepath.Join(dir, "fail.yaml"), filepath.Join(dir, "hello.cpp"))
	assert.ErrorIs(err, ErrCheckpointFailed)
	assert.Contains(stderr, "FAIL no leaks")

	_, stderr, err = execute(t, dir, "run", "-e", "exit_code == 3", "-e", "finished", filepath.Join(dir, "hello.cpp"))
	assert.ErrorAs(err, new(*exitError))
	assert.Contains(stderr, "PASS exit_code == 3")
	assert.Contains(stderr, "PASS finished")
}

func TestRun_StepLimit(t *testing.T) {
	dir := workspace(t, map[string]string{"spin.cpp": "int main() { while (true) {} }\n"})
	_, _, err := execute(t, dir, "run", "--limit", "20", filepath.Join(dir, "spin.cpp"))
	assert.ErrorIs(t, err, sim.ErrStepLimit)
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)

	dir := workspace(t, map[string]string{
		"hello.cpp": hello,
		"syntax.cpp": "int main( {\n",
	})

	stdout, _, err := execute(t, dir, "check", filepath.Join(dir, "hello.cpp"))
	assert.NoError(err)
	assert.NotContains(stdout, "error")

	stdout, _, err = execute(t, dir, "check", filepath.Join(dir, "syntax.cpp"))
	assert.ErrorIs(err, ErrNotCompiled)
	assert.Contains(stdout, frontend.ErrSyntax.Error())
}

func TestWatch(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.cpp")
	require.NoError(os.WriteFile(path, []byte("int main() {}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, zaptest.NewLogger(t), []string{path}, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	require.Eventually(func() bool {
		_ = os.WriteFile(path, []byte("int main() { return 1; }\n"), 0o644)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 3*debounce)

	cancel()
	require.NoError(<-done)
}

func TestDebugger(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	unit, err := (&frontend.Parser{}).Parse(context.Background(), "hello.cpp", []byte(hello))
	require.NoError(err)
	p := construct.Compile(zaptest.NewLogger(t), unit)
	require.False(p.HasErrors(), "%v", p.Notes)
	s, err := sim.New(p, memory.DefaultLayout())
	require.NoError(err)

	var out bytes.Buffer
	d := &debugger{ctx: context.Background(), sim: s, w: &out, limit: sim.DEFAULT_STEP_LIMIT, logger: zaptest.NewLogger(t)}

	run := func(line string) string {
		out.Reset()
		quit, err := d.exec(line)
		require.NoError(err, line)
		assert.False(quit, line)
		return out.String()
	}

	assert.Contains(run("s 5"), "step 5")
	assert.Equal(5, s.Steps)
	assert.NotEmpty(run("stack"))
	assert.Contains(run("b 2"), "step 3")
	assert.Equal(3, s.Steps)

	assert.Contains(run("c"), "exit code 3")
	assert.Contains(run("out"), "hello 3")
	assert.Contains(run("events"), "memory_leak")
	assert.Contains(run("globals"), "count")
	assert.NotEmpty(run("mem 0 8"))
	assert.Contains(run("help"), "commands:")

	assert.Contains(run("reset"), "step 0")
	assert.Zero(s.Steps)

	_, err = d.exec("bogus")
	assert.ErrorIs(err, ErrUnknownCommand)
	_, err = d.exec("s -1")
	assert.Error(err)

	quit, err := d.exec("q")
	assert.NoError(err)
	assert.True(quit)
}

func TestPrintErrors(t *testing.T) {
	var out bytes.Buffer
	printErrors(&out, frontend.ErrSyntax)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}
