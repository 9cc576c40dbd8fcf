package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/sim"
)

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(Default(), cfg)

	cfg, err = Load(strings.NewReader(`
memory:
  capacity: 2000
  seed: 42
step_limit: 500
verbose: true
`))
	assert.NoError(err)
	assert.Equal(Config{
		Memory: memory.Layout{
			Capacity:          2000,
			TemporaryCapacity: memory.DEFAULT_TEMPORARY_CAPACITY,
			Seed:              42,
		},
		StepLimit: 500,
		Verbose:   true,
	}, cfg)

	_, err = Load(strings.NewReader("colour: blue\n"))
	assert.Error(err)

	_, err = Load(strings.NewReader("memory:\n  capacity: -1\n"))
	assert.Error(err)

	cfg, err = Load(strings.NewReader("step_limit: 0\n"))
	assert.NoError(err)
	assert.Equal(sim.DEFAULT_STEP_LIMIT, cfg.StepLimit)
}

func TestResolve(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(envConfig, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	path, err := Resolve("given.yaml")
	assert.NoError(err)
	assert.Equal("given.yaml", path)

	path, err = Resolve("")
	assert.NoError(err)
	assert.Equal(filepath.Join("/xdg", "lobster", "config.yaml"), path)

	t.Setenv(envConfig, "/env.yaml")
	path, err = Resolve("")
	assert.NoError(err)
	assert.Equal("/env.yaml", path)
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	t.Setenv(envConfig, "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := LoadFile("")
	assert.NoError(err)
	assert.Equal(Default(), cfg)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(err)

	require.NoError(os.MkdirAll(filepath.Join(dir, "lobster"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(dir, "lobster", "config.yaml"), []byte("locale: de-DE\n"), 0o644))
	cfg, err = LoadFile("")
	assert.NoError(err)
	assert.Equal("de-DE", cfg.Locale)
}
