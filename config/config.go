// Package config loads simulator settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jamesjuett/lobster-sub011/memory"
	"github.com/jamesjuett/lobster-sub011/sim"
)

// appName names the config directory and environment variable.
const appName = "lobster"

const envConfig = "LOBSTER_CONFIG"

// Config of a simulator session.
type Config struct {
	Memory    memory.Layout `yaml:"memory"`
	StepLimit int           `yaml:"step_limit"`
	Verbose   bool          `yaml:"verbose"`
	Locale    string        `yaml:"locale"` // BCP 47 tag; empty uses the system locale.
}

// Default is the configuration used when no file is found.
func Default() Config {
	return Config{
		Memory:    memory.DefaultLayout(),
		StepLimit: sim.DEFAULT_STEP_LIMIT,
	}
}

// Load decodes r over the defaults. Unknown keys are errors.
func Load(r io.Reader) (cfg Config, err error) {
	cfg = Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return
	}
	err = nil

	if cfg.Memory.Capacity <= 0 || cfg.Memory.TemporaryCapacity <= 0 {
		err = fmt.Errorf("memory capacities must be positive: %+v", cfg.Memory)
		return
	}
	if cfg.StepLimit <= 0 {
		cfg.StepLimit = sim.DEFAULT_STEP_LIMIT
	}
	return
}

// Resolve returns the config file to read.
// Priority: explicit > $LOBSTER_CONFIG > $XDG_CONFIG_HOME/lobster/config.yaml > ~/.config/lobster/config.yaml
func Resolve(explicit string) (path string, err error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(envConfig); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.yaml"), nil
}

// LoadFile reads the resolved config file. A missing file that was not
// named explicitly yields the defaults.
func LoadFile(explicit string) (cfg Config, err error) {
	path, err := Resolve(explicit)
	if err != nil {
		return
	}

	inf, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && explicit == "" {
		return Default(), nil
	}
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = Load(inf)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}
