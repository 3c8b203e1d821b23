// Package config handles intcode.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	Program  Program  `toml:"program"`
	Run      Run      `toml:"run"`
	Store    Store    `toml:"store"`
	Snapshot Snapshot `toml:"snapshot"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-"`
}

// Program selects the program and its input value.
type Program struct {
	Path  string `toml:"path"`
	Input *int64 `toml:"input"`
}

// Run configures engine execution.
type Run struct {
	MaxSteps int64 `toml:"max-steps"`
	Trace    bool  `toml:"trace"`
}

// Store configures the run history database.
type Store struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// Snapshot configures where the final engine state is written.
type Snapshot struct {
	Output string `toml:"output"`
}

// Default returns the configuration used when no intcode.toml exists.
func Default() *Config {
	return &Config{
		Store: Store{Path: defaultStorePath()},
	}
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "intcode", "history.db")
}

// Load parses the intcode.toml file in dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return parse(data, path, dir)
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return parse(data, path, filepath.Dir(path))
}

func parse(data []byte, path, dir string) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	var err error
	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if c.Run.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: run.max-steps must not be negative", path)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file and loads
// it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Resolve returns p relative to the config directory, unless it is empty
// or already absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// ProgramPath returns the absolute program path, or "" if none is set.
func (c *Config) ProgramPath() string {
	return c.Resolve(c.Program.Path)
}

// InputValue returns the configured input and whether one was set.
func (c *Config) InputValue() (int64, bool) {
	if c.Program.Input == nil {
		return 0, false
	}
	return *c.Program.Input, true
}
