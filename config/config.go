// Package config loads engine settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timewinder-dev/ecmastep/completion"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Script   ScriptConfig   `toml:"script" yaml:"script"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
	Debugger DebuggerConfig `toml:"debugger" yaml:"debugger"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

type ScriptConfig struct {
	// File is the script to run, relative to the config file.
	File string `toml:"file,omitempty" yaml:"file,omitempty"`
}

type EngineConfig struct {
	MaxCallDepth int    `toml:"max_call_depth" yaml:"max_call_depth"`
	MaxSteps     int    `toml:"max_steps" yaml:"max_steps"`
	Finally      string `toml:"finally" yaml:"finally"`
	Strict       bool   `toml:"strict" yaml:"strict"`
}

type DebuggerConfig struct {
	Breakpoints []int `toml:"breakpoints,omitempty" yaml:"breakpoints,omitempty"`
	// History is the number of past sessions the console keeps for
	// stepping back.
	History int `toml:"history" yaml:"history"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

type Format int

const (
	TOML Format = iota
	YAML
)

var ErrUnknownFormat = errors.New("unknown config format")

func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxCallDepth: 1000,
			Finally:      completion.FinallyOverride.String(),
		},
		Debugger: DebuggerConfig{History: 100},
		Log:      LogConfig{Level: "info"},
	}
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return TOML, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Parse reads a config on top of the defaults.
func Parse(r io.Reader, format Format) (*Config, error) {
	out := Default()
	switch format {
	case TOML:
		if _, err := toml.NewDecoder(r).Decode(out); err != nil {
			return nil, err
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFromFile loads path. When the config names no script, the script is
// the file next to it with the same base name and a .js extension.
func LoadFromFile(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Script.File == "" {
		base := filepath.Base(path)
		c.Script.File = strings.TrimSuffix(base, filepath.Ext(base)) + ".js"
	}
	c.Script.File = filepath.Clean(filepath.Join(filepath.Dir(path), c.Script.File))
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := completion.ParseFinallyPolicy(c.Engine.Finally); err != nil {
		return err
	}
	if c.Engine.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative, got %d", c.Engine.MaxCallDepth)
	}
	if c.Engine.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.Engine.MaxSteps)
	}
	return nil
}

func (c *Config) FinallyPolicy() completion.FinallyPolicy {
	p, _ := completion.ParseFinallyPolicy(c.Engine.Finally)
	return p
}
