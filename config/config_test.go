package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/completion"
)

func TestParseTOML(t *testing.T) {
	src := `
[engine]
max_call_depth = 50
max_steps = 100000
finally = "preserve"
strict = true

[debugger]
breakpoints = [3, 7]
`
	c, err := Parse(strings.NewReader(src), TOML)
	require.NoError(t, err)
	assert.Equal(t, 50, c.Engine.MaxCallDepth)
	assert.Equal(t, 100000, c.Engine.MaxSteps)
	assert.True(t, c.Engine.Strict)
	assert.Equal(t, completion.FinallyPreserve, c.FinallyPolicy())
	assert.Equal(t, []int{3, 7}, c.Debugger.Breakpoints)
	assert.Equal(t, 100, c.Debugger.History)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseYAML(t *testing.T) {
	src := `
engine:
  max_call_depth: 20
log:
  level: debug
`
	c, err := Parse(strings.NewReader(src), YAML)
	require.NoError(t, err)
	assert.Equal(t, 20, c.Engine.MaxCallDepth)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, completion.FinallyOverride, c.FinallyPolicy())
}

func TestEmptyYAMLKeepsDefaults(t *testing.T) {
	c, err := Parse(strings.NewReader(""), YAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"finally", `[engine]
finally = "sometimes"`},
		{"depth", `[engine]
max_call_depth = -1`},
		{"steps", `[engine]
max_steps = -5`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), TOML)
			require.Error(t, err)
		})
	}
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("a/b.YML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)
	_, err = FormatOf("a/b.json")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadFromFileResolvesScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fib.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nmax_steps = 10\n"), 0o644))
	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fib.js"), c.Script.File)

	path = filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("script:\n  file: src/main.js\n"), 0o644))
	c, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "main.js"), c.Script.File)
}
