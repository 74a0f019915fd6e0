package ecmastep

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/config"
	"github.com/timewinder-dev/ecmastep/debug"
	"github.com/timewinder-dev/ecmastep/interp"
	"github.com/timewinder-dev/ecmastep/value"
)

func TestScriptsInTestdata(t *testing.T) {
	filepath.WalkDir("testdata", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		t.Run(filepath.Base(path), testScript(path))
		return nil
	})
}

func testScript(path string) func(t *testing.T) {
	return func(t *testing.T) {
		want, err := os.ReadFile(strings.TrimSuffix(path, ".js") + ".out")
		require.NoError(t, err)
		var out bytes.Buffer
		e := New(nil, WithOutput(&out))
		p, err := e.CompileFile(path)
		require.NoError(t, err)
		_, err = e.Run(p)
		require.NoError(t, err)
		assert.Equal(t, string(want), out.String())
	}
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	e := New(nil)
	_, err := e.Eval("a.js", "var total = 40; function add(n) { total += n; }")
	require.NoError(t, err)
	_, err = e.Eval("b.js", "add(2)")
	require.NoError(t, err)
	v, err := e.Eval("c.js", "total")
	require.NoError(t, err)
	assert.Equal(t, value.Number(42), v)
}

func TestEnginesAreIndependent(t *testing.T) {
	a, b := New(nil), New(nil)
	_, err := a.Eval("a.js", "Object.prototype.marker = 1")
	require.NoError(t, err)
	v, err := b.Eval("b.js", "typeof ({}).marker")
	require.NoError(t, err)
	assert.Equal(t, value.String("undefined"), v)
}

func TestUncaughtThrow(t *testing.T) {
	e := New(nil)
	_, err := e.Eval("t.js", "var before = 1;\nthrow new TypeError('boom');")
	var te *interp.ThrowError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "TypeError: boom")

	v, err := e.Eval("u.js", "before")
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), v)
}

func TestCompileError(t *testing.T) {
	e := New(nil)
	_, err := e.Compile("bad.js", "var = ;")
	var ce *compile.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bad.js", ce.Pos.File)
	assert.Equal(t, 1, ce.Pos.Line)
}

func TestStepLimitFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxSteps = 10000
	e := New(cfg)
	_, err := e.Eval("spin.js", "while (true) {}")
	var fe *compute.FatalError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, interp.ErrStepLimit))
}

func TestCallDepthFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxCallDepth = 50
	e := New(cfg)
	v, err := e.Eval("deep.js", `
function down(n) { return n === 0 ? 0 : down(n - 1); }
var caught;
try { down(100); } catch (e) { caught = e instanceof RangeError; }
caught && down(40) === 0`)
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(true), v)
}

func TestStrictFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Strict = true
	e := New(cfg)
	_, err := e.Eval("s.js", "undeclared = 1")
	var te *interp.ThrowError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "ReferenceError")
}

func TestRunInLeavesEngineAlone(t *testing.T) {
	e := New(nil)
	p, err := e.Compile("x.js", "var x = 5; x")
	require.NoError(t, err)
	v, ctx, err := e.RunIn(e.Context(), p)
	require.NoError(t, err)
	assert.Equal(t, value.Number(5), v)
	assert.Equal(t, 1, ctx.Location().Line)

	v, err = e.Eval("y.js", "typeof x")
	require.NoError(t, err)
	assert.Equal(t, value.String("undefined"), v)
}

func TestDebugUsesConfigBreakpoints(t *testing.T) {
	cfg := config.Default()
	cfg.Debugger.Breakpoints = []int{3}
	e := New(cfg)
	p, err := e.Compile("bp.js", "var a = 1;\nvar b = 2;\nvar c = a + b;\nc * 2;")
	require.NoError(t, err)

	var got value.Value
	s := e.Debug(p, func(v any, _ compute.Context) interp.Next {
		got = interp.AsValue(v)
		return nil
	}, nil)
	require.Equal(t, debug.Paused, s.State())
	assert.Equal(t, 1, s.Location().Line)

	s = s.Continue()
	require.Equal(t, debug.Paused, s.State())
	assert.Equal(t, 3, s.Location().Line)

	s = s.Continue()
	require.Equal(t, debug.Finished, s.State())
	assert.Equal(t, value.Number(6), got)

	v, err := e.Eval("after.js", "typeof c")
	require.NoError(t, err)
	assert.Equal(t, value.String("undefined"), v)
}
