package integration

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep"
	"github.com/timewinder-dev/ecmastep/cas"
	"github.com/timewinder-dev/ecmastep/debug"
	"github.com/timewinder-dev/ecmastep/inspect"
)

func bindings(s *inspect.Snapshot, env int) map[string]string {
	out := map[string]string{}
	for _, b := range s.Environments[env].Bindings {
		out[b.Name] = b.Value
	}
	return out
}

// pauseAt steps a new session over src until it is paused at line.
func pauseAt(t *testing.T, src string, line int) debug.Session {
	t.Helper()
	e := ecmastep.New(nil)
	p, err := e.Compile("prog.js", src)
	require.NoError(t, err)
	s := e.Debug(p, nil, nil).WithBreakpoint(line)
	if s.Location().Line != line {
		s = s.Continue()
	}
	require.Equal(t, debug.Paused, s.State())
	require.Equal(t, line, s.Location().Line)
	return s
}

func TestSnapshot_SimpleProgram(t *testing.T) {
	s := pauseAt(t, "var x = 5 + 3;\nvar y = x * 2;\ny;", 3)

	snap := inspect.Capture(s.Context())
	vars := bindings(snap, 0)
	assert.Equal(t, "8", vars["x"])
	assert.Equal(t, "16", vars["y"])

	c := cas.NewMemoryCAS()
	hash, err := c.Put(snap)
	require.NoError(t, err)
	assert.NotEqual(t, cas.Hash(0), hash)

	result, err := cas.Retrieve[*inspect.Snapshot](c, hash)
	require.NoError(t, err)
	assert.Equal(t, snap.Location, result.Location)
	assert.Equal(t, snap.Environments, result.Environments)
}

func TestSnapshot_FunctionCall(t *testing.T) {
	src := `function add(a, b) {
  var sum = a + b;
  return sum;
}
var result = add(10, 20);`
	s := pauseAt(t, src, 3)
	snap := inspect.Capture(s.Context())

	require.Len(t, snap.Stack, 1)
	assert.Equal(t, "add", snap.Stack[0].Name)
	assert.Equal(t, 5, snap.Stack[0].Call.Line)
	assert.Equal(t, 1, snap.Depth)

	local := bindings(snap, 0)
	assert.Equal(t, "10", local["a"])
	assert.Equal(t, "20", local["b"])
	assert.Equal(t, "30", local["sum"])

	global := bindings(snap, len(snap.Environments)-1)
	assert.Equal(t, "undefined", global["result"])
	assert.Equal(t, "[Function: add]", global["add"])
}

func TestSnapshot_DataStructures(t *testing.T) {
	s := pauseAt(t, "var xs = [1, 2, 3];\nvar o = {name: \"n\", list: xs};\no;", 3)
	vars := bindings(inspect.Capture(s.Context()), 0)
	assert.Equal(t, "[1, 2, 3]", vars["xs"])
	assert.Equal(t, `{name: "n", list: [1, 2, 3]}`, vars["o"])
}

func TestSnapshot_IdenticalStates(t *testing.T) {
	src := "var x = 1;\nx;"
	a := inspect.Capture(pauseAt(t, src, 2).Context())
	b := inspect.Capture(pauseAt(t, src, 2).Context())

	c := cas.NewMemoryCAS()
	h1, err := c.Put(a)
	require.NoError(t, err)
	n := c.Len()
	h2, err := c.Put(b)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, n, c.Len())
}

func TestSnapshot_StateEvolution(t *testing.T) {
	e := ecmastep.New(nil)
	p, err := e.Compile("count.js", "var n = 0;\nn++;\nn++;\nn++;")
	require.NoError(t, err)

	c := cas.NewMemoryCAS()
	seen := map[cas.Hash]bool{}
	var hashes []cas.Hash
	for s := e.Debug(p, nil, nil); s.State() == debug.Paused; s = s.Step() {
		h, err := c.Put(inspect.Capture(s.Context()))
		require.NoError(t, err)
		hashes = append(hashes, h)
		seen[h] = true
	}
	assert.Len(t, hashes, 4)
	assert.Len(t, seen, 4)

	want := []string{"undefined", "0", "1", "2"}
	for i, h := range hashes {
		snap, err := cas.Retrieve[*inspect.Snapshot](c, h)
		require.NoError(t, err)
		assert.Equal(t, want[i], bindings(snap, 0)["n"])
	}
}

func TestSnapshot_PausedSessionsStayValid(t *testing.T) {
	var out bytes.Buffer
	e := ecmastep.New(nil, ecmastep.WithOutput(&out))
	p, err := e.Compile("p.js", "var a = 1;\nprint(a);\na = 2;\nprint(a);")
	require.NoError(t, err)

	start := e.Debug(p, nil, nil)
	end := start.Finish()
	require.Equal(t, debug.Finished, end.State())
	assert.Equal(t, "1\n2\n", out.String())

	out.Reset()
	again := start.Step().Step()
	assert.Equal(t, 3, again.Location().Line)
	assert.Equal(t, "1\n", out.String())
	assert.Equal(t, "1", bindings(inspect.Capture(again.Context()), 0)["a"])
}
