package interp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/builtin"
	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/value"
)

func program(t *testing.T, src string) compute.Computation {
	t.Helper()
	p, err := compile.Compile("test.js", src, compile.Options{})
	require.NoError(t, err)
	return p.Body
}

type outcome struct {
	okCalls, failCalls int
	result, failure    any
}

func (o *outcome) callbacks() (Callback, Callback) {
	return func(v any, _ compute.Context) Next {
			o.okCalls++
			o.result = v
			return nil
		}, func(v any, _ compute.Context) Next {
			o.failCalls++
			o.failure = v
			return nil
		}
}

func TestInterpretCallsOkExactlyOnce(t *testing.T) {
	var o outcome
	ok, fail := o.callbacks()
	Interpret(program(t, "var x = 2; x * 21"), builtin.NewContext(builtin.Options{}), ok, fail)
	assert.Equal(t, 1, o.okCalls)
	assert.Equal(t, 0, o.failCalls)
	assert.Equal(t, value.Number(42), AsValue(o.result))
}

func TestInterpretCallsFailExactlyOnce(t *testing.T) {
	var o outcome
	ok, fail := o.callbacks()
	Interpret(program(t, "throw 'nope'"), builtin.NewContext(builtin.Options{}), ok, fail)
	assert.Equal(t, 0, o.okCalls)
	assert.Equal(t, 1, o.failCalls)

	err := Classify(o.failure, builtin.NewContext(builtin.Options{}))
	var te *ThrowError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, value.String("nope"), te.Value)
}

func TestThrowErrorKeepsThrowSite(t *testing.T) {
	src := "function f() {\n  throw new Error('x');\n}\nf();"
	_, final, err := RunToEnd(program(t, src), builtin.NewContext(builtin.Options{}))
	var te *ThrowError
	require.ErrorAs(t, err, &te)

	assert.Equal(t, 2, te.Location().Line)
	frames := te.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, "f", frames[0].Name)
	assert.Equal(t, 4, frames[0].Call.Line)
	assert.Contains(t, te.Error(), ":2:")

	// The run itself still ends unwound at the top level.
	assert.Equal(t, 0, final.Depth())
	assert.Equal(t, 0, te.Context.Depth())
}

func TestRethrowMovesThrowSite(t *testing.T) {
	src := "function f() {\n  throw 1;\n}\ntry {\n  f();\n} catch (e) {\n  throw e;\n}"
	_, _, err := RunToEnd(program(t, src), builtin.NewContext(builtin.Options{}))
	var te *ThrowError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 7, te.Location().Line)
	assert.Empty(t, te.Frames())
}

func TestCallbackContinuationIsTrampolined(t *testing.T) {
	calls := 0
	var next func() Next
	next = func() Next {
		calls++
		if calls == 100000 {
			return nil
		}
		return next
	}
	Interpret(program(t, "1"), builtin.NewContext(builtin.Options{}), func(any, compute.Context) Next {
		return next
	}, Noop)
	assert.Equal(t, 100000, calls)
}

func TestDeepRecursion(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{MaxCallDepth: 20000})
	v, _, err := RunToEnd(program(t, `
function sum(n) { return n === 0 ? 0 : n + sum(n - 1); }
sum(10000)`), ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Number(50005000), v)
}

func TestCallDepthLimitRaisesRangeError(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{MaxCallDepth: 100})
	v, _, err := RunToEnd(program(t, `
function forever() { return forever(); }
var caught;
try { forever(); } catch (e) { caught = e.name; }
caught`), ctx)
	require.NoError(t, err)
	assert.Equal(t, value.String("RangeError"), v)
}

func TestStepLimit(t *testing.T) {
	var o outcome
	ok, fail := o.callbacks()
	InterpretLimited(program(t, "for (;;) {}"), builtin.NewContext(builtin.Options{}), 5000, ok, fail)
	require.Equal(t, 1, o.failCalls)
	err, isErr := o.failure.(error)
	require.True(t, isErr)
	assert.True(t, errors.Is(err, ErrStepLimit))

	var fe *compute.FatalError
	assert.ErrorAs(t, Classify(o.failure, compute.Context{}), &fe)
}

func TestFatalReachesHost(t *testing.T) {
	body := compute.Bind(program(t, "1"), func(any, compute.Context) compute.Computation {
		return compute.Fatalf("engine broke")
	})
	_, _, err := RunToEnd(body, builtin.NewContext(builtin.Options{}))
	var fe *compute.FatalError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "engine broke")
}

func TestRunReturnsFinalContext(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	_, final, err := RunToEnd(program(t, "var kept = 'yes';"), ctx)
	require.NoError(t, err)

	v, _, err := RunToEnd(program(t, "kept"), builtin.Reset(final, false))
	require.NoError(t, err)
	assert.Equal(t, value.String("yes"), v)

	_, _, err = RunToEnd(program(t, "kept"), ctx)
	var te *ThrowError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "ReferenceError")
}

func TestReturnedCallsReleaseTheirRecords(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	base := ctx.Store().RecordCount()

	_, final, err := RunToEnd(program(t, `
function f(n) { var y = n; return y; }
for (var i = 0; i < 50; i++) f(i);`), ctx)
	require.NoError(t, err)
	assert.Equal(t, base, final.Store().RecordCount())

	_, final, err = RunToEnd(program(t, `
function mk(n) { return function () { return n; }; }
var keep = mk(1);`), builtin.Reset(final, false))
	require.NoError(t, err)
	assert.Equal(t, base+1, final.Store().RecordCount())
}
