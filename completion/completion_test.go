package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

func exec(t *testing.T, c compute.Computation) (any, bool, compute.Context) {
	t.Helper()
	ctx := compute.NewContext(&env.Realm{}, env.ExecutionContext{}, env.NewStore())
	m := compute.Start(c, ctx).Run(0)
	require.True(t, m.Done())
	v, err := m.Result()
	require.NoError(t, err)
	return v, m.Failed(), m.Context()
}

func stmt(c Completion) compute.Computation { return compute.Just(c) }

func num(n float64) Completion { return Normal(value.Number(n)) }

// counter keeps an integer in the context's line number so loop tests can
// observe side effects without an environment.
func counter(delta int) compute.Computation {
	return compute.Modify(func(ctx compute.Context) compute.Context {
		at := ctx.Location()
		at.Line += delta
		return ctx.WithLocation(at)
	}, Empty())
}

func below(n int) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		return compute.Just(value.Boolean(ctx.Location().Line < n))
	})
}

func TestStatementListKeepsLastValue(t *testing.T) {
	// { 1; var x; }
	v, _, _ := exec(t, StatementList([]compute.Computation{stmt(num(1)), stmt(Empty())}))
	assert.Equal(t, num(1), v)

	v, _, _ = exec(t, StatementList(nil))
	assert.Equal(t, Empty(), v)
}

func TestStatementListStopsAtAbrupt(t *testing.T) {
	reached := false
	v, _, _ := exec(t, StatementList([]compute.Computation{
		stmt(num(1)),
		stmt(Break("")),
		compute.WithContext(func(compute.Context) compute.Computation {
			reached = true
			return stmt(num(3))
		}),
	}))
	assert.False(t, reached)
	assert.Equal(t, Completion{Kind: KindBreak, Value: value.Number(1)}, v)
}

func TestWhileContinueCounter(t *testing.T) {
	// while (i < 3) { i++; continue; unreachable }
	body := StatementList([]compute.Computation{
		counter(1),
		stmt(Continue("")),
		compute.Fatalf("unreachable"),
	})
	v, failed, ctx := exec(t, While(nil, below(3), body))
	assert.False(t, failed)
	assert.Equal(t, 3, ctx.Location().Line)
	assert.Equal(t, Empty(), v)
}

func TestLabelledContinueTargetsOuterLoop(t *testing.T) {
	// outer: while (i < 4) { i++; while (true) { continue outer; } }
	inner := While(LabelSet{}, compute.Just(value.True), stmt(Continue("outer")))
	body := StatementList([]compute.Computation{counter(1), inner})
	loop := Labelled("outer", While(LabelSet{"outer"}, below(4), body))
	_, failed, ctx := exec(t, loop)
	assert.False(t, failed)
	assert.Equal(t, 4, ctx.Location().Line)
}

func TestLabelledBreak(t *testing.T) {
	v, _, _ := exec(t, Labelled("L", StatementList([]compute.Computation{stmt(num(5)), stmt(Break("L"))})))
	assert.Equal(t, num(5), v)

	v, _, _ = exec(t, Labelled("L", stmt(Break("M"))))
	assert.Equal(t, Break("M"), v)
}

func TestDoWhileRunsBodyFirst(t *testing.T) {
	_, _, ctx := exec(t, DoWhile(nil, counter(1), compute.Just(value.False)))
	assert.Equal(t, 1, ctx.Location().Line)
}

func TestForWithUpdateAndBreak(t *testing.T) {
	// for (; ; i++) { if (i >= 5) break; }
	body := If(compute.Map(below(5), func(v any) any { return !bool(v.(value.Boolean)) }), stmt(Break("")), nil)
	_, _, ctx := exec(t, For(nil, nil, counter(1), body))
	assert.Equal(t, 5, ctx.Location().Line)
}

func TestForInSkipsMissingKeys(t *testing.T) {
	var seen []string
	visit := func(key string) compute.Computation {
		return compute.WithContext(func(compute.Context) compute.Computation {
			if key == "gone" {
				return compute.Just(value.False)
			}
			seen = append(seen, key)
			return compute.Just(value.True)
		})
	}
	v, _, _ := exec(t, ForIn(nil, []string{"a", "gone", "b"}, visit, stmt(num(1))))
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, num(1), v)
}

func TestSwitchFallsThroughFromMatch(t *testing.T) {
	cases := []Case{
		{Test: compute.Just(value.Number(1)), Body: []compute.Computation{stmt(num(10))}},
		{Body: []compute.Computation{stmt(num(20))}},
		{Test: compute.Just(value.Number(2)), Body: []compute.Computation{stmt(num(30)), stmt(Break(""))}},
		{Test: compute.Just(value.Number(3)), Body: []compute.Computation{stmt(num(40))}},
	}
	v, _, _ := exec(t, Switch(nil, compute.Just(value.Number(1)), cases))
	assert.Equal(t, num(30), v)

	v, _, _ = exec(t, Switch(nil, compute.Just(value.Number(3)), cases))
	assert.Equal(t, num(40), v)

	// No match runs the default clause and falls through.
	v, _, _ = exec(t, Switch(nil, compute.Just(value.Number(9)), cases))
	assert.Equal(t, num(30), v)

	// Strict equality: "1" does not match 1.
	v, _, _ = exec(t, Switch(nil, compute.Just(value.String("1")), cases[:1]))
	assert.Equal(t, Empty(), v)
}

func TestTryCatch(t *testing.T) {
	c := TryCatch(Raise(value.String("e")), func(thrown value.Value) compute.Computation {
		return stmt(Normal(thrown))
	})
	v, failed, _ := exec(t, c)
	assert.False(t, failed)
	assert.Equal(t, Normal(value.String("e")), v)
}

func TestTryFinallyRunsAfterThrow(t *testing.T) {
	// try { throw 1 } finally { x = 2 }
	c := TryFinally(FinallyOverride, Raise(value.Number(1)), counter(2))
	v, failed, ctx := exec(t, c)
	assert.True(t, failed)
	thrown, ok := Thrown(v)
	require.True(t, ok)
	assert.Equal(t, value.Number(1), thrown)
	assert.Equal(t, 2, ctx.Location().Line)
}

func TestRaiseRecordsSite(t *testing.T) {
	c := StatementList([]compute.Computation{
		counter(1),
		compute.Mark(compute.Point{Line: 2}, Raise(value.Number(1))),
		counter(3),
	})
	v, failed, _ := exec(t, c)
	require.True(t, failed)
	site := v.(Completion).Site
	require.NotNil(t, site)
	assert.Equal(t, 2, site.Location().Line)

	// The site survives a finally block that runs later.
	c = TryFinally(FinallyOverride, compute.Mark(compute.Point{Line: 7}, Raise(value.Number(1))), compute.Mark(compute.Point{Line: 9}, stmt(Empty())))
	v, _, ctx := exec(t, c)
	assert.Equal(t, 9, ctx.Location().Line)
	assert.Equal(t, 7, v.(Completion).Site.Location().Line)
}

func TestReturnInFinallyOverrides(t *testing.T) {
	c := TryFinally(FinallyOverride, stmt(Return(value.Number(1))), stmt(Return(value.Number(2))))
	v, _, _ := exec(t, c)
	assert.Equal(t, Return(value.Number(2)), v)

	c = TryFinally(FinallyOverride, Raise(value.Number(1)), stmt(Return(value.Number(2))))
	v, failed, _ := exec(t, c)
	assert.False(t, failed)
	assert.Equal(t, Return(value.Number(2)), v)
}

func TestPreservePolicyKeepsGuardedCompletion(t *testing.T) {
	c := TryFinally(FinallyPreserve, stmt(Return(value.Number(1))), stmt(Return(value.Number(2))))
	v, _, _ := exec(t, c)
	assert.Equal(t, Return(value.Number(1)), v)

	c = TryFinally(FinallyPreserve, stmt(Empty()), stmt(Return(value.Number(2))))
	v, _, _ = exec(t, c)
	assert.Equal(t, Return(value.Number(2)), v)
}

func TestNormalFinallyKeepsPrimary(t *testing.T) {
	c := TryFinally(FinallyOverride, stmt(num(1)), stmt(num(2)))
	v, _, _ := exec(t, c)
	assert.Equal(t, num(1), v)
}

func TestParseFinallyPolicy(t *testing.T) {
	p, err := ParseFinallyPolicy("Preserve")
	require.NoError(t, err)
	assert.Equal(t, FinallyPreserve, p)
	_, err = ParseFinallyPolicy("sometimes")
	assert.Error(t, err)
}
