package ops_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/builtin"
	"github.com/timewinder-dev/ecmastep/completion"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func run(t *testing.T, ctx compute.Context, c compute.Computation) (any, bool, compute.Context) {
	t.Helper()
	m := compute.Start(c, ctx).Run(0)
	require.True(t, m.Done())
	v, err := m.Result()
	require.NoError(t, err)
	return v, m.Failed(), m.Context()
}

func thrownName(t *testing.T, ctx compute.Context, failure any) string {
	t.Helper()
	v, ok := completion.Thrown(failure)
	require.True(t, ok, "not a throw: %v", failure)
	o, ok := v.(value.Object)
	require.True(t, ok)
	p, _, ok := ctx.Store().FindProperty(o, "name")
	require.True(t, ok)
	return value.StringOf(p.Value)
}

func TestGetPutRoundTrip(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	o, ctx := ops.NewObjectIn(ctx)
	_, failed, ctx := run(t, ctx, ops.Put(o, "x", value.Number(3)))
	require.False(t, failed)
	v, _, _ := run(t, ctx, ops.Get(o, "x"))
	assert.Equal(t, value.Number(3), v)
	v, _, _ = run(t, ctx, ops.Get(o, "missing"))
	assert.Equal(t, value.Undefined{}, v)
}

func TestGetOnPrimitives(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	v, _, _ := run(t, ctx, ops.Get(value.String("héllo"), "length"))
	assert.Equal(t, value.Number(5), v)
	v, _, _ = run(t, ctx, ops.Get(value.String("abc"), "1"))
	assert.Equal(t, value.String("b"), v)

	v, failed, ctx := run(t, ctx, ops.Get(value.Undefined{}, "x"))
	require.True(t, failed)
	assert.Equal(t, "TypeError", thrownName(t, ctx, v))
}

func TestStringLengthCountsUTF16Units(t *testing.T) {
	assert.Equal(t, 2, ops.StringLength("😀"))
	assert.Equal(t, 3, ops.StringLength("a😀"))
	c, ok := ops.CharAt("ab", 1)
	assert.True(t, ok)
	assert.Equal(t, "b", c)
	_, ok = ops.CharAt("ab", 2)
	assert.False(t, ok)
}

func TestCallNative(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	fn, store := ops.NewNative(ctx.Store(), ctx.Realm(), &ops.NativeFunction{
		Name:  "sum",
		Arity: 2,
		Fn: func(_ compute.Context, call ops.Invocation) compute.Computation {
			var total value.Number
			for _, a := range call.Args {
				total += a.(value.Number)
			}
			return compute.Just(total)
		},
	})
	ctx = ctx.WithStore(store)
	v, failed, _ := run(t, ctx, ops.Call(fn, value.Undefined{}, []value.Value{value.Number(1), value.Number(2)}))
	require.False(t, failed)
	assert.Equal(t, value.Number(3), v)
	assert.True(t, ops.IsCallable(ctx.Store(), fn))
	assert.Equal(t, "function", ops.Typeof(ctx.Store(), fn))
}

func TestCallNonCallableThrows(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	v, failed, ctx := run(t, ctx, ops.Call(value.Number(1), value.Undefined{}, nil))
	require.True(t, failed)
	assert.Equal(t, "TypeError", thrownName(t, ctx, v))

	v, failed, ctx = run(t, ctx, ops.Construct(value.String("x"), nil))
	require.True(t, failed)
	assert.Equal(t, "TypeError", thrownName(t, ctx, v))
}

func TestLooseEquals(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	tests := []struct {
		a, b value.Value
		want bool
	}{
		{value.Number(1), value.String("1"), true},
		{value.Boolean(true), value.Number(1), true},
		{value.Null{}, value.Undefined{}, true},
		{value.Null{}, value.Boolean(false), false},
		{value.String(""), value.Number(0), true},
		{value.Number(math.NaN()), value.Number(math.NaN()), false},
	}
	for _, tt := range tests {
		v, _, _ := run(t, ctx, ops.LooseEquals(tt.a, tt.b))
		assert.Equal(t, value.Boolean(tt.want), v, "%v == %v", tt.a, tt.b)
	}
}

func TestArithmeticAndCompare(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	v, _, _ := run(t, ctx, ops.Add(value.String("a"), value.Number(1)))
	assert.Equal(t, value.String("a1"), v)
	v, _, _ = run(t, ctx, ops.Add(value.Boolean(true), value.Number(1)))
	assert.Equal(t, value.Number(2), v)
	v, _, _ = run(t, ctx, ops.Arithmetic(ops.Sub, value.String("5"), value.Number(2)))
	assert.Equal(t, value.Number(3), v)
	v, _, _ = run(t, ctx, ops.Compare(ops.Less, value.String("b"), value.String("a")))
	assert.Equal(t, value.False, v)
	v, _, _ = run(t, ctx, ops.Compare(ops.LessOrEqual, value.Number(2), value.Number(2)))
	assert.Equal(t, value.True, v)
}

func TestToPrimitiveUsesValueOf(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	valueOf, store := ops.NewNative(ctx.Store(), ctx.Realm(), &ops.NativeFunction{
		Name: "valueOf",
		Fn: func(compute.Context, ops.Invocation) compute.Computation {
			return compute.Just(value.Number(7))
		},
	})
	ctx = ctx.WithStore(store)
	o, ctx := ops.NewObjectIn(ctx)
	_, _, ctx = run(t, ctx, ops.DefineOwnProperty(o, "valueOf", env.Hidden(valueOf)))

	v, _, _ := run(t, ctx, ops.ToNumber(o))
	assert.Equal(t, value.Number(7), v)
	v, _, _ = run(t, ctx, ops.ToString(o))
	assert.Equal(t, value.String("[object Object]"), v)
}

func TestDeleteAndDefine(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	o, ctx := ops.NewObjectIn(ctx)
	_, _, ctx = run(t, ctx, ops.DefineOwnProperty(o, "fixed", env.Property{Value: value.Number(1)}))
	v, _, ctx := run(t, ctx, ops.Delete(o, "fixed"))
	assert.Equal(t, value.False, v)
	_, _, ctx = run(t, ctx, ops.Put(o, "loose", value.Number(2)))
	v, _, ctx = run(t, ctx, ops.Delete(o, "loose"))
	assert.Equal(t, value.True, v)
	assert.False(t, ctx.Store().HasProperty(o, "loose"))
	assert.True(t, ctx.Store().HasProperty(o, "fixed"))
}

func TestArrays(t *testing.T) {
	ctx := builtin.NewContext(builtin.Options{})
	a, ctx := ops.NewArrayIn(ctx, []value.Value{value.Number(1), value.Number(2)})
	assert.True(t, ops.IsArray(ctx.Store(), a))
	assert.Equal(t, uint32(2), ops.Length(ctx.Store(), a))

	_, _, ctx = run(t, ctx, ops.Put(a, "4", value.Number(5)))
	assert.Equal(t, uint32(5), ops.Length(ctx.Store(), a))
	_, _, ctx = run(t, ctx, ops.Put(a, "length", value.Number(1)))
	vals, ok := ops.ArrayValues(ctx.Store(), a)
	require.True(t, ok)
	assert.Equal(t, []value.Value{value.Number(1)}, vals)

	_, _, ctx = run(t, ctx, ops.Put(a, "length", value.Number(4294967295)))
	assert.Equal(t, uint32(4294967295), ops.Length(ctx.Store(), a))
	_, ok = ops.ArrayValues(ctx.Store(), a)
	assert.False(t, ok)
}
