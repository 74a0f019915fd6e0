package builtin

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func undefined() compute.Computation { return compute.Just(value.Undefined{}) }

func objectArg(ctx compute.Context, v value.Value, fn string) (value.Object, env.Object, bool) {
	o, ok := v.(value.Object)
	if !ok {
		return 0, env.Object{}, false
	}
	obj, ok := ctx.Store().Object(o)
	return o, obj, ok
}

func notObject(fn string) compute.Computation {
	return ops.ThrowTypeError("%s called on non-object", fn)
}

// each runs f over vals in order and yields the collected results.
func each(vals []value.Value, f func(i int, v value.Value) compute.Computation) compute.Computation {
	cs := make([]compute.Computation, len(vals))
	for i, v := range vals {
		i, v := i, v
		cs[i] = compute.WithContext(func(compute.Context) compute.Computation { return f(i, v) })
	}
	return compute.Enumeration(cs...)
}

// strings converts every value with ToString.
func strs(vals []value.Value, nullishEmpty bool) compute.Computation {
	return compute.Map(each(vals, func(_ int, v value.Value) compute.Computation {
		if nullishEmpty && value.IsNullish(v) {
			return compute.Just(value.String(""))
		}
		return ops.ToString(v)
	}), func(v any) any {
		vs := v.([]any)
		out := make([]string, len(vs))
		for i, s := range vs {
			out[i] = string(s.(value.String))
		}
		return out
	})
}

// integerArg converts argument n to an integer, using def when it is
// undefined.
func integerArg(call ops.Invocation, n int, def float64) compute.Computation {
	v := call.Arg(n)
	if _, ok := v.(value.Undefined); ok {
		return compute.Just(def)
	}
	return compute.Then(ops.ToNumber(v), func(x value.Number, _ compute.Context) compute.Computation {
		return compute.Just(value.ToInteger(float64(x)))
	})
}

// relativeIndex clamps a possibly negative index against length.
func relativeIndex(rel float64, length int) int {
	if rel < 0 {
		rel += float64(length)
		if rel < 0 {
			return 0
		}
		return int(rel)
	}
	if rel > float64(length) {
		return length
	}
	return int(rel)
}
