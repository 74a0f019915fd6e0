package builtin

import (
	"math"
	"math/rand"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func (b *builder) installMath() {
	m := b.object("Math", b.realm.ObjectPrototype)
	b.hidden(b.realm.Global, "Math", m)

	for name, c := range map[string]float64{
		"PI":      math.Pi,
		"E":       math.E,
		"LN2":     math.Ln2,
		"LN10":    math.Ln10,
		"LOG2E":   math.Log2E,
		"LOG10E":  math.Log10E,
		"SQRT2":   math.Sqrt2,
		"SQRT1_2": math.Sqrt2 / 2,
	} {
		b.constant(m, name, value.Number(c))
	}

	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"sqrt":  math.Sqrt,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"exp":   math.Exp,
		"log":   math.Log,
		"round": func(x float64) float64 {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return x
			}
			return math.Floor(x + 0.5)
		},
	}
	for name, f := range unary {
		f := f
		b.method(m, name, 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Then(ops.ToNumber(call.Arg(0)), func(x value.Number, _ compute.Context) compute.Computation {
				return compute.Just(value.Number(f(float64(x))))
			})
		})
	}
	binary := map[string]func(float64, float64) float64{
		"pow":   math.Pow,
		"atan2": math.Atan2,
	}
	for name, f := range binary {
		f := f
		b.method(m, name, 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Then(ops.ToNumber(call.Arg(0)), func(x value.Number, _ compute.Context) compute.Computation {
				return compute.Then(ops.ToNumber(call.Arg(1)), func(y value.Number, _ compute.Context) compute.Computation {
					return compute.Just(value.Number(f(float64(x), float64(y))))
				})
			})
		})
	}
	extremum := func(init float64, better func(x, best float64) bool) ops.NativeFn {
		return func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Then(each(call.Args, func(_ int, v value.Value) compute.Computation {
				return ops.ToNumber(v)
			}), func(ns []any, _ compute.Context) compute.Computation {
				best := init
				for _, n := range ns {
					x := float64(n.(value.Number))
					if math.IsNaN(x) {
						return compute.Just(value.Number(math.NaN()))
					}
					if better(x, best) {
						best = x
					}
				}
				return compute.Just(value.Number(best))
			})
		}
	}
	b.method(m, "max", 2, extremum(math.Inf(-1), func(x, best float64) bool { return x > best }))
	b.method(m, "min", 2, extremum(math.Inf(1), func(x, best float64) bool { return x < best }))
	b.method(m, "random", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Just(value.Number(rand.Float64()))
	})
}
