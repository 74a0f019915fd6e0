package builtin

import (
	"strconv"
	"strings"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func (b *builder) installArray() {
	proto := b.object("Array", b.realm.ObjectPrototype)
	b.set(proto, "length", envLength(0))
	b.realm.ArrayPrototype = proto

	construct := func(ctx compute.Context, call ops.Invocation) compute.Computation {
		if len(call.Args) == 1 {
			if n, ok := call.Args[0].(value.Number); ok {
				size := value.ToUint32(float64(n))
				if float64(size) != float64(n) {
					return ops.ThrowRangeError("Invalid array length")
				}
				return ops.NewSparseArray(size)
			}
		}
		return ops.NewArray(call.Args)
	}
	ctor := b.constructor("Array", 1, proto, construct, construct)
	b.method(ctor, "isArray", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Just(value.Boolean(ops.IsArray(ctx.Store(), call.Arg(0))))
	})

	b.method(proto, "push", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			n := len(vals)
			cs := make([]compute.Computation, 0, len(call.Args)+1)
			for i, a := range call.Args {
				cs = append(cs, ops.Put(o, strconv.Itoa(n+i), a))
			}
			length := value.Number(n + len(call.Args))
			cs = append(cs, ops.Put(o, "length", length))
			return compute.Bind(compute.Sequence(cs...), func(any, compute.Context) compute.Computation {
				return compute.Just(length)
			})
		})
	})
	b.method(proto, "pop", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			if len(vals) == 0 {
				return compute.Bind(ops.Put(o, "length", value.Number(0)), func(any, compute.Context) compute.Computation {
					return undefined()
				})
			}
			last := vals[len(vals)-1]
			return compute.Bind(compute.Sequence(
				ops.Delete(o, strconv.Itoa(len(vals)-1)),
				ops.Put(o, "length", value.Number(len(vals)-1)),
			), func(any, compute.Context) compute.Computation {
				return compute.Just(last)
			})
		})
	})
	b.method(proto, "shift", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			if len(vals) == 0 {
				return undefined()
			}
			return compute.Bind(rewrite(o, vals[1:]), func(any, compute.Context) compute.Computation {
				return compute.Just(vals[0])
			})
		})
	})
	b.method(proto, "unshift", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			next := append(append([]value.Value{}, call.Args...), vals...)
			return compute.Bind(rewrite(o, next), func(any, compute.Context) compute.Computation {
				return compute.Just(value.Number(len(next)))
			})
		})
	})
	b.method(proto, "reverse", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			rev := make([]value.Value, len(vals))
			for i, v := range vals {
				rev[len(vals)-1-i] = v
			}
			return compute.Bind(rewrite(o, rev), func(any, compute.Context) compute.Computation {
				return compute.Just(o)
			})
		})
	})
	join := func(call ops.Invocation, sep value.Value) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			sepC := compute.Just(value.String(","))
			if _, ok := sep.(value.Undefined); !ok {
				sepC = ops.ToString(sep)
			}
			return compute.Then(sepC, func(s value.String, _ compute.Context) compute.Computation {
				return compute.Then(strs(vals, true), func(parts []string, _ compute.Context) compute.Computation {
					return compute.Just(value.String(strings.Join(parts, string(s))))
				})
			})
		})
	}
	b.method(proto, "join", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return join(call, call.Arg(0))
	})
	b.method(proto, "toString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return join(call, value.Undefined{})
	})
	b.method(proto, "indexOf", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			return compute.Then(integerArg(call, 1, 0), func(from float64, _ compute.Context) compute.Computation {
				for i := relativeIndex(from, len(vals)); i < len(vals); i++ {
					if value.StrictEquals(vals[i], call.Arg(0)) {
						return compute.Just(value.Number(i))
					}
				}
				return compute.Just(value.Number(-1))
			})
		})
	})
	b.method(proto, "lastIndexOf", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			for i := len(vals) - 1; i >= 0; i-- {
				if value.StrictEquals(vals[i], call.Arg(0)) {
					return compute.Just(value.Number(i))
				}
			}
			return compute.Just(value.Number(-1))
		})
	})
	b.method(proto, "slice", 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			return compute.Then(integerArg(call, 0, 0), func(start float64, _ compute.Context) compute.Computation {
				return compute.Then(integerArg(call, 1, float64(len(vals))), func(end float64, _ compute.Context) compute.Computation {
					from, to := relativeIndex(start, len(vals)), relativeIndex(end, len(vals))
					if to < from {
						to = from
					}
					return ops.NewArray(append([]value.Value{}, vals[from:to]...))
				})
			})
		})
	})
	b.method(proto, "concat", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			out := append([]value.Value{}, vals...)
			for _, a := range call.Args {
				if ops.IsArray(ctx.Store(), a) {
					more, ok := ops.ArrayValues(ctx.Store(), a.(value.Object))
					if !ok || len(out)+len(more) > ops.MaxDenseLength {
						return ops.ThrowRangeError("Invalid array length")
					}
					out = append(out, more...)
					continue
				}
				out = append(out, a)
			}
			return ops.NewArray(out)
		})
	})
	b.method(proto, "forEach", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return iterate(call, "forEach", func(o value.Object, vals, results []value.Value) compute.Computation {
			return undefined()
		})
	})
	b.method(proto, "map", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return iterate(call, "map", func(o value.Object, vals, results []value.Value) compute.Computation {
			return ops.NewArray(results)
		})
	})
	b.method(proto, "filter", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return iterate(call, "filter", func(o value.Object, vals, results []value.Value) compute.Computation {
			var kept []value.Value
			for i, r := range results {
				if value.ToBoolean(r) {
					kept = append(kept, vals[i])
				}
			}
			return ops.NewArray(kept)
		})
	})
	b.method(proto, "some", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return iterate(call, "some", func(o value.Object, vals, results []value.Value) compute.Computation {
			for _, r := range results {
				if value.ToBoolean(r) {
					return compute.Just(value.True)
				}
			}
			return compute.Just(value.False)
		})
	})
	b.method(proto, "every", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return iterate(call, "every", func(o value.Object, vals, results []value.Value) compute.Computation {
			for _, r := range results {
				if !value.ToBoolean(r) {
					return compute.Just(value.False)
				}
			}
			return compute.Just(value.True)
		})
	})
	b.method(proto, "reduce", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
			fn := call.Arg(0)
			if !ops.IsCallable(ctx.Store(), fn) {
				return ops.ThrowTypeError("%s is not a function", ops.Describe(ctx.Store(), fn))
			}
			start := 0
			var acc value.Value
			if len(call.Args) > 1 {
				acc = call.Args[1]
			} else {
				if len(vals) == 0 {
					return ops.ThrowTypeError("Reduce of empty array with no initial value")
				}
				acc, start = vals[0], 1
			}
			var step func(i int, acc value.Value) compute.Computation
			step = func(i int, acc value.Value) compute.Computation {
				if i >= len(vals) {
					return compute.Just(acc)
				}
				args := []value.Value{acc, vals[i], value.Number(i), o}
				return compute.Then(ops.Call(fn, value.Undefined{}, args), func(next value.Value, _ compute.Context) compute.Computation {
					return step(i+1, next)
				})
			}
			return step(start, acc)
		})
	})
}

func envLength(n int) env.Property {
	return env.Property{Value: value.Number(n), Writable: true}
}

// withThisArray converts this to an object and reads its elements.
func withThisArray(call ops.Invocation, f func(o value.Object, vals []value.Value) compute.Computation) compute.Computation {
	return compute.Then(ops.ToObject(call.This), func(o value.Object, _ compute.Context) compute.Computation {
		return ops.Elements(o, func(vals []value.Value, _ compute.Context) compute.Computation {
			return f(o, vals)
		})
	})
}

// rewrite replaces the elements of o with vals.
func rewrite(o value.Object, vals []value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		old := ops.Length(ctx.Store(), o)
		var cs []compute.Computation
		for i, v := range vals {
			cs = append(cs, ops.Put(o, strconv.Itoa(i), v))
		}
		for i := len(vals); i < int(old); i++ {
			cs = append(cs, ops.Delete(o, strconv.Itoa(i)))
		}
		cs = append(cs, ops.Put(o, "length", value.Number(len(vals))))
		return compute.Sequence(cs...)
	})
}

// iterate calls the callback argument on every element in order and hands
// the callback results to done.
func iterate(call ops.Invocation, name string, done func(o value.Object, vals, results []value.Value) compute.Computation) compute.Computation {
	return withThisArray(call, func(o value.Object, vals []value.Value) compute.Computation {
		fn, thisArg := call.Arg(0), call.Arg(1)
		return compute.WithContext(func(ctx compute.Context) compute.Computation {
			if !ops.IsCallable(ctx.Store(), fn) {
				return ops.ThrowTypeError("%s is not a function", ops.Describe(ctx.Store(), fn))
			}
			calls := each(vals, func(i int, v value.Value) compute.Computation {
				return ops.Call(fn, thisArg, []value.Value{v, value.Number(i), o})
			})
			return compute.Then(calls, func(rs []any, _ compute.Context) compute.Computation {
				results := make([]value.Value, len(rs))
				for i, r := range rs {
					results[i] = r.(value.Value)
				}
				return done(o, vals, results)
			})
		})
	})
}
