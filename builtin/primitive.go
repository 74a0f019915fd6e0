package builtin

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

// thisPrimitive unwraps this for the methods of a primitive prototype.
func thisPrimitive(ctx compute.Context, this value.Value, t value.Type) (value.Value, bool) {
	if this.Type() == t {
		return this, true
	}
	o, ok := this.(value.Object)
	if !ok {
		return nil, false
	}
	obj, ok := ctx.Store().Object(o)
	if !ok || obj.Primitive == nil || obj.Primitive.Type() != t {
		return nil, false
	}
	return obj.Primitive, true
}

func wrapped(prim value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		o, ctx := ops.Wrap(ctx, prim)
		return compute.Put(ctx, o)
	})
}

func (b *builder) primitiveProto(class string, prim value.Value) value.Object {
	proto := b.object(class, b.realm.ObjectPrototype)
	obj := b.get(proto)
	obj.Primitive = prim
	b.store = b.store.PutObject(proto, obj)
	return proto
}

func (b *builder) installPrimitives() {
	b.installBoolean()
	b.installNumber()
	b.installString()
}

func (b *builder) installBoolean() {
	proto := b.primitiveProto("Boolean", value.False)
	b.realm.BooleanPrototype = proto
	b.constructor("Boolean", 1, proto,
		func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Just(value.Boolean(value.ToBoolean(call.Arg(0))))
		},
		func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return wrapped(value.Boolean(value.ToBoolean(call.Arg(0))))
		})
	b.method(proto, "toString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeBoolean)
		if !ok {
			return ops.ThrowTypeError("Boolean.prototype.toString requires that 'this' be a Boolean")
		}
		return compute.Just(value.String(value.StringOf(v)))
	})
	b.method(proto, "valueOf", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeBoolean)
		if !ok {
			return ops.ThrowTypeError("Boolean.prototype.valueOf requires that 'this' be a Boolean")
		}
		return compute.Just(v)
	})
}

func (b *builder) installNumber() {
	proto := b.primitiveProto("Number", value.Number(0))
	b.realm.NumberPrototype = proto
	toNumber := func(call ops.Invocation) compute.Computation {
		if len(call.Args) == 0 {
			return compute.Just(value.Number(0))
		}
		return ops.ToNumber(call.Args[0])
	}
	ctor := b.constructor("Number", 1, proto,
		func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return toNumber(call)
		},
		func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Then(toNumber(call), func(n value.Number, ctx compute.Context) compute.Computation {
				return wrapped(n)
			})
		})
	b.constant(ctor, "NaN", value.Number(math.NaN()))
	b.constant(ctor, "MAX_VALUE", value.Number(math.MaxFloat64))
	b.constant(ctor, "MIN_VALUE", value.Number(math.SmallestNonzeroFloat64))
	b.constant(ctor, "POSITIVE_INFINITY", value.Number(math.Inf(1)))
	b.constant(ctor, "NEGATIVE_INFINITY", value.Number(math.Inf(-1)))

	b.method(proto, "toString", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeNumber)
		if !ok {
			return ops.ThrowTypeError("Number.prototype.toString requires that 'this' be a Number")
		}
		return compute.Then(integerArg(call, 0, 10), func(radix float64, _ compute.Context) compute.Computation {
			f := float64(v.(value.Number))
			if radix < 2 || radix > 36 {
				return ops.ThrowRangeError("toString() radix must be between 2 and 36")
			}
			if radix == 10 || f != math.Trunc(f) || math.IsInf(f, 0) {
				return compute.Just(value.String(value.FormatNumber(f)))
			}
			return compute.Just(value.String(strconv.FormatInt(int64(f), int(radix))))
		})
	})
	b.method(proto, "valueOf", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeNumber)
		if !ok {
			return ops.ThrowTypeError("Number.prototype.valueOf requires that 'this' be a Number")
		}
		return compute.Just(v)
	})
	b.method(proto, "toFixed", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeNumber)
		if !ok {
			return ops.ThrowTypeError("Number.prototype.toFixed requires that 'this' be a Number")
		}
		return compute.Then(integerArg(call, 0, 0), func(digits float64, _ compute.Context) compute.Computation {
			if digits < 0 || digits > 20 {
				return ops.ThrowRangeError("toFixed() digits argument must be between 0 and 20")
			}
			f := float64(v.(value.Number))
			if math.IsNaN(f) || math.Abs(f) >= 1e21 {
				return compute.Just(value.String(value.FormatNumber(f)))
			}
			return compute.Just(value.String(strconv.FormatFloat(f, 'f', int(digits), 64)))
		})
	})
}

func (b *builder) installString() {
	proto := b.primitiveProto("String", value.String(""))
	b.set(proto, "length", env.Property{Value: value.Number(0)})
	b.realm.StringPrototype = proto
	toStr := func(call ops.Invocation) compute.Computation {
		if len(call.Args) == 0 {
			return compute.Just(value.String(""))
		}
		return ops.ToString(call.Args[0])
	}
	ctor := b.constructor("String", 1, proto,
		func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return toStr(call)
		},
		func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Then(toStr(call), func(s value.String, ctx compute.Context) compute.Computation {
				return wrapped(s)
			})
		})
	b.method(ctor, "fromCharCode", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(each(call.Args, func(_ int, v value.Value) compute.Computation {
			return ops.ToNumber(v)
		}), func(ns []any, _ compute.Context) compute.Computation {
			u := make([]uint16, len(ns))
			for i, n := range ns {
				u[i] = uint16(value.ToUint32(float64(n.(value.Number))))
			}
			return compute.Just(value.String(string(utf16.Decode(u))))
		})
	})

	// method defines a String.prototype method over the string value of
	// this.
	method := func(name string, arity int, f func(s string, call ops.Invocation) compute.Computation) {
		b.method(proto, name, arity, func(ctx compute.Context, call ops.Invocation) compute.Computation {
			if value.IsNullish(call.This) {
				return ops.ThrowTypeError("String.prototype.%s called on null or undefined", name)
			}
			return compute.Then(ops.ToString(call.This), func(s value.String, _ compute.Context) compute.Computation {
				return f(string(s), call)
			})
		})
	}
	strArg := func(call ops.Invocation, n int) compute.Computation {
		return ops.ToString(call.Arg(n))
	}

	b.method(proto, "toString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeString)
		if !ok {
			return ops.ThrowTypeError("String.prototype.toString requires that 'this' be a String")
		}
		return compute.Just(v)
	})
	b.method(proto, "valueOf", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := thisPrimitive(ctx, call.This, value.TypeString)
		if !ok {
			return ops.ThrowTypeError("String.prototype.valueOf requires that 'this' be a String")
		}
		return compute.Just(v)
	})
	method("charAt", 1, func(s string, call ops.Invocation) compute.Computation {
		return compute.Then(integerArg(call, 0, 0), func(pos float64, _ compute.Context) compute.Computation {
			ch, _ := ops.CharAt(s, int(pos))
			return compute.Just(value.String(ch))
		})
	})
	method("charCodeAt", 1, func(s string, call ops.Invocation) compute.Computation {
		return compute.Then(integerArg(call, 0, 0), func(pos float64, _ compute.Context) compute.Computation {
			u := utf16.Encode([]rune(s))
			if pos < 0 || int(pos) >= len(u) {
				return compute.Just(value.Number(math.NaN()))
			}
			return compute.Just(value.Number(u[int(pos)]))
		})
	})
	method("indexOf", 1, func(s string, call ops.Invocation) compute.Computation {
		return compute.Then(strArg(call, 0), func(needle value.String, _ compute.Context) compute.Computation {
			return compute.Just(value.Number(unitIndex(s, strings.Index(s, string(needle)))))
		})
	})
	method("lastIndexOf", 1, func(s string, call ops.Invocation) compute.Computation {
		return compute.Then(strArg(call, 0), func(needle value.String, _ compute.Context) compute.Computation {
			return compute.Just(value.Number(unitIndex(s, strings.LastIndex(s, string(needle)))))
		})
	})
	slice := func(s string, from, to int) value.String {
		u := utf16.Encode([]rune(s))
		if to < from {
			to = from
		}
		return value.String(string(utf16.Decode(u[from:to])))
	}
	method("slice", 2, func(s string, call ops.Invocation) compute.Computation {
		n := ops.StringLength(s)
		return compute.Then(integerArg(call, 0, 0), func(start float64, _ compute.Context) compute.Computation {
			return compute.Then(integerArg(call, 1, float64(n)), func(end float64, _ compute.Context) compute.Computation {
				return compute.Just(slice(s, relativeIndex(start, n), relativeIndex(end, n)))
			})
		})
	})
	method("substring", 2, func(s string, call ops.Invocation) compute.Computation {
		n := ops.StringLength(s)
		clamp := func(f float64) int { return int(math.Min(math.Max(f, 0), float64(n))) }
		return compute.Then(integerArg(call, 0, 0), func(start float64, _ compute.Context) compute.Computation {
			return compute.Then(integerArg(call, 1, float64(n)), func(end float64, _ compute.Context) compute.Computation {
				from, to := clamp(start), clamp(end)
				if from > to {
					from, to = to, from
				}
				return compute.Just(slice(s, from, to))
			})
		})
	})
	method("toUpperCase", 0, func(s string, _ ops.Invocation) compute.Computation {
		return compute.Just(value.String(strings.ToUpper(s)))
	})
	method("toLowerCase", 0, func(s string, _ ops.Invocation) compute.Computation {
		return compute.Just(value.String(strings.ToLower(s)))
	})
	method("trim", 0, func(s string, _ ops.Invocation) compute.Computation {
		return compute.Just(value.String(strings.TrimSpace(s)))
	})
	method("concat", 1, func(s string, call ops.Invocation) compute.Computation {
		return compute.Then(strs(call.Args, false), func(parts []string, _ compute.Context) compute.Computation {
			return compute.Just(value.String(s + strings.Join(parts, "")))
		})
	})
	method("split", 2, func(s string, call ops.Invocation) compute.Computation {
		sep := call.Arg(0)
		return compute.Then(integerArg(call, 1, math.MaxUint32), func(limit float64, _ compute.Context) compute.Computation {
			if _, ok := sep.(value.Undefined); ok {
				return ops.NewArray([]value.Value{value.String(s)})
			}
			return compute.Then(ops.ToString(sep), func(sepStr value.String, _ compute.Context) compute.Computation {
				var parts []string
				if sepStr == "" {
					for _, u := range utf16.Encode([]rune(s)) {
						parts = append(parts, string(utf16.Decode([]uint16{u})))
					}
				} else {
					parts = strings.Split(s, string(sepStr))
				}
				var out []value.Value
				for _, p := range parts {
					if float64(len(out)) >= limit {
						break
					}
					out = append(out, value.String(p))
				}
				return ops.NewArray(out)
			})
		})
	})
}

// unitIndex converts a byte offset into s to a UTF-16 offset.
func unitIndex(s string, byteIdx int) int {
	if byteIdx < 0 {
		return -1
	}
	return ops.StringLength(s[:byteIdx])
}
