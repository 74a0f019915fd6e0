package ops

import (
	"math"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/value"
)

type NumericOp uint8

const (
	Sub NumericOp = iota
	Mul
	Div
	Mod
	Shl
	Shr
	UShr
	BitAnd
	BitOr
	BitXor
)

func applyNumeric(op NumericOp, x, y float64) float64 {
	switch op {
	case Sub:
		return x - y
	case Mul:
		return x * y
	case Div:
		return x / y
	case Mod:
		return math.Mod(x, y)
	case Shl:
		return float64(value.ToInt32(x) << (value.ToUint32(y) & 31))
	case Shr:
		return float64(value.ToInt32(x) >> (value.ToUint32(y) & 31))
	case UShr:
		return float64(value.ToUint32(x) >> (value.ToUint32(y) & 31))
	case BitAnd:
		return float64(value.ToInt32(x) & value.ToInt32(y))
	case BitOr:
		return float64(value.ToInt32(x) | value.ToInt32(y))
	case BitXor:
		return float64(value.ToInt32(x) ^ value.ToInt32(y))
	}
	return math.NaN()
}

func numbers(a, b value.Value, f func(x, y float64) value.Value) compute.Computation {
	return compute.Then(ToNumber(a), func(x value.Number, _ compute.Context) compute.Computation {
		return compute.Then(ToNumber(b), func(y value.Number, _ compute.Context) compute.Computation {
			return compute.Just(f(float64(x), float64(y)))
		})
	})
}

// Arithmetic applies a numeric binary operator.
func Arithmetic(op NumericOp, a, b value.Value) compute.Computation {
	return numbers(a, b, func(x, y float64) value.Value {
		return value.Number(applyNumeric(op, x, y))
	})
}

func primitives(a, b value.Value, f func(x, y value.Value) compute.Computation) compute.Computation {
	return compute.Then(ToPrimitive(a, HintNumber), func(x value.Value, _ compute.Context) compute.Computation {
		return compute.Then(ToPrimitive(b, HintNumber), func(y value.Value, _ compute.Context) compute.Computation {
			return f(x, y)
		})
	})
}

// Add implements +, concatenating when either primitive operand is a
// string.
func Add(a, b value.Value) compute.Computation {
	if x, ok := a.(value.Number); ok {
		if y, ok := b.(value.Number); ok {
			return compute.Just(x + y)
		}
	}
	return primitives(a, b, func(x, y value.Value) compute.Computation {
		_, xs := x.(value.String)
		_, ys := y.(value.String)
		if xs || ys {
			return compute.Just(value.String(value.StringOf(x) + value.StringOf(y)))
		}
		return compute.Just(value.Number(value.NumberOf(x) + value.NumberOf(y)))
	})
}

type Relation uint8

const (
	Less Relation = iota
	LessOrEqual
	Greater
	GreaterOrEqual
)

// Compare implements the relational operators. Comparisons involving NaN
// are false.
func Compare(rel Relation, a, b value.Value) compute.Computation {
	return primitives(a, b, func(x, y value.Value) compute.Computation {
		xs, xok := x.(value.String)
		ys, yok := y.(value.String)
		if xok && yok {
			var r bool
			switch rel {
			case Less:
				r = xs < ys
			case LessOrEqual:
				r = xs <= ys
			case Greater:
				r = xs > ys
			case GreaterOrEqual:
				r = xs >= ys
			}
			return compute.Just(value.Boolean(r))
		}
		nx, ny := value.NumberOf(x), value.NumberOf(y)
		var r bool
		switch rel {
		case Less:
			r = nx < ny
		case LessOrEqual:
			r = nx <= ny
		case Greater:
			r = nx > ny
		case GreaterOrEqual:
			r = nx >= ny
		}
		return compute.Just(value.Boolean(r))
	})
}

// LooseEquals implements ==.
func LooseEquals(a, b value.Value) compute.Computation {
	if a.Type() == b.Type() {
		return compute.Just(value.Boolean(value.StrictEquals(a, b)))
	}
	if value.IsNullish(a) && value.IsNullish(b) {
		return compute.Just(value.True)
	}
	switch x := a.(type) {
	case value.Number:
		if y, ok := b.(value.String); ok {
			return compute.Just(value.Boolean(float64(x) == value.NumberOf(y)))
		}
	case value.String:
		if _, ok := b.(value.Number); ok {
			return compute.Just(value.Boolean(value.NumberOf(x) == float64(b.(value.Number))))
		}
	case value.Boolean:
		return LooseEquals(value.Number(value.NumberOf(x)), b)
	}
	if y, ok := b.(value.Boolean); ok {
		return LooseEquals(a, value.Number(value.NumberOf(y)))
	}
	_, aObj := a.(value.Object)
	_, bObj := b.(value.Object)
	switch {
	case aObj && (b.Type() == value.TypeNumber || b.Type() == value.TypeString):
		return compute.Then(ToPrimitive(a, HintNumber), func(p value.Value, _ compute.Context) compute.Computation {
			return LooseEquals(p, b)
		})
	case bObj && (a.Type() == value.TypeNumber || a.Type() == value.TypeString):
		return compute.Then(ToPrimitive(b, HintNumber), func(p value.Value, _ compute.Context) compute.Computation {
			return LooseEquals(a, p)
		})
	}
	return compute.Just(value.False)
}

// InstanceOf implements v instanceof fn.
func InstanceOf(v, fn value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		if !IsCallable(ctx.Store(), fn) {
			return ThrowTypeError("Right-hand side of 'instanceof' is not callable")
		}
		o, ok := v.(value.Object)
		if !ok {
			return compute.Just(value.False)
		}
		return compute.Then(Get(fn, "prototype"), func(p value.Value, ctx compute.Context) compute.Computation {
			proto, ok := p.(value.Object)
			if !ok {
				return ThrowTypeError("Function has non-object prototype in instanceof check")
			}
			return compute.Just(value.Boolean(InheritsFrom(ctx, o, proto)))
		})
	})
}

// InheritsFrom reports whether proto is on the prototype chain of o.
func InheritsFrom(ctx compute.Context, o, proto value.Object) bool {
	store := ctx.Store()
	cur := o
	for {
		obj, ok := store.Object(cur)
		if !ok {
			return false
		}
		next, ok := obj.Proto.(value.Object)
		if !ok {
			return false
		}
		if next == proto {
			return true
		}
		cur = next
	}
}

// In implements key in obj.
func In(key, obj value.Value) compute.Computation {
	o, ok := obj.(value.Object)
	if !ok {
		return compute.WithContext(func(ctx compute.Context) compute.Computation {
			return ThrowTypeError("Cannot use 'in' operator to search for '%s' in %s", value.StringOf(key), Describe(ctx.Store(), obj))
		})
	}
	return compute.Then(ToKey(key), func(k string, _ compute.Context) compute.Computation {
		return HasProperty(o, k)
	})
}

func Negate(v value.Value) compute.Computation {
	return compute.Then(ToNumber(v), func(n value.Number, _ compute.Context) compute.Computation {
		return compute.Just(-n)
	})
}

func BitNot(v value.Value) compute.Computation {
	return compute.Then(ToNumber(v), func(n value.Number, _ compute.Context) compute.Computation {
		return compute.Just(value.Number(^value.ToInt32(float64(n))))
	})
}
