package ops

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

type Hint uint8

const (
	HintNumber Hint = iota
	HintString
)

// ToPrimitive converts objects by calling valueOf and toString in the order
// given by hint.
func ToPrimitive(v value.Value, hint Hint) compute.Computation {
	o, ok := v.(value.Object)
	if !ok {
		return compute.Just(v)
	}
	order := []string{"valueOf", "toString"}
	if hint == HintString {
		order = []string{"toString", "valueOf"}
	}
	var try func(i int) compute.Computation
	try = func(i int) compute.Computation {
		if i == len(order) {
			return ThrowTypeError("Cannot convert object to primitive value")
		}
		return compute.Then(Get(o, order[i]), func(m value.Value, ctx compute.Context) compute.Computation {
			if !IsCallable(ctx.Store(), m) {
				return try(i + 1)
			}
			return compute.Then(Call(m, o, nil), func(r value.Value, _ compute.Context) compute.Computation {
				if value.IsPrimitive(r) {
					return compute.Just(r)
				}
				return try(i + 1)
			})
		})
	}
	return try(0)
}

func ToNumber(v value.Value) compute.Computation {
	if n, ok := v.(value.Number); ok {
		return compute.Just(n)
	}
	return compute.Then(ToPrimitive(v, HintNumber), func(p value.Value, _ compute.Context) compute.Computation {
		return compute.Just(value.Number(value.NumberOf(p)))
	})
}

func ToString(v value.Value) compute.Computation {
	if s, ok := v.(value.String); ok {
		return compute.Just(s)
	}
	return compute.Then(ToPrimitive(v, HintString), func(p value.Value, _ compute.Context) compute.Computation {
		return compute.Just(value.String(value.StringOf(p)))
	})
}

// ToKey converts a property name expression value to a string key.
func ToKey(v value.Value) compute.Computation {
	switch k := v.(type) {
	case value.String:
		return compute.Just(string(k))
	case value.Number:
		return compute.Just(value.FormatNumber(float64(k)))
	}
	return compute.Then(ToString(v), func(s value.String, _ compute.Context) compute.Computation {
		return compute.Just(string(s))
	})
}

func ToObject(v value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		switch v := v.(type) {
		case value.Object:
			return compute.Just(v)
		case value.Undefined, value.Null:
			return ThrowTypeError("Cannot convert undefined or null to object")
		}
		o, ctx := Wrap(ctx, v)
		return compute.Put(ctx, o)
	})
}

// Typeof implements the typeof operator on a value.
func Typeof(store env.Store, v value.Value) string {
	switch v.(type) {
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "object"
	case value.Boolean:
		return "boolean"
	case value.Number:
		return "number"
	case value.String:
		return "string"
	}
	if IsCallable(store, v) {
		return "function"
	}
	return "object"
}
