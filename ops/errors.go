package ops

import (
	"fmt"
	"strconv"

	"github.com/timewinder-dev/ecmastep/completion"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

const (
	Error          = "Error"
	TypeError      = "TypeError"
	ReferenceError = "ReferenceError"
	RangeError     = "RangeError"
	SyntaxError    = "SyntaxError"
	EvalError      = "EvalError"
)

// NewError allocates an error object whose prototype is the realm's
// prototype for name.
func NewError(ctx compute.Context, name, msg string) (value.Object, compute.Context) {
	obj := env.NewObject("Error", ctx.Realm().ErrorPrototypeFor(name))
	if msg != "" {
		obj = obj.With("message", env.Hidden(value.String(msg)))
	}
	ref, store := ctx.Store().NewObject(obj)
	return ref, ctx.WithStore(store)
}

// Throw raises a new error object of the given kind.
func Throw(name, format string, args ...any) compute.Computation {
	msg := fmt.Sprintf(format, args...)
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		obj, ctx := NewError(ctx, name, msg)
		return compute.Bind(compute.Put(ctx, nil), func(any, compute.Context) compute.Computation {
			return completion.Raise(obj)
		})
	})
}

func ThrowTypeError(format string, args ...any) compute.Computation {
	return Throw(TypeError, format, args...)
}

func ThrowReferenceError(format string, args ...any) compute.Computation {
	return Throw(ReferenceError, format, args...)
}

func ThrowRangeError(format string, args ...any) compute.Computation {
	return Throw(RangeError, format, args...)
}

func ThrowSyntaxError(format string, args ...any) compute.Computation {
	return Throw(SyntaxError, format, args...)
}

// dataValue reads a data property along the prototype chain without
// running getters.
func dataValue(store env.Store, o value.Object, key string) (value.Value, bool) {
	p, _, ok := store.FindProperty(o, key)
	if !ok || p.Accessor {
		return nil, false
	}
	return p.Value, true
}

// Describe renders v for diagnostics without running script code. Error
// objects render as "Name: message".
func Describe(store env.Store, v value.Value) string {
	switch v := v.(type) {
	case value.String:
		return strconv.Quote(string(v))
	case value.Object:
		obj, ok := store.Object(v)
		if !ok {
			return "[object]"
		}
		if obj.Call != nil {
			name := obj.Call.FunctionName()
			if name == "" {
				name = "anonymous"
			}
			return "function " + name
		}
		if obj.Class == "Error" {
			name, _ := dataValue(store, v, "name")
			msg, _ := dataValue(store, v, "message")
			n := "Error"
			if name != nil {
				n = value.StringOf(name)
			}
			if msg == nil || value.StringOf(msg) == "" {
				return n
			}
			return n + ": " + value.StringOf(msg)
		}
		if obj.Primitive != nil {
			return fmt.Sprintf("[%s: %s]", obj.Class, value.StringOf(obj.Primitive))
		}
		return "[object " + obj.Class + "]"
	}
	return value.StringOf(v)
}
