// Package compute defines suspendable computations: immutable descriptions
// of work that a Machine evaluates one transition at a time.
package compute

import (
	"fmt"

	"github.com/timewinder-dev/ecmastep/value"
)

// Computation is a closed set of variants. Building one never runs it and
// running one never changes it, so a computation can be evaluated any number
// of times.
type Computation interface {
	isComputation()
}

// Func continues a computation with the value produced so far and the
// context at that point.
type Func func(v any, ctx Context) Computation

type just struct{ v any }

type failure struct{ v any }

type fatal struct{ err error }

type bind struct {
	c Computation
	f Func
}

type either struct {
	c    Computation
	ok   Func
	fail Func
}

type branch struct {
	cond Computation
	then Computation
	els  Computation
}

type sequence struct{ cs []Computation }

type enumeration struct{ cs []Computation }

type withContext struct{ f func(Context) Computation }

type put struct {
	ctx Context
	v   any
}

type mark struct {
	at Point
	c  Computation
}

func (just) isComputation()        {}
func (failure) isComputation()     {}
func (fatal) isComputation()       {}
func (bind) isComputation()        {}
func (either) isComputation()      {}
func (branch) isComputation()      {}
func (sequence) isComputation()    {}
func (enumeration) isComputation() {}
func (withContext) isComputation() {}
func (put) isComputation()         {}
func (mark) isComputation()        {}

// Just completes immediately with v.
func Just(v any) Computation { return just{v} }

// Fail completes with a script-level failure carrying v. Failures propagate
// outward until an Either handles them.
func Fail(v any) Computation { return failure{v} }

// Fatal aborts evaluation with an engine error. No Either handler sees it.
func Fatal(err error) Computation { return fatal{err} }

func Fatalf(format string, args ...any) Computation {
	return fatal{fmt.Errorf(format, args...)}
}

// Bind runs c and passes its value to f. A failure of c skips f.
func Bind(c Computation, f Func) Computation { return bind{c, f} }

// Either runs c and continues with ok on success or fail on failure. A nil
// handler passes the outcome through unchanged.
func Either(c Computation, ok, fail Func) Computation { return either{c, ok, fail} }

// Branch evaluates cond and continues with then when the result is truthy.
// Script values are tested with ToBoolean; Go booleans are used as is.
func Branch(cond, then, els Computation) Computation { return branch{cond, then, els} }

// Sequence runs cs in order and yields the value of the last one, or
// undefined when cs is empty.
func Sequence(cs ...Computation) Computation { return sequence{cs} }

// Enumeration runs cs in order and yields their values as a []any.
func Enumeration(cs ...Computation) Computation { return enumeration{cs} }

// WithContext reads the current context.
func WithContext(f func(Context) Computation) Computation { return withContext{f} }

// Put replaces the current context and yields v.
func Put(ctx Context, v any) Computation { return put{ctx, v} }

// Mark wraps c in a statement boundary at the given point. Evaluation may
// be suspended before a boundary; the debugger pauses there.
func Mark(at Point, c Computation) Computation { return mark{at, c} }

// Modify applies f to the current context and yields v.
func Modify(f func(Context) Context, v any) Computation {
	return withContext{func(ctx Context) Computation {
		return put{f(ctx), v}
	}}
}

// Then is Bind with a typed continuation. A value of the wrong type is an
// engine error.
func Then[T any](c Computation, f func(T, Context) Computation) Computation {
	return bind{c, func(v any, ctx Context) Computation {
		t, ok := v.(T)
		if !ok {
			return Fatalf("compute: expected %T, got %T", t, v)
		}
		return f(t, ctx)
	}}
}

// Collect runs cs in order and passes their typed values to f.
func Collect[T any](cs []Computation, f func([]T, Context) Computation) Computation {
	return bind{enumeration{cs}, func(v any, ctx Context) Computation {
		vs := v.([]any)
		out := make([]T, len(vs))
		for i, x := range vs {
			t, ok := x.(T)
			if !ok {
				return Fatalf("compute: element %d: expected %T, got %T", i, t, x)
			}
			out[i] = t
		}
		return f(out, ctx)
	}}
}

// Map transforms the value of c.
func Map(c Computation, f func(any) any) Computation {
	return bind{c, func(v any, _ Context) Computation {
		return just{f(v)}
	}}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case value.Value:
		return value.ToBoolean(v)
	}
	return v != nil
}

// Guard runs c and applies restore to the context however c completes. A
// failure is raised again once the context is restored.
func Guard(c Computation, restore func(Context) Context) Computation {
	return either{c,
		func(v any, ctx Context) Computation {
			return put{restore(ctx), v}
		},
		func(e any, ctx Context) Computation {
			return bind{put{restore(ctx), nil}, func(any, Context) Computation {
				return failure{e}
			}}
		}}
}

// Enter replaces the current context with ctx before running c.
func Enter(ctx Context, c Computation) Computation {
	return bind{put{ctx, nil}, func(any, Context) Computation { return c }}
}
