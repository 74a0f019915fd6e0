package interp

import (
	"fmt"

	"github.com/timewinder-dev/ecmastep/completion"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

// ThrowError is a script error that reached the host. Context is the
// context the run ended in, after every call unwound. Site is the context
// the value was thrown in.
type ThrowError struct {
	Value   value.Value
	Context compute.Context
	Site    compute.Context
	Message string
}

// Location is the statement the value was thrown from.
func (e *ThrowError) Location() compute.Point { return e.Site.Location() }

// Frames lists the calls active at the throw, innermost first.
func (e *ThrowError) Frames() []*compute.Frame { return e.Site.Stack().Frames() }

func (e *ThrowError) Error() string {
	at := e.Location()
	if at.IsZero() {
		return "uncaught " + e.Message
	}
	return fmt.Sprintf("uncaught %s (at %s)", e.Message, at)
}

// Classify turns a failure payload into a Go error: a *ThrowError for
// script errors and a *compute.FatalError for everything else.
func Classify(failure any, ctx compute.Context) error {
	switch f := failure.(type) {
	case *compute.FatalError:
		return f
	case error:
		return &compute.FatalError{Err: f}
	}
	if c, ok := failure.(completion.Completion); ok && c.Kind == completion.KindThrow {
		site := ctx
		if c.Site != nil {
			site = *c.Site
		}
		return &ThrowError{Value: c.Value, Context: ctx, Site: site, Message: ops.Describe(ctx.Store(), c.Value)}
	}
	return &compute.FatalError{Err: fmt.Errorf("unexpected failure %v", failure)}
}

// AsValue reads a success result as a script value.
func AsValue(result any) value.Value {
	switch r := result.(type) {
	case value.Value:
		return r
	case completion.Completion:
		return r.ValueOf()
	}
	return value.Undefined{}
}

// RunToEnd runs c to its end and returns the result together with the final
// context.
func RunToEnd(c compute.Computation, ctx compute.Context) (value.Value, compute.Context, error) {
	return Run(c, ctx, 0)
}

// Run is RunToEnd with a step budget.
func Run(c compute.Computation, ctx compute.Context, limit int) (value.Value, compute.Context, error) {
	var (
		result value.Value
		final  compute.Context
		err    error
	)
	InterpretLimited(c, ctx, limit,
		func(v any, ctx compute.Context) Next {
			result, final = AsValue(v), ctx
			return nil
		},
		func(e any, ctx compute.Context) Next {
			final, err = ctx, Classify(e, ctx)
			return nil
		})
	return result, final, err
}
