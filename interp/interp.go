// Package interp drives computations to a final outcome with a trampoline.
// Evaluation happens on an explicit machine, so the depth of the Go stack
// does not depend on how deeply the script nests.
package interp

import (
	"errors"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/logging"
)

// Next is one bounce of the trampoline. A nil Next ends the loop.
type Next func() Next

// Callback receives the outcome of a run. It returns the next bounce instead
// of acting on it directly, so the trampoline keeps the Go stack flat.
type Callback func(result any, ctx compute.Context) Next

// Bounce is the number of machine transitions taken per trampoline bounce.
const Bounce = 1024

var ErrStepLimit = errors.New("step limit exceeded")

// Noop is a callback that ends the run.
func Noop(any, compute.Context) Next { return nil }

// Trampoline invokes next, then whatever it returns, until nil.
func Trampoline(next Next) {
	for next != nil {
		next = next()
	}
}

// Interpret runs c from ctx. Exactly one of ok and fail is invoked, exactly
// once. The failure payload is either a completion.Completion carrying a
// thrown value or a *compute.FatalError.
func Interpret(c compute.Computation, ctx compute.Context, ok, fail Callback) {
	InterpretLimited(c, ctx, 0, ok, fail)
}

// InterpretLimited is Interpret with a budget of machine transitions. Zero
// means no budget. Exhausting the budget fails the run with an engine error
// wrapping ErrStepLimit.
func InterpretLimited(c compute.Computation, ctx compute.Context, limit int, ok, fail Callback) {
	logging.Logger().Trace().Int("limit", limit).Msg("interpret: start")
	Trampoline(Drive(compute.Start(c, ctx), limit, ok, fail))
}

// Drive returns the bounce that advances m until it is done and then
// invokes the matching callback.
func Drive(m compute.Machine, limit int, ok, fail Callback) Next {
	return func() Next {
		for n := 0; n < Bounce && !m.Done(); n++ {
			if limit > 0 && m.Steps() >= limit {
				logging.Logger().Trace().Int("steps", m.Steps()).Msg("interpret: step limit")
				return func() Next {
					return fail(&compute.FatalError{Err: ErrStepLimit}, m.Context())
				}
			}
			m = m.Step()
		}
		if !m.Done() {
			return Drive(m, limit, ok, fail)
		}
		return Settle(m, ok, fail)
	}
}

// Settle hands the outcome of a finished machine to ok or fail.
func Settle(m compute.Machine, ok, fail Callback) Next {
	v, err := m.Result()
	logging.Logger().Trace().Int("steps", m.Steps()).Bool("failed", m.Failed()).Msg("interpret: done")
	switch {
	case err != nil:
		return func() Next { return fail(err, m.Context()) }
	case m.Failed():
		return func() Next { return fail(v, m.Context()) }
	}
	return func() Next { return ok(v, m.Context()) }
}
