package completion

import (
	"fmt"
	"strings"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/value"
)

// FinallyPolicy decides which completion survives when both the guarded
// block and its finally block complete abruptly.
type FinallyPolicy uint8

const (
	// FinallyOverride lets an abrupt finally replace any prior completion.
	FinallyOverride FinallyPolicy = iota
	// FinallyPreserve keeps the abrupt completion of the guarded block.
	FinallyPreserve
)

func (p FinallyPolicy) String() string {
	if p == FinallyPreserve {
		return "preserve"
	}
	return "override"
}

func ParseFinallyPolicy(s string) (FinallyPolicy, error) {
	switch strings.ToLower(s) {
	case "", "override":
		return FinallyOverride, nil
	case "preserve":
		return FinallyPreserve, nil
	}
	return FinallyOverride, fmt.Errorf("unknown finally policy %q", s)
}

// TryCatch runs block; a throw escaping it is handed to handler.
func TryCatch(block compute.Computation, handler func(thrown value.Value) compute.Computation) compute.Computation {
	return compute.Either(block, nil, func(e any, _ compute.Context) compute.Computation {
		thrown, ok := Thrown(e)
		if !ok {
			return compute.Fail(e)
		}
		return handler(thrown)
	})
}

// TryFinally runs finally after block however block completes.
func TryFinally(policy FinallyPolicy, block, finally compute.Computation) compute.Computation {
	return compute.Then(Capture(block), func(primary Completion, _ compute.Context) compute.Computation {
		return compute.Then(Capture(finally), func(f Completion, _ compute.Context) compute.Computation {
			if f.Abrupt() && (policy == FinallyOverride || !primary.Abrupt()) {
				return Release(f)
			}
			return Release(primary)
		})
	})
}

func TryCatchFinally(policy FinallyPolicy, block compute.Computation, handler func(value.Value) compute.Computation, finally compute.Computation) compute.Computation {
	return TryFinally(policy, TryCatch(block, handler), finally)
}
