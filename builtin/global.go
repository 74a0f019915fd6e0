package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/inspect"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func (b *builder) installGlobals() {
	g := b.realm.Global
	b.constant(g, "undefined", value.Undefined{})
	b.constant(g, "NaN", value.Number(math.NaN()))
	b.constant(g, "Infinity", value.Number(math.Inf(1)))

	numberPredicate := func(pred func(float64) bool) ops.NativeFn {
		return func(ctx compute.Context, call ops.Invocation) compute.Computation {
			return compute.Then(ops.ToNumber(call.Arg(0)), func(n value.Number, _ compute.Context) compute.Computation {
				return compute.Just(value.Boolean(pred(float64(n))))
			})
		}
	}
	b.method(g, "isNaN", 1, numberPredicate(math.IsNaN))
	b.method(g, "isFinite", 1, numberPredicate(func(f float64) bool {
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}))
	b.method(g, "parseInt", 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(ops.ToString(call.Arg(0)), func(s value.String, _ compute.Context) compute.Computation {
			return compute.Then(integerArg(call, 1, 0), func(radix float64, _ compute.Context) compute.Computation {
				return compute.Just(value.Number(parseInt(string(s), int(radix))))
			})
		})
	})
	b.method(g, "parseFloat", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(ops.ToString(call.Arg(0)), func(s value.String, _ compute.Context) compute.Computation {
			return compute.Just(value.Number(parseFloat(string(s))))
		})
	})

	b.method(g, "print", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(strs(call.Args, false), func(parts []string, ctx compute.Context) compute.Computation {
			fmt.Fprintln(ctx.Realm().Output, strings.Join(parts, " "))
			return undefined()
		})
	})
	console := b.object("Object", b.realm.ObjectPrototype)
	b.hidden(g, "console", console)
	logger := func(ctx compute.Context, call ops.Invocation) compute.Computation {
		parts := make([]string, len(call.Args))
		for i, a := range call.Args {
			if s, ok := a.(value.String); ok {
				parts[i] = string(s)
				continue
			}
			parts[i] = inspect.Format(ctx.Store(), a)
		}
		fmt.Fprintln(ctx.Realm().Output, strings.Join(parts, " "))
		return undefined()
	}
	for _, name := range []string{"log", "info", "warn", "error", "debug"} {
		b.method(console, name, 0, logger)
	}

	opts := b.opts.Compile
	b.method(g, "eval", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		src, ok := call.Arg(0).(value.String)
		if !ok {
			return compute.Just(call.Arg(0))
		}
		prog, err := compile.Compile("eval", string(src), opts)
		if err != nil {
			return ops.ThrowSyntaxError("%v", err)
		}
		return runEval(ctx, prog)
	})
}

// runEval runs eval code in the execution context of its caller. Strict
// eval code gets a variable environment of its own.
func runEval(ctx compute.Context, prog *compile.Program) compute.Computation {
	caller := ctx.Exec()
	exec := caller
	exec.Kind = env.EvalCode
	exec.Strict = caller.Strict || prog.Strict
	store := ctx.Store()
	var scope value.Ref
	if exec.Strict {
		scope, store = store.NewRecord(env.Declarative, caller.Lexical, 0)
		store = store.Retain(scope)
		exec.Lexical, exec.Variable = scope, scope
	}
	return compute.Guard(compute.Enter(ctx.WithExec(exec).WithStore(store), prog.Body), func(cur compute.Context) compute.Context {
		cur = cur.WithExec(caller)
		if scope != 0 {
			cur = cur.WithStore(cur.Store().Release(scope))
		}
		return cur
	})
}

func parseInt(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	if radix == 0 || radix == 16 {
		if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
			radix = 16
		}
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	result := 0.0
	for _, c := range []byte(s[:end]) {
		result = result*float64(radix) + float64(digitValue(c))
	}
	return sign * result
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// parseFloat parses the longest prefix of s that is a decimal literal.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	for _, inf := range []string{"Infinity", "+Infinity", "-Infinity"} {
		if strings.HasPrefix(s, inf) {
			return value.ParseNumber(inf)
		}
	}
	best := math.NaN()
	for end := 1; end <= len(s); end++ {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil && strings.IndexFunc(s[:end], isFloatRune) < 0 {
			best = f
		}
	}
	return best
}

func isFloatRune(r rune) bool {
	return !strings.ContainsRune("0123456789.eE+-", r)
}
