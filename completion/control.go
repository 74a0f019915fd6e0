package completion

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/value"
)

// Each computation passed to the combinators below yields a Completion,
// except tests and discriminants which yield a value.Value.

func then(c compute.Computation, f func(Completion, compute.Context) compute.Computation) compute.Computation {
	return compute.Then(c, f)
}

// StatementList runs stmts in order. The first abrupt completion stops the
// list. The most recent non-empty value is carried forward and fills the
// value of the final completion when it is empty.
func StatementList(stmts []compute.Computation) compute.Computation {
	return statementList(stmts, nil)
}

func statementList(stmts []compute.Computation, v value.Value) compute.Computation {
	if len(stmts) == 0 {
		return compute.Just(Completion{Kind: KindNormal, Value: v})
	}
	return then(stmts[0], func(c Completion, _ compute.Context) compute.Computation {
		next := v
		if c.Value != nil {
			next = c.Value
		}
		if c.Abrupt() {
			return compute.Just(UpdateEmpty(c, next))
		}
		return statementList(stmts[1:], next)
	})
}

func If(test, consequent, alternate compute.Computation) compute.Computation {
	if alternate == nil {
		alternate = compute.Just(Empty())
	}
	return compute.Branch(test, consequent, alternate)
}

// loopStep classifies the body completion of one iteration. It returns the
// value carried forward, whether the loop goes on, and the completion that
// ends the loop otherwise.
func loopStep(labels LabelSet, c Completion, v value.Value) (value.Value, bool, Completion) {
	if c.Value != nil {
		v = c.Value
	}
	switch {
	case c.Kind == KindContinue && labels.Contains(c.Target):
		return v, true, Completion{}
	case c.Kind == KindBreak && labels.Contains(c.Target):
		return v, false, Normal(v)
	case c.Abrupt():
		return v, false, UpdateEmpty(c, v)
	}
	return v, true, Completion{}
}

func While(labels LabelSet, test, body compute.Computation) compute.Computation {
	var loop func(v value.Value) compute.Computation
	loop = func(v value.Value) compute.Computation {
		iteration := then(body, func(c Completion, _ compute.Context) compute.Computation {
			next, more, done := loopStep(labels, c, v)
			if !more {
				return compute.Just(done)
			}
			return loop(next)
		})
		return compute.Branch(test, iteration, compute.Just(Normal(v)))
	}
	return loop(nil)
}

func DoWhile(labels LabelSet, body, test compute.Computation) compute.Computation {
	var loop func(v value.Value) compute.Computation
	loop = func(v value.Value) compute.Computation {
		return then(body, func(c Completion, _ compute.Context) compute.Computation {
			next, more, done := loopStep(labels, c, v)
			if !more {
				return compute.Just(done)
			}
			return compute.Branch(test, loop(next), compute.Just(Normal(next)))
		})
	}
	return loop(nil)
}

// For runs a for statement whose initializer has already been evaluated. A
// nil test always holds; a nil update does nothing.
func For(labels LabelSet, test, update, body compute.Computation) compute.Computation {
	if test == nil {
		test = compute.Just(true)
	}
	var loop func(v value.Value) compute.Computation
	loop = func(v value.Value) compute.Computation {
		iteration := then(body, func(c Completion, _ compute.Context) compute.Computation {
			next, more, done := loopStep(labels, c, v)
			if !more {
				return compute.Just(done)
			}
			if update == nil {
				return loop(next)
			}
			return compute.Bind(update, func(any, compute.Context) compute.Computation {
				return loop(next)
			})
		})
		return compute.Branch(test, iteration, compute.Just(Normal(v)))
	}
	return loop(nil)
}

// ForIn iterates keys. Before each iteration visit binds the key to the
// loop target and yields whether the key is still present; absent keys are
// skipped.
func ForIn(labels LabelSet, keys []string, visit func(key string) compute.Computation, body compute.Computation) compute.Computation {
	var loop func(i int, v value.Value) compute.Computation
	loop = func(i int, v value.Value) compute.Computation {
		if i >= len(keys) {
			return compute.Just(Normal(v))
		}
		iteration := then(body, func(c Completion, _ compute.Context) compute.Computation {
			next, more, done := loopStep(labels, c, v)
			if !more {
				return compute.Just(done)
			}
			return loop(i+1, next)
		})
		skip := compute.WithContext(func(compute.Context) compute.Computation {
			return loop(i+1, v)
		})
		return compute.Branch(visit(keys[i]), iteration, skip)
	}
	return loop(0, nil)
}

// Labelled turns a break targeting label into a normal completion.
func Labelled(label string, stmt compute.Computation) compute.Computation {
	return then(stmt, func(c Completion, _ compute.Context) compute.Computation {
		if c.Kind == KindBreak && c.Target == label {
			return compute.Just(Normal(c.Value))
		}
		return compute.Just(c)
	})
}

// Case is a switch clause. A nil Test marks the default clause.
type Case struct {
	Test compute.Computation
	Body []compute.Computation
}

// Switch evaluates the discriminant once, then the case tests in source
// order until one is strictly equal. Execution starts at the matching
// clause, or at the default clause when none matched, and falls through to
// the end.
func Switch(labels LabelSet, discriminant compute.Computation, cases []Case) compute.Computation {
	runFrom := func(start int) compute.Computation {
		var stmts []compute.Computation
		for _, c := range cases[start:] {
			stmts = append(stmts, c.Body...)
		}
		return then(StatementList(stmts), func(c Completion, _ compute.Context) compute.Computation {
			if c.Kind == KindBreak && labels.Contains(c.Target) {
				return compute.Just(Normal(c.Value))
			}
			return compute.Just(c)
		})
	}
	fallback := compute.Just(Empty())
	for i, c := range cases {
		if c.Test == nil {
			fallback = runFrom(i)
			break
		}
	}
	return compute.Then(discriminant, func(d value.Value, _ compute.Context) compute.Computation {
		var search func(i int) compute.Computation
		search = func(i int) compute.Computation {
			for i < len(cases) && cases[i].Test == nil {
				i++
			}
			if i >= len(cases) {
				return fallback
			}
			return compute.Then(cases[i].Test, func(t value.Value, _ compute.Context) compute.Computation {
				if value.StrictEquals(d, t) {
					return runFrom(i)
				}
				return search(i + 1)
			})
		}
		return search(0)
	})
}
