package compute

import "github.com/timewinder-dev/ecmastep/value"

type kontKind uint8

const (
	kBind kontKind = iota
	kEither
	kBranch
	kSequence
	kEnumeration
)

// kont is a continuation frame. Frames are shared between machine
// snapshots and never modified once pushed.
type kont struct {
	kind kontKind
	f    Func
	fail Func
	then Computation
	els  Computation
	rest []Computation
	acc  *cons
	next *kont
}

type cons struct {
	v    any
	next *cons
	n    int
}

func (c *cons) slice() []any {
	if c == nil {
		return []any{}
	}
	out := make([]any, c.n)
	for cur, i := c, c.n-1; cur != nil; cur, i = cur.next, i-1 {
		out[i] = cur.v
	}
	return out
}

func (c *cons) push(v any) *cons {
	n := 1
	if c != nil {
		n = c.n + 1
	}
	return &cons{v: v, next: c, n: n}
}

type mode uint8

const (
	modeEval mode = iota
	modeReturn
	modeFail
)

// Machine is a snapshot of an evaluation in progress. Step returns the next
// snapshot and leaves the receiver untouched, so any snapshot can be kept
// and resumed later.
type Machine struct {
	mode    mode
	control Computation
	val     any
	err     error
	ctx     Context
	stack   *kont
	frames  int
	steps   int
}

func Start(c Computation, ctx Context) Machine {
	return Machine{mode: modeEval, control: c, ctx: ctx}
}

// Done reports whether evaluation has produced a final outcome.
func (m Machine) Done() bool {
	return m.mode != modeEval && m.stack == nil
}

// Failed reports whether the final outcome is a failure.
func (m Machine) Failed() bool { return m.Done() && m.mode == modeFail }

// Result returns the final value or failure payload, and the engine error
// when evaluation was aborted.
func (m Machine) Result() (any, error) {
	if m.err != nil {
		return nil, &FatalError{Err: m.err}
	}
	return m.val, nil
}

func (m Machine) Context() Context { return m.ctx }

// Depth is the script call depth of the current context.
func (m Machine) Depth() int { return m.ctx.Depth() }

// Steps counts the transitions taken so far.
func (m Machine) Steps() int { return m.steps }

// Pending returns the statement boundary about to be entered, if the next
// transition enters one.
func (m Machine) Pending() (Point, bool) {
	if m.mode != modeEval {
		return Point{}, false
	}
	mk, ok := m.control.(mark)
	if !ok {
		return Point{}, false
	}
	return mk.at, true
}

func (m Machine) push(k kont) Machine {
	k.next = m.stack
	m.stack = &k
	m.frames++
	return m
}

func (m Machine) pop() (kont, Machine) {
	k := *m.stack
	m.stack = k.next
	m.frames--
	return k, m
}

func (m Machine) eval(c Computation) Machine {
	m.mode = modeEval
	m.control = c
	m.val = nil
	return m
}

func (m Machine) ret(v any) Machine {
	m.mode = modeReturn
	m.control = nil
	m.val = v
	return m
}

func (m Machine) fail(v any) Machine {
	m.mode = modeFail
	m.control = nil
	m.val = v
	return m
}

// Step performs exactly one transition.
func (m Machine) Step() Machine {
	if m.Done() {
		return m
	}
	m.steps++
	switch m.mode {
	case modeEval:
		return m.evalStep()
	case modeReturn:
		return m.returnStep()
	default:
		return m.failStep()
	}
}

func (m Machine) evalStep() Machine {
	switch c := m.control.(type) {
	case just:
		return m.ret(c.v)
	case failure:
		return m.fail(c.v)
	case fatal:
		m = m.fail(nil)
		m.err = c.err
		m.stack = nil
		m.frames = 0
		return m
	case bind:
		return m.push(kont{kind: kBind, f: c.f}).eval(c.c)
	case either:
		return m.push(kont{kind: kEither, f: c.ok, fail: c.fail}).eval(c.c)
	case branch:
		return m.push(kont{kind: kBranch, then: c.then, els: c.els}).eval(c.cond)
	case sequence:
		if len(c.cs) == 0 {
			return m.ret(value.Undefined{})
		}
		return m.push(kont{kind: kSequence, rest: c.cs[1:]}).eval(c.cs[0])
	case enumeration:
		if len(c.cs) == 0 {
			return m.ret([]any{})
		}
		return m.push(kont{kind: kEnumeration, rest: c.cs[1:]}).eval(c.cs[0])
	case withContext:
		return m.eval(c.f(m.ctx))
	case put:
		m.ctx = c.ctx
		return m.ret(c.v)
	case mark:
		m.ctx = m.ctx.WithLocation(c.at)
		return m.eval(c.c)
	case nil:
		return m.eval(Fatalf("compute: nil computation"))
	}
	return m.eval(Fatalf("compute: unknown computation %T", m.control))
}

func (m Machine) returnStep() Machine {
	k, m := m.pop()
	switch k.kind {
	case kBind:
		return m.eval(k.f(m.val, m.ctx))
	case kEither:
		if k.f == nil {
			return m
		}
		return m.eval(k.f(m.val, m.ctx))
	case kBranch:
		if truthy(m.val) {
			return m.eval(k.then)
		}
		return m.eval(k.els)
	case kSequence:
		if len(k.rest) == 0 {
			return m
		}
		return m.push(kont{kind: kSequence, rest: k.rest[1:]}).eval(k.rest[0])
	case kEnumeration:
		acc := k.acc.push(m.val)
		if len(k.rest) == 0 {
			return m.ret(acc.slice())
		}
		return m.push(kont{kind: kEnumeration, rest: k.rest[1:], acc: acc}).eval(k.rest[0])
	}
	return m.eval(Fatalf("compute: unknown continuation %d", k.kind))
}

// failStep unwinds one continuation frame.
func (m Machine) failStep() Machine {
	k, m := m.pop()
	if k.kind == kEither && k.fail != nil {
		return m.eval(k.fail(m.val, m.ctx))
	}
	return m
}

// Run steps the machine until it is done or limit transitions were taken.
// A limit of zero or less means no limit.
func (m Machine) Run(limit int) Machine {
	for n := 0; !m.Done() && (limit <= 0 || n < limit); n++ {
		m = m.Step()
	}
	return m
}

// Continuations reports how many continuation frames are pending.
func (m Machine) Continuations() int { return m.frames }
