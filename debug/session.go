// Package debug runs computations at a pace set by the caller. A Session is
// an immutable snapshot: every stepping operation returns a new session and
// leaves the old one valid and resumable.
package debug

import (
	"errors"
	"fmt"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/google/uuid"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/interp"
	"github.com/timewinder-dev/ecmastep/logging"
	"github.com/timewinder-dev/ecmastep/value"
)

type State uint8

const (
	Created State = iota
	Paused
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type Session struct {
	ID          uuid.UUID
	state       State
	machine     compute.Machine
	ok, fail    interp.Callback
	breakpoints *immutable.Map[int, struct{}]
	limit       int
	result      any
	err         error
}

// New returns a session in the Created state. Nothing has run yet.
func New(c compute.Computation, ctx compute.Context, ok, fail interp.Callback) Session {
	if ok == nil {
		ok = interp.Noop
	}
	if fail == nil {
		fail = interp.Noop
	}
	return Session{
		ID:          uuid.New(),
		machine:     compute.Start(c, ctx),
		ok:          ok,
		fail:        fail,
		breakpoints: immutable.NewMap[int, struct{}](nil),
	}
}

// Create returns a session paused at the first statement boundary of c, or
// already Finished or Failed when c ends before reaching one.
func Create(c compute.Computation, ctx compute.Context, ok, fail interp.Callback) Session {
	s := New(c, ctx, ok, fail)
	logging.Logger().Trace().Str("session", s.ID.String()).Msg("debug: create")
	return s.advance()
}

// WithStepLimit bounds the machine transitions of the whole session. Zero
// means no limit.
func (s Session) WithStepLimit(limit int) Session {
	s.limit = limit
	return s
}

func (s Session) WithBreakpoint(line int) Session {
	s.breakpoints = s.breakpoints.Set(line, struct{}{})
	return s
}

func (s Session) WithoutBreakpoint(line int) Session {
	s.breakpoints = s.breakpoints.Delete(line)
	return s
}

// Breakpoints lists the breakpoint lines in ascending order.
func (s Session) Breakpoints() []int {
	var out []int
	itr := s.breakpoints.Iterator()
	for !itr.Done() {
		line, _, _ := itr.Next()
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

func (s Session) State() State { return s.state }

// Active reports whether the session can still be stepped.
func (s Session) Active() bool { return s.state == Created || s.state == Paused }

// Context is the context the next step starts from. A session failed by an
// uncaught throw reports the context the value was thrown in.
func (s Session) Context() compute.Context {
	var te *interp.ThrowError
	if s.state == Failed && errors.As(s.err, &te) {
		return te.Site
	}
	return s.machine.Context()
}

// Location is the statement boundary the session is paused at. Once the
// session has ended it is the last location reached, or the throw site.
func (s Session) Location() compute.Point {
	if p, ok := s.machine.Pending(); ok {
		return p
	}
	return s.Context().Location()
}

// Depth is the number of active script calls.
func (s Session) Depth() int { return s.Context().Depth() }

// Steps counts the machine transitions taken so far.
func (s Session) Steps() int { return s.machine.Steps() }

func (s Session) Machine() compute.Machine { return s.machine }

// Result returns the outcome of a finished session. For a failed session
// the error is an *interp.ThrowError or a *compute.FatalError.
func (s Session) Result() (value.Value, error) {
	switch s.state {
	case Finished:
		return interp.AsValue(s.result), nil
	case Failed:
		return nil, s.err
	}
	return nil, fmt.Errorf("session is %s", s.state)
}

// Evaluate runs c in the context the session is paused in and discards
// every effect it has. The session is unchanged.
func (s Session) Evaluate(c compute.Computation) (value.Value, error) {
	v, _, err := interp.Run(c, s.Context(), s.limit)
	return v, err
}
