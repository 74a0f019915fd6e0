package debug

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/interp"
	"github.com/timewinder-dev/ecmastep/logging"
)

// advance runs the machine across the boundary it is paused at and on to
// the next one.
func (s Session) advance() Session {
	if !s.Active() {
		return s
	}
	m := s.machine
	if _, ok := m.Pending(); ok {
		m = m.Step()
	}
	for !m.Done() {
		if _, ok := m.Pending(); ok {
			break
		}
		if s.limit > 0 && m.Steps() >= s.limit {
			return s.abort(m, &compute.FatalError{Err: interp.ErrStepLimit})
		}
		m = m.Step()
	}
	s.machine = m
	if !m.Done() {
		s.state = Paused
		return s
	}
	return s.settle()
}

// settle records the outcome of a finished machine and runs the host
// callback for it.
func (s Session) settle() Session {
	v, err := s.machine.Result()
	switch {
	case err != nil:
		s.state, s.err = Failed, err
	case s.machine.Failed():
		s.state, s.err = Failed, interp.Classify(v, s.machine.Context())
	default:
		s.state, s.result = Finished, v
	}
	logging.Logger().Trace().Str("session", s.ID.String()).Stringer("state", s.state).Int("steps", s.Steps()).Msg("debug: settled")
	interp.Trampoline(interp.Settle(s.machine, s.ok, s.fail))
	return s
}

func (s Session) abort(m compute.Machine, err *compute.FatalError) Session {
	s.machine = m
	s.state, s.err = Failed, err
	logging.Logger().Trace().Str("session", s.ID.String()).Err(err).Msg("debug: aborted")
	fail := s.fail
	ctx := m.Context()
	interp.Trampoline(func() interp.Next { return fail(err, ctx) })
	return s
}

// Step runs to the next statement boundary, entering calls.
func (s Session) Step() Session {
	s = s.advance()
	logging.Logger().Trace().Str("session", s.ID.String()).Stringer("at", s.Location()).Msg("debug: step")
	return s
}

// StepInto is Step.
func (s Session) StepInto() Session { return s.Step() }

// StepOver runs to the next statement boundary at the current call depth
// or shallower.
func (s Session) StepOver() Session {
	depth := s.Depth()
	s = s.advance()
	for s.state == Paused && s.Depth() > depth {
		s = s.advance()
	}
	logging.Logger().Trace().Str("session", s.ID.String()).Stringer("at", s.Location()).Msg("debug: step over")
	return s
}

// StepOut runs until the current call returns to its caller. At the top
// level it runs to the end.
func (s Session) StepOut() Session {
	depth := s.Depth()
	s = s.advance()
	for s.state == Paused && s.Depth() >= depth {
		s = s.advance()
	}
	logging.Logger().Trace().Str("session", s.ID.String()).Stringer("at", s.Location()).Msg("debug: step out")
	return s
}

// Finish runs until the session is Finished or Failed.
func (s Session) Finish() Session {
	for s.Active() {
		s = s.advance()
	}
	return s
}

// Run is Finish.
func (s Session) Run() Session { return s.Finish() }

// Continue runs until a debugger statement, a breakpoint line or the end.
func (s Session) Continue() Session {
	s = s.advance()
	for s.state == Paused && !s.stopsHere() {
		s = s.advance()
	}
	return s
}

func (s Session) stopsHere() bool {
	p, ok := s.machine.Pending()
	if !ok {
		return false
	}
	if p.Debugger {
		return true
	}
	_, hit := s.breakpoints.Get(p.Line)
	return hit
}
