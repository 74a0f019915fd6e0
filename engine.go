// Package ecmastep embeds a stepping ECMAScript 5 interpreter. An Engine
// owns one global environment; programs run against it one after another
// and see each other's globals.
package ecmastep

import (
	"io"
	"os"

	"github.com/timewinder-dev/ecmastep/builtin"
	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/config"
	"github.com/timewinder-dev/ecmastep/debug"
	"github.com/timewinder-dev/ecmastep/inspect"
	"github.com/timewinder-dev/ecmastep/interp"
	"github.com/timewinder-dev/ecmastep/logging"
	"github.com/timewinder-dev/ecmastep/value"
)

type Engine struct {
	cfg *config.Config
	ctx compute.Context
}

type Option func(*builtin.Options)

// WithOutput sends print and console output to w.
func WithOutput(w io.Writer) Option {
	return func(o *builtin.Options) { o.Output = w }
}

// New builds an engine with a fresh global environment. A nil cfg selects
// the defaults.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	bo := builtin.Options{
		MaxCallDepth: cfg.Engine.MaxCallDepth,
		Strict:       cfg.Engine.Strict,
		Compile:      compileOptions(cfg),
	}
	for _, o := range opts {
		o(&bo)
	}
	return &Engine{cfg: cfg, ctx: builtin.NewContext(bo)}
}

func compileOptions(cfg *config.Config) compile.Options {
	return compile.Options{Finally: cfg.FinallyPolicy(), Strict: cfg.Engine.Strict}
}

func (e *Engine) Config() *config.Config { return e.cfg }

// Context is the engine's current context. Every Run advances it.
func (e *Engine) Context() compute.Context { return e.ctx }

func (e *Engine) Compile(name, src string) (*compile.Program, error) {
	return compile.Compile(name, src, compileOptions(e.cfg))
}

// CompileFile reads and compiles a script file.
func (e *Engine) CompileFile(path string) (*compile.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Compile(path, string(src))
}

// Run runs p as global code. The effects on the global environment are kept
// even when p fails.
func (e *Engine) Run(p *compile.Program) (value.Value, error) {
	v, ctx, err := e.RunIn(builtin.Reset(e.ctx, p.Strict), p)
	e.ctx = builtin.Reset(ctx, false)
	return v, err
}

// RunIn runs p in ctx and returns the final context. The engine itself is
// not changed.
func (e *Engine) RunIn(ctx compute.Context, p *compile.Program) (value.Value, compute.Context, error) {
	logging.Logger().Debug().Str("program", p.Name).Int("max_steps", e.cfg.Engine.MaxSteps).Msg("engine: run")
	v, final, err := interp.Run(p.Body, ctx, e.cfg.Engine.MaxSteps)
	if err != nil {
		logging.Logger().Debug().Str("program", p.Name).Err(err).Msg("engine: failed")
	}
	return v, final, err
}

// Eval compiles and runs src.
func (e *Engine) Eval(name, src string) (value.Value, error) {
	p, err := e.Compile(name, src)
	if err != nil {
		return nil, err
	}
	return e.Run(p)
}

// Debug opens a debugging session over p, paused at its first statement.
// The session starts from the engine's context but never writes back to
// it. Breakpoints and the step limit come from the config.
func (e *Engine) Debug(p *compile.Program, ok, fail interp.Callback) debug.Session {
	s := debug.New(p.Body, builtin.Reset(e.ctx, p.Strict), ok, fail).WithStepLimit(e.cfg.Engine.MaxSteps)
	for _, line := range e.cfg.Debugger.Breakpoints {
		s = s.WithBreakpoint(line)
	}
	return s.Step()
}

// Format renders v the way console.log does.
func (e *Engine) Format(v value.Value) string {
	return inspect.Format(e.ctx.Store(), v)
}
