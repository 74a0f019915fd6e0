// Package builtin builds the initial global environment: the global object,
// the standard constructors and the host functions of an interpreter
// instance.
package builtin

import (
	"io"
	"os"

	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/logging"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

const DefaultMaxCallDepth = 1000

type Options struct {
	// MaxCallDepth bounds nested script calls. Zero selects the default.
	MaxCallDepth int
	// Output receives print and console output. Nil means stdout.
	Output io.Writer
	// Strict makes global code strict.
	Strict bool
	// Compile configures code compiled at run time by eval and Function.
	Compile compile.Options
}

// NewContext returns a fresh initial context: a new global object graph,
// a global execution context and an empty call stack. Contexts built by
// separate calls share nothing.
func NewContext(opts Options) compute.Context {
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	realm := &env.Realm{
		MaxCallDepth:    opts.MaxCallDepth,
		Output:          opts.Output,
		ErrorPrototypes: map[string]value.Object{},
	}
	b := &builder{store: env.NewStore(), realm: realm, opts: opts}

	realm.ObjectPrototype = b.object("Object", value.Null{})
	fp := env.NewObject("Function", realm.ObjectPrototype)
	fp.Call = &ops.NativeFunction{Name: "", Fn: func(compute.Context, ops.Invocation) compute.Computation {
		return compute.Just(value.Undefined{})
	}}
	realm.FunctionPrototype, b.store = b.store.NewObject(fp)
	realm.Global = b.object("global", realm.ObjectPrototype)

	globalEnv, store := b.store.NewRecord(env.ObjectBacked, 0, realm.Global)
	b.store = store.Retain(globalEnv)
	realm.GlobalEnv = globalEnv

	b.installObject()
	b.installFunction()
	b.installArray()
	b.installErrors()
	b.installPrimitives()
	b.installMath()
	b.installGlobals()

	logging.Logger().Debug().Int("objects", b.store.ObjectCount()).Msg("realm initialised")
	return compute.NewContext(realm, GlobalExec(realm, opts.Strict), b.store)
}

// GlobalExec is the execution context of global code in realm.
func GlobalExec(realm *env.Realm, strict bool) env.ExecutionContext {
	return env.ExecutionContext{
		Kind:     env.GlobalCode,
		Strict:   strict,
		Lexical:  realm.GlobalEnv,
		Variable: realm.GlobalEnv,
		This:     realm.Global,
	}
}

// Reset returns ctx positioned for a new piece of global code: the global
// execution context, an empty call stack and no location. The store is
// kept, so globals persist.
func Reset(ctx compute.Context, strict bool) compute.Context {
	return ctx.WithExec(GlobalExec(ctx.Realm(), strict)).WithStack(nil).WithLocation(compute.Point{})
}
