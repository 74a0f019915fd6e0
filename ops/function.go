// Package ops holds the primitive operations of the language: name
// resolution, property access, calls, conversions and operators. Every
// operation that can fail, call back into script or touch the store is a
// computation.
package ops

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

// Invocation carries the arguments of a native call.
type Invocation struct {
	Callee    value.Object
	This      value.Value
	Args      []value.Value
	Construct bool
}

func (i Invocation) Arg(n int) value.Value {
	if n < len(i.Args) {
		return i.Args[n]
	}
	return value.Undefined{}
}

type NativeFn func(ctx compute.Context, call Invocation) compute.Computation

// NativeFunction is a host function. A nil Ctor means the function cannot be
// used with new.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    NativeFn
	Ctor  NativeFn
}

func (f *NativeFunction) FunctionName() string { return f.Name }

// ScriptFunction is a closure over compiled code. Body yields a
// completion.Completion.
type ScriptFunction struct {
	Name    string
	Params  []string
	Body    compute.Computation
	Scope   value.Ref
	Strict  bool
	Source  string
	Defined compute.Point
}

func (f *ScriptFunction) FunctionName() string { return f.Name }

// Closure copies the template f with its scope set to scope.
func (f *ScriptFunction) Closure(scope value.Ref) *ScriptFunction {
	c := *f
	c.Scope = scope
	return &c
}

func functionObject(store env.Store, realm *env.Realm, call env.Callable, name string, arity int) (value.Object, env.Store) {
	obj := env.NewObject("Function", realm.FunctionPrototype)
	obj.Call = call
	obj = obj.With("length", env.Property{Value: value.Number(arity)})
	obj = obj.With("name", env.Property{Value: value.String(name), Configurable: true})
	return store.NewObject(obj)
}

// NewNative allocates a function object for f.
func NewNative(store env.Store, realm *env.Realm, f *NativeFunction) (value.Object, env.Store) {
	return functionObject(store, realm, f, f.Name, f.Arity)
}

// NewFunction allocates a function object for the closure f together with
// its prototype object. The closure keeps its scope alive.
func NewFunction(ctx compute.Context, f *ScriptFunction) (value.Object, compute.Context) {
	realm := ctx.Realm()
	store := ctx.Store().Retain(f.Scope)
	fn, store := functionObject(store, realm, f, f.Name, len(f.Params))
	proto, store := store.NewObject(env.NewObject("Object", realm.ObjectPrototype).With("constructor", env.Hidden(fn)))
	obj, _ := store.Object(fn)
	store = store.PutObject(fn, obj.With("prototype", env.Property{Value: proto, Writable: true}))
	return fn, ctx.WithStore(store)
}

// NewNamedFunction creates a closure for a named function expression. The
// name is bound immutably in a scope of its own between the closure and the
// current lexical environment.
func NewNamedFunction(ctx compute.Context, f *ScriptFunction) (value.Object, compute.Context) {
	scope, store := ctx.Store().NewRecord(env.Declarative, ctx.Exec().Lexical, 0)
	fn, ctx := NewFunction(ctx.WithStore(store), f.Closure(scope))
	store = ctx.Store()
	rec, _ := store.Record(scope)
	store = store.PutRecord(scope, rec.WithBinding(f.Name, env.Binding{Value: fn}))
	return fn, ctx.WithStore(store)
}

// MakeClosure is the computation form of NewFunction over the current
// lexical environment.
func MakeClosure(template *ScriptFunction, named bool) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		var fn value.Object
		if named {
			fn, ctx = NewNamedFunction(ctx, template)
		} else {
			fn, ctx = NewFunction(ctx, template.Closure(ctx.Exec().Lexical))
		}
		return compute.Put(ctx, fn)
	})
}
