package ops

import (
	"strconv"

	"github.com/timewinder-dev/ecmastep/completion"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/logging"
	"github.com/timewinder-dev/ecmastep/value"
)

func callable(store env.Store, fn value.Value) (value.Object, env.Callable, bool) {
	o, ok := fn.(value.Object)
	if !ok {
		return 0, nil, false
	}
	obj, ok := store.Object(o)
	if !ok || obj.Call == nil {
		return 0, nil, false
	}
	return o, obj.Call, true
}

// Call invokes fn with the given this value and arguments.
func Call(fn value.Value, this value.Value, args []value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		o, c, ok := callable(ctx.Store(), fn)
		if !ok {
			return ThrowTypeError("%s is not a function", Describe(ctx.Store(), fn))
		}
		switch f := c.(type) {
		case *NativeFunction:
			return f.Fn(ctx, Invocation{Callee: o, This: this, Args: args})
		case *ScriptFunction:
			return callScript(ctx, f, this, args)
		}
		return compute.Fatalf("ops: unknown callable %T", c)
	})
}

func callScript(ctx compute.Context, f *ScriptFunction, this value.Value, args []value.Value) compute.Computation {
	realm := ctx.Realm()
	if realm.MaxCallDepth > 0 && ctx.Depth() >= realm.MaxCallDepth {
		return ThrowRangeError("Maximum call stack size exceeded")
	}
	caller := ctx
	if !f.Strict {
		switch this.(type) {
		case value.Undefined, value.Null:
			this = realm.Global
		case value.Object:
		default:
			this, ctx = Wrap(ctx, this)
		}
	}

	scope, store := ctx.Store().NewRecord(env.Declarative, f.Scope, 0)
	store = store.Retain(scope)
	rec, _ := store.Record(scope)
	for i, name := range f.Params {
		var v value.Value = value.Undefined{}
		if i < len(args) {
			v = args[i]
		}
		rec = rec.WithBinding(name, env.Binding{Value: v, Mutable: true})
	}
	if _, shadowed := rec.Binding("arguments"); !shadowed {
		argsObj := env.NewObject("Arguments", realm.ObjectPrototype)
		for i, a := range args {
			argsObj = argsObj.With(strconv.Itoa(i), env.Data(a))
		}
		argsObj = argsObj.With("length", env.Hidden(value.Number(len(args))))
		var ref value.Object
		ref, store = store.NewObject(argsObj)
		rec = rec.WithBinding("arguments", env.Binding{Value: ref, Mutable: !f.Strict})
	}
	store = store.PutRecord(scope, rec)

	exec := env.ExecutionContext{
		Kind:     env.FunctionCode,
		Strict:   f.Strict,
		Lexical:  scope,
		Variable: scope,
		This:     this,
	}
	stack := ctx.Stack().Push(f.Name, ctx.Location())
	logging.Logger().Trace().Str("function", f.Name).Int("depth", stack.Depth()).Msg("call")

	inner := ctx.WithStore(store).WithExec(exec).WithStack(stack)
	body := compute.Bind(compute.Put(inner, nil), func(any, compute.Context) compute.Computation {
		return f.Body
	})
	restore := func(cur compute.Context) compute.Context {
		return cur.WithExec(caller.Exec()).
			WithStack(caller.Stack()).
			WithLocation(caller.Location()).
			WithStore(cur.Store().Release(scope))
	}
	return compute.Either(body,
		func(v any, cur compute.Context) compute.Computation {
			var result value.Value = value.Undefined{}
			if c, ok := v.(completion.Completion); ok && c.Kind == completion.KindReturn {
				result = c.ValueOf()
			}
			return compute.Put(restore(cur), result)
		},
		func(e any, cur compute.Context) compute.Computation {
			return compute.Bind(compute.Put(restore(cur), nil), func(any, compute.Context) compute.Computation {
				return compute.Fail(e)
			})
		})
}

// Construct implements new fn(args...).
func Construct(fn value.Value, args []value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		o, c, ok := callable(ctx.Store(), fn)
		if !ok {
			return ThrowTypeError("%s is not a constructor", Describe(ctx.Store(), fn))
		}
		switch f := c.(type) {
		case *NativeFunction:
			if f.Ctor == nil {
				return ThrowTypeError("%s is not a constructor", Describe(ctx.Store(), fn))
			}
			return f.Ctor(ctx, Invocation{Callee: o, This: value.Undefined{}, Args: args, Construct: true})
		case *ScriptFunction:
			var proto value.Value = ctx.Realm().ObjectPrototype
			if p, ok := dataValue(ctx.Store(), o, "prototype"); ok {
				if po, ok := p.(value.Object); ok {
					proto = po
				}
			}
			obj, store := ctx.Store().NewObject(env.NewObject("Object", proto))
			return compute.Bind(compute.Put(ctx.WithStore(store), nil), func(any, compute.Context) compute.Computation {
				return compute.Then(Call(o, obj, args), func(r value.Value, _ compute.Context) compute.Computation {
					if ro, ok := r.(value.Object); ok {
						return compute.Just(ro)
					}
					return compute.Just(obj)
				})
			})
		}
		return compute.Fatalf("ops: unknown callable %T", c)
	})
}

// IsCallable reports whether v is a function object.
func IsCallable(store env.Store, v value.Value) bool {
	_, _, ok := callable(store, v)
	return ok
}

// FunctionSource returns the source text of a script function or a native
// placeholder.
func FunctionSource(store env.Store, v value.Value) (string, bool) {
	_, c, ok := callable(store, v)
	if !ok {
		return "", false
	}
	if f, ok := c.(*ScriptFunction); ok && f.Source != "" {
		return f.Source, true
	}
	return "function " + c.FunctionName() + "() { [native code] }", true
}
