package builtin

import (
	"strings"

	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func (b *builder) installFunction() {
	proto := b.realm.FunctionPrototype
	opts := b.opts.Compile
	construct := func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(strs(call.Args, false), func(parts []string, ctx compute.Context) compute.Computation {
			body := ""
			if len(parts) > 0 {
				body = parts[len(parts)-1]
				parts = parts[:len(parts)-1]
			}
			src := "(function anonymous(" + strings.Join(parts, ",") + ") {\n" + body + "\n})"
			prog, err := compile.Compile("anonymous", src, opts)
			if err != nil {
				return ops.ThrowSyntaxError("%v", err)
			}
			return inGlobalScope(ctx, prog)
		})
	}
	b.constructor("Function", 1, proto, construct, construct)

	b.method(proto, "call", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		var args []value.Value
		if len(call.Args) > 1 {
			args = call.Args[1:]
		}
		return ops.Call(call.This, call.Arg(0), args)
	})
	b.method(proto, "apply", 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		list := call.Arg(1)
		if value.IsNullish(list) {
			return ops.Call(call.This, call.Arg(0), nil)
		}
		o, ok := list.(value.Object)
		if !ok {
			return ops.ThrowTypeError("CreateListFromArrayLike called on non-object")
		}
		args, ok := ops.ArrayValues(ctx.Store(), o)
		if !ok {
			return ops.ThrowRangeError("Too many arguments in function call")
		}
		return ops.Call(call.This, call.Arg(0), args)
	})
	b.method(proto, "bind", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		target := call.This
		if !ops.IsCallable(ctx.Store(), target) {
			return ops.ThrowTypeError("Bind must be called on a function")
		}
		boundThis := call.Arg(0)
		var bound []value.Value
		if len(call.Args) > 1 {
			bound = append(bound, call.Args[1:]...)
		}
		with := func(args []value.Value) []value.Value {
			out := make([]value.Value, 0, len(bound)+len(args))
			return append(append(out, bound...), args...)
		}
		name := "bound "
		if obj, ok := ctx.Store().Object(target.(value.Object)); ok {
			name += obj.Call.FunctionName()
		}
		fn, store := ops.NewNative(ctx.Store(), ctx.Realm(), &ops.NativeFunction{
			Name: name,
			Fn: func(_ compute.Context, inner ops.Invocation) compute.Computation {
				return ops.Call(target, boundThis, with(inner.Args))
			},
			Ctor: func(_ compute.Context, inner ops.Invocation) compute.Computation {
				return ops.Construct(target, with(inner.Args))
			},
		})
		return compute.Put(ctx.WithStore(store), fn)
	})
	b.method(proto, "toString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		src, ok := ops.FunctionSource(ctx.Store(), call.This)
		if !ok {
			return ops.ThrowTypeError("Function.prototype.toString requires that 'this' be a Function")
		}
		return compute.Just(value.String(src))
	})
}

// inGlobalScope runs prog as global code and restores the execution context
// and stack of the caller afterwards.
func inGlobalScope(ctx compute.Context, prog *compile.Program) compute.Computation {
	caller := ctx
	global := ctx.WithExec(GlobalExec(ctx.Realm(), false))
	return compute.Guard(compute.Enter(global, prog.Body), func(cur compute.Context) compute.Context {
		return cur.WithExec(caller.Exec()).WithStack(caller.Stack())
	})
}
