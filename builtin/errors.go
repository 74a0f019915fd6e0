package builtin

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

var nativeErrors = []string{ops.TypeError, ops.ReferenceError, ops.RangeError, ops.SyntaxError, ops.EvalError}

func (b *builder) installErrors() {
	base := b.object("Error", b.realm.ObjectPrototype)
	b.realm.ErrorPrototype = base
	b.realm.ErrorPrototypes[ops.Error] = base
	b.hidden(base, "name", value.String("Error"))
	b.hidden(base, "message", value.String(""))
	b.method(base, "toString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		if _, ok := call.This.(value.Object); !ok {
			return ops.ThrowTypeError("Error.prototype.toString called on non-object")
		}
		field := func(key, def string) compute.Computation {
			return compute.Then(ops.Get(call.This, key), func(v value.Value, _ compute.Context) compute.Computation {
				if _, ok := v.(value.Undefined); ok {
					return compute.Just(value.String(def))
				}
				return ops.ToString(v)
			})
		}
		return compute.Collect([]compute.Computation{field("name", "Error"), field("message", "")}, func(parts []value.String, _ compute.Context) compute.Computation {
			name, msg := parts[0], parts[1]
			switch {
			case name == "":
				return compute.Just(msg)
			case msg == "":
				return compute.Just(name)
			}
			return compute.Just(name + ": " + msg)
		})
	})
	b.errorConstructor(ops.Error, base)

	for _, name := range nativeErrors {
		proto := b.object("Error", base)
		b.hidden(proto, "name", value.String(name))
		b.hidden(proto, "message", value.String(""))
		b.realm.ErrorPrototypes[name] = proto
		b.errorConstructor(name, proto)
	}
}

func (b *builder) errorConstructor(name string, proto value.Object) {
	construct := func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, store := ctx.Store().NewObject(env.NewObject("Error", proto))
		created := compute.Put(ctx.WithStore(store), o)
		msg := call.Arg(0)
		if _, ok := msg.(value.Undefined); ok {
			return created
		}
		return compute.Bind(created, func(any, compute.Context) compute.Computation {
			return compute.Then(ops.ToString(msg), func(s value.String, _ compute.Context) compute.Computation {
				return compute.Bind(ops.DefineOwnProperty(o, "message", env.Hidden(s)), func(any, compute.Context) compute.Computation {
					return compute.Just(o)
				})
			})
		})
	}
	b.constructor(name, 1, proto, construct, construct)
}
