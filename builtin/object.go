package builtin

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func (b *builder) installObject() {
	proto := b.realm.ObjectPrototype
	construct := func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v := call.Arg(0)
		if value.IsNullish(v) {
			return ops.NewObject()
		}
		return ops.ToObject(v)
	}
	ctor := b.constructor("Object", 1, proto, construct, construct)

	b.method(ctor, "keys", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, _, ok := objectArg(ctx, call.Arg(0), "Object.keys")
		if !ok {
			return notObject("Object.keys")
		}
		return keysArray(ctx, ops.OwnKeys(ctx.Store(), o, true))
	})
	b.method(ctor, "getOwnPropertyNames", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, _, ok := objectArg(ctx, call.Arg(0), "Object.getOwnPropertyNames")
		if !ok {
			return notObject("Object.getOwnPropertyNames")
		}
		return keysArray(ctx, ops.OwnKeys(ctx.Store(), o, false))
	})
	b.method(ctor, "getPrototypeOf", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		_, obj, ok := objectArg(ctx, call.Arg(0), "Object.getPrototypeOf")
		if !ok {
			return notObject("Object.getPrototypeOf")
		}
		return compute.Just(obj.Proto)
	})
	b.method(ctor, "create", 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		proto := call.Arg(0)
		switch proto.(type) {
		case value.Object, value.Null:
		default:
			return ops.ThrowTypeError("Object prototype may only be an Object or null: %s", ops.Describe(ctx.Store(), proto))
		}
		o, store := ctx.Store().NewObject(env.NewObject("Object", proto))
		created := compute.Put(ctx.WithStore(store), o)
		props, ok := call.Arg(1).(value.Object)
		if !ok {
			return created
		}
		return compute.Bind(created, func(any, compute.Context) compute.Computation {
			return defineProperties(o, props)
		})
	})
	b.method(ctor, "defineProperty", 3, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, _, ok := objectArg(ctx, call.Arg(0), "Object.defineProperty")
		if !ok {
			return notObject("Object.defineProperty")
		}
		desc, ok := call.Arg(2).(value.Object)
		if !ok {
			return ops.ThrowTypeError("Property description must be an object")
		}
		return compute.Then(ops.ToKey(call.Arg(1)), func(key string, _ compute.Context) compute.Computation {
			return defineFromDescriptor(o, key, desc)
		})
	})
	b.method(ctor, "defineProperties", 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, _, ok := objectArg(ctx, call.Arg(0), "Object.defineProperties")
		if !ok {
			return notObject("Object.defineProperties")
		}
		props, ok := call.Arg(1).(value.Object)
		if !ok {
			return ops.ThrowTypeError("Property descriptions must be an object")
		}
		return defineProperties(o, props)
	})
	b.method(ctor, "getOwnPropertyDescriptor", 2, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		_, obj, ok := objectArg(ctx, call.Arg(0), "Object.getOwnPropertyDescriptor")
		if !ok {
			return notObject("Object.getOwnPropertyDescriptor")
		}
		return compute.Then(ops.ToKey(call.Arg(1)), func(key string, ctx compute.Context) compute.Computation {
			p, ok := obj.Own(key)
			if !ok {
				return undefined()
			}
			return fromPropertyDescriptor(ctx, p)
		})
	})
	b.method(ctor, "freeze", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, obj, ok := objectArg(ctx, call.Arg(0), "Object.freeze")
		if !ok {
			return compute.Just(call.Arg(0))
		}
		for _, k := range obj.Keys() {
			p, _ := obj.Own(k)
			p.Configurable = false
			if !p.Accessor {
				p.Writable = false
			}
			obj = obj.With(k, p)
		}
		obj.Extensible = false
		return compute.Put(ctx.WithStore(ctx.Store().PutObject(o, obj)), o)
	})
	b.method(ctor, "isFrozen", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		_, obj, ok := objectArg(ctx, call.Arg(0), "Object.isFrozen")
		if !ok {
			return compute.Just(value.True)
		}
		frozen := !obj.Extensible
		for _, k := range obj.Keys() {
			p, _ := obj.Own(k)
			if p.Configurable || (!p.Accessor && p.Writable) {
				frozen = false
			}
		}
		return compute.Just(value.Boolean(frozen))
	})
	b.method(ctor, "preventExtensions", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		o, obj, ok := objectArg(ctx, call.Arg(0), "Object.preventExtensions")
		if !ok {
			return compute.Just(call.Arg(0))
		}
		obj.Extensible = false
		return compute.Put(ctx.WithStore(ctx.Store().PutObject(o, obj)), o)
	})
	b.method(ctor, "isExtensible", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		_, obj, ok := objectArg(ctx, call.Arg(0), "Object.isExtensible")
		return compute.Just(value.Boolean(ok && obj.Extensible))
	})

	b.method(proto, "hasOwnProperty", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(ops.ToKey(call.Arg(0)), func(key string, ctx compute.Context) compute.Computation {
			return compute.Then(ops.ToObject(call.This), func(o value.Object, ctx compute.Context) compute.Computation {
				obj, _ := ctx.Store().Object(o)
				_, has := obj.Own(key)
				return compute.Just(value.Boolean(has))
			})
		})
	})
	b.method(proto, "propertyIsEnumerable", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(ops.ToKey(call.Arg(0)), func(key string, ctx compute.Context) compute.Computation {
			return compute.Then(ops.ToObject(call.This), func(o value.Object, ctx compute.Context) compute.Computation {
				obj, _ := ctx.Store().Object(o)
				p, has := obj.Own(key)
				return compute.Just(value.Boolean(has && p.Enumerable))
			})
		})
	})
	b.method(proto, "isPrototypeOf", 1, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		v, ok := call.Arg(0).(value.Object)
		this, isObj := call.This.(value.Object)
		if !ok || !isObj {
			return compute.Just(value.False)
		}
		return compute.Just(value.Boolean(ops.InheritsFrom(ctx, v, this)))
	})
	b.method(proto, "toString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		switch call.This.(type) {
		case value.Undefined:
			return compute.Just(value.String("[object Undefined]"))
		case value.Null:
			return compute.Just(value.String("[object Null]"))
		}
		return compute.Then(ops.ToObject(call.This), func(o value.Object, ctx compute.Context) compute.Computation {
			obj, _ := ctx.Store().Object(o)
			class := obj.Class
			if class == "global" {
				class = "Object"
			}
			return compute.Just(value.String("[object " + class + "]"))
		})
	})
	b.method(proto, "toLocaleString", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return compute.Then(ops.Get(call.This, "toString"), func(fn value.Value, _ compute.Context) compute.Computation {
			return ops.Call(fn, call.This, nil)
		})
	})
	b.method(proto, "valueOf", 0, func(ctx compute.Context, call ops.Invocation) compute.Computation {
		return ops.ToObject(call.This)
	})
}

func keysArray(ctx compute.Context, keys []string) compute.Computation {
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		vals[i] = value.String(k)
	}
	return ops.NewArray(vals)
}

func defineProperties(o value.Object, props value.Object) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		keys := ops.OwnKeys(ctx.Store(), props, true)
		cs := make([]compute.Computation, len(keys))
		for i, k := range keys {
			k := k
			cs[i] = compute.Then(ops.Get(props, k), func(d value.Value, _ compute.Context) compute.Computation {
				desc, ok := d.(value.Object)
				if !ok {
					return ops.ThrowTypeError("Property description must be an object: %s", k)
				}
				return defineFromDescriptor(o, k, desc)
			})
		}
		return compute.Bind(compute.Sequence(cs...), func(any, compute.Context) compute.Computation {
			return compute.Just(o)
		})
	})
}

var descriptorFields = []string{"value", "writable", "enumerable", "configurable", "get", "set"}

// defineFromDescriptor reads a property descriptor object and defines the
// resulting property on o. Absent fields keep the value of an existing
// property and default to false otherwise.
func defineFromDescriptor(o value.Object, key string, desc value.Object) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		store := ctx.Store()
		var present []string
		var reads []compute.Computation
		for _, f := range descriptorFields {
			if store.HasProperty(desc, f) {
				present = append(present, f)
				reads = append(reads, ops.Get(desc, f))
			}
		}
		return compute.Collect(reads, func(vals []value.Value, ctx compute.Context) compute.Computation {
			obj, _ := ctx.Store().Object(o)
			p, _ := obj.Own(key)
			for i, f := range present {
				v := vals[i]
				switch f {
				case "value":
					p.Value, p.Accessor = v, false
				case "writable":
					p.Writable, p.Accessor = value.ToBoolean(v), false
				case "enumerable":
					p.Enumerable = value.ToBoolean(v)
				case "configurable":
					p.Configurable = value.ToBoolean(v)
				case "get", "set":
					if _, isUndef := v.(value.Undefined); !isUndef && !ops.IsCallable(ctx.Store(), v) {
						return ops.ThrowTypeError("%s must be a function: %s", f, ops.Describe(ctx.Store(), v))
					}
					p.Accessor, p.Writable, p.Value = true, false, nil
					if f == "get" {
						p.Getter = v
					} else {
						p.Setter = v
					}
				}
			}
			return compute.Bind(ops.DefineOwnProperty(o, key, p), func(any, compute.Context) compute.Computation {
				return compute.Just(o)
			})
		})
	})
}

func fromPropertyDescriptor(ctx compute.Context, p env.Property) compute.Computation {
	d := env.NewObject("Object", ctx.Realm().ObjectPrototype)
	if p.Accessor {
		d = d.With("get", env.Data(p.Getter)).With("set", env.Data(p.Setter))
	} else {
		d = d.With("value", env.Data(p.Value)).With("writable", env.Data(value.Boolean(p.Writable)))
	}
	d = d.With("enumerable", env.Data(value.Boolean(p.Enumerable)))
	d = d.With("configurable", env.Data(value.Boolean(p.Configurable)))
	ref, store := ctx.Store().NewObject(d)
	return compute.Put(ctx.WithStore(store), ref)
}
