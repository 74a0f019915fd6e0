package builtin

import (
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

// builder accumulates the initial object graph of a realm.
type builder struct {
	store env.Store
	realm *env.Realm
	opts  Options
}

func (b *builder) object(class string, proto value.Value) value.Object {
	ref, store := b.store.NewObject(env.NewObject(class, proto))
	b.store = store
	return ref
}

func (b *builder) get(o value.Object) env.Object {
	obj, _ := b.store.Object(o)
	return obj
}

func (b *builder) set(o value.Object, key string, p env.Property) {
	b.store = b.store.PutObject(o, b.get(o).With(key, p))
}

// hidden defines a hidden data property.
func (b *builder) hidden(o value.Object, key string, v value.Value) {
	b.set(o, key, env.Hidden(v))
}

// constant defines a read-only, non-enumerable property.
func (b *builder) constant(o value.Object, key string, v value.Value) {
	b.set(o, key, env.Property{Value: v})
}

func (b *builder) native(name string, arity int, fn, ctor ops.NativeFn) value.Object {
	ref, store := ops.NewNative(b.store, b.realm, &ops.NativeFunction{Name: name, Arity: arity, Fn: fn, Ctor: ctor})
	b.store = store
	return ref
}

func (b *builder) method(o value.Object, name string, arity int, fn ops.NativeFn) value.Object {
	f := b.native(name, arity, fn, nil)
	b.hidden(o, name, f)
	return f
}

// constructor creates a global constructor linked with its prototype
// object.
func (b *builder) constructor(name string, arity int, proto value.Object, fn, ctor ops.NativeFn) value.Object {
	c := b.native(name, arity, fn, ctor)
	b.set(c, "prototype", env.Property{Value: proto})
	b.hidden(proto, "constructor", c)
	b.hidden(b.realm.Global, name, c)
	return c
}
