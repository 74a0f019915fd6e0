package ops

import (
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/logging"
	"github.com/timewinder-dev/ecmastep/value"
)

// Resolve finds the record binding name, starting at ref and following outer
// records.
func Resolve(store env.Store, ref value.Ref, name string) (value.Ref, env.Record, bool) {
	for ref != 0 {
		rec, ok := store.Record(ref)
		if !ok {
			break
		}
		switch rec.Kind {
		case env.Declarative:
			if _, ok := rec.Binding(name); ok {
				return ref, rec, true
			}
		case env.ObjectBacked:
			if store.HasProperty(rec.Object, name) {
				return ref, rec, true
			}
		}
		ref = rec.Outer
	}
	return 0, env.Record{}, false
}

func GetBinding(name string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		_, rec, ok := Resolve(ctx.Store(), ctx.Exec().Lexical, name)
		if !ok {
			return ThrowReferenceError("%s is not defined", name)
		}
		if rec.Kind == env.ObjectBacked {
			return Get(rec.Object, name)
		}
		b, _ := rec.Binding(name)
		return compute.Just(b.Value)
	})
}

// SetBinding assigns to the binding of name. An unresolvable name creates a
// global property, or is a ReferenceError in strict code.
func SetBinding(name string, v value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		strict := ctx.Exec().Strict
		ref, rec, ok := Resolve(ctx.Store(), ctx.Exec().Lexical, name)
		if !ok {
			if strict {
				return ThrowReferenceError("%s is not defined", name)
			}
			return Put(ctx.Realm().Global, name, v)
		}
		if rec.Kind == env.ObjectBacked {
			return Put(rec.Object, name, v)
		}
		b, _ := rec.Binding(name)
		if !b.Mutable {
			if strict {
				return ThrowTypeError("Assignment to constant variable %s", name)
			}
			return compute.Just(v)
		}
		b.Value = v
		return compute.Put(ctx.WithStore(ctx.Store().PutRecord(ref, rec.WithBinding(name, b))), v)
	})
}

// DeclareVar creates a binding initialised to undefined in the variable
// environment unless one exists.
func DeclareVar(name string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		exec := ctx.Exec()
		store := ctx.Store()
		deletable := exec.Kind == env.EvalCode
		rec, ok := store.Record(exec.Variable)
		if !ok {
			return compute.Fatalf("ops: variable environment %d missing", exec.Variable)
		}
		switch rec.Kind {
		case env.Declarative:
			if _, exists := rec.Binding(name); exists {
				return compute.Just(value.Undefined{})
			}
			rec = rec.WithBinding(name, env.Binding{Value: value.Undefined{}, Mutable: true, Deletable: deletable})
			store = store.PutRecord(exec.Variable, rec)
		case env.ObjectBacked:
			obj, _ := store.Object(rec.Object)
			if _, exists := obj.Own(name); exists {
				return compute.Just(value.Undefined{})
			}
			obj = obj.With(name, env.Property{Value: value.Undefined{}, Writable: true, Enumerable: true, Configurable: deletable})
			store = store.PutObject(rec.Object, obj)
		}
		logging.Logger().Trace().Str("name", name).Msg("declare var")
		return compute.Put(ctx.WithStore(store), value.Undefined{})
	})
}

// DeclareFunction binds name to fn in the variable environment, replacing
// any existing binding.
func DeclareFunction(name string, fn value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		exec := ctx.Exec()
		store := ctx.Store()
		deletable := exec.Kind == env.EvalCode
		rec, ok := store.Record(exec.Variable)
		if !ok {
			return compute.Fatalf("ops: variable environment %d missing", exec.Variable)
		}
		switch rec.Kind {
		case env.Declarative:
			rec = rec.WithBinding(name, env.Binding{Value: fn, Mutable: true, Deletable: deletable})
			store = store.PutRecord(exec.Variable, rec)
		case env.ObjectBacked:
			obj, _ := store.Object(rec.Object)
			if old, exists := obj.Own(name); exists && !old.Configurable {
				if old.Accessor || !old.Writable {
					return ThrowTypeError("Cannot redeclare %s", name)
				}
				old.Value = fn
				obj = obj.With(name, old)
			} else {
				obj = obj.With(name, env.Property{Value: fn, Writable: true, Enumerable: true, Configurable: deletable})
			}
			store = store.PutObject(rec.Object, obj)
		}
		return compute.Put(ctx.WithStore(store), fn)
	})
}

// DeleteBinding implements delete applied to a bare identifier.
func DeleteBinding(name string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		ref, rec, ok := Resolve(ctx.Store(), ctx.Exec().Lexical, name)
		if !ok {
			return compute.Just(value.True)
		}
		if rec.Kind == env.ObjectBacked {
			return Delete(rec.Object, name)
		}
		b, _ := rec.Binding(name)
		if !b.Deletable {
			return compute.Just(value.False)
		}
		store := ctx.Store().PutRecord(ref, rec.WithoutBinding(name))
		return compute.Put(ctx.WithStore(store), value.True)
	})
}

// TypeofBinding is typeof applied to an identifier; unresolvable names
// yield "undefined" instead of throwing.
func TypeofBinding(name string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		if _, _, ok := Resolve(ctx.Store(), ctx.Exec().Lexical, name); !ok {
			return compute.Just(value.String("undefined"))
		}
		return compute.Then(GetBinding(name), func(v value.Value, ctx compute.Context) compute.Computation {
			return compute.Just(value.String(Typeof(ctx.Store(), v)))
		})
	})
}

func This() compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		return compute.Just(ctx.Exec().This)
	})
}

// WithScope runs body in a fresh declarative environment holding a single
// binding. The previous lexical environment is restored however body
// completes.
func WithScope(name string, v value.Value, body compute.Computation) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		saved := ctx.Exec()
		scope, store := ctx.Store().NewRecord(env.Declarative, saved.Lexical, 0)
		store = store.Retain(scope)
		rec, _ := store.Record(scope)
		store = store.PutRecord(scope, rec.WithBinding(name, env.Binding{Value: v, Mutable: true}))
		exec := saved
		exec.Lexical = scope
		return compute.Guard(compute.Enter(ctx.WithExec(exec).WithStore(store), body), func(cur compute.Context) compute.Context {
			e := cur.Exec()
			e.Lexical = saved.Lexical
			return cur.WithExec(e).WithStore(cur.Store().Release(scope))
		})
	})
}
