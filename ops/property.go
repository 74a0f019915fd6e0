package ops

import (
	"unicode/utf16"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

func units(s string) []uint16 { return utf16.Encode([]rune(s)) }

// StringLength is the length of s in UTF-16 code units.
func StringLength(s string) int { return len(units(s)) }

// CharAt returns the code unit at i as a string.
func CharAt(s string, i int) (string, bool) {
	u := units(s)
	if i < 0 || i >= len(u) {
		return "", false
	}
	return string(utf16.Decode(u[i : i+1])), true
}

// prototypeOf returns the object used for property lookups on v.
func prototypeOf(realm *env.Realm, v value.Value) (value.Object, bool) {
	switch v := v.(type) {
	case value.Object:
		return v, true
	case value.String:
		return realm.StringPrototype, true
	case value.Number:
		return realm.NumberPrototype, true
	case value.Boolean:
		return realm.BooleanPrototype, true
	}
	return 0, false
}

// HasProperty reports whether o or its prototype chain has key.
func HasProperty(o value.Object, key string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		return compute.Just(value.Boolean(ctx.Store().HasProperty(o, key)))
	})
}

// Get reads property key of base, running getters.
func Get(base value.Value, key string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		if s, ok := base.(value.String); ok {
			if key == "length" {
				return compute.Just(value.Number(StringLength(string(s))))
			}
			if idx, ok := value.ArrayIndex(key); ok {
				if ch, ok := CharAt(string(s), int(idx)); ok {
					return compute.Just(value.String(ch))
				}
			}
		}
		holder, ok := prototypeOf(ctx.Realm(), base)
		if !ok {
			return ThrowTypeError("Cannot read property '%s' of %s", key, value.StringOf(base))
		}
		p, _, found := ctx.Store().FindProperty(holder, key)
		switch {
		case !found:
			return compute.Just(value.Undefined{})
		case p.Accessor:
			if getter, ok := p.Getter.(value.Object); ok {
				return Call(getter, base, nil)
			}
			return compute.Just(value.Undefined{})
		}
		return compute.Just(p.Value)
	})
}

func reject(strict bool, v value.Value, format string, args ...any) compute.Computation {
	if strict {
		return ThrowTypeError(format, args...)
	}
	return compute.Just(v)
}

// Put assigns v to property key of base and yields v. Failed assignments
// are silent outside strict code.
func Put(base value.Value, key string, v value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		strict := ctx.Exec().Strict
		switch b := base.(type) {
		case value.Undefined, value.Null:
			return ThrowTypeError("Cannot set property '%s' of %s", key, value.StringOf(base))
		case value.Object:
			return putObject(ctx, b, key, v, strict)
		}
		holder, _ := prototypeOf(ctx.Realm(), base)
		if p, _, ok := ctx.Store().FindProperty(holder, key); ok && p.Accessor {
			if setter, ok := p.Setter.(value.Object); ok {
				return compute.Bind(Call(setter, base, []value.Value{v}), func(any, compute.Context) compute.Computation {
					return compute.Just(v)
				})
			}
		}
		return reject(strict, v, "Cannot create property '%s' on %s", key, Describe(ctx.Store(), base))
	})
}

func putObject(ctx compute.Context, o value.Object, key string, v value.Value, strict bool) compute.Computation {
	store := ctx.Store()
	obj, ok := store.Object(o)
	if !ok {
		return compute.Fatalf("ops: object %d missing", o)
	}
	p, owner, found := store.FindProperty(o, key)
	if found && p.Accessor {
		if setter, ok := p.Setter.(value.Object); ok {
			return compute.Bind(Call(setter, o, []value.Value{v}), func(any, compute.Context) compute.Computation {
				return compute.Just(v)
			})
		}
		return reject(strict, v, "Cannot set property %s of %s which has only a getter", key, Describe(store, o))
	}
	if found && !p.Writable {
		return reject(strict, v, "Cannot assign to read only property '%s' of %s", key, Describe(store, o))
	}
	if found && owner == o {
		p.Value = v
		obj = obj.With(key, p)
	} else {
		if !obj.Extensible {
			return reject(strict, v, "Cannot add property %s, object is not extensible", key)
		}
		obj = obj.With(key, env.Data(v))
	}
	if obj.Class == "Array" {
		var err error
		obj, err = arrayWrite(obj, key, v)
		if err != nil {
			return ThrowRangeError("%v", err)
		}
	}
	return compute.Put(ctx.WithStore(store.PutObject(o, obj)), v)
}

// DefineOwnProperty installs p as an own property of o. It fails with a
// TypeError when the existing property is not configurable or o is not
// extensible.
func DefineOwnProperty(o value.Object, key string, p env.Property) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		store := ctx.Store()
		obj, ok := store.Object(o)
		if !ok {
			return compute.Fatalf("ops: object %d missing", o)
		}
		old, exists := obj.Own(key)
		if exists && !old.Configurable && !sameProperty(old, p) {
			if old.Accessor || p.Accessor || !old.Writable || p.Configurable || p.Enumerable != old.Enumerable {
				return ThrowTypeError("Cannot redefine property: %s", key)
			}
		}
		if !exists && !obj.Extensible {
			return ThrowTypeError("Cannot define property %s, object is not extensible", key)
		}
		if p.Accessor {
			if p.Getter == nil {
				p.Getter = value.Undefined{}
			}
			if p.Setter == nil {
				p.Setter = value.Undefined{}
			}
		} else if p.Value == nil {
			p.Value = value.Undefined{}
		}
		obj = obj.With(key, p)
		if obj.Class == "Array" && !p.Accessor {
			var err error
			obj, err = arrayWrite(obj, key, p.Value)
			if err != nil {
				return ThrowRangeError("%v", err)
			}
		}
		return compute.Put(ctx.WithStore(store.PutObject(o, obj)), value.True)
	})
}

func sameProperty(a, b env.Property) bool {
	if a.Accessor != b.Accessor || a.Writable != b.Writable || a.Enumerable != b.Enumerable || a.Configurable != b.Configurable {
		return false
	}
	if a.Accessor {
		return a.Getter == b.Getter && a.Setter == b.Setter
	}
	return a.Value != nil && b.Value != nil && value.SameValue(a.Value, b.Value)
}

// Delete removes an own property and yields whether it is gone.
func Delete(base value.Value, key string) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		strict := ctx.Exec().Strict
		switch b := base.(type) {
		case value.Undefined, value.Null:
			return ThrowTypeError("Cannot convert undefined or null to object")
		case value.String:
			_, isIdx := value.ArrayIndex(key)
			return compute.Just(value.Boolean(key != "length" && !isIdx))
		case value.Object:
			store := ctx.Store()
			obj, _ := store.Object(b)
			p, ok := obj.Own(key)
			if !ok {
				return compute.Just(value.True)
			}
			if !p.Configurable {
				return reject(strict, value.False, "Cannot delete property '%s' of %s", key, Describe(store, b))
			}
			return compute.Put(ctx.WithStore(store.PutObject(b, obj.Without(key))), value.True)
		}
		return compute.Just(value.True)
	})
}

// EnumerableKeys lists the keys a for-in loop visits: enumerable properties
// of o and its prototypes, each name once, shadowed names excluded.
func EnumerableKeys(store env.Store, o value.Object) []string {
	seen := map[string]bool{}
	var keys []string
	cur := o
	for {
		obj, ok := store.Object(cur)
		if !ok {
			return keys
		}
		for _, k := range obj.Keys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			if p, _ := obj.Own(k); p.Enumerable {
				keys = append(keys, k)
			}
		}
		next, ok := obj.Proto.(value.Object)
		if !ok {
			return keys
		}
		cur = next
	}
}

// OwnKeys lists own property names, optionally only enumerable ones.
func OwnKeys(store env.Store, o value.Object, enumerableOnly bool) []string {
	obj, ok := store.Object(o)
	if !ok {
		return nil
	}
	var keys []string
	for _, k := range obj.Keys() {
		if p, _ := obj.Own(k); p.Enumerable || !enumerableOnly {
			keys = append(keys, k)
		}
	}
	return keys
}
