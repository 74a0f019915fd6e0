package ops

import (
	"errors"
	"strconv"
	"unicode/utf16"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

var errArrayLength = errors.New("Invalid array length")

func arrayLength(obj env.Object) uint32 {
	p, ok := obj.Own("length")
	if !ok {
		return 0
	}
	return value.ToUint32(value.NumberOf(p.Value))
}

func withLength(obj env.Object, n uint32) env.Object {
	p, ok := obj.Own("length")
	if !ok {
		p = env.Property{Writable: true}
	}
	p.Value = value.Number(n)
	return obj.With("length", p)
}

// arrayWrite keeps length consistent after key was written on an array.
func arrayWrite(obj env.Object, key string, v value.Value) (env.Object, error) {
	if idx, ok := value.ArrayIndex(key); ok {
		if idx >= arrayLength(obj) {
			obj = withLength(obj, idx+1)
		}
		return obj, nil
	}
	if key != "length" {
		return obj, nil
	}
	f := value.NumberOf(v)
	n := value.ToUint32(f)
	if float64(n) != f {
		return obj, errArrayLength
	}
	for _, k := range obj.Keys() {
		if idx, ok := value.ArrayIndex(k); ok && idx >= n {
			obj = obj.Without(k)
		}
	}
	return withLength(obj, n), nil
}

// NewObjectIn allocates an ordinary object inheriting from
// Object.prototype.
func NewObjectIn(ctx compute.Context) (value.Object, compute.Context) {
	ref, store := ctx.Store().NewObject(env.NewObject("Object", ctx.Realm().ObjectPrototype))
	return ref, ctx.WithStore(store)
}

func NewObject() compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		o, ctx := NewObjectIn(ctx)
		return compute.Put(ctx, o)
	})
}

// NewArrayIn allocates an array holding vals. A nil element is a hole.
func NewArrayIn(ctx compute.Context, vals []value.Value) (value.Object, compute.Context) {
	obj := env.NewObject("Array", ctx.Realm().ArrayPrototype)
	for i, v := range vals {
		if v != nil {
			obj = obj.With(strconv.Itoa(i), env.Data(v))
		}
	}
	obj = withLength(obj, uint32(len(vals)))
	ref, store := ctx.Store().NewObject(obj)
	return ref, ctx.WithStore(store)
}

func NewArray(vals []value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		o, ctx := NewArrayIn(ctx, vals)
		return compute.Put(ctx, o)
	})
}

// NewSparseArray allocates an array of length n without elements.
func NewSparseArray(n uint32) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		obj := withLength(env.NewObject("Array", ctx.Realm().ArrayPrototype), n)
		ref, store := ctx.Store().NewObject(obj)
		return compute.Put(ctx.WithStore(store), ref)
	})
}

// MaxDenseLength bounds the arrays copied element by element into Go
// slices. Longer arrays stay valid but the builtins reading them throw.
const MaxDenseLength = 1 << 22

// ArrayValues reads the elements of an array-like object as data
// properties. Holes and accessors read as undefined. ok is false when the
// length exceeds MaxDenseLength.
func ArrayValues(store env.Store, o value.Object) (vals []value.Value, ok bool) {
	obj, found := store.Object(o)
	if !found {
		return nil, true
	}
	n := arrayLength(obj)
	if n > MaxDenseLength {
		return nil, false
	}
	out := make([]value.Value, n)
	for i := range out {
		out[i] = value.Undefined{}
		if v, ok := dataValue(store, o, strconv.Itoa(i)); ok {
			out[i] = v
		}
	}
	return out, true
}

// Elements hands the elements of o to f, throwing a RangeError when o is
// longer than MaxDenseLength.
func Elements(o value.Object, f func(vals []value.Value, ctx compute.Context) compute.Computation) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		vals, ok := ArrayValues(ctx.Store(), o)
		if !ok {
			return ThrowRangeError("Array length %d exceeds %d elements", Length(ctx.Store(), o), MaxDenseLength)
		}
		return f(vals, ctx)
	})
}

// Length reads the length property of an array-like object.
func Length(store env.Store, o value.Object) uint32 {
	v, ok := dataValue(store, o, "length")
	if !ok {
		return 0
	}
	return value.ToUint32(value.NumberOf(v))
}

// IsArray reports whether v is an array object.
func IsArray(store env.Store, v value.Value) bool {
	o, ok := v.(value.Object)
	if !ok {
		return false
	}
	obj, ok := store.Object(o)
	return ok && obj.Class == "Array"
}

// Wrap allocates the wrapper object of a primitive.
func Wrap(ctx compute.Context, v value.Value) (value.Object, compute.Context) {
	realm := ctx.Realm()
	var obj env.Object
	switch p := v.(type) {
	case value.Boolean:
		obj = env.NewObject("Boolean", realm.BooleanPrototype)
	case value.Number:
		obj = env.NewObject("Number", realm.NumberPrototype)
	case value.String:
		obj = env.NewObject("String", realm.StringPrototype)
		u := units(string(p))
		for i := range u {
			ch := string(utf16.Decode(u[i : i+1]))
			obj = obj.With(strconv.Itoa(i), env.Property{Value: value.String(ch), Enumerable: true})
		}
		obj = obj.With("length", env.Property{Value: value.Number(len(u))})
	default:
		obj = env.NewObject("Object", realm.ObjectPrototype)
	}
	obj.Primitive = v
	ref, store := ctx.Store().NewObject(obj)
	return ref, ctx.WithStore(store)
}
