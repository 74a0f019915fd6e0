package env

import (
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/timewinder-dev/ecmastep/value"
)

// Callable is the behaviour attached to function objects. The set of
// implementations is closed and lives in the ops package.
type Callable interface {
	FunctionName() string
}

type Property struct {
	Value        value.Value
	Getter       value.Value
	Setter       value.Value
	Accessor     bool
	Writable     bool
	Enumerable   bool
	Configurable bool

	order uint64
}

// Data returns a writable, enumerable, configurable data property.
func Data(v value.Value) Property {
	return Property{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// Hidden returns a writable, configurable, non-enumerable data property, the
// shape used for built-in methods.
func Hidden(v value.Value) Property {
	return Property{Value: v, Writable: true, Configurable: true}
}

// Object is the arena representation of a script object. Proto is either
// value.Null or a value.Object. Primitive holds the wrapped value of
// Boolean, Number and String objects.
type Object struct {
	Class      string
	Proto      value.Value
	Extensible bool
	Primitive  value.Value
	Call       Callable

	props *immutable.Map[string, Property]
	seq   uint64
}

func NewObject(class string, proto value.Value) Object {
	if proto == nil {
		proto = value.Null{}
	}
	return Object{
		Class:      class,
		Proto:      proto,
		Extensible: true,
		props:      immutable.NewMap[string, Property](nil),
	}
}

func (o Object) IsCallable() bool { return o.Call != nil }

func (o Object) Own(key string) (Property, bool) {
	if o.props == nil {
		return Property{}, false
	}
	return o.props.Get(key)
}

// With sets an own property. A replaced property keeps its enumeration
// position.
func (o Object) With(key string, p Property) Object {
	if o.props == nil {
		o.props = immutable.NewMap[string, Property](nil)
	}
	if old, ok := o.props.Get(key); ok {
		p.order = old.order
	} else {
		o.seq++
		p.order = o.seq
	}
	o.props = o.props.Set(key, p)
	return o
}

func (o Object) Without(key string) Object {
	if o.props == nil {
		return o
	}
	o.props = o.props.Delete(key)
	return o
}

func (o Object) Len() int {
	if o.props == nil {
		return 0
	}
	return o.props.Len()
}

// Keys returns own property names: array indices in ascending numeric order,
// then the rest in insertion order.
func (o Object) Keys() []string {
	if o.props == nil {
		return nil
	}
	type entry struct {
		key   string
		index uint32
		isIdx bool
		order uint64
	}
	entries := make([]entry, 0, o.props.Len())
	itr := o.props.Iterator()
	for !itr.Done() {
		k, p, _ := itr.Next()
		idx, isIdx := value.ArrayIndex(k)
		entries = append(entries, entry{key: k, index: idx, isIdx: isIdx, order: p.order})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.isIdx != b.isIdx {
			return a.isIdx
		}
		if a.isIdx {
			return a.index < b.index
		}
		return a.order < b.order
	})
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}
