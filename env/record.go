package env

import (
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/timewinder-dev/ecmastep/value"
)

type RecordKind uint8

const (
	Declarative RecordKind = iota
	ObjectBacked
)

func (k RecordKind) String() string {
	if k == ObjectBacked {
		return "object"
	}
	return "declarative"
}

type Binding struct {
	Value     value.Value
	Mutable   bool
	Deletable bool
}

// Record is an environment record. Declarative records own a persistent
// name to binding map; object-backed records resolve names through the
// properties of Object. Outer is zero for the outermost record.
type Record struct {
	Kind   RecordKind
	Outer  value.Ref
	Object value.Object
	Refs   int

	bindings *immutable.Map[string, Binding]
}

func (r Record) Binding(name string) (Binding, bool) {
	if r.bindings == nil {
		return Binding{}, false
	}
	return r.bindings.Get(name)
}

func (r Record) WithBinding(name string, b Binding) Record {
	if r.bindings == nil {
		r.bindings = immutable.NewMap[string, Binding](nil)
	}
	r.bindings = r.bindings.Set(name, b)
	return r
}

func (r Record) WithoutBinding(name string) Record {
	if r.bindings == nil {
		return r
	}
	r.bindings = r.bindings.Delete(name)
	return r
}

// Names lists the declarative bindings in sorted order.
func (r Record) Names() []string {
	if r.bindings == nil {
		return nil
	}
	names := make([]string, 0, r.bindings.Len())
	itr := r.bindings.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
