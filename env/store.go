package env

import (
	"github.com/benbjohnson/immutable"
	"github.com/timewinder-dev/ecmastep/value"
)

type refHasher struct{}

func (refHasher) Hash(key value.Ref) uint32 {
	return uint32(key ^ (key >> 32))
}

func (refHasher) Equal(a, b value.Ref) bool { return a == b }

// Store is the persistent arena holding environment records and objects.
// Every mutation returns a new Store; older stores stay valid.
type Store struct {
	records *immutable.Map[value.Ref, Record]
	objects *immutable.Map[value.Ref, Object]
	next    value.Ref
}

func NewStore() Store {
	return Store{
		records: immutable.NewMap[value.Ref, Record](refHasher{}),
		objects: immutable.NewMap[value.Ref, Object](refHasher{}),
		next:    1,
	}
}

func (s Store) alloc() (value.Ref, Store) {
	ref := s.next
	s.next++
	return ref, s
}

// NewRecord allocates a record with no references of its own. The record
// holds a reference to its outer record.
func (s Store) NewRecord(kind RecordKind, outer value.Ref, obj value.Object) (value.Ref, Store) {
	ref, s := s.alloc()
	s.records = s.records.Set(ref, Record{Kind: kind, Outer: outer, Object: obj})
	if outer != 0 {
		s = s.Retain(outer)
	}
	return ref, s
}

func (s Store) Record(ref value.Ref) (Record, bool) {
	return s.records.Get(ref)
}

func (s Store) PutRecord(ref value.Ref, r Record) Store {
	s.records = s.records.Set(ref, r)
	return s
}

func (s Store) Retain(ref value.Ref) Store {
	r, ok := s.records.Get(ref)
	if !ok {
		return s
	}
	r.Refs++
	s.records = s.records.Set(ref, r)
	return s
}

// Release drops one reference. A record left without references is removed
// and releases its outer record in turn.
func (s Store) Release(ref value.Ref) Store {
	for ref != 0 {
		r, ok := s.records.Get(ref)
		if !ok {
			return s
		}
		r.Refs--
		if r.Refs > 0 {
			s.records = s.records.Set(ref, r)
			return s
		}
		s.records = s.records.Delete(ref)
		ref = r.Outer
	}
	return s
}

func (s Store) RecordCount() int { return s.records.Len() }

func (s Store) NewObject(o Object) (value.Object, Store) {
	ref, s := s.alloc()
	s.objects = s.objects.Set(ref, o)
	return value.Object(ref), s
}

func (s Store) Object(o value.Object) (Object, bool) {
	return s.objects.Get(value.Ref(o))
}

func (s Store) PutObject(ref value.Object, o Object) Store {
	s.objects = s.objects.Set(value.Ref(ref), o)
	return s
}

func (s Store) ObjectCount() int { return s.objects.Len() }

// FindProperty looks key up along the prototype chain of o and returns the
// property together with the object owning it.
func (s Store) FindProperty(o value.Object, key string) (Property, value.Object, bool) {
	cur := o
	for {
		obj, ok := s.Object(cur)
		if !ok {
			return Property{}, 0, false
		}
		if p, ok := obj.Own(key); ok {
			return p, cur, true
		}
		next, ok := obj.Proto.(value.Object)
		if !ok {
			return Property{}, 0, false
		}
		cur = next
	}
}

func (s Store) HasProperty(o value.Object, key string) bool {
	_, _, ok := s.FindProperty(o, key)
	return ok
}

// IsCallable reports whether v is a function object.
func (s Store) IsCallable(v value.Value) bool {
	o, ok := v.(value.Object)
	if !ok {
		return false
	}
	obj, ok := s.Object(o)
	return ok && obj.IsCallable()
}
