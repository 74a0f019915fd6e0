package inspect

import (
	"io"

	"github.com/shamaton/msgpack/v2"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/value"
)

type Binding struct {
	Name    string
	Value   string
	Mutable bool
}

// Environment is one record of a scope chain with its bindings rendered.
type Environment struct {
	Ref      uint64
	Kind     string
	Bindings []Binding
}

type Frame struct {
	Name string
	Call compute.Point
}

// Snapshot is a self-contained picture of a context, safe to keep after the
// context moves on.
type Snapshot struct {
	Location     compute.Point
	Depth        int
	Strict       bool
	Stack        []Frame
	Environments []Environment
}

// Environments walks the scope chain of ctx from the innermost record out
// to the global environment. Object-backed records list their enumerable
// properties only.
func Environments(ctx compute.Context) []Environment {
	store := ctx.Store()
	var out []Environment
	for ref := ctx.Exec().Lexical; ref != 0; {
		rec, ok := store.Record(ref)
		if !ok {
			break
		}
		out = append(out, environment(store, ref, rec))
		ref = rec.Outer
	}
	return out
}

func environment(store env.Store, ref value.Ref, rec env.Record) Environment {
	e := Environment{Ref: uint64(ref)}
	switch rec.Kind {
	case env.Declarative:
		e.Kind = "declarative"
		for _, name := range rec.Names() {
			b, _ := rec.Binding(name)
			e.Bindings = append(e.Bindings, Binding{Name: name, Value: Format(store, b.Value), Mutable: b.Mutable})
		}
	case env.ObjectBacked:
		e.Kind = "object"
		obj, _ := store.Object(rec.Object)
		for _, k := range obj.Keys() {
			p, _ := obj.Own(k)
			if !p.Enumerable {
				continue
			}
			e.Bindings = append(e.Bindings, Binding{Name: k, Value: formatProperty(store, p, 0), Mutable: p.Writable || p.Accessor})
		}
	}
	return e
}

// CallStack lists the active calls innermost first.
func CallStack(ctx compute.Context) []Frame {
	var out []Frame
	for _, f := range ctx.Stack().Frames() {
		name := f.Name
		if name == "" {
			name = "(anonymous)"
		}
		out = append(out, Frame{Name: name, Call: f.Call})
	}
	return out
}

func Capture(ctx compute.Context) *Snapshot {
	return &Snapshot{
		Location:     ctx.Location(),
		Depth:        ctx.Depth(),
		Strict:       ctx.Exec().Strict,
		Stack:        CallStack(ctx),
		Environments: Environments(ctx),
	}
}

func (s *Snapshot) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, s)
}

func (s *Snapshot) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, s)
}
