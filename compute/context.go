package compute

import (
	"fmt"

	"github.com/timewinder-dev/ecmastep/env"
)

// Point is a source position of a statement boundary.
type Point struct {
	File     string
	Line     int
	Column   int
	Debugger bool
}

func (p Point) IsZero() bool { return p.Line == 0 && p.File == "" }

func (p Point) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Frame is an entry of the persistent call stack. A nil *Frame is the empty
// stack.
type Frame struct {
	Name   string
	Call   Point
	Parent *Frame
	depth  int
}

func (f *Frame) Push(name string, call Point) *Frame {
	return &Frame{Name: name, Call: call, Parent: f, depth: f.Depth() + 1}
}

func (f *Frame) Depth() int {
	if f == nil {
		return 0
	}
	return f.depth
}

// Frames lists the stack innermost first.
func (f *Frame) Frames() []*Frame {
	var out []*Frame
	for cur := f; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// Context is the immutable state threaded through evaluation.
type Context struct {
	exec  env.ExecutionContext
	store env.Store
	stack *Frame
	realm *env.Realm
	at    Point
}

func NewContext(realm *env.Realm, exec env.ExecutionContext, store env.Store) Context {
	return Context{exec: exec, store: store, realm: realm}
}

func (c Context) Exec() env.ExecutionContext { return c.exec }
func (c Context) Store() env.Store           { return c.store }
func (c Context) Stack() *Frame              { return c.stack }
func (c Context) Realm() *env.Realm          { return c.realm }
func (c Context) Location() Point            { return c.at }
func (c Context) Depth() int                 { return c.stack.Depth() }

func (c Context) WithExec(e env.ExecutionContext) Context {
	c.exec = e
	return c
}

func (c Context) WithStore(s env.Store) Context {
	c.store = s
	return c
}

func (c Context) WithStack(f *Frame) Context {
	c.stack = f
	return c
}

func (c Context) WithLocation(p Point) Context {
	c.at = p
	return c
}
