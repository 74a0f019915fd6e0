// Package completion implements completion records and the statement-level
// control flow built on them.
package completion

import (
	"fmt"

	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/value"
)

type Kind uint8

const (
	KindNormal Kind = iota
	KindReturn
	KindBreak
	KindContinue
	KindThrow
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindReturn:
		return "return"
	case KindBreak:
		return "break"
	case KindContinue:
		return "continue"
	case KindThrow:
		return "throw"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Completion is the outcome of a statement. A nil Value is the empty value.
// Site is the context a throw was raised in; other kinds leave it nil.
type Completion struct {
	Kind   Kind
	Value  value.Value
	Target string
	Site   *compute.Context
}

func (c Completion) Abrupt() bool { return c.Kind != KindNormal }

func (c Completion) Empty() bool { return c.Value == nil }

func (c Completion) String() string {
	v := "empty"
	if c.Value != nil {
		v = value.StringOf(c.Value)
	}
	if c.Target != "" {
		return fmt.Sprintf("(%s, %s, %s)", c.Kind, v, c.Target)
	}
	return fmt.Sprintf("(%s, %s)", c.Kind, v)
}

func Normal(v value.Value) Completion { return Completion{Kind: KindNormal, Value: v} }

func Empty() Completion { return Completion{Kind: KindNormal} }

func Return(v value.Value) Completion { return Completion{Kind: KindReturn, Value: v} }

func Break(label string) Completion { return Completion{Kind: KindBreak, Target: label} }

func Continue(label string) Completion { return Completion{Kind: KindContinue, Target: label} }

func Throw(v value.Value) Completion { return Completion{Kind: KindThrow, Value: v} }

// Raise fails the current computation with a throw completion carrying v
// and the context it was raised in.
func Raise(v value.Value) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		t := Throw(v)
		t.Site = &ctx
		return compute.Fail(t)
	})
}

// UpdateEmpty fills an empty completion value with v.
func UpdateEmpty(c Completion, v value.Value) Completion {
	if c.Value == nil {
		c.Value = v
	}
	return c
}

// ValueOf returns the completion value, with empty read as undefined.
func (c Completion) ValueOf() value.Value {
	if c.Value == nil {
		return value.Undefined{}
	}
	return c.Value
}

// Thrown extracts a thrown value from a failure payload.
func Thrown(failure any) (value.Value, bool) {
	c, ok := failure.(Completion)
	if !ok || c.Kind != KindThrow {
		return nil, false
	}
	return c.Value, true
}

// Capture turns a throw on the failure channel into a throw completion
// value.
func Capture(c compute.Computation) compute.Computation {
	return compute.Either(c, nil, func(e any, _ compute.Context) compute.Computation {
		if t, ok := e.(Completion); ok && t.Kind == KindThrow {
			return compute.Just(t)
		}
		return compute.Fail(e)
	})
}

// Release is the inverse of Capture: a throw completion goes back on the
// failure channel, anything else is passed through.
func Release(c Completion) compute.Computation {
	if c.Kind == KindThrow {
		return compute.Fail(c)
	}
	return compute.Just(c)
}

// LabelSet is the set of labels a breakable statement answers to. The empty
// target of an unlabelled break or continue always matches.
type LabelSet []string

func (ls LabelSet) Contains(target string) bool {
	if target == "" {
		return true
	}
	for _, l := range ls {
		if l == target {
			return true
		}
	}
	return false
}

func (ls LabelSet) With(label string) LabelSet {
	out := make(LabelSet, 0, len(ls)+1)
	out = append(out, ls...)
	return append(out, label)
}
