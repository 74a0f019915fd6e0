package env

import (
	"io"

	"github.com/timewinder-dev/ecmastep/value"
)

type CodeKind uint8

const (
	GlobalCode CodeKind = iota
	EvalCode
	FunctionCode
)

func (k CodeKind) String() string {
	switch k {
	case EvalCode:
		return "eval"
	case FunctionCode:
		return "function"
	}
	return "global"
}

// ExecutionContext names the environments and this binding in effect for
// the code currently running.
type ExecutionContext struct {
	Kind     CodeKind
	Strict   bool
	Lexical  value.Ref
	Variable value.Ref
	This     value.Value
}

// Realm holds the well-known objects of one interpreter instance. It is
// built once and never modified afterwards.
type Realm struct {
	Global    value.Object
	GlobalEnv value.Ref

	ObjectPrototype   value.Object
	FunctionPrototype value.Object
	ArrayPrototype    value.Object
	BooleanPrototype  value.Object
	NumberPrototype   value.Object
	StringPrototype   value.Object
	ErrorPrototype    value.Object

	// ErrorPrototypes maps native error names such as "TypeError" to their
	// prototype objects.
	ErrorPrototypes map[string]value.Object

	MaxCallDepth int
	Output       io.Writer
}

func (r *Realm) ErrorPrototypeFor(name string) value.Object {
	if p, ok := r.ErrorPrototypes[name]; ok {
		return p
	}
	return r.ErrorPrototype
}
