package value

import "fmt"

// Type is the ECMAScript language type of a value.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Value is a script value. Every implementation is comparable, so two values
// of the same type can be compared with ==.
type Value interface {
	Type() Type
}

type Undefined struct{}

func (Undefined) Type() Type { return TypeUndefined }

type Null struct{}

func (Null) Type() Type { return TypeNull }

type Boolean bool

func (Boolean) Type() Type { return TypeBoolean }

type Number float64

func (Number) Type() Type { return TypeNumber }

type String string

func (String) Type() Type { return TypeString }

// Ref is a handle into the arena holding environment records and objects.
// Handles are never reused.
type Ref uint64

// Object is a value referring to an object in the arena.
type Object Ref

func (Object) Type() Type { return TypeObject }

func (o Object) Ref() Ref { return Ref(o) }

var (
	True  = Boolean(true)
	False = Boolean(false)
)

func IsNullish(v Value) bool {
	switch v.(type) {
	case Undefined, Null:
		return true
	}
	return false
}

func IsPrimitive(v Value) bool {
	_, ok := v.(Object)
	return !ok
}
