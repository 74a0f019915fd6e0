package value

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean implements the ECMAScript ToBoolean conversion. It never fails.
func ToBoolean(v Value) bool {
	switch v := v.(type) {
	case Undefined, Null:
		return false
	case Boolean:
		return bool(v)
	case Number:
		f := float64(v)
		return f != 0 && !math.IsNaN(f)
	case String:
		return v != ""
	case Object:
		return true
	}
	return false
}

// NumberOf converts a primitive to a number. Objects yield NaN; callers must
// convert objects to primitives first.
func NumberOf(v Value) float64 {
	switch v := v.(type) {
	case Undefined:
		return math.NaN()
	case Null:
		return 0
	case Boolean:
		if v {
			return 1
		}
		return 0
	case Number:
		return float64(v)
	case String:
		return ParseNumber(string(v))
	}
	return math.NaN()
}

const whitespace = " \t\n\v\f\r\u00a0\u1680\u2028\u2029\u3000\ufeff"

// ParseNumber implements the StringNumericLiteral grammar.
func ParseNumber(s string) float64 {
	s = strings.Trim(s, whitespace)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// StringOf converts a primitive to a string. Objects yield "[object Object]";
// callers must convert objects to primitives first.
func StringOf(v Value) string {
	switch v := v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		if v {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(float64(v))
	case String:
		return string(v)
	}
	return "[object Object]"
}

// FormatNumber renders a number the way Number.prototype.toString does with
// radix 10.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + string(sign) + digits
}

func ToInteger(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 0) || f == 0 {
		return f
	}
	return math.Trunc(f)
}

func ToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Mod(math.Trunc(f), 4294967296)))
}

func ToInt32(f float64) int32 {
	return int32(ToUint32(f))
}

// ArrayIndex reports whether key is a canonical array index.
func ArrayIndex(key string) (uint32, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// StrictEquals implements the === operator.
func StrictEquals(a, b Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	return a == b
}

// SameValue is StrictEquals except that NaN equals NaN and +0 differs from -0.
func SameValue(a, b Value) bool {
	x, xok := a.(Number)
	y, yok := b.(Number)
	if xok && yok {
		fx, fy := float64(x), float64(y)
		if math.IsNaN(fx) && math.IsNaN(fy) {
			return true
		}
		if fx == 0 && fy == 0 {
			return math.Signbit(fx) == math.Signbit(fy)
		}
		return fx == fy
	}
	return StrictEquals(a, b)
}
