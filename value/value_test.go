package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBoolean(t *testing.T) {
	cases := []struct {
		in   Value
		want bool
	}{
		{Undefined{}, false},
		{Null{}, false},
		{True, true},
		{Number(0), false},
		{Number(math.NaN()), false},
		{Number(-1), true},
		{String(""), false},
		{String("0"), true},
		{Object(7), true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToBoolean(c.in), "ToBoolean(%#v)", c.in)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:           "0",
		1:           "1",
		-42:         "-42",
		0.5:         "0.5",
		1e21:        "1e+21",
		1e-7:        "1e-7",
		0.000001:    "0.000001",
		123456789.5: "123456789.5",
		math.Inf(1): "Infinity",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in))
	}
	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 0.0, ParseNumber("  "))
	assert.Equal(t, 12.5, ParseNumber(" 12.5\n"))
	assert.Equal(t, 255.0, ParseNumber("0xff"))
	assert.Equal(t, math.Inf(-1), ParseNumber("-Infinity"))
	assert.True(t, math.IsNaN(ParseNumber("12px")))
	assert.True(t, math.IsNaN(ParseNumber("inf")))
}

func TestInt32Conversions(t *testing.T) {
	assert.Equal(t, int32(-1), ToInt32(4294967295))
	assert.Equal(t, uint32(4294967295), ToUint32(-1))
	assert.Equal(t, int32(5), ToInt32(5.9))
	assert.Equal(t, int32(0), ToInt32(math.NaN()))
}

func TestEquality(t *testing.T) {
	nan := Number(math.NaN())
	assert.False(t, StrictEquals(nan, nan))
	assert.True(t, SameValue(nan, nan))
	assert.True(t, StrictEquals(Number(0), Number(math.Copysign(0, -1))))
	assert.False(t, SameValue(Number(0), Number(math.Copysign(0, -1))))
	assert.False(t, StrictEquals(String("1"), Number(1)))
	assert.True(t, StrictEquals(Object(3), Object(3)))
	assert.True(t, StrictEquals(Undefined{}, Undefined{}))
}

func TestArrayIndex(t *testing.T) {
	n, ok := ArrayIndex("12")
	assert.True(t, ok)
	assert.Equal(t, uint32(12), n)
	_, ok = ArrayIndex("012")
	assert.False(t, ok)
	_, ok = ArrayIndex("-1")
	assert.False(t, ok)
	_, ok = ArrayIndex("4294967295")
	assert.False(t, ok)
}
