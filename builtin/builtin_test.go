package builtin

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/interp"
	"github.com/timewinder-dev/ecmastep/value"
)

func run(t *testing.T, src string) (value.Value, string) {
	t.Helper()
	var out bytes.Buffer
	p, err := compile.Compile("test.js", src, compile.Options{})
	require.NoError(t, err)
	v, _, err := interp.RunToEnd(p.Body, NewContext(Options{Output: &out}))
	require.NoError(t, err)
	return v, out.String()
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want value.Value
	}{
		{"Object.keys", "Object.keys({b: 1, a: 2}).join()", value.String("b,a")},
		{"Object.create", "var p = {x: 1}; Object.getPrototypeOf(Object.create(p)) === p", value.True},
		{"defineProperty read-only", "var o = {}; Object.defineProperty(o, 'x', {value: 1}); o.x = 2; o.x", value.Number(1)},
		{"defineProperty hidden", "var o = {}; Object.defineProperty(o, 'x', {value: 1}); Object.keys(o).length", value.Number(0)},
		{"freeze", "var o = Object.freeze({a: 1}); o.a = 2; o.b = 3; o.a + ',' + o.b + ',' + Object.isFrozen(o)", value.String("1,undefined,true")},
		{"hasOwnProperty", "({a: 1}).hasOwnProperty('a') && !({}).hasOwnProperty('toString')", value.True},
		{"Object toString", "Object.prototype.toString.call([])", value.String("[object Array]")},
		{"Array constructor length", "new Array(3).length", value.Number(3)},
		{"Array constructor items", "Array(1, 2).join('-')", value.String("1-2")},
		{"isArray", "Array.isArray([]) && !Array.isArray({})", value.True},
		{"slice", "[1, 2, 3, 4].slice(1, -1).join()", value.String("2,3")},
		{"concat", "[1].concat([2, 3], 4).join()", value.String("1,2,3,4")},
		{"indexOf", "[1, 2, 3].indexOf(3) + [1].indexOf(9)", value.Number(1)},
		{"reverse", "[1, 2, 3].reverse().join('')", value.String("321")},
		{"shift unshift", "var a = [2, 3]; a.unshift(1); a.shift() + a.length", value.Number(3)},
		{"every some", "[2, 4].every(function (x) { return x % 2 === 0; }) && [1, 2].some(function (x) { return x > 1; })", value.True},
		{"forEach", "var s = 0; [1, 2, 3].forEach(function (x) { s += x; }); s", value.Number(6)},
		{"reduce without seed", "[1, 2, 3].reduce(function (a, b) { return a * b; })", value.Number(6)},
		{"array toString", "String([1, [2, 3]])", value.String("1,2,3")},
		{"bind", "function f(a, b) { return this.k + a + b; } f.bind({k: 1}, 2)(3)", value.Number(6)},
		{"Function constructor", "new Function('a', 'b', 'return a * b')(6, 7)", value.Number(42)},
		{"function length", "(function (a, b, c) {}).length", value.Number(3)},
		{"error message", "new TypeError('bad').message", value.String("bad")},
		{"error toString", "String(new RangeError('far'))", value.String("RangeError: far")},
		{"error inheritance", "new SyntaxError('x') instanceof Error", value.True},
		{"error without new", "Error('plain').message", value.String("plain")},
		{"Number", "Number('42') + Number(true)", value.Number(43)},
		{"toFixed", "(3.14159).toFixed(2)", value.String("3.14")},
		{"Number.MAX_VALUE", "Number.MAX_VALUE > 1e300", value.True},
		{"String methods", "'Hello'.charAt(1) + 'Hello'.toUpperCase() + 'Hello'.indexOf('l')", value.String("eHELLO2")},
		{"substring", "'abcdef'.substring(4, 1)", value.String("bcd")},
		{"string length", "'abc'.length", value.Number(3)},
		{"fromCharCode", "String.fromCharCode(72, 105)", value.String("Hi")},
		{"Boolean", "Boolean('') || Boolean('x')", value.True},
		{"wrapper object", "typeof new Number(1)", value.String("object")},
		{"Math", "Math.max(1, 5, 3) + Math.min(4, 2) + Math.abs(-1) + Math.floor(2.7) + Math.pow(2, 3)", value.Number(18)},
		{"Math.round", "Math.round(2.5) + Math.round(-2.5)", value.Number(1)},
		{"parseInt", "parseInt('42px') + parseInt('ff', 16) + parseInt('0x10')", value.Number(313)},
		{"parseFloat", "parseFloat('3.5e1abc')", value.Number(35)},
		{"isNaN", "isNaN('abc') && !isNaN('12') && isFinite(1) && !isFinite(Infinity)", value.True},
		{"eval", "var x = 1; eval('x + 1')", value.Number(2)},
		{"eval declares", "eval('var y = 5'); y", value.Number(5)},
		{"eval non-string", "eval(7)", value.Number(7)},
		{"eval syntax error", "try { eval('var = ;'); } catch (e) { e.name }", value.String("SyntaxError")},
		{"eval sees locals", "function f() { var local = 3; return eval('local * 2'); } f()", value.Number(6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := run(t, tt.src)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestMathNaN(t *testing.T) {
	v, _ := run(t, "Math.max(1, NaN)")
	assert.True(t, math.IsNaN(float64(v.(value.Number))))
	v, _ = run(t, "Math.sqrt(-1)")
	assert.True(t, math.IsNaN(float64(v.(value.Number))))
}

func TestPrintAndConsole(t *testing.T) {
	_, out := run(t, `
print("a", 1, true);
console.log("text", "str", [1, "s"], {k: null});
console.log(function named() {}, new Error("e"));`)
	assert.Equal(t, "a 1 true\ntext str [1, \"s\"] {k: null}\n[Function: named] [Error: e]\n", out)
}

func TestMaximumLengthArrays(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want value.Value
	}{
		{"constructor", "new Array(4294967295).length", value.Number(4294967295)},
		{"sparse write", "var a = new Array(4294967295); a[5] = 1; a[5] + ',' + a[6] + ',' + a.length", value.String("1,undefined,4294967295")},
		{"grown by length", "var a = []; a.length = 4294967295; try { a.join(); } catch (e) { e.name }", value.String("RangeError")},
		{"concat", "try { [1].concat(new Array(4294967295)); } catch (e) { e instanceof RangeError }", value.True},
		{"apply", "try { Math.max.apply(null, new Array(4294967295)); } catch (e) { e.name }", value.String("RangeError")},
		{"truncated", "var a = new Array(4294967295); a[1] = 'x'; a.length = 2; a.join('-')", value.String("-x")},
		{"bad length", "try { new Array(4294967296); } catch (e) { e.message }", value.String("Invalid array length")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := run(t, tt.src)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestContextsShareNothing(t *testing.T) {
	a := NewContext(Options{})
	b := NewContext(Options{})
	p, err := compile.Compile("t.js", "Array.prototype.extra = 1;", compile.Options{})
	require.NoError(t, err)
	_, _, err = interp.RunToEnd(p.Body, a)
	require.NoError(t, err)

	p, err = compile.Compile("t.js", "typeof [].extra", compile.Options{})
	require.NoError(t, err)
	v, _, err := interp.RunToEnd(p.Body, b)
	require.NoError(t, err)
	assert.Equal(t, value.String("undefined"), v)
}
