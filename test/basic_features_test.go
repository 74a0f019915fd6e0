package test

import (
	"testing"

	"github.com/timewinder-dev/ecmastep/value"
)

func TestSimpleWhileLoop(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "loop clears flag",
			code: `
var x = true;
function foo() {
  while (x) {
    x = false;
  }
}
foo();
var result = x;
`,
			expected: value.Boolean(false),
		},
		{
			name: "loop never entered",
			code: `
var result = 0;
while (false) { result = 1; }
`,
			expected: value.Number(0),
		},
	})
}

func TestArrayPush(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "push returns length",
			code: `
var xs = [];
var result = xs.push(1, 2, 3);
`,
			expected: value.Number(3),
		},
		{
			name: "push in loop",
			code: `
var xs = [];
for (var i = 0; i < 5; i++) xs.push(i * i);
var result = xs.join(",");
`,
			expected: value.String("0,1,4,9,16"),
		},
		{
			name: "length grows with index assignment",
			code: `
var xs = [1];
xs[4] = 5;
var result = xs.length;
`,
			expected: value.Number(5),
		},
	})
}

func TestFunctionCalls(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "arguments",
			code: `
function add(a, b) { return a + b; }
var result = add(10, 20);
`,
			expected: value.Number(30),
		},
		{
			name: "missing argument is undefined",
			code: `
function f(a, b) { return typeof b; }
var result = f(1);
`,
			expected: value.String("undefined"),
		},
		{
			name: "arguments object",
			code: `
function count() { return arguments.length; }
var result = count(1, 2, 3, 4);
`,
			expected: value.Number(4),
		},
		{
			name: "hoisted declaration",
			code: `
var result = double(21);
function double(n) { return n * 2; }
`,
			expected: value.Number(42),
		},
		{
			name: "recursion",
			code: `
function fact(n) { return n <= 1 ? 1 : n * fact(n - 1); }
var result = fact(10);
`,
			expected: value.Number(3628800),
		},
		{
			name: "method call binds this",
			code: `
var o = { n: 7, get: function () { return this.n; } };
var result = o.get();
`,
			expected: value.Number(7),
		},
		{
			name: "constructor",
			code: `
function Point(x, y) { this.x = x; this.y = y; }
Point.prototype.sum = function () { return this.x + this.y; };
var result = new Point(3, 4).sum();
`,
			expected: value.Number(7),
		},
		{
			name: "call and apply",
			code: `
function who() { return this.name; }
var result = who.call({ name: "a" }) + who.apply({ name: "b" }, []);
`,
			expected: value.String("ab"),
		},
	})
}

func TestWhileLoopCounter(t *testing.T) {
	runCases(t, []testCase{
		{
			name: "count to ten",
			code: `
var result = 0;
while (result < 10) { result++; }
`,
			expected: value.Number(10),
		},
		{
			name: "break",
			code: `
var result = 0;
while (true) {
  result += 3;
  if (result > 10) break;
}
`,
			expected: value.Number(12),
		},
		{
			name: "continue",
			code: `
var i = 0, result = 0;
while (i < 10) {
  i++;
  if (i % 2) continue;
  result += i;
}
`,
			expected: value.Number(30),
		},
	})
}

func TestBasicArithmetic(t *testing.T) {
	runCases(t, []testCase{
		{name: "addition", code: "var result = 5 + 3;", expected: value.Number(8)},
		{name: "subtraction", code: "var result = 5 - 8;", expected: value.Number(-3)},
		{name: "multiplication", code: "var result = 6 * 7;", expected: value.Number(42)},
		{name: "division", code: "var result = 7 / 2;", expected: value.Number(3.5)},
		{name: "precedence", code: "var result = 2 + 3 * 4;", expected: value.Number(14)},
		{name: "parentheses", code: "var result = (2 + 3) * 4;", expected: value.Number(20)},
		{name: "unary minus", code: "var result = -(4 - 6);", expected: value.Number(2)},
		{name: "compound assignment", code: "var result = 10; result -= 4; result *= 3;", expected: value.Number(18)},
		{name: "string concatenation", code: `var result = "a" + 1 + 2;`, expected: value.String("a12")},
		{name: "numeric before string", code: `var result = 1 + 2 + "a";`, expected: value.String("3a")},
	})
}

func TestBooleanLogic(t *testing.T) {
	runCases(t, []testCase{
		{name: "and", code: "var result = true && false;", expected: value.Boolean(false)},
		{name: "or", code: "var result = false || true;", expected: value.Boolean(true)},
		{name: "not", code: "var result = !0;", expected: value.Boolean(true)},
		{name: "and yields operand", code: `var result = 1 && "x";`, expected: value.String("x")},
		{name: "or yields operand", code: `var result = 0 || null;`, expected: value.Null{}},
		{
			name: "short circuit",
			code: `
var result = 0;
function bump() { result++; return true; }
false && bump();
true || bump();
`,
			expected: value.Number(0),
		},
		{name: "conditional", code: `var result = "" ? "yes" : "no";`, expected: value.String("no")},
	})
}

func TestComparisons(t *testing.T) {
	runCases(t, []testCase{
		{name: "less", code: "var result = 1 < 2;", expected: value.Boolean(true)},
		{name: "greater equal", code: "var result = 2 >= 3;", expected: value.Boolean(false)},
		{name: "string order", code: `var result = "apple" < "banana";`, expected: value.Boolean(true)},
		{name: "numeric strings", code: `var result = "10" < 9;`, expected: value.Boolean(false)},
		{name: "NaN", code: "var result = NaN < 1 || NaN >= 1;", expected: value.Boolean(false)},
		{name: "loose equality", code: `var result = "1" == 1;`, expected: value.Boolean(true)},
		{name: "strict equality", code: `var result = "1" === 1;`, expected: value.Boolean(false)},
		{name: "null and undefined", code: "var result = null == undefined;", expected: value.Boolean(true)},
		{name: "null is not zero", code: "var result = null == 0;", expected: value.Boolean(false)},
		{name: "object identity", code: "var o = {}; var result = o === o && {} !== {};", expected: value.Boolean(true)},
	})
}
