package interpreter

import (
	"testing"
)

func TestArrayBuiltins(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`[3, 1, 2].sort().join(",")`, "1,2,3"},
		{`[10, 9, 1].sort(function(a, b) { return a - b; }).join()`, "1,9,10"},
		{`var a = [1, 2, 3, 4]; var r = a.splice(1, 2, "x"); a.join("") + "|" + r.join("")`, "1x4|23"},
		{`[1, 2, 3].map(function(x) { return x * 2; })`, "[2, 4, 6]"},
		{`[1, 2, 3, 4].filter(function(x) { return x % 2 == 0; }).length`, "2"},
		{`[1, 2, 3].reduce(function(a, b) { return a + b; })`, "6"},
		{`[1, 2, 3].reduce(function(a, b) { return a + b; }, 10)`, "16"},
		{`[1, 2, 3].indexOf(3)`, "2"},
		{`[1, 2].concat([3], 4).join("-")`, "1-2-3-4"},
		{`var a = [1, 2]; a.push(3, 4); a.pop() + a.length`, "7"},
		{`var a = [1, 2, 3]; a.shift(); a.unshift(0); a.join()`, "0,2,3"},
		{`[1, 2, 3].reverse().join("")`, "321"},
		{`[1, 2, 3, 4].slice(1, -1).join()`, "2,3"},
		{`[1, 2, 3].some(function(x) { return x > 2; })`, "true"},
		{`[1, 2, 3].every(function(x) { return x > 2; })`, "false"},
		{`var s = 0; [1, 2, 3].forEach(function(x) { s += x; }); s`, "6"},
		{`Array.isArray([]) + ":" + Array.isArray({})`, "true:false"},
		{`try { [].reduce(function() {}); } catch (e) { e.name }`, "TypeError"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.source, got, tc.want)
		}
	}
}

func TestStringAndRegExpBuiltins(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`"a-b-c".split("-").length`, "3"},
		{`"a1b22c".split(/\d+/).join(",")`, "a,b,c"},
		{`"John Smith".replace(/(\w+)\s(\w+)/, "$2, $1")`, "Smith, John"},
		{`"aaa".replace(/a/g, "b")`, "bbb"},
		{`"aaa".replace("a", "b")`, "baa"},
		{`"abc".replace(/b/, function(m) { return m.toUpperCase(); })`, "aBc"},
		{`"x1y22".match(/\d+/g).join(",")`, "1,22"},
		{`"x1y22".search(/y/)`, "2"},
		{`/b+/.test("abbc")`, "true"},
		{`/(a)(b)?/.exec("ac")[1]`, "a"},
		{`"abc".charAt(1) + "abc".indexOf("c")`, "b2"},
		{`"Hello".substring(1, 3)`, "el"},
		{`"  pad ".trim()`, "pad"},
		{`"AbC".toLowerCase()`, "abc"},
		{`"héllo".length`, "5"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.source, got, tc.want)
		}
	}
}

func TestNumberAndMathBuiltins(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`(3.14159).toFixed(2)`, "3.14"},
		{`(255).toString(16)`, "ff"},
		{`Math.floor(2.7) + Math.abs(-3)`, "5"},
		{`Math.min(4, 2, 8)`, "2"},
		{`Number("3") + 1`, "4"},
		{`Object.keys({a: 1, b: 2}).join()`, "a,b"},
		{`({a: 1}).hasOwnProperty("a")`, "true"},
		{`try { (1).toFixed(99); } catch (e) { e.name }`, "RangeError"},
		{`try { (1).toString(1); } catch (e) { e.name }`, "RangeError"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.source, got, tc.want)
		}
	}
}

func TestBuiltinsPropagateLabels(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`var a = [label("H", 2), 1]; a.sort(); a[0]`, "<H>1"},
		{`[1, label("H", 2)].join("+")`, "<H>1+2"},
		{`[1, 2].indexOf(label("H", 2))`, "<H>1"},
		{`[1, 2, 3].filter(function(x) { return x > label("H", 1); }).length`, "<H>2"},
		{`"a-b".replace("-", label("H", "+"))`, "<H>a+b"},
		{`label("H", "a,b").split(",").length`, "<H>2"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.source, got, tc.want)
		}
	}
}

func TestCallbacksRunAtRaisedPC(t *testing.T) {
	expectViolation(t, `var low = 0; label("H", [1]).forEach(function() { low = 1; });`)
	expectViolation(t, `var low = 0; "ab".replace(label("H", /a/), function() { low = 1; return ""; });`)
	expectViolation(t, `var low = 0; [2, 1].sort(label("H", function(a, b) { low = 1; return a - b; }));`)
}

func TestEval(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`eval("1 + 2")`, "3"},
		{`var x = 1; function f() { var x = 2; return eval("x"); } f()`, "2"},
		{`eval("var fresh = 4;"); fresh`, "4"},
		{`eval(7)`, "7"},
		{`try { eval("var = ;"); } catch (e) { e.name }`, "SyntaxError"},
		{`try { eval("("); } catch (e) { e.name }`, "SyntaxError"},
		{`var f; try { f = new Function("a", "return a +"); } catch (e) { e.name }`, "SyntaxError"},
		{`eval(label("H", "1 + 1"))`, "<H>2"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.source, got, tc.want)
		}
	}
	expectViolation(t, `var low = 0; eval(label("H", "low = 1"));`)
}

func TestEvalStackOverflowIsCatchable(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 16
	interp := NewWithOptions(opts)
	got := Inspect(mustEvaluate(t, interp, `
function r() { return r(); }
var name;
try { eval("r()"); } catch (e) { name = e.name; }
name
`))
	if got != "InternalError" {
		t.Fatalf("name = %s, want InternalError", got)
	}
}

func TestRecursiveEvalOverflowIsCatchable(t *testing.T) {
	for _, depth := range []int{1, 64} {
		opts := DefaultOptions()
		opts.MaxDepth = depth
		got := Inspect(mustEvaluate(t, NewWithOptions(opts), `
var s = "eval(s)";
var name;
try { eval(s); } catch (e) { name = e.name; }
name
`))
		if got != "InternalError" {
			t.Fatalf("depth %d: name = %s, want InternalError", depth, got)
		}
	}
}
