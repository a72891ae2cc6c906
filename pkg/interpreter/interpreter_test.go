package interpreter

import (
	"errors"
	"strings"
	"testing"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/runtime"
)

func TestEvaluateRoundTrip(t *testing.T) {
	cases := []struct {
		source string
		want   float64
	}{
		{"1+1", 2},
		{"var x = 3; x", 3},
		{"(function(a){return a*2;})(21)", 42},
	}
	for _, tc := range cases {
		v := mustEvaluate(t, New(), tc.source)
		num, ok := v.(runtime.NumberValue)
		if !ok || num.Val != tc.want {
			t.Fatalf("%q = %#v, want %v", tc.source, v, tc.want)
		}
	}
}

func TestEvaluateKeepsGlobalsAcrossCalls(t *testing.T) {
	interp := New()
	mustEvaluate(t, interp, "var counter = 1; function bump() { counter = counter + 1; return counter; }")
	mustEvaluate(t, interp, "bump();")
	if got := Inspect(mustEvaluate(t, interp, "bump()")); got != "3" {
		t.Fatalf("counter = %s, want 3", got)
	}
}

func TestEvaluateProgramFromTree(t *testing.T) {
	prog := ast.Script(
		ast.FnDecl("square", []string{"n"}, ast.Ret(ast.Bin("*", ast.ID("n"), ast.ID("n")))),
		ast.Var("total", ast.Num(0)),
		ast.For(ast.Var("i", ast.Num(1)), ast.Bin("<=", ast.ID("i"), ast.Num(3)), ast.Inc(ast.ID("i"), false),
			ast.AssignOp(ast.AssignmentAdd, ast.ID("total"), ast.CallName("square", ast.ID("i"))),
		),
		ast.ID("total"),
	)
	v, err := New().EvaluateProgram(prog)
	if err != nil {
		t.Fatalf("EvaluateProgram: %v", err)
	}
	if got := Inspect(v); got != "14" {
		t.Fatalf("total = %s, want 14", got)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	_, err := New().Evaluate("var = ;", "broken.js", 7)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if syntaxErr.Err.Filename != "broken.js" || syntaxErr.Err.Line < 7 {
		t.Fatalf("unexpected position %s:%d", syntaxErr.Err.Filename, syntaxErr.Err.Line)
	}
}

func TestEvaluateUnfinishedSource(t *testing.T) {
	for _, source := range []string{"(", "function f() {", "if (x"} {
		_, err := New().Evaluate(source, "open.js", 1)
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Fatalf("%q: expected SyntaxError, got %v", source, err)
		}
		if syntaxErr.Err.Filename != "open.js" {
			t.Fatalf("%q: filename = %q", source, syntaxErr.Err.Filename)
		}
	}
}

func TestEvaluateUncaughtThrow(t *testing.T) {
	_, err := New().Evaluate("var a = 1;\nthrow new TypeError(\"bad thing\");", "throw.js", 1)
	var exc *Exception
	if !errors.As(err, &exc) {
		t.Fatalf("expected Exception, got %v", err)
	}
	if exc.Line != 2 {
		t.Fatalf("exception line = %d, want 2", exc.Line)
	}
	if msg := exc.Error(); !strings.Contains(msg, "throw.js:2") || !strings.Contains(msg, "TypeError: bad thing") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRuntimeFailuresAreCatchable(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"try { missing + 1; } catch (e) { e.name }", "ReferenceError"},
		{"try { null.x; } catch (e) { e.name }", "TypeError"},
		{"try { var n = 1; n(); } catch (e) { e.name + ': ' + e.message }", "TypeError: n is not a function"},
		{"try { new 3; } catch (e) { e.name }", "TypeError"},
		{"try { 1 instanceof 2; } catch (e) { e.name }", "TypeError"},
		{"try { label(\"Q\", 1); } catch (e) { e.name }", "SyntaxError"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Fatalf("%q = %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestHostCallConstructApply(t *testing.T) {
	interp := New()
	mustEvaluate(t, interp, `
function Point(x, y) { this.x = x; this.y = y; }
function add(a, b) { return a + b; }
`)
	add, err := interp.Global().Get("add")
	if err != nil {
		t.Fatalf("get add: %v", err)
	}
	v, err := interp.Call(add, nil, runtime.Number(2), runtime.Number(3))
	if err != nil || Inspect(v) != "5" {
		t.Fatalf("Call = %v, %v", v, err)
	}

	ctor, _ := interp.Global().Get("Point")
	pt, err := interp.Construct(ctor, runtime.Number(4), runtime.Number(5))
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if got := Inspect(pt); got != "{ x: 4, y: 5 }" {
		t.Fatalf("point = %s", got)
	}

	args := mustEvaluate(t, interp, "[10, 20]")
	v, err = interp.Apply(add, nil, args)
	if err != nil || Inspect(v) != "30" {
		t.Fatalf("Apply = %v, %v", v, err)
	}

	_, err = interp.Call(runtime.Number(1), nil)
	var exc *Exception
	if !errors.As(err, &exc) || !strings.Contains(exc.Error(), "TypeError") {
		t.Fatalf("expected TypeError exception, got %v", err)
	}
}

func TestPrintWritesInspectedValues(t *testing.T) {
	interp, out := newCapturingInterpreter()
	mustEvaluate(t, interp, `print("hi", 1, [1, "a"], {k: true}, label("H", 5));`)
	if got, want := out.String(), "hi 1 [1, \"a\"] { k: true } <H>5\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestStackOverflow(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 32
	_, err := NewWithOptions(opts).Evaluate("function r(n) { return r(n + 1); } r(0);", "deep.js", 1)
	var overflow *StackOverflow
	if !errors.As(err, &overflow) {
		t.Fatalf("expected StackOverflow, got %v", err)
	}
}

func TestDefineFunc(t *testing.T) {
	interp := New()
	interp.DefineFunc("repeat", strings.Repeat)
	interp.DefineNative("answer", 0, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(42), nil
	})
	if got := Inspect(mustEvaluate(t, interp, `repeat("ab", 3) + answer()`)); got != "ababab42" {
		t.Fatalf("got %q", got)
	}
}
