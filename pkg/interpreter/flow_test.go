package interpreter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

func TestImplicitFlowIntoLowVariable(t *testing.T) {
	v := expectViolation(t, `
var high = label("H", 1);
var low = 0;
if (high) { low = 1; }
`)
	if v.Target != "low" || v.LHS.Name() != "H" || v.RHS.Name() != "L" {
		t.Fatalf("unexpected violation %+v", v)
	}
	if v.Line != 4 {
		t.Fatalf("violation line = %d, want 4", v.Line)
	}
}

func TestImplicitFlowIntoHighVariable(t *testing.T) {
	got := inspectResult(t, `
var high = label("H", 1);
var low = label("H", 0);
if (high) { low = 1; }
low
`)
	if got != "<H>1" {
		t.Fatalf("low = %s, want <H>1", got)
	}
}

func TestExplicitFlow(t *testing.T) {
	expectViolation(t, `
var high = label("H", 7);
var low = 0;
low = high;
`)
	got := inspectResult(t, `
var high = label("H", 7);
var low2 = label("H", 0);
low2 = high;
low2
`)
	if got != "<H>7" {
		t.Fatalf("low2 = %s, want <H>7", got)
	}
}

func TestExplicitFlowIntoFreshLowLocation(t *testing.T) {
	cases := []string{
		"high = label(\"H\", 7);\nlow = high;",
		"var high = label(\"H\", 7);\nlow = high;",
		"var high = label(\"H\", 7);\nvar low;\nlow = high;",
		"var high = label(\"H\", 7);\nvar o = {};\no.x = high;",
	}
	for _, source := range cases {
		expectViolation(t, source)
	}
	v := expectViolation(t, "var high = label(\"H\", 7);\nvar low;\nlow = high;")
	if v.Target != "low" || v.Line != 3 {
		t.Fatalf("unexpected violation %+v", v)
	}
}

func TestDeclarationTakesLabelOfInitialiser(t *testing.T) {
	if got := inspectResult(t, `var r = label("H", 5); r`); got != "<H>5" {
		t.Fatalf("r = %s, want <H>5", got)
	}
	if got := inspectResult(t, `var r = label("H", 5); r = label("H", 6); r`); got != "<H>6" {
		t.Fatalf("r = %s, want <H>6", got)
	}
	expectViolation(t, `var r; if (label("H", true)) { r = 5; }`)
	expectViolation(t, `var r = 0; var r = label("H", 1);`)
}

func TestRelabel(t *testing.T) {
	lat := lattice.Default()
	low, high := lat.Bottom(), lat.Top()
	five := runtime.Number(5)

	raised := relabel(five, high, low)
	if diff := cmp.Diff(runtime.Value(runtime.Labeled{Raw: five, Label: high}), raised, cmp.AllowUnexported(lattice.Label{})); diff != "" {
		t.Fatalf("relabel above pc (-want +got):\n%s", diff)
	}
	if got := relabel(five, high, high); got != five {
		t.Fatalf("relabel at pc changed value: %#v", got)
	}
	if got := relabel(five, low, high); got != five {
		t.Fatalf("relabel below pc changed value: %#v", got)
	}
	// Never lowers an existing label.
	if got := relabel(runtime.Labeled{Raw: five, Label: high}, low, low); got != (runtime.Labeled{Raw: five, Label: high}) {
		t.Fatalf("relabel lowered label: %#v", got)
	}
}

func TestLabelMonotonicity(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{`label("H", 1) + 2`, "<H>3"},
		{`2 * label("H", 3)`, "<H>6"},
		{`label("H", 1) < 2`, "<H>true"},
		{`!label("H", 0)`, "<H>true"},
		{`-label("H", 4)`, "<H>-4"},
		{`typeof label("H", 1)`, "<H>number"},
		{`[label("H", 1), 2][0]`, "<H>1"},
		{`[label("H", 1), 2][1]`, "2"},
		{`var o = label("H", {a: 1}); o.a`, "<H>1"},
		{`var o = {a: 1, b: 2}; o[label("H", "a")]`, "<H>1"},
		{`label("H", true) ? 1 : 2`, "<H>1"},
		{`label("H", 0) || 3`, "<H>3"},
		{`label("H", 0) && 3`, "<H>0"},
		{`var x = label("H", 1); x++; x`, "<H>2"},
		{`var s = label("H", "abc"); s.length`, "<H>3"},
		{`label("H", "abc").toUpperCase()`, "<H>ABC"},
		{`Math.max(1, label("H", 9))`, "<H>9"},
		{`label("H", label("L", 2))`, "<H>2"},
	}
	for _, tc := range cases {
		if got := inspectResult(t, tc.source); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.source, got, tc.want)
		}
	}
}

func TestClosureActivationPartition(t *testing.T) {
	interp := New()
	var partitions []string
	interp.DefineNative("probe", 0, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		ctx := interp.currentContext()
		partitions = append(partitions, ctx.Scope.Store(ctx.PC).AsObject().Partition.String())
		return runtime.Undefined, nil
	})
	got := Inspect(mustEvaluate(t, interp, `
var base = 10;
function f(x) { probe(); var t = base + x; return t; }
var a = f(1);
var h = label("H", true);
var b = label("H", 0);
if (h) { b = f(2); }
var c = f(3);
[a, b, c]
`))
	if diff := cmp.Diff([]string{"L", "H", "L"}, partitions); diff != "" {
		t.Fatalf("activation partitions (-want +got):\n%s", diff)
	}
	if got != "[11, <H>12, 13]" {
		t.Fatalf("results = %s", got)
	}
}

func TestImplicitFlowThroughCalls(t *testing.T) {
	expectViolation(t, `
var low = 0;
function setLow() { low = 1; }
if (label("H", true)) { setLow(); }
`)
	expectViolation(t, `
var low = 0;
var f = label("H", function() { low = 1; });
f();
`)
}

func TestImplicitFlowThroughExpressions(t *testing.T) {
	cases := []string{
		`var low = 0; label("H", true) && (low = 1);`,
		`var low = 0; label("H", false) || (low = 1);`,
		`var low = 0; label("H", true) ? (low = 1) : 0;`,
		`var low = 0; var h = label("H", 3); while (h > 0) { h = h - 1; low = 1; }`,
		`var low = 0; for (var k in label("H", {a: 1})) { low = 1; }`,
		`var low = 0; switch (label("H", 2)) { case 1: break; default: low = 1; }`,
		`var o = {a: 1}; if (label("H", true)) { delete o.a; }`,
		`var a = []; if (label("H", true)) { a.push(1); }`,
		`var o = {}; if (label("H", true)) { o.x = 1; }`,
	}
	for _, source := range cases {
		expectViolation(t, source)
	}
}

func TestLoopPCRestoredAfterExit(t *testing.T) {
	got := inspectResult(t, `
var h = label("H", 2);
var n = label("H", 0);
while (h > 0) { h = h - 1; n = n + 1; }
var low = 0;
low = 5;
low
`)
	if got != "5" {
		t.Fatalf("low = %s, want 5", got)
	}
}

func TestThrownValueCarriesPC(t *testing.T) {
	expectViolation(t, `
var low = 0;
try {
  if (label("H", true)) { throw "secret"; }
} catch (e) {
  low = 1;
}
`)
	got := inspectResult(t, `
var seen = label("H", "");
try {
  if (label("H", true)) { throw "secret"; }
} catch (e) {
  seen = e;
}
seen
`)
	if got != "<H>secret" {
		t.Fatalf("seen = %s, want <H>secret", got)
	}
}

func TestFlowViolationIsNotCatchable(t *testing.T) {
	interp, out := newCapturingInterpreter()
	_, err := interp.Evaluate(`
var low = 0;
try {
  low = label("H", 1);
} catch (e) {
  print("caught");
} finally {
  print("finally");
}
`, "fatal.js", 1)
	if _, ok := err.(*FlowViolation); !ok {
		t.Fatalf("expected FlowViolation, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("handlers ran: %q", out.String())
	}
}

func TestWithStatementUnderHighPC(t *testing.T) {
	expectViolation(t, `
var o = {a: 1};
if (label("H", true)) { with (o) { a = 2; } }
`)
	if got := inspectResult(t, `var o = {a: 1}; with (o) { a = a + 1; } o.a`); got != "2" {
		t.Fatalf("o.a = %s, want 2", got)
	}
}

func TestRicherLattice(t *testing.T) {
	opts := DefaultOptions()
	opts.Lattice = lattice.MustNew("public", "internal", "secret")
	interp := NewWithOptions(opts)

	got := Inspect(mustEvaluate(t, interp, `
var i = label("internal", 1);
var s = label("secret", 2);
var mixed = i + s;
var lifted = label("internal", 0);
if (i) { lifted = 3; }
[mixed, lifted]
`))
	if got != "[<secret>3, <internal>3]" {
		t.Fatalf("got %s", got)
	}

	_, err := NewWithOptions(opts).Evaluate(`
var s = label("secret", true);
var i = label("internal", 0);
if (s) { i = 1; }
`, "three.js", 1)
	violation, ok := err.(*FlowViolation)
	if !ok {
		t.Fatalf("expected FlowViolation, got %v", err)
	}
	if violation.LHS.Name() != "secret" || violation.RHS.Name() != "internal" {
		t.Fatalf("violation labels %s, %s", violation.LHS, violation.RHS)
	}
}

func TestEffectiveLabelJoinsCellAndPartition(t *testing.T) {
	interp := New()
	low, high := interp.Lattice().Bottom(), interp.Lattice().Top()
	hiStore := interp.newStore(high)
	hiStore.Set("v", runtime.Labeled{Raw: runtime.Number(1), Label: low})
	hiStore.Set("plain", runtime.Number(2))
	loStore := interp.newStore(low)
	loStore.Set("w", runtime.Labeled{Raw: runtime.Number(3), Label: high})

	cases := []struct {
		ref  *runtime.Reference
		want lattice.Label
	}{
		{&runtime.Reference{Base: hiStore, Name: "v"}, high},
		{&runtime.Reference{Base: hiStore, Name: "plain"}, high},
		{&runtime.Reference{Base: loStore, Name: "w"}, high},
	}
	for _, tc := range cases {
		got, err := interp.effectiveLabel(tc.ref)
		if err != nil {
			t.Fatalf("%s: %v", tc.ref.Name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: label = %s, want %s", tc.ref.Name, got, tc.want)
		}
	}
}
