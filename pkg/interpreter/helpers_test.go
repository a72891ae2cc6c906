package interpreter

import (
	"bytes"
	"errors"
	"testing"

	"flowjs/interpreter-go/pkg/runtime"
)

func mustEvaluate(t testing.TB, interp *Interpreter, source string) runtime.Value {
	t.Helper()
	v, err := interp.Evaluate(source, "test.js", 1)
	if err != nil {
		t.Fatalf("evaluate %q: %v", source, err)
	}
	return v
}

// inspectResult evaluates source in a fresh interpreter and renders the
// completion value.
func inspectResult(t testing.TB, source string) string {
	t.Helper()
	return Inspect(mustEvaluate(t, New(), source))
}

func expectViolation(t testing.TB, source string) *FlowViolation {
	t.Helper()
	_, err := New().Evaluate(source, "test.js", 1)
	var violation *FlowViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected flow violation for %q, got %v", source, err)
	}
	return violation
}

func newCapturingInterpreter() (*Interpreter, *bytes.Buffer) {
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.Stdout = &out
	return NewWithOptions(opts), &out
}
