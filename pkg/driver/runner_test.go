package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowjs/interpreter-go/pkg/interpreter"
)

func writeFlowSuite(t *testing.T, dir string) *Suite {
	t.Helper()
	writeFile(t, filepath.Join(dir, "arith.js"), `
var x = 1 + 1;
print(x);
`)
	writeFile(t, filepath.Join(dir, "implicit.js"), `
var high = label("H", 1);
var low = 0;
if (high) { low = 1; }
`)
	writeFile(t, filepath.Join(dir, "upgrade.js"), `
var high = label("H", 1);
var low = label("H", 0);
if (high) { low = 1; }
`)
	writeFile(t, filepath.Join(dir, "throws.js"), `
throw new Error("boom");
`)
	writeFile(t, filepath.Join(dir, "suite.yml"), `
name: flow
cases:
  - arith.js
  - file: implicit.js
    expect: violation
  - file: upgrade.js
    expect: violation
  - throws.js
  - missing.js
`)
	suite, err := LoadSuite(filepath.Join(dir, "suite.yml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	return suite
}

func outcomes(results []CaseResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = fmt.Sprintf("%s:%s:%t", r.File, r.Outcome, r.Passed())
	}
	return out
}

func TestRunSuiteSerial(t *testing.T) {
	dir := t.TempDir()
	suite := writeFlowSuite(t, dir)
	var stdout bytes.Buffer

	results, err := RunSuite(context.Background(), suite, RunOptions{Stdout: &stdout})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	want := []string{
		"arith.js:pass:true",
		"implicit.js:violation:true",
		"upgrade.js:pass:false",
		"throws.js:error:false",
		"missing.js:error:false",
	}
	if diff := cmp.Diff(want, outcomes(results)); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if got := stdout.String(); got != "2\n" {
		t.Fatalf("stdout = %q, want %q", got, "2\n")
	}

	var violation *interpreter.FlowViolation
	if !errors.As(results[1].Err, &violation) {
		t.Fatalf("expected FlowViolation, got %v", results[1].Err)
	}
	if violation.Target != "low" {
		t.Fatalf("violation target = %q, want low", violation.Target)
	}
	var exc *interpreter.Exception
	if !errors.As(results[3].Err, &exc) {
		t.Fatalf("expected Exception, got %v", results[3].Err)
	}

	passed, failed := Summary(results)
	if passed != 2 || failed != 3 {
		t.Fatalf("Summary = (%d, %d), want (2, 3)", passed, failed)
	}
}

func TestRunSuiteConcurrentMatchesSerial(t *testing.T) {
	dir := t.TempDir()
	suite := writeFlowSuite(t, dir)

	serial, err := RunSuite(context.Background(), suite, RunOptions{})
	if err != nil {
		t.Fatalf("RunSuite serial: %v", err)
	}
	exec := NewGoroutineExecutor(2)
	concurrent, err := RunSuite(context.Background(), suite, RunOptions{Executor: exec})
	if err != nil {
		t.Fatalf("RunSuite concurrent: %v", err)
	}
	exec.Flush()
	if diff := cmp.Diff(outcomes(serial), outcomes(concurrent)); diff != "" {
		t.Fatalf("executors disagree (-serial +concurrent):\n%s", diff)
	}
}

func TestRunSuiteCancelled(t *testing.T) {
	dir := t.TempDir()
	suite := writeFlowSuite(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := RunSuite(ctx, suite, RunOptions{})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	for _, r := range results {
		if r.Outcome != OutcomeError || !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("case %s: expected cancellation, got %s (%v)", r.File, r.Outcome, r.Err)
		}
	}
}

func TestRunSuiteUsesSuiteLattice(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "three.js"), `
var s = label("secret", 1);
var i = label("internal", 0);
if (s) { i = 2; }
`)
	writeFile(t, filepath.Join(dir, "suite.yml"), `
name: three
lattice: [public, internal, secret]
cases:
  - file: three.js
    expect: violation
`)
	suite, err := LoadSuite(filepath.Join(dir, "suite.yml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	results, err := RunSuite(context.Background(), suite, RunOptions{})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if !results[0].Passed() {
		t.Fatalf("expected violation, got %s (%v)", results[0].Outcome, results[0].Err)
	}
}

func TestBundledFlowSuite(t *testing.T) {
	suite, err := LoadSuite(filepath.Join("testdata", "flow", "suite.yml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	var out bytes.Buffer
	results, err := RunSuite(context.Background(), suite, RunOptions{Stdout: &out})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	for _, r := range results {
		if !r.Passed() {
			t.Errorf("%s: expected %s, got %s (%v)", r.File, r.Expect, r.Outcome, r.Err)
		}
	}
	if got, want := out.String(), "<H>1\n<H>1\n2\n<H>6\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}
