package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yml")
	writeFile(t, path, `
name: basics
lattice: [public, internal, secret]
cases:
  - arith.js
  - file: leak.js
    expect: violation
  - file: nested/ok.js
    expect: PASS
`)

	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	if suite.Name != "basics" {
		t.Fatalf("Name = %q, want basics", suite.Name)
	}
	if suite.Dir() != dir {
		t.Fatalf("Dir = %q, want %q", suite.Dir(), dir)
	}
	want := []*Case{
		{File: "arith.js", Expect: ExpectPass},
		{File: "leak.js", Expect: ExpectViolation},
		{File: "nested/ok.js", Expect: ExpectPass},
	}
	if diff := cmp.Diff(want, suite.Cases); diff != "" {
		t.Fatalf("cases mismatch (-want +got):\n%s", diff)
	}

	lat, err := suite.BuildLattice()
	if err != nil {
		t.Fatalf("BuildLattice: %v", err)
	}
	if diff := cmp.Diff([]string{"public", "internal", "secret"}, lat.Names()); diff != "" {
		t.Fatalf("lattice mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSuiteDefaultsToTwoPointLattice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yml")
	writeFile(t, path, `
name: tiny
cases: [a.js]
`)
	suite, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	lat, err := suite.BuildLattice()
	if err != nil {
		t.Fatalf("BuildLattice: %v", err)
	}
	if diff := cmp.Diff([]string{"L", "H"}, lat.Names()); diff != "" {
		t.Fatalf("lattice mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSuiteRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yml")
	writeFile(t, path, `
name: strict
timeout: 5
cases: [a.js]
`)
	if _, err := LoadSuite(path); err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadSuiteEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSuite(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty suite error, got %v", err)
	}
}

func TestLoadSuiteValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yml")
	writeFile(t, path, `
lattice: [low, low]
source:
  rev: main
cases:
  - file: ../escape.js
  - file: a.js
    expect: maybe
  - a.js
`)
	_, err := LoadSuite(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	wantFragments := []string{
		"name must be provided",
		"lattice:",
		"source.git must be provided",
		"must stay inside the suite",
		`unsupported expectation "maybe"`,
		`duplicates "a.js"`,
	}
	msg := verr.Error()
	for _, fragment := range wantFragments {
		if !strings.Contains(msg, fragment) {
			t.Errorf("validation message missing %q:\n%s", fragment, msg)
		}
	}
}
