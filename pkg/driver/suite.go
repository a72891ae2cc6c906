package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"flowjs/interpreter-go/pkg/lattice"
)

// Suite represents the parsed contents of suite.yml.
type Suite struct {
	Path    string
	Name    string
	Lattice []string
	Source  *SourceSpec
	Cases   []*Case
}

// SourceSpec points a suite at a git repository holding its case files.
type SourceSpec struct {
	Git string
	Rev string
}

// Case is a single program the suite evaluates.
type Case struct {
	File   string
	Expect Expectation
}

// Expectation enumerates case outcomes.
type Expectation string

const (
	ExpectPass      Expectation = "pass"
	ExpectViolation Expectation = "violation"
)

// IsValid reports whether the expectation is recognised.
func (e Expectation) IsValid() bool {
	switch e {
	case ExpectPass, ExpectViolation:
		return true
	default:
		return false
	}
}

// ValidationError aggregates suite validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "suite: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("suite validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadSuite parses suite.yml from disk, returning a validated suite.
func LoadSuite(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("suite: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("suite: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw suiteFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("suite: %s is empty", absPath)
		}
		return nil, fmt.Errorf("suite: parse %s: %w", absPath, err)
	}

	suite := raw.toSuite(absPath)
	if err := suite.validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

// Dir is the directory case files resolve against when the suite has no
// git source.
func (s *Suite) Dir() string {
	return filepath.Dir(s.Path)
}

// BuildLattice returns the suite's lattice, or L < H when none is declared.
func (s *Suite) BuildLattice() (*lattice.Lattice, error) {
	if len(s.Lattice) == 0 {
		return lattice.Default(), nil
	}
	return lattice.New(s.Lattice...)
}

func (s *Suite) validate() error {
	var errs ValidationError
	if s.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if len(s.Lattice) > 0 {
		if _, err := lattice.New(s.Lattice...); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("lattice: %v", err))
		}
	}
	if s.Source != nil && s.Source.Git == "" {
		errs.Issues = append(errs.Issues, "source.git must be provided when source is set")
	}
	if len(s.Cases) == 0 {
		errs.Issues = append(errs.Issues, "cases must not be empty")
	}
	seen := make(map[string]struct{}, len(s.Cases))
	for i, c := range s.Cases {
		if c.File == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("cases[%d] missing file", i))
			continue
		}
		if filepath.IsAbs(c.File) || strings.HasPrefix(filepath.Clean(c.File), "..") {
			errs.Issues = append(errs.Issues, fmt.Sprintf("cases[%d] file %q must stay inside the suite", i, c.File))
		}
		if _, dup := seen[c.File]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("cases[%d] duplicates %q", i, c.File))
		}
		seen[c.File] = struct{}{}
		if !c.Expect.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("case %q has unsupported expectation %q", c.File, c.Expect))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

type suiteFile struct {
	Name    string      `yaml:"name"`
	Lattice []string    `yaml:"lattice"`
	Source  *sourceYAML `yaml:"source"`
	Cases   []caseYAML  `yaml:"cases"`
}

type sourceYAML struct {
	Git string `yaml:"git"`
	Rev string `yaml:"rev"`
}

// caseYAML accepts either a bare file name (expected to pass) or a mapping.
type caseYAML struct {
	File   string      `yaml:"file"`
	Expect Expectation `yaml:"expect"`
}

func (c *caseYAML) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var file string
		if err := value.Decode(&file); err != nil {
			return err
		}
		c.File = file
		c.Expect = ExpectPass
		return nil
	case yaml.MappingNode:
		type plain caseYAML
		var entry plain
		if err := value.Decode(&entry); err != nil {
			return err
		}
		*c = caseYAML(entry)
		return nil
	default:
		return fmt.Errorf("suite: case must be a file name or a mapping")
	}
}

func (sf suiteFile) toSuite(path string) *Suite {
	result := &Suite{
		Path:  path,
		Name:  strings.TrimSpace(sf.Name),
		Cases: make([]*Case, 0, len(sf.Cases)),
	}
	for _, name := range sf.Lattice {
		result.Lattice = append(result.Lattice, strings.TrimSpace(name))
	}
	if sf.Source != nil {
		result.Source = &SourceSpec{
			Git: strings.TrimSpace(sf.Source.Git),
			Rev: strings.TrimSpace(sf.Source.Rev),
		}
	}
	for _, c := range sf.Cases {
		expect := Expectation(strings.ToLower(strings.TrimSpace(string(c.Expect))))
		if expect == "" {
			expect = ExpectPass
		}
		result.Cases = append(result.Cases, &Case{
			File:   filepath.ToSlash(strings.TrimSpace(c.File)),
			Expect: expect,
		})
	}
	return result
}
