package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"flowjs/interpreter-go/pkg/interpreter"
)

// Outcome classifies how a case finished.
type Outcome string

const (
	OutcomePass      Outcome = "pass"
	OutcomeViolation Outcome = "violation"
	OutcomeError     Outcome = "error"
)

// CaseResult is the result of running one suite case.
type CaseResult struct {
	File    string
	Expect  Expectation
	Outcome Outcome
	Err     error
}

// Passed reports whether the outcome matched the expectation.
func (r CaseResult) Passed() bool {
	switch r.Expect {
	case ExpectPass:
		return r.Outcome == OutcomePass
	case ExpectViolation:
		return r.Outcome == OutcomeViolation
	default:
		return false
	}
}

// RunOptions configures RunSuite.
type RunOptions struct {
	// Executor schedules cases; nil runs them serially.
	Executor Executor
	// Dir overrides the directory case files resolve against.
	Dir      string
	MaxDepth int
	Logger   zerolog.Logger
	// Stdout receives print output from every case; nil discards it.
	Stdout io.Writer
}

// RunSuite evaluates every case of the suite in a fresh interpreter and
// returns the results in case order.
func RunSuite(ctx context.Context, suite *Suite, opts RunOptions) ([]CaseResult, error) {
	lat, err := suite.BuildLattice()
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
	}
	dir := opts.Dir
	if dir == "" {
		dir = suite.Dir()
	}
	exec := opts.Executor
	if exec == nil {
		serial := NewSerialExecutor()
		defer serial.Close()
		exec = serial
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	handles := make([]*Handle, len(suite.Cases))
	for idx, c := range suite.Cases {
		c := c
		handles[idx] = exec.Submit(ctx, func(ctx context.Context) (CaseResult, error) {
			base := interpreter.DefaultOptions()
			base.Lattice = lat
			if opts.MaxDepth > 0 {
				base.MaxDepth = opts.MaxDepth
			}
			base.Logger = opts.Logger.With().Str("suite", suite.Name).Str("case", c.File).Logger()
			base.Stdout = stdout
			return runCase(filepath.Join(dir, filepath.FromSlash(c.File)), c, base), nil
		})
	}

	results := make([]CaseResult, len(handles))
	for idx, handle := range handles {
		result, err := handle.Wait()
		if err != nil {
			result = CaseResult{
				File:    suite.Cases[idx].File,
				Expect:  suite.Cases[idx].Expect,
				Outcome: OutcomeError,
				Err:     err,
			}
		}
		results[idx] = result
	}
	return results, nil
}

func runCase(path string, c *Case, opts interpreter.Options) CaseResult {
	result := CaseResult{File: c.File, Expect: c.Expect}
	source, err := os.ReadFile(path)
	if err != nil {
		result.Outcome = OutcomeError
		result.Err = fmt.Errorf("read %s: %w", c.File, err)
		return result
	}
	interp := interpreter.NewWithOptions(opts)
	_, err = interp.Evaluate(string(source), c.File, 1)
	result.Outcome, result.Err = classify(err)
	opts.Logger.Debug().Str("outcome", string(result.Outcome)).Bool("passed", result.Passed()).Msg("case finished")
	return result
}

func classify(err error) (Outcome, error) {
	if err == nil {
		return OutcomePass, nil
	}
	var violation *interpreter.FlowViolation
	if errors.As(err, &violation) {
		return OutcomeViolation, err
	}
	return OutcomeError, err
}

// Summary counts passed and failed results.
func Summary(results []CaseResult) (passed, failed int) {
	for _, r := range results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
