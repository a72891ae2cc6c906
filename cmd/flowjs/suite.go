package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"flowjs/interpreter-go/pkg/driver"
)

func runSuite(cfg cliConfig, args []string) int {
	jobs := 1
	cacheDir := ""
	var paths []string
	for idx := 0; idx < len(args); idx++ {
		name, value, hasValue := strings.Cut(args[idx], "=")
		switch name {
		case "--jobs", "-j", "--cache":
			if !hasValue {
				if idx+1 >= len(args) {
					fmt.Fprintf(os.Stderr, "%s requires a value\n", name)
					return 2
				}
				idx++
				value = args[idx]
			}
			if name == "--cache" {
				cacheDir = value
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "--jobs must be a positive integer (got %q)\n", value)
				return 2
			}
			jobs = n
		default:
			paths = append(paths, args[idx])
		}
	}
	if len(paths) != 1 {
		fmt.Fprintln(os.Stderr, "flowjs suite requires exactly one suite.yml")
		return 1
	}

	suite, err := driver.LoadSuite(paths[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load suite: %v\n", err)
		return 1
	}
	if suite.Source != nil && cacheDir == "" {
		home, err := resolveFlowHome()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve FLOWJS_HOME: %v\n", err)
			return 1
		}
		cacheDir = filepath.Join(home, "suites")
	}
	dir, commit, err := driver.FetchSuite(suite, cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch suite sources: %v\n", err)
		return 1
	}
	if commit != "" {
		fmt.Fprintf(os.Stdout, "Suite %s at %s\n", suite.Name, commit)
	}

	opts := driver.RunOptions{
		Dir:      dir,
		MaxDepth: cfg.maxDepth,
		Logger:   cfg.logger(),
	}
	if jobs > 1 {
		pool := driver.NewGoroutineExecutor(jobs)
		defer pool.Flush()
		opts.Executor = pool
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, err := driver.RunSuite(ctx, suite, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to run suite: %v\n", err)
		return 1
	}
	for _, r := range results {
		if r.Passed() {
			fmt.Fprintf(os.Stdout, "PASSED %s\n", r.File)
			continue
		}
		detail := string(r.Outcome)
		if r.Err != nil {
			detail = fmt.Sprintf("%s: %v", r.Outcome, r.Err)
		}
		fmt.Fprintf(os.Stdout, "FAILED %s (expected %s, got %s)\n", r.File, r.Expect, detail)
	}
	passed, failed := driver.Summary(results)
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func resolveFlowHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("FLOWJS_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve FLOWJS_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".flowjs"), nil
}
