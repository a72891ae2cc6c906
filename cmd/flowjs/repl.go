package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"flowjs/interpreter-go/pkg/interpreter"
	"flowjs/interpreter-go/pkg/parser"
	"flowjs/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".flowjs_history"
	promptMain  = "flowjs> "
	promptCont  = "...     "
)

// runRepl reads statements interactively when stdin is a terminal and
// evaluates stdin as one script otherwise.
func runRepl(cfg cliConfig, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return 1
	}
	interp, err := newInterpreter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure interpreter: %v\n", err)
		return 1
	}
	if !isTerminal(os.Stdin) {
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read stdin: %v\n", err)
			return 1
		}
		if _, err := interp.Evaluate(string(source), "<stdin>", 1); err != nil {
			return report(err)
		}
		return 0
	}
	return interactive(interp)
}

func interactive(interp *interpreter.Interpreter) int {
	fmt.Fprintf(os.Stdout, "%s (Ctrl+D exits)\n", cliToolVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	line := 1
	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		start := line
		line += strings.Count(code, "\n") + 1

		v, err := interp.Evaluate(code, "<repl>", start)
		if err != nil {
			var quit *quitRequest
			if errors.As(err, &quit) {
				return quit.code
			}
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		if raw, _ := runtime.Unlabel(v); raw != runtime.Undefined {
			fmt.Fprintln(os.Stdout, interpreter.Inspect(v))
		}
	}
}

// readStatement prompts until the accumulated input parses or fails for a
// reason other than running out of input.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		text, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether source ends before a statement is closed.
func incomplete(source string) bool {
	_, err := parser.NewScriptParser().ParseScript("<repl>", []byte(source), 1)
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "end of input")
}
