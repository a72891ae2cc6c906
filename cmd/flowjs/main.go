package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"flowjs/interpreter-go/pkg/interpreter"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

const cliToolVersion = "flowjs 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// cliConfig holds the flags shared by every subcommand.
type cliConfig struct {
	trace       bool
	ecma3       bool
	maxDepth    int
	latticePath string
}

func run(args []string) int {
	cfg, rest, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(rest) == 0 {
		printUsage()
		return 1
	}

	switch rest[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runFile(cfg, rest[1:])
	case "eval":
		return runEval(cfg, rest[1:])
	case "repl":
		return runRepl(cfg, rest[1:])
	case "suite":
		return runSuite(cfg, rest[1:])
	default:
		return runFile(cfg, rest)
	}
}

// parseGlobalFlags consumes leading flags up to the first subcommand or
// file argument.
func parseGlobalFlags(args []string) (cliConfig, []string, error) {
	var cfg cliConfig
	for len(args) > 0 {
		arg := args[0]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--trace":
			cfg.trace = true
		case "--ecma3":
			cfg.ecma3 = true
		case "--lattice", "--max-depth":
			if !hasValue {
				if len(args) < 2 {
					return cfg, nil, fmt.Errorf("%s requires a value", name)
				}
				value = args[1]
				args = args[1:]
			}
			if name == "--lattice" {
				cfg.latticePath = value
				break
			}
			depth, err := strconv.Atoi(value)
			if err != nil || depth <= 0 {
				return cfg, nil, fmt.Errorf("--max-depth must be a positive integer (got %q)", value)
			}
			cfg.maxDepth = depth
		default:
			return cfg, args, nil
		}
		args = args[1:]
	}
	return cfg, nil, nil
}

// options builds interpreter options from the flags. The lattice comes
// from --lattice when given.
func (cfg cliConfig) options() (interpreter.Options, error) {
	opts := interpreter.DefaultOptions()
	opts.Stdout = os.Stdout
	opts.ECMA3Only = cfg.ecma3
	if cfg.maxDepth > 0 {
		opts.MaxDepth = cfg.maxDepth
	}
	if cfg.latticePath != "" {
		lat, err := lattice.Load(cfg.latticePath)
		if err != nil {
			return opts, err
		}
		opts.Lattice = lat
	}
	opts.Logger = cfg.logger()
	return opts, nil
}

func (cfg cliConfig) logger() zerolog.Logger {
	if !cfg.trace {
		return zerolog.Nop()
	}
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isTerminal(os.Stderr)}
	return zerolog.New(writer).Level(zerolog.TraceLevel).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// newInterpreter returns an interpreter with the launcher's host functions
// installed.
func newInterpreter(cfg cliConfig) (*interpreter.Interpreter, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	interp := interpreter.NewWithOptions(opts)
	installHostFunctions(interp)
	return interp, nil
}

// quitRequest stops evaluation when a script calls quit().
type quitRequest struct {
	code int
}

func (q *quitRequest) Error() string {
	return fmt.Sprintf("quit(%d)", q.code)
}

func installHostFunctions(interp *interpreter.Interpreter) {
	interp.DefineFunc("version", func() string { return cliToolVersion })
	interp.DefineNative("quit", 1, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		code := 0
		if len(args) > 0 {
			raw, _ := runtime.Unlabel(args[0])
			code = int(runtime.ToInt32(raw))
		}
		return nil, &quitRequest{code: code}
	})
	// load evaluates a file in the calling activation, like eval of its
	// contents. The text carries the label of the path.
	interp.DefineNative("load", 1, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return nil, runtime.NewTypeError("load requires a file name")
		}
		raw, k := runtime.Unlabel(args[0])
		path, err := runtime.StringOf(raw)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &runtime.Error{Name: "Error", Message: fmt.Sprintf("load %s: %v", path, err)}
		}
		evalFn, err := interp.Global().Get("eval")
		if err != nil {
			return nil, err
		}
		return interp.Call(evalFn, runtime.Undefined, runtime.Wrap(runtime.String(string(data)), k))
	})
}

// report prints an evaluation error and maps it to an exit code.
func report(err error) int {
	var quit *quitRequest
	if errors.As(err, &quit) {
		return quit.code
	}
	var violation *interpreter.FlowViolation
	if errors.As(err, &violation) {
		fmt.Fprintln(os.Stderr, violation.Error())
		return 3
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}

func runFile(cfg cliConfig, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "flowjs run requires a source file")
		return 1
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return 1
	}
	interp, err := newInterpreter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure interpreter: %v\n", err)
		return 1
	}
	if _, err := interp.Evaluate(string(source), filepath.Base(path), 1); err != nil {
		return report(err)
	}
	return 0
}

func runEval(cfg cliConfig, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "flowjs eval requires source text")
		return 1
	}
	interp, err := newInterpreter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure interpreter: %v\n", err)
		return 1
	}
	v, err := interp.Evaluate(strings.Join(args, " "), "<eval>", 1)
	if err != nil {
		return report(err)
	}
	if raw, _ := runtime.Unlabel(v); raw != runtime.Undefined {
		fmt.Fprintln(os.Stdout, interpreter.Inspect(v))
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  flowjs [flags] run <file.js>")
	fmt.Fprintln(os.Stderr, "  flowjs [flags] <file.js>")
	fmt.Fprintln(os.Stderr, "  flowjs [flags] eval <source>")
	fmt.Fprintln(os.Stderr, "  flowjs [flags] repl")
	fmt.Fprintln(os.Stderr, "  flowjs [flags] suite [--jobs N] [--cache DIR] <suite.yml>")
	fmt.Fprintln(os.Stderr, "  flowjs version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  --trace            log pc raises, relabels and violations to stderr")
	fmt.Fprintln(os.Stderr, "  --lattice FILE     load the label lattice from a YAML file")
	fmt.Fprintln(os.Stderr, "  --max-depth N      bound nested calls")
	fmt.Fprintln(os.Stderr, "  --ecma3            for-in over null or undefined is a TypeError")
}
