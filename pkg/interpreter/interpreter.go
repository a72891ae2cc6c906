package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/parser"
	"flowjs/interpreter-go/pkg/runtime"
)

// DefaultMaxDepth bounds nested calls when Options.MaxDepth is zero.
const DefaultMaxDepth = 4096

// Options configures an Interpreter.
type Options struct {
	// Lattice orders the labels programs may attach; nil selects L < H.
	Lattice *lattice.Lattice
	// MaxDepth bounds nested function calls.
	MaxDepth int
	// ECMA3Only makes for-in over null or undefined a TypeError.
	ECMA3Only bool
	// Logger receives trace events for pc raises, relabels and violations.
	Logger zerolog.Logger
	// Stdout is where print writes.
	Stdout io.Writer
}

// DefaultOptions returns the two-point lattice, the default depth bound and
// a disabled logger.
func DefaultOptions() Options {
	return Options{
		Lattice:  lattice.Default(),
		MaxDepth: DefaultMaxDepth,
		Logger:   zerolog.Nop(),
		Stdout:   os.Stdout,
	}
}

// Interpreter evaluates scripts over labeled values. An Interpreter owns a
// global object that persists across Evaluate calls; it is not safe for
// concurrent use.
type Interpreter struct {
	opts    Options
	lattice *lattice.Lattice
	log     zerolog.Logger
	parser  *parser.ScriptParser

	global      *runtime.Object
	globalHi    *runtime.Object
	globalFrame *runtime.Frame
	globalCtx   *Context
	current     *Context
	depth       int
	filename    string

	objectProto   *runtime.Object
	functionProto *runtime.Object
	arrayProto    *runtime.Object
	stringProto   *runtime.Object
	numberProto   *runtime.Object
	booleanProto  *runtime.Object
	regexpProto   *runtime.Object
	errorProtos   map[string]*runtime.Object
}

// New returns an interpreter with DefaultOptions.
func New() *Interpreter {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions returns an interpreter with the builtins installed on a
// fresh global object.
func NewWithOptions(opts Options) *Interpreter {
	if opts.Lattice == nil {
		opts.Lattice = lattice.Default()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	i := &Interpreter{
		opts:        opts,
		lattice:     opts.Lattice,
		log:         opts.Logger,
		parser:      parser.NewScriptParser(),
		errorProtos: make(map[string]*runtime.Object),
	}
	i.installGlobals()
	return i
}

// Lattice returns the label lattice programs are checked against.
func (i *Interpreter) Lattice() *lattice.Lattice { return i.lattice }

// Global returns the host-visible global object.
func (i *Interpreter) Global() *runtime.Object { return i.global }

// SetGlobal defines a global binding visible to every later evaluation.
func (i *Interpreter) SetGlobal(name string, v runtime.Value) {
	i.global.Set(name, v)
	i.globalFrame.Bind(name, i.global)
}

// DefineNative installs a host function as a non-enumerable global.
func (i *Interpreter) DefineNative(name string, arity int, fn runtime.NativeFunc) {
	i.global.SetHidden(name, runtime.NewNativeFunction(name, arity, fn, i.functionProto))
}

// DefineFunc reflects a Go function with Adapt and installs it as a
// non-enumerable global.
func (i *Interpreter) DefineFunc(name string, fn any) {
	i.global.SetHidden(name, Adapt(name, fn, i.functionProto))
}

// Evaluate parses source and runs it as global code at the bottom pc. The
// result is the value of the last expression statement, labeled when it
// is classified.
func (i *Interpreter) Evaluate(source, filename string, line int) (runtime.Value, error) {
	prog, err := i.parser.ParseScript(filename, []byte(source), line)
	if err != nil {
		var parseErr *parser.Error
		if errors.As(err, &parseErr) {
			return nil, &SyntaxError{Err: parseErr}
		}
		return nil, err
	}
	saved := i.filename
	i.filename = filename
	defer func() { i.filename = saved }()
	return i.EvaluateProgram(prog)
}

// EvaluateProgram runs a parsed program as global code.
func (i *Interpreter) EvaluateProgram(prog *ast.Program) (runtime.Value, error) {
	if prog == nil {
		return nil, fmt.Errorf("interpreter: nil program")
	}
	ctx := &Context{
		Kind:   GlobalCode,
		PC:     i.lattice.Bottom(),
		Scope:  i.globalFrame,
		This:   i.global,
		Caller: i.current,
		Result: runtime.Undefined,
	}
	c, err := i.runCode(ctx, prog.Body, prog.Vars, prog.Functions)
	if err != nil {
		return nil, err
	}
	if c.Kind == Throw {
		return nil, i.exception(c)
	}
	return ctx.Result, nil
}

// runCode hoists declarations and runs body with ctx as the current
// context. A return or jump escaping body is an internal error for global
// and eval code.
func (i *Interpreter) runCode(ctx *Context, body []ast.Statement, vars []ast.HoistedVar, funcs []*ast.FunctionLiteral) (Completion, error) {
	prev := i.current
	i.current = ctx
	defer func() { i.current = prev }()

	if err := i.instantiate(ctx, vars, funcs); err != nil {
		return i.completionFromError(ctx, nil, err)
	}
	c, err := i.evaluateStatements(body, ctx)
	if err != nil {
		return c, err
	}
	switch c.Kind {
	case Break, Continue:
		return c, &InternalError{Message: fmt.Sprintf("%s escaped %s code", c.Kind, ctx.Kind)}
	case Return:
		if ctx.Kind != FunctionCode {
			return c, &InternalError{Message: "return outside function"}
		}
	}
	return c, nil
}

// currentContext is the innermost running activation, or the global
// context when nothing runs.
func (i *Interpreter) currentContext() *Context {
	if i.current != nil {
		return i.current
	}
	return i.globalCtx
}

// Call invokes fn with the given receiver and arguments from host code.
func (i *Interpreter) Call(fn runtime.Value, this runtime.Value, args ...runtime.Value) (runtime.Value, error) {
	raw, _ := runtime.Unlabel(fn)
	callee, ok := raw.(runtime.Callable)
	if !ok {
		return nil, i.hostError(runtime.NewTypeError("%s is not a function", Inspect(raw)))
	}
	if this == nil {
		this = runtime.Undefined
	}
	result, err := callee.Call(this, args)
	if err != nil {
		return nil, i.hostError(err)
	}
	return result, nil
}

// Construct runs `new fn(args...)` from host code.
func (i *Interpreter) Construct(fn runtime.Value, args ...runtime.Value) (runtime.Value, error) {
	raw, _ := runtime.Unlabel(fn)
	ctor, ok := raw.(runtime.Constructible)
	if !ok || !runtime.IsConstructor(raw) {
		return nil, i.hostError(runtime.NewTypeError("%s is not a constructor", Inspect(raw)))
	}
	result, err := ctor.Construct(args)
	if err != nil {
		return nil, i.hostError(err)
	}
	return result, nil
}

// Apply invokes fn with the elements of an array-like object as
// arguments. A nil or null argsArray passes no arguments.
func (i *Interpreter) Apply(fn runtime.Value, this runtime.Value, argsArray runtime.Value) (runtime.Value, error) {
	args, err := i.argumentList(argsArray)
	if err != nil {
		return nil, i.hostError(err)
	}
	return i.Call(fn, this, args...)
}

func (i *Interpreter) argumentList(v runtime.Value) ([]runtime.Value, error) {
	if v == nil {
		return nil, nil
	}
	raw, _ := runtime.Unlabel(v)
	switch arr := raw.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return nil, nil
	case runtime.ObjectValue:
		return runtime.Elements(arr)
	default:
		return nil, runtime.NewTypeError("second argument to apply must be an array")
	}
}
