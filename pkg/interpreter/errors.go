package interpreter

import (
	"errors"
	"fmt"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/parser"
	"flowjs/interpreter-go/pkg/runtime"
)

// Exception is a language-level throw that was not caught. Value is the
// thrown value, possibly labeled.
type Exception struct {
	Value    runtime.Value
	Filename string
	Line     int
}

func (e *Exception) Error() string {
	msg := "uncaught exception: " + describeThrown(e.Value)
	switch {
	case e.Filename != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	default:
		return msg
	}
}

// FlowViolation reports a write that would let information classified LHS
// reach a location classified only RHS. Programs cannot catch it.
type FlowViolation struct {
	Target   string
	LHS      lattice.Label
	RHS      lattice.Label
	Filename string
	Line     int
}

func (e *FlowViolation) Error() string {
	msg := fmt.Sprintf("flow violation: %s </= %s", e.LHS, e.RHS)
	if e.Target != "" {
		msg += fmt.Sprintf(" (write to %s)", e.Target)
	}
	switch {
	case e.Filename != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	default:
		return msg
	}
}

// StackOverflow is returned when calls nest deeper than Options.MaxDepth.
type StackOverflow struct {
	Depth int
}

func (e *StackOverflow) Error() string {
	return fmt.Sprintf("too much recursion (depth %d)", e.Depth)
}

// SyntaxError wraps a parse failure of top-level source.
type SyntaxError struct {
	Err *parser.Error
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// InternalError marks an evaluator invariant that did not hold.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

func nodeLine(node ast.Node) int {
	if node == nil {
		return 0
	}
	return node.Span().Start.Line
}

// completionFromError turns a catchable failure into a throw completion.
// Fatal errors are returned unchanged.
func (i *Interpreter) completionFromError(ctx *Context, node ast.Node, err error) (Completion, error) {
	var exc *Exception
	if errors.As(err, &exc) {
		line := exc.Line
		if line == 0 {
			line = nodeLine(node)
		}
		return Completion{Kind: Throw, Value: exc.Value, Line: line}, nil
	}
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		errObj := i.makeError(rtErr.Name, rtErr.Message, ctx.PC)
		return Completion{Kind: Throw, Value: runtime.Wrap(errObj, ctx.PC), Line: nodeLine(node)}, nil
	}
	return Completion{}, err
}

// exception converts a throw completion escaping an activation into an error.
func (i *Interpreter) exception(c Completion) *Exception {
	return &Exception{Value: c.Value, Filename: i.filename, Line: c.Line}
}

// hostError reifies value-model errors for callers outside the evaluator.
func (i *Interpreter) hostError(err error) error {
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		pc := i.currentContext().PC
		return &Exception{Value: runtime.Wrap(i.makeError(rtErr.Name, rtErr.Message, pc), pc), Filename: i.filename}
	}
	return err
}

func (i *Interpreter) violation(node ast.Node, target string, lhs, rhs lattice.Label) error {
	line := nodeLine(node)
	i.log.Trace().
		Str("target", target).
		Str("lhs", lhs.String()).
		Str("rhs", rhs.String()).
		Int("line", line).
		Msg("flow violation")
	return &FlowViolation{Target: target, LHS: lhs, RHS: rhs, Filename: i.filename, Line: line}
}

// makeError allocates a language error object of the named class.
func (i *Interpreter) makeError(name, message string, partition lattice.Label) *runtime.Object {
	proto, ok := i.errorProtos[name]
	if !ok {
		proto = i.errorProtos["Error"]
	}
	obj := runtime.NewObject(runtime.ClassError, proto, partition)
	obj.SetHidden("message", runtime.String(message))
	return obj
}

func describeThrown(v runtime.Value) string {
	raw, k := runtime.Unlabel(v)
	var s string
	if obj, ok := raw.(runtime.ObjectValue); ok && obj.AsObject().Class == runtime.ClassError {
		s = errorString(obj)
	} else {
		s = Inspect(raw)
	}
	if !k.IsNone() {
		return "<" + k.String() + ">" + s
	}
	return s
}

func errorString(obj runtime.ObjectValue) string {
	name, _ := runtime.GetProperty(obj, "name")
	message, _ := runtime.GetProperty(obj, "message")
	n := runtime.ToString(name)
	if _, ok := name.(runtime.UndefinedValue); ok {
		n = "Error"
	}
	m := runtime.ToString(message)
	if _, ok := message.(runtime.UndefinedValue); ok || m == "" {
		return n
	}
	return n + ": " + m
}
