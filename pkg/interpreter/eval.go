package interpreter

import (
	"errors"
	"strings"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/parser"
	"flowjs/interpreter-go/pkg/runtime"
)

// evalNative runs a string as code in the calling activation: its scope,
// `this` and callee. The pc of the eval context includes the label of the
// source text. Parse failures and stack exhaustion become catchable errors.
func (i *Interpreter) evalNative(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.Undefined, nil
	}
	raw, k := runtime.Unlabel(args[0])
	src, ok := raw.(runtime.StringValue)
	if !ok {
		return args[0], nil
	}
	if i.depth >= i.opts.MaxDepth {
		return nil, &runtime.Error{Name: "InternalError", Message: (&StackOverflow{Depth: i.depth}).Error()}
	}
	i.depth++
	defer func() { i.depth-- }()

	caller := i.currentContext()
	prog, err := i.parser.ParseScript(i.filename, []byte(src.Val), 1)
	if err != nil {
		return nil, runtime.NewSyntaxError("%s", parseMessage(err))
	}

	ctx := &Context{
		Kind:   EvalCode,
		PC:     lattice.Join(caller.PC, k),
		Scope:  caller.Scope,
		This:   caller.This,
		Caller: caller,
		Callee: caller.Callee,
		Result: runtime.Undefined,
	}
	i.log.Trace().
		Str("pc", ctx.PC.String()).
		Int("depth", i.depth).
		Msg("eval")
	c, err := i.runCode(ctx, prog.Body, prog.Vars, prog.Functions)
	if err != nil {
		var overflow *StackOverflow
		if errors.As(err, &overflow) {
			return nil, &runtime.Error{Name: "InternalError", Message: overflow.Error()}
		}
		return nil, err
	}
	if c.Kind == Throw {
		return nil, i.exception(c)
	}
	return runtime.Wrap(ctx.Result, k), nil
}

// functionFromSource implements the Function constructor: the last
// argument is the body, the others name the parameters. The closure is
// created in the global scope.
func (i *Interpreter) functionFromSource(args []runtime.Value) (runtime.Value, error) {
	k := joinLabels(args...)
	parts := make([]string, len(args))
	for idx, a := range args {
		raw, _ := runtime.Unlabel(a)
		s, err := runtime.StringOf(raw)
		if err != nil {
			return nil, err
		}
		parts[idx] = s
	}
	var params, body string
	if n := len(parts); n > 0 {
		params = strings.Join(parts[:n-1], ", ")
		body = parts[n-1]
	}
	source := "(function anonymous(" + params + ") {\n" + body + "\n})"
	prog, err := i.parser.ParseScript(i.filename, []byte(source), 1)
	if err != nil {
		return nil, runtime.NewSyntaxError("%s", parseMessage(err))
	}
	var lit *ast.FunctionLiteral
	if len(prog.Body) == 1 {
		lit, _ = prog.Body[0].(*ast.FunctionLiteral)
	}
	if lit == nil {
		return nil, runtime.NewSyntaxError("malformed function body")
	}
	pc := lattice.Join(i.currentContext().PC, k)
	return runtime.Wrap(i.newFunction(lit, i.globalFrame, pc), k), nil
}

func parseMessage(err error) string {
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return parseErr.Message
	}
	return err.Error()
}
