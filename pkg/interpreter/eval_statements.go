package interpreter

import (
	"fmt"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatements(stmts []ast.Statement, ctx *Context) (Completion, error) {
	for _, stmt := range stmts {
		c, err := i.evaluateStatement(stmt, ctx)
		if err != nil || c.Abrupt() {
			return c, err
		}
	}
	return normalCompletion, nil
}

func (i *Interpreter) evaluateStatement(node ast.Statement, ctx *Context) (Completion, error) {
	switch n := node.(type) {
	case ast.Expression:
		raw, k, err := i.evaluateValue(n, ctx)
		if err != nil {
			return i.completionFromError(ctx, n, err)
		}
		ctx.Result = runtime.Wrap(raw, k)
		return normalCompletion, nil
	case *ast.BlockStatement:
		return i.evaluateStatements(n.Body, ctx)
	case *ast.VarDeclaration:
		return i.evaluateVarDeclaration(n, ctx)
	case *ast.FunctionDeclaration:
		return i.evaluateFunctionDeclaration(n, ctx)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, ctx)
	case *ast.SwitchStatement:
		return i.evaluateSwitchStatement(n, ctx)
	case *ast.WhileStatement:
		return i.evaluateWhileStatement(n, ctx)
	case *ast.DoWhileStatement:
		return i.evaluateDoWhileStatement(n, ctx)
	case *ast.ForStatement:
		return i.evaluateForStatement(n, ctx)
	case *ast.ForInStatement:
		return i.evaluateForInStatement(n, ctx)
	case *ast.BreakStatement:
		return Completion{Kind: Break, Target: n.Target}, nil
	case *ast.ContinueStatement:
		return Completion{Kind: Continue, Target: n.Target}, nil
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, ctx)
	case *ast.ThrowStatement:
		return i.evaluateThrowStatement(n, ctx)
	case *ast.TryStatement:
		return i.evaluateTryStatement(n, ctx)
	case *ast.LabeledStatement:
		c, err := i.evaluateStatement(n.Body, ctx)
		if err == nil && c.Kind == Break && c.Target == ast.Statement(n) {
			return normalCompletion, nil
		}
		return c, err
	case *ast.WithStatement:
		return i.evaluateWithStatement(n, ctx)
	case *ast.EmptyStatement:
		return normalCompletion, nil
	case *ast.DebuggerStatement:
		return i.completionFromError(ctx, n, runtime.NewTypeError("debugger statement is not supported"))
	default:
		return Completion{}, &InternalError{Message: fmt.Sprintf("unsupported statement type: %s", node.NodeType())}
	}
}

func (i *Interpreter) evaluateVarDeclaration(decl *ast.VarDeclaration, ctx *Context) (Completion, error) {
	for _, d := range decl.Declarations {
		if d.Init == nil {
			continue
		}
		ref := i.identifierReference(d.ID, ctx)
		raw, k, err := i.evaluateValue(d.Init, ctx)
		if err == nil {
			_, err = i.store(ctx, d, ref, raw, k, true)
		}
		if err == nil && decl.Kind == ast.VarKindConst {
			freeze(ref)
		}
		if err != nil {
			return i.completionFromError(ctx, d, err)
		}
	}
	return normalCompletion, nil
}

// freeze marks an initialised const binding read-only.
func freeze(ref *runtime.Reference) {
	if !ref.Resolved() {
		return
	}
	obj := ref.Base.AsObject()
	if p, ok := obj.OwnProperty(ref.Name); ok {
		frozen := *p
		frozen.ReadOnly = true
		obj.DefineProperty(ref.Name, frozen)
	}
}

func (i *Interpreter) evaluateFunctionDeclaration(decl *ast.FunctionDeclaration, ctx *Context) (Completion, error) {
	fn := decl.Function
	if fn.Form == ast.FormDeclared {
		return normalCompletion, nil
	}
	closure := i.newFunction(fn, ctx.Scope, ctx.PC)
	i.define(ctx, fn.Name(), closure, runtime.Property{})
	return normalCompletion, nil
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, ctx *Context) (Completion, error) {
	raw, k, err := i.evaluateValue(stmt.Test, ctx)
	if err != nil {
		return i.completionFromError(ctx, stmt.Test, err)
	}
	saved := i.raise(ctx, stmt, k)
	defer func() { ctx.PC = saved }()
	if runtime.ToBoolean(raw) {
		return i.evaluateStatement(stmt.Consequent, ctx)
	}
	if stmt.Alternate != nil {
		return i.evaluateStatement(stmt.Alternate, ctx)
	}
	return normalCompletion, nil
}

func (i *Interpreter) evaluateSwitchStatement(stmt *ast.SwitchStatement, ctx *Context) (Completion, error) {
	disc, k, err := i.evaluateValue(stmt.Discriminant, ctx)
	if err != nil {
		return i.completionFromError(ctx, stmt.Discriminant, err)
	}
	saved := i.raise(ctx, stmt, k)
	defer func() { ctx.PC = saved }()

	matched := -1
	for idx, cs := range stmt.Cases {
		if cs.Test == nil {
			continue
		}
		test, kt, err := i.evaluateValue(cs.Test, ctx)
		if err != nil {
			return i.completionFromError(ctx, cs.Test, err)
		}
		i.raise(ctx, stmt, kt)
		if runtime.StrictEquals(test, disc) {
			matched = idx
			break
		}
	}
	if matched < 0 {
		matched = stmt.DefaultIndex
	}
	if matched < 0 {
		return normalCompletion, nil
	}
	for _, cs := range stmt.Cases[matched:] {
		c, err := i.evaluateStatements(cs.Body, ctx)
		if err != nil {
			return c, err
		}
		if c.Kind == Break && c.Target == ast.Statement(stmt) {
			return normalCompletion, nil
		}
		if c.Abrupt() {
			return c, nil
		}
	}
	return normalCompletion, nil
}

// Loops raise the pc by the join of every test label seen so far: reaching
// an iteration depends on all earlier tests. The pc is restored when the
// loop exits.

func (i *Interpreter) evaluateWhileStatement(loop *ast.WhileStatement, ctx *Context) (Completion, error) {
	saved := ctx.PC
	defer func() { ctx.PC = saved }()
	for {
		raw, k, err := i.evaluateValue(loop.Test, ctx)
		if err != nil {
			return i.completionFromError(ctx, loop.Test, err)
		}
		i.raise(ctx, loop, k)
		if !runtime.ToBoolean(raw) {
			return normalCompletion, nil
		}
		c, err := i.evaluateStatement(loop.Body, ctx)
		if err != nil {
			return c, err
		}
		if stop, out := loopControl(c, loop); stop {
			return out, nil
		}
	}
}

func (i *Interpreter) evaluateDoWhileStatement(loop *ast.DoWhileStatement, ctx *Context) (Completion, error) {
	saved := ctx.PC
	defer func() { ctx.PC = saved }()
	for {
		c, err := i.evaluateStatement(loop.Body, ctx)
		if err != nil {
			return c, err
		}
		if stop, out := loopControl(c, loop); stop {
			return out, nil
		}
		raw, k, err := i.evaluateValue(loop.Test, ctx)
		if err != nil {
			return i.completionFromError(ctx, loop.Test, err)
		}
		i.raise(ctx, loop, k)
		if !runtime.ToBoolean(raw) {
			return normalCompletion, nil
		}
	}
}

func (i *Interpreter) evaluateForStatement(loop *ast.ForStatement, ctx *Context) (Completion, error) {
	if loop.Init != nil {
		c, err := i.evaluateStatement(loop.Init, ctx)
		if err != nil || c.Abrupt() {
			return c, err
		}
	}
	saved := ctx.PC
	defer func() { ctx.PC = saved }()
	for {
		if loop.Test != nil {
			raw, k, err := i.evaluateValue(loop.Test, ctx)
			if err != nil {
				return i.completionFromError(ctx, loop.Test, err)
			}
			i.raise(ctx, loop, k)
			if !runtime.ToBoolean(raw) {
				return normalCompletion, nil
			}
		}
		c, err := i.evaluateStatement(loop.Body, ctx)
		if err != nil {
			return c, err
		}
		if stop, out := loopControl(c, loop); stop {
			return out, nil
		}
		if loop.Update != nil {
			if _, _, err := i.evaluateValue(loop.Update, ctx); err != nil {
				return i.completionFromError(ctx, loop.Update, err)
			}
		}
	}
}

func (i *Interpreter) evaluateForInStatement(loop *ast.ForInStatement, ctx *Context) (Completion, error) {
	var target ast.Expression
	switch left := loop.Left.(type) {
	case *ast.VarDeclaration:
		c, err := i.evaluateVarDeclaration(left, ctx)
		if err != nil || c.Abrupt() {
			return c, err
		}
		if len(left.Declarations) == 0 {
			return Completion{}, &InternalError{Message: "for-in declaration without a variable"}
		}
		target = left.Declarations[0].ID
	case ast.Expression:
		target = left
	default:
		return Completion{}, &InternalError{Message: fmt.Sprintf("unsupported for-in target %s", loop.Left.NodeType())}
	}

	raw, k, err := i.evaluateValue(loop.Right, ctx)
	if err != nil {
		return i.completionFromError(ctx, loop.Right, err)
	}
	switch raw.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		if !i.opts.ECMA3Only {
			return normalCompletion, nil
		}
	}
	obj, err := i.toObject(raw, ctx.PC, loop.Right)
	if err != nil {
		return i.completionFromError(ctx, loop.Right, err)
	}

	saved := i.raise(ctx, loop, k)
	defer func() { ctx.PC = saved }()
	for _, key := range obj.AsObject().EnumerableKeys() {
		if !obj.AsObject().HasProperty(key) {
			continue
		}
		ref, err := i.evaluateExpression(target, ctx)
		if err == nil {
			_, err = i.store(ctx, target, ref, runtime.String(key), k, false)
		}
		if err != nil {
			return i.completionFromError(ctx, target, err)
		}
		c, err := i.evaluateStatement(loop.Body, ctx)
		if err != nil {
			return c, err
		}
		if stop, out := loopControl(c, loop); stop {
			return out, nil
		}
	}
	return normalCompletion, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, ctx *Context) (Completion, error) {
	var result runtime.Value = runtime.Undefined
	if stmt.Argument != nil {
		raw, k, err := i.evaluateValue(stmt.Argument, ctx)
		if err != nil {
			return i.completionFromError(ctx, stmt.Argument, err)
		}
		result = runtime.Wrap(raw, k)
	}
	return Completion{Kind: Return, Value: runtime.Wrap(result, ctx.PC)}, nil
}

func (i *Interpreter) evaluateThrowStatement(stmt *ast.ThrowStatement, ctx *Context) (Completion, error) {
	raw, k, err := i.evaluateValue(stmt.Argument, ctx)
	if err != nil {
		return i.completionFromError(ctx, stmt.Argument, err)
	}
	thrown := runtime.Wrap(runtime.Wrap(raw, k), ctx.PC)
	return Completion{Kind: Throw, Value: thrown, Line: nodeLine(stmt)}, nil
}

// evaluateTryStatement runs the protected block, then the first catch
// clause whose guard accepts the thrown value, then the finally block. An
// abrupt finally replaces the pending completion. Fatal errors skip both.
func (i *Interpreter) evaluateTryStatement(stmt *ast.TryStatement, ctx *Context) (Completion, error) {
	saved, scope := ctx.PC, ctx.Scope
	c, err := i.evaluateStatement(stmt.Block, ctx)
	if err != nil {
		return c, err
	}
	ctx.PC, ctx.Scope = saved, scope

	if c.Kind == Throw && len(stmt.Handlers) > 0 {
		c, err = i.evaluateHandlers(stmt, c, ctx)
		if err != nil {
			return c, err
		}
	}
	if stmt.Finalizer != nil {
		f, err := i.evaluateStatement(stmt.Finalizer, ctx)
		if err != nil || f.Abrupt() {
			return f, err
		}
	}
	return c, nil
}

func (i *Interpreter) evaluateHandlers(stmt *ast.TryStatement, thrown Completion, ctx *Context) (Completion, error) {
	_, k := runtime.Unlabel(thrown.Value)
	for _, clause := range stmt.Handlers {
		c, matched, err := i.evaluateCatchClause(clause, thrown.Value, k, ctx)
		if err != nil || matched {
			return c, err
		}
	}
	return thrown, nil
}

// evaluateCatchClause binds the thrown value in a fresh frame. The clause
// runs at a pc raised by the label the thrown value carries.
func (i *Interpreter) evaluateCatchClause(clause *ast.CatchClause, thrown runtime.Value, k lattice.Label, ctx *Context) (Completion, bool, error) {
	saved, scope := ctx.PC, ctx.Scope
	defer func() { ctx.PC, ctx.Scope = saved, scope }()

	i.raise(ctx, clause, k)
	ctx.Scope = i.newFrame(scope)
	i.define(ctx, clause.Param.Name, thrown, runtime.Property{})

	if clause.Guard != nil {
		raw, _, err := i.evaluateValue(clause.Guard, ctx)
		if err != nil {
			c, err := i.completionFromError(ctx, clause.Guard, err)
			return c, true, err
		}
		if !runtime.ToBoolean(raw) {
			return Completion{}, false, nil
		}
	}
	c, err := i.evaluateStatement(clause.Body, ctx)
	return c, true, err
}

func (i *Interpreter) evaluateWithStatement(stmt *ast.WithStatement, ctx *Context) (Completion, error) {
	raw, k, err := i.evaluateValue(stmt.Object, ctx)
	if err != nil {
		return i.completionFromError(ctx, stmt.Object, err)
	}
	obj, err := i.toObject(raw, ctx.PC, stmt.Object)
	if err != nil {
		return i.completionFromError(ctx, stmt.Object, err)
	}

	saved, scope := ctx.PC, ctx.Scope
	defer func() { ctx.PC, ctx.Scope = saved, scope }()
	i.raise(ctx, stmt, k)
	if i.lattice.IsBottom(ctx.PC) {
		ctx.Scope = runtime.NewObjectFrame(obj, i.newStore(i.lattice.Top()), scope)
	} else {
		ctx.Scope = runtime.NewObjectFrame(i.newStore(i.lattice.Bottom()), obj, scope)
	}
	return i.evaluateStatement(stmt.Body, ctx)
}

// define binds name in the active partition of the current frame. Values
// defined into a store classified below the pc carry the pc.
func (i *Interpreter) define(ctx *Context, name string, v runtime.Value, prop runtime.Property) {
	prop.Value = v
	ctx.Scope.Define(name, prop, ctx.PC)
}

// instantiate hoists declarations into the active partition before code
// runs: functions first, then variables not already present.
func (i *Interpreter) instantiate(ctx *Context, vars []ast.HoistedVar, funcs []*ast.FunctionLiteral) error {
	permanent := ctx.Kind != EvalCode
	for _, fn := range funcs {
		closure := i.newFunction(fn, ctx.Scope, ctx.PC)
		i.define(ctx, fn.Name(), closure, runtime.Property{Permanent: permanent})
	}
	store := ctx.scopeSpace()
	for _, v := range vars {
		exists := store.HasOwnProperty(v.Name)
		if v.Const && exists {
			return runtime.NewTypeError("redeclaration of const %s", v.Name)
		}
		if v.Const || !exists {
			i.define(ctx, v.Name, runtime.Undefined, runtime.Property{Permanent: permanent})
		}
	}
	return nil
}
