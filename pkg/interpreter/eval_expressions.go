package interpreter

import (
	"fmt"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// evaluateExpression returns the value of node, which may be an unresolved
// reference for identifiers and property accesses. Callers that need the
// value itself use evaluateValue.
func (i *Interpreter) evaluateExpression(node ast.Expression, ctx *Context) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		return i.identifierReference(n, ctx), nil
	case *ast.NumberLiteral:
		return runtime.Number(n.Value), nil
	case *ast.StringLiteral:
		return runtime.String(n.Value), nil
	case *ast.BooleanLiteral:
		return runtime.Bool(n.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.RegExpLiteral:
		return i.newRegExp(n.Pattern, n.Flags, ctx.PC)
	case *ast.ThisExpression:
		return ctx.This, nil
	case *ast.ArrayLiteral:
		return i.evaluateArrayLiteral(n, ctx)
	case *ast.ObjectLiteral:
		return i.evaluateObjectLiteral(n, ctx)
	case *ast.FunctionLiteral:
		return i.evaluateFunctionLiteral(n, ctx), nil
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, ctx)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, ctx)
	case *ast.LogicalExpression:
		return i.evaluateLogicalExpression(n, ctx)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, ctx)
	case *ast.UpdateExpression:
		return i.evaluateUpdateExpression(n, ctx)
	case *ast.ConditionalExpression:
		return i.evaluateConditionalExpression(n, ctx)
	case *ast.SequenceExpression:
		var result runtime.Value = runtime.Undefined
		for _, expr := range n.Expressions {
			raw, k, err := i.evaluateValue(expr, ctx)
			if err != nil {
				return nil, err
			}
			result = runtime.Wrap(raw, k)
		}
		return result, nil
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, ctx)
	case *ast.NewExpression:
		return i.evaluateNewExpression(n, ctx)
	case *ast.MemberExpression:
		return i.evaluatePropertyReference(n, n.Object, runtime.String(n.Property.Name), lattice.None, ctx)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, ctx)
	case *ast.LabelExpression:
		return i.evaluateLabelExpression(n, ctx)
	default:
		return nil, &InternalError{Message: fmt.Sprintf("unsupported expression type: %s", node.NodeType())}
	}
}

// evaluateValue evaluates node and resolves the result to a raw value and
// its effective label.
func (i *Interpreter) evaluateValue(node ast.Expression, ctx *Context) (runtime.Value, lattice.Label, error) {
	v, err := i.evaluateExpression(node, ctx)
	if err != nil {
		return nil, lattice.None, err
	}
	return i.resolve(v)
}

// identifierReference finds the store that binds id. Unbound names yield
// a reference without a base.
func (i *Interpreter) identifierReference(id *ast.Identifier, ctx *Context) *runtime.Reference {
	store, _ := ctx.Scope.Lookup(id.Name)
	return &runtime.Reference{Base: store, Name: id.Name, Node: id}
}

func (i *Interpreter) evaluateArrayLiteral(lit *ast.ArrayLiteral, ctx *Context) (runtime.Value, error) {
	elems := make([]runtime.Value, len(lit.Elements))
	for idx, el := range lit.Elements {
		if el == nil {
			continue
		}
		raw, k, err := i.evaluateValue(el, ctx)
		if err != nil {
			return nil, err
		}
		elems[idx] = runtime.Wrap(raw, k)
	}
	return runtime.NewArray(i.arrayProto, ctx.PC, elems), nil
}

func (i *Interpreter) evaluateObjectLiteral(lit *ast.ObjectLiteral, ctx *Context) (runtime.Value, error) {
	obj := runtime.NewObject(runtime.ClassObject, i.objectProto, ctx.PC)
	for _, prop := range lit.Properties {
		raw, k, err := i.evaluateValue(prop.Value, ctx)
		if err != nil {
			return nil, err
		}
		switch prop.Kind {
		case ast.PropertyGetter, ast.PropertySetter:
			slot := runtime.Property{}
			if existing, ok := obj.OwnProperty(prop.Key); ok && existing.IsAccessor() {
				slot = *existing
			}
			if prop.Kind == ast.PropertyGetter {
				slot.Getter = raw
			} else {
				slot.Setter = raw
			}
			obj.DefineProperty(prop.Key, slot)
		default:
			obj.DefineProperty(prop.Key, runtime.Property{Value: runtime.Wrap(raw, k)})
		}
	}
	return obj, nil
}

// evaluateFunctionLiteral creates a closure over the current scope. A named
// function expression sees its own name through an extra frame.
func (i *Interpreter) evaluateFunctionLiteral(fn *ast.FunctionLiteral, ctx *Context) *runtime.Function {
	if fn.Form != ast.FormExpression || fn.Name() == "" {
		return i.newFunction(fn, ctx.Scope, ctx.PC)
	}
	frame := i.newFrame(ctx.Scope)
	closure := i.newFunction(fn, frame, ctx.PC)
	store := frame.Store(ctx.PC)
	store.AsObject().DefineProperty(fn.Name(), runtime.Property{Value: closure, ReadOnly: true, Permanent: true})
	frame.Bind(fn.Name(), store)
	return closure
}

func (i *Interpreter) evaluateAssignment(expr *ast.AssignmentExpression, ctx *Context) (runtime.Value, error) {
	w, err := i.evaluateExpression(expr.Target, ctx)
	if err != nil {
		return nil, err
	}
	if !isReference(w) {
		return nil, runtime.NewReferenceError("invalid assignment left-hand side")
	}
	op := expr.Operator.BinaryOperator()
	if op == "" {
		r, k, err := i.evaluateValue(expr.Value, ctx)
		if err != nil {
			return nil, err
		}
		return i.store(ctx, expr, w, r, k, false)
	}
	u, ku, err := i.resolve(w)
	if err != nil {
		return nil, err
	}
	s, ks, err := i.evaluateValue(expr.Value, ctx)
	if err != nil {
		return nil, err
	}
	r, err := i.binaryOp(op, u, s)
	if err != nil {
		return nil, err
	}
	return i.store(ctx, expr, w, r, lattice.Join(ku, ks), false)
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, ctx *Context) (runtime.Value, error) {
	left, kl, err := i.evaluateValue(expr.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, kr, err := i.evaluateValue(expr.Right, ctx)
	if err != nil {
		return nil, err
	}
	result, err := i.binaryOp(expr.Operator, left, right)
	if err != nil {
		return nil, err
	}
	if expr.Operator == "instanceof" {
		return runtime.Wrap(result, kl), nil
	}
	return runtime.Wrap(result, lattice.Join(kl, kr)), nil
}

// evaluateLogicalExpression short-circuits. The right operand runs at a pc
// raised by the left operand's label, since whether it runs depends on it.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.LogicalExpression, ctx *Context) (runtime.Value, error) {
	left, kl, err := i.evaluateValue(expr.Left, ctx)
	if err != nil {
		return nil, err
	}
	truthy := runtime.ToBoolean(left)
	switch expr.Operator {
	case "&&":
		if !truthy {
			return runtime.Wrap(left, kl), nil
		}
	case "||":
		if truthy {
			return runtime.Wrap(left, kl), nil
		}
	default:
		return nil, &InternalError{Message: fmt.Sprintf("unknown logical operator %s", expr.Operator)}
	}
	saved := i.raise(ctx, expr, kl)
	defer func() { ctx.PC = saved }()
	right, kr, err := i.evaluateValue(expr.Right, ctx)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(right, lattice.Join(kl, kr)), nil
}

func (i *Interpreter) evaluateConditionalExpression(expr *ast.ConditionalExpression, ctx *Context) (runtime.Value, error) {
	test, k, err := i.evaluateValue(expr.Test, ctx)
	if err != nil {
		return nil, err
	}
	saved := i.raise(ctx, expr, k)
	defer func() { ctx.PC = saved }()
	branch := expr.Alternate
	if runtime.ToBoolean(test) {
		branch = expr.Consequent
	}
	raw, kb, err := i.evaluateValue(branch, ctx)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(raw, lattice.Join(k, kb)), nil
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, ctx *Context) (runtime.Value, error) {
	switch expr.Operator {
	case ast.UnaryTypeof:
		v, err := i.evaluateExpression(expr.Operand, ctx)
		if err != nil {
			return nil, err
		}
		raw, k := runtime.Unlabel(v)
		if ref, ok := raw.(*runtime.Reference); ok && !ref.Resolved() {
			return runtime.Wrap(runtime.String("undefined"), k), nil
		}
		val, k, err := i.resolve(v)
		if err != nil {
			return nil, err
		}
		return runtime.Wrap(runtime.String(runtime.TypeOf(val)), k), nil
	case ast.UnaryDelete:
		return i.evaluateDelete(expr, ctx)
	case ast.UnaryVoid:
		if _, _, err := i.evaluateValue(expr.Operand, ctx); err != nil {
			return nil, err
		}
		return runtime.Undefined, nil
	}

	operand, k, err := i.evaluateValue(expr.Operand, ctx)
	if err != nil {
		return nil, err
	}
	var result runtime.Value
	switch expr.Operator {
	case ast.UnaryNot:
		result = runtime.Bool(!runtime.ToBoolean(operand))
	case ast.UnaryMinus, ast.UnaryPlus, ast.UnaryBitNot:
		n, err := runtime.NumberOf(operand)
		if err != nil {
			return nil, err
		}
		switch expr.Operator {
		case ast.UnaryMinus:
			result = runtime.Number(-n)
		case ast.UnaryPlus:
			result = runtime.Number(n)
		default:
			result = runtime.Number(float64(^runtime.ToInt32(runtime.Number(n))))
		}
	default:
		return nil, &InternalError{Message: fmt.Sprintf("unknown unary operator %s", expr.Operator)}
	}
	return runtime.Wrap(result, k), nil
}

// evaluateDelete removes a property. Deleting is a write to the location,
// so it is checked against the pc and the reference label.
func (i *Interpreter) evaluateDelete(expr *ast.UnaryExpression, ctx *Context) (runtime.Value, error) {
	v, err := i.evaluateExpression(expr.Operand, ctx)
	if err != nil {
		return nil, err
	}
	raw, k := runtime.Unlabel(v)
	ref, ok := raw.(*runtime.Reference)
	if !ok {
		return runtime.True, nil
	}
	if !ref.Resolved() {
		return runtime.True, nil
	}
	m := ref.Partition()
	if cell, exists := ref.Peek(); exists {
		_, cellLabel := runtime.Unlabel(cell)
		m = lattice.Join(m, cellLabel)
	}
	if lhs := lattice.Join(ctx.PC, k); lattice.Less(m, lhs) {
		return nil, i.violation(expr, ref.Name, lhs, m)
	}
	return runtime.Bool(ref.Base.AsObject().Delete(ref.Name)), nil
}

func (i *Interpreter) evaluateUpdateExpression(expr *ast.UpdateExpression, ctx *Context) (runtime.Value, error) {
	w, err := i.evaluateExpression(expr.Operand, ctx)
	if err != nil {
		return nil, err
	}
	if !isReference(w) {
		return nil, runtime.NewReferenceError("invalid %s operand", expr.Operator)
	}
	old, k, err := i.resolve(w)
	if err != nil {
		return nil, err
	}
	n, err := runtime.NumberOf(old)
	if err != nil {
		return nil, err
	}
	next := n + 1
	if expr.Operator == "--" {
		next = n - 1
	}
	if _, err := i.store(ctx, expr, w, runtime.Number(next), k, false); err != nil {
		return nil, err
	}
	if expr.Prefix {
		return runtime.Wrap(runtime.Number(next), k), nil
	}
	return runtime.Wrap(runtime.Number(n), k), nil
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, ctx *Context) (runtime.Value, error) {
	obj, kObj, err := i.evaluateValue(expr.Object, ctx)
	if err != nil {
		return nil, err
	}
	key, kKey, err := i.evaluateValue(expr.Index, ctx)
	if err != nil {
		return nil, err
	}
	return i.propertyReference(expr, expr.Object, obj, key, lattice.Join(kObj, kKey), ctx)
}

func (i *Interpreter) evaluatePropertyReference(node ast.Expression, objExpr ast.Expression, key runtime.Value, k lattice.Label, ctx *Context) (runtime.Value, error) {
	obj, kObj, err := i.evaluateValue(objExpr, ctx)
	if err != nil {
		return nil, err
	}
	return i.propertyReference(node, objExpr, obj, key, lattice.Join(kObj, k), ctx)
}

// propertyReference builds the reference obj[key]. The reference carries
// the labels of the object and the key: which cell is named depends on
// both.
func (i *Interpreter) propertyReference(node, objExpr ast.Expression, obj, key runtime.Value, k lattice.Label, ctx *Context) (runtime.Value, error) {
	base, err := i.toObject(obj, ctx.PC, objExpr)
	if err != nil {
		return nil, err
	}
	name, err := runtime.StringOf(key)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(&runtime.Reference{Base: base, Name: name, Node: node}, k), nil
}

func (i *Interpreter) evaluateLabelExpression(expr *ast.LabelExpression, ctx *Context) (runtime.Value, error) {
	label, ok := i.lattice.Lookup(expr.Label)
	if !ok {
		return nil, runtime.NewSyntaxError("unknown security label %q", expr.Label)
	}
	raw, k, err := i.evaluateValue(expr.Expression, ctx)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(runtime.Wrap(raw, k), label), nil
}

func (i *Interpreter) evaluateArguments(exprs []ast.Expression, ctx *Context) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		raw, k, err := i.evaluateValue(expr, ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, runtime.Wrap(raw, k))
	}
	return args, nil
}

// evaluateCallExpression invokes the callee with `this` bound to the base
// of a property reference. Activation bases are not exposed as `this`. A
// labeled callee raises the pc for the duration of the call.
func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, ctx *Context) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, ctx)
	if err != nil {
		return nil, err
	}
	fnRaw, kf, err := i.resolve(callee)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArguments(call.Arguments, ctx)
	if err != nil {
		return nil, err
	}
	fn, ok := fnRaw.(runtime.Callable)
	if !ok {
		return nil, runtime.NewTypeError("%s is not a function", describeExpression(call.Callee, fnRaw))
	}

	var this runtime.Value = runtime.Undefined
	if raw, _ := runtime.Unlabel(callee); isReference(raw) {
		ref := raw.(*runtime.Reference)
		if ref.Resolved() && ref.Base.AsObject().Class != runtime.ClassActivation {
			this = ref.Base
		}
	}

	saved := i.raise(ctx, call, kf)
	defer func() { ctx.PC = saved }()
	result, err := fn.Call(this, args)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(result, kf), nil
}

func (i *Interpreter) evaluateNewExpression(expr *ast.NewExpression, ctx *Context) (runtime.Value, error) {
	ctorRaw, kf, err := i.evaluateValue(expr.Callee, ctx)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArguments(expr.Arguments, ctx)
	if err != nil {
		return nil, err
	}
	ctor, ok := ctorRaw.(runtime.Constructible)
	if !ok || !runtime.IsConstructor(ctorRaw) {
		return nil, runtime.NewTypeError("%s is not a constructor", describeExpression(expr.Callee, ctorRaw))
	}
	saved := i.raise(ctx, expr, kf)
	defer func() { ctx.PC = saved }()
	result, err := ctor.Construct(args)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(result, kf), nil
}

// toObject converts v for property access. Primitives are boxed in a
// wrapper allocated at pc.
func (i *Interpreter) toObject(v runtime.Value, pc lattice.Label, node ast.Expression) (runtime.ObjectValue, error) {
	switch x := v.(type) {
	case runtime.ObjectValue:
		return x, nil
	case runtime.BoolValue:
		return i.newWrapper(runtime.ClassBoolean, i.booleanProto, x, pc), nil
	case runtime.NumberValue:
		return i.newWrapper(runtime.ClassNumber, i.numberProto, x, pc), nil
	case runtime.StringValue:
		return i.newWrapper(runtime.ClassString, i.stringProto, x, pc), nil
	default:
		return nil, runtime.NewTypeError("%s has no properties", describeExpression(node, v))
	}
}

func (i *Interpreter) newWrapper(class string, proto *runtime.Object, prim runtime.Value, pc lattice.Label) *runtime.Object {
	obj := runtime.NewObject(class, proto, pc)
	obj.Primitive = prim
	return obj
}

func isReference(v runtime.Value) bool {
	raw, _ := runtime.Unlabel(v)
	_, ok := raw.(*runtime.Reference)
	return ok
}

// describeExpression names the operand of a failed operation in messages.
func describeExpression(node ast.Expression, v runtime.Value) string {
	switch n := node.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpression:
		return describeExpression(n.Object, nil) + "." + n.Property.Name
	}
	if v == nil {
		return "expression"
	}
	return Inspect(v)
}
