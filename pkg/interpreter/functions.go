package interpreter

import (
	"strconv"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// newFunction allocates a closure over scope with a fresh prototype object.
func (i *Interpreter) newFunction(node *ast.FunctionLiteral, scope *runtime.Frame, pc lattice.Label) *runtime.Function {
	fn := runtime.NewFunction(i, node, scope, i.functionProto, pc)
	proto := runtime.NewObject(runtime.ClassObject, i.objectProto, pc)
	proto.SetHidden("constructor", fn)
	fn.DefineProperty("prototype", runtime.Property{Value: proto, Hidden: true, Permanent: true})
	return fn
}

// newStore allocates an empty binding store classified partition.
func (i *Interpreter) newStore(partition lattice.Label) *runtime.Object {
	return runtime.NewObject(runtime.ClassActivation, nil, partition)
}

// newFrame opens an empty frame under parent, as catch clauses and named
// function expressions do.
func (i *Interpreter) newFrame(parent *runtime.Frame) *runtime.Frame {
	return runtime.NewFrame(i.newStore(i.lattice.Bottom()), i.newStore(i.lattice.Top()), parent)
}

// CallFunction runs a closure. The activation is partitioned by the
// caller's pc. It implements runtime.Engine.
func (i *Interpreter) CallFunction(fn *runtime.Function, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if i.depth >= i.opts.MaxDepth {
		return nil, &StackOverflow{Depth: i.depth}
	}
	i.depth++
	defer func() { i.depth-- }()

	caller := i.currentContext()
	if raw, _ := runtime.Unlabel(this); raw == nil || isNullish(raw) {
		this = i.global
	}
	ctx := &Context{
		Kind:   FunctionCode,
		PC:     caller.PC,
		This:   this,
		Caller: caller,
		Callee: fn,
		Result: runtime.Undefined,
	}
	ctx.Scope = i.activate(fn, args, caller.PC)

	c, err := i.runCode(ctx, fn.Node.Body, fn.Node.Vars, fn.Node.Functions)
	if err != nil {
		return nil, err
	}
	switch c.Kind {
	case Throw:
		return nil, i.exception(c)
	case Return:
		return c.Value, nil
	}
	return runtime.Undefined, nil
}

// ConstructFunction runs a closure as a constructor. The new object is the
// result unless the function returns an object of its own.
func (i *Interpreter) ConstructFunction(fn *runtime.Function, args []runtime.Value) (runtime.Value, error) {
	proto := i.objectProto
	protoVal, err := runtime.GetProperty(fn, "prototype")
	if err != nil {
		return nil, err
	}
	if p, _ := runtime.Unlabel(protoVal); p != nil {
		if obj, ok := p.(runtime.ObjectValue); ok {
			proto = obj.AsObject()
		}
	}
	obj := runtime.NewObject(runtime.ClassObject, proto, i.currentContext().PC)
	result, err := i.CallFunction(fn, obj, args)
	if err != nil {
		return nil, err
	}
	raw, k := runtime.Unlabel(result)
	if _, ok := raw.(runtime.ObjectValue); ok {
		return result, nil
	}
	return runtime.Wrap(obj, k), nil
}

// activate builds the frame for one call: the activation object binds
// `arguments` and the formals, and is installed as the store matching pc.
func (i *Interpreter) activate(fn *runtime.Function, args []runtime.Value, pc lattice.Label) *runtime.Frame {
	bottom := i.lattice.Bottom()
	act := runtime.NewObject(runtime.ClassActivation, nil, lattice.Join(bottom, pc))
	var frame *runtime.Frame
	if i.lattice.IsBottom(pc) {
		frame = runtime.NewFrame(act, i.newStore(i.lattice.Top()), fn.Scope)
	} else {
		frame = runtime.NewFrame(i.newStore(bottom), act, fn.Scope)
	}

	act.DefineProperty("arguments", runtime.Property{Value: i.newArguments(fn, args, pc), Permanent: true})
	frame.Bind("arguments", act)
	for idx, param := range fn.Node.Params {
		var v runtime.Value = runtime.Undefined
		if idx < len(args) {
			v = args[idx]
		}
		act.DefineProperty(param.Name, runtime.Property{Value: v, Permanent: true})
		frame.Bind(param.Name, act)
	}
	return frame
}

func (i *Interpreter) newArguments(fn *runtime.Function, args []runtime.Value, pc lattice.Label) *runtime.Object {
	obj := runtime.NewObject(runtime.ClassArguments, i.objectProto, pc)
	for idx, arg := range args {
		obj.Set(strconv.Itoa(idx), arg)
	}
	obj.DefineProperty("length", runtime.Property{Value: runtime.Number(float64(len(args))), Hidden: true})
	obj.DefineProperty("callee", runtime.Property{Value: fn, Hidden: true})
	return obj
}

// guardWrite rejects host mutation of obj under a pc above the partition
// obj was allocated in.
func (i *Interpreter) guardWrite(obj runtime.ObjectValue, name string) error {
	pc := i.currentContext().PC
	partition := obj.AsObject().Partition
	if lattice.Less(partition, pc) {
		return i.violation(nil, name, pc, partition)
	}
	return nil
}

func isNullish(v runtime.Value) bool {
	switch v.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return true
	}
	return false
}
