package interpreter

import (
	"fmt"
	"io"
	"math"
	"strings"

	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// errorNames lists the error constructors installed on the global object.
var errorNames = []string{"TypeError", "ReferenceError", "SyntaxError", "RangeError", "InternalError"}

// installGlobals creates the global object, its frame and every builtin.
func (i *Interpreter) installGlobals() {
	bottom := i.lattice.Bottom()
	i.objectProto = runtime.NewObject(runtime.ClassObject, nil, lattice.None)
	i.functionProto = runtime.NewObject(runtime.ClassFunction, i.objectProto, lattice.None)
	i.arrayProto = runtime.NewObject(runtime.ClassObject, i.objectProto, lattice.None)
	i.stringProto = runtime.NewObject(runtime.ClassObject, i.objectProto, lattice.None)
	i.numberProto = runtime.NewObject(runtime.ClassObject, i.objectProto, lattice.None)
	i.booleanProto = runtime.NewObject(runtime.ClassObject, i.objectProto, lattice.None)
	i.regexpProto = runtime.NewObject(runtime.ClassObject, i.objectProto, lattice.None)

	i.global = runtime.NewObject(runtime.ClassGlobal, i.objectProto, bottom)
	i.globalHi = i.newStore(i.lattice.Top())
	i.globalFrame = runtime.NewObjectFrame(i.global, i.globalHi, nil)
	i.globalCtx = &Context{
		Kind:   GlobalCode,
		PC:     bottom,
		Scope:  i.globalFrame,
		This:   i.global,
		Result: runtime.Undefined,
	}

	constant := func(name string, v runtime.Value) {
		i.global.DefineProperty(name, runtime.Property{Value: v, Hidden: true, ReadOnly: true, Permanent: true})
	}
	constant("NaN", runtime.Number(math.NaN()))
	constant("Infinity", runtime.Number(math.Inf(1)))
	constant("undefined", runtime.Undefined)

	i.installObject()
	i.installFunction()
	i.installErrors()
	i.installArray()
	i.installString()
	i.installNumber()
	i.installBoolean()
	i.installMath()
	i.installRegExp()

	i.global.SetHidden("eval", runtime.NewNativeFunction("eval", 1, i.evalNative, i.functionProto))
	i.global.SetHidden("isNaN", Adapt("isNaN", math.IsNaN, i.functionProto))
	i.global.SetHidden("isFinite", Adapt("isFinite", func(f float64) bool {
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}, i.functionProto))
	i.global.SetHidden("parseInt", Adapt("parseInt", parseInt, i.functionProto))
	i.global.SetHidden("parseFloat", Adapt("parseFloat", parseFloat, i.functionProto))
	i.global.SetHidden("print", runtime.NewNativeFunction("print", 1, i.print, i.functionProto))
}

// method installs a non-enumerable native on obj.
func (i *Interpreter) method(obj *runtime.Object, name string, arity int, fn runtime.NativeFunc) *runtime.NativeFunction {
	nf := runtime.NewNativeFunction(name, arity, fn, i.functionProto)
	obj.SetHidden(name, nf)
	return nf
}

// constructor installs a global constructor linked with its prototype.
func (i *Interpreter) constructor(name string, arity int, proto *runtime.Object, call runtime.NativeFunc, ctor runtime.NativeConstructor) *runtime.NativeFunction {
	nf := runtime.NewNativeFunction(name, arity, call, i.functionProto)
	nf.Ctor = ctor
	nf.DefineProperty("prototype", runtime.Property{Value: proto, Hidden: true, ReadOnly: true, Permanent: true})
	proto.SetHidden("constructor", nf)
	i.global.SetHidden(name, nf)
	return nf
}

func arg(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) {
		return args[idx]
	}
	return runtime.Undefined
}

func joinLabels(values ...runtime.Value) lattice.Label {
	k := lattice.None
	for _, v := range values {
		_, kv := runtime.Unlabel(v)
		k = lattice.Join(k, kv)
	}
	return k
}

// thisObject unlabels the receiver of a native and requires an object.
func thisObject(this runtime.Value, name string) (runtime.ObjectValue, lattice.Label, error) {
	raw, k := runtime.Unlabel(this)
	obj, ok := raw.(runtime.ObjectValue)
	if !ok {
		return nil, k, runtime.NewTypeError("%s called on %s", name, runtime.TypeOf(raw))
	}
	return obj, k, nil
}

// callback returns the callable at args[idx] and its label.
func callback(args []runtime.Value, idx int, name string) (runtime.Callable, lattice.Label, error) {
	raw, k := runtime.Unlabel(arg(args, idx))
	fn, ok := raw.(runtime.Callable)
	if !ok {
		return nil, k, runtime.NewTypeError("%s: %s is not a function", name, Inspect(raw))
	}
	return fn, k, nil
}

// invokeAt calls fn from host code with the pc raised by k. The result
// carries k.
func (i *Interpreter) invokeAt(k lattice.Label, fn runtime.Callable, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	ctx := i.currentContext()
	saved := ctx.PC
	ctx.PC = lattice.Join(saved, k)
	defer func() { ctx.PC = saved }()
	result, err := fn.Call(this, args)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(result, k), nil
}

func (i *Interpreter) newArrayOf(elems []runtime.Value) *runtime.Object {
	return runtime.NewArray(i.arrayProto, i.currentContext().PC, elems)
}

func (i *Interpreter) installObject() {
	proto := i.objectProto
	objectCtor := func(args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(arg(args, 0))
		if isNullish(raw) {
			return runtime.NewObject(runtime.ClassObject, i.objectProto, i.currentContext().PC), nil
		}
		obj, err := i.toObject(raw, i.currentContext().PC, nil)
		if err != nil {
			return nil, err
		}
		return runtime.Wrap(obj, k), nil
	}
	ctor := i.constructor("Object", 1, proto, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return objectCtor(args)
	}, objectCtor)

	i.method(ctor.AsObject(), "keys", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := arg(args, 0).(runtime.ObjectValue)
		if !ok {
			return nil, runtime.NewTypeError("Object.keys called on non-object")
		}
		var names []runtime.Value
		for _, name := range obj.AsObject().Keys() {
			if p, ok := obj.AsObject().OwnProperty(name); ok && !p.Hidden {
				names = append(names, runtime.String(name))
			}
		}
		return i.newArrayOf(names), nil
	}))
	i.method(ctor.AsObject(), "getPrototypeOf", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := arg(args, 0).(runtime.ObjectValue)
		if !ok {
			return nil, runtime.NewTypeError("Object.getPrototypeOf called on non-object")
		}
		if p := obj.AsObject().Proto; p != nil {
			return p, nil
		}
		return runtime.Null, nil
	}))

	i.method(proto, "toString", 0, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if obj, ok := this.(runtime.ObjectValue); ok {
			return runtime.String("[object " + obj.AsObject().Class + "]"), nil
		}
		return runtime.String("[object " + runtime.TypeOf(this) + "]"), nil
	}))
	i.method(proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return this, nil
	})
	i.method(proto, "hasOwnProperty", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := i.toObject(this, i.currentContext().PC, nil)
		if err != nil {
			return nil, err
		}
		name, err := runtime.StringOf(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(obj.AsObject().HasOwnProperty(name)), nil
	}))
	i.method(proto, "propertyIsEnumerable", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := i.toObject(this, i.currentContext().PC, nil)
		if err != nil {
			return nil, err
		}
		name, err := runtime.StringOf(arg(args, 0))
		if err != nil {
			return nil, err
		}
		p, ok := obj.AsObject().OwnProperty(name)
		return runtime.Bool(ok && !p.Hidden), nil
	}))
}

func (i *Interpreter) installFunction() {
	proto := i.functionProto
	i.constructor("Function", 1, proto, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return i.functionFromSource(args)
	}, i.functionFromSource)

	i.method(proto, "call", 1, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(this)
		fn, ok := raw.(runtime.Callable)
		if !ok {
			return nil, runtime.NewTypeError("Function.prototype.call called on %s", runtime.TypeOf(raw))
		}
		var rest []runtime.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return i.invokeAt(k, fn, arg(args, 0), rest)
	})
	i.method(proto, "apply", 2, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(this)
		fn, ok := raw.(runtime.Callable)
		if !ok {
			return nil, runtime.NewTypeError("Function.prototype.apply called on %s", runtime.TypeOf(raw))
		}
		list, err := i.argumentList(arg(args, 1))
		if err != nil {
			return nil, err
		}
		return i.invokeAt(lattice.Join(k, joinLabels(arg(args, 1))), fn, arg(args, 0), list)
	})
	i.method(proto, "toString", 0, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if !runtime.IsCallable(this) {
			return nil, runtime.NewTypeError("Function.prototype.toString called on %s", runtime.TypeOf(this))
		}
		return runtime.String(runtime.ToString(this)), nil
	}))
}

func (i *Interpreter) installErrors() {
	base := i.installErrorClass("Error", i.objectProto)
	for _, name := range errorNames {
		i.installErrorClass(name, base)
	}
}

func (i *Interpreter) installErrorClass(name string, parent *runtime.Object) *runtime.Object {
	proto := runtime.NewObject(runtime.ClassObject, parent, lattice.None)
	proto.SetHidden("name", runtime.String(name))
	proto.SetHidden("message", runtime.String(""))
	i.errorProtos[name] = proto
	create := func(args []runtime.Value) (runtime.Value, error) {
		pc := i.currentContext().PC
		obj := runtime.NewObject(runtime.ClassError, proto, pc)
		if msg := arg(args, 0); msg != runtime.Undefined {
			raw, k := runtime.Unlabel(msg)
			s, err := runtime.StringOf(raw)
			if err != nil {
				return nil, err
			}
			obj.SetHidden("message", runtime.Wrap(runtime.String(s), k))
		}
		return obj, nil
	}
	i.constructor(name, 1, proto, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return create(args)
	}, create)
	if name == "Error" {
		i.method(proto, "toString", 0, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			obj, ok := this.(runtime.ObjectValue)
			if !ok {
				return nil, runtime.NewTypeError("Error.prototype.toString called on %s", runtime.TypeOf(this))
			}
			return runtime.String(errorString(obj)), nil
		}))
	}
	return proto
}

// print writes its arguments separated by spaces. Labels are shown.
func (i *Interpreter) print(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = Inspect(a)
	}
	if _, err := io.WriteString(i.opts.Stdout, strings.Join(parts, " ")+"\n"); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return runtime.Undefined, nil
}
