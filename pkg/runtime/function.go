package runtime

import (
	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
)

// Callable is implemented by values that can be invoked.
type Callable interface {
	ObjectValue
	Call(this Value, args []Value) (Value, error)
}

// Constructible is implemented by values usable with `new`.
type Constructible interface {
	ObjectValue
	Construct(args []Value) (Value, error)
}

// InstanceChecker answers `v instanceof receiver`.
type InstanceChecker interface {
	HasInstance(v Value) (bool, error)
}

// PropertyAccess is the host-facing view of an object's properties.
type PropertyAccess interface {
	Get(name string) (Value, error)
	Put(name string, v Value) error
	Has(name string) bool
	Delete(name string) bool
	OwnKeys() []string
}

// Get reads a property with the object as receiver.
func (o *Object) Get(name string) (Value, error) { return GetProperty(o, name) }

// Put assigns a property with the object as receiver.
func (o *Object) Put(name string, v Value) error { return PutProperty(o, name, v) }

// Has reports whether name is present on the object or its prototypes.
func (o *Object) Has(name string) bool { return o.HasProperty(name) }

// OwnKeys returns the own property names in insertion order.
func (o *Object) OwnKeys() []string { return o.Keys() }

// Engine runs closures. It is implemented by the interpreter.
type Engine interface {
	CallFunction(fn *Function, this Value, args []Value) (Value, error)
	ConstructFunction(fn *Function, args []Value) (Value, error)
}

// Function is a closure: a function literal and the frame it was created in.
type Function struct {
	Object

	Node  *ast.FunctionLiteral
	Scope *Frame

	engine Engine
}

// NewFunction allocates a closure over scope. The caller installs the
// `prototype` object.
func NewFunction(engine Engine, node *ast.FunctionLiteral, scope *Frame, proto *Object, partition lattice.Label) *Function {
	fn := &Function{Node: node, Scope: scope, engine: engine}
	fn.init(ClassFunction, proto, partition)
	fn.DefineProperty("length", Property{Value: Number(float64(len(node.Params))), Hidden: true, ReadOnly: true, Permanent: true})
	return fn
}

func (f *Function) Kind() Kind { return KindFunction }

// Name returns the function's own name or "".
func (f *Function) Name() string { return f.Node.Name() }

func (f *Function) Call(this Value, args []Value) (Value, error) {
	return f.engine.CallFunction(f, this, args)
}

func (f *Function) Construct(args []Value) (Value, error) {
	return f.engine.ConstructFunction(f, args)
}

func (f *Function) HasInstance(v Value) (bool, error) {
	return OrdinaryHasInstance(f, v)
}

// NativeFunc implements a host function. Arguments and the receiver may
// carry labels; natives that compute over raw values strip them and label
// the result.
type NativeFunc func(this Value, args []Value) (Value, error)

// NativeConstructor implements `new` for a host function.
type NativeConstructor func(args []Value) (Value, error)

// NativeFunction is a host function reflected into the language.
type NativeFunction struct {
	Object

	Name  string
	Arity int
	Fn    NativeFunc
	Ctor  NativeConstructor
}

// NewNativeFunction allocates a host function object.
func NewNativeFunction(name string, arity int, fn NativeFunc, proto *Object) *NativeFunction {
	nf := &NativeFunction{Name: name, Arity: arity, Fn: fn}
	nf.init(ClassFunction, proto, lattice.None)
	nf.DefineProperty("length", Property{Value: Number(float64(arity)), Hidden: true, ReadOnly: true, Permanent: true})
	return nf
}

func (n *NativeFunction) Kind() Kind { return KindNativeFunction }

func (n *NativeFunction) Call(this Value, args []Value) (Value, error) {
	if n.Fn == nil {
		return nil, NewTypeError("%s is not a function", n.Name)
	}
	return n.Fn(this, args)
}

func (n *NativeFunction) Construct(args []Value) (Value, error) {
	if n.Ctor == nil {
		return nil, NewTypeError("%s is not a constructor", n.Name)
	}
	return n.Ctor(args)
}

func (n *NativeFunction) HasInstance(v Value) (bool, error) {
	return OrdinaryHasInstance(n, v)
}

// IsCallable reports whether v can be invoked.
func IsCallable(v Value) bool {
	_, ok := v.(Callable)
	return ok
}

// IsConstructor reports whether v can be used with `new`.
func IsConstructor(v Value) bool {
	switch fn := v.(type) {
	case *Function:
		return true
	case *NativeFunction:
		return fn.Ctor != nil
	case Constructible:
		return true
	}
	return false
}

// OrdinaryHasInstance walks the prototype chain of v looking for
// fn.prototype.
func OrdinaryHasInstance(fn ObjectValue, v Value) (bool, error) {
	raw, _ := Unlabel(v)
	obj, ok := raw.(ObjectValue)
	if !ok {
		return false, nil
	}
	protoVal, err := GetProperty(fn, "prototype")
	if err != nil {
		return false, err
	}
	protoVal, _ = Unlabel(protoVal)
	proto, ok := protoVal.(ObjectValue)
	if !ok {
		return false, NewTypeError("'prototype' property is not an object")
	}
	target := proto.AsObject()
	for cur := obj.AsObject().Proto; cur != nil; cur = cur.Proto {
		if cur == target {
			return true, nil
		}
	}
	return false, nil
}
