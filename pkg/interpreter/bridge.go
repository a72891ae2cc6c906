package interpreter

import (
	"fmt"
	"reflect"

	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// lift adapts a native written over raw values. Arguments and receiver are
// unlabeled before fn runs and the result carries the join of their labels.
func lift(fn runtime.NativeFunc) runtime.NativeFunc {
	return func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		rawThis, k := runtime.Unlabel(this)
		raw := make([]runtime.Value, len(args))
		for idx, arg := range args {
			var ka lattice.Label
			raw[idx], ka = runtime.Unlabel(arg)
			k = lattice.Join(k, ka)
		}
		result, err := fn(rawThis, raw)
		if err != nil {
			return nil, err
		}
		return runtime.Wrap(result, k), nil
	}
}

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	valueType = reflect.TypeOf((*runtime.Value)(nil)).Elem()
)

// Adapt reflects a Go function into the language. Parameters and results
// may be bool, numeric kinds, string, runtime.Value or any; a trailing
// error result is raised as a TypeError unless it already is a language
// error. Variadic functions accept any number of trailing arguments and
// missing arguments take their zero value. The native is lifted.
func Adapt(name string, fn any, proto *runtime.Object) *runtime.NativeFunction {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("interpreter: Adapt %s: %T is not a function", name, fn))
	}
	typ := rv.Type()
	arity := typ.NumIn()
	if typ.IsVariadic() {
		arity--
	}
	native := func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return callAdapted(name, rv, args)
	}
	return runtime.NewNativeFunction(name, arity, lift(native), proto)
}

// AdaptMethod is Adapt for functions whose first parameter receives `this`.
func AdaptMethod(name string, fn any, proto *runtime.Object) *runtime.NativeFunction {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.Type().NumIn() == 0 {
		panic(fmt.Sprintf("interpreter: AdaptMethod %s: %T does not take a receiver", name, fn))
	}
	arity := rv.Type().NumIn() - 1
	if rv.Type().IsVariadic() {
		arity--
	}
	native := func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return callAdapted(name, rv, append([]runtime.Value{this}, args...))
	}
	return runtime.NewNativeFunction(name, arity, lift(native), proto)
}

func callAdapted(name string, fn reflect.Value, args []runtime.Value) (runtime.Value, error) {
	typ := fn.Type()
	fixed := typ.NumIn()
	if typ.IsVariadic() {
		fixed--
	}
	in := make([]reflect.Value, 0, len(args))
	for idx := 0; idx < fixed; idx++ {
		var arg runtime.Value = runtime.Undefined
		if idx < len(args) {
			arg = args[idx]
		}
		hv, err := toGo(arg, typ.In(idx))
		if err != nil {
			return nil, runtime.NewTypeError("%s: argument %d: %s", name, idx+1, err)
		}
		in = append(in, hv)
	}
	if typ.IsVariadic() {
		elemType := typ.In(fixed).Elem()
		for idx := fixed; idx < len(args); idx++ {
			hv, err := toGo(args[idx], elemType)
			if err != nil {
				return nil, runtime.NewTypeError("%s: argument %d: %s", name, idx+1, err)
			}
			in = append(in, hv)
		}
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && typ.Out(n-1) == errorType {
		if errVal := out[n-1]; !errVal.IsNil() {
			err := errVal.Interface().(error)
			if _, ok := err.(*runtime.Error); ok {
				return nil, err
			}
			return nil, runtime.NewTypeError("%s: %s", name, err)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return runtime.Undefined, nil
	}
	return fromGo(out[0])
}

// toGo converts a raw language value to a Go value of type target.
func toGo(v runtime.Value, target reflect.Type) (reflect.Value, error) {
	if target == valueType {
		return reflect.ValueOf(&v).Elem(), nil
	}
	switch target.Kind() {
	case reflect.Bool:
		return reflect.ValueOf(runtime.ToBoolean(v)).Convert(target), nil
	case reflect.Float32, reflect.Float64:
		n, err := runtime.NumberOf(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := runtime.NumberOf(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(int64(runtime.ToInt32(runtime.Number(n)))).Convert(target), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := runtime.NumberOf(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(uint64(runtime.ToUint32(runtime.Number(n)))).Convert(target), nil
	case reflect.String:
		s, err := runtime.StringOf(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(target), nil
	case reflect.Interface:
		if target.NumMethod() == 0 {
			hv := reflect.ValueOf(toGoAny(v))
			if !hv.IsValid() {
				return reflect.Zero(target), nil
			}
			return hv, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", runtime.TypeOf(v), target)
}

func toGoAny(v runtime.Value) any {
	switch x := v.(type) {
	case runtime.BoolValue:
		return x.Val
	case runtime.NumberValue:
		return x.Val
	case runtime.StringValue:
		return x.Val
	case runtime.UndefinedValue, runtime.NullValue:
		return nil
	default:
		return v
	}
}

// fromGo converts a Go result back into a language value.
func fromGo(hv reflect.Value) (runtime.Value, error) {
	if !hv.IsValid() {
		return runtime.Undefined, nil
	}
	if hv.Type() == valueType || hv.Type().Implements(valueType) {
		if hv.Kind() == reflect.Interface && hv.IsNil() {
			return runtime.Undefined, nil
		}
		return hv.Interface().(runtime.Value), nil
	}
	switch hv.Kind() {
	case reflect.Bool:
		return runtime.Bool(hv.Bool()), nil
	case reflect.Float32, reflect.Float64:
		return runtime.Number(hv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return runtime.Number(float64(hv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return runtime.Number(float64(hv.Uint())), nil
	case reflect.String:
		return runtime.String(hv.String()), nil
	case reflect.Interface:
		if hv.IsNil() {
			return runtime.Undefined, nil
		}
		return fromGo(hv.Elem())
	}
	return nil, runtime.NewTypeError("unsupported host result %s", hv.Type())
}
