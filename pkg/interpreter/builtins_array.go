package interpreter

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installArray() {
	proto := i.arrayProto
	create := func(args []runtime.Value) (runtime.Value, error) {
		if len(args) == 1 {
			raw, k := runtime.Unlabel(args[0])
			if n, ok := raw.(runtime.NumberValue); ok {
				length := runtime.ToUint32(n)
				if float64(length) != n.Val {
					return nil, runtime.NewRangeError("invalid array length")
				}
				arr := i.newArrayOf(nil)
				if err := arr.Put("length", n); err != nil {
					return nil, err
				}
				return runtime.Wrap(arr, k), nil
			}
		}
		return i.newArrayOf(args), nil
	}
	ctor := i.constructor("Array", 1, proto, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return create(args)
	}, create)
	i.method(ctor.AsObject(), "isArray", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := arg(args, 0).(runtime.ObjectValue)
		return runtime.Bool(ok && obj.AsObject().Class == runtime.ClassArray), nil
	}))

	i.method(proto, "push", 1, i.arrayPush)
	i.method(proto, "pop", 0, i.arrayPop)
	i.method(proto, "shift", 0, i.arrayShift)
	i.method(proto, "unshift", 1, i.arrayUnshift)
	i.method(proto, "splice", 2, i.arraySplice)
	i.method(proto, "reverse", 0, i.arrayReverse)
	i.method(proto, "sort", 1, i.arraySort)
	i.method(proto, "slice", 2, i.arraySlice)
	i.method(proto, "concat", 1, i.arrayConcat)
	i.method(proto, "join", 1, i.arrayJoin)
	i.method(proto, "toString", 0, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return i.arrayJoin(this, nil)
	})
	i.method(proto, "indexOf", 1, i.arrayIndexOf)
	i.method(proto, "forEach", 1, i.arrayForEach)
	i.method(proto, "map", 1, i.arrayMap)
	i.method(proto, "filter", 1, i.arrayFilter)
	i.method(proto, "some", 1, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return i.arrayTest("some", this, args, true)
	})
	i.method(proto, "every", 1, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return i.arrayTest("every", this, args, false)
	})
	i.method(proto, "reduce", 1, i.arrayReduce)
}

func index(n int) string { return strconv.Itoa(n) }

// mutableArray resolves the receiver of a mutating native and checks that
// the current pc may write to it.
func (i *Interpreter) mutableArray(this runtime.Value, name string) (runtime.ObjectValue, lattice.Label, int, error) {
	obj, k, err := thisObject(this, name)
	if err != nil {
		return nil, k, 0, err
	}
	if err := i.guardWrite(obj, name); err != nil {
		return nil, k, 0, err
	}
	n, err := runtime.Length(obj)
	if err != nil {
		return nil, k, 0, err
	}
	return obj, k, n, nil
}

func moveElement(obj runtime.ObjectValue, from, to int) error {
	o := obj.AsObject()
	if p, ok := o.OwnProperty(index(from)); ok && !p.IsAccessor() {
		return runtime.PutProperty(obj, index(to), p.Value)
	}
	o.Delete(index(to))
	return nil
}

// writeBack replaces the indexed elements of obj with elems.
func writeBack(obj runtime.ObjectValue, elems []runtime.Value, oldLength int) error {
	for idx, v := range elems {
		if err := runtime.PutProperty(obj, index(idx), v); err != nil {
			return err
		}
	}
	for idx := len(elems); idx < oldLength; idx++ {
		obj.AsObject().Delete(index(idx))
	}
	return runtime.PutProperty(obj, "length", runtime.Number(float64(len(elems))))
}

func (i *Interpreter) arrayPush(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "push")
	if err != nil {
		return nil, err
	}
	for idx, a := range args {
		if err := runtime.PutProperty(obj, index(n+idx), a); err != nil {
			return nil, err
		}
	}
	length := runtime.Number(float64(n + len(args)))
	if err := runtime.PutProperty(obj, "length", length); err != nil {
		return nil, err
	}
	return runtime.Wrap(length, k), nil
}

func (i *Interpreter) arrayPop(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "pop")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return runtime.Wrap(runtime.Undefined, k), runtime.PutProperty(obj, "length", runtime.Number(0))
	}
	last, err := runtime.GetProperty(obj, index(n-1))
	if err != nil {
		return nil, err
	}
	obj.AsObject().Delete(index(n - 1))
	if err := runtime.PutProperty(obj, "length", runtime.Number(float64(n-1))); err != nil {
		return nil, err
	}
	return runtime.Wrap(last, k), nil
}

func (i *Interpreter) arrayShift(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "shift")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return runtime.Wrap(runtime.Undefined, k), runtime.PutProperty(obj, "length", runtime.Number(0))
	}
	first, err := runtime.GetProperty(obj, "0")
	if err != nil {
		return nil, err
	}
	for idx := 1; idx < n; idx++ {
		if err := moveElement(obj, idx, idx-1); err != nil {
			return nil, err
		}
	}
	obj.AsObject().Delete(index(n - 1))
	if err := runtime.PutProperty(obj, "length", runtime.Number(float64(n-1))); err != nil {
		return nil, err
	}
	return runtime.Wrap(first, k), nil
}

func (i *Interpreter) arrayUnshift(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "unshift")
	if err != nil {
		return nil, err
	}
	for idx := n - 1; idx >= 0; idx-- {
		if err := moveElement(obj, idx, idx+len(args)); err != nil {
			return nil, err
		}
	}
	for idx, a := range args {
		if err := runtime.PutProperty(obj, index(idx), a); err != nil {
			return nil, err
		}
	}
	length := runtime.Number(float64(n + len(args)))
	if err := runtime.PutProperty(obj, "length", length); err != nil {
		return nil, err
	}
	return runtime.Wrap(length, k), nil
}

// relativeIndex clamps a possibly negative position argument into [0, n].
func relativeIndex(v runtime.Value, n int, fallback int) (int, error) {
	raw, _ := runtime.Unlabel(v)
	if _, ok := raw.(runtime.UndefinedValue); ok {
		return fallback, nil
	}
	f, err := runtime.NumberOf(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	f = math.Trunc(f)
	if f < 0 {
		return int(math.Max(float64(n)+f, 0)), nil
	}
	return int(math.Min(f, float64(n))), nil
}

func (i *Interpreter) arraySplice(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "splice")
	if err != nil {
		return nil, err
	}
	start, err := relativeIndex(arg(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	count := n - start
	if len(args) > 1 {
		raw, _ := runtime.Unlabel(args[1])
		f, err := runtime.NumberOf(raw)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) {
			f = 0
		}
		count = int(math.Min(math.Max(math.Trunc(f), 0), float64(n-start)))
	}
	elems, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	var items []runtime.Value
	if len(args) > 2 {
		items = args[2:]
	}
	removed := append([]runtime.Value(nil), elems[start:start+count]...)
	next := make([]runtime.Value, 0, n-count+len(items))
	next = append(next, elems[:start]...)
	next = append(next, items...)
	next = append(next, elems[start+count:]...)
	if err := writeBack(obj, next, n); err != nil {
		return nil, err
	}
	return runtime.Wrap(i.newArrayOf(removed), lattice.Join(k, joinLabels(arg(args, 0), arg(args, 1)))), nil
}

func (i *Interpreter) arrayReverse(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "reverse")
	if err != nil {
		return nil, err
	}
	elems, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	for l, r := 0, len(elems)-1; l < r; l, r = l+1, r-1 {
		elems[l], elems[r] = elems[r], elems[l]
	}
	if err := writeBack(obj, elems, n); err != nil {
		return nil, err
	}
	return runtime.Wrap(obj, k), nil
}

// arraySort sorts in place. Every position depends on every element, so
// each element is relabeled with the join of all element labels.
func (i *Interpreter) arraySort(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, n, err := i.mutableArray(this, "sort")
	if err != nil {
		return nil, err
	}
	elems, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	all := joinLabels(elems...)

	var (
		cmp   runtime.Callable
		kCmp  lattice.Label
		cbErr error
	)
	if raw, _ := runtime.Unlabel(arg(args, 0)); !isNullish(raw) {
		cmp, kCmp, err = callback(args, 0, "sort")
		if err != nil {
			return nil, err
		}
	}
	less := func(a, b runtime.Value) bool {
		ra, _ := runtime.Unlabel(a)
		rb, _ := runtime.Unlabel(b)
		if _, ok := ra.(runtime.UndefinedValue); ok {
			return false
		}
		if _, ok := rb.(runtime.UndefinedValue); ok {
			return true
		}
		if cmp != nil {
			result, err := i.invokeAt(kCmp, cmp, runtime.Undefined, []runtime.Value{a, b})
			if err != nil {
				if cbErr == nil {
					cbErr = err
				}
				return false
			}
			raw, kr := runtime.Unlabel(result)
			all = lattice.Join(all, kr)
			f, err := runtime.NumberOf(raw)
			if err != nil && cbErr == nil {
				cbErr = err
			}
			return f < 0
		}
		sa, err := runtime.StringOf(ra)
		if err != nil && cbErr == nil {
			cbErr = err
		}
		sb, err := runtime.StringOf(rb)
		if err != nil && cbErr == nil {
			cbErr = err
		}
		return sa < sb
	}
	sort.SliceStable(elems, func(x, y int) bool { return less(elems[x], elems[y]) })
	if cbErr != nil {
		return nil, cbErr
	}
	for idx, v := range elems {
		elems[idx] = runtime.Wrap(v, all)
	}
	if err := writeBack(obj, elems, n); err != nil {
		return nil, err
	}
	return runtime.Wrap(obj, k), nil
}

func (i *Interpreter) arraySlice(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, err := thisObject(this, "slice")
	if err != nil {
		return nil, err
	}
	elems, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	n := len(elems)
	start, err := relativeIndex(arg(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(arg(args, 1), n, n)
	if err != nil {
		return nil, err
	}
	var out []runtime.Value
	if start < end {
		out = append(out, elems[start:end]...)
	}
	return runtime.Wrap(i.newArrayOf(out), lattice.Join(k, joinLabels(args...))), nil
}

func (i *Interpreter) arrayConcat(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, err := thisObject(this, "concat")
	if err != nil {
		return nil, err
	}
	out, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	for _, a := range args {
		raw, ka := runtime.Unlabel(a)
		if other, ok := raw.(runtime.ObjectValue); ok && other.AsObject().Class == runtime.ClassArray {
			elems, err := runtime.Elements(other)
			if err != nil {
				return nil, err
			}
			for _, e := range elems {
				out = append(out, runtime.Wrap(e, ka))
			}
			continue
		}
		out = append(out, a)
	}
	return runtime.Wrap(i.newArrayOf(out), k), nil
}

func (i *Interpreter) arrayJoin(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, err := thisObject(this, "join")
	if err != nil {
		return nil, err
	}
	sep := ","
	if raw, ks := runtime.Unlabel(arg(args, 0)); raw != runtime.Undefined {
		s, err := runtime.StringOf(raw)
		if err != nil {
			return nil, err
		}
		sep = s
		k = lattice.Join(k, ks)
	}
	elems, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(elems))
	for idx, e := range elems {
		raw, ke := runtime.Unlabel(e)
		k = lattice.Join(k, ke)
		if isNullish(raw) {
			continue
		}
		s, err := runtime.StringOf(raw)
		if err != nil {
			return nil, err
		}
		parts[idx] = s
	}
	return runtime.Wrap(runtime.String(strings.Join(parts, sep)), k), nil
}

func (i *Interpreter) arrayIndexOf(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, err := thisObject(this, "indexOf")
	if err != nil {
		return nil, err
	}
	elems, err := runtime.Elements(obj)
	if err != nil {
		return nil, err
	}
	target, kt := runtime.Unlabel(arg(args, 0))
	k = lattice.Join(k, kt)
	from, err := relativeIndex(arg(args, 1), len(elems), 0)
	if err != nil {
		return nil, err
	}
	k = lattice.Join(k, joinLabels(arg(args, 1)))
	for idx := from; idx < len(elems); idx++ {
		raw, ke := runtime.Unlabel(elems[idx])
		k = lattice.Join(k, ke)
		if runtime.StrictEquals(raw, target) {
			return runtime.Wrap(runtime.Number(float64(idx)), k), nil
		}
	}
	return runtime.Wrap(runtime.Number(-1), k), nil
}

// iterate calls fn for every present element. The callback runs at a pc
// raised by the labels of the receiver and the callback itself.
func (i *Interpreter) iterate(name string, this runtime.Value, args []runtime.Value, visit func(idx int, elem, result runtime.Value) bool) (lattice.Label, error) {
	obj, k, err := thisObject(this, name)
	if err != nil {
		return k, err
	}
	fn, kf, err := callback(args, 0, name)
	if err != nil {
		return k, err
	}
	kIter := lattice.Join(k, kf)
	n, err := runtime.Length(obj)
	if err != nil {
		return kIter, err
	}
	thisArg := arg(args, 1)
	for idx := 0; idx < n; idx++ {
		if !obj.AsObject().HasProperty(index(idx)) {
			continue
		}
		elem, err := runtime.GetProperty(obj, index(idx))
		if err != nil {
			return kIter, err
		}
		result, err := i.invokeAt(kIter, fn, thisArg, []runtime.Value{elem, runtime.Number(float64(idx)), obj})
		if err != nil {
			return kIter, err
		}
		if !visit(idx, elem, result) {
			break
		}
	}
	return kIter, nil
}

func (i *Interpreter) arrayForEach(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	_, err := i.iterate("forEach", this, args, func(int, runtime.Value, runtime.Value) bool { return true })
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func (i *Interpreter) arrayMap(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	var out []runtime.Value
	k, err := i.iterate("map", this, args, func(idx int, _, result runtime.Value) bool {
		for len(out) < idx {
			out = append(out, nil)
		}
		out = append(out, result)
		return true
	})
	if err != nil {
		return nil, err
	}
	if obj, _, err := thisObject(this, "map"); err == nil {
		if n, _ := runtime.Length(obj); len(out) < n {
			out = append(out, make([]runtime.Value, n-len(out))...)
		}
	}
	return runtime.Wrap(i.newArrayOf(out), k), nil
}

// arrayFilter labels the result with the labels of every predicate result:
// which elements are kept depends on all of them.
func (i *Interpreter) arrayFilter(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	var (
		out      []runtime.Value
		selected = lattice.None
	)
	k, err := i.iterate("filter", this, args, func(_ int, elem, result runtime.Value) bool {
		raw, kr := runtime.Unlabel(result)
		selected = lattice.Join(selected, kr)
		if runtime.ToBoolean(raw) {
			out = append(out, elem)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(i.newArrayOf(out), lattice.Join(k, selected)), nil
}

func (i *Interpreter) arrayTest(name string, this runtime.Value, args []runtime.Value, want bool) (runtime.Value, error) {
	found := false
	seen := lattice.None
	k, err := i.iterate(name, this, args, func(_ int, _, result runtime.Value) bool {
		raw, kr := runtime.Unlabel(result)
		seen = lattice.Join(seen, kr)
		if runtime.ToBoolean(raw) == want {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(runtime.Bool(found == want), lattice.Join(k, seen)), nil
}

func (i *Interpreter) arrayReduce(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, k, err := thisObject(this, "reduce")
	if err != nil {
		return nil, err
	}
	fn, kf, err := callback(args, 0, "reduce")
	if err != nil {
		return nil, err
	}
	kIter := lattice.Join(k, kf)
	n, err := runtime.Length(obj)
	if err != nil {
		return nil, err
	}
	idx := 0
	var acc runtime.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		for idx < n && !obj.AsObject().HasProperty(index(idx)) {
			idx++
		}
		if idx >= n {
			return nil, runtime.NewTypeError("reduce of empty array with no initial value")
		}
		if acc, err = runtime.GetProperty(obj, index(idx)); err != nil {
			return nil, err
		}
		idx++
	}
	for ; idx < n; idx++ {
		if !obj.AsObject().HasProperty(index(idx)) {
			continue
		}
		elem, err := runtime.GetProperty(obj, index(idx))
		if err != nil {
			return nil, err
		}
		acc, err = i.invokeAt(kIter, fn, runtime.Undefined, []runtime.Value{acc, elem, runtime.Number(float64(idx)), obj})
		if err != nil {
			return nil, err
		}
	}
	return runtime.Wrap(acc, kIter), nil
}
