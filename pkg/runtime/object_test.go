package runtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowjs/interpreter-go/pkg/lattice"
)

func TestObjectKeysAndPrototypeChain(t *testing.T) {
	proto := NewObject(ClassObject, nil, lattice.None)
	proto.Set("inherited", Number(1))
	proto.Set("shadowed", Number(2))
	proto.SetHidden("hidden", Number(3))

	obj := NewObject(ClassObject, proto, lattice.None)
	obj.Set("own", True)
	obj.Set("shadowed", False)

	if diff := cmp.Diff([]string{"own", "shadowed", "inherited"}, obj.EnumerableKeys()); diff != "" {
		t.Fatalf("enumerable keys mismatch (-want +got):\n%s", diff)
	}
	v, err := GetProperty(obj, "shadowed")
	if err != nil || v != False {
		t.Fatalf("expected own property to shadow prototype, got %#v (%v)", v, err)
	}
	if !obj.HasProperty("hidden") || obj.HasOwnProperty("hidden") {
		t.Fatalf("hidden property should be inherited, not own")
	}
	missing, _ := GetProperty(obj, "nope")
	if missing != Undefined {
		t.Fatalf("missing property should read as undefined, got %#v", missing)
	}
}

func TestDeleteKeepsPermanentProperties(t *testing.T) {
	obj := NewObject(ClassObject, nil, lattice.None)
	obj.Set("a", Number(1))
	obj.DefineProperty("b", Property{Value: Number(2), Permanent: true})
	if !obj.Delete("a") {
		t.Fatalf("expected delete to succeed")
	}
	if obj.Delete("b") {
		t.Fatalf("expected delete of permanent property to fail")
	}
	if diff := cmp.Diff([]string{"b"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if !obj.Delete("never-there") {
		t.Fatalf("deleting an absent property reports true")
	}
}

func TestAccessorProperties(t *testing.T) {
	obj := NewObject(ClassObject, nil, lattice.None)
	var stored Value = Number(0)
	obj.DefineProperty("x", Property{
		Getter: NewNativeFunction("get", 0, func(this Value, _ []Value) (Value, error) {
			if this != Value(obj) {
				t.Fatalf("getter receiver mismatch")
			}
			return stored, nil
		}, nil),
		Setter: NewNativeFunction("set", 1, func(_ Value, args []Value) (Value, error) {
			stored = args[0]
			return Undefined, nil
		}, nil),
	})
	if err := PutProperty(obj, "x", Number(9)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := GetProperty(obj, "x")
	if err != nil || got != Number(9) {
		t.Fatalf("expected accessor round trip, got %#v (%v)", got, err)
	}
}

func TestArrayLengthTracking(t *testing.T) {
	arr := NewArray(nil, lattice.None, []Value{Number(1), nil, Number(3)})
	if n, _ := Length(arr); n != 3 {
		t.Fatalf("expected length 3, got %d", n)
	}
	if arr.HasOwnProperty("1") {
		t.Fatalf("hole should not be an own property")
	}
	if err := PutProperty(arr, "5", String("x")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if n, _ := Length(arr); n != 6 {
		t.Fatalf("expected length 6 after index write, got %d", n)
	}
	if err := PutProperty(arr, "length", Number(1)); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
	if arr.HasOwnProperty("2") || arr.HasOwnProperty("5") {
		t.Fatalf("truncation should drop trailing elements")
	}
	err := PutProperty(arr, "length", Number(1.5))
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Name != "RangeError" {
		t.Fatalf("expected RangeError, got %v", err)
	}
	elems, err := Elements(arr)
	if err != nil {
		t.Fatalf("elements failed: %v", err)
	}
	if len(elems) != 1 || elems[0] != Number(1) {
		t.Fatalf("unexpected elements %#v", elems)
	}
}

func TestStringWrapperIndices(t *testing.T) {
	obj := NewObject(ClassString, nil, lattice.None)
	obj.Primitive = String("héllo")
	v, _ := GetProperty(obj, "length")
	if v != Number(5) {
		t.Fatalf("expected rune length 5, got %#v", v)
	}
	v, _ = GetProperty(obj, "1")
	if v != String("é") {
		t.Fatalf("expected indexed rune, got %#v", v)
	}
}

func TestWrapAndUnlabel(t *testing.T) {
	lat := lattice.Default()
	low, high := lat.Bottom(), lat.Top()

	if v := Wrap(Number(1), low); v != Number(1) {
		t.Fatalf("bottom label should not wrap, got %#v", v)
	}
	wrapped := Wrap(Number(1), high)
	raw, label := Unlabel(wrapped)
	if raw != Number(1) || label != high {
		t.Fatalf("unexpected unlabel result %#v %v", raw, label)
	}
	again := Wrap(wrapped, low)
	if _, label := Unlabel(again); label != high {
		t.Fatalf("join with bottom should keep the high label, got %v", label)
	}
	if _, nested := again.(Labeled).Raw.(Labeled); nested {
		t.Fatalf("labels must not nest")
	}
}

func TestReferenceResolution(t *testing.T) {
	lat := lattice.Default()
	store := NewObject(ClassActivation, nil, lat.Top())
	store.Set("x", Number(4))

	ref := &Reference{Base: store, Name: "x"}
	v, err := ref.Cell()
	if err != nil || v != Number(4) {
		t.Fatalf("unexpected cell %#v (%v)", v, err)
	}
	if ref.Partition() != lat.Top() {
		t.Fatalf("expected reference partition to follow its base")
	}

	unbound := &Reference{Name: "ghost"}
	if unbound.Exists() {
		t.Fatalf("unbound reference should not exist")
	}
	_, err = unbound.Cell()
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Name != "ReferenceError" {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
}
