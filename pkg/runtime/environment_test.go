package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"flowjs/interpreter-go/pkg/lattice"
)

func newTestFrame(parent *Frame) *Frame {
	lat := lattice.Default()
	lo := NewObject(ClassActivation, nil, lat.Bottom())
	hi := NewObject(ClassActivation, nil, lat.Top())
	return NewFrame(lo, hi, parent)
}

func TestFrameDefineSelectsStoreByPC(t *testing.T) {
	lat := lattice.Default()
	frame := newTestFrame(nil)

	if store := frame.Define("a", Property{Value: Number(1)}, lat.Bottom()); store != frame.Lo {
		t.Fatalf("expected low pc binding in Lo store")
	}
	if store := frame.Define("b", Property{Value: Number(2)}, lat.Top()); store != frame.Hi {
		t.Fatalf("expected high pc binding in Hi store")
	}
	if store := frame.Define("c", Property{Value: Number(3)}, lattice.None); store != frame.Lo {
		t.Fatalf("expected unlabeled pc binding in Lo store")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, frame.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameDefineLabelsValuesAbovePartition(t *testing.T) {
	lat := lattice.MustNew("public", "internal", "secret")
	internal, _ := lat.Lookup("internal")
	lo := NewObject(ClassActivation, nil, lat.Bottom())
	hi := NewObject(ClassActivation, nil, internal)
	frame := NewFrame(lo, hi, nil)

	frame.Define("k", Property{Value: Number(1), ReadOnly: true}, lat.Top())
	p, ok := hi.OwnProperty("k")
	if !ok || !p.ReadOnly {
		t.Fatalf("expected read-only k in the Hi store, got %+v", p)
	}
	if _, label := Unlabel(p.Value); label != lat.Top() {
		t.Fatalf("k label = %s, want secret", label)
	}
	frame.Define("j", Property{Value: Number(2)}, internal)
	if p, _ := hi.OwnProperty("j"); p.Value != Value(Number(2)) {
		t.Fatalf("j = %#v, want unlabeled 2", p.Value)
	}
}

func TestFrameLookupWalksChain(t *testing.T) {
	lat := lattice.Default()
	outer := newTestFrame(nil)
	inner := newTestFrame(outer)
	outer.Define("x", Property{Value: Number(1)}, lat.Bottom())
	inner.Define("y", Property{Value: Number(2)}, lat.Top())

	store, frame := inner.Lookup("x")
	if frame != outer || store != outer.Lo {
		t.Fatalf("expected x to resolve in the outer Lo store")
	}
	store, frame = inner.Lookup("y")
	if frame != inner || store != inner.Hi {
		t.Fatalf("expected y to resolve in the inner Hi store")
	}
	if store, frame := inner.Lookup("z"); store != nil || frame != nil {
		t.Fatalf("expected z to be unbound")
	}

	inner.Define("x", Property{Value: Number(3)}, lat.Bottom())
	if _, frame := inner.Lookup("x"); frame != inner {
		t.Fatalf("inner binding should shadow the outer one")
	}
}

func TestFrameForgetsDeletedBindings(t *testing.T) {
	lat := lattice.Default()
	frame := newTestFrame(nil)
	frame.Define("tmp", Property{Value: Number(1)}, lat.Bottom())
	frame.Lo.AsObject().Delete("tmp")
	if _, ok := frame.Own("tmp"); ok {
		t.Fatalf("deleted binding should no longer resolve")
	}
}

func TestObjectFrameSeesLiveProperties(t *testing.T) {
	lat := lattice.Default()
	proto := NewObject(ClassObject, nil, lat.Bottom())
	proto.Set("inherited", True)
	global := NewObject(ClassGlobal, proto, lat.Bottom())
	hi := NewObject(ClassActivation, nil, lat.Top())
	frame := NewObjectFrame(global, hi, nil)

	global.Set("late", Number(1))
	if store, ok := frame.Own("late"); !ok || store != ObjectValue(global) {
		t.Fatalf("expected property added after frame creation to resolve")
	}
	if _, ok := frame.Own("inherited"); !ok {
		t.Fatalf("expected inherited property to resolve through an object frame")
	}
	hi.Set("late", Number(2))
	if store, _ := frame.Own("late"); store != ObjectValue(hi) {
		t.Fatalf("expected Hi store to take precedence")
	}
}
