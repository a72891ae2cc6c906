package runtime

import (
	"sort"

	"flowjs/interpreter-go/pkg/lattice"
)

// Frame is one link of the scope chain. Bindings live in one of two stores:
// Lo holds names bound while the program counter was at the bottom label,
// Hi holds names bound under a raised program counter. index records which
// store owns each name.
type Frame struct {
	Lo ObjectValue
	Hi ObjectValue

	index   map[string]ObjectValue
	parent  *Frame
	dynamic bool
}

// NewFrame creates a frame over the given stores, nested under parent.
func NewFrame(lo, hi ObjectValue, parent *Frame) *Frame {
	return &Frame{
		Lo:     lo,
		Hi:     hi,
		index:  make(map[string]ObjectValue),
		parent: parent,
	}
}

// NewObjectFrame creates a frame that also answers lookups from the live
// properties of its stores, as the global frame and `with` frames do.
func NewObjectFrame(lo, hi ObjectValue, parent *Frame) *Frame {
	f := NewFrame(lo, hi, parent)
	f.dynamic = true
	return f
}

// Parent exposes the enclosing frame (nil for the global frame).
func (f *Frame) Parent() *Frame {
	return f.parent
}

// Store returns the store that bindings made at pc belong to.
func (f *Frame) Store(pc lattice.Label) ObjectValue {
	if lattice.Less(lattice.None, pc) {
		return f.Hi
	}
	return f.Lo
}

// Bind records that name lives in store.
func (f *Frame) Bind(name string, store ObjectValue) {
	f.index[name] = store
}

// Define installs prop under name in the store selected by pc and binds
// it. A value defined under a pc above the store's partition carries pc.
func (f *Frame) Define(name string, prop Property, pc lattice.Label) ObjectValue {
	store := f.Store(pc)
	obj := store.AsObject()
	if lattice.Less(obj.Partition, pc) {
		prop.Value = Wrap(prop.Value, pc)
	}
	obj.DefineProperty(name, prop)
	f.Bind(name, store)
	return store
}

// Own returns the store holding name in this frame only.
func (f *Frame) Own(name string) (ObjectValue, bool) {
	if store, ok := f.index[name]; ok {
		if store.AsObject().HasOwnProperty(name) {
			return store, true
		}
		delete(f.index, name)
	}
	if f.dynamic {
		if f.Hi != nil && f.Hi.AsObject().HasProperty(name) {
			return f.Hi, true
		}
		if f.Lo != nil && f.Lo.AsObject().HasProperty(name) {
			return f.Lo, true
		}
	}
	return nil, false
}

// Lookup walks the scope chain and returns the store that owns name and
// the frame it was found in. The first frame wins.
func (f *Frame) Lookup(name string) (ObjectValue, *Frame) {
	for cur := f; cur != nil; cur = cur.parent {
		if store, ok := cur.Own(name); ok {
			return store, cur
		}
	}
	return nil, nil
}

// Names returns the indexed bindings of this frame in sorted order.
func (f *Frame) Names() []string {
	keys := make([]string, 0, len(f.index))
	for k := range f.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
