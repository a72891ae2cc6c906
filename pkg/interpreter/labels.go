package interpreter

import (
	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// resolve reads v down to its raw value and effective label. A reference is
// dereferenced; its label joins any explicit label on v, the label stored
// in the cell and the partition of the base object.
func (i *Interpreter) resolve(v runtime.Value) (runtime.Value, lattice.Label, error) {
	raw, k := runtime.Unlabel(v)
	ref, ok := raw.(*runtime.Reference)
	if !ok {
		return raw, k, nil
	}
	cell, err := ref.Cell()
	if err != nil {
		return nil, k, err
	}
	cellRaw, cellLabel := runtime.Unlabel(cell)
	return cellRaw, lattice.JoinAll(k, cellLabel, ref.Partition()), nil
}

// rawValue strips labels and dereferences references.
func (i *Interpreter) rawValue(v runtime.Value) (runtime.Value, error) {
	raw, _, err := i.resolve(v)
	return raw, err
}

// effectiveLabel is the classification v carries at this point.
func (i *Interpreter) effectiveLabel(v runtime.Value) (lattice.Label, error) {
	_, k, err := i.resolve(v)
	return k, err
}

// getValue dereferences v, keeping its effective label on the result.
func (i *Interpreter) getValue(v runtime.Value) (runtime.Value, error) {
	raw, k, err := i.resolve(v)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(raw, k), nil
}

// relabel raises the label of v to include k when k is above pc. Labels
// never go down.
func relabel(v runtime.Value, k, pc lattice.Label) runtime.Value {
	if lattice.Leq(k, pc) {
		return v
	}
	return runtime.Wrap(v, k)
}

// write stores v at the location w refers to. Unbound names become
// properties of the global object.
func (i *Interpreter) write(w runtime.Value, v runtime.Value) error {
	raw, _ := runtime.Unlabel(w)
	ref, ok := raw.(*runtime.Reference)
	if !ok {
		return runtime.NewReferenceError("invalid assignment left-hand side")
	}
	if !ref.Resolved() {
		return runtime.PutProperty(i.global, ref.Name, v)
	}
	return runtime.PutProperty(ref.Base, ref.Name, v)
}

// store is the checked write shared by assignment, var initialisers,
// increments and for-in variables. r is the raw value to store and k its
// label; the returned value is what the assignment expression yields.
//
// A write is rejected when the control context or the target reference is
// classified above the location (pc ⊔ label(w) above m ⊔ label(u)), and
// when data above m flows into the location. The one exception is a
// declaration initialiser: a declared binding still holding undefined
// takes the classification of its initial value.
func (i *Interpreter) store(ctx *Context, node ast.Node, w runtime.Value, r runtime.Value, k lattice.Label, declare bool) (runtime.Value, error) {
	wRaw, wLabel := runtime.Unlabel(w)
	ref, ok := wRaw.(*runtime.Reference)
	if !ok {
		return nil, runtime.NewReferenceError("invalid assignment left-hand side")
	}

	var (
		cellLabel   lattice.Label
		m           lattice.Label
		established bool
	)
	if ref.Resolved() {
		cell, exists := ref.Peek()
		if exists {
			var cellRaw runtime.Value
			cellRaw, cellLabel = runtime.Unlabel(cell)
			_, undefined := cellRaw.(runtime.UndefinedValue)
			established = !undefined
		}
		m = lattice.Join(cellLabel, ref.Partition())
	} else {
		m = i.global.Partition
	}
	labelW := lattice.Join(wLabel, m)
	pc := ctx.PC

	lhs := lattice.Join(pc, labelW)
	rhs := lattice.Join(m, cellLabel)
	if lattice.Less(rhs, lhs) {
		return nil, i.violation(node, ref.Name, lhs, rhs)
	}
	if (established || !declare) && lattice.Less(m, k) {
		return nil, i.violation(node, ref.Name, k, m)
	}

	var v runtime.Value = runtime.Wrap(r, k)
	if lattice.Compare(m, pc) != 0 {
		v = relabel(v, lhs, m)
		if _, raised := v.(runtime.Labeled); raised {
			i.log.Trace().Str("target", ref.Name).Str("label", lhs.String()).Int("line", nodeLine(node)).Msg("relabel")
		}
	} else {
		v = runtime.Wrap(v, pc)
	}
	v = runtime.Wrap(v, cellLabel)

	if err := i.write(ref, v); err != nil {
		return nil, err
	}
	return runtime.Wrap(r, k), nil
}

// raise enters the slow path for a region controlled by a value labeled k:
// the pc becomes pc ⊔ k. It returns the pc to restore when the region ends.
func (i *Interpreter) raise(ctx *Context, node ast.Node, k lattice.Label) lattice.Label {
	saved := ctx.PC
	if k.IsNone() || lattice.Compare(k, saved) == 0 {
		return saved
	}
	ctx.PC = lattice.Join(saved, k)
	if ctx.PC != saved {
		i.log.Trace().
			Str("from", saved.String()).
			Str("to", ctx.PC.String()).
			Str("node", string(node.NodeType())).
			Int("line", nodeLine(node)).
			Msg("pc raised")
	}
	return saved
}
