package runtime

import (
	"fmt"

	"flowjs/interpreter-go/pkg/ast"
	"flowjs/interpreter-go/pkg/lattice"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindFunction
	KindNativeFunction
	KindLabeled
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindLabeled:
		return "labeled"
	case KindReference:
		return "reference"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Primitives
//-----------------------------------------------------------------------------

type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

var (
	Undefined Value = UndefinedValue{}
	Null      Value = NullValue{}
	True      Value = BoolValue{Val: true}
	False     Value = BoolValue{Val: false}
)

// Bool returns the boolean value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(f float64) Value { return NumberValue{Val: f} }

func String(s string) Value { return StringValue{Val: s} }

// IsPrimitive reports whether v is neither an object nor a function.
func IsPrimitive(v Value) bool {
	switch v.(type) {
	case UndefinedValue, NullValue, BoolValue, NumberValue, StringValue:
		return true
	}
	return false
}

//-----------------------------------------------------------------------------
// Labels and references
//-----------------------------------------------------------------------------

// Labeled is a value in transit carrying an explicit classification. Raw is
// never itself a Labeled value; it may be a *Reference.
type Labeled struct {
	Raw   Value
	Label lattice.Label
}

func (v Labeled) Kind() Kind { return KindLabeled }

func (v Labeled) String() string {
	return fmt.Sprintf("<%s>%v", v.Label, v.Raw)
}

// Wrap attaches k to v. Labels at or below the bottom element carry no
// information and leave v unwrapped; an already labeled v has its label
// joined with k.
func Wrap(v Value, k lattice.Label) Value {
	if lv, ok := v.(Labeled); ok {
		joined := lattice.Join(lv.Label, k)
		if !lattice.Less(lattice.None, joined) {
			return lv.Raw
		}
		return Labeled{Raw: lv.Raw, Label: joined}
	}
	if !lattice.Less(lattice.None, k) {
		return v
	}
	return Labeled{Raw: v, Label: k}
}

// Unlabel strips an explicit label, returning the raw value and the label
// (None when v is unlabeled).
func Unlabel(v Value) (Value, lattice.Label) {
	if lv, ok := v.(Labeled); ok {
		return lv.Raw, lv.Label
	}
	return v, lattice.None
}

// Reference names a property of Base without reading it. A nil Base marks
// an identifier that did not resolve; that is only an error once the
// reference is read.
type Reference struct {
	Base ObjectValue
	Name string
	Node ast.Node
}

func (r *Reference) Kind() Kind { return KindReference }

// Resolved reports whether the reference has a base object.
func (r *Reference) Resolved() bool { return r != nil && r.Base != nil }

// Cell returns the stored value, which may carry a label.
func (r *Reference) Cell() (Value, error) {
	if !r.Resolved() {
		return nil, NewReferenceError("%s is not defined", r.Name)
	}
	return GetProperty(r.Base, r.Name)
}

// Peek returns the stored slot without running getters. Accessor slots
// read as Undefined; ok is false when nothing is stored under the name.
func (r *Reference) Peek() (Value, bool) {
	if !r.Resolved() {
		return nil, false
	}
	p, _ := r.Base.AsObject().FindProperty(r.Name)
	if p == nil {
		return nil, false
	}
	if p.IsAccessor() {
		return Undefined, true
	}
	return p.Value, true
}

// Exists reports whether the referenced property is present.
func (r *Reference) Exists() bool {
	return r.Resolved() && r.Base.AsObject().HasProperty(r.Name)
}

// Partition returns the classification of the store the reference's base
// was allocated in.
func (r *Reference) Partition() lattice.Label {
	if !r.Resolved() {
		return lattice.None
	}
	return r.Base.AsObject().Partition
}
