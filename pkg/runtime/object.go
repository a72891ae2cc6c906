package runtime

import (
	"strconv"

	"flowjs/interpreter-go/pkg/lattice"
)

// Object classes.
const (
	ClassObject     = "Object"
	ClassArray      = "Array"
	ClassFunction   = "Function"
	ClassError      = "Error"
	ClassBoolean    = "Boolean"
	ClassNumber     = "Number"
	ClassString     = "String"
	ClassRegExp     = "RegExp"
	ClassArguments  = "Arguments"
	ClassActivation = "Activation"
	ClassMath       = "Math"
	ClassGlobal     = "global"
)

// Property is one named slot of an object: either a data slot holding a
// possibly labeled Value, or an accessor pair.
type Property struct {
	Value     Value
	Getter    Value
	Setter    Value
	Hidden    bool
	ReadOnly  bool
	Permanent bool
}

// IsAccessor reports whether the property is a getter/setter pair.
func (p *Property) IsAccessor() bool {
	return p.Getter != nil || p.Setter != nil
}

// ObjectValue is implemented by every object kind: plain objects,
// activations, closures and host functions.
type ObjectValue interface {
	Value
	AsObject() *Object
}

// Object is a property map with insertion order and a prototype link.
// Partition records the classification of the store the object was
// allocated in.
type Object struct {
	Class     string
	Proto     *Object
	Partition lattice.Label
	// Primitive holds the wrapped value of Boolean, Number and String objects.
	Primitive Value
	// Internal carries host data such as a compiled pattern.
	Internal any

	props map[string]*Property
	keys  []string
}

// NewObject allocates an empty object.
func NewObject(class string, proto *Object, partition lattice.Label) *Object {
	o := &Object{}
	o.init(class, proto, partition)
	return o
}

func (o *Object) init(class string, proto *Object, partition lattice.Label) {
	o.Class = class
	o.Proto = proto
	o.Partition = partition
	o.props = make(map[string]*Property)
}

func (o *Object) Kind() Kind { return KindObject }

func (o *Object) AsObject() *Object { return o }

// OwnProperty returns the own property called name.
func (o *Object) OwnProperty(name string) (*Property, bool) {
	if p, ok := o.props[name]; ok {
		return p, true
	}
	if s, ok := o.Primitive.(StringValue); ok {
		runes := []rune(s.Val)
		if name == "length" {
			return &Property{Value: Number(float64(len(runes))), Hidden: true, ReadOnly: true, Permanent: true}, true
		}
		if idx, ok := ArrayIndex(name); ok && int(idx) < len(runes) {
			return &Property{Value: String(string(runes[idx])), ReadOnly: true, Permanent: true}, true
		}
	}
	return nil, false
}

// FindProperty walks the prototype chain and returns the property and the
// object that owns it.
func (o *Object) FindProperty(name string) (*Property, *Object) {
	for cur := o; cur != nil; cur = cur.Proto {
		if p, ok := cur.OwnProperty(name); ok {
			return p, cur
		}
	}
	return nil, nil
}

func (o *Object) HasOwnProperty(name string) bool {
	_, ok := o.OwnProperty(name)
	return ok
}

func (o *Object) HasProperty(name string) bool {
	p, _ := o.FindProperty(name)
	return p != nil
}

// DefineProperty installs prop as an own property, replacing any existing
// slot.
func (o *Object) DefineProperty(name string, prop Property) {
	if _, exists := o.props[name]; !exists {
		o.keys = append(o.keys, name)
	}
	p := prop
	o.props[name] = &p
}

// Set defines an ordinary enumerable data property.
func (o *Object) Set(name string, v Value) {
	if p, ok := o.props[name]; ok && !p.IsAccessor() {
		p.Value = v
		return
	}
	o.DefineProperty(name, Property{Value: v})
}

// SetHidden defines a non-enumerable data property.
func (o *Object) SetHidden(name string, v Value) {
	o.DefineProperty(name, Property{Value: v, Hidden: true})
}

// Delete removes an own property. Permanent properties are kept and false
// is returned.
func (o *Object) Delete(name string) bool {
	p, ok := o.props[name]
	if !ok {
		return !o.HasOwnProperty(name)
	}
	if p.Permanent {
		return false
	}
	delete(o.props, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the own property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// EnumerableKeys returns own and inherited enumerable names, own names
// first, skipping names shadowed by a closer property.
func (o *Object) EnumerableKeys() []string {
	seen := make(map[string]bool)
	var out []string
	for cur := o; cur != nil; cur = cur.Proto {
		if s, ok := cur.Primitive.(StringValue); ok {
			for i := range []rune(s.Val) {
				name := strconv.Itoa(i)
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
		for _, name := range cur.keys {
			if seen[name] {
				continue
			}
			seen[name] = true
			if !cur.props[name].Hidden {
				out = append(out, name)
			}
		}
	}
	return out
}

// GetProperty reads name from v, running getters with v as receiver. The
// result may carry a label; missing properties read as Undefined.
func GetProperty(v ObjectValue, name string) (Value, error) {
	p, _ := v.AsObject().FindProperty(name)
	if p == nil {
		return Undefined, nil
	}
	if p.IsAccessor() {
		getter, ok := p.Getter.(Callable)
		if !ok {
			return Undefined, nil
		}
		return getter.Call(v, nil)
	}
	return p.Value, nil
}

// PutProperty assigns name on v. Setters run with v as receiver; read-only
// slots ignore the write.
func PutProperty(v ObjectValue, name string, val Value) error {
	o := v.AsObject()
	p, owner := o.FindProperty(name)
	if p != nil {
		if p.IsAccessor() {
			setter, ok := p.Setter.(Callable)
			if !ok {
				return nil
			}
			_, err := setter.Call(v, []Value{val})
			return err
		}
		if p.ReadOnly {
			return nil
		}
		if owner == o {
			if own, ok := o.props[name]; ok {
				if o.Class == ClassArray && name == "length" {
					return o.setArrayLength(val)
				}
				own.Value = val
				return nil
			}
		}
	}
	o.DefineProperty(name, Property{Value: val})
	if o.Class == ClassArray {
		if idx, ok := ArrayIndex(name); ok && float64(idx) >= o.arrayLength() {
			o.props["length"].Value = Number(float64(idx) + 1)
		}
	}
	return nil
}

// ArrayIndex parses a canonical array index.
func ArrayIndex(name string) (uint32, bool) {
	if name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return uint32(n), true
}

// NewArray allocates an array object holding elems.
func NewArray(proto *Object, partition lattice.Label, elems []Value) *Object {
	o := NewObject(ClassArray, proto, partition)
	o.DefineProperty("length", Property{Value: Number(0), Hidden: true, Permanent: true})
	for i, e := range elems {
		if e == nil {
			continue
		}
		o.DefineProperty(strconv.Itoa(i), Property{Value: e})
	}
	o.props["length"].Value = Number(float64(len(elems)))
	return o
}

func (o *Object) arrayLength() float64 {
	p, ok := o.props["length"]
	if !ok {
		return 0
	}
	raw, _ := Unlabel(p.Value)
	if n, ok := raw.(NumberValue); ok {
		return n.Val
	}
	return 0
}

func (o *Object) setArrayLength(val Value) error {
	raw, label := Unlabel(val)
	n := ToNumber(raw)
	length := ToUint32(raw)
	if float64(length) != n {
		return NewRangeError("invalid array length")
	}
	for _, name := range o.Keys() {
		if idx, ok := ArrayIndex(name); ok && idx >= length {
			o.Delete(name)
		}
	}
	o.props["length"].Value = Wrap(Number(float64(length)), label)
	return nil
}

// Length returns the array length of an array-like object.
func Length(v ObjectValue) (int, error) {
	raw, err := GetProperty(v, "length")
	if err != nil {
		return 0, err
	}
	raw, _ = Unlabel(raw)
	return int(ToUint32(raw)), nil
}

// Elements returns the indexed values of an array-like object.
func Elements(v ObjectValue) ([]Value, error) {
	n, err := Length(v)
	if err != nil {
		return nil, err
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		val, err := GetProperty(v, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}
