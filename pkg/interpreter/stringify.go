package interpreter

import (
	"strconv"
	"strings"

	"flowjs/interpreter-go/pkg/runtime"
)

const inspectDepth = 4

// Inspect renders a value for diagnostics and print. Labels render as a
// prefix, so a secret 5 prints as <H>5. Strings are quoted only inside
// containers.
func Inspect(v runtime.Value) string {
	var b strings.Builder
	inspectValue(&b, v, 0, false)
	return b.String()
}

func inspectValue(b *strings.Builder, v runtime.Value, depth int, nested bool) {
	switch x := v.(type) {
	case nil:
		b.WriteString("undefined")
	case runtime.Labeled:
		b.WriteString("<" + x.Label.String() + ">")
		inspectValue(b, x.Raw, depth, nested)
	case *runtime.Reference:
		b.WriteString("<reference " + x.Name + ">")
	case runtime.StringValue:
		if nested {
			b.WriteString(strconv.Quote(x.Val))
		} else {
			b.WriteString(x.Val)
		}
	case *runtime.Function:
		b.WriteString("function " + x.Name() + "() {...}")
	case *runtime.NativeFunction:
		b.WriteString("function " + x.Name + "() { [native code] }")
	case runtime.ObjectValue:
		inspectObject(b, x.AsObject(), depth)
	default:
		b.WriteString(runtime.ToString(v))
	}
}

func inspectObject(b *strings.Builder, obj *runtime.Object, depth int) {
	switch {
	case obj.Class == runtime.ClassError:
		b.WriteString(errorString(obj))
		return
	case obj.Primitive != nil:
		b.WriteString("[" + obj.Class + " ")
		inspectValue(b, obj.Primitive, depth, true)
		b.WriteString("]")
		return
	case obj.Class == runtime.ClassRegExp:
		b.WriteString(regexpSource(obj))
		return
	case depth >= inspectDepth:
		b.WriteString("[" + obj.Class + "]")
		return
	}

	if obj.Class == runtime.ClassArray {
		n, _ := runtime.Length(obj)
		b.WriteString("[")
		for idx := 0; idx < n; idx++ {
			if idx > 0 {
				b.WriteString(", ")
			}
			if p, ok := obj.OwnProperty(strconv.Itoa(idx)); ok && !p.IsAccessor() {
				inspectValue(b, p.Value, depth+1, true)
			}
		}
		b.WriteString("]")
		return
	}

	keys := obj.EnumerableKeys()
	if len(keys) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for idx, name := range keys {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		p, _ := obj.FindProperty(name)
		switch {
		case p == nil:
			b.WriteString("undefined")
		case p.IsAccessor():
			b.WriteString("[accessor]")
		default:
			inspectValue(b, p.Value, depth+1, true)
		}
	}
	b.WriteString(" }")
}
