package runtime

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean converts a raw value to a boolean.
func ToBoolean(v Value) bool {
	switch x := v.(type) {
	case UndefinedValue, NullValue, nil:
		return false
	case BoolValue:
		return x.Val
	case NumberValue:
		return !(x.Val == 0 || math.IsNaN(x.Val))
	case StringValue:
		return x.Val != ""
	case Labeled:
		return ToBoolean(x.Raw)
	default:
		return true
	}
}

// ToNumber converts a primitive to a number. Wrapper objects convert their
// primitive; other objects convert to NaN (use NumberOf to run valueOf).
func ToNumber(v Value) float64 {
	switch x := v.(type) {
	case UndefinedValue:
		return math.NaN()
	case NullValue:
		return 0
	case BoolValue:
		if x.Val {
			return 1
		}
		return 0
	case NumberValue:
		return x.Val
	case StringValue:
		return StringToNumber(x.Val)
	case Labeled:
		return ToNumber(x.Raw)
	case ObjectValue:
		if p := x.AsObject().Primitive; p != nil {
			return ToNumber(p)
		}
	}
	return math.NaN()
}

// ToString converts a primitive to its string form. Objects fall back to
// their class tag (use StringOf to run toString).
func ToString(v Value) string {
	switch x := v.(type) {
	case UndefinedValue, nil:
		return "undefined"
	case NullValue:
		return "null"
	case BoolValue:
		if x.Val {
			return "true"
		}
		return "false"
	case NumberValue:
		return NumberToString(x.Val)
	case StringValue:
		return x.Val
	case Labeled:
		return ToString(x.Raw)
	case *Function:
		if x.Node != nil && x.Node.Source != "" {
			return x.Node.Source
		}
		return "function " + x.Name() + "() { [code] }"
	case *NativeFunction:
		return "function " + x.Name + "() { [native code] }"
	case ObjectValue:
		if p := x.AsObject().Primitive; p != nil {
			return ToString(p)
		}
		return "[object " + x.AsObject().Class + "]"
	}
	return ""
}

// ToPrimitive converts objects by calling valueOf/toString in the order
// given by hint ("string" or "number"). Primitives are returned unchanged.
func ToPrimitive(v Value, hint string) (Value, error) {
	v, _ = Unlabel(v)
	obj, ok := v.(ObjectValue)
	if !ok {
		return v, nil
	}
	if p := obj.AsObject().Primitive; p != nil {
		return p, nil
	}
	order := []string{"valueOf", "toString"}
	if hint == "string" {
		order = []string{"toString", "valueOf"}
	}
	for _, name := range order {
		method, err := GetProperty(obj, name)
		if err != nil {
			return nil, err
		}
		method, _ = Unlabel(method)
		fn, ok := method.(Callable)
		if !ok {
			continue
		}
		result, err := fn.Call(obj, nil)
		if err != nil {
			return nil, err
		}
		result, _ = Unlabel(result)
		if IsPrimitive(result) {
			return result, nil
		}
	}
	return nil, NewTypeError("cannot convert object to primitive value")
}

// NumberOf converts any value to a number, calling valueOf on objects.
func NumberOf(v Value) (float64, error) {
	p, err := ToPrimitive(v, "number")
	if err != nil {
		return 0, err
	}
	return ToNumber(p), nil
}

// StringOf converts any value to a string, calling toString on objects.
func StringOf(v Value) (string, error) {
	p, err := ToPrimitive(v, "string")
	if err != nil {
		return "", err
	}
	return ToString(p), nil
}

// StringToNumber parses a numeric string; malformed input yields NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// NumberToString formats f the way the language prints numbers.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	mant, expPart, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(expPart)
	k := len(digits)
	n := exp + 1

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteString(digits[:1])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if n-1 >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(n - 1))
	}
	return b.String()
}

// ToInt32 applies the 32-bit signed integer conversion.
func ToInt32(v Value) int32 {
	return int32(ToUint32(v))
}

// ToUint32 applies the 32-bit unsigned integer conversion.
func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 1<<32)
	if f < 0 {
		f += 1 << 32
	}
	return uint32(f)
}

// TypeOf returns the `typeof` string of a raw value.
func TypeOf(v Value) string {
	switch x := v.(type) {
	case UndefinedValue, nil:
		return "undefined"
	case NullValue:
		return "object"
	case BoolValue:
		return "boolean"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case Labeled:
		return TypeOf(x.Raw)
	case Callable:
		return "function"
	default:
		return "object"
	}
}

// StrictEquals implements `===` on raw values.
func StrictEquals(a, b Value) bool {
	a, _ = Unlabel(a)
	b, _ = Unlabel(b)
	switch x := a.(type) {
	case NumberValue:
		y, ok := b.(NumberValue)
		return ok && x.Val == y.Val
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x.Val == y.Val
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x.Val == y.Val
	case UndefinedValue:
		_, ok := b.(UndefinedValue)
		return ok
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	}
	return a == b
}

// LooseEquals implements `==` on raw values.
func LooseEquals(a, b Value) (bool, error) {
	a, _ = Unlabel(a)
	b, _ = Unlabel(b)
	if a.Kind() == b.Kind() || (isObjectKind(a) && isObjectKind(b)) {
		return StrictEquals(a, b), nil
	}
	switch {
	case isNullish(a) && isNullish(b):
		return true, nil
	case isNullish(a) || isNullish(b):
		return false, nil
	}
	_, aNum := a.(NumberValue)
	_, bNum := b.(NumberValue)
	_, aStr := a.(StringValue)
	_, bStr := b.(StringValue)
	switch {
	case aNum && bStr, aStr && bNum:
		return ToNumber(a) == ToNumber(b), nil
	}
	if _, ok := a.(BoolValue); ok {
		return LooseEquals(Number(ToNumber(a)), b)
	}
	if _, ok := b.(BoolValue); ok {
		return LooseEquals(a, Number(ToNumber(b)))
	}
	if isObjectKind(a) {
		pa, err := ToPrimitive(a, "number")
		if err != nil {
			return false, err
		}
		return LooseEquals(pa, b)
	}
	if isObjectKind(b) {
		pb, err := ToPrimitive(b, "number")
		if err != nil {
			return false, err
		}
		return LooseEquals(a, pb)
	}
	return false, nil
}

func isNullish(v Value) bool {
	switch v.(type) {
	case UndefinedValue, NullValue:
		return true
	}
	return false
}

func isObjectKind(v Value) bool {
	_, ok := v.(ObjectValue)
	return ok
}
