package interpreter

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"flowjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installString() {
	proto := i.stringProto
	ctor := i.constructor("String", 1, proto, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.String(""), nil
		}
		s, err := runtime.StringOf(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.String(s), nil
	}), func(args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(arg(args, 0))
		s := ""
		if len(args) > 0 {
			var err error
			if s, err = runtime.StringOf(raw); err != nil {
				return nil, err
			}
		}
		return runtime.Wrap(i.newWrapper(runtime.ClassString, i.stringProto, runtime.String(s), i.currentContext().PC), k), nil
	})
	ctor.SetHidden("fromCharCode", Adapt("fromCharCode", fromCharCode, i.functionProto))

	methods := map[string]any{
		"charAt":      charAt,
		"charCodeAt":  charCodeAt,
		"indexOf":     stringIndexOf,
		"lastIndexOf": stringLastIndexOf,
		"substring":   substring,
		"substr":      substr,
		"slice":       stringSlice,
		"toUpperCase": strings.ToUpper,
		"toLowerCase": strings.ToLower,
		"trim":        strings.TrimSpace,
		"concat":      func(s string, rest ...string) string { return s + strings.Join(rest, "") },
		"toString":    func(s string) string { return s },
		"valueOf":     func(s string) string { return s },
		"split":       i.split,
	}
	for name, fn := range methods {
		proto.SetHidden(name, AdaptMethod(name, fn, i.functionProto))
	}
}

// runes converts positions to code points, so indices count characters
// rather than bytes.
func runes(s string) []rune { return []rune(s) }

func toIndex(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 1) || f > math.MaxInt32 {
		return math.MaxInt32
	}
	if math.IsInf(f, -1) || f < math.MinInt32 {
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func optionalIndex(v runtime.Value, fallback int) (int, error) {
	if _, ok := v.(runtime.UndefinedValue); ok {
		return fallback, nil
	}
	f, err := runtime.NumberOf(v)
	if err != nil {
		return 0, err
	}
	return toIndex(f), nil
}

func charAt(s string, pos float64) string {
	r := runes(s)
	idx := toIndex(pos)
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return string(r[idx])
}

func charCodeAt(s string, pos float64) float64 {
	r := runes(s)
	idx := toIndex(pos)
	if idx < 0 || idx >= len(r) {
		return math.NaN()
	}
	return float64(r[idx])
}

func fromCharCode(codes ...float64) string {
	var b strings.Builder
	for _, c := range codes {
		b.WriteRune(rune(runtime.ToUint32(runtime.Number(c)) & 0xFFFF))
	}
	return b.String()
}

func stringIndexOf(s, search string, from float64) float64 {
	r := runes(s)
	start := clamp(toIndex(from), 0, len(r))
	idx := strings.Index(string(r[start:]), search)
	if idx < 0 {
		return -1
	}
	return float64(start + utf8.RuneCountInString(string(r[start:])[:idx]))
}

func stringLastIndexOf(s, search string) float64 {
	idx := strings.LastIndex(s, search)
	if idx < 0 {
		return -1
	}
	return float64(utf8.RuneCountInString(s[:idx]))
}

func substring(s string, start, end runtime.Value) (string, error) {
	r := runes(s)
	a, err := optionalIndex(start, 0)
	if err != nil {
		return "", err
	}
	b, err := optionalIndex(end, len(r))
	if err != nil {
		return "", err
	}
	a, b = clamp(a, 0, len(r)), clamp(b, 0, len(r))
	if a > b {
		a, b = b, a
	}
	return string(r[a:b]), nil
}

func substr(s string, start float64, length runtime.Value) (string, error) {
	r := runes(s)
	a := toIndex(start)
	if a < 0 {
		a += len(r)
	}
	a = clamp(a, 0, len(r))
	n, err := optionalIndex(length, len(r)-a)
	if err != nil {
		return "", err
	}
	n = clamp(n, 0, len(r)-a)
	return string(r[a : a+n]), nil
}

func stringSlice(s string, start, end runtime.Value) (string, error) {
	r := runes(s)
	a, err := relativeIndex(start, len(r), 0)
	if err != nil {
		return "", err
	}
	b, err := relativeIndex(end, len(r), len(r))
	if err != nil {
		return "", err
	}
	if a >= b {
		return "", nil
	}
	return string(r[a:b]), nil
}

func (i *Interpreter) split(s string, sep runtime.Value, limit runtime.Value) (runtime.Value, error) {
	max := -1
	if _, ok := limit.(runtime.UndefinedValue); !ok {
		max = int(runtime.ToUint32(limit))
	}
	var parts []string
	switch x := sep.(type) {
	case runtime.UndefinedValue:
		parts = []string{s}
	case runtime.ObjectValue:
		if re, ok := x.AsObject().Internal.(*regexp.Regexp); ok {
			parts = re.Split(s, -1)
			break
		}
		str, err := runtime.StringOf(x)
		if err != nil {
			return nil, err
		}
		parts = splitString(s, str)
	default:
		parts = splitString(s, runtime.ToString(x))
	}
	if max >= 0 && len(parts) > max {
		parts = parts[:max]
	}
	elems := make([]runtime.Value, len(parts))
	for idx, p := range parts {
		elems[idx] = runtime.String(p)
	}
	return i.newArrayOf(elems), nil
}

func splitString(s, sep string) []string {
	if s == "" {
		if sep == "" {
			return nil
		}
		return []string{""}
	}
	if sep == "" {
		out := make([]string, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
	return strings.Split(s, sep)
}

func (i *Interpreter) installNumber() {
	proto := i.numberProto
	ctor := i.constructor("Number", 1, proto, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Number(0), nil
		}
		n, err := runtime.NumberOf(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.Number(n), nil
	}), func(args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(arg(args, 0))
		n := 0.0
		if len(args) > 0 {
			var err error
			if n, err = runtime.NumberOf(raw); err != nil {
				return nil, err
			}
		}
		return runtime.Wrap(i.newWrapper(runtime.ClassNumber, i.numberProto, runtime.Number(n), i.currentContext().PC), k), nil
	})
	for name, v := range map[string]float64{
		"MAX_VALUE":         math.MaxFloat64,
		"MIN_VALUE":         math.SmallestNonzeroFloat64,
		"NaN":               math.NaN(),
		"POSITIVE_INFINITY": math.Inf(1),
		"NEGATIVE_INFINITY": math.Inf(-1),
	} {
		ctor.DefineProperty(name, runtime.Property{Value: runtime.Number(v), Hidden: true, ReadOnly: true, Permanent: true})
	}

	proto.SetHidden("toString", AdaptMethod("toString", numberToString, i.functionProto))
	proto.SetHidden("toFixed", AdaptMethod("toFixed", func(n float64, digits float64) (string, error) {
		d := toIndex(digits)
		if d < 0 || d > 20 {
			return "", runtime.NewRangeError("toFixed() digits out of range")
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return runtime.NumberToString(n), nil
		}
		return strconv.FormatFloat(n, 'f', d, 64), nil
	}, i.functionProto))
	proto.SetHidden("valueOf", AdaptMethod("valueOf", func(n float64) float64 { return n }, i.functionProto))
}

func numberToString(n float64, radix runtime.Value) (string, error) {
	r, err := optionalIndex(radix, 10)
	if err != nil {
		return "", err
	}
	if r < 2 || r > 36 {
		return "", runtime.NewRangeError("radix must be between 2 and 36")
	}
	if r == 10 || math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return runtime.NumberToString(n), nil
	}
	return strconv.FormatInt(int64(n), r), nil
}

func (i *Interpreter) installBoolean() {
	proto := i.booleanProto
	i.constructor("Boolean", 1, proto, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(runtime.ToBoolean(arg(args, 0))), nil
	}), func(args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(arg(args, 0))
		b := runtime.Bool(runtime.ToBoolean(raw))
		return runtime.Wrap(i.newWrapper(runtime.ClassBoolean, i.booleanProto, b, i.currentContext().PC), k), nil
	})
	thisBoolean := func(this runtime.Value) (runtime.Value, error) {
		switch x := this.(type) {
		case runtime.BoolValue:
			return x, nil
		case runtime.ObjectValue:
			if b, ok := x.AsObject().Primitive.(runtime.BoolValue); ok {
				return b, nil
			}
		}
		return nil, runtime.NewTypeError("Boolean method called on %s", runtime.TypeOf(this))
	}
	i.method(proto, "valueOf", 0, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return thisBoolean(this)
	}))
	i.method(proto, "toString", 0, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		b, err := thisBoolean(this)
		if err != nil {
			return nil, err
		}
		return runtime.String(runtime.ToString(b)), nil
	}))
}

func (i *Interpreter) installMath() {
	m := runtime.NewObject(runtime.ClassMath, i.objectProto, i.lattice.Bottom())
	for name, v := range map[string]float64{
		"PI":      math.Pi,
		"E":       math.E,
		"LN2":     math.Ln2,
		"LN10":    math.Ln10,
		"LOG2E":   math.Log2E,
		"LOG10E":  math.Log10E,
		"SQRT2":   math.Sqrt2,
		"SQRT1_2": math.Sqrt2 / 2,
	} {
		m.DefineProperty(name, runtime.Property{Value: runtime.Number(v), Hidden: true, ReadOnly: true, Permanent: true})
	}
	for name, fn := range map[string]any{
		"abs":    math.Abs,
		"floor":  math.Floor,
		"ceil":   math.Ceil,
		"round":  func(x float64) float64 { return math.Floor(x + 0.5) },
		"sqrt":   math.Sqrt,
		"pow":    math.Pow,
		"exp":    math.Exp,
		"log":    math.Log,
		"sin":    math.Sin,
		"cos":    math.Cos,
		"tan":    math.Tan,
		"asin":   math.Asin,
		"acos":   math.Acos,
		"atan":   math.Atan,
		"atan2":  math.Atan2,
		"random": rand.Float64,
		"max":    mathMax,
		"min":    mathMin,
	} {
		m.SetHidden(name, Adapt(name, fn, i.functionProto))
	}
	i.global.SetHidden("Math", m)
}

func mathMax(values ...float64) float64 {
	out := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			return v
		}
		out = math.Max(out, v)
	}
	return out
}

func mathMin(values ...float64) float64 {
	out := math.Inf(1)
	for _, v := range values {
		if math.IsNaN(v) {
			return v
		}
		out = math.Min(out, v)
	}
	return out
}

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

func parseFloat(s string) float64 {
	match := floatPrefix.FindString(strings.TrimSpace(s))
	if match == "" {
		return math.NaN()
	}
	return runtime.StringToNumber(match)
}

func parseInt(s string, radix float64) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	r := toIndex(radix)
	if r == 0 || r == 16 {
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
			r = 16
		}
	}
	if r == 0 {
		r = 10
	}
	if r < 2 || r > 36 {
		return math.NaN()
	}
	result, digits := 0.0, 0
	for _, c := range strings.ToLower(s) {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		default:
			d = r
		}
		if d >= r {
			break
		}
		result = result*float64(r) + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * result
}
