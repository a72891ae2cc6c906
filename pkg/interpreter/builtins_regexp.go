package interpreter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"flowjs/interpreter-go/pkg/lattice"
	"flowjs/interpreter-go/pkg/runtime"
)

// RegExp objects are backed by Go's RE2 engine. Backreferences and
// lookaround are rejected as syntax errors.

func (i *Interpreter) installRegExp() {
	proto := i.regexpProto
	create := func(args []runtime.Value) (runtime.Value, error) {
		raw, k := runtime.Unlabel(arg(args, 0))
		flagsRaw, kf := runtime.Unlabel(arg(args, 1))
		k = lattice.Join(k, kf)
		if obj, ok := raw.(runtime.ObjectValue); ok && obj.AsObject().Class == runtime.ClassRegExp {
			if _, none := flagsRaw.(runtime.UndefinedValue); none {
				flags := regexpFlags(obj.AsObject())
				source, _ := obj.AsObject().Get("source")
				return i.labeledRegExp(runtime.ToString(source), flags, k)
			}
			raw, _ = obj.AsObject().Get("source")
		}
		pattern := ""
		if _, none := raw.(runtime.UndefinedValue); !none {
			s, err := runtime.StringOf(raw)
			if err != nil {
				return nil, err
			}
			pattern = s
		}
		flags := ""
		if _, none := flagsRaw.(runtime.UndefinedValue); !none {
			s, err := runtime.StringOf(flagsRaw)
			if err != nil {
				return nil, err
			}
			flags = s
		}
		return i.labeledRegExp(pattern, flags, k)
	}
	i.constructor("RegExp", 2, proto, func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return create(args)
	}, create)

	i.method(proto, "exec", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		re, err := thisRegExp(this, "exec")
		if err != nil {
			return nil, err
		}
		s, err := runtime.StringOf(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return i.regexpExec(re, s)
	}))
	i.method(proto, "test", 1, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		re, err := thisRegExp(this, "test")
		if err != nil {
			return nil, err
		}
		s, err := runtime.StringOf(arg(args, 0))
		if err != nil {
			return nil, err
		}
		result, err := i.regexpExec(re, s)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(result != runtime.Null), nil
	}))
	i.method(proto, "toString", 0, lift(func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		re, err := thisRegExp(this, "toString")
		if err != nil {
			return nil, err
		}
		return runtime.String(regexpSource(re)), nil
	}))

	i.method(i.stringProto, "match", 1, lift(i.stringMatch))
	i.method(i.stringProto, "search", 1, lift(i.stringSearch))
	i.method(i.stringProto, "replace", 2, i.stringReplace)
}

func (i *Interpreter) labeledRegExp(pattern, flags string, k lattice.Label) (runtime.Value, error) {
	re, err := i.newRegExp(pattern, flags, i.currentContext().PC)
	if err != nil {
		return nil, err
	}
	return runtime.Wrap(re, k), nil
}

// newRegExp compiles pattern with the flags g, i and m.
func (i *Interpreter) newRegExp(pattern, flags string, pc lattice.Label) (runtime.Value, error) {
	prefix := ""
	for _, f := range flags {
		switch f {
		case 'g':
		case 'i':
			prefix += "i"
		case 'm':
			prefix += "m"
		default:
			return nil, runtime.NewSyntaxError("invalid regular expression flag %c", f)
		}
	}
	expr := pattern
	if prefix != "" {
		expr = "(?" + prefix + ")" + pattern
	}
	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, runtime.NewSyntaxError("invalid regular expression /%s/: %s", pattern, err)
	}
	obj := runtime.NewObject(runtime.ClassRegExp, i.regexpProto, pc)
	obj.Internal = compiled
	obj.DefineProperty("source", runtime.Property{Value: runtime.String(pattern), Hidden: true, ReadOnly: true})
	obj.DefineProperty("global", runtime.Property{Value: runtime.Bool(strings.ContainsRune(flags, 'g')), Hidden: true, ReadOnly: true})
	obj.DefineProperty("ignoreCase", runtime.Property{Value: runtime.Bool(strings.ContainsRune(flags, 'i')), Hidden: true, ReadOnly: true})
	obj.DefineProperty("multiline", runtime.Property{Value: runtime.Bool(strings.ContainsRune(flags, 'm')), Hidden: true, ReadOnly: true})
	obj.DefineProperty("lastIndex", runtime.Property{Value: runtime.Number(0), Hidden: true})
	return obj, nil
}

func thisRegExp(this runtime.Value, name string) (*runtime.Object, error) {
	if obj, ok := this.(runtime.ObjectValue); ok {
		if _, ok := obj.AsObject().Internal.(*regexp.Regexp); ok {
			return obj.AsObject(), nil
		}
	}
	return nil, runtime.NewTypeError("RegExp.prototype.%s called on %s", name, runtime.TypeOf(this))
}

func flag(re *runtime.Object, name string) bool {
	v, _ := re.Get(name)
	raw, _ := runtime.Unlabel(v)
	return runtime.ToBoolean(raw)
}

func regexpFlags(re *runtime.Object) string {
	var b strings.Builder
	if flag(re, "global") {
		b.WriteByte('g')
	}
	if flag(re, "ignoreCase") {
		b.WriteByte('i')
	}
	if flag(re, "multiline") {
		b.WriteByte('m')
	}
	return b.String()
}

func regexpSource(re *runtime.Object) string {
	source, _ := re.Get("source")
	return "/" + runtime.ToString(source) + "/" + regexpFlags(re)
}

// byteOffset converts a character position in s into a byte offset.
func byteOffset(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	count := 0
	for offset := range s {
		if count == pos {
			return offset
		}
		count++
	}
	return len(s)
}

// regexpExec matches from lastIndex for global patterns, updating it, and
// from the start otherwise. It returns the match array or null.
func (i *Interpreter) regexpExec(re *runtime.Object, s string) (runtime.Value, error) {
	compiled := re.Internal.(*regexp.Regexp)
	global := flag(re, "global")
	start := 0
	if global {
		if err := i.guardWrite(re, "lastIndex"); err != nil {
			return nil, err
		}
		last, err := re.Get("lastIndex")
		if err != nil {
			return nil, err
		}
		li, err := optionalIndex(last, 0)
		if err != nil {
			return nil, err
		}
		if li < 0 || li > utf8.RuneCountInString(s) {
			return runtime.Null, re.Put("lastIndex", runtime.Number(0))
		}
		start = byteOffset(s, li)
	}
	loc := compiled.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		if global {
			return runtime.Null, re.Put("lastIndex", runtime.Number(0))
		}
		return runtime.Null, nil
	}
	elems := make([]runtime.Value, len(loc)/2)
	for j := range elems {
		if loc[2*j] < 0 {
			elems[j] = runtime.Undefined
			continue
		}
		elems[j] = runtime.String(s[start+loc[2*j] : start+loc[2*j+1]])
	}
	arr := i.newArrayOf(elems)
	arr.Set("index", runtime.Number(float64(utf8.RuneCountInString(s[:start+loc[0]]))))
	arr.Set("input", runtime.String(s))
	if global {
		end := start + loc[1]
		if loc[1] == loc[0] && end < len(s) {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		if err := re.Put("lastIndex", runtime.Number(float64(utf8.RuneCountInString(s[:end])))); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// toRegExp accepts a RegExp object or compiles a string pattern.
func (i *Interpreter) toRegExp(v runtime.Value) (*runtime.Object, error) {
	if re, err := thisRegExp(v, ""); err == nil {
		return re, nil
	}
	pattern := ""
	if _, none := v.(runtime.UndefinedValue); !none {
		s, err := runtime.StringOf(v)
		if err != nil {
			return nil, err
		}
		pattern = s
	}
	re, err := i.newRegExp(pattern, "", i.currentContext().PC)
	if err != nil {
		return nil, err
	}
	return re.(*runtime.Object), nil
}

func (i *Interpreter) stringMatch(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.StringOf(this)
	if err != nil {
		return nil, err
	}
	re, err := i.toRegExp(arg(args, 0))
	if err != nil {
		return nil, err
	}
	if !flag(re, "global") {
		return i.regexpExec(re, s)
	}
	matches := re.Internal.(*regexp.Regexp).FindAllString(s, -1)
	if matches == nil {
		return runtime.Null, nil
	}
	elems := make([]runtime.Value, len(matches))
	for idx, m := range matches {
		elems[idx] = runtime.String(m)
	}
	return i.newArrayOf(elems), nil
}

func (i *Interpreter) stringSearch(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.StringOf(this)
	if err != nil {
		return nil, err
	}
	re, err := i.toRegExp(arg(args, 0))
	if err != nil {
		return nil, err
	}
	loc := re.Internal.(*regexp.Regexp).FindStringIndex(s)
	if loc == nil {
		return runtime.Number(-1), nil
	}
	return runtime.Number(float64(utf8.RuneCountInString(s[:loc[0]]))), nil
}

// stringReplace substitutes the first match, or every match for a global
// pattern. A function replacement runs at a pc raised by the labels of
// the receiver and the arguments.
func (i *Interpreter) stringReplace(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	k := joinLabels(append([]runtime.Value{this}, args...)...)
	rawThis, _ := runtime.Unlabel(this)
	s, err := runtime.StringOf(rawThis)
	if err != nil {
		return nil, err
	}
	pattern, _ := runtime.Unlabel(arg(args, 0))
	replacement, _ := runtime.Unlabel(arg(args, 1))

	var (
		compiled *regexp.Regexp
		global   bool
	)
	if re, err := thisRegExp(pattern, "replace"); err == nil {
		compiled = re.Internal.(*regexp.Regexp)
		global = flag(re, "global")
	} else {
		literal, err := runtime.StringOf(pattern)
		if err != nil {
			return nil, err
		}
		compiled = regexp.MustCompile(regexp.QuoteMeta(literal))
	}

	fn, isFunc := replacement.(runtime.Callable)
	template := ""
	if !isFunc {
		if template, err = runtime.StringOf(replacement); err != nil {
			return nil, err
		}
	}

	limit := 1
	if global {
		limit = -1
	}
	var b strings.Builder
	last := 0
	for _, loc := range compiled.FindAllStringSubmatchIndex(s, limit) {
		b.WriteString(s[last:loc[0]])
		if isFunc {
			callArgs := make([]runtime.Value, 0, len(loc)/2+2)
			for j := 0; j < len(loc); j += 2 {
				if loc[j] < 0 {
					callArgs = append(callArgs, runtime.Undefined)
				} else {
					callArgs = append(callArgs, runtime.String(s[loc[j]:loc[j+1]]))
				}
			}
			callArgs = append(callArgs, runtime.Number(float64(utf8.RuneCountInString(s[:loc[0]]))), runtime.String(s))
			result, err := i.invokeAt(k, fn, runtime.Undefined, callArgs)
			if err != nil {
				return nil, err
			}
			raw, kr := runtime.Unlabel(result)
			k = lattice.Join(k, kr)
			str, err := runtime.StringOf(raw)
			if err != nil {
				return nil, err
			}
			b.WriteString(str)
		} else {
			b.WriteString(expandReplacement(template, s, loc))
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return runtime.Wrap(runtime.String(b.String()), k), nil
}

// expandReplacement substitutes $&, $1..$99 and $$ in template.
func expandReplacement(template, s string, loc []int) string {
	var b strings.Builder
	for idx := 0; idx < len(template); idx++ {
		c := template[idx]
		if c != '$' || idx+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		next := template[idx+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			idx++
		case next == '&':
			b.WriteString(s[loc[0]:loc[1]])
			idx++
		case next >= '0' && next <= '9':
			end := idx + 2
			if end < len(template) && template[end] >= '0' && template[end] <= '9' {
				end++
			}
			group, _ := strconv.Atoi(template[idx+1 : end])
			if group == 0 || 2*group+1 >= len(loc) {
				b.WriteByte(c)
				continue
			}
			if loc[2*group] >= 0 {
				b.WriteString(s[loc[2*group]:loc[2*group+1]])
			}
			idx = end - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
