package script

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// getMember reads key from v. Strings index by code point.
func (in *interp) getMember(v Value, key string, pos Pos) Value {
	switch x := v.(type) {
	case nil, nullValue:
		in.throw(pos, "TypeError", "Cannot read properties of %s (reading '%s')", ToString(v), key)
	case *Object:
		return x.props[key]
	case *Array:
		if key == "length" {
			return float64(len(x.Elems))
		}
		if idx, ok := arrayIndex(key); ok {
			if idx < len(x.Elems) {
				return x.Elems[idx]
			}
			return nil
		}
		return in.arrayMethod(x, key)
	case string:
		if key == "length" {
			return float64(utf8.RuneCountInString(x))
		}
		if idx, ok := arrayIndex(key); ok {
			runes := []rune(x)
			if idx < len(runes) {
				return string(runes[idx])
			}
			return nil
		}
		return in.stringMethod(x, key)
	case float64:
		return numberMethod(x, key)
	case bool:
		if key == "toString" {
			return method(key, func(*Call) (Value, error) { return ToString(x), nil })
		}
	case *Date:
		return dateMethod(x, key)
	case *RegExp:
		return regexpMember(x, key)
	case *NativeFunc:
		if key == "name" {
			return x.Name
		}
		return x.Props[key]
	case *Function:
		switch key {
		case "name":
			return x.decl.Name
		case "length":
			return float64(len(x.decl.Params))
		}
	}
	return nil
}

func (in *interp) setMember(v Value, key string, val Value, pos Pos) {
	switch x := v.(type) {
	case nil, nullValue:
		in.throw(pos, "TypeError", "Cannot set properties of %s (setting '%s')", ToString(v), key)
	case *Object:
		if x.frozen {
			in.throw(pos, "TypeError", "Cannot assign to read only property '%s' of object", key)
		}
		x.Set(key, val)
	case *Array:
		if key == "length" {
			n := ToNumber(val)
			if n < 0 || n != math.Trunc(n) {
				in.throw(pos, "RangeError", "Invalid array length")
			}
			in.checkArray(int(n), int(n)-len(x.Elems), pos)
			x.Elems = resize(x.Elems, int(n))
			return
		}
		idx, ok := arrayIndex(key)
		if !ok {
			in.throw(pos, "TypeError", "Cannot create property '%s' on array", key)
		}
		in.checkArray(idx+1, idx+1-len(x.Elems), pos)
		if idx >= len(x.Elems) {
			x.Elems = resize(x.Elems, idx+1)
		}
		x.Elems[idx] = val
	default:
		in.throw(pos, "TypeError", "Cannot create property '%s' on %s %s", key, TypeOf(v), describeValue(v))
	}
}

func resize(elems []Value, n int) []Value {
	if n <= len(elems) {
		return elems[:n]
	}
	return append(elems, make([]Value, n-len(elems))...)
}

func method(name string, fn func(c *Call) (Value, error)) *NativeFunc {
	return &NativeFunc{Name: name, Fn: fn}
}

// toInteger truncates toward zero; NaN becomes 0.
func toInteger(v Value) float64 {
	n := ToNumber(v)
	if math.IsNaN(n) {
		return 0
	}
	return math.Trunc(n)
}

// relIndex resolves a possibly negative position against length.
func relIndex(v Value, length int, fallback int) int {
	if v == nil {
		return fallback
	}
	n := toInteger(v)
	if n < 0 {
		n += float64(length)
		if n < 0 {
			n = 0
		}
	}
	if n > float64(length) {
		n = float64(length)
	}
	return int(n)
}

func (in *interp) callback(c *Call, fn Value, args ...Value) Value {
	if !isCallable(fn) {
		in.throw(c.Pos, "TypeError", "%s is not a function", describeValue(fn))
	}
	return in.call(fn, nil, args, c.Pos, "callback")
}

func (in *interp) arrayMethod(a *Array, key string) Value {
	switch key {
	case "push":
		return method(key, func(c *Call) (Value, error) {
			if err := c.CheckArray(len(a.Elems)+len(c.Args), len(c.Args)); err != nil {
				return nil, err
			}
			a.Elems = append(a.Elems, c.Args...)
			return float64(len(a.Elems)), nil
		})
	case "pop":
		return method(key, func(*Call) (Value, error) {
			if len(a.Elems) == 0 {
				return nil, nil
			}
			last := a.Elems[len(a.Elems)-1]
			a.Elems = a.Elems[:len(a.Elems)-1]
			return last, nil
		})
	case "shift":
		return method(key, func(*Call) (Value, error) {
			if len(a.Elems) == 0 {
				return nil, nil
			}
			first := a.Elems[0]
			a.Elems = append([]Value{}, a.Elems[1:]...)
			return first, nil
		})
	case "unshift":
		return method(key, func(c *Call) (Value, error) {
			if err := c.CheckArray(len(a.Elems)+len(c.Args), len(c.Args)); err != nil {
				return nil, err
			}
			a.Elems = append(append([]Value{}, c.Args...), a.Elems...)
			return float64(len(a.Elems)), nil
		})
	case "slice":
		return method(key, func(c *Call) (Value, error) {
			start := relIndex(c.Arg(0), len(a.Elems), 0)
			end := relIndex(c.Arg(1), len(a.Elems), len(a.Elems))
			if end < start {
				end = start
			}
			c.Charge((end - start) * SlotSize)
			return NewArray(append([]Value{}, a.Elems[start:end]...)...), nil
		})
	case "splice":
		return method(key, func(c *Call) (Value, error) {
			start := relIndex(c.Arg(0), len(a.Elems), 0)
			count := len(a.Elems) - start
			if len(c.Args) > 1 {
				count = int(math.Max(0, math.Min(toInteger(c.Args[1]), float64(count))))
			}
			removed := append([]Value{}, a.Elems[start:start+count]...)
			var insert []Value
			if len(c.Args) > 2 {
				insert = c.Args[2:]
			}
			if err := c.CheckArray(len(a.Elems)-count+len(insert), len(insert)); err != nil {
				return nil, err
			}
			rest := append(append([]Value{}, insert...), a.Elems[start+count:]...)
			a.Elems = append(a.Elems[:start], rest...)
			return NewArray(removed...), nil
		})
	case "concat":
		return method(key, func(c *Call) (Value, error) {
			out := append([]Value{}, a.Elems...)
			for _, arg := range c.Args {
				if other, ok := arg.(*Array); ok {
					out = append(out, other.Elems...)
				} else {
					out = append(out, arg)
				}
			}
			if err := c.CheckArray(len(out), len(out)); err != nil {
				return nil, err
			}
			return NewArray(out...), nil
		})
	case "join", "toString":
		return method(key, func(c *Call) (Value, error) {
			sep := ","
			if key == "join" && c.Arg(0) != nil {
				sep = ToString(c.Arg(0))
			}
			parts := make([]string, len(a.Elems))
			size := 0
			for i, e := range a.Elems {
				if !IsNullish(e) {
					parts[i] = ToString(e)
				}
				size += len(parts[i]) + len(sep)
			}
			if err := c.CheckString(size); err != nil {
				return nil, err
			}
			return strings.Join(parts, sep), nil
		})
	case "indexOf", "lastIndexOf", "includes":
		return method(key, func(c *Call) (Value, error) {
			target := c.Arg(0)
			if key == "lastIndexOf" {
				for i := len(a.Elems) - 1; i >= 0; i-- {
					if StrictEquals(a.Elems[i], target) {
						return float64(i), nil
					}
				}
				return float64(-1), nil
			}
			for i := relIndex(c.Arg(1), len(a.Elems), 0); i < len(a.Elems); i++ {
				e := a.Elems[i]
				if StrictEquals(e, target) || (key == "includes" && isNaNValue(e) && isNaNValue(target)) {
					if key == "includes" {
						return true, nil
					}
					return float64(i), nil
				}
			}
			if key == "includes" {
				return false, nil
			}
			return float64(-1), nil
		})
	case "at":
		return method(key, func(c *Call) (Value, error) {
			i := int(toInteger(c.Arg(0)))
			if i < 0 {
				i += len(a.Elems)
			}
			if i < 0 || i >= len(a.Elems) {
				return nil, nil
			}
			return a.Elems[i], nil
		})
	case "forEach":
		return method(key, func(c *Call) (Value, error) {
			for i := 0; i < len(a.Elems); i++ {
				in.callback(c, c.Arg(0), a.Elems[i], float64(i), a)
			}
			return nil, nil
		})
	case "map":
		return method(key, func(c *Call) (Value, error) {
			out := make([]Value, 0, len(a.Elems))
			for i := 0; i < len(a.Elems); i++ {
				out = append(out, in.callback(c, c.Arg(0), a.Elems[i], float64(i), a))
			}
			c.Charge(len(out) * SlotSize)
			return NewArray(out...), nil
		})
	case "filter":
		return method(key, func(c *Call) (Value, error) {
			out := []Value{}
			for i := 0; i < len(a.Elems); i++ {
				e := a.Elems[i]
				if Truthy(in.callback(c, c.Arg(0), e, float64(i), a)) {
					out = append(out, e)
				}
			}
			c.Charge(len(out) * SlotSize)
			return NewArray(out...), nil
		})
	case "find", "findIndex", "some", "every":
		return method(key, func(c *Call) (Value, error) {
			for i := 0; i < len(a.Elems); i++ {
				e := a.Elems[i]
				hit := Truthy(in.callback(c, c.Arg(0), e, float64(i), a))
				switch {
				case key == "every" && !hit:
					return false, nil
				case !hit:
					continue
				case key == "find":
					return e, nil
				case key == "findIndex":
					return float64(i), nil
				case key == "some":
					return true, nil
				}
			}
			switch key {
			case "findIndex":
				return float64(-1), nil
			case "some":
				return false, nil
			case "every":
				return true, nil
			}
			return nil, nil
		})
	case "reduce", "reduceRight":
		return method(key, func(c *Call) (Value, error) {
			idx := make([]int, len(a.Elems))
			for i := range idx {
				idx[i] = i
				if key == "reduceRight" {
					idx[i] = len(a.Elems) - 1 - i
				}
			}
			var acc Value
			if len(c.Args) > 1 {
				acc = c.Args[1]
			} else {
				if len(idx) == 0 {
					return nil, TypeError("Reduce of empty array with no initial value")
				}
				acc = a.Elems[idx[0]]
				idx = idx[1:]
			}
			for _, i := range idx {
				if i >= len(a.Elems) {
					continue
				}
				acc = in.callback(c, c.Arg(0), acc, a.Elems[i], float64(i), a)
			}
			return acc, nil
		})
	case "sort":
		return method(key, func(c *Call) (Value, error) {
			cmp := c.Arg(0)
			sort.SliceStable(a.Elems, func(i, j int) bool {
				x, y := a.Elems[i], a.Elems[j]
				if x == nil || y == nil {
					return y == nil && x != nil
				}
				if cmp != nil {
					return ToNumber(in.callback(c, cmp, x, y)) < 0
				}
				return ToString(x) < ToString(y)
			})
			return a, nil
		})
	case "reverse":
		return method(key, func(*Call) (Value, error) {
			for i, j := 0, len(a.Elems)-1; i < j; i, j = i+1, j-1 {
				a.Elems[i], a.Elems[j] = a.Elems[j], a.Elems[i]
			}
			return a, nil
		})
	case "flat":
		return method(key, func(c *Call) (Value, error) {
			depth := 1
			if c.Arg(0) != nil {
				depth = int(toInteger(c.Arg(0)))
			}
			out := flatten(a.Elems, depth, nil)
			if err := c.CheckArray(len(out), len(out)); err != nil {
				return nil, err
			}
			return NewArray(out...), nil
		})
	case "flatMap":
		return method(key, func(c *Call) (Value, error) {
			mapped := make([]Value, 0, len(a.Elems))
			for i := 0; i < len(a.Elems); i++ {
				mapped = append(mapped, in.callback(c, c.Arg(0), a.Elems[i], float64(i), a))
			}
			out := flatten(mapped, 1, nil)
			if err := c.CheckArray(len(out), len(out)); err != nil {
				return nil, err
			}
			return NewArray(out...), nil
		})
	case "fill":
		return method(key, func(c *Call) (Value, error) {
			start := relIndex(c.Arg(1), len(a.Elems), 0)
			end := relIndex(c.Arg(2), len(a.Elems), len(a.Elems))
			for i := start; i < end; i++ {
				a.Elems[i] = c.Arg(0)
			}
			return a, nil
		})
	}
	return nil
}

func flatten(elems []Value, depth int, out []Value) []Value {
	if out == nil {
		out = []Value{}
	}
	for _, e := range elems {
		if inner, ok := e.(*Array); ok && depth > 0 {
			out = flatten(inner.Elems, depth-1, out)
			continue
		}
		out = append(out, e)
	}
	return out
}

func isNaNValue(v Value) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

func (in *interp) stringMethod(s string, key string) Value {
	runes := func() []rune { return []rune(s) }

	switch key {
	case "charAt", "at":
		return method(key, func(c *Call) (Value, error) {
			r := runes()
			i := int(toInteger(c.Arg(0)))
			if key == "at" && i < 0 {
				i += len(r)
			}
			if i < 0 || i >= len(r) {
				if key == "at" {
					return nil, nil
				}
				return "", nil
			}
			return string(r[i]), nil
		})
	case "charCodeAt":
		return method(key, func(c *Call) (Value, error) {
			r := runes()
			i := int(toInteger(c.Arg(0)))
			if i < 0 || i >= len(r) {
				return math.NaN(), nil
			}
			return float64(r[i]), nil
		})
	case "indexOf", "lastIndexOf", "includes", "startsWith", "endsWith":
		return method(key, func(c *Call) (Value, error) {
			needle := ToString(c.Arg(0))
			switch key {
			case "includes":
				return strings.Contains(s, needle), nil
			case "startsWith":
				r := runes()
				from := relIndex(c.Arg(1), len(r), 0)
				return strings.HasPrefix(string(r[from:]), needle), nil
			case "endsWith":
				r := runes()
				end := relIndex(c.Arg(1), len(r), len(r))
				return strings.HasSuffix(string(r[:end]), needle), nil
			case "lastIndexOf":
				i := strings.LastIndex(s, needle)
				if i < 0 {
					return float64(-1), nil
				}
				return float64(utf8.RuneCountInString(s[:i])), nil
			}
			r := runes()
			from := relIndex(c.Arg(1), len(r), 0)
			i := strings.Index(string(r[from:]), needle)
			if i < 0 {
				return float64(-1), nil
			}
			return float64(from + utf8.RuneCountInString(string(r[from:])[:i])), nil
		})
	case "slice", "substring", "substr":
		return method(key, func(c *Call) (Value, error) {
			r := runes()
			switch key {
			case "substring":
				start := clampInt(toInteger(c.Arg(0)), len(r))
				end := len(r)
				if c.Arg(1) != nil {
					end = clampInt(toInteger(c.Arg(1)), len(r))
				}
				if start > end {
					start, end = end, start
				}
				return c.Text(string(r[start:end]))
			case "substr":
				start := relIndex(c.Arg(0), len(r), 0)
				n := len(r) - start
				if c.Arg(1) != nil {
					n = clampInt(toInteger(c.Arg(1)), n)
				}
				return c.Text(string(r[start : start+n]))
			}
			start := relIndex(c.Arg(0), len(r), 0)
			end := relIndex(c.Arg(1), len(r), len(r))
			if end < start {
				return "", nil
			}
			return c.Text(string(r[start:end]))
		})
	case "toUpperCase", "toLocaleUpperCase":
		return method(key, func(c *Call) (Value, error) { return c.Text(strings.ToUpper(s)) })
	case "toLowerCase", "toLocaleLowerCase":
		return method(key, func(c *Call) (Value, error) { return c.Text(strings.ToLower(s)) })
	case "trim":
		return method(key, func(*Call) (Value, error) { return strings.TrimSpace(s), nil })
	case "trimStart":
		return method(key, func(*Call) (Value, error) { return strings.TrimLeft(s, " \t\n\r\v\f"), nil })
	case "trimEnd":
		return method(key, func(*Call) (Value, error) { return strings.TrimRight(s, " \t\n\r\v\f"), nil })
	case "toString", "valueOf":
		return method(key, func(*Call) (Value, error) { return s, nil })
	case "concat":
		return method(key, func(c *Call) (Value, error) {
			var sb strings.Builder
			sb.WriteString(s)
			for _, a := range c.Args {
				sb.WriteString(ToString(a))
			}
			if err := c.CheckString(sb.Len()); err != nil {
				return nil, err
			}
			return sb.String(), nil
		})
	case "repeat":
		return method(key, func(c *Call) (Value, error) {
			n := toInteger(c.Arg(0))
			if n < 0 || math.IsInf(n, 0) {
				return nil, RangeError("Invalid count value: %s", ToString(c.Arg(0)))
			}
			if err := c.CheckString(len(s) * int(n)); err != nil {
				return nil, err
			}
			return strings.Repeat(s, int(n)), nil
		})
	case "padStart", "padEnd":
		return method(key, func(c *Call) (Value, error) {
			target := int(toInteger(c.Arg(0)))
			if err := c.CheckString(target); err != nil {
				return nil, err
			}
			pad := " "
			if c.Arg(1) != nil {
				pad = ToString(c.Arg(1))
			}
			have := utf8.RuneCountInString(s)
			if target <= have || pad == "" {
				return s, nil
			}
			fill := []rune(strings.Repeat(pad, (target-have)/utf8.RuneCountInString(pad)+1))[:target-have]
			if key == "padStart" {
				return string(fill) + s, nil
			}
			return s + string(fill), nil
		})
	case "split":
		return method(key, func(c *Call) (Value, error) {
			limit := -1
			if c.Arg(1) != nil {
				limit = int(toInteger(c.Arg(1)))
			}
			var parts []string
			switch sep := c.Arg(0).(type) {
			case nil:
				parts = []string{s}
			case *RegExp:
				parts = sep.re.Split(s, -1)
			default:
				sepText := ToString(sep)
				if sepText == "" {
					for _, r := range s {
						parts = append(parts, string(r))
					}
				} else {
					parts = strings.Split(s, sepText)
				}
			}
			if limit >= 0 && limit < len(parts) {
				parts = parts[:limit]
			}
			if err := c.CheckArray(len(parts), len(parts)); err != nil {
				return nil, err
			}
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return NewArray(out...), nil
		})
	case "replace", "replaceAll":
		return method(key, func(c *Call) (Value, error) {
			out, err := in.replace(c, s, c.Arg(0), c.Arg(1), key == "replaceAll")
			if err != nil {
				return nil, err
			}
			if err := c.CheckString(len(out)); err != nil {
				return nil, err
			}
			return out, nil
		})
	case "match":
		return method(key, func(c *Call) (Value, error) {
			re, ok := c.Arg(0).(*RegExp)
			if !ok {
				var err error
				if re, err = NewRegExp(regexpQuote(ToString(c.Arg(0))), ""); err != nil {
					return nil, err
				}
			}
			if re.Global() {
				all := re.re.FindAllString(s, -1)
				if all == nil {
					return Null, nil
				}
				if err := c.CheckArray(len(all), len(all)); err != nil {
					return nil, err
				}
				out := make([]Value, len(all))
				for i, m := range all {
					out[i] = m
				}
				return NewArray(out...), nil
			}
			return execRegExp(re, s), nil
		})
	case "localeCompare":
		return method(key, func(c *Call) (Value, error) {
			return float64(strings.Compare(s, ToString(c.Arg(0)))), nil
		})
	}
	return nil
}

func clampInt(n float64, max int) int {
	if n < 0 {
		return 0
	}
	if n > float64(max) {
		return max
	}
	return int(n)
}

func regexpQuote(s string) string {
	const special = `\.+*?()|[]{}^$`
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// replace implements String.prototype.replace and replaceAll. Replacement
// strings understand $& and $1..$9; functions receive the match, the groups
// and the match offset.
func (in *interp) replace(c *Call, s string, pattern, replacement Value, all bool) (string, error) {
	re, isRegexp := pattern.(*RegExp)
	if !isRegexp {
		var err error
		re, err = NewRegExp(regexpQuote(ToString(pattern)), "")
		if err != nil {
			return "", err
		}
	}
	global := all || (isRegexp && re.Global())
	if all && isRegexp && !re.Global() {
		return "", TypeError("replaceAll must be called with a global RegExp")
	}

	n := 1
	if global {
		n = -1
	}
	matches := re.re.FindAllStringSubmatchIndex(s, n)
	if len(matches) == 0 {
		return s, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		if isCallable(replacement) {
			args := []Value{s[m[0]:m[1]]}
			for g := 1; g < len(m)/2; g++ {
				if m[2*g] < 0 {
					args = append(args, nil)
				} else {
					args = append(args, s[m[2*g]:m[2*g+1]])
				}
			}
			args = append(args, float64(utf8.RuneCountInString(s[:m[0]])), s)
			sb.WriteString(ToString(in.callback(c, replacement, args...)))
		} else {
			sb.WriteString(expandReplacement(ToString(replacement), s, m, isRegexp))
		}
		last = m[1]
	}
	sb.WriteString(s[last:])
	return sb.String(), nil
}

func isCallable(v Value) bool {
	switch v.(type) {
	case *Function, *NativeFunc:
		return true
	}
	return false
}

func expandReplacement(tmpl, s string, m []int, groups bool) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		if ch != '$' || i+1 >= len(tmpl) {
			sb.WriteByte(ch)
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i++
		case next == '&':
			sb.WriteString(s[m[0]:m[1]])
			i++
		case groups && next >= '1' && next <= '9':
			g := int(next - '0')
			if g < len(m)/2 {
				if m[2*g] >= 0 {
					sb.WriteString(s[m[2*g]:m[2*g+1]])
				}
				i++
			} else {
				sb.WriteByte(ch)
			}
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

func execRegExp(re *RegExp, s string) Value {
	m := re.re.FindStringSubmatchIndex(s)
	if m == nil {
		return Null
	}
	out := make([]Value, len(m)/2)
	for g := range out {
		if m[2*g] >= 0 {
			out[g] = s[m[2*g]:m[2*g+1]]
		}
	}
	return NewArray(out...)
}

func regexpMember(re *RegExp, key string) Value {
	switch key {
	case "source":
		return re.Source
	case "flags":
		return re.Flags
	case "global":
		return re.Global()
	case "test":
		return method(key, func(c *Call) (Value, error) {
			return re.re.MatchString(ToString(c.Arg(0))), nil
		})
	case "exec":
		return method(key, func(c *Call) (Value, error) {
			return execRegExp(re, ToString(c.Arg(0))), nil
		})
	case "toString":
		return method(key, func(*Call) (Value, error) { return ToString(re), nil })
	}
	return nil
}

func numberMethod(n float64, key string) Value {
	switch key {
	case "toFixed":
		return method(key, func(c *Call) (Value, error) {
			digits := int(toInteger(c.Arg(0)))
			if digits < 0 || digits > 100 {
				return nil, RangeError("toFixed() digits argument must be between 0 and 100")
			}
			if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) >= 1e21 {
				return numberToString(n), nil
			}
			return strconv.FormatFloat(n, 'f', digits, 64), nil
		})
	case "toString":
		return method(key, func(c *Call) (Value, error) {
			radix := 10
			if c.Arg(0) != nil {
				radix = int(toInteger(c.Arg(0)))
			}
			if radix < 2 || radix > 36 {
				return nil, RangeError("toString() radix must be between 2 and 36")
			}
			if radix != 10 && n == math.Trunc(n) && math.Abs(n) < 1<<53 {
				return strconv.FormatInt(int64(n), radix), nil
			}
			return numberToString(n), nil
		})
	case "toLocaleString", "valueOf":
		return method(key, func(*Call) (Value, error) {
			if key == "valueOf" {
				return n, nil
			}
			return numberToString(n), nil
		})
	}
	return nil
}

func dateMethod(d *Date, key string) Value {
	field := func(get func() float64) *NativeFunc {
		return method(key, func(*Call) (Value, error) {
			if !d.Valid {
				return math.NaN(), nil
			}
			return get(), nil
		})
	}
	switch key {
	case "getTime", "valueOf":
		return field(d.Millis)
	case "getFullYear":
		return field(func() float64 { return float64(d.T.Year()) })
	case "getMonth":
		return field(func() float64 { return float64(d.T.Month() - 1) })
	case "getDate":
		return field(func() float64 { return float64(d.T.Day()) })
	case "getDay":
		return field(func() float64 { return float64(d.T.Weekday()) })
	case "getHours":
		return field(func() float64 { return float64(d.T.Hour()) })
	case "getMinutes":
		return field(func() float64 { return float64(d.T.Minute()) })
	case "getSeconds":
		return field(func() float64 { return float64(d.T.Second()) })
	case "getMilliseconds":
		return field(func() float64 { return float64(d.T.Nanosecond() / 1e6) })
	case "toISOString", "toJSON":
		return method(key, func(*Call) (Value, error) {
			if !d.Valid {
				if key == "toJSON" {
					return Null, nil
				}
				return nil, RangeError("Invalid time value")
			}
			return d.ISO(), nil
		})
	case "toString":
		return method(key, func(*Call) (Value, error) { return ToString(d), nil })
	case "toLocaleDateString", "toLocaleString", "toLocaleTimeString":
		return method(key, func(*Call) (Value, error) {
			if !d.Valid {
				return "Invalid Date", nil
			}
			switch key {
			case "toLocaleDateString":
				return d.T.Format("1/2/2006"), nil
			case "toLocaleTimeString":
				return d.T.Format("3:04:05 PM"), nil
			}
			return d.T.Format("1/2/2006, 3:04:05 PM"), nil
		})
	}
	return nil
}
