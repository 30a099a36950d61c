package sandbox

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-uibuilder/pkg/sandbox/script"
)

// globals builds the closed binding table for one execution. Nothing is
// shared between runs.
func (e *Executor) globals(logger logrus.FieldLogger, input map[string]any) *script.Env {
	env := script.NewEnv(nil)

	env.Define("console", consoleObject(logger))
	env.Define("Math", mathObject())
	env.Define("JSON", jsonObject())
	env.Define("String", stringFunc())
	env.Define("Number", numberFunc())
	env.Define("Boolean", native("Boolean", func(c *script.Call) (script.Value, error) {
		return script.Truthy(c.Arg(0)), nil
	}))
	env.Define("Array", arrayFunc())
	env.Define("Object", objectFunc())
	env.Define("Date", e.dateFunc())
	env.Define("RegExp", regexpFunc())
	for _, name := range []string{"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError"} {
		env.Define(name, errorFunc(name))
	}
	env.Define("parseInt", native("parseInt", parseIntNative))
	env.Define("parseFloat", native("parseFloat", parseFloatNative))
	env.Define("isNaN", native("isNaN", func(c *script.Call) (script.Value, error) {
		return math.IsNaN(script.ToNumber(c.Arg(0))), nil
	}))
	env.Define("isFinite", native("isFinite", func(c *script.Call) (script.Value, error) {
		n := script.ToNumber(c.Arg(0))
		return !math.IsNaN(n) && !math.IsInf(n, 0), nil
	}))
	env.DefineConst("NaN", math.NaN())
	env.DefineConst("Infinity", math.Inf(1))

	for _, name := range blockedNames {
		env.DefineConst(name, nil)
	}

	values := script.NewObject()
	if in, ok := script.FromGo(input).(*script.Object); ok {
		values = in
	}
	// Keys that collide with a binding stay reachable only through values.
	for _, key := range values.Keys() {
		if _, taken := env.Lookup(key); taken || !isIdentifier(key) {
			continue
		}
		v, _ := values.Get(key)
		env.Define(key, v)
	}
	if _, ok := values.Get("values"); !ok {
		env.Define("values", values)
	}
	return env
}

func native(name string, fn func(c *script.Call) (script.Value, error)) *script.NativeFunc {
	return &script.NativeFunc{Name: name, Fn: fn}
}

func frozen(props map[string]script.Value, order ...string) *script.Object {
	obj := script.NewObject()
	for _, k := range order {
		obj.Set(k, props[k])
	}
	obj.Freeze()
	return obj
}

// inspect renders a console argument: strings verbatim, structures as JSON.
func inspect(v script.Value) string {
	switch v.(type) {
	case *script.Object, *script.Array:
		if s, err := script.Stringify(v, ""); err == nil {
			return s
		}
	}
	return script.ToString(v)
}

func consoleObject(logger logrus.FieldLogger) *script.Object {
	entry := func(name string, log func(args ...any)) *script.NativeFunc {
		return native(name, func(c *script.Call) (script.Value, error) {
			parts := make([]string, len(c.Args))
			for i, a := range c.Args {
				parts[i] = inspect(a)
			}
			log(strings.Join(parts, " "))
			return nil, nil
		})
	}
	return frozen(map[string]script.Value{
		"log":   entry("log", logger.Info),
		"info":  entry("info", logger.Info),
		"warn":  entry("warn", logger.Warn),
		"error": entry("error", logger.Error),
		"debug": entry("debug", logger.Debug),
	}, "log", "info", "warn", "error", "debug")
}

func mathObject() *script.Object {
	unary := func(name string, fn func(float64) float64) *script.NativeFunc {
		return native(name, func(c *script.Call) (script.Value, error) {
			return fn(script.ToNumber(c.Arg(0))), nil
		})
	}
	extreme := func(name string, start float64, better func(a, b float64) bool) *script.NativeFunc {
		return native(name, func(c *script.Call) (script.Value, error) {
			out := start
			for _, a := range c.Args {
				n := script.ToNumber(a)
				if math.IsNaN(n) {
					return math.NaN(), nil
				}
				if better(n, out) {
					out = n
				}
			}
			return out, nil
		})
	}

	props := map[string]script.Value{
		"PI":    math.Pi,
		"E":     math.E,
		"LN2":   math.Ln2,
		"LN10":  math.Ln10,
		"SQRT2": math.Sqrt2,
		"abs":   unary("abs", math.Abs),
		"ceil":  unary("ceil", math.Ceil),
		"floor": unary("floor", math.Floor),
		"round": unary("round", func(x float64) float64 { return math.Floor(x + 0.5) }),
		"trunc": unary("trunc", math.Trunc),
		"sign": unary("sign", func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			}
			return x
		}),
		"sqrt":  unary("sqrt", math.Sqrt),
		"cbrt":  unary("cbrt", math.Cbrt),
		"exp":   unary("exp", math.Exp),
		"log":   unary("log", math.Log),
		"log2":  unary("log2", math.Log2),
		"log10": unary("log10", math.Log10),
		"sin":   unary("sin", math.Sin),
		"cos":   unary("cos", math.Cos),
		"tan":   unary("tan", math.Tan),
		"pow": native("pow", func(c *script.Call) (script.Value, error) {
			return math.Pow(script.ToNumber(c.Arg(0)), script.ToNumber(c.Arg(1))), nil
		}),
		"atan2": native("atan2", func(c *script.Call) (script.Value, error) {
			return math.Atan2(script.ToNumber(c.Arg(0)), script.ToNumber(c.Arg(1))), nil
		}),
		"hypot": native("hypot", func(c *script.Call) (script.Value, error) {
			sum := 0.0
			for _, a := range c.Args {
				n := script.ToNumber(a)
				sum += n * n
			}
			return math.Sqrt(sum), nil
		}),
		"max":    extreme("max", math.Inf(-1), func(a, b float64) bool { return a > b }),
		"min":    extreme("min", math.Inf(1), func(a, b float64) bool { return a < b }),
		"random": native("random", func(*script.Call) (script.Value, error) { return rand.Float64(), nil }),
	}
	return frozen(props,
		"PI", "E", "LN2", "LN10", "SQRT2", "abs", "ceil", "floor", "round", "trunc", "sign",
		"sqrt", "cbrt", "exp", "log", "log2", "log10", "sin", "cos", "tan", "pow", "atan2",
		"hypot", "max", "min", "random")
}

func jsonObject() *script.Object {
	props := map[string]script.Value{
		"stringify": native("stringify", func(c *script.Call) (script.Value, error) {
			v := c.Arg(0)
			if !script.Encodable(v) {
				return nil, nil
			}
			out, err := script.Stringify(v, jsonIndent(c.Arg(2)))
			if err != nil {
				return nil, err
			}
			if err := c.CheckString(len(out)); err != nil {
				return nil, err
			}
			return out, nil
		}),
		"parse": native("parse", func(c *script.Call) (script.Value, error) {
			text := script.ToString(c.Arg(0))
			c.Charge(len(text) * script.SlotSize)
			return script.ParseJSON(text)
		}),
	}
	return frozen(props, "stringify", "parse")
}

func jsonIndent(space script.Value) string {
	switch s := space.(type) {
	case float64:
		n := int(math.Min(10, math.Max(0, s)))
		return strings.Repeat(" ", n)
	case string:
		if len(s) > 10 {
			return s[:10]
		}
		return s
	}
	return ""
}

func stringFunc() *script.NativeFunc {
	return &script.NativeFunc{
		Name: "String",
		Fn: func(c *script.Call) (script.Value, error) {
			if len(c.Args) == 0 {
				return "", nil
			}
			return script.ToString(c.Args[0]), nil
		},
		Props: map[string]script.Value{
			"fromCharCode": native("fromCharCode", func(c *script.Call) (script.Value, error) {
				var sb strings.Builder
				for _, a := range c.Args {
					sb.WriteRune(rune(int(script.ToNumber(a))))
				}
				return sb.String(), nil
			}),
		},
	}
}

func numberFunc() *script.NativeFunc {
	isInteger := func(v script.Value) bool {
		n, ok := v.(float64)
		return ok && !math.IsInf(n, 0) && n == math.Trunc(n)
	}
	return &script.NativeFunc{
		Name: "Number",
		Fn: func(c *script.Call) (script.Value, error) {
			if len(c.Args) == 0 {
				return 0.0, nil
			}
			return script.ToNumber(c.Args[0]), nil
		},
		Props: map[string]script.Value{
			"MAX_SAFE_INTEGER":  float64(1<<53 - 1),
			"MIN_SAFE_INTEGER":  -float64(1<<53 - 1),
			"EPSILON":           math.Nextafter(1, 2) - 1,
			"MAX_VALUE":         math.MaxFloat64,
			"POSITIVE_INFINITY": math.Inf(1),
			"NEGATIVE_INFINITY": math.Inf(-1),
			"NaN":               math.NaN(),
			"isInteger": native("isInteger", func(c *script.Call) (script.Value, error) {
				return isInteger(c.Arg(0)), nil
			}),
			"isSafeInteger": native("isSafeInteger", func(c *script.Call) (script.Value, error) {
				n, _ := c.Arg(0).(float64)
				return isInteger(c.Arg(0)) && math.Abs(n) <= 1<<53-1, nil
			}),
			"isFinite": native("isFinite", func(c *script.Call) (script.Value, error) {
				n, ok := c.Arg(0).(float64)
				return ok && !math.IsNaN(n) && !math.IsInf(n, 0), nil
			}),
			"isNaN": native("isNaN", func(c *script.Call) (script.Value, error) {
				n, ok := c.Arg(0).(float64)
				return ok && math.IsNaN(n), nil
			}),
			"parseFloat": native("parseFloat", parseFloatNative),
			"parseInt":   native("parseInt", parseIntNative),
		},
	}
}

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

func parseFloatNative(c *script.Call) (script.Value, error) {
	s := strings.TrimSpace(script.ToString(c.Arg(0)))
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN(), nil
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN(), nil
	}
	return n, nil
}

func parseIntNative(c *script.Call) (script.Value, error) {
	s := strings.TrimSpace(script.ToString(c.Arg(0)))
	radix := int(script.ToNumber(c.Arg(1)))
	if c.Arg(1) == nil || math.IsNaN(script.ToNumber(c.Arg(1))) {
		radix = 0
	}

	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if (radix == 0 || radix == 16) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN(), nil
	}

	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN(), nil
	}
	n := 0.0
	for i := 0; i < end; i++ {
		n = n*float64(radix) + float64(digitValue(s[i]))
	}
	return sign * n, nil
}

func digitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	}
	return -1
}

func arrayFunc() *script.NativeFunc {
	build := func(c *script.Call) (script.Value, error) {
		if len(c.Args) == 1 {
			if n, ok := c.Args[0].(float64); ok {
				if n < 0 || n != math.Trunc(n) {
					return nil, script.RangeError("Invalid array length")
				}
				if err := c.CheckArray(int(n), int(n)); err != nil {
					return nil, err
				}
				return script.NewArray(make([]script.Value, int(n))...), nil
			}
		}
		return script.NewArray(append([]script.Value{}, c.Args...)...), nil
	}
	return &script.NativeFunc{
		Name:      "Array",
		Fn:        build,
		Construct: build,
		Props: map[string]script.Value{
			"isArray": native("isArray", func(c *script.Call) (script.Value, error) {
				_, ok := c.Arg(0).(*script.Array)
				return ok, nil
			}),
			"of": native("of", func(c *script.Call) (script.Value, error) {
				return script.NewArray(append([]script.Value{}, c.Args...)...), nil
			}),
			"from": native("from", func(c *script.Call) (script.Value, error) {
				var items []script.Value
				switch src := c.Arg(0).(type) {
				case *script.Array:
					items = append(items, src.Elems...)
				case string:
					for _, r := range src {
						items = append(items, string(r))
					}
				}
				if err := c.CheckArray(len(items), len(items)); err != nil {
					return nil, err
				}
				if fn := c.Arg(1); fn != nil {
					for i, item := range items {
						v, err := c.Invoke(fn, item, float64(i))
						if err != nil {
							return nil, err
						}
						items[i] = v
					}
				}
				return script.NewArray(items...), nil
			}),
		},
	}
}

func objectFunc() *script.NativeFunc {
	keysOf := func(v script.Value) ([]string, error) {
		switch x := v.(type) {
		case nil:
			return nil, script.TypeError("Cannot convert undefined or null to object")
		case *script.Object:
			return x.Keys(), nil
		case *script.Array:
			keys := make([]string, len(x.Elems))
			for i := range x.Elems {
				keys[i] = strconv.Itoa(i)
			}
			return keys, nil
		case string:
			keys := make([]string, 0, len(x))
			for i := range []rune(x) {
				keys = append(keys, strconv.Itoa(i))
			}
			return keys, nil
		}
		if script.IsNullish(v) {
			return nil, script.TypeError("Cannot convert undefined or null to object")
		}
		return nil, nil
	}
	valueOf := func(v script.Value, key string) script.Value {
		switch x := v.(type) {
		case *script.Object:
			out, _ := x.Get(key)
			return out
		case *script.Array:
			i, _ := strconv.Atoi(key)
			return x.Elems[i]
		case string:
			i, _ := strconv.Atoi(key)
			return string([]rune(x)[i])
		}
		return nil
	}

	return &script.NativeFunc{
		Name: "Object",
		Fn: func(c *script.Call) (script.Value, error) {
			if obj, ok := c.Arg(0).(*script.Object); ok {
				return obj, nil
			}
			return script.NewObject(), nil
		},
		Props: map[string]script.Value{
			"keys": native("keys", func(c *script.Call) (script.Value, error) {
				keys, err := keysOf(c.Arg(0))
				if err != nil {
					return nil, err
				}
				c.Charge(len(keys) * script.SlotSize)
				out := make([]script.Value, len(keys))
				for i, k := range keys {
					out[i] = k
				}
				return script.NewArray(out...), nil
			}),
			"values": native("values", func(c *script.Call) (script.Value, error) {
				keys, err := keysOf(c.Arg(0))
				if err != nil {
					return nil, err
				}
				c.Charge(len(keys) * script.SlotSize)
				out := make([]script.Value, len(keys))
				for i, k := range keys {
					out[i] = valueOf(c.Arg(0), k)
				}
				return script.NewArray(out...), nil
			}),
			"entries": native("entries", func(c *script.Call) (script.Value, error) {
				keys, err := keysOf(c.Arg(0))
				if err != nil {
					return nil, err
				}
				c.Charge(3 * len(keys) * script.SlotSize)
				out := make([]script.Value, len(keys))
				for i, k := range keys {
					out[i] = script.NewArray(k, valueOf(c.Arg(0), k))
				}
				return script.NewArray(out...), nil
			}),
			"fromEntries": native("fromEntries", func(c *script.Call) (script.Value, error) {
				list, ok := c.Arg(0).(*script.Array)
				if !ok {
					return nil, script.TypeError("%s is not iterable", script.ToString(c.Arg(0)))
				}
				obj := script.NewObject()
				for _, item := range list.Elems {
					pair, ok := item.(*script.Array)
					if !ok {
						return nil, script.TypeError("Iterator value %s is not an entry object", script.ToString(item))
					}
					var k, v script.Value
					if len(pair.Elems) > 0 {
						k = pair.Elems[0]
					}
					if len(pair.Elems) > 1 {
						v = pair.Elems[1]
					}
					obj.Set(script.ToString(k), v)
				}
				return obj, nil
			}),
			"assign": native("assign", func(c *script.Call) (script.Value, error) {
				target, ok := c.Arg(0).(*script.Object)
				if !ok {
					return nil, script.TypeError("Object.assign target must be an object")
				}
				if target.Frozen() && len(c.Args) > 1 {
					return nil, script.TypeError("Cannot assign to read only object")
				}
				for _, src := range c.Args[1:] {
					keys, err := keysOf(src)
					if err != nil {
						continue
					}
					for _, k := range keys {
						target.Set(k, valueOf(src, k))
					}
				}
				return target, nil
			}),
			"freeze": native("freeze", func(c *script.Call) (script.Value, error) {
				if obj, ok := c.Arg(0).(*script.Object); ok {
					obj.Freeze()
				}
				return c.Arg(0), nil
			}),
			"isFrozen": native("isFrozen", func(c *script.Call) (script.Value, error) {
				obj, ok := c.Arg(0).(*script.Object)
				return !ok || obj.Frozen(), nil
			}),
		},
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// parseDate reads the formats authors commonly write. Values without a zone
// are taken as UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func dateFromParts(args []script.Value) (time.Time, bool) {
	parts := [7]float64{0, 0, 1, 0, 0, 0, 0}
	for i := 0; i < len(args) && i < len(parts); i++ {
		n := script.ToNumber(args[i])
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return time.Time{}, false
		}
		parts[i] = math.Trunc(n)
	}
	year := int(parts[0])
	if year >= 0 && year <= 99 {
		year += 1900
	}
	return time.Date(year, time.Month(int(parts[1])+1), int(parts[2]),
		int(parts[3]), int(parts[4]), int(parts[5]), int(parts[6])*int(time.Millisecond), time.UTC), true
}

func (e *Executor) dateFunc() *script.NativeFunc {
	construct := func(c *script.Call) (script.Value, error) {
		switch len(c.Args) {
		case 0:
			return script.NewDate(e.now()), nil
		case 1:
			switch v := c.Args[0].(type) {
			case *script.Date:
				return &script.Date{T: v.T, Valid: v.Valid}, nil
			case string:
				if t, ok := parseDate(v); ok {
					return script.NewDate(t), nil
				}
				return &script.Date{}, nil
			default:
				n := script.ToNumber(v)
				if math.IsNaN(n) || math.IsInf(n, 0) {
					return &script.Date{}, nil
				}
				return script.NewDate(time.UnixMilli(int64(n))), nil
			}
		}
		if t, ok := dateFromParts(c.Args); ok {
			return script.NewDate(t), nil
		}
		return &script.Date{}, nil
	}

	return &script.NativeFunc{
		Name: "Date",
		Fn: func(*script.Call) (script.Value, error) {
			return script.ToString(script.NewDate(e.now())), nil
		},
		Construct: construct,
		Props: map[string]script.Value{
			"now": native("now", func(*script.Call) (script.Value, error) {
				return float64(e.now().UnixMilli()), nil
			}),
			"parse": native("parse", func(c *script.Call) (script.Value, error) {
				t, ok := parseDate(script.ToString(c.Arg(0)))
				if !ok {
					return math.NaN(), nil
				}
				return float64(t.UnixMilli()), nil
			}),
			"UTC": native("UTC", func(c *script.Call) (script.Value, error) {
				t, ok := dateFromParts(c.Args)
				if !ok {
					return math.NaN(), nil
				}
				return float64(t.UnixMilli()), nil
			}),
		},
	}
}

func regexpFunc() *script.NativeFunc {
	build := func(c *script.Call) (script.Value, error) {
		pattern := script.ToString(c.Arg(0))
		flags := ""
		if re, ok := c.Arg(0).(*script.RegExp); ok {
			pattern, flags = re.Source, re.Flags
		}
		if c.Arg(1) != nil {
			flags = script.ToString(c.Arg(1))
		}
		if c.Arg(0) == nil {
			pattern = "(?:)"
		}
		re, err := script.NewRegExp(pattern, flags)
		if err != nil {
			return nil, &script.Exception{Value: script.NewError("SyntaxError", err.Error()), Runtime: true}
		}
		return re, nil
	}
	return &script.NativeFunc{Name: "RegExp", Fn: build, Construct: build}
}

func errorFunc(name string) *script.NativeFunc {
	build := func(c *script.Call) (script.Value, error) {
		msg := ""
		if c.Arg(0) != nil {
			msg = script.ToString(c.Arg(0))
		}
		return script.NewError(name, msg), nil
	}
	return &script.NativeFunc{Name: name, Fn: build, Construct: build}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
