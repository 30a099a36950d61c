package script

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Value is any script value: nil (undefined), Null, bool, float64, string,
// *Object, *Array, *Function, *NativeFunc, *Date or *RegExp.
type Value = any

type nullValue struct{}

func (nullValue) String() string { return "null" }

// Null is the script null value. Go nil is undefined.
var Null Value = nullValue{}

// Object is a plain keyed record. Keys keep insertion order and there is no
// prototype chain: a key is either an own property or absent.
type Object struct {
	keys   []string
	props  map[string]Value
	frozen bool
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

// Get returns the own property key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Set writes an own property, appending new keys at the end.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.props[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, exists := o.props[key]; !exists {
		return
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len reports the number of properties.
func (o *Object) Len() int { return len(o.keys) }

// Freeze makes the object read-only.
func (o *Object) Freeze() { o.frozen = true }

// Frozen reports whether the object is read-only.
func (o *Object) Frozen() bool { return o.frozen }

// Array is an ordered list of values.
type Array struct {
	Elems []Value
}

// NewArray wraps elems.
func NewArray(elems ...Value) *Array {
	if elems == nil {
		elems = []Value{}
	}
	return &Array{Elems: elems}
}

// Function is a closure defined by script code.
type Function struct {
	decl *FuncLit
	env  *Env
}

// Name returns the declared name, if any.
func (f *Function) Name() string { return f.decl.Name }

// NativeFunc is a host function exposed to scripts. Fn receives the call and
// reports failures through its error; *Exception errors are rethrown as is,
// other errors become Error objects carrying the error text.
type NativeFunc struct {
	Name string
	Fn   func(c *Call) (Value, error)
	// Construct handles `new Name(...)`; nil means the function is not a
	// constructor.
	Construct func(c *Call) (Value, error)
	// Props are static members such as Date.now.
	Props map[string]Value
}

// Date is a point in time.
type Date struct {
	T     time.Time
	Valid bool
}

// NewDate wraps t.
func NewDate(t time.Time) *Date { return &Date{T: t.UTC(), Valid: true} }

// Millis returns milliseconds since the epoch, NaN for an invalid date.
func (d *Date) Millis() float64 {
	if !d.Valid {
		return math.NaN()
	}
	return float64(d.T.UnixMilli())
}

// ISO formats the date as an ISO-8601 UTC timestamp.
func (d *Date) ISO() string {
	return d.T.UTC().Format("2006-01-02T15:04:05.000Z")
}

// RegExp is a compiled regular expression (RE2 syntax).
type RegExp struct {
	re     *regexp.Regexp
	Source string
	Flags  string
}

// NewRegExp compiles pattern with JavaScript-style flags (g, i, m, s).
func NewRegExp(pattern, flags string) (*RegExp, error) {
	prefix := ""
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(prefix, f) {
				prefix += string(f)
			}
		case 'g', 'u', 'y':
		default:
			return nil, fmt.Errorf("invalid flags supplied to RegExp constructor '%s'", flags)
		}
	}
	expr := pattern
	if prefix != "" {
		expr = "(?" + prefix + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression /%s/: %v", pattern, err)
	}
	return &RegExp{re: re, Source: pattern, Flags: flags}, nil
}

// Global reports whether the g flag is set.
func (r *RegExp) Global() bool { return strings.ContainsRune(r.Flags, 'g') }

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Function, *NativeFunc:
		return "function"
	default:
		return "object"
	}
}

// Truthy implements boolean conversion.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil, nullValue:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// IsNullish reports whether v is undefined or null.
func IsNullish(v Value) bool {
	switch v.(type) {
	case nil, nullValue:
		return true
	}
	return false
}

var numericLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ToNumber implements numeric conversion.
func ToNumber(v Value) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case nullValue:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		return stringToNumber(x)
	case *Date:
		return x.Millis()
	case *Array:
		switch len(x.Elems) {
		case 0:
			return 0
		case 1:
			return ToNumber(x.Elems[0])
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
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
	if !numericLiteral.MatchString(s) {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return n
		}
		return math.NaN()
	}
	return n
}

func numberToString(f float64) string {
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
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		s = strings.Replace(s, "e+0", "e+", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToString implements string conversion.
func ToString(v Value) string {
	return toStringDepth(v, 0)
}

func toStringDepth(v Value, depth int) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case nullValue:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return numberToString(x)
	case string:
		return x
	case *Array:
		if depth > 8 {
			return ""
		}
		parts := make([]string, len(x.Elems))
		for i, e := range x.Elems {
			if IsNullish(e) {
				continue
			}
			parts[i] = toStringDepth(e, depth+1)
		}
		return strings.Join(parts, ",")
	case *Object:
		if msg, ok := errorText(x); ok {
			return msg
		}
		return "[object Object]"
	case *Function:
		return "function " + x.decl.Name + "() { [code] }"
	case *NativeFunc:
		return "function " + x.Name + "() { [native code] }"
	case *Date:
		if !x.Valid {
			return "Invalid Date"
		}
		return x.T.UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
	case *RegExp:
		return "/" + x.Source + "/" + x.Flags
	default:
		return fmt.Sprint(x)
	}
}

// errorText renders objects built by NewError as "Name: message".
func errorText(o *Object) (string, bool) {
	nameV, hasName := o.Get("name")
	msgV, hasMsg := o.Get("message")
	if !hasName || !hasMsg {
		return "", false
	}
	name, ok1 := nameV.(string)
	msg, ok2 := msgV.(string)
	if !ok1 || !ok2 || !strings.HasSuffix(name, "Error") {
		return "", false
	}
	if msg == "" {
		return name, true
	}
	return name + ": " + msg, true
}

// NewError builds an error object with the given name and message.
func NewError(name, message string) *Object {
	o := NewObject()
	o.Set("name", name)
	o.Set("message", message)
	return o
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case nullValue:
		_, ok := b.(nullValue)
		return ok
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	}
	return a == b
}

// LooseEquals implements ==.
func LooseEquals(a, b Value) bool {
	if IsNullish(a) || IsNullish(b) {
		return IsNullish(a) && IsNullish(b)
	}
	switch a.(type) {
	case float64, string, bool:
		switch b.(type) {
		case float64, string, bool:
			if TypeOf(a) == TypeOf(b) {
				return StrictEquals(a, b)
			}
			return ToNumber(a) == ToNumber(b)
		}
		return LooseEquals(a, ToString(b))
	}
	switch b.(type) {
	case float64, string, bool:
		return LooseEquals(ToString(a), b)
	}
	return a == b
}

// FromGo converts host data into script values. Maps become objects with
// sorted keys; unsupported types are rendered with fmt.
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case nullValue, bool, float64, string, *Object, *Array, *Date, *RegExp:
		return x
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case time.Time:
		return NewDate(x)
	case []any:
		out := make([]Value, len(x))
		for i, item := range x {
			out[i] = FromGo(item)
		}
		return NewArray(out...)
	case []string:
		out := make([]Value, len(x))
		for i, item := range x {
			out[i] = item
		}
		return NewArray(out...)
	case map[string]any:
		obj := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, FromGo(x[k]))
		}
		return obj
	case map[string]string:
		obj := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, x[k])
		}
		return obj
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// ToGo converts a script value into plain host data. Functions become nil;
// cycles are cut with nil.
func ToGo(v Value) any {
	return toGo(v, map[any]bool{})
}

func toGo(v Value, seen map[any]bool) any {
	switch x := v.(type) {
	case nil, nullValue:
		return nil
	case bool, string:
		return x
	case float64:
		return x
	case *Array:
		if seen[x] {
			return nil
		}
		seen[x] = true
		defer delete(seen, x)
		out := make([]any, len(x.Elems))
		for i, e := range x.Elems {
			out[i] = toGo(e, seen)
		}
		return out
	case *Object:
		if seen[x] {
			return nil
		}
		seen[x] = true
		defer delete(seen, x)
		out := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			switch x.props[k].(type) {
			case *Function, *NativeFunc:
				continue
			}
			out[k] = toGo(x.props[k], seen)
		}
		return out
	case *Date:
		if !x.Valid {
			return nil
		}
		return x.ISO()
	case *RegExp:
		return "/" + x.Source + "/" + x.Flags
	default:
		return nil
	}
}
