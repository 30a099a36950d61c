package script

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
)

// Stringify renders v as JSON text, keeping object key order. Undefined and
// function members are skipped in objects and written as null in arrays. A
// top-level value with no JSON form renders as "undefined"; see Encodable.
func Stringify(v Value, indent string) (string, error) {
	var sb strings.Builder
	w := jsonWriter{sb: &sb, indent: indent, seen: map[any]bool{}}
	ok, err := w.write(v, "")
	if err != nil {
		return "", err
	}
	if !ok {
		return "undefined", nil
	}
	return sb.String(), nil
}

// Encodable reports whether v has a JSON form at the top level.
func Encodable(v Value) bool {
	switch v.(type) {
	case nil, *Function, *NativeFunc:
		return false
	}
	return true
}

type jsonWriter struct {
	sb     *strings.Builder
	indent string
	seen   map[any]bool
}

func (w *jsonWriter) quote(s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	w.sb.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}

func (w *jsonWriter) newline(prefix string) {
	if w.indent != "" {
		w.sb.WriteByte('\n')
		w.sb.WriteString(prefix)
	}
}

func (w *jsonWriter) write(v Value, prefix string) (bool, error) {
	switch x := v.(type) {
	case nil, *Function, *NativeFunc:
		return false, nil
	case nullValue:
		w.sb.WriteString("null")
	case bool:
		if x {
			w.sb.WriteString("true")
		} else {
			w.sb.WriteString("false")
		}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			w.sb.WriteString("null")
		} else {
			w.sb.WriteString(numberToString(x))
		}
	case string:
		w.quote(x)
	case *Date:
		if !x.Valid {
			w.sb.WriteString("null")
		} else {
			w.quote(x.ISO())
		}
	case *RegExp:
		w.sb.WriteString("{}")
	case *Array:
		if w.seen[x] {
			return false, TypeError("Converting circular structure to JSON")
		}
		w.seen[x] = true
		defer delete(w.seen, x)
		if len(x.Elems) == 0 {
			w.sb.WriteString("[]")
			return true, nil
		}
		inner := prefix + w.indent
		w.sb.WriteByte('[')
		for i, e := range x.Elems {
			if i > 0 {
				w.sb.WriteByte(',')
			}
			w.newline(inner)
			ok, err := w.write(e, inner)
			if err != nil {
				return false, err
			}
			if !ok {
				w.sb.WriteString("null")
			}
		}
		w.newline(prefix)
		w.sb.WriteByte(']')
	case *Object:
		if w.seen[x] {
			return false, TypeError("Converting circular structure to JSON")
		}
		w.seen[x] = true
		defer delete(w.seen, x)
		inner := prefix + w.indent
		w.sb.WriteByte('{')
		n := 0
		for _, k := range x.keys {
			if !Encodable(x.props[k]) {
				continue
			}
			if n > 0 {
				w.sb.WriteByte(',')
			}
			n++
			w.newline(inner)
			w.quote(k)
			w.sb.WriteByte(':')
			if w.indent != "" {
				w.sb.WriteByte(' ')
			}
			if _, err := w.write(x.props[k], inner); err != nil {
				return false, err
			}
		}
		if n > 0 {
			w.newline(prefix)
		}
		w.sb.WriteByte('}')
	default:
		w.sb.WriteString("null")
	}
	return true, nil
}

// ParseJSON decodes text into script values, keeping object key order.
// Malformed input raises a SyntaxError exception.
func ParseJSON(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, jsonSyntax(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, jsonSyntax(errors.New("unexpected non-whitespace character after JSON"))
	}
	return v, nil
}

func jsonSyntax(err error) error {
	return &Exception{Value: NewError("SyntaxError", "JSON.parse: "+err.Error()), Runtime: true}
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected end of JSON input")
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.New("expected property name")
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			elems := []Value{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewArray(elems...), nil
		}
		return nil, errors.New("unexpected token " + t.String())
	case json.Number:
		return stringToNumber(t.String()), nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return Null, nil
	}
	return nil, errors.New("unexpected token")
}
