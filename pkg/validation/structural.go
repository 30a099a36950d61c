package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// Result reports the outcome of a structural validation. On failure, Path
// locates the first violation (dotted, array indices as numbers) and Message
// describes it.
type Result struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

// Err returns the failure as an *Error, or nil when the result is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Path: r.Path, Message: r.Message}
}

// Error is a structural violation.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Validate checks candidate against the page schema shape and returns the
// first violation found. Arrays are walked in order and object keys in their
// declared order, so the same input always reports the same violation.
// Unknown keys are ignored.
//
// candidate is usually the output of schema.Parse or json.Unmarshal into
// any; typed values (for example a schema.UISchema) are normalised through
// their JSON encoding first.
func Validate(candidate any) Result {
	value, err := normalise(candidate)
	if err != nil {
		return Result{Message: err.Error()}
	}

	if verr := validateRoot(value); verr != nil {
		return Result{Path: verr.Path, Message: verr.Message}
	}
	return Result{Valid: true}
}

// ValidateJSON parses raw (JSON or YAML), validates it and decodes the typed
// schema. The error return is reserved for documents that cannot be parsed;
// structural violations are reported through the Result.
func ValidateJSON(raw []byte) (schema.UISchema, Result, error) {
	value, err := schema.Parse(raw)
	if err != nil {
		return schema.UISchema{}, Result{}, fmt.Errorf("validation: %w", err)
	}

	result := Validate(value)
	if !result.Valid {
		return schema.UISchema{}, result, nil
	}

	decoded, err := schema.Decode(value)
	if err != nil {
		return schema.UISchema{}, Result{}, fmt.Errorf("validation: %w", err)
	}
	return decoded, result, nil
}

func normalise(candidate any) (any, error) {
	switch v := candidate.(type) {
	case nil, string, bool, float64:
		return v, nil
	case []byte:
		return decodeRaw(v)
	case json.RawMessage:
		return decodeRaw(v)
	}

	raw, err := json.Marshal(candidate)
	if err != nil {
		return nil, fmt.Errorf("validation: candidate is not encodable: %w", err)
	}
	return decodeRaw(raw)
}

func decodeRaw(raw []byte) (any, error) {
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validation: invalid JSON: %w", err)
	}
	return out, nil
}

type path []string

func (p path) with(segment any) path {
	next := make(path, len(p), len(p)+1)
	copy(next, p)
	switch s := segment.(type) {
	case int:
		return append(next, strconv.Itoa(s))
	default:
		return append(next, fmt.Sprint(s))
	}
}

func (p path) String() string { return strings.Join(p, ".") }

func fail(p path, format string, args ...any) *Error {
	return &Error{Path: p.String(), Message: fmt.Sprintf(format, args...)}
}

func validateRoot(value any) *Error {
	root, err := requireObject(nil, value, true)
	if err != nil {
		return err
	}

	raw, present := root["components"]
	items, err := requireArray(path{"components"}, raw, present, true)
	if err != nil {
		return err
	}

	for i, item := range items {
		if err := validateComponent(path{"components"}.with(i), item); err != nil {
			return err
		}
	}
	return nil
}

func validateComponent(p path, value any) *Error {
	obj, err := requireObject(p, value, true)
	if err != nil {
		return err
	}

	kind, ok := obj["type"].(string)
	if !ok || !schema.ComponentType(kind).Known() {
		return fail(p, "Invalid input: expected type to be one of %s", quoteList(schema.ComponentTypes))
	}

	if err := requireString(p.with("id"), obj, "id", true); err != nil {
		return err
	}

	rawProps, present := obj["props"]
	props, err := requireObject(p.with("props"), rawProps, present)
	if err != nil {
		return err
	}

	switch schema.ComponentType(kind) {
	case schema.TypeForm:
		return validateFormProps(p.with("props"), props)
	case schema.TypeText:
		return validateTextProps(p.with("props"), props)
	case schema.TypeImage:
		return validateImageProps(p.with("props"), props)
	}
	return nil
}

func validateFormProps(p path, props map[string]any) *Error {
	if err := requireString(p.with("title"), props, "title", false); err != nil {
		return err
	}

	raw, present := props["fields"]
	fields, err := requireArray(p.with("fields"), raw, present, true)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(fields))
	for i, item := range fields {
		fp := p.with("fields").with(i)
		if err := validateField(fp, item); err != nil {
			return err
		}
		name := item.(map[string]any)["name"].(string)
		if _, dup := seen[name]; dup {
			return fail(fp.with("name"), "Duplicate field name '%s'", name)
		}
		seen[name] = struct{}{}
	}

	for _, key := range []string{"submitText", "onSubmit", "className"} {
		if err := requireString(p.with(key), props, key, false); err != nil {
			return err
		}
	}
	return nil
}

func validateField(p path, value any) *Error {
	obj, err := requireObject(p, value, true)
	if err != nil {
		return err
	}

	if err := requireString(p.with("label"), obj, "label", true); err != nil {
		return err
	}
	if err := requireString(p.with("name"), obj, "name", true); err != nil {
		return err
	}
	if err := requireEnum(p.with("type"), obj, "type", schema.FieldTypes); err != nil {
		return err
	}
	if err := requireBool(p.with("required"), obj, "required"); err != nil {
		return err
	}
	if err := requireString(p.with("placeholder"), obj, "placeholder", false); err != nil {
		return err
	}
	if err := requireNumber(p.with("min"), obj, "min"); err != nil {
		return err
	}
	if err := requireNumber(p.with("max"), obj, "max"); err != nil {
		return err
	}

	raw, present := obj["options"]
	options, err := requireArray(p.with("options"), raw, present, false)
	if err != nil {
		return err
	}
	for i, opt := range options {
		if err := requireElement(p.with("options").with(i), opt); err != nil {
			return err
		}
	}

	if raw, present := obj["validation"]; present {
		vp := p.with("validation")
		rules, err := requireObject(vp, raw, true)
		if err != nil {
			return err
		}
		if err := requireString(vp.with("pattern"), rules, "pattern", false); err != nil {
			return err
		}
		if err := requireString(vp.with("message"), rules, "message", false); err != nil {
			return err
		}
	}
	return nil
}

func validateTextProps(p path, props map[string]any) *Error {
	if err := requireEnum(p.with("variant"), props, "variant", schema.TextVariants); err != nil {
		return err
	}
	if err := requireString(p.with("content"), props, "content", true); err != nil {
		return err
	}
	return requireString(p.with("className"), props, "className", false)
}

func validateImageProps(p path, props map[string]any) *Error {
	if err := requireString(p.with("src"), props, "src", true); err != nil {
		return err
	}
	if err := requireString(p.with("alt"), props, "alt", true); err != nil {
		return err
	}
	if err := requireString(p.with("className"), props, "className", false); err != nil {
		return err
	}
	if err := requireNumber(p.with("width"), props, "width"); err != nil {
		return err
	}
	return requireNumber(p.with("height"), props, "height")
}

// requireObject and the helpers below report a missing key as "Required"
// when it is mandatory. A key present with null is a type error either way.
func requireObject(p path, value any, present bool) (map[string]any, *Error) {
	if !present {
		return nil, fail(p, "Required")
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fail(p, "Expected object, received %s", typeName(value))
	}
	return obj, nil
}

func requireArray(p path, value any, present, required bool) ([]any, *Error) {
	if !present {
		if required {
			return nil, fail(p, "Required")
		}
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fail(p, "Expected array, received %s", typeName(value))
	}
	return items, nil
}

func requireString(p path, obj map[string]any, key string, required bool) *Error {
	value, present := obj[key]
	if !present {
		if required {
			return fail(p, "Required")
		}
		return nil
	}
	return requireElement(p, value)
}

func requireElement(p path, value any) *Error {
	if _, ok := value.(string); !ok {
		return fail(p, "Expected string, received %s", typeName(value))
	}
	return nil
}

func requireNumber(p path, obj map[string]any, key string) *Error {
	value, present := obj[key]
	if !present {
		return nil
	}
	if _, ok := value.(float64); !ok {
		return fail(p, "Expected number, received %s", typeName(value))
	}
	return nil
}

func requireBool(p path, obj map[string]any, key string) *Error {
	value, present := obj[key]
	if !present {
		return nil
	}
	if _, ok := value.(bool); !ok {
		return fail(p, "Expected boolean, received %s", typeName(value))
	}
	return nil
}

func requireEnum[T ~string](p path, obj map[string]any, key string, allowed []T) *Error {
	value, present := obj[key]
	if !present {
		return fail(p, "Required")
	}
	s, ok := value.(string)
	if !ok {
		return fail(p, "Expected string, received %s", typeName(value))
	}
	for _, candidate := range allowed {
		if string(candidate) == s {
			return nil
		}
	}
	return fail(p, "Invalid enum value. Expected %s, received '%s'", quoteList(allowed), s)
}

func quoteList[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + string(v) + "'"
	}
	return strings.Join(parts, " | ")
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
