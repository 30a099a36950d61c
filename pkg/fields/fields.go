// Package fields evaluates a form field's declared constraints against a
// submitted value and produces the author-facing error messages.
package fields

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

const (
	msgInvalidEmail  = "Please enter a valid email address"
	msgInvalidNumber = "Please enter a valid number"
	msgInvalidFormat = "Invalid format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateField checks value against field and returns the first failing
// message. Checks run in order: required, type, pattern.
func ValidateField(field schema.ComponentField, value any) (string, bool) {
	empty := IsEmpty(value)
	if field.Required && empty {
		return field.Label + " is required", true
	}
	if empty {
		return "", false
	}

	switch field.Type {
	case schema.FieldEmail:
		if !emailPattern.MatchString(Stringify(value)) {
			return msgInvalidEmail, true
		}
	case schema.FieldNumber:
		n, ok := ParseNumber(value)
		if !ok {
			return msgInvalidNumber, true
		}
		if field.Min != nil && n < *field.Min {
			return "Value must be at least " + formatNumber(*field.Min), true
		}
		if field.Max != nil && n > *field.Max {
			return "Value must be at most " + formatNumber(*field.Max), true
		}
	}

	if field.Validation != nil && field.Validation.Pattern != "" {
		re, err := compilePattern(field.Validation.Pattern)
		if err != nil || !re.MatchString(Stringify(value)) {
			if field.Validation.Message != "" {
				return field.Validation.Message, true
			}
			return msgInvalidFormat, true
		}
	}
	return "", false
}

// IsEmpty reports whether value counts as absent for the required check. An
// unchecked checkbox (false) is empty; a numeric zero is not.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// decimalNumber is the only string syntax ParseNumber accepts: no infinities,
// hex, or digit separators.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber converts a submitted value to a finite float. Strings are
// trimmed and an empty string is not a number.
func ParseNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, finite(v)
	case float32:
		return float64(v), finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		if !decimalNumber.MatchString(trimmed) {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || !finite(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// Stringify renders a submitted value as the text pattern checks run on.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var patternCache sync.Map

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("fields: invalid pattern %q: %w", pattern, err)
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// FieldError is a failed field check.
type FieldError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Name + ": " + e.Message
}

// Errors holds the failing fields of a form in field order.
type Errors []FieldError

// ValidateAll evaluates every field against values. It does not stop at the
// first failing field.
func ValidateAll(fields []schema.ComponentField, values map[string]any) Errors {
	var out Errors
	for _, field := range fields {
		if msg, failed := ValidateField(field, values[field.Name]); failed {
			out = append(out, FieldError{Name: field.Name, Message: msg})
		}
	}
	return out
}

// Map returns the errors keyed by field name.
func (e Errors) Map() map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for _, fe := range e {
		out[fe.Name] = fe.Message
	}
	return out
}

// For returns the message recorded for name.
func (e Errors) For(name string) (string, bool) {
	for _, fe := range e {
		if fe.Name == name {
			return fe.Message, true
		}
	}
	return "", false
}

// Without returns a copy of e without the entry for name.
func (e Errors) Without(name string) Errors {
	var out Errors
	for _, fe := range e {
		if fe.Name != name {
			out = append(out, fe)
		}
	}
	return out
}

// Err aggregates the errors into a single error, or nil when e is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, fe := range e {
		merr = multierror.Append(merr, fe)
	}
	merr.ErrorFormat = formatErrors
	return merr
}

func formatErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("fields: %d invalid: %s", len(errs), strings.Join(parts, "; "))
}

// AsErrors recovers field errors from an error produced by Errors.Err.
func AsErrors(err error) (Errors, bool) {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return nil, false
	}
	var out Errors
	for _, item := range merr.Errors {
		var fe FieldError
		if errors.As(item, &fe) {
			out = append(out, fe)
		}
	}
	return out, len(out) > 0
}
