package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes an author document into a generic value suitable for the
// structural validator. JSON is tried first, YAML second. YAML integers are
// normalised to float64 so both encodings produce the same shapes.
func Parse(data []byte) (any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: document is empty")
	}

	var out any
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse document: invalid JSON or YAML: %w", err)
	}
	return normaliseYAML(doc), nil
}

func normaliseYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normaliseYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normaliseYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normaliseYAML(item)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return v
	}
}

// Decode converts an already validated generic value into a UISchema.
func Decode(value any) (UISchema, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return UISchema{}, fmt.Errorf("schema: encode value: %w", err)
	}
	var out UISchema
	if err := json.Unmarshal(raw, &out); err != nil {
		return UISchema{}, err
	}
	return out, nil
}

// Export renders the schema as indented JSON.
func Export(s UISchema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
