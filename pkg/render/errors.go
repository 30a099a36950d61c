package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// IssueLocation ties a validation path to the component and field it names.
type IssueLocation struct {
	Index       int    `json:"index"`
	ComponentID string `json:"componentId,omitempty"`
	Prop        string `json:"prop,omitempty"`
	Field       string `json:"field,omitempty"`
}

// LocateIssue resolves a structural validator path ("components.1.props.fields.0.name")
// or a JSON pointer ("#/components/1/props/fields/0/name") against s. It
// reports false for paths outside the component list or past its end.
func LocateIssue(s schema.UISchema, path string) (IssueLocation, bool) {
	segments := parsePathSegments(path)
	if len(segments) < 2 || segments[0] != "components" {
		return IssueLocation{}, false
	}
	index, err := strconv.Atoi(segments[1])
	if err != nil || index < 0 || index >= len(s.Components) {
		return IssueLocation{}, false
	}

	component := s.Components[index]
	loc := IssueLocation{Index: index, ComponentID: component.ID}
	rest := segments[2:]
	if len(rest) < 2 || rest[0] != "props" {
		return loc, true
	}
	loc.Prop = rest[1]

	if loc.Prop == "fields" && len(rest) >= 3 && component.Form != nil {
		if i, err := strconv.Atoi(rest[2]); err == nil && i >= 0 && i < len(component.Form.Fields) {
			loc.Field = component.Form.Fields[i].Name
		}
	}
	return loc, true
}

// MergeMessages concatenates message lists, trimming whitespace and dropping
// blanks and duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}
