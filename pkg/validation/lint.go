package validation

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

//go:embed schemas/uischema.schema.json
var schemaFS embed.FS

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures every issue found in a document, for
// editors and CLI output that want more than the first violation.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

var (
	compiledOnce sync.Once
	compiled     *gojsonschema.Schema
	compileErr   error
)

// DocumentSchema returns the embedded JSON Schema describing UISchema
// documents.
func DocumentSchema() []byte {
	raw, err := schemaFS.ReadFile("schemas/uischema.schema.json")
	if err != nil {
		panic(fmt.Sprintf("validation: embedded schema missing: %v", err))
	}
	return raw
}

func documentValidator() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(DocumentSchema()))
	})
	return compiled, compileErr
}

// Lint reports all issues in raw (JSON or YAML). Shape problems come from the
// embedded JSON Schema; rules it cannot express (unique field names) are
// checked with Validate once the shape is sound.
func Lint(raw []byte) SchemaValidationResult {
	value, err := schema.Parse(raw)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: err.Error()}}}
	}

	validator, err := documentValidator()
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: fmt.Sprintf("validation: compile document schema: %v", err)}}}
	}

	result, err := validator.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: fmt.Sprintf("validation: %v", err)}}}
	}

	out := SchemaValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		if isCompositeError(e.Type()) {
			continue
		}
		field := e.Field()
		if field == "(root)" {
			field = ""
		}
		out.Issues = append(out.Issues, SchemaIssue{
			Path:    pointerFromField(field),
			Field:   field,
			Message: e.Description(),
		})
	}

	if out.Valid {
		if structural := Validate(value); !structural.Valid {
			out.Valid = false
			out.Issues = append(out.Issues, SchemaIssue{
				Path:    pointerFromField(structural.Path),
				Field:   structural.Path,
				Message: structural.Message,
			})
		}
	}
	return out
}

// if/then failures duplicate the nested errors they wrap.
func isCompositeError(kind string) bool {
	switch kind {
	case "condition_then", "condition_else", "number_all_of":
		return true
	}
	return false
}

func pointerFromField(field string) string {
	if field == "" {
		return ""
	}
	return "#/" + strings.ReplaceAll(field, ".", "/")
}
