package render_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/validation"
)

func TestRenderedSchemasSurviveValidation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	newComponent := func(kind schema.ComponentType) schema.Component {
		c, err := schema.NewComponent(kind, now)
		if err != nil {
			t.Fatalf("NewComponent(%s): %v", kind, err)
		}
		return c
	}
	page := func(components ...schema.Component) schema.UISchema {
		return schema.UISchema{Components: components}
	}

	cases := []struct {
		name     string
		schema   schema.UISchema
		fallback bool
	}{
		{name: "default schema", schema: schema.DefaultSchema()},
		{name: "new form", schema: page(newComponent(schema.TypeForm))},
		{name: "new text", schema: page(newComponent(schema.TypeText))},
		{name: "new image", schema: page(newComponent(schema.TypeImage))},
		{name: "zero schema", schema: schema.UISchema{}},
		{name: "form without fields", schema: page(schema.Component{Type: schema.TypeForm, ID: "f", Form: &schema.FormProps{}})},
		{name: "blank text", schema: page(schema.Component{Type: schema.TypeText, ID: "t", Text: &schema.TextProps{Variant: schema.VariantSpan}})},
		{name: "zero image", schema: page(schema.Component{Type: schema.TypeImage, ID: "i", Image: &schema.ImageProps{}})},
		{name: "blank variant", schema: page(schema.Component{Type: schema.TypeText, ID: "t", Text: &schema.TextProps{Content: "x"}}), fallback: true},
		{name: "unknown variant", schema: page(schema.Component{Type: schema.TypeText, ID: "t", Text: &schema.TextProps{Variant: "h7"}}), fallback: true},
		{name: "unknown field type", schema: page(schema.Component{Type: schema.TypeForm, ID: "f", Form: &schema.FormProps{
			Fields: []schema.ComponentField{{Label: "When", Name: "when", Type: "date"}},
		}}), fallback: true},
		{name: "duplicate field names", schema: page(schema.Component{Type: schema.TypeForm, ID: "f", Form: &schema.FormProps{
			Fields: []schema.ComponentField{
				{Label: "A", Name: "x", Type: schema.FieldText},
				{Label: "B", Name: "x", Type: schema.FieldText},
			},
		}}), fallback: true},
	}

	d := render.NewDispatcher(render.WithExecutor(&stubExecutor{}))
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			usedFallback := false
			for _, node := range d.Mount(tc.schema).Nodes {
				if node.Kind == render.KindUnknown {
					usedFallback = true
				}
			}
			if usedFallback != tc.fallback {
				t.Fatalf("expected fallback=%v, got %v", tc.fallback, usedFallback)
			}
			if usedFallback {
				return
			}

			raw, err := json.Marshal(tc.schema)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if result := validation.Validate(raw); !result.Valid {
				t.Fatalf("serialised schema rejected at %q: %s\n%s", result.Path, result.Message, raw)
			}
		})
	}
}
