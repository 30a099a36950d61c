package schema

import (
	"encoding/json"
	"fmt"
)

// ComponentType discriminates the component variants.
type ComponentType string

const (
	TypeForm  ComponentType = "form"
	TypeText  ComponentType = "text"
	TypeImage ComponentType = "image"
)

// ComponentTypes lists the recognised discriminants in declaration order.
var ComponentTypes = []ComponentType{TypeForm, TypeText, TypeImage}

// Known reports whether t is one of the recognised discriminants.
func (t ComponentType) Known() bool {
	switch t {
	case TypeForm, TypeText, TypeImage:
		return true
	}
	return false
}

// FieldType enumerates the input kinds a form field can take.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
)

// FieldTypes lists the accepted field types.
var FieldTypes = []FieldType{FieldText, FieldEmail, FieldNumber, FieldTextarea, FieldCheckbox, FieldSelect}

// Known reports whether t is one of the accepted field types.
func (t FieldType) Known() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TextVariant selects the element used for a text component.
type TextVariant string

const (
	VariantH1   TextVariant = "h1"
	VariantH2   TextVariant = "h2"
	VariantH3   TextVariant = "h3"
	VariantH4   TextVariant = "h4"
	VariantH5   TextVariant = "h5"
	VariantH6   TextVariant = "h6"
	VariantP    TextVariant = "p"
	VariantSpan TextVariant = "span"
)

// TextVariants lists the accepted text variants.
var TextVariants = []TextVariant{VariantH1, VariantH2, VariantH3, VariantH4, VariantH5, VariantH6, VariantP, VariantSpan}

// Known reports whether v is one of the accepted text variants.
func (v TextVariant) Known() bool {
	for _, known := range TextVariants {
		if v == known {
			return true
		}
	}
	return false
}

// UISchema is the root page description. Component order is render order.
type UISchema struct {
	Components []Component `json:"components" yaml:"components"`
}

type uiSchemaJSON UISchema

// MarshalJSON encodes a nil component list as an empty array.
func (s UISchema) MarshalJSON() ([]byte, error) {
	if s.Components == nil {
		s.Components = []Component{}
	}
	return json.Marshal(uiSchemaJSON(s))
}

// Append adds a component to the end of the page.
func (s *UISchema) Append(c Component) {
	s.Components = append(s.Components, c)
}

// Component is one entry of the page.
type Component struct {
	Type ComponentType
	ID   string

	Form  *FormProps
	Text  *TextProps
	Image *ImageProps

	// Raw holds the props of an unrecognised type verbatim.
	Raw json.RawMessage
}

// FormProps configures a form component.
type FormProps struct {
	Title      string           `json:"title,omitempty" yaml:"title,omitempty"`
	Fields     []ComponentField `json:"fields" yaml:"fields"`
	SubmitText string           `json:"submitText,omitempty" yaml:"submitText,omitempty"`
	OnSubmit   string           `json:"onSubmit,omitempty" yaml:"onSubmit,omitempty"`
	ClassName  string           `json:"className,omitempty" yaml:"className,omitempty"`
}

type formPropsJSON FormProps

// MarshalJSON encodes nil fields as an empty array.
func (p FormProps) MarshalJSON() ([]byte, error) {
	if p.Fields == nil {
		p.Fields = []ComponentField{}
	}
	return json.Marshal(formPropsJSON(p))
}

// Field returns the field with the given name.
func (p *FormProps) Field(name string) (ComponentField, bool) {
	if p == nil {
		return ComponentField{}, false
	}
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ComponentField{}, false
}

// TextProps configures a text component.
type TextProps struct {
	Variant   TextVariant `json:"variant" yaml:"variant"`
	Content   string      `json:"content" yaml:"content"`
	ClassName string      `json:"className,omitempty" yaml:"className,omitempty"`
}

// ImageProps configures an image component.
type ImageProps struct {
	Src       string   `json:"src" yaml:"src"`
	Alt       string   `json:"alt" yaml:"alt"`
	ClassName string   `json:"className,omitempty" yaml:"className,omitempty"`
	Width     *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height    *float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// ComponentField describes one input of a form. Min and Max only apply to
// number fields; Options only to select fields.
type ComponentField struct {
	Label       string           `json:"label" yaml:"label"`
	Name        string           `json:"name" yaml:"name"`
	Type        FieldType        `json:"type" yaml:"type"`
	Required    bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Min         *float64         `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64         `json:"max,omitempty" yaml:"max,omitempty"`
	Options     []string         `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// FieldValidation holds an optional pattern check and its failure message.
type FieldValidation struct {
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

type componentEnvelope struct {
	Type  ComponentType   `json:"type"`
	ID    string          `json:"id"`
	Props json.RawMessage `json:"props"`
}

// MarshalJSON encodes the component using the {type, id, props} wire shape.
func (c Component) MarshalJSON() ([]byte, error) {
	var props any
	switch c.Type {
	case TypeForm:
		props = c.Form
	case TypeText:
		props = c.Text
	case TypeImage:
		props = c.Image
	default:
		if len(c.Raw) > 0 {
			props = c.Raw
		}
	}
	if props == nil {
		props = struct{}{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s props: %w", c.Type, err)
	}
	return json.Marshal(componentEnvelope{Type: c.Type, ID: c.ID, Props: raw})
}

// UnmarshalJSON decodes the {type, id, props} wire shape. Unrecognised types
// are accepted and keep their props in Raw.
func (c *Component) UnmarshalJSON(data []byte) error {
	var env componentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("schema: decode component: %w", err)
	}

	*c = Component{Type: env.Type, ID: env.ID}
	props := env.Props
	if len(props) == 0 || string(props) == "null" {
		props = json.RawMessage("{}")
	}

	var target any
	switch env.Type {
	case TypeForm:
		c.Form = &FormProps{}
		target = c.Form
	case TypeText:
		c.Text = &TextProps{}
		target = c.Text
	case TypeImage:
		c.Image = &ImageProps{}
		target = c.Image
	default:
		c.Raw = append(json.RawMessage(nil), props...)
		return nil
	}

	if err := json.Unmarshal(props, target); err != nil {
		return fmt.Errorf("schema: decode %s props for %q: %w", env.Type, env.ID, err)
	}
	return nil
}
