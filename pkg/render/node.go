package render

import (
	"strconv"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

// NodeKind names the arm of the dispatcher that produced a Node.
type NodeKind string

const (
	KindForm    NodeKind = "form"
	KindText    NodeKind = "text"
	KindImage   NodeKind = "image"
	KindUnknown NodeKind = "unknown"
)

// UnknownComponentText is the content of the fallback node.
const UnknownComponentText = "Unknown component type"

// DefaultSubmitText labels a submit button when the form leaves it blank.
const DefaultSubmitText = "Submit"

// SubmittingText labels a submit button while a submission is in flight.
const SubmittingText = "Submitting..."

// Node is the renderer-neutral description of one component.
type Node struct {
	Kind      NodeKind          `json:"kind"`
	ID        string            `json:"id,omitempty"`
	Element   string            `json:"element"`
	ClassName string            `json:"className,omitempty"`
	Text      string            `json:"text,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Form      *FormView         `json:"form,omitempty"`
}

// FormView is the static part of a form node.
type FormView struct {
	Title      string      `json:"title,omitempty"`
	SubmitText string      `json:"submitText"`
	Fields     []FieldView `json:"fields"`
	HasHandler bool        `json:"hasHandler"`
}

// FieldView describes one form control.
type FieldView struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Control     string   `json:"control"`
	Required    bool     `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Options     []string `json:"options,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
}

func unknownNode(id string) Node {
	return Node{
		Kind:    KindUnknown,
		ID:      id,
		Element: "div",
		Text:    UnknownComponentText,
	}
}

func textNode(id string, props schema.TextProps) Node {
	return Node{
		Kind:      KindText,
		ID:        id,
		Element:   string(props.Variant),
		ClassName: props.ClassName,
		Text:      props.Content,
	}
}

func imageNode(id string, props schema.ImageProps) Node {
	attrs := map[string]string{
		"src": props.Src,
		"alt": props.Alt,
	}
	if props.Width != nil {
		attrs["width"] = formatDimension(*props.Width)
	}
	if props.Height != nil {
		attrs["height"] = formatDimension(*props.Height)
	}
	return Node{
		Kind:      KindImage,
		ID:        id,
		Element:   "img",
		ClassName: props.ClassName,
		Attrs:     attrs,
	}
}

func formatDimension(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formNode(id string, props schema.FormProps) Node {
	view := &FormView{
		Title:      props.Title,
		SubmitText: submitText(props),
		Fields:     make([]FieldView, 0, len(props.Fields)),
		HasHandler: props.OnSubmit != "",
	}
	for _, field := range props.Fields {
		view.Fields = append(view.Fields, fieldView(field))
	}
	return Node{
		Kind:      KindForm,
		ID:        id,
		Element:   "form",
		ClassName: props.ClassName,
		Form:      view,
	}
}

func submitText(props schema.FormProps) string {
	if props.SubmitText != "" {
		return props.SubmitText
	}
	return DefaultSubmitText
}

// fieldView keeps Min/Max for number fields and Options for selects only.
func fieldView(field schema.ComponentField) FieldView {
	view := FieldView{
		Name:        field.Name,
		Label:       field.Label,
		Type:        string(field.Type),
		Control:     controlFor(field.Type),
		Required:    field.Required,
		Placeholder: field.Placeholder,
	}
	switch field.Type {
	case schema.FieldNumber:
		view.Min = field.Min
		view.Max = field.Max
	case schema.FieldSelect:
		view.Options = append([]string(nil), field.Options...)
	}
	if field.Validation != nil {
		view.Pattern = field.Validation.Pattern
	}
	return view
}

func controlFor(t schema.FieldType) string {
	switch t {
	case schema.FieldTextarea:
		return "textarea"
	case schema.FieldSelect:
		return "select"
	case schema.FieldCheckbox:
		return "checkbox"
	default:
		return "input"
	}
}
