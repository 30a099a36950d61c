package schema

import (
	"fmt"
	"time"
)

// DefaultSchema returns the page a new editor session starts with.
func DefaultSchema() UISchema {
	return UISchema{Components: []Component{
		{
			Type: TypeText,
			ID:   "welcome-title",
			Text: &TextProps{
				Variant:   VariantH1,
				Content:   "Welcome to Dynamic Interface Builder",
				ClassName: "text-4xl font-bold text-gray-900 mb-4",
			},
		},
		{
			Type: TypeText,
			ID:   "welcome-subtitle",
			Text: &TextProps{
				Variant:   VariantP,
				Content:   "Build beautiful interfaces with JSON schemas and live preview.",
				ClassName: "text-lg text-gray-600 mb-8",
			},
		},
	}}
}

// NewComponent builds a component of the given type populated with starter
// props. The id is "<type>-<unix millis>".
func NewComponent(kind ComponentType, now time.Time) (Component, error) {
	id := fmt.Sprintf("%s-%d", kind, now.UnixMilli())
	switch kind {
	case TypeForm:
		return Component{Type: TypeForm, ID: id, Form: &FormProps{
			Title: "New Form",
			Fields: []ComponentField{{
				Label:       "Name",
				Name:        "name",
				Type:        FieldText,
				Required:    true,
				Placeholder: "Enter your name",
			}},
			SubmitText: "Submit",
		}}, nil
	case TypeText:
		return Component{Type: TypeText, ID: id, Text: &TextProps{
			Variant:   VariantP,
			Content:   "New text content",
			ClassName: "text-gray-600",
		}}, nil
	case TypeImage:
		return Component{Type: TypeImage, ID: id, Image: &ImageProps{
			Src:       "https://images.unsplash.com/photo-1460925895917-afdab827c52f?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300",
			Alt:       "Sample image",
			ClassName: "rounded-lg w-full h-auto",
		}}, nil
	default:
		return Component{}, fmt.Errorf("schema: cannot create component of type %q", kind)
	}
}
