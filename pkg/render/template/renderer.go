// Package template defines the seam between output renderers and the template
// engine that backs them.
package template

import "io"

// TemplateRenderer renders named templates or inline template text.
type TemplateRenderer interface {
	// RenderTemplate executes the named template. The output is returned and,
	// when out is non-nil, written to it as well.
	RenderTemplate(name string, data any, out io.Writer) (string, error)
	RenderString(content string, data any) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data map[string]any) error
}

// FilterFunc transforms a template value. param is nil when the filter is
// used without an argument.
type FilterFunc func(input any, param any) (any, error)
