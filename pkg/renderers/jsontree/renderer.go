// Package jsontree renders a mounted page as its JSON rendering description.
package jsontree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-uibuilder/pkg/render"
)

// Document is the serialised page.
type Document struct {
	Title string                         `json:"title,omitempty"`
	Theme string                         `json:"theme,omitempty"`
	Nodes []render.Node                  `json:"nodes"`
	Forms map[string]render.FormSnapshot `json:"forms,omitempty"`
}

// Renderer implements render.Renderer for JSON.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent sets the indentation; an empty string produces compact output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New builds the renderer. Output is indented with two spaces by default.
func New(opts ...Option) *Renderer {
	r := &Renderer{indent: "  "}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render serialises the page nodes and, when given, the form overlay from
// opts.Forms.
func (r *Renderer) Render(_ context.Context, page *render.Page, opts render.RenderOptions) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("jsontree renderer: page is nil")
	}
	doc := Document{
		Title: opts.Title,
		Nodes: page.Nodes,
		Forms: opts.Forms,
	}
	if doc.Nodes == nil {
		doc.Nodes = []render.Node{}
	}
	if opts.Theme != nil {
		doc.Theme = opts.Theme.Theme
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", r.indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("jsontree renderer: encode: %w", err)
	}
	return buf.Bytes(), nil
}
