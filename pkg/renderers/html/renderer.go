// Package html renders mounted pages as HTML documents through embedded
// pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-uibuilder/pkg/fields"
	"github.com/goliatone/go-uibuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-uibuilder/pkg/render/template"
	"github.com/goliatone/go-uibuilder/pkg/render/template/pongo"
)

// DefaultTitle is used when RenderOptions.Title is empty.
const DefaultTitle = "Dynamic Interface Builder"

const selectPlaceholder = "Select an option"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	templates  rendertemplate.TemplateRenderer
	fragment   bool
}

// WithTemplatesFS replaces the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(engine rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.templates = engine
		}
	}
}

// WithFragment renders only the <main> element instead of a full document.
func WithFragment(enabled bool) Option {
	return func(cfg *config) {
		cfg.fragment = enabled
	}
}

// Renderer implements render.Renderer for HTML.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	fragment  bool
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the renderer, compiling templates lazily on first use.
func New(opts ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	engine := cfg.templates
	if engine == nil {
		var err error
		engine, err = pongo.New(pongo.WithFS(cfg.templateFS), pongo.WithSetName("html"))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
	}
	return &Renderer{templates: engine, fragment: cfg.fragment}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the page. Live form state comes from opts.Forms.
func (r *Renderer) Render(ctx context.Context, page *render.Page, opts render.RenderOptions) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("html renderer: page is nil")
	}

	chunks := make([]string, 0, len(page.Nodes))
	for _, node := range page.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := r.renderNode(node, opts)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	view := map[string]any{
		"title":      title,
		"components": chunks,
		"theme":      themeView(opts),
		"stylesheet": assetURL(opts, StylesheetAsset),
	}

	name := "page"
	if r.fragment {
		name = "main"
	}
	out, err := r.templates.RenderTemplate(name, view, nil)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) renderNode(node render.Node, opts render.RenderOptions) (string, error) {
	view := map[string]any{"node": nodeView(node)}
	switch node.Kind {
	case render.KindImage:
		view["markup"] = imageMarkup(node.Attrs, node.ClassName)
	case render.KindForm:
		if node.Form == nil {
			return "", fmt.Errorf("html renderer: form node %q has no form", node.ID)
		}
		snapshot := opts.Forms[node.ID]
		view["form"] = map[string]any{
			"title":      node.Form.Title,
			"submitText": node.Form.SubmitText,
		}
		view["fields"] = fieldViews(node.ID, node.Form, snapshot)
		hidden := opts.Hidden
		if opts.FormHidden != nil {
			hidden = append(append([]render.HiddenField(nil), hidden...), opts.FormHidden(node.ID)...)
		}
		view["hidden"] = hiddenViews(hidden)
		if opts.ActionURL != nil {
			view["action"] = opts.ActionURL(node.ID)
		}
		if snapshot.Outcome != nil {
			view["outcome"] = map[string]any{
				"kind":    string(snapshot.Outcome.Kind),
				"message": snapshot.Outcome.Message,
			}
		}
	}

	name := "components/" + string(node.Kind)
	if opts.Theme != nil {
		if partial := strings.TrimSpace(opts.Theme.Partials[PartialKey(string(node.Kind))]); partial != "" {
			name = partial
		}
	}
	out, err := r.templates.RenderTemplate(name, view, nil)
	if err != nil {
		return "", fmt.Errorf("html renderer: component %q: %w", node.ID, err)
	}
	return out, nil
}

func nodeView(node render.Node) map[string]any {
	return map[string]any{
		"kind":      string(node.Kind),
		"id":        node.ID,
		"element":   node.Element,
		"className": node.ClassName,
		"text":      node.Text,
	}
}

func fieldViews(formID string, form *render.FormView, snap render.FormSnapshot) []map[string]any {
	if form == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(form.Fields))
	for _, f := range form.Fields {
		value := snap.Values[f.Name]
		view := map[string]any{
			"id":          formID + "-" + f.Name,
			"name":        f.Name,
			"label":       f.Label,
			"type":        inputType(f.Type),
			"control":     f.Control,
			"required":    f.Required,
			"placeholder": f.Placeholder,
			"pattern":     f.Pattern,
			"min":         formatBound(f.Min),
			"max":         formatBound(f.Max),
			"value":       fields.Stringify(value),
			"checked":     isChecked(value),
			"error":       snap.Errors[f.Name],
		}
		if f.Control == "select" {
			if f.Placeholder == "" {
				view["placeholder"] = selectPlaceholder
			}
			current := fields.Stringify(value)
			options := make([]map[string]any, 0, len(f.Options))
			for _, opt := range f.Options {
				options = append(options, map[string]any{"value": opt, "selected": opt == current})
			}
			view["options"] = options
		}
		out = append(out, view)
	}
	return out
}

func inputType(t string) string {
	switch t {
	case "email", "number":
		return t
	default:
		return "text"
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func isChecked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if v == "on" {
			return true
		}
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

func hiddenViews(hidden []render.HiddenField) []map[string]string {
	sorted := render.SortedHiddenFields(render.MergeHiddenFields(nil, hidden...))
	out := make([]map[string]string, 0, len(sorted))
	for _, h := range sorted {
		out = append(out, map[string]string{"name": h.Name, "value": h.Value})
	}
	return out
}

func themeView(opts render.RenderOptions) map[string]any {
	if opts.Theme == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    opts.Theme.Theme,
		"variant": opts.Theme.Variant,
		"cssvars": opts.Theme.CSSVars,
	}
}

func assetURL(opts render.RenderOptions, key string) string {
	if opts.Theme == nil || opts.Theme.AssetURL == nil {
		return ""
	}
	return opts.Theme.AssetURL(key)
}
