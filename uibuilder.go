// Package uibuilder is the entry point for callers that want to parse a page
// schema and render it without wiring the dispatcher and renderers by hand.
package uibuilder

import (
	"context"
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/renderers/html"
	"github.com/goliatone/go-uibuilder/pkg/renderers/jsontree"
	"github.com/goliatone/go-uibuilder/pkg/renderers/tui"
	"github.com/goliatone/go-uibuilder/pkg/sandbox"
	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/validation"
)

// Schema is the root page description.
type Schema = schema.UISchema

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// Parse decodes raw (JSON or YAML) and runs the structural validator. A
// structural failure is returned as *validation.Error.
func Parse(raw []byte) (Schema, error) {
	ui, result, err := validation.ValidateJSON(raw)
	if err != nil {
		return Schema{}, err
	}
	if err := result.Err(); err != nil {
		return Schema{}, err
	}
	return ui, nil
}

type options struct {
	logger    logrus.FieldLogger
	sandbox   []sandbox.Option
	htmlOpts  []html.Option
	terminal  []tui.Option
	withTUI   bool
	themeCfg  *theme.RendererConfig
	renderers []render.Renderer
}

// Option configures NewDispatcher, NewRegistry and Render.
type Option func(*options)

// WithLogger routes dispatcher and fragment console logs to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSandboxOptions configures the executor behind form submissions.
func WithSandboxOptions(opts ...sandbox.Option) Option {
	return func(o *options) {
		o.sandbox = append(o.sandbox, opts...)
	}
}

// WithHTMLOptions configures the HTML renderer.
func WithHTMLOptions(opts ...html.Option) Option {
	return func(o *options) {
		o.htmlOpts = append(o.htmlOpts, opts...)
	}
}

// WithTerminal registers the interactive terminal renderer.
func WithTerminal(opts ...tui.Option) Option {
	return func(o *options) {
		o.withTUI = true
		o.terminal = append(o.terminal, opts...)
	}
}

// WithRenderer registers an extra renderer.
func WithRenderer(r render.Renderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderers = append(o.renderers, r)
		}
	}
}

// WithThemeSelection resolves a go-theme selection into the renderer config
// Render passes along. fallbacks name partials used when the theme has none.
func WithThemeSelection(selection *theme.Selection, fallbacks map[string]string) Option {
	return func(o *options) {
		o.themeCfg = html.ThemeConfig(selection, fallbacks)
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewDispatcher builds a dispatcher whose forms run their submit handlers in
// a sandbox configured by opts.
func NewDispatcher(opts ...Option) *render.Dispatcher {
	o := collect(opts)
	return newDispatcher(o)
}

func newDispatcher(o options) *render.Dispatcher {
	var dopts []render.Option
	sopts := append([]sandbox.Option(nil), o.sandbox...)
	if o.logger != nil {
		dopts = append(dopts, render.WithLogger(o.logger))
		sopts = append(sopts, sandbox.WithLogger(o.logger))
	}
	dopts = append(dopts, render.WithExecutor(sandbox.New(sopts...)))
	return render.NewDispatcher(dopts...)
}

// NewRegistry registers the html and json renderers, the terminal renderer
// when WithTerminal is given, and any WithRenderer extras.
func NewRegistry(opts ...Option) (*render.Registry, error) {
	return newRegistry(collect(opts))
}

func newRegistry(o options) (*render.Registry, error) {
	registry := render.NewRegistry()

	htmlRenderer, err := html.New(o.htmlOpts...)
	if err != nil {
		return nil, err
	}
	all := []render.Renderer{htmlRenderer, jsontree.New()}
	if o.withTUI {
		all = append(all, tui.New(o.terminal...))
	}
	all = append(all, o.renderers...)

	for _, r := range all {
		if err := registry.Register(r); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Render parses raw, mounts it and renders it with the named renderer.
func Render(ctx context.Context, raw []byte, rendererName string, renderOpts RenderOptions, opts ...Option) ([]byte, error) {
	ui, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	o := collect(opts)
	registry, err := newRegistry(o)
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Get(rendererName)
	if err != nil {
		return nil, fmt.Errorf("uibuilder: %w", err)
	}
	if renderOpts.Theme == nil {
		renderOpts.Theme = o.themeCfg
	}
	page := newDispatcher(o).Mount(ui)
	return renderer.Render(ctx, page, renderOpts)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
