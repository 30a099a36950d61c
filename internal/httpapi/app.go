// Package httpapi exposes stored schemas over HTTP: CRUD, validation,
// rendering and form submission.
package httpapi

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/store"
	"github.com/goliatone/go-uibuilder/pkg/templates"
)

// App carries the collaborators every handler needs.
type App struct {
	Store      store.Repository
	Templates  *templates.Catalog
	Dispatcher *render.Dispatcher
	// Renderers selectable with ?renderer=. Only renderers that produce a
	// response body belong here.
	Renderers *render.Registry
	// Theme is optional; when set it is handed to every renderer.
	Theme *theme.RendererConfig
}

// DefaultRenderer is used when a render request names none.
const DefaultRenderer = "html"
