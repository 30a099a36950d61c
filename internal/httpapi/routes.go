package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-uibuilder/internal/log"
)

// Wire builds the router for app.
func Wire(app App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)
	root.Mount("/api", apiRouter(app))
	return root
}

func apiRouter(app App) http.Handler {
	api := chi.NewRouter()

	api.Get("/schemas", ListSchemas(app))
	api.Post("/schemas", CreateSchema(app))
	api.Get("/schemas/{id}", GetSchema(app))
	api.Put("/schemas/{id}", UpdateSchema(app))
	api.Delete("/schemas/{id}", DeleteSchema(app))

	api.Get("/schemas/{id}/render", RenderSchema(app))
	api.Post("/schemas/{id}/forms/{componentID}/submit", SubmitForm(app))

	api.Post("/validate", ValidateSchema(app))
	api.Post("/lint", LintSchema(app))

	api.Get("/templates", ListTemplates(app))
	api.Get("/templates/{id}", GetTemplate(app))

	api.Get("/openapi.json", OpenAPIDocument(app))

	return api
}
