package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/goliatone/go-uibuilder/pkg/templates"
)

func ListTemplates(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := app.Templates.List()
		if list == nil {
			list = []templates.Template{}
		}
		render.JSON(w, r, list)
	}
}

func GetTemplate(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tpl, ok := app.Templates.Get(id)
		if !ok {
			LogNotFound(w, r, "templates.get", id, "Template not found")
			return
		}
		render.JSON(w, r, tpl)
	}
}
