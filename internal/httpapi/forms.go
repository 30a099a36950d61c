package httpapi

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/goliatone/go-uibuilder/internal/log"
	uirender "github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/store"
)

func submitURL(schemaID, componentID string) string {
	return "/api/schemas/" + url.PathEscape(schemaID) + "/forms/" + url.PathEscape(componentID) + "/submit"
}

func (app App) renderOptions(rec schema.Record) uirender.RenderOptions {
	return uirender.RenderOptions{
		Title: rec.Name,
		Theme: app.Theme,
		FormHidden: func(componentID string) []uirender.HiddenField {
			return uirender.SchemaRef(rec.ID, componentID)
		},
		ActionURL: func(componentID string) string {
			return submitURL(rec.ID, componentID)
		},
	}
}

func (app App) loadRecord(w http.ResponseWriter, r *http.Request, code string) (schema.Record, bool) {
	id := chi.URLParam(r, "id")
	rec, err := app.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		LogNotFound(w, r, code, id, schemaNotFound)
		return schema.Record{}, false
	}
	if err != nil {
		LogInternalError(w, r, code, err)
		return schema.Record{}, false
	}
	return rec, true
}

func (app App) writePage(w http.ResponseWriter, r *http.Request, status int, renderer uirender.Renderer, page *uirender.Page, opts uirender.RenderOptions) {
	out, err := renderer.Render(r.Context(), page, opts)
	if err != nil {
		LogInternalError(w, r, "render."+renderer.Name(), err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	w.Write(out)
}

// RenderSchema renders a stored schema with the renderer named by
// ?renderer= (html by default).
func RenderSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("renderer")
		if name == "" {
			name = DefaultRenderer
		}
		renderer, err := app.Renderers.Get(name)
		if err != nil {
			LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "render.renderer",
				"Unknown renderer %q (available: %s)", name, strings.Join(app.Renderers.List(), ", "))
			return
		}

		rec, ok := app.loadRecord(w, r, "render.get")
		if !ok {
			return
		}
		page := app.Dispatcher.Mount(rec.Content)
		app.writePage(w, r, http.StatusOK, renderer, page, app.renderOptions(rec))
	}
}

// SubmitResponse is the JSON body of a form submission.
type SubmitResponse struct {
	Outcome any               `json:"outcome,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SubmitForm mounts the stored schema, fills the named form and submits it.
// JSON bodies are a mapping of field name to value and get a JSON reply.
// Url-encoded bodies come from rendered HTML forms and get the page back
// with errors or the outcome in place.
func SubmitForm(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := app.loadRecord(w, r, "submit.get")
		if !ok {
			return
		}
		componentID := chi.URLParam(r, "componentID")
		page := app.Dispatcher.Mount(rec.Content)
		form, ok := page.Form(componentID)
		if !ok {
			LogNotFound(w, r, "submit.form", componentID, "Form not found")
			return
		}

		htmlPost := isFormPost(r)
		var values map[string]any
		if htmlPost {
			if err := r.ParseForm(); err != nil {
				LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_form", "Invalid form body: %s", err)
				return
			}
			values = formValues(form.Props(), r.PostForm)
		} else if err := render.DecodeJSON(r.Body, &values); err != nil {
			LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid JSON body: %s", err)
			return
		}

		for name, value := range values {
			if strings.HasPrefix(name, "_") {
				continue
			}
			if err := form.SetValue(name, value); err != nil {
				LogInvalid(w, r, "submit.set_value", ErrorResponse{Message: "Unknown field", Path: name})
				return
			}
		}

		result, err := form.Submit(r.Context())
		if errors.Is(err, uirender.ErrSubmitInFlight) {
			LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "submit.in_flight", "%s", err)
			return
		}
		if err != nil {
			LogInternalError(w, r, "submit", err)
			return
		}
		if result.Err != nil {
			log.Debugf("submit.execute: %s/%s: %s", rec.ID, componentID, result.Err)
		}

		status := http.StatusOK
		if !result.Valid() {
			status = http.StatusUnprocessableEntity
		}

		if htmlPost {
			if renderer, err := app.Renderers.Get(DefaultRenderer); err == nil {
				opts := app.renderOptions(rec)
				opts.Forms = uirender.PageForms(page)
				app.writePage(w, r, status, renderer, page, opts)
				return
			}
		}

		if !result.Valid() {
			writeJSON(w, r, status, SubmitResponse{Errors: result.Errors.Map()})
			return
		}
		writeJSON(w, r, status, SubmitResponse{Outcome: result.Outcome})
	}
}

func isFormPost(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded"
}

// formValues maps posted values onto the declared fields. Browsers omit
// unchecked checkboxes, so a checkbox is true only when present.
func formValues(props schema.FormProps, posted url.Values) map[string]any {
	values := make(map[string]any, len(props.Fields))
	for _, f := range props.Fields {
		_, present := posted[f.Name]
		if f.Type == schema.FieldCheckbox {
			values[f.Name] = present
			continue
		}
		if present {
			values[f.Name] = posted.Get(f.Name)
		}
	}
	return values
}
