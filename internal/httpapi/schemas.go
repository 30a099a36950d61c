package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/goliatone/go-uibuilder/internal/log"
	uirender "github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/store"
	"github.com/goliatone/go-uibuilder/pkg/validation"
)

const schemaNotFound = "Schema not found"

// recordBody is the request body of create and update. Content stays
// generic until the structural validator has accepted it.
type recordBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Content     any     `json:"content"`
}

// checkContent validates content and decodes it. On failure the returned
// response names the offending path under "content".
func checkContent(content any) (schema.UISchema, *ErrorResponse) {
	result := validation.Validate(content)
	if !result.Valid {
		resp := &ErrorResponse{Message: result.Message, Path: joinPath("content", result.Path)}
		if partial, err := schema.Decode(content); err == nil {
			if loc, ok := uirender.LocateIssue(partial, result.Path); ok {
				resp.Location = &loc
			}
		}
		return schema.UISchema{}, resp
	}
	ui, err := schema.Decode(content)
	if err != nil {
		return schema.UISchema{}, &ErrorResponse{Message: err.Error(), Path: "content"}
	}
	return ui, nil
}

func joinPath(prefix, path string) string {
	if path == "" {
		return prefix
	}
	return prefix + "." + path
}

func ListSchemas(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := app.Store.List(r.Context())
		if err != nil {
			LogInternalError(w, r, "store.list", err)
			return
		}
		render.JSON(w, r, records)
	}
}

func GetSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, err := app.Store.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			LogNotFound(w, r, "store.get", id, schemaNotFound)
			return
		}
		if err != nil {
			LogInternalError(w, r, "store.get", err)
			return
		}
		render.JSON(w, r, rec)
	}
}

func CreateSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body recordBody
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid JSON body: %s", err)
			return
		}
		if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
			LogInvalid(w, r, "request.validate", ErrorResponse{Message: "Required", Path: "name"})
			return
		}
		content, invalid := checkContent(body.Content)
		if invalid != nil {
			LogInvalid(w, r, "request.validate", *invalid)
			return
		}

		rec, err := app.Store.Create(r.Context(), store.NewRecord{
			Name:        *body.Name,
			Description: body.Description,
			Content:     content,
		})
		if err != nil {
			LogInternalError(w, r, "store.create", err)
			return
		}
		writeJSON(w, r, http.StatusCreated, rec)
	}
}

func UpdateSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var body recordBody
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid JSON body: %s", err)
			return
		}

		patch := store.Patch{Name: body.Name, Description: body.Description}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
			LogInvalid(w, r, "request.validate", ErrorResponse{Message: "Required", Path: "name"})
			return
		}
		if body.Content != nil {
			content, invalid := checkContent(body.Content)
			if invalid != nil {
				LogInvalid(w, r, "request.validate", *invalid)
				return
			}
			patch.Content = &content
		}

		rec, err := app.Store.Update(r.Context(), id, patch)
		if errors.Is(err, store.ErrNotFound) {
			LogNotFound(w, r, "store.update", id, schemaNotFound)
			return
		}
		if err != nil {
			LogInternalError(w, r, "store.update", err)
			return
		}
		render.JSON(w, r, rec)
	}
}

func DeleteSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deleted, err := app.Store.Delete(r.Context(), id)
		if err != nil {
			LogInternalError(w, r, "store.delete", err)
			return
		}
		if !deleted {
			LogNotFound(w, r, "store.delete", id, schemaNotFound)
			return
		}
		render.NoContent(w, r)
	}
}
