package httpapi

import (
	"net/http"

	"github.com/goliatone/go-uibuilder/pkg/openapi"
)

func OpenAPIDocument(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := openapi.JSON(r.Context())
		if err != nil {
			LogInternalError(w, r, "openapi.load", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
	}
}
