package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/goliatone/go-uibuilder/internal/log"
	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/validation"
)

// maxDocumentSize bounds request bodies read in full.
const maxDocumentSize = 1 << 20

func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.read_body", "Could not read body: %s", err)
		return nil, false
	}
	return raw, true
}

// ValidateSchema runs the fail-fast structural validator. The body may be
// JSON or YAML.
func ValidateSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := readDocument(w, r)
		if !ok {
			return
		}
		value, err := schema.Parse(raw)
		if err != nil {
			LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		render.JSON(w, r, validation.Validate(value))
	}
}

// LintSchema reports every issue the document schema finds.
func LintSchema(app App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := readDocument(w, r)
		if !ok {
			return
		}
		render.JSON(w, r, validation.Lint(raw))
	}
}
