package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/goliatone/go-uibuilder/internal/log"
	uirender "github.com/goliatone/go-uibuilder/pkg/render"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message  string                  `json:"message"`
	Path     string                  `json:"path,omitempty"`
	Location *uirender.IssueLocation `json:"location,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// LogInternalError logs err and answers 500.
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{Message: http.StatusText(http.StatusInternalServerError)})
}

// LogNotFound logs at debug level and answers 404 with msg.
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any, msg string) {
	log.Debugf("%s: not found (%v)", code, id)
	writeJSON(w, r, http.StatusNotFound, ErrorResponse{Message: msg})
}

// LogStatus logs code at level and answers status with its default text.
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	writeJSON(w, r, status, ErrorResponse{Message: http.StatusText(status)})
}

// LogStatusMsg logs code and the formatted message at level and answers
// status with that message.
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeJSON(w, r, status, ErrorResponse{Message: errMsg})
}

// LogInvalid answers 400 with the failing path and, when known, the
// component it points at.
func LogInvalid(w http.ResponseWriter, r *http.Request, code string, resp ErrorResponse) {
	log.Debugf("%s: %s: %s", code, resp.Path, resp.Message)
	writeJSON(w, r, http.StatusBadRequest, resp)
}
