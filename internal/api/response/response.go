// Package response writes bodies in the shapes the document assistant's
// clients expect: bare JSON values on success, {"detail": ...} on error.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorBody is the error envelope
type ErrorBody struct {
	Detail any `json:"detail"`
}

// JSON sends v as the whole response body
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, ErrorBody{Detail: detail})
}

// OK sends a 200 OK response with v
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, detail any) {
	Error(w, http.StatusBadRequest, detail)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, detail any) {
	Error(w, http.StatusNotFound, detail)
}

// Unprocessable sends a 422 response, used for request validation failures
func Unprocessable(w http.ResponseWriter, detail any) {
	Error(w, http.StatusUnprocessableEntity, detail)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, detail any) {
	Error(w, http.StatusInternalServerError, detail)
}
