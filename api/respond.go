package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"email-designer/composer"
	"email-designer/design"
	"email-designer/param"
	"email-designer/session"
)

// APIError represents a structured error response.
type APIError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg, Code: status})
}

// writeFailure maps a domain error to its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, design.ErrNotFound), errors.Is(err, param.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, design.ErrCorrupt), errors.Is(err, session.ErrEmptyKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, param.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, composer.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
