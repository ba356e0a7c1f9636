// Package httputil writes JSON responses and maps sentinel errors to HTTP
// status codes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"opevent/pkg/platform/sentinel"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a JSON error response. Client errors carry their
// message; server errors only carry a code.
func WriteError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	body := errorBody{Error: code}
	if status < http.StatusInternalServerError {
		body.ErrorDescription = err.Error()
	}
	WriteJSON(w, status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, sentinel.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, sentinel.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, sentinel.ErrUnknownKind):
		return http.StatusUnprocessableEntity, "unprocessable_entity"
	case errors.Is(err, sentinel.ErrUnavailable):
		return http.StatusServiceUnavailable, "service_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
