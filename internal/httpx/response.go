// Package httpx holds the JSON response helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/diewo77/seize-billing/internal/validation"
)

var logger = loggo.GetLogger("seize.httpx")

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Debugf("writing response: %v", err)
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps a service error onto a status code and error body. Anything
// outside the known taxonomy is logged and reported as a 500 without the
// underlying message.
func Error(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, errors.NotValid):
		JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, errors.NotFound):
		JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, errors.Unauthorized):
		JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, errors.Forbidden):
		JSONError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		logger.Errorf("internal error: %v", err)
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// DecodeJSON reads a JSON request body into dst. A malformed body is
// reported as a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NotValidf("request body: %v", err)
	}
	return nil
}
