// Package shared holds the response helpers every handler uses.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "gramseva/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError translates a coded domain error into the JSON error envelope.
// Internal details never reach the client; they are logged instead.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	message := dErrors.MessageOf(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
		message = "something went wrong"
	}

	WriteJSON(w, status, ErrorResponse{
		Error:   string(code),
		Message: message,
	})
}

// DecodeJSON parses a request body into dst, translating malformed input into
// a bad_request domain error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}
