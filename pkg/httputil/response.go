package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/reputation-service/pkg/errors"
	"github.com/utafrali/reputation-service/pkg/logger"
)

// ErrorItem is a single machine-readable error in the response envelope.
type ErrorItem struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ErrorEnvelope is the JSON body returned for every failed request:
// {"errors":[{"id":..., "message":...}]}.
type ErrorEnvelope struct {
	Errors []ErrorItem `json:"errors"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError renders an error in the standard envelope. APIErrors keep their
// id, message, and status; anything else becomes a 500 internal_error and is
// logged. It uses the request-scoped logger from context, set by the
// RequestLogger middleware.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContext(r.Context())

	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			l.ErrorContext(r.Context(), "internal error",
				slog.String("error", err.Error()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		WriteJSON(w, apiErr.Status, ErrorEnvelope{
			Errors: []ErrorItem{{ID: apiErr.ID, Message: apiErr.Message}},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		WriteJSON(w, status, ErrorEnvelope{
			Errors: []ErrorItem{{ID: apperrors.IDInternalError, Message: "An internal error occurred"}},
		})
		return
	}

	WriteJSON(w, status, ErrorEnvelope{
		Errors: []ErrorItem{{ID: apperrors.IDBadArguments, Message: err.Error()}},
	})
}
