package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/coachflow/internal/ctxkeys"
	"github.com/templui/coachflow/internal/repository"
	"github.com/templui/coachflow/internal/service"
	"github.com/templui/coachflow/internal/validation"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
		message = http.StatusText(status)
	}

	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrWorkflowNotFound),
		errors.Is(err, repository.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrCardAlreadySent),
		errors.Is(err, repository.ErrWorkflowExists):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into dst. A missing body is a
// validation error.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body is required", validation.ErrInvalid)
	}
	if err != nil {
		return fmt.Errorf("%w: malformed JSON body", validation.ErrInvalid)
	}
	return nil
}

// callerSubject names the authenticated caller for attribution.
func callerSubject(r *http.Request) string {
	identity := ctxkeys.Identity(r.Context())
	if identity == nil {
		return ""
	}
	return identity.Subject
}
