package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/internal/metrics"
)

// retryAfterSeconds is sent with 503 responses for store outages.
const retryAfterSeconds = "1"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeErrorBody(w http.ResponseWriter, status int, kind, message, field string) {
	writeJSON(w, errorResponse{Error: kind, Message: message, Field: field}, status)
}

// statusFor maps a marketplace error to its HTTP status.
func statusFor(err error) int {
	switch {
	case market.IsValidation(err):
		return http.StatusBadRequest
	case market.IsRetryable(err):
		return http.StatusServiceUnavailable
	}
	switch market.KindOf(err) {
	case market.KindUnauthenticated:
		return http.StatusUnauthorized
	case market.KindNotFound:
		return http.StatusNotFound
	case market.KindForbidden, market.KindSelfApplicationForbidden:
		return http.StatusForbidden
	case market.KindJobNotOpen, market.KindDuplicateApplication, market.KindAlreadyDecided:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as the JSON error envelope. Errors that are not
// marketplace errors become a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var me *market.Error
	if !errors.As(err, &me) {
		logger.Error("unhandled error", slog.String("path", r.URL.Path), slog.Any("err", err))
		writeErrorBody(w, http.StatusInternalServerError, "internal", "internal server error", "")
		return
	}

	metrics.RecordDomainError(string(me.Kind))
	status := statusFor(me)
	message := me.Message
	if market.IsRetryable(me) {
		// the cause stays in the logs
		logger.Error("store unavailable", slog.String("path", r.URL.Path), slog.Any("err", err))
		w.Header().Set("Retry-After", retryAfterSeconds)
		message = "service temporarily unavailable, retry later"
	}
	writeErrorBody(w, status, string(me.Kind), message, me.Field)
}
