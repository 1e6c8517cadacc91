package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/logging"
)

// statusFor maps domain errors to a status code and a safe error kind.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrAuthentication):
		return http.StatusUnauthorized, "authentication"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, common.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, common.ErrInternal):
		return http.StatusInternalServerError, "internal"
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "too_large"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(ctx context.Context, l logging.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Warn(ctx, "write response failed", "error", err)
	}
}

// writeError never exposes err's text; server-side failures are logged.
func writeError(ctx context.Context, l logging.Logger, w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", "error", err)
	} else {
		l.Debug(ctx, "request rejected", "status", status, "error", err)
	}
	writeJSON(ctx, l, w, status, errorResponse{Error: kind})
}
