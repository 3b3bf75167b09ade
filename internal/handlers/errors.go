package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/handlers/render"
	"github.com/nkiryanov/r6tracker/internal/logger"
)

// Render service error by its kind
// Unknown errors are logged with the whole chain and hidden from the caller
func serviceError(w http.ResponseWriter, l logger.Logger, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, notFoundMessage, http.StatusNotFound)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		render.ServiceError(w, "Upstream session is not established", http.StatusServiceUnavailable)
	case errors.Is(err, apperrors.ErrUpstream):
		l.Warn("Upstream request failed", "error", err)
		render.ServiceError(w, "Upstream service error", http.StatusBadGateway)
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		render.ServiceError(w, "Email address already exists.", http.StatusConflict)
	case errors.Is(err, apperrors.ErrUsernameAlreadyExists):
		render.ServiceError(w, "Username already exists.", http.StatusConflict)
	case errors.Is(err, apperrors.ErrAlreadyExists):
		render.ServiceError(w, "Username or email already exists.", http.StatusConflict)
	default:
		l.Error("Request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
