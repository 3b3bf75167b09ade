package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/handlers/render"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/models"
)

type authService interface {
	// Register user and issue access token
	// Has to return field specific apperrors.ErrAlreadyExists if username or email taken
	Register(ctx context.Context, username string, email string, password string) (models.IssuedToken, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound if user not found or password is wrong
	Login(ctx context.Context, email string, password string) (models.IssuedToken, error)

	// Set access token to response
	SetAuth(w http.ResponseWriter, token models.IssuedToken)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type tokenResponse struct {
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at"`
}

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{authService: auth, logger: l}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	token, err := h.authService.Register(r.Context(), data.Username, data.Email, data.Password)
	if err != nil {
		serviceError(w, h.logger, err, "User not found")
		return
	}

	h.authService.SetAuth(w, token)
	render.JSON(w, tokenResponse{Message: "User registered successfully", ExpiresAt: token.ExpiresAt.UTC().Format(timeFormat)})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	token, err := h.authService.Login(r.Context(), data.Email, data.Password)
	switch {
	case err == nil:
		h.authService.SetAuth(w, token)
		render.JSON(w, tokenResponse{Message: "User logged in successfully", ExpiresAt: token.ExpiresAt.UTC().Format(timeFormat)})
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusUnauthorized)
	default:
		serviceError(w, h.logger, err, "User not found")
	}
}
