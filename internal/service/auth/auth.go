package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/r6tracker/internal/models"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

var ErrNoAccessToken = errors.New("access token not found in request")

type tokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)
	ParseAccess(access string) (uuid.UUID, error)
}

type userService interface {
	CreateUser(ctx context.Context, username string, email string, password string) (models.User, error)
	Authenticate(ctx context.Context, email string, password string) (models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type Config struct {
	// Header to read and write access token
	// If not set than default is used
	AccessHeaderName string

	// Auth scheme put before access token in header
	// If not set than default is used
	AccessAuthScheme string
}

// Auth service
type AuthService struct {
	accessHeaderName string
	accessAuthScheme string

	tokens tokenManager
	users  userService
}

func NewService(cfg Config, tokens tokenManager, users userService) (*AuthService, error) {
	if tokens == nil || users == nil {
		return nil, errors.New("token manager and user service must not be nil")
	}

	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		tokens:           tokens,
		users:            users,
	}, nil
}

// Register user and issue access token
// Duplicate username or email returned as field specific apperrors.ErrAlreadyExists
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (models.IssuedToken, error) {
	user, err := s.users.CreateUser(ctx, username, email, password)
	if err != nil {
		return models.IssuedToken{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return token, nil
}

// Login user by email and password
// Has to return apperrors.ErrUserNotFound if user not found or password is wrong
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.IssuedToken, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return models.IssuedToken{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return token, nil
}

// Write access token to response header
func (s *AuthService) SetAuth(w http.ResponseWriter, token models.IssuedToken) {
	w.Header().Set(s.accessHeaderName, s.accessAuthScheme+" "+token.Value)
}

// Auth reads access token from request and returns its owner
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	access, ok := strings.CutPrefix(r.Header.Get(s.accessHeaderName), s.accessAuthScheme+" ")
	if !ok || access == "" {
		return models.User{}, ErrNoAccessToken
	}

	userID, err := s.tokens.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	return s.users.GetUser(ctx, userID)
}
