package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/models"
	"github.com/nkiryanov/r6tracker/internal/repository"
)

type UserService struct {
	hasher   PasswordHasher
	userRepo repository.UserRepo
}

func NewService(hasher PasswordHasher, userRepo repository.UserRepo) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
	}
}

// Create user with hashed password
// Duplicate username or email is returned as field specific apperrors.ErrAlreadyExists
func (s *UserService) CreateUser(ctx context.Context, username string, email string, password string) (models.User, error) {
	if password == "" {
		return models.User{}, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, username, email, hash)
	if err != nil {
		return models.User{}, fmt.Errorf("can't create user. Err: %w", apperrors.Classify(err))
	}

	return user, nil
}

// Find user by email and check the password
// Unknown email and wrong password are not distinguishable for the caller
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn the same time as for existing user
		_ = s.hasher.Compare("", password)
		return models.User{}, apperrors.ErrUserNotFound
	case err != nil:
		return models.User{}, apperrors.Classify(err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, apperrors.Classify(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		return models.User{}, apperrors.Classify(err)
	}
	return user, nil
}
