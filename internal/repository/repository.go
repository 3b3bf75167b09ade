package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/r6tracker/internal/models"
)

// All repositories return *apperrors.StoreError on failure,
// so callers may classify it with apperrors.Classify

// User repository interface
type UserRepo interface {
	// Create user
	// Duplicate username or email has to be reported as unique violation with the column name as field
	CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or email
	// If user not found must return not found error wrapping apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update optional profile fields, nil fields are left as is
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error)
}

// Upstream credential repository, keyed by upstream account email
type CredentialRepo interface {
	// Return stored credential
	// If not found must return not found error wrapping apperrors.ErrCredentialNotFound
	GetByEmail(ctx context.Context, email string) (models.Credential, error)

	// Insert new credential
	// Duplicate email has to be reported as unique violation on "email"
	Create(ctx context.Context, credential models.Credential) (models.Credential, error)

	// Update token and expiry of existing credential
	Update(ctx context.Context, email string, token string, expiresAt time.Time) (models.Credential, error)

	// Delete credential. Deleting not existing credential is not an error
	Delete(ctx context.Context, email string) error
}

type Storage interface {
	User() UserRepo
	Credential() CredentialRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
