package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, updated_at, username, email, password_hash, full_name, bio, image`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error) {
	rows, err := r.DB.Query(ctx, createUser, uuid.New(), username, email, hashedPassword)
	if err != nil {
		return models.User{}, storeError(err, apperrors.ErrUserNotFound)
	}

	user, err := pgx.CollectOneRow(rows, rowToUser)
	return user, storeError(err, apperrors.ErrUserNotFound)
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.getOne(ctx, getUserByID, id)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getOne(ctx, getUserByEmail, email)
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET full_name = COALESCE($2, full_name),
    bio = COALESCE($3, bio),
    image = COALESCE($4, image),
    updated_at = $5
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	return r.getOne(ctx, updateProfile, id, update.FullName, update.Bio, update.Image, time.Now())
}

func (r *UserRepo) getOne(ctx context.Context, sql string, args ...any) (models.User, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return models.User{}, storeError(err, apperrors.ErrUserNotFound)
	}

	user, err := pgx.CollectOneRow(rows, rowToUser)
	return user, storeError(err, apperrors.ErrUserNotFound)
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.HashedPassword, &u.FullName, &u.Bio, &u.Image)
	return u, err
}
