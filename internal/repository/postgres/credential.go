package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/models"
)

type CredentialRepo struct {
	DB DBTX
}

const credentialColumns = `id, email, token, expires_at, created_at, updated_at`

const getCredentialByEmail = `-- name: GetCredentialByEmail
SELECT ` + credentialColumns + ` FROM ubi_credentials
WHERE email = $1
`

func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (models.Credential, error) {
	return r.getOne(ctx, getCredentialByEmail, email)
}

const createCredential = `-- name: CreateCredential
INSERT INTO ubi_credentials (id, email, token, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING ` + credentialColumns

// Create credential. ID and timestamps are generated if not set
func (r *CredentialRepo) Create(ctx context.Context, c models.Credential) (models.Credential, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	return r.getOne(ctx, createCredential, c.ID, c.Email, c.Token, c.ExpiresAt, c.CreatedAt)
}

const updateCredential = `-- name: UpdateCredential
UPDATE ubi_credentials
SET token = $2, expires_at = $3, updated_at = $4
WHERE email = $1
RETURNING ` + credentialColumns

func (r *CredentialRepo) Update(ctx context.Context, email string, token string, expiresAt time.Time) (models.Credential, error) {
	return r.getOne(ctx, updateCredential, email, token, expiresAt, time.Now())
}

const deleteCredential = `-- name: DeleteCredential
DELETE FROM ubi_credentials
WHERE email = $1
`

func (r *CredentialRepo) Delete(ctx context.Context, email string) error {
	_, err := r.DB.Exec(ctx, deleteCredential, email)
	return storeError(err, apperrors.ErrCredentialNotFound)
}

func (r *CredentialRepo) getOne(ctx context.Context, sql string, args ...any) (models.Credential, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return models.Credential{}, storeError(err, apperrors.ErrCredentialNotFound)
	}

	c, err := pgx.CollectOneRow(rows, rowToCredential)
	return c, storeError(err, apperrors.ErrCredentialNotFound)
}

func rowToCredential(row pgx.CollectableRow) (models.Credential, error) {
	var c models.Credential
	err := row.Scan(&c.ID, &c.Email, &c.Token, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
