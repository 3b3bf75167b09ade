package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
)

// Postgres does not report column name for unique violations, only the constraint
// Keep in sync with constraint names in migrations
var uniqueConstraintFields = map[string]string{
	"users_username_key":        "username",
	"users_email_key":           "email",
	"ubi_credentials_email_key": "email",
}

// storeError converts pgx errors to *apperrors.StoreError
// notFound is the well known error to report when no rows returned
func storeError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewStoreNotFound(notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		field := pgErr.ColumnName
		if field == "" {
			field = uniqueConstraintFields[pgErr.ConstraintName]
		}
		return apperrors.NewUniqueViolation(field, err)
	}

	return apperrors.NewStoreOther(err)
}
