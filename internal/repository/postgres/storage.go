package postgres

import (
	"context"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Credential() repository.CredentialRepo {
	return &CredentialRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperrors.NewStoreOther(err)
	}

	defer func() {
		switch err {
		case nil:
			if cErr := tx.Commit(ctx); cErr != nil {
				err = apperrors.NewStoreOther(cErr)
			}
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	return fn(NewStorage(tx))
}
