package apperrors

import (
	"fmt"
)

// Classify maps persistence failure onto the error taxonomy the handlers understand
//
//   - unique violation on "email" or "username": field specific ErrAlreadyExists
//   - unique violation on unknown field: ErrAlreadyExists
//   - not found: the wrapped well known error (e.g. ErrUserNotFound) as is
//   - anything else: ErrInternal, the cause is kept in the chain for logs
func Classify(err error) error {
	if err == nil {
		return nil
	}

	se, ok := AsStoreError(err)
	if !ok {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	switch se.Kind {
	case KindUniqueViolation:
		switch se.Field {
		case "email":
			return ErrEmailAlreadyExists
		case "username":
			return ErrUsernameAlreadyExists
		default:
			return ErrAlreadyExists
		}
	case KindNotFound:
		return se.Err
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
