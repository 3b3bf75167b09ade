package apperrors

import (
	"errors"
	"fmt"
)

var (
	// Upstream replied 404 on a lookup
	ErrNotFound = errors.New("not found")

	// No upstream session established yet
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Upstream transport failure, unexpected status code or malformed payload
	ErrUpstream = errors.New("upstream error")

	// Anything that should not be shown to the caller as is
	ErrInternal = errors.New("internal error")

	// Persistence conflicts. Field specific errors wrap ErrAlreadyExists
	ErrAlreadyExists         = errors.New("already exists")
	ErrEmailAlreadyExists    = fmt.Errorf("%w: email address already exists", ErrAlreadyExists)
	ErrUsernameAlreadyExists = fmt.Errorf("%w: username already exists", ErrAlreadyExists)

	ErrUserNotFound       = errors.New("user not found")
	ErrCredentialNotFound = errors.New("credential not found")
)
