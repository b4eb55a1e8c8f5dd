package auth

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("auth: unauthorized")
	ErrUsernameNotFound = errors.New("auth: username not found")
	ErrUnsupportedUser  = errors.New("auth: unsupported user")
	ErrNoSession        = errors.New("auth: no session")
	ErrInvalidSession   = errors.New("auth: invalid session")
)

// UsernameNotFoundError is returned by the user provider when no employee
// matches. It matches ErrUsernameNotFound and deliberately does not wrap the
// lookup error.
type UsernameNotFoundError struct {
	Username string
}

func (e *UsernameNotFoundError) Error() string {
	return fmt.Sprintf("auth: username %q does not exist", e.Username)
}

func (e *UsernameNotFoundError) Is(target error) bool {
	return target == ErrUsernameNotFound
}
