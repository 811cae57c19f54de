package session

import (
	"errors"
	"fmt"
)

// ErrNoRefreshToken is the cause of a refresh attempted without a refresh token.
var ErrNoRefreshToken = errors.New("no refresh token")

// AuthenticationError means the session could not be established or kept:
// bad credentials, a rejected refresh, or a non-staff account. The session is
// always anonymous after one is returned.
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	}
	return "authentication failed: " + e.Message
}

// Unwrap lets errors.Is / errors.As reach the cause.
func (e *AuthenticationError) Unwrap() error { return e.Cause }

// IsAuthError returns true if err (or any wrapped error) is an AuthenticationError.
func IsAuthError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
