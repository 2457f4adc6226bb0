package errors

import (
	"errors"
	"fmt"
)

// Authentication step errors. These messages are surfaced to clients verbatim
// through auth.Result, so they must never say why a credential check failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadySetUp       = errors.New("2FA is already set up")
	ErrNotSetup           = errors.New("2FA is not set up")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrInvalidStep        = errors.New("invalid authentication step")
	ErrRateLimited        = errors.New("too many attempts, try again later")
)

// Session errors. ErrInvalidOrExpiredToken is never shown to a client, a bad
// token is the same as no token.
var (
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrSessionRequired       = errors.New("authentication required")
)

// General errors
var (
	ErrInternal   = errors.New("internal error")
	ErrBadRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
