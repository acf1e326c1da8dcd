package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard gateway
var (
	// Session errors
	ErrNoRefreshToken      = errors.New("no refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshFailed       = errors.New("refresh failed")
	ErrSessionCreate       = errors.New("session creation failed")
	ErrSessionInvalid      = errors.New("session invalid")

	// Tenant errors
	ErrUnknownOrInactiveTenant = errors.New("unknown or inactive tenant")

	// Payload errors
	ErrInvalidPayload = errors.New("invalid payload")

	// General errors
	ErrNotFound = errors.New("not found")
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

// Join returns an error that wraps the given errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
