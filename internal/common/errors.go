// Package common defines shared constants and sentinel errors used across
// the rabbits API layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors; concrete failures wrap this value with a field message.
	ErrValidation = errors.New("validation error")

	// Authentication errors.
	ErrInvalidCredentials = errors.New("username or password is incorrect")
	ErrDuplicateUsername  = errors.New("username is already taken")

	// Token errors (invalid, malformed or tampered token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrIdentityNotFound means a token verified but the user it names is gone.
	ErrIdentityNotFound = errors.New("authorization error: the user could not be found")
)
