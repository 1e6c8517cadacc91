// Package common defines shared constants and sentinel errors used across
// client and server layers of msgboard. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrAccessDenied = errors.New("access denied")
	ErrValidation   = errors.New("validation error")

	// Login with a password that does not match the shared secret.
	ErrAuthentication = errors.New("authentication failed")

	// Bearer token errors. Both mean "unauthenticated" to callers.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Envelope is truncated or failed AEAD tag verification.
	ErrIntegrity = errors.New("envelope integrity check failed")
)
