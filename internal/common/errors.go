// Package common defines shared constants and sentinel errors used across
// the Lotus auth core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Credential store errors.
	ErrNotInitialized    = errors.New("authentication system not initialized")
	ErrDecryptionFailure = errors.New("credential record cannot be decrypted")

	// Verification errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account locked")

	// Validation errors on change operations.
	ErrWeakPassword    = errors.New("password too weak")
	ErrDuplicateValue  = errors.New("new value must differ from the current one")
	ErrInvalidUsername = errors.New("username must be at least 3 characters")

	// Session errors.
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
)
