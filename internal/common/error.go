// Package common defines sentinel errors shared across layers of EmoTune.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Contract violations: the caller must fix its input, not retry.
	ErrOpenIDRequired = errors.New("user openId is required for upsert")

	// ErrStoreUnavailable marks write operations that cannot proceed
	// without a configured database. Read paths degrade instead of
	// returning it.
	ErrStoreUnavailable = errors.New("database not available")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
