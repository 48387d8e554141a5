// Package common defines shared constants and sentinel errors used across
// codepad components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage/read-path errors. ErrorNotFound deliberately covers both
	// "object absent" and "object inaccessible" so that existence is not
	// leaked to callers who do not own the path.
	ErrorNotFound     = errors.New("not found")
	ErrorEmptyContent = errors.New("empty content")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
