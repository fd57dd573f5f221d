// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input (empty name, short password, ...).
	ErrValidation = errors.New("validation")

	// ErrUnauthorized indicates failed authentication (bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnauthenticated indicates that an operation requires a logged-in user.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller can see the entity but may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfShare indicates an attempt to share a file with its owner.
	ErrSelfShare = errors.New("cannot share with owner")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
