package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates input failed constraint checks before storage.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail indicates a registration with an email already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates login failure. Unknown email and wrong
	// password both map here so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid indicates a forged, malformed, or expired token.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrNotAuthenticated indicates a request without a live session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrIntegrity indicates a corrupt stored hash or token record.
	ErrIntegrity = errors.New("stored credential corrupt")
)
