package apperrors

import (
	"errors"
)

// Closed set of outcomes the protocol layer may return.
// Handlers map each one to a fixed HTTP status; everything unexpected
// is wrapped into ErrInternal before it crosses the service boundary.
var (
	ErrUserAlreadyExists = errors.New("email already registered")
	ErrUserNotFound      = errors.New("user not found")

	ErrMissingCredentials = errors.New("email and password are required")
	// Deliberately covers both "no such user" and "wrong password"
	// so callers can't probe which emails are registered
	ErrInvalidCredentials = errors.New("incorrect email or password")

	ErrTokenExpired           = errors.New("token is expired")
	ErrTokenInvalid           = errors.New("token is invalid")
	ErrActivationCodeMismatch = errors.New("activation code does not match")

	ErrSessionNotFound              = errors.New("session not found, please log in again")
	ErrPasswordChangedSinceIssuance = errors.New("password changed after token was issued, please log in again")
	ErrSessionStoreUnavailable      = errors.New("session store unavailable")

	ErrMissingFields       = errors.New("old and new passwords are required")
	ErrMissingConfirmation = errors.New("password confirmation is required")
	ErrPasswordsDontMatch  = errors.New("passwords do not match")
	ErrInvalidUser         = errors.New("invalid user")
	ErrIncorrectPassword   = errors.New("current password is wrong")

	ErrInternal = errors.New("internal error")
)
