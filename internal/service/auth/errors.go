package auth

import "errors"

// Common authentication service errors
var (
	// ErrUnauthorized is returned by SessionVerifier for every rejected
	// credential. The reason is wrapped alongside it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates an email/password pair did not match a user.
	// Unknown emails and wrong passwords are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrTokenRevoked indicates a well-formed token that is no longer in its
	// user's session token set (logged out, or the user was deleted).
	ErrTokenRevoked = errors.New("authentication token has been revoked")
)
