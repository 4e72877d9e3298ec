package auth

import "errors"

// Token validation errors. The API maps all of them to 401.
var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid authentication token")

	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned while the nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType is returned for tokens minted for something other
	// than API access.
	ErrWrongTokenType = errors.New("wrong token type")
)
