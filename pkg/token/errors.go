package token

import "errors"

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrSignatureInvalid = errors.New("token signature mismatch")
	ErrEmptySecret      = errors.New("token secret cannot be empty")
)
