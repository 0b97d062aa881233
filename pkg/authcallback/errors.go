package authcallback

import "errors"

var (
	ErrInvalidKey       = errors.New("invalid state protection key")
	ErrInvalidState     = errors.New("invalid authentication state")
	ErrSignatureInvalid = errors.New("authentication state signature mismatch")
	ErrStateExpired     = errors.New("authentication state expired")
	ErrFormTooLarge     = errors.New("callback form exceeds size limit")
	ErrInvalidScheme    = errors.New("invalid authentication scheme")
)
