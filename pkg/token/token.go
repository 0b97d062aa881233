package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// SignatureSize is the number of HMAC-SHA-256 bytes kept in a token.
const SignatureSize = 16

const separator = "."

// GenerateToken JSON encodes payload and appends its truncated signature.
func GenerateToken[T any](payload T, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(data) + separator +
		base64.RawURLEncoding.EncodeToString(sign(data, secret)), nil
}

// ParseToken verifies the signature and decodes the payload into T.
// Malformed input yields ErrInvalidToken, a bad signature ErrSignatureInvalid.
func ParseToken[T any](token, secret string) (T, error) {
	var payload T
	if secret == "" {
		return payload, ErrEmptySecret
	}

	encData, encSig, ok := strings.Cut(token, separator)
	if !ok || strings.Contains(encSig, separator) {
		return payload, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(encData)
	if err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}

	if subtle.ConstantTimeCompare(sig, sign(data, secret)) != 1 {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	return payload, nil
}

func sign(data []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return h.Sum(nil)[:SignatureSize]
}
