package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the required master key size.
const KeySize = 32

// ValidateKey checks the master key length.
func ValidateKey(key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKey
	}
	return nil
}

// deriveKey binds the master key to purpose. The caller clears the result.
func deriveKey(key []byte, purpose string) ([]byte, error) {
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(purpose)), derived); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return derived, nil
}

// GenerateKey returns a random master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
