package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// Sealer encrypts with a key derived once from a master key and purpose.
// It is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer returns ErrInvalidKey for a key that is not KeySize bytes and
// ErrEmptyPurpose when purpose is empty.
func NewSealer(key []byte, purpose string) (*Sealer, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	derived, err := deriveKey(key, purpose)
	if err != nil {
		return nil, err
	}
	defer clear(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce + ciphertext + tag.
func (s *Sealer) Seal(data []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return s.aead.Seal(nonce, nonce, data, nil), nil
}

// Open reverses Seal. Tampered input or another key yields ErrDecryptionFailed.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize+s.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	plain, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plain, nil
}

func EncryptBytes(key []byte, purpose string, data []byte) ([]byte, error) {
	s, err := NewSealer(key, purpose)
	if err != nil {
		return nil, err
	}
	return s.Seal(data)
}

func DecryptBytes(key []byte, purpose string, sealed []byte) ([]byte, error) {
	s, err := NewSealer(key, purpose)
	if err != nil {
		return nil, err
	}
	return s.Open(sealed)
}

// EncryptString returns the sealed plaintext as unpadded base64url.
func EncryptString(key []byte, purpose, plaintext string) (string, error) {
	sealed, err := EncryptBytes(key, purpose, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func DecryptString(key []byte, purpose, ciphertext string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plain, err := DecryptBytes(key, purpose, sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
