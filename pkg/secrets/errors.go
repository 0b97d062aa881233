package secrets

import "errors"

var (
	ErrInvalidKey          = errors.New("invalid key: must be 32 bytes")
	ErrEmptyPurpose        = errors.New("key purpose cannot be empty")
	ErrKeyDerivationFailed = errors.New("key derivation failed")

	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)
