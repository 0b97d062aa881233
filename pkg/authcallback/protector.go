package authcallback

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/multitenant/pkg/secrets"
	"github.com/dmitrymomot/multitenant/pkg/token"
)

const (
	// KeySize is the required size of the encryption key.
	KeySize = secrets.KeySize

	// statePurpose separates state keys from other uses of the same master key.
	statePurpose = "multitenant-auth-state-v1"
)

// Protector encodes Properties into an opaque state string and back.
type Protector interface {
	Protect(p *Properties) (string, error)
	Unprotect(state string) (*Properties, error)
}

// EncryptedProtector seals state with AES-256-GCM under a key derived
// from the master key with HKDF-SHA-256.
type EncryptedProtector struct {
	sealer *secrets.Sealer
}

// NewEncryptedProtector expects a 32-byte master key.
func NewEncryptedProtector(key []byte) (*EncryptedProtector, error) {
	sealer, err := secrets.NewSealer(key, statePurpose)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &EncryptedProtector{sealer: sealer}, nil
}

// GenerateKey creates a new random key suitable for NewEncryptedProtector.
func GenerateKey() ([]byte, error) {
	return secrets.GenerateKey()
}

func (p *EncryptedProtector) Protect(props *Properties) (string, error) {
	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}

	sealed, err := p.sealer.Seal(data)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (p *EncryptedProtector) Unprotect(state string) (*Properties, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return nil, errors.Join(ErrInvalidState, err)
	}

	data, err := p.sealer.Open(raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidState, err)
	}

	var props Properties
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, errors.Join(ErrInvalidState, err)
	}
	return checkExpiry(&props)
}

// SignedProtector encodes state as a signed token. The payload is readable
// by anyone, only its integrity is protected.
type SignedProtector struct {
	secret string
}

// NewSignedProtector requires a non-empty secret.
func NewSignedProtector(secret string) (*SignedProtector, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: secret cannot be empty", ErrInvalidKey)
	}
	return &SignedProtector{secret: secret}, nil
}

func (p *SignedProtector) Protect(props *Properties) (string, error) {
	return token.GenerateToken(props, p.secret)
}

func (p *SignedProtector) Unprotect(state string) (*Properties, error) {
	props, err := token.ParseToken[*Properties](state, p.secret)
	switch {
	case errors.Is(err, token.ErrSignatureInvalid):
		return nil, errors.Join(ErrSignatureInvalid, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidState, err)
	case props == nil:
		return nil, ErrInvalidState
	}
	return checkExpiry(props)
}

func checkExpiry(props *Properties) (*Properties, error) {
	if props.Expired(time.Now()) {
		return nil, ErrStateExpired
	}
	return props, nil
}
