package secrets_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitenant/pkg/secrets"
)

func TestEncryptDecryptString(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty string", ""},
		{"state", `{"items":{".tenant":"acme"},"expires_at":"2026-01-01T00:00:00Z"}`},
		{"connection string", "Host=db;Database=acme;Password=p@ss"},
		{"unicode", "Hello 世界 🌍"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ct, err := secrets.EncryptString(key, "auth-state", tt.plaintext)
			require.NoError(t, err)
			assert.NotContains(t, ct, "=")
			if tt.plaintext != "" {
				assert.NotEqual(t, tt.plaintext, ct)
			}

			got, err := secrets.DecryptString(key, "auth-state", ct)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestSealer(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)

	t.Run("round trip with fresh nonces", func(t *testing.T) {
		t.Parallel()

		s, err := secrets.NewSealer(key, "auth-state")
		require.NoError(t, err)

		a, err := s.Seal([]byte("payload"))
		require.NoError(t, err)
		b, err := s.Seal([]byte("payload"))
		require.NoError(t, err)
		assert.False(t, bytes.Equal(a, b))

		plain, err := s.Open(a)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), plain)
	})

	t.Run("purposes do not mix", func(t *testing.T) {
		t.Parallel()

		sealed, err := secrets.EncryptBytes(key, "auth-state", []byte("payload"))
		require.NoError(t, err)

		_, err = secrets.DecryptBytes(key, "connection-strings", sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)

		plain, err := secrets.DecryptBytes(key, "auth-state", sealed)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), plain)
	})

	t.Run("other key", func(t *testing.T) {
		t.Parallel()

		other, err := secrets.GenerateKey()
		require.NoError(t, err)

		sealed, err := secrets.EncryptBytes(key, "auth-state", []byte("payload"))
		require.NoError(t, err)

		_, err = secrets.DecryptBytes(other, "auth-state", sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()

		s, err := secrets.NewSealer(key, "auth-state")
		require.NoError(t, err)

		sealed, err := s.Seal([]byte("payload"))
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = s.Open(sealed)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("short ciphertext", func(t *testing.T) {
		t.Parallel()

		s, err := secrets.NewSealer(key, "auth-state")
		require.NoError(t, err)

		_, err = s.Open([]byte("short"))
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)

		_, err = secrets.DecryptString(key, "auth-state", "!!!")
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})

	t.Run("concurrent use", func(t *testing.T) {
		t.Parallel()

		s, err := secrets.NewSealer(key, "auth-state")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sealed, err := s.Seal([]byte("payload"))
				assert.NoError(t, err)
				plain, err := s.Open(sealed)
				assert.NoError(t, err)
				assert.Equal(t, []byte("payload"), plain)
			}()
		}
		wg.Wait()
	})
}

func TestKeyValidation(t *testing.T) {
	t.Parallel()

	_, err := secrets.NewSealer([]byte("short"), "auth-state")
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)

	_, err = secrets.EncryptBytes(make([]byte, 64), "auth-state", nil)
	assert.ErrorIs(t, err, secrets.ErrInvalidKey)

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, secrets.KeySize)
	assert.NoError(t, secrets.ValidateKey(key))

	_, err = secrets.NewSealer(key, "")
	assert.ErrorIs(t, err, secrets.ErrEmptyPurpose)
}
