package token_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitenant/pkg/token"
)

type statePayload struct {
	Tenant  string            `json:"tenant"`
	Expires int64             `json:"exp,omitempty"`
	Items   map[string]string `json:"items,omitempty"`
}

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload statePayload
	}{
		{"tenant only", statePayload{Tenant: "acme"}},
		{"with expiry", statePayload{Tenant: "initech", Expires: 1_700_000_000}},
		{"with items", statePayload{Tenant: "lol", Items: map[string]string{"returnUrl": "/dashboard?x=1&y=2"}}},
		{"empty payload", statePayload{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tok, err := token.GenerateToken(tt.payload, "state-secret")
			require.NoError(t, err)
			require.Len(t, strings.Split(tok, "."), 2)

			got, err := token.ParseToken[statePayload](tok, "state-secret")
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestParseToken_Errors(t *testing.T) {
	t.Parallel()

	valid, err := token.GenerateToken(statePayload{Tenant: "acme"}, "state-secret")
	require.NoError(t, err)
	payloadPart, sigPart, _ := strings.Cut(valid, ".")

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		_, err := token.ParseToken[statePayload](valid, "other-secret")
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()

		forged := base64.RawURLEncoding.EncodeToString([]byte(`{"tenant":"initech"}`))
		_, err := token.ParseToken[statePayload](forged+"."+sigPart, "state-secret")
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		for _, tok := range []string{
			"",
			"no-separator",
			valid + ".extra",
			"!!!." + sigPart,
			payloadPart + ".!!!",
		} {
			_, err := token.ParseToken[statePayload](tok, "state-secret")
			assert.ErrorIs(t, err, token.ErrInvalidToken, tok)
		}
	})

	t.Run("payload of another shape", func(t *testing.T) {
		t.Parallel()

		tok, err := token.GenerateToken([]int{1, 2}, "state-secret")
		require.NoError(t, err)

		_, err = token.ParseToken[statePayload](tok, "state-secret")
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("empty secret", func(t *testing.T) {
		t.Parallel()

		_, err := token.GenerateToken(statePayload{}, "")
		assert.ErrorIs(t, err, token.ErrEmptySecret)

		_, err = token.ParseToken[statePayload](valid, "")
		assert.ErrorIs(t, err, token.ErrEmptySecret)
	})
}
