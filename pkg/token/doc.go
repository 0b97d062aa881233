// Package token produces compact, signed tokens that carry a JSON payload.
//
// A token is base64url(payload).base64url(signature), where the signature is
// an HMAC-SHA-256 of the payload truncated to SignatureSize bytes. The payload
// is readable by anyone holding the token. Only its integrity is protected, so
// use it for values such as authentication state round-tripped through a
// browser, never for secrets.
//
// # Usage
//
//	import "github.com/dmitrymomot/multitenant/pkg/token"
//
//	type state struct {
//	    Tenant  string `json:"tenant"`
//	    Expires int64  `json:"exp"`
//	}
//
//	tok, err := token.GenerateToken(state{"acme", exp}, secret)
//	if err != nil {
//	    return err
//	}
//
//	s, err := token.ParseToken[state](tok, secret)
//	if errors.Is(err, token.ErrSignatureInvalid) {
//	    // tampered or signed with another secret
//	}
//
// Expiry and other payload rules are left to the caller: check them after
// ParseToken returns.
package token
