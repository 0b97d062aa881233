// Package secrets seals small payloads with AES-256-GCM.
//
// The cipher key is derived from a 32-byte master key and a purpose string
// with HKDF-SHA-256, so one master key can serve several independent uses
// (authentication state, stored credentials) without their ciphertexts being
// interchangeable. Sealed output is nonce + ciphertext + tag.
//
// # Usage
//
//	import "github.com/dmitrymomot/multitenant/pkg/secrets"
//
//	key, _ := secrets.GenerateKey() // store it securely
//
//	sealer, err := secrets.NewSealer(key, "auth-state")
//	if err != nil {
//	    return err
//	}
//	ct, err := sealer.Seal([]byte("payload"))
//	plain, err := sealer.Open(ct)
//
// EncryptBytes and DecryptBytes do the same for one-off calls. EncryptString
// and DecryptString wrap them with URL-safe base64 for values that travel in
// URLs or form fields.
//
// All errors wrap one of the package sentinels, match them with errors.Is.
package secrets
