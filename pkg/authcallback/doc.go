// Package authcallback implements a tenant strategy for remote
// authentication callbacks.
//
// When an application sends a user to an external identity provider (OAuth2,
// OpenID Connect and similar), the request that comes back lands on a fixed
// callback path which usually carries no tenant information in its host or
// path. The scheme that started the challenge therefore stores the tenant
// identifier in the protected state parameter, and Strategy reads it back:
//
//	protector, _ := authcallback.NewEncryptedProtector(key)
//	google, _ := authcallback.NewOAuth2Scheme("google", oauthConfig, protector)
//
//	strategy, _ := authcallback.New(authcallback.Schemes{google})
//	resolver, _ := tenant.NewResolver(store, tenant.WithStrategy(strategy))
//
//	// on the tenant's login page
//	url, err := google.ChallengeURL(r.Context())
//
// GET callbacks read state from the query string. POST callbacks with a form
// content type read it from the body, bounded by WithMaxFormSize, and the body
// is restored for the handler that follows. The form key is matched without
// regard to case.
//
// State is produced by a Protector: EncryptedProtector (AES-256-GCM with an
// HKDF derived key) hides the payload, SignedProtector (HMAC-SHA-256) only
// guards its integrity. Both reject expired properties.
package authcallback
