package model

import "context"

// Identity is the caller as vouched for by the identity provider.
type Identity struct {
	UID   string
	Email string
}

// IdentityVerifier checks a bearer ID token against the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (Identity, error)
}

// SessionTokenManager mints and parses the session cookie value.
type SessionTokenManager interface {
	GenerateSessionToken(uid string) (string, error)
	ParseSessionToken(token string) (string, error)
}
