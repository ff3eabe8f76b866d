package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/dtroode/contractchecker-server/internal/model"
)

var _ model.IdentityVerifier = (*IDTokenVerifier)(nil)

// IDTokenVerifierConfig pins the identity provider.
type IDTokenVerifierConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
}

// IDTokenVerifier validates identity provider ID tokens: signature against
// the provider key set, issuer, audience and expiry.
type IDTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

type idTokenClaims struct {
	Email string `json:"email"`
}

// NewIDTokenVerifier builds a verifier that fetches signing keys from the
// configured JWKS endpoint and caches them until rotation.
func NewIDTokenVerifier(ctx context.Context, cfg IDTokenVerifierConfig) (*IDTokenVerifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || cfg.JWKSURL == "" {
		return nil, errors.New("id token verifier: issuer, audience and jwks url are required")
	}

	keySet := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	return newIDTokenVerifierWithKeySet(keySet, cfg.Issuer, cfg.Audience, nil), nil
}

func newIDTokenVerifierWithKeySet(keySet oidc.KeySet, issuer, audience string, now func() time.Time) *IDTokenVerifier {
	return &IDTokenVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID: audience,
			Now:      now,
		}),
	}
}

// Verify checks rawIDToken and returns the identity it asserts.
func (v *IDTokenVerifier) Verify(ctx context.Context, rawIDToken string) (model.Identity, error) {
	if rawIDToken == "" {
		return model.Identity{}, errors.New("id token is empty")
	}

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to verify id token: %w", err)
	}
	if idToken.Subject == "" {
		return model.Identity{}, model.ErrMissingSubject
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return model.Identity{}, fmt.Errorf("failed to decode id token claims: %w", err)
	}

	return model.Identity{UID: idToken.Subject, Email: claims.Email}, nil
}
