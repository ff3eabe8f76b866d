package context

import (
	"context"

	"github.com/dtroode/contractchecker-server/internal/model"
)

// identityKey is unexported so only this package can place an identity in a
// context; clients cannot forge one through request metadata.
type identityKey struct{}

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the verified caller identity in request contexts.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a copy of ctx carrying identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext returns the identity set by SetIdentityToContext.
// The second value is false for anonymous calls.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	if !ok || identity.UID == "" {
		return model.Identity{}, false
	}
	return identity, true
}
