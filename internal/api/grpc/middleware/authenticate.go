package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

const authorizationHeader = "authorization"

// Authenticate verifies bearer ID tokens and injects the caller identity into
// context. Calls without an authorization header continue anonymously so
// each operation can report its own unauthenticated error.
type Authenticate struct {
	verifier       model.IdentityVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier model.IdentityVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// AuthFunc is an auth.AuthFunc for the go-grpc-middleware auth interceptor.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	if md, ok := metadata.FromIncomingContext(ctx); !ok || len(md.Get(authorizationHeader)) == 0 {
		return ctx, nil
	}

	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, err
	}

	identity, err := m.verifier.Verify(ctx, token)
	if err != nil {
		m.logger.Info("Authenticate middleware: id token rejected",
			"error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid id token")
	}

	return m.contextManager.SetIdentityToContext(ctx, identity), nil
}
