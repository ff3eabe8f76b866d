package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

const (
	msgMissingIDToken = "Missing ID Token"
	msgUnauthorized   = "Unauthorized"
	msgInvalidToken   = "Invalid Token"
)

// Session exchanges identity provider ID tokens for session cookie tokens.
type Session struct {
	verifier model.IdentityVerifier
	tokens   model.SessionTokenManager
	logger   *logger.Logger
}

func NewSession(verifier model.IdentityVerifier, tokens model.SessionTokenManager, logger *logger.Logger) *Session {
	return &Session{
		verifier: verifier,
		tokens:   tokens,
		logger:   logger,
	}
}

// Create verifies idToken and returns a session token for its subject.
func (s *Session) Create(ctx context.Context, idToken string) (string, model.Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return "", model.Identity{}, apierror.NewErrUnauthenticated(msgMissingIDToken)
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if errors.Is(err, model.ErrMissingSubject) {
		s.logger.Info("Session service: id token has no subject")
		return "", model.Identity{}, apierror.NewErrUnauthenticated(msgInvalidToken)
	}
	if err != nil {
		s.logger.Info("Session service: id token rejected",
			"error", err.Error())
		return "", model.Identity{}, apierror.NewErrUnauthenticated(msgUnauthorized)
	}

	token, err := s.tokens.GenerateSessionToken(identity.UID)
	if err != nil {
		s.logger.Error("Session service: failed to mint session token",
			"uid", identity.UID,
			"error", err.Error())
		return "", model.Identity{}, apierror.NewErrInternal("Internal Server Error", err)
	}

	s.logger.Info("Session service: session created",
		"uid", identity.UID)

	return token, identity, nil
}

// Resolve returns the uid bound to a session token.
func (s *Session) Resolve(token string) (string, error) {
	if token == "" {
		return "", apierror.NewErrUnauthenticated(msgUnauthorized)
	}

	uid, err := s.tokens.ParseSessionToken(token)
	if err != nil {
		s.logger.Debug("Session service: session token rejected",
			"error", err.Error())
		return "", apierror.NewErrUnauthenticated(msgUnauthorized)
	}

	return uid, nil
}
