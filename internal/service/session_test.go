package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/mocks"
	"github.com/dtroode/contractchecker-server/internal/model"
	"github.com/dtroode/contractchecker-server/internal/testutil"
)

func TestSession_Create(t *testing.T) {
	verifier := mocks.NewIdentityVerifier(t)
	tokens := mocks.NewSessionTokenManager(t)
	verifier.On("Verify", mock.Anything, "id-token").Return(testIdentity, nil)
	tokens.On("GenerateSessionToken", "uid-1").Return("session-token", nil)

	s := NewSession(verifier, tokens, testutil.MakeNoopLogger())
	token, identity, err := s.Create(context.Background(), " id-token ")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Equal(t, testIdentity, identity)
}

func TestSession_Create_Rejections(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		s := NewSession(mocks.NewIdentityVerifier(t), mocks.NewSessionTokenManager(t), testutil.MakeNoopLogger())

		_, _, err := s.Create(context.Background(), "")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, codes.Unauthenticated, apiErr.GRPCCode)
		assert.Equal(t, "Missing ID Token", apiErr.Message)
	})

	t.Run("verification fails", func(t *testing.T) {
		verifier := mocks.NewIdentityVerifier(t)
		verifier.On("Verify", mock.Anything, "forged").Return(model.Identity{}, errors.New("bad signature"))
		s := NewSession(verifier, mocks.NewSessionTokenManager(t), testutil.MakeNoopLogger())

		_, _, err := s.Create(context.Background(), "forged")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Unauthorized", apiErr.Message)
	})

	t.Run("token without subject", func(t *testing.T) {
		verifier := mocks.NewIdentityVerifier(t)
		verifier.On("Verify", mock.Anything, "no-sub").Return(model.Identity{}, model.ErrMissingSubject)
		s := NewSession(verifier, mocks.NewSessionTokenManager(t), testutil.MakeNoopLogger())

		_, _, err := s.Create(context.Background(), "no-sub")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, codes.Unauthenticated, apiErr.GRPCCode)
		assert.Equal(t, "Invalid Token", apiErr.Message)
	})

	t.Run("signing fails", func(t *testing.T) {
		verifier := mocks.NewIdentityVerifier(t)
		verifier.On("Verify", mock.Anything, "id-token").Return(testIdentity, nil)
		tokens := mocks.NewSessionTokenManager(t)
		tokens.On("GenerateSessionToken", "uid-1").Return("", errors.New("no key"))
		s := NewSession(verifier, tokens, testutil.MakeNoopLogger())

		_, _, err := s.Create(context.Background(), "id-token")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, codes.Internal, apiErr.GRPCCode)
	})
}

func TestSession_Resolve(t *testing.T) {
	tokens := mocks.NewSessionTokenManager(t)
	tokens.On("ParseSessionToken", "good").Return("uid-1", nil)
	tokens.On("ParseSessionToken", "bad").Return("", errors.New("expired"))
	s := NewSession(mocks.NewIdentityVerifier(t), tokens, testutil.MakeNoopLogger())

	uid, err := s.Resolve("good")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	_, err = s.Resolve("bad")
	require.Error(t, err)

	_, err = s.Resolve("")
	require.Error(t, err)
}
