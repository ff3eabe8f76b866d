package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/contractchecker-server/internal/model"
)

var (
	_ model.Mailer              = (*Mailer)(nil)
	_ model.Presigner           = (*Presigner)(nil)
	_ model.AttemptLimiter      = (*AttemptLimiter)(nil)
	_ model.IdentityVerifier    = (*IdentityVerifier)(nil)
	_ model.SessionTokenManager = (*SessionTokenManager)(nil)
	_ model.Pinger              = (*Pinger)(nil)
)

// Mailer is a mock of model.Mailer.
type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, msg model.Email) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func NewMailer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Mailer {
	m := &Mailer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Presigner is a mock of model.Presigner.
type Presigner struct {
	mock.Mock
}

func (m *Presigner) PresignPut(ctx context.Context, params model.PresignPutParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func NewPresigner(t interface {
	mock.TestingT
	Cleanup(func())
}) *Presigner {
	m := &Presigner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// AttemptLimiter is a mock of model.AttemptLimiter.
type AttemptLimiter struct {
	mock.Mock
}

func (m *AttemptLimiter) Fail(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *AttemptLimiter) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func NewAttemptLimiter(t interface {
	mock.TestingT
	Cleanup(func())
}) *AttemptLimiter {
	m := &AttemptLimiter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// IdentityVerifier is a mock of model.IdentityVerifier.
type IdentityVerifier struct {
	mock.Mock
}

func (m *IdentityVerifier) Verify(ctx context.Context, rawIDToken string) (model.Identity, error) {
	args := m.Called(ctx, rawIDToken)
	return args.Get(0).(model.Identity), args.Error(1)
}

func NewIdentityVerifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *IdentityVerifier {
	m := &IdentityVerifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SessionTokenManager is a mock of model.SessionTokenManager.
type SessionTokenManager struct {
	mock.Mock
}

func (m *SessionTokenManager) GenerateSessionToken(uid string) (string, error) {
	args := m.Called(uid)
	return args.String(0), args.Error(1)
}

func (m *SessionTokenManager) ParseSessionToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func NewSessionTokenManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionTokenManager {
	m := &SessionTokenManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Pinger is a mock of model.Pinger.
type Pinger struct {
	mock.Mock
}

func (m *Pinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func NewPinger(t interface {
	mock.TestingT
	Cleanup(func())
}) *Pinger {
	m := &Pinger{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
