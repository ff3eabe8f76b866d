package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/contractchecker-server/internal/model"
)

var (
	_ model.WaitlistStore  = (*WaitlistStore)(nil)
	_ model.DeviceStore    = (*DeviceStore)(nil)
	_ model.ChallengeStore = (*ChallengeStore)(nil)
)

// WaitlistStore is a mock of model.WaitlistStore.
type WaitlistStore struct {
	mock.Mock
}

func (m *WaitlistStore) GetByEmail(ctx context.Context, email string) (model.WaitlistEntry, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.WaitlistEntry), args.Error(1)
}

func (m *WaitlistStore) GetByID(ctx context.Context, id uuid.UUID) (model.WaitlistEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.WaitlistEntry), args.Error(1)
}

func (m *WaitlistStore) Create(ctx context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(model.WaitlistEntry), args.Error(1)
}

func NewWaitlistStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *WaitlistStore {
	m := &WaitlistStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// DeviceStore is a mock of model.DeviceStore.
type DeviceStore struct {
	mock.Mock
}

func (m *DeviceStore) Create(ctx context.Context, device model.TrustedDevice) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *DeviceStore) Touch(ctx context.Context, userID, deviceID string, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, deviceID, at)
	return args.Bool(0), args.Error(1)
}

func NewDeviceStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *DeviceStore {
	m := &DeviceStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ChallengeStore is a mock of model.ChallengeStore.
type ChallengeStore struct {
	mock.Mock
}

func (m *ChallengeStore) Upsert(ctx context.Context, challenge model.OTPChallenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *ChallengeStore) Get(ctx context.Context, userID string) (model.OTPChallenge, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.OTPChallenge), args.Error(1)
}

func (m *ChallengeStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *ChallengeStore) Redeem(ctx context.Context, userID, code string, device model.TrustedDevice) (bool, error) {
	args := m.Called(ctx, userID, code, device)
	return args.Bool(0), args.Error(1)
}

func (m *ChallengeStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func NewChallengeStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChallengeStore {
	m := &ChallengeStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
