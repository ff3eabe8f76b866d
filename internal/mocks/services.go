package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/contractchecker-server/internal/model"
)

// WaitlistService is a mock of handler.WaitlistService.
type WaitlistService struct {
	mock.Mock
}

func (m *WaitlistService) Register(ctx context.Context, req model.WaitlistRequest) model.WaitlistResult {
	args := m.Called(ctx, req)
	return args.Get(0).(model.WaitlistResult)
}

func NewWaitlistService(t interface {
	mock.TestingT
	Cleanup(func())
}) *WaitlistService {
	m := &WaitlistService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// DeviceService is a mock of handler.DeviceService.
type DeviceService struct {
	mock.Mock
}

func (m *DeviceService) CheckDevice(ctx context.Context, identity model.Identity, req model.CheckDeviceRequest) (model.CheckDeviceResult, error) {
	args := m.Called(ctx, identity, req)
	return args.Get(0).(model.CheckDeviceResult), args.Error(1)
}

func (m *DeviceService) VerifyDevice(ctx context.Context, identity model.Identity, req model.VerifyDeviceRequest) (model.VerifyDeviceResult, error) {
	args := m.Called(ctx, identity, req)
	return args.Get(0).(model.VerifyDeviceResult), args.Error(1)
}

func NewDeviceService(t interface {
	mock.TestingT
	Cleanup(func())
}) *DeviceService {
	m := &DeviceService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// UploadService is a mock of handler.UploadService.
type UploadService struct {
	mock.Mock
}

func (m *UploadService) GenerateUploadURL(ctx context.Context, identity model.Identity, req model.UploadRequest) (model.UploadGrant, error) {
	args := m.Called(ctx, identity, req)
	return args.Get(0).(model.UploadGrant), args.Error(1)
}

func NewUploadService(t interface {
	mock.TestingT
	Cleanup(func())
}) *UploadService {
	m := &UploadService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SessionService is a mock of the HTTP session service.
type SessionService struct {
	mock.Mock
}

func (m *SessionService) Create(ctx context.Context, idToken string) (string, model.Identity, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Get(1).(model.Identity), args.Error(2)
}

func (m *SessionService) Resolve(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func NewSessionService(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionService {
	m := &SessionService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
