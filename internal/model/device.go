package model

import (
	"context"
	"time"
)

// DeviceStore persists trusted devices per user.
type DeviceStore interface {
	Create(ctx context.Context, device TrustedDevice) error
	// Touch refreshes LastUsed and reports whether the device exists.
	Touch(ctx context.Context, userID, deviceID string, at time.Time) (bool, error)
}

// TrustedDevice lets a previously verified device skip the OTP step.
type TrustedDevice struct {
	UserID    string
	DeviceID  string
	UserAgent string
	CreatedAt time.Time
	LastUsed  time.Time
}

// UnknownUserAgent is stored when the client did not send a user agent.
const UnknownUserAgent = "unknown"

// DeviceStatus is the outcome of a device check.
type DeviceStatus string

const (
	// DeviceStatusTrusted means the device is known and no code was sent.
	DeviceStatusTrusted DeviceStatus = "trusted"
	// DeviceStatusOTPSent means a fresh challenge was issued.
	DeviceStatusOTPSent DeviceStatus = "otp_sent"
)

// CheckDeviceRequest is the input of the device check.
type CheckDeviceRequest struct {
	DeviceID string `json:"deviceId"`
}

// CheckDeviceResult is the output of the device check.
type CheckDeviceResult struct {
	Status DeviceStatus
}

// VerifyStatus is the outcome of an OTP redemption.
type VerifyStatus string

const (
	VerifyStatusSuccess VerifyStatus = "success"
	VerifyStatusInvalid VerifyStatus = "invalid"
	VerifyStatusExpired VerifyStatus = "expired"
	// VerifyStatusLocked is only reachable when an attempt cap is configured.
	VerifyStatusLocked VerifyStatus = "locked"
)

// VerifyDeviceRequest is the input of an OTP redemption.
type VerifyDeviceRequest struct {
	OTP       string `json:"otp"`
	UserAgent string `json:"userAgent"`
}

// VerifyDeviceResult is the output of an OTP redemption.
type VerifyDeviceResult struct {
	Status      VerifyStatus
	NewDeviceID string
}
