package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/limiter"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/mail"
	"github.com/dtroode/contractchecker-server/internal/metrics"
	"github.com/dtroode/contractchecker-server/internal/model"
)

const msgLoginRequired = "User must be logged in"

// Device decides whether a device is trusted and runs the emailed one-time
// code flow for devices that are not.
type Device struct {
	devices      model.DeviceStore
	challenges   model.ChallengeStore
	mailer       model.Mailer
	limiter      model.AttemptLimiter
	logger       *logger.Logger
	otpFrom      string
	otpTTL       time.Duration
	now          func() time.Time
	generateCode func() (string, error)
	newDeviceID  func(time.Time) string
}

type DeviceOption func(*Device)

// WithLimiter caps failed redemptions. Without it retries are unlimited.
func WithLimiter(l model.AttemptLimiter) DeviceOption {
	return func(d *Device) { d.limiter = l }
}

// WithOTPTTL overrides how long an issued code stays redeemable.
func WithOTPTTL(ttl time.Duration) DeviceOption {
	return func(d *Device) {
		if ttl > 0 {
			d.otpTTL = ttl
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) DeviceOption {
	return func(d *Device) { d.now = now }
}

// WithCodeGenerator overrides the one-time code source.
func WithCodeGenerator(gen func() (string, error)) DeviceOption {
	return func(d *Device) { d.generateCode = gen }
}

func NewDevice(
	devices model.DeviceStore,
	challenges model.ChallengeStore,
	mailer model.Mailer,
	otpFrom string,
	logger *logger.Logger,
	opts ...DeviceOption,
) *Device {
	d := &Device{
		devices:      devices,
		challenges:   challenges,
		mailer:       mailer,
		limiter:      limiter.Noop{},
		logger:       logger,
		otpFrom:      otpFrom,
		otpTTL:       model.OTPChallengeDuration,
		now:          time.Now,
		generateCode: GenerateOTPCode,
		newDeviceID:  NewDeviceID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CheckDevice reports trusted for a known device, otherwise issues a fresh
// code to the caller's email and reports otp_sent.
func (d *Device) CheckDevice(ctx context.Context, identity model.Identity, req model.CheckDeviceRequest) (model.CheckDeviceResult, error) {
	if identity.UID == "" {
		return model.CheckDeviceResult{}, apierror.NewErrUnauthenticated(msgLoginRequired)
	}

	now := d.now().UTC()

	if req.DeviceID != "" {
		found, err := d.devices.Touch(ctx, identity.UID, req.DeviceID, now)
		if err != nil {
			d.logger.Error("Device service: failed to look up device",
				"uid", identity.UID,
				"device_id", req.DeviceID,
				"error", err.Error())
			metrics.DeviceChecks.WithLabelValues("error").Inc()
			return model.CheckDeviceResult{}, fmt.Errorf("failed to look up device: %w", err)
		}
		if found {
			d.logger.Debug("Device service: device trusted",
				"uid", identity.UID,
				"device_id", req.DeviceID)
			metrics.DeviceChecks.WithLabelValues(string(model.DeviceStatusTrusted)).Inc()
			return model.CheckDeviceResult{Status: model.DeviceStatusTrusted}, nil
		}
	}

	if err := d.issueChallenge(ctx, identity, now); err != nil {
		metrics.DeviceChecks.WithLabelValues("error").Inc()
		return model.CheckDeviceResult{}, err
	}

	metrics.DeviceChecks.WithLabelValues(string(model.DeviceStatusOTPSent)).Inc()
	return model.CheckDeviceResult{Status: model.DeviceStatusOTPSent}, nil
}

func (d *Device) issueChallenge(ctx context.Context, identity model.Identity, now time.Time) error {
	code, err := d.generateCode()
	if err != nil {
		d.logger.Error("Device service: failed to generate code",
			"uid", identity.UID,
			"error", err.Error())
		return fmt.Errorf("failed to generate code: %w", err)
	}

	err = d.challenges.Upsert(ctx, model.OTPChallenge{
		UserID:    identity.UID,
		Code:      code,
		ExpiresAt: now.Add(d.otpTTL),
		CreatedAt: now,
	})
	if err != nil {
		d.logger.Error("Device service: failed to store challenge",
			"uid", identity.UID,
			"error", err.Error())
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	if err := d.limiter.Reset(ctx, identity.UID); err != nil {
		d.logger.Warn("Device service: failed to reset attempt counter",
			"uid", identity.UID,
			"error", err.Error())
	}

	if identity.Email == "" {
		d.logger.Warn("Device service: identity has no email, code not sent",
			"uid", identity.UID)
		return nil
	}

	body, err := mail.RenderOTP(code, now.Year())
	if err != nil {
		return fmt.Errorf("failed to render otp email: %w", err)
	}

	err = d.mailer.Send(ctx, model.Email{
		From:    d.otpFrom,
		To:      []string{identity.Email},
		Subject: mail.OTPSubject,
		HTML:    body,
	})
	if err != nil {
		d.logger.Error("Device service: failed to send otp email",
			"uid", identity.UID,
			"email", identity.Email,
			"error", err.Error())
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	d.logger.Info("Device service: otp challenge issued",
		"uid", identity.UID,
		"email", identity.Email)

	return nil
}

// VerifyDevice redeems a code. On success the device becomes trusted and its
// new id is returned; the code cannot be redeemed again.
func (d *Device) VerifyDevice(ctx context.Context, identity model.Identity, req model.VerifyDeviceRequest) (model.VerifyDeviceResult, error) {
	if identity.UID == "" {
		return model.VerifyDeviceResult{}, apierror.NewErrUnauthenticated(msgLoginRequired)
	}

	result, err := d.verify(ctx, identity, req)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return model.VerifyDeviceResult{}, err
	}

	metrics.OTPVerifications.WithLabelValues(string(result.Status)).Inc()
	return result, nil
}

func (d *Device) verify(ctx context.Context, identity model.Identity, req model.VerifyDeviceRequest) (model.VerifyDeviceResult, error) {
	invalid := model.VerifyDeviceResult{Status: model.VerifyStatusInvalid}

	challenge, err := d.challenges.Get(ctx, identity.UID)
	if errors.Is(err, model.ErrNotFound) {
		d.logger.Info("Device service: no pending challenge",
			"uid", identity.UID)
		return invalid, nil
	}
	if err != nil {
		d.logger.Error("Device service: failed to get challenge",
			"uid", identity.UID,
			"error", err.Error())
		return model.VerifyDeviceResult{}, fmt.Errorf("failed to get challenge: %w", err)
	}

	now := d.now().UTC()
	if now.After(challenge.ExpiresAt) {
		if err := d.challenges.Delete(ctx, identity.UID); err != nil {
			d.logger.Warn("Device service: failed to delete expired challenge",
				"uid", identity.UID,
				"error", err.Error())
		}
		d.logger.Info("Device service: challenge expired",
			"uid", identity.UID)
		return model.VerifyDeviceResult{Status: model.VerifyStatusExpired}, nil
	}

	if !codesEqual(req.OTP, challenge.Code) {
		return d.recordFailure(ctx, identity)
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = model.UnknownUserAgent
	}

	deviceID := d.newDeviceID(now)
	redeemed, err := d.challenges.Redeem(ctx, identity.UID, challenge.Code, model.TrustedDevice{
		UserID:    identity.UID,
		DeviceID:  deviceID,
		UserAgent: userAgent,
		CreatedAt: now,
		LastUsed:  now,
	})
	if err != nil {
		d.logger.Error("Device service: failed to redeem challenge",
			"uid", identity.UID,
			"error", err.Error())
		return model.VerifyDeviceResult{}, fmt.Errorf("failed to redeem challenge: %w", err)
	}
	if !redeemed {
		d.logger.Info("Device service: challenge already redeemed",
			"uid", identity.UID)
		return invalid, nil
	}

	if err := d.limiter.Reset(ctx, identity.UID); err != nil {
		d.logger.Warn("Device service: failed to reset attempt counter",
			"uid", identity.UID,
			"error", err.Error())
	}

	d.logger.Info("Device service: device verified",
		"uid", identity.UID,
		"device_id", deviceID)

	return model.VerifyDeviceResult{Status: model.VerifyStatusSuccess, NewDeviceID: deviceID}, nil
}

func (d *Device) recordFailure(ctx context.Context, identity model.Identity) (model.VerifyDeviceResult, error) {
	exceeded, err := d.limiter.Fail(ctx, identity.UID)
	if err != nil {
		d.logger.Warn("Device service: failed to record attempt",
			"uid", identity.UID,
			"error", err.Error())
	}

	if !exceeded {
		d.logger.Info("Device service: wrong code",
			"uid", identity.UID)
		return model.VerifyDeviceResult{Status: model.VerifyStatusInvalid}, nil
	}

	if err := d.challenges.Delete(ctx, identity.UID); err != nil {
		d.logger.Error("Device service: failed to delete locked challenge",
			"uid", identity.UID,
			"error", err.Error())
		return model.VerifyDeviceResult{}, fmt.Errorf("failed to delete challenge: %w", err)
	}

	d.logger.Warn("Device service: attempt cap reached, challenge revoked",
		"uid", identity.UID)

	return model.VerifyDeviceResult{Status: model.VerifyStatusLocked}, nil
}
