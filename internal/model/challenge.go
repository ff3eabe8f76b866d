package model

import (
	"context"
	"time"
)

// OTPChallengeDuration is how long an issued code stays redeemable.
const OTPChallengeDuration = 5 * time.Minute

// ChallengeStore persists the single live OTP challenge per user.
type ChallengeStore interface {
	// Upsert replaces any previous challenge for the same user.
	Upsert(ctx context.Context, challenge OTPChallenge) error
	Get(ctx context.Context, userID string) (OTPChallenge, error)
	Delete(ctx context.Context, userID string) error
	// Redeem atomically deletes the challenge, only if it still carries
	// code, and stores device. It reports false when nothing matched. When
	// storing the device fails the challenge is left in place.
	Redeem(ctx context.Context, userID, code string, device TrustedDevice) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// OTPChallenge is a short-lived numeric code bound to one user.
type OTPChallenge struct {
	UserID    string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AttemptLimiter counts failed redemptions per key.
type AttemptLimiter interface {
	// Fail records a failed attempt and reports whether the cap is reached.
	Fail(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
