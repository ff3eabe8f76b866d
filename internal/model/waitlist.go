package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WaitlistStore persists waitlist entries.
type WaitlistStore interface {
	GetByEmail(ctx context.Context, email string) (WaitlistEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (WaitlistEntry, error)
	Create(ctx context.Context, entry WaitlistEntry) (WaitlistEntry, error)
}

// WaitlistStatus enumerates waitlist entry states.
type WaitlistStatus string

// WaitlistStatusPending is the only status a new entry can have.
const WaitlistStatusPending WaitlistStatus = "pending"

// WaitlistSourceLandingPage tags entries created from the public landing page.
const WaitlistSourceLandingPage = "landing_page"

// WaitlistEntry is a single email on the waitlist.
type WaitlistEntry struct {
	ID        uuid.UUID
	Email     string
	Status    WaitlistStatus
	Source    string
	CreatedAt time.Time
}

// WaitlistRequest is the input of the waitlist registrar.
type WaitlistRequest struct {
	Email string `json:"email"`
}

// WaitlistResult is returned to the caller for every registration attempt.
type WaitlistResult struct {
	Success bool
	Message string
	Error   string
}
