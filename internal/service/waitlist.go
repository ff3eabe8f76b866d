package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/metrics"
	"github.com/dtroode/contractchecker-server/internal/model"
)

const (
	msgEmailRequired    = "Email is required"
	msgInvalidEmail     = "Invalid email format"
	msgAlreadyOnList    = "Already on waitlist"
	msgAddedToWaitlist  = "Added to waitlist"
	msgFailedToWaitlist = "Failed to join waitlist"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Waitlist struct {
	store  model.WaitlistStore
	logger *logger.Logger
	now    func() time.Time
}

func NewWaitlist(store model.WaitlistStore, logger *logger.Logger) *Waitlist {
	return &Waitlist{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeEmail lowercases and trims an address. Entries are keyed by the
// normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register adds an email to the waitlist. Every outcome is reported through
// the result; registering an address twice is not an error.
func (w *Waitlist) Register(ctx context.Context, req model.WaitlistRequest) model.WaitlistResult {
	email := NormalizeEmail(req.Email)
	if email == "" {
		metrics.WaitlistRegistrations.WithLabelValues("invalid").Inc()
		return model.WaitlistResult{Error: msgEmailRequired}
	}
	if !emailPattern.MatchString(email) {
		metrics.WaitlistRegistrations.WithLabelValues("invalid").Inc()
		return model.WaitlistResult{Error: msgInvalidEmail}
	}

	_, err := w.store.GetByEmail(ctx, email)
	if err == nil {
		w.logger.Info("Waitlist service: email already registered",
			"email", email)
		metrics.WaitlistRegistrations.WithLabelValues("duplicate").Inc()
		return model.WaitlistResult{Success: true, Message: msgAlreadyOnList}
	}
	if !errors.Is(err, model.ErrNotFound) {
		w.logger.Error("Waitlist service: failed to look up email",
			"email", email,
			"error", err.Error())
		metrics.WaitlistRegistrations.WithLabelValues("error").Inc()
		return model.WaitlistResult{Error: msgFailedToWaitlist}
	}

	entry, err := w.store.Create(ctx, model.WaitlistEntry{
		ID:        uuid.New(),
		Email:     email,
		Status:    model.WaitlistStatusPending,
		Source:    model.WaitlistSourceLandingPage,
		CreatedAt: w.now().UTC(),
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		w.logger.Info("Waitlist service: concurrent registration won",
			"email", email)
		metrics.WaitlistRegistrations.WithLabelValues("duplicate").Inc()
		return model.WaitlistResult{Success: true, Message: msgAlreadyOnList}
	}
	if err != nil {
		w.logger.Error("Waitlist service: failed to create entry",
			"email", email,
			"error", err.Error())
		metrics.WaitlistRegistrations.WithLabelValues("error").Inc()
		return model.WaitlistResult{Error: msgFailedToWaitlist}
	}

	w.logger.Info("Waitlist service: email added",
		"email", email,
		"entry_id", entry.ID)
	metrics.WaitlistRegistrations.WithLabelValues("added").Inc()

	return model.WaitlistResult{Success: true, Message: msgAddedToWaitlist}
}
