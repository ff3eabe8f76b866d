package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/mail"
	"github.com/dtroode/contractchecker-server/internal/metrics"
	"github.com/dtroode/contractchecker-server/internal/model"
)

// WelcomeNotifier emails a new waitlist entry once. Delivery is best effort:
// failures are logged and never retried.
type WelcomeNotifier struct {
	store   model.WaitlistStore
	mailer  model.Mailer
	from    string
	timeout time.Duration
	logger  *logger.Logger
}

// DefaultNotifyTimeout bounds one welcome notification.
const DefaultNotifyTimeout = 30 * time.Second

type NotifierOption func(*WelcomeNotifier)

// WithNotifyTimeout overrides how long a single notification may take.
func WithNotifyTimeout(d time.Duration) NotifierOption {
	return func(n *WelcomeNotifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

func NewWelcomeNotifier(store model.WaitlistStore, mailer model.Mailer, from string, logger *logger.Logger, opts ...NotifierOption) *WelcomeNotifier {
	n := &WelcomeNotifier{
		store:   store,
		mailer:  mailer,
		from:    from,
		timeout: DefaultNotifyTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// HandleCreated reacts to the creation of the waitlist entry with entryID.
// The change-feed listener calls it inline, so it never runs past the
// notifier timeout.
func (n *WelcomeNotifier) HandleCreated(ctx context.Context, entryID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	entry, err := n.store.GetByID(ctx, entryID)
	if err != nil {
		n.logger.Error("Welcome notifier: failed to load entry",
			"entry_id", entryID,
			"error", err.Error())
		metrics.WelcomeEmails.WithLabelValues("error").Inc()
		return
	}

	if entry.Email == "" {
		n.logger.Warn("Welcome notifier: entry has no email",
			"entry_id", entryID)
		metrics.WelcomeEmails.WithLabelValues("skipped").Inc()
		return
	}

	body, err := mail.RenderWelcome()
	if err != nil {
		n.logger.Error("Welcome notifier: failed to render email",
			"entry_id", entryID,
			"error", err.Error())
		metrics.WelcomeEmails.WithLabelValues("error").Inc()
		return
	}

	err = n.mailer.Send(ctx, model.Email{
		From:    n.from,
		To:      []string{entry.Email},
		Subject: mail.WelcomeSubject,
		HTML:    body,
	})
	if err != nil {
		n.logger.Error("Welcome notifier: failed to send email",
			"entry_id", entryID,
			"email", entry.Email,
			"error", err.Error())
		metrics.WelcomeEmails.WithLabelValues("error").Inc()
		return
	}

	n.logger.Info("Welcome notifier: welcome email sent",
		"entry_id", entryID,
		"email", entry.Email)
	metrics.WelcomeEmails.WithLabelValues("sent").Inc()
}
