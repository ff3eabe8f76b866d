package mail

import (
	"context"

	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

var _ model.Mailer = (*LogMailer)(nil)

// LogMailer stands in for SMTP when delivery is disabled. Bodies are never
// logged because they may carry one-time codes.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(logger *logger.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg model.Email) error {
	m.logger.InfoContext(ctx, "Mail: delivery disabled, dropping email",
		"to", msg.To, "subject", msg.Subject)
	return nil
}
