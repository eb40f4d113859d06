// Package mailer delivers account emails. The log implementation writes
// the message to the application log instead of sending it, which is
// enough for local development and tests; a hosted provider implements
// the same model.Mailer interface.
package mailer

import (
	"context"

	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
)

// LogMailer writes outgoing mail to the structured log.
type LogMailer struct {
	logger *logger.Logger
}

var _ model.Mailer = (*LogMailer)(nil)

func NewLogMailer(logger *logger.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.logger.Info("Mailer: password reset",
		"to", email,
		"link", link)
	return nil
}

func (m *LogMailer) SendEmailChange(ctx context.Context, email, link string) error {
	m.logger.Info("Mailer: email change confirmation",
		"to", email,
		"link", link)
	return nil
}
