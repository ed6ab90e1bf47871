package app

import (
	"context"
	"log/slog"
)

// LogMailer writes outbound mail to the structured log instead of an SMTP
// relay. It stands in for a real mail provider in development and tests.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer creates a LogMailer on the given logger.
func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs the mail instead of delivering it.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.InfoContext(ctx, "outbound mail", "to", to, "subject", subject, "body", body)
	return nil
}
