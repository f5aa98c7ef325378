package notify

import (
	"context"
	"log/slog"
)

// NoOpMailer implements Mailer by logging discarded digests. It is used
// when no email backend is configured.
type NoOpMailer struct {
	log *slog.Logger
}

// NewNoOpMailer creates a mailer that discards digests with a log message.
func NewNoOpMailer(log *slog.Logger) *NoOpMailer {
	if log == nil {
		log = slog.Default()
	}
	return &NoOpMailer{log: log}
}

// Send logs and discards msg.
func (n *NoOpMailer) Send(_ context.Context, msg Message) error {
	n.log.Info("digest discarded (no email backend configured)",
		"subject", msg.Subject,
		"text_bytes", len(msg.Text),
		"html_bytes", len(msg.HTML),
	)
	return nil
}
