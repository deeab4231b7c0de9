package email

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them. Meant for
// local development only: reset links (and so reset tokens) end up in the
// log output.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("email (log driver)", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
