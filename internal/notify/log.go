package notify

import (
	"context"
	"log/slog"
)

// LogSender writes reminders to a structured logger. Useful as the only
// sender on a headless install.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, r Reminder) error {
	s.logger.InfoContext(ctx, r.Title,
		"body", r.Body,
		"session", r.SourceID,
		"starts", r.SessionStart,
	)
	return nil
}
