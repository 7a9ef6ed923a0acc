package email

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// LogSender logs messages instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "log_sender"))}
}

// Send implements Sender. It never fails.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	logger.FromContextOrDefault(ctx, s.logger).Info("email delivery disabled, message logged",
		slog.String("to", redact.String(msg.ToAddress)),
		slog.String("subject", msg.Subject))
	return nil
}
