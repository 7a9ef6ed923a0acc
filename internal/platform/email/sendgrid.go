package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridSender sends messages with the SendGrid v3 mail API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *slog.Logger
}

var _ Sender = (*SendGridSender)(nil)

// NewSendGridSender creates a sender that authenticates with apiKey and
// sends from the given address.
func NewSendGridSender(apiKey, fromAddress, fromName string, logger *slog.Logger) *SendGridSender {
	return newSendGridSender(apiKey, sendGridHost, fromAddress, fromName, logger)
}

func newSendGridSender(apiKey, host, fromAddress, fromName string, logger *slog.Logger) *SendGridSender {
	if logger == nil {
		logger = slog.Default()
	}
	request := sendgrid.GetRequest(apiKey, sendGridEndpoint, host)
	request.Method = "POST"

	return &SendGridSender{
		client: &sendgrid.Client{Request: request},
		from:   mail.NewEmail(fromName, fromAddress),
		logger: logger.With(slog.String("component", "sendgrid_sender")),
	}
}

// Send implements Sender. Any non-2xx response is reported as
// ErrDeliveryFailed.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	to := mail.NewEmail(msg.ToName, msg.ToAddress)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.PlainText, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Error("failed to send email",
			slog.String("subject", msg.Subject),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		log.Error("email provider rejected message",
			slog.String("subject", msg.Subject),
			slog.Int("status_code", response.StatusCode))
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, response.StatusCode)
	}

	log.Info("email sent",
		slog.String("subject", msg.Subject),
		slog.Int("status_code", response.StatusCode))
	return nil
}
