package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/jobs"
	"github.com/phrazzld/taskmanager-api/internal/platform/email"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// Job types for account notification emails.
const (
	JobTypeWelcomeEmail      = "welcome_email"
	JobTypeCancellationEmail = "cancellation_email"
)

// AccountNotifier sends fire-and-forget account notifications. Methods
// return immediately and never report failure to the caller.
type AccountNotifier interface {
	NotifyWelcome(ctx context.Context, user *domain.User)
	NotifyCancellation(ctx context.Context, user *domain.User)
}

// JobSubmitter queues background jobs. *jobs.Runner satisfies it.
type JobSubmitter interface {
	Submit(ctx context.Context, job jobs.Job) error
}

// EmailNotifier delivers account notifications as background email jobs.
type EmailNotifier struct {
	submitter JobSubmitter
	sender    email.Sender
	logger    *slog.Logger
}

var _ AccountNotifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an EmailNotifier.
func NewEmailNotifier(submitter JobSubmitter, sender email.Sender, logger *slog.Logger) *EmailNotifier {
	if submitter == nil || sender == nil {
		panic("email notifier dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		submitter: submitter,
		sender:    sender,
		logger:    logger.With(slog.String("component", "email_notifier")),
	}
}

// NotifyWelcome queues the welcome email for a newly registered user.
func (n *EmailNotifier) NotifyWelcome(ctx context.Context, user *domain.User) {
	n.dispatch(ctx, JobTypeWelcomeEmail, user, email.WelcomeMessage(user.Email, user.Name))
}

// NotifyCancellation queues the goodbye email for a deleted account.
func (n *EmailNotifier) NotifyCancellation(ctx context.Context, user *domain.User) {
	n.dispatch(ctx, JobTypeCancellationEmail, user, email.CancellationMessage(user.Email, user.Name))
}

func (n *EmailNotifier) dispatch(ctx context.Context, jobType string, user *domain.User, msg email.Message) {
	log := logger.FromContextOrDefault(ctx, n.logger)

	job := jobs.NewFuncJob(jobType, func(ctx context.Context) error {
		return n.sender.Send(ctx, msg)
	})
	if err := n.submitter.Submit(ctx, job); err != nil {
		log.Warn("failed to queue notification",
			slog.String("job_type", jobType),
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return
	}

	log.Debug("notification queued",
		slog.String("job_type", jobType),
		slog.String("job_id", job.ID().String()),
		slog.String("user_id", user.ID.String()))
}
