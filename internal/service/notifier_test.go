package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/jobs"
	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/platform/email"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// inlineSubmitter runs jobs as soon as they are submitted.
type inlineSubmitter struct {
	submitted []jobs.Job
	results   []error
	err       error
}

func (s *inlineSubmitter) Submit(ctx context.Context, job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, job)
	s.results = append(s.results, job.Execute(ctx))
	return nil
}

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"}
}

func TestEmailNotifier_SendsThroughJobs(t *testing.T) {
	t.Parallel()

	user := testUser()
	sender := &mocks.MockEmailSender{}
	sender.On("Send", mock.Anything, email.WelcomeMessage(user.Email, user.Name)).Return(nil).Once()
	sender.On("Send", mock.Anything, email.CancellationMessage(user.Email, user.Name)).
		Return(errors.New("provider down")).Once()

	submitter := &inlineSubmitter{}
	notifier := service.NewEmailNotifier(submitter, sender, discardLogger())

	notifier.NotifyWelcome(context.Background(), user)
	notifier.NotifyCancellation(context.Background(), user)

	sender.AssertExpectations(t)
	require.Len(t, submitter.submitted, 2)
	assert.Equal(t, service.JobTypeWelcomeEmail, submitter.submitted[0].Type())
	assert.Equal(t, service.JobTypeCancellationEmail, submitter.submitted[1].Type())
	assert.NoError(t, submitter.results[0])
	assert.EqualError(t, submitter.results[1], "provider down")
}

func TestEmailNotifier_QueueFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	sender := &mocks.MockEmailSender{}
	submitter := &inlineSubmitter{err: jobs.ErrQueueFull}
	notifier := service.NewEmailNotifier(submitter, sender, discardLogger())

	assert.NotPanics(t, func() {
		notifier.NotifyWelcome(context.Background(), testUser())
	})
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestEmailNotifier_WithRunner(t *testing.T) {
	t.Parallel()

	user := testUser()
	sent := make(chan email.Message, 1)
	sender := &mocks.MockEmailSender{}
	sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent <- args.Get(1).(email.Message) }).
		Return(nil)

	runner := jobs.NewRunner(jobs.RunnerConfig{WorkerCount: 1, QueueSize: 4}, discardLogger())
	runner.Start()

	notifier := service.NewEmailNotifier(runner, sender, discardLogger())
	notifier.NotifyWelcome(context.Background(), user)

	require.NoError(t, runner.Stop(context.Background()))
	msg := <-sent
	assert.Equal(t, "jane@example.com", msg.ToAddress)
	assert.Equal(t, "Thanks for joining in!", msg.Subject)
}
