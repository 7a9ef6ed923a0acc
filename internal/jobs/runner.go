package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// JobTimeout bounds a single job execution. Zero means no timeout.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		JobTimeout:  30 * time.Second,
	}
}

// Runner executes queued jobs on a pool of worker goroutines.
type Runner struct {
	queue      *Queue
	config     RunnerConfig
	wg         sync.WaitGroup
	startOnce  sync.Once
	logger     *slog.Logger
	errHandler func(job Job, err error)
	observer   func(job Job, err error)
}

// NewRunner creates a Runner. Call Start to begin processing.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))

	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}
	if config.QueueSize < 0 {
		config.QueueSize = 0
	}

	r := &Runner{
		queue:  NewQueue(config.QueueSize, logger),
		config: config,
		logger: logger,
	}
	r.errHandler = func(job Job, err error) {
		r.logger.Error("job execution failed",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.String("error", redact.Error(err)))
	}
	return r
}

// SetErrorHandler replaces the handler called when a job fails.
// It must be called before Start.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// SetObserver registers a function called after every job with its result.
// It must be called before Start.
func (r *Runner) SetObserver(observer func(job Job, err error)) {
	r.observer = observer
}

// Submit queues a job for execution. It never blocks; a full or closed
// queue is reported as an error.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.queue.Enqueue(job); err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}
	return nil
}

// Start launches the worker goroutines. Calling Start more than once has
// no effect.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		for i := 0; i < r.config.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
		r.logger.Info("job runner started", slog.Int("worker_count", r.config.WorkerCount))
	})
}

// Stop closes the queue and waits for the workers to finish the jobs
// already queued. If ctx ends first, Stop returns its error and the
// remaining jobs are abandoned.
func (r *Runner) Stop(ctx context.Context) error {
	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("job runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("job runner stop timed out",
			slog.Int("abandoned_jobs", r.queue.Len()))
		return ctx.Err()
	}
}

// worker processes jobs until the queue is closed and drained
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))
	for job := range r.queue.Channel() {
		r.process(job, id)
	}
	r.logger.Debug("job channel closed, stopping worker", slog.Int("worker_id", id))
}

// process runs one job. Panics are converted to errors so that a faulty job
// cannot take down its worker.
func (r *Runner) process(job Job, workerID int) {
	log := r.logger.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()),
		slog.Int("worker_id", workerID),
	)

	ctx := context.Background()
	if r.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.JobTimeout)
		defer cancel()
	}

	err := r.execute(ctx, job)
	if err != nil {
		r.errHandler(job, err)
	} else {
		log.Debug("job completed successfully")
	}
	if r.observer != nil {
		r.observer(job, err)
	}
}

func (r *Runner) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return job.Execute(ctx)
}
