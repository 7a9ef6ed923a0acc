package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/jobs"
	"github.com/phrazzld/taskmanager-api/internal/metrics"
	"github.com/phrazzld/taskmanager-api/internal/platform/email"
	"github.com/phrazzld/taskmanager-api/internal/platform/media"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres"
	"github.com/phrazzld/taskmanager-api/internal/ratelimit"
	"github.com/phrazzld/taskmanager-api/internal/redact"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// notificationJobTimeout bounds the delivery of a single email.
const notificationJobTimeout = 30 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics *metrics.Metrics

	userStore    store.UserStore
	sessionStore store.SessionStore
	taskStore    store.TaskStore

	jwtService      auth.JWTService
	sessionVerifier *auth.SessionVerifier
	userService     service.UserService
	taskService     service.TaskService

	limiter     ratelimit.Limiter
	redisClient *redis.Client

	jobRunner *jobs.Runner
	sweeper   *service.TokenSweeper
}

// newApplication creates a new application instance with all dependencies initialized.
// Background workers are started; cleanup stops them.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("session token service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	tx := store.DBTransactor{DB: db}

	app.jobRunner = setupJobRunner(cfg.Notify, app.metrics, logger)
	notifier := service.NewEmailNotifier(app.jobRunner, newEmailSender(cfg.Email, logger), logger)

	app.userService, err = service.NewUserService(service.UserServiceDeps{
		Users:     app.userStore,
		Sessions:  app.sessionStore,
		Tx:        tx,
		Tokens:    app.jwtService,
		Passwords: auth.NewBcryptVerifier(),
		Notifier:  notifier,
		Avatars:   media.NewAvatarProcessor(cfg.Avatar.MaxBytes, cfg.Avatar.Size),
		Logger:    logger,
	})
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, tx, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.sessionVerifier = auth.NewSessionVerifier(app.jwtService, app.userStore, app.sessionStore, logger)
	app.limiter, app.redisClient = setupRateLimiter(ctx, cfg, logger)

	app.sweeper, err = service.NewTokenSweeper(app.sessionStore, cfg.Sweeper.Schedule, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create token sweeper: %w", err)
	}
	app.sweeper.OnSweep(app.metrics.AddSweptTokens)
	app.sweeper.Start()

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves the API until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupJobRunner starts the worker pool that delivers notification emails.
func setupJobRunner(cfg config.NotifyConfig, m *metrics.Metrics, logger *slog.Logger) *jobs.Runner {
	runner := jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		JobTimeout:  notificationJobTimeout,
	}, logger)
	runner.SetObserver(func(job jobs.Job, err error) {
		m.ObserveJob(job.Type(), err)
	})
	runner.Start()
	return runner
}

// newEmailSender returns the SendGrid sender, or a sender that only logs
// when no API key is configured.
func newEmailSender(cfg config.EmailConfig, logger *slog.Logger) email.Sender {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("no SendGrid API key configured, account emails will only be logged")
		return email.NewLogSender(logger)
	}
	return email.NewSendGridSender(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName, logger)
}

// setupRateLimiter returns the Redis limiter when Redis is configured and
// reachable, and the in-process limiter otherwise. The client is nil unless
// Redis is in use.
func setupRateLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, *redis.Client) {
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second

	if cfg.Redis.Addr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			logger.Info("using redis rate limiter", slog.String("addr", cfg.Redis.Addr))
			return ratelimit.NewRedisLimiter(client, "", cfg.RateLimit.Requests, window), client
		}
		logger.Warn("redis unavailable, falling back to in-process rate limiter",
			slog.String("error", redact.Error(err)))
	}

	return ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, window), nil
}

// cleanup handles graceful shutdown of application resources. Queued
// notifications are delivered before the database is closed, unless ctx
// expires first.
func (app *application) cleanup(ctx context.Context) {
	var errs []error

	if app.sweeper != nil {
		if err := app.sweeper.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("token sweeper: %w", err))
		}
	}
	if app.jobRunner != nil {
		if err := app.jobRunner.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("job runner: %w", err))
		}
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("errors during shutdown", slog.String("error", redact.Error(err)))
	}
	app.logger.Info("application shutdown completed")
}
