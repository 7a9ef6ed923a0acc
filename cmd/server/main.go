// Package main implements the entry point for the task manager API server.
//
// Without flags it serves the HTTP API until interrupted. With -migrate it
// runs a single schema migration command against the configured database and
// exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres"
)

// migrationTimeout bounds a -migrate run.
const migrationTimeout = 5 * time.Minute

func main() {
	migrate := flag.String(
		"migrate",
		"",
		"run a migration command and exit ("+strings.Join(postgres.MigrationCommands, "|")+")",
	)
	flag.Parse()

	if err := run(*migrate); err != nil {
		fmt.Fprintf(os.Stderr, "taskmanager-api: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database, then either executes
// migrateCmd or serves the API until SIGINT or SIGTERM.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("sendgrid_enabled", cfg.Email.SendGridAPIKey != ""),
		slog.Bool("redis_enabled", cfg.Redis.Addr != ""))

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, log)
		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		closeDatabase(db, log)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
