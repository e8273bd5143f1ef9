// Package main implements the entry point for the customer data server,
// which resolves and persists customers on behalf of upstream systems.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// main is the entry point for the customer data server.
// With -migrate it runs a single schema migration command and exits;
// otherwise it serves HTTP until interrupted.
func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		log.Fatalf("customer data server failed: %v", err)
	}
}

// run wires configuration, logging and the database, then either runs the
// requested migration command or serves the API.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDB(db, logger)
		return handleMigrations(ctx, db, migrateCmd, logger)
	}

	if cfg.Database.MigrateOnStart {
		if err := handleMigrations(ctx, db, "up", logger); err != nil {
			closeDB(db, logger)
			return err
		}
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		closeDB(db, logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	logger.Info("customer data server initialized", slog.Int("port", cfg.Server.Port))
	return app.Run(ctx)
}
