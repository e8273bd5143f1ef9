package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/customer-data/internal/platform/postgres"
)

// migrationCommands lists the commands accepted by the -migrate flag.
var migrationCommands = map[string]bool{
	postgres.MigrateUp:      true,
	postgres.MigrateDown:    true,
	postgres.MigrateReset:   true,
	postgres.MigrateStatus:  true,
	postgres.MigrateVersion: true,
}

// handleMigrations runs one goose command against db.
// Every run is tagged with a correlation ID so its log lines can be grouped.
func handleMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unknown migration command %q", command)
	}

	log := logger.With(slog.String("correlation_id", uuid.NewString()))
	log.Info("Executing migrations", slog.String("command", command))

	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
