package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/customer-data/internal/config"
	"github.com/phrazzld/customer-data/internal/redact"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_url", redact.DatabaseURL(cfg.Database.URL),
		"migrate_on_start", cfg.Database.MigrateOnStart)

	return cfg, nil
}
