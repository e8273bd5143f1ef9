package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/customer-data/internal/config"
	"github.com/phrazzld/customer-data/internal/platform/postgres"
	"github.com/phrazzld/customer-data/internal/service"
	"github.com/phrazzld/customer-data/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	customerStore   store.CustomerStore
	customerMatcher service.CustomerMatcher
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.customerStore = postgres.NewPostgresCustomerStore(db, postgres.MaxPlusOneAllocator{}, logger)

	var err error
	app.customerMatcher, err = service.NewCustomerMatcher(app.customerStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer matcher: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves the API until ctx is canceled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	closeDB(app.db, app.logger)
	app.logger.Info("Application shutdown completed")
}
