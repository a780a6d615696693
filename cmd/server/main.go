/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Build the zap logger (development or production)
  3. Initialize SQLite store
  4. Import a legacy export if given, then fold legacy hour balances
     into the ledger (both idempotent)
  5. Wire ledger, classifier and services
  6. Start the accrual scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides LEAVE_PORT)
  -db      SQLite database path (overrides LEAVE_DB_PATH)
           Use ":memory:" for in-memory database
  -legacy-export  JSON file mapping employee IDs to legacy hour blobs

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/leave.db"
  LEAVE_ENV=production LEAVE_ACCRUAL_SCHEDULER=false ./server -port=3000

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/store/sqlite"
	"github.com/warp/leave-engine/timeoff"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	legacyExport := flag.String("legacy-export", "", "JSON export of legacy hour balances to import")
	flag.Parse()
	cfg.Port = *port
	cfg.DBPath = *dbPath

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *legacyExport); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg config.Config, logger *zap.Logger, legacyExport string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer store.Close()

	ledger := timeoff.NewLeaveLedger(store, logger)

	if legacyExport != "" {
		if err := importLegacyExport(legacyExport, ledger, logger); err != nil {
			return err
		}
	}

	migrated, err := timeoff.MigrateLegacyBalances(context.Background(), store, ledger, logger)
	if err != nil {
		return fmt.Errorf("migrating legacy balances: %w", err)
	}
	if migrated > 0 {
		logger.Info("legacy balances folded into ledger", zap.Int("employees", migrated))
	}

	classifier := timeoff.NewClassifier(store, cfg.HolidayTimeout, logger)
	requests := timeoff.NewRequestService(store, ledger, timeoff.LogPublisher{Logger: logger.Named("calendar")}, logger)
	overtime := timeoff.NewOvertimeService(classifier, ledger, logger)
	accruals := timeoff.NewAccrualRunner(store, ledger, cfg.Workers, logger)

	handler := api.NewHandler(store, ledger, requests, overtime, accruals, logger)
	handler.Holidays = store
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins:  cfg.CORSOrigins,
		EnableScenarios: !cfg.IsProduction(),
	})

	scheduler := api.NewAccrualScheduler(accruals, logger)
	scheduler.CheckInterval = cfg.AccrualCheckInterval
	scheduler.Enabled = cfg.AccrualScheduler
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("db", cfg.DBPath),
			zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func importLegacyExport(path string, ledger *timeoff.LeaveLedger, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening legacy export: %w", err)
	}
	defer f.Close()

	imported, err := timeoff.ImportLegacyExport(context.Background(), f, ledger)
	if err != nil {
		return fmt.Errorf("importing legacy export: %w", err)
	}
	logger.Info("legacy export imported", zap.String("path", path), zap.Int("employees", imported))
	return nil
}
