package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/senyabanana/licitagora/internal/router/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	// load читает конфигурацию и строит логгер; флаг --log-level перекрывает LOG_LEVEL.
	load := func(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, nil, fmt.Errorf("cannot load config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		logger := newLogger(cfg.LogLevel)
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := load(cmd)
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg, logger)
	}

	cmd := &cobra.Command{
		Use:           "licitagora",
		Short:         "Public tender bidding management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config-path", ".", "Directory containing app.env")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  serve,
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 && args[0] == "down" {
				return runDBMigrationDown(cfg.MigrationURL, cfg.PostgresConn, logger)
			}
			return runDBMigration(cfg.MigrationURL, cfg.PostgresConn, logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import-deadlines",
		Short: "Create deadlines from the closing dates of tenders in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			application, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			result, err := application.Deadlines.ImportFromTenders(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d deadlines\n", result.Imported)
			return nil
		},
	})

	return cmd
}

func runServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := runDBMigration(cfg.MigrationURL, cfg.PostgresConn, logger); err != nil {
			return err
		}
	}

	application, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           application.Routes(),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is listening", "address", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runDBMigration(migrationURL string, dbSource string, logger *slog.Logger) error {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		return fmt.Errorf("cannot create a new migrate instance: %w", err)
	}
	defer migration.Close()

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate up: %w", err)
	}
	logger.Info("db migrated successfully")
	return nil
}

func runDBMigrationDown(migrationURL string, dbSource string, logger *slog.Logger) error {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		return fmt.Errorf("cannot create a new migrate instance: %w", err)
	}
	defer migration.Close()

	if err = migration.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate down: %w", err)
	}
	logger.Info("db migrations rolled back")
	return nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
