package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fraksi/internal/config"
	"fraksi/internal/database"
	"fraksi/internal/database/memory"
	"fraksi/internal/observability"
	"fraksi/internal/planner"
	"fraksi/internal/server"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, newLogger(a.cfg.Log, os.Stdout))
		},
	}
}

// openRepository connects to Postgres when enabled, otherwise keeps state in memory.
func openRepository(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (database.Repository, func(), error) {
	if !cfg.Enabled {
		logger.Info("Database disabled, keeping preferences in memory")
		return memory.NewRepository(), func() {}, nil
	}

	repo, err := database.NewPostgresRepository(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Connected to database", "host", cfg.Host, "dbname", cfg.DBName)
	return repo, repo.Close, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	metrics := observability.NewMetrics("fraksi", nil)
	engine := planner.NewEngine(logger, repo, &cfg, metrics)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(logger, engine, metrics, cfg.Server).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
