package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/api"
	"github.com/leadforge/contact-enricher/internal/clock/system"
	"github.com/leadforge/contact-enricher/internal/id/uuid"
	"github.com/leadforge/contact-enricher/internal/metrics"
	"github.com/leadforge/contact-enricher/internal/progress"
	"github.com/leadforge/contact-enricher/internal/store"
)

// newServeCmd creates the HTTP service subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the enrichment HTTP service",
		Long: `Starts the HTTP API. Batches submitted to POST /v1/runs are enriched
in the background; results are retrievable per run. Run history persists
to Postgres when db.dsn is configured, otherwise in memory.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), rt)
		},
	}
}

func runServe(ctx context.Context, rt *runtime) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	runs, err := buildStore(ctx, rt)
	if err != nil {
		return err
	}
	defer runs.Close()

	pipe := buildPipeline(rt.cfg, rt.logger,
		progress.MetricsObserver{},
		progress.NewLogObserver(rt.logger, rt.cfg.Pipeline.ProgressEvery))

	server := api.NewServer(runs, pipe, uuid.NewUUIDGenerator(), system.New(), rt.cfg, rt.logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("http server listening", zap.Int("port", rt.cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildStore(ctx context.Context, rt *runtime) (store.RunStore, error) {
	if rt.cfg.DB.DSN == "" {
		rt.logger.Info("no database configured, keeping run history in memory")
		return store.NewMemoryStore(), nil
	}
	pg, err := store.NewPostgresStore(ctx, store.PostgresConfig{
		DSN:      rt.cfg.DB.DSN,
		MaxConns: int32(rt.cfg.DB.MaxOpenConns),
		MinConns: int32(rt.cfg.DB.MaxIdleConns),
	})
	if err != nil {
		return nil, fmt.Errorf("init postgres store: %w", err)
	}
	return pg, nil
}
