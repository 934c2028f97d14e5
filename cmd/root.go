// Package cmd defines and implements the CLI commands for the enricher
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/config"
	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/extract"
	"github.com/leadforge/contact-enricher/internal/fetch"
	"github.com/leadforge/contact-enricher/internal/logging"
	"github.com/leadforge/contact-enricher/internal/pipeline"
	"github.com/leadforge/contact-enricher/internal/policy/ratelimit"
	"github.com/leadforge/contact-enricher/internal/probe"
	"github.com/leadforge/contact-enricher/internal/progress"
)

var cfgFile string

type runtimeKey struct{}

// runtime carries the loaded configuration and logger into subcommands.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enricher",
		Short: "Enriches company domain lists with contact details.",
		Long: `enricher takes a list of company web domains, checks which sites are
reachable, and extracts email addresses and UK phone numbers from the
live ones. It runs either as a one-shot CSV batch or as an HTTP service.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), runtimeKey{}, &runtime{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime); ok && rt != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newEnrichCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey{}).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("application services not initialized")
	}
	return rt, nil
}

// buildPipeline assembles the stage components from configuration.
func buildPipeline(cfg config.Config, logger *zap.Logger, observers ...progress.Observer) *pipeline.Pipeline {
	var limiter *ratelimit.Limiter
	if cfg.HTTP.RequestsPerSecond > 0 {
		limiter = ratelimit.New(ratelimit.Config{
			DefaultRPS:   cfg.HTTP.RequestsPerSecond,
			DefaultBurst: cfg.HTTP.Burst,
		})
	}

	prober := probe.New(probe.Config{
		ProbeTimeout:   cfg.ProbeTimeout(),
		RecheckTimeout: cfg.RecheckTimeout(),
		UserAgent:      cfg.HTTP.UserAgent,
	}, limiter, logger)

	var retry fetch.RetryPolicy
	if cfg.HTTP.MaxRetries > 0 {
		retry = fetch.NewExponentialRetryPolicy(cfg.HTTP.MaxRetries, cfg.BackoffInitial(), cfg.BackoffMax())
	}
	fetcher := fetch.New(fetch.Config{
		Timeout:   cfg.FetchTimeout(),
		UserAgent: cfg.HTTP.UserAgent,
	}, extract.New(), retry, limiter, logger)

	bounds := pipeline.Bounds{
		Probe:   cfg.Pipeline.ProbeConcurrency,
		Recheck: cfg.Pipeline.RecheckConcurrency,
		Fetch:   cfg.Pipeline.FetchConcurrency,
	}
	blocklist := enrich.NewBlocklist(cfg.Extract.SocialBlocklist)
	return pipeline.New(prober, fetcher, blocklist, bounds, logger, observers...)
}
