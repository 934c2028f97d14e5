package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/progress"
	"github.com/leadforge/contact-enricher/internal/table"
)

// newEnrichCmd creates the one-shot CSV batch subcommand.
func newEnrichCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		keepAll    bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enriches a CSV of company domains with contact details",
		Long: `Reads a CSV with a website column, probes each domain for liveness,
extracts emails and UK phone numbers from reachable sites, and writes the
table back out with Emails and Phone Numbers columns added.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			return runEnrich(cmd.Context(), rt, inputPath, outputPath, keepAll)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV path (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (defaults to stdout)")
	cmd.Flags().BoolVar(&keepAll, "keep-all", false, "keep rows without any contacts")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEnrich(ctx context.Context, rt *runtime, inputPath, outputPath string, keepAll bool) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close() //nolint:errcheck // read-only file

	tbl, err := table.Load(in)
	if err != nil {
		return err
	}
	col, err := tbl.DomainColumn()
	if err != nil {
		return err
	}
	domains := tbl.Domains(col)
	rt.logger.Info("batch loaded",
		zap.String("input", inputPath),
		zap.Int("rows", len(domains)),
		zap.String("domain_column", tbl.Header[col]),
	)

	pipe := buildPipeline(rt.cfg, rt.logger,
		progress.NewLogObserver(rt.logger, rt.cfg.Pipeline.ProgressEvery))
	records, runErr := pipe.Run(ctx, domains)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run batch: %w", runErr)
	}

	out, err := tbl.WithContacts(col, records, keepAll)
	if err != nil {
		return err
	}

	dest := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close() //nolint:errcheck // flushed below
		dest = f
	}
	if err := out.Write(dest); err != nil {
		return err
	}

	summary := enrich.Summarize(records)
	rt.logger.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("active", summary.Active),
		zap.Int("inactive", summary.Inactive),
		zap.Int("skipped", summary.Skipped),
		zap.Int("email_rows", summary.EmailRows),
		zap.Int("phone_rows", summary.PhoneRows),
		zap.Int("error_rows", summary.ErrorRows),
		zap.Int("rows_written", len(out.Rows)),
	)
	if runErr != nil {
		return fmt.Errorf("batch interrupted: %w", runErr)
	}
	return nil
}
