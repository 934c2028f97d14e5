// Package pipeline orchestrates the enrichment stages: classification,
// liveness probe, inactive recheck, and contact fetch. Every stage runs
// under its own concurrency bound, and output order always matches input
// order.
package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadforge/contact-enricher/internal/enrich"
	"github.com/leadforge/contact-enricher/internal/progress"
)

// Bounds caps in-flight work per stage.
type Bounds struct {
	Probe   int
	Recheck int
	Fetch   int
}

// DefaultBounds returns the production stage limits. The recheck bound is
// the tightest because rechecks hit servers already behaving badly.
func DefaultBounds() Bounds {
	return Bounds{Probe: 80, Recheck: 25, Fetch: 60}
}

// Pipeline runs the enrichment stages over a batch of raw domains.
type Pipeline struct {
	prober    enrich.Prober
	fetcher   enrich.Fetcher
	blocklist *enrich.Blocklist
	bounds    Bounds
	observers []progress.Observer
	logger    *zap.Logger
}

// New builds a Pipeline. Blocklist and observers are optional; zero or
// negative bounds fall back to serial execution for that stage.
func New(prober enrich.Prober, fetcher enrich.Fetcher, blocklist *enrich.Blocklist, bounds Bounds, logger *zap.Logger, observers ...progress.Observer) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		prober:    prober,
		fetcher:   fetcher,
		blocklist: blocklist,
		bounds:    bounds,
		observers: observers,
		logger:    logger,
	}
}

// Run processes the batch and returns one Record per input row, in input
// order. A canceled context returns the partial results alongside the
// context error; rows never processed keep their classification but no
// liveness or contact data.
func (p *Pipeline) Run(ctx context.Context, domains []string) ([]enrich.Record, error) {
	records := make([]enrich.Record, len(domains))
	var candidates []int
	for i, d := range domains {
		class := enrich.ClassifyDomain(d, p.blocklist)
		records[i] = enrich.Record{
			Index:  i,
			Domain: d,
			Class:  class,
			Status: enrich.StatusSkipped,
		}
		if class == enrich.ClassCandidate {
			candidates = append(candidates, i)
		}
	}
	p.logger.Info("batch classified",
		zap.Int("rows", len(domains)),
		zap.Int("candidates", len(candidates)),
	)

	if err := p.runStage(ctx, progress.StageProbe, p.bounds.Probe, records, candidates, func(ctx context.Context, rec *enrich.Record) {
		rec.Status = p.prober.Probe(ctx, rec.Domain)
	}); err != nil {
		return records, err
	}

	var inactive []int
	for _, i := range candidates {
		if records[i].Status == enrich.StatusInactive {
			inactive = append(inactive, i)
		}
	}
	// The recheck only promotes. A domain the GET pass still cannot reach
	// stays inactive.
	if err := p.runStage(ctx, progress.StageRecheck, p.bounds.Recheck, records, inactive, func(ctx context.Context, rec *enrich.Record) {
		if p.prober.Recheck(ctx, rec.Domain) == enrich.StatusActive {
			rec.Status = enrich.StatusActive
		}
	}); err != nil {
		return records, err
	}

	var active []int
	for _, i := range candidates {
		if records[i].Status == enrich.StatusActive {
			active = append(active, i)
		}
	}
	if err := p.runStage(ctx, progress.StageFetch, p.bounds.Fetch, records, active, func(ctx context.Context, rec *enrich.Record) {
		rec.Contacts = p.fetcher.FetchContacts(ctx, rec.Domain)
	}); err != nil {
		return records, err
	}

	return records, nil
}

// runStage fans the work function out over the given row indices with at
// most limit in flight. Each row is isolated: a panic marks that row as
// errored and the stage keeps going.
func (p *Pipeline) runStage(ctx context.Context, stage string, limit int, records []enrich.Record, indices []int, work func(ctx context.Context, rec *enrich.Record)) error {
	if len(indices) == 0 {
		return ctx.Err()
	}
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	var completed atomic.Int64
	total := len(indices)

	// Stage workers only touch their own slot, so the records slice needs
	// no lock.
	for _, idx := range indices {
		rec := &records[idx]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.runRow(gctx, stage, rec, work)
			done := int(completed.Add(1))
			for _, o := range p.observers {
				o.OnProgress(stage, done, total)
			}
			return nil
		})
	}
	err := g.Wait()
	p.logger.Info("stage complete",
		zap.String("stage", stage),
		zap.Int("rows", total),
		zap.Error(err),
	)
	return err
}

func (p *Pipeline) runRow(ctx context.Context, stage string, rec *enrich.Record, work func(ctx context.Context, rec *enrich.Record)) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("row recovered from panic",
				zap.String("stage", stage),
				zap.Int("row", rec.Index),
				zap.Any("panic", r),
			)
			if stage == progress.StageFetch {
				rec.Contacts = enrich.ContactSet{Err: true}
			} else {
				rec.Status = enrich.StatusInactive
			}
		}
	}()
	work(ctx, rec)
}
