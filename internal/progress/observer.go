// Package progress reports per-stage completion of the enrichment
// pipeline to interested sinks.
package progress

import (
	"go.uber.org/zap"

	"github.com/leadforge/contact-enricher/internal/metrics"
)

// Stage names reported by the pipeline.
const (
	StageProbe   = "probe"
	StageRecheck = "recheck"
	StageFetch   = "fetch"
)

// Observer receives a notification each time a unit of work finishes.
// Implementations must be safe for concurrent use.
type Observer interface {
	OnProgress(stage string, completed, total int)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(stage string, completed, total int)

func (f ObserverFunc) OnProgress(stage string, completed, total int) {
	f(stage, completed, total)
}

// LogObserver logs progress at a coarse interval so long batches leave a
// trace without flooding the log.
type LogObserver struct {
	logger *zap.Logger
	every  int
}

// NewLogObserver returns a LogObserver that logs every n completions and
// always logs the final one. n below 1 defaults to 100.
func NewLogObserver(logger *zap.Logger, every int) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if every < 1 {
		every = 100
	}
	return &LogObserver{logger: logger, every: every}
}

func (o *LogObserver) OnProgress(stage string, completed, total int) {
	if completed%o.every != 0 && completed != total {
		return
	}
	o.logger.Info("stage progress",
		zap.String("stage", stage),
		zap.Int("completed", completed),
		zap.Int("total", total),
	)
}

// MetricsObserver forwards completions to the Prometheus counters.
type MetricsObserver struct{}

func (MetricsObserver) OnProgress(stage string, _, _ int) {
	metrics.ObserveStageUnit(stage)
}
