// Package store persists enrichment runs and their per-row results.
// Implementations cover in-memory use for the CLI and Postgres for the
// service.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/leadforge/contact-enricher/internal/enrich"
)

// ErrNotFound signals that the requested run does not exist.
var ErrNotFound = errors.New("run not found")

// RunStatus mirrors the runs status column.
type RunStatus string

// Run statuses persisted in runs.status.
const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// Run models one enrichment batch.
type Run struct {
	ID           string         `json:"id"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	Status       RunStatus      `json:"status"`
	Summary      enrich.Summary `json:"summary"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// RunStore persists runs and their records.
type RunStore interface {
	// CreateRun inserts a new run in the running state.
	CreateRun(ctx context.Context, run Run) error
	// FinishRun marks the run finished with its final status and summary.
	FinishRun(ctx context.Context, id string, finishedAt time.Time, status RunStatus, summary enrich.Summary, errMsg *string) error
	// SaveRecords stores the per-row results of a run.
	SaveRecords(ctx context.Context, runID string, records []enrich.Record) error
	// GetRun loads a single run or returns ErrNotFound.
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRecords returns a run's records in row order.
	ListRecords(ctx context.Context, runID string) ([]enrich.Record, error)
	// Close releases any underlying resources.
	Close()
}
