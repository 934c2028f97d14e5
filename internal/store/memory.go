package store

import (
	"context"
	"sync"
	"time"

	"github.com/leadforge/contact-enricher/internal/enrich"
)

// MemoryStore keeps runs in process memory. It backs the CLI and tests,
// where run history does not need to outlive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]Run
	records map[string][]enrich.Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[string]Run),
		records: make(map[string][]enrich.Record),
	}
}

// CreateRun inserts a new run.
func (m *MemoryStore) CreateRun(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

// FinishRun marks the run finished.
func (m *MemoryStore) FinishRun(_ context.Context, id string, finishedAt time.Time, status RunStatus, summary enrich.Summary, errMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.FinishedAt = &finishedAt
	run.Status = status
	run.Summary = summary
	run.ErrorMessage = errMsg
	m.runs[id] = run
	return nil
}

// SaveRecords stores a copy of the run's records.
func (m *MemoryStore) SaveRecords(_ context.Context, runID string, records []enrich.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return ErrNotFound
	}
	m.records[runID] = append([]enrich.Record(nil), records...)
	return nil
}

// GetRun loads a single run.
func (m *MemoryStore) GetRun(_ context.Context, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// ListRecords returns the run's records in row order.
func (m *MemoryStore) ListRecords(_ context.Context, runID string) ([]enrich.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.runs[runID]; !ok {
		return nil, ErrNotFound
	}
	return append([]enrich.Record(nil), m.records[runID]...), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() {}
