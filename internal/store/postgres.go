package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leadforge/contact-enricher/internal/enrich"
)

// PostgresConfig controls the connection pool used for run persistence.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// PostgresStore persists runs in Postgres.
//
// Expected schema:
//
//	CREATE TABLE runs (
//		id            TEXT PRIMARY KEY,
//		started_at    TIMESTAMPTZ NOT NULL,
//		finished_at   TIMESTAMPTZ,
//		status        TEXT NOT NULL,
//		summary       JSONB NOT NULL DEFAULT '{}',
//		error_message TEXT
//	);
//
//	CREATE TABLE run_records (
//		run_id      TEXT NOT NULL REFERENCES runs(id),
//		row_index   INT NOT NULL,
//		domain      TEXT NOT NULL,
//		class       TEXT NOT NULL,
//		status      TEXT NOT NULL,
//		emails      JSONB NOT NULL DEFAULT '[]',
//		phones      JSONB NOT NULL DEFAULT '[]',
//		fetch_error BOOLEAN NOT NULL DEFAULT FALSE,
//		PRIMARY KEY (run_id, row_index)
//	);
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore creates a Postgres-backed RunStore using the provided config.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxPool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// CreateRun inserts a new run in the running state.
func (s *PostgresStore) CreateRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	query := `
INSERT INTO runs (id, started_at, status, summary)
VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, query, run.ID, run.StartedAt, string(run.Status), summaryJSON); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun marks the run finished with its final status and summary.
func (s *PostgresStore) FinishRun(ctx context.Context, id string, finishedAt time.Time, status RunStatus, summary enrich.Summary, errMsg *string) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	query := `
UPDATE runs
SET finished_at = $2, status = $3, summary = $4, error_message = $5
WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, finishedAt, string(status), summaryJSON, errMsg)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveRecords stores the per-row results of a run.
func (s *PostgresStore) SaveRecords(ctx context.Context, runID string, records []enrich.Record) error {
	query := `
INSERT INTO run_records (run_id, row_index, domain, class, status, emails, phones, fetch_error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, rec := range records {
		emails, err := json.Marshal(stringsOrEmpty(rec.Contacts.Emails))
		if err != nil {
			return fmt.Errorf("marshal emails: %w", err)
		}
		phones, err := json.Marshal(stringsOrEmpty(rec.Contacts.Phones))
		if err != nil {
			return fmt.Errorf("marshal phones: %w", err)
		}
		if _, err := s.pool.Exec(ctx, query,
			runID,
			rec.Index,
			rec.Domain,
			string(rec.Class),
			string(rec.Status),
			emails,
			phones,
			rec.Contacts.Err,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", rec.Index, err)
		}
	}
	return nil
}

// GetRun loads a single run or returns ErrNotFound.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (Run, error) {
	query := `
SELECT id, started_at, finished_at, status, summary, error_message
FROM runs
WHERE id = $1`
	var (
		run         Run
		status      string
		summaryJSON []byte
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&status,
		&summaryJSON,
		&run.ErrorMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("select run: %w", err)
	}
	run.Status = RunStatus(status)
	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return Run{}, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	return run, nil
}

// ListRecords returns a run's records in row order.
func (s *PostgresStore) ListRecords(ctx context.Context, runID string) ([]enrich.Record, error) {
	query := `
SELECT row_index, domain, class, status, emails, phones, fetch_error
FROM run_records
WHERE run_id = $1
ORDER BY row_index`
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	var out []enrich.Record
	for rows.Next() {
		var (
			rec    enrich.Record
			class  string
			status string
			emails []byte
			phones []byte
		)
		if err := rows.Scan(&rec.Index, &rec.Domain, &class, &status, &emails, &phones, &rec.Contacts.Err); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Class = enrich.DomainClass(class)
		rec.Status = enrich.LivenessStatus(status)
		if err := json.Unmarshal(emails, &rec.Contacts.Emails); err != nil {
			return nil, fmt.Errorf("unmarshal emails: %w", err)
		}
		if err := json.Unmarshal(phones, &rec.Contacts.Phones); err != nil {
			return nil, fmt.Errorf("unmarshal phones: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func stringsOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
