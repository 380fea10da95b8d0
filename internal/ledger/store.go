// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records what each import run wrote in a SQLite database:
// the run itself, every content entry written or skipped, and the outcome
// of every asset download.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/site-import/internal/markdown"
	"github.com/pdiddy/site-import/pkg/types"
)

const dbFile = "ledger.db"

// Run kinds.
const (
	KindWordPress = "wordpress"
	KindPodcast   = "podcast"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the ledger at cfg.Dir/ledger.db and creates the
// schema if it does not exist.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			section TEXT NOT NULL,
			slug TEXT NOT NULL,
			path TEXT NOT NULL,
			outcome TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_run_id ON entries(run_id)`,
		`CREATE TABLE IF NOT EXISTS assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			post_id INTEGER NOT NULL,
			source_url TEXT NOT NULL,
			destination TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_run_id ON assets(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run records a single import run. It satisfies the recorder interfaces of
// the wordpress and podcast packages.
type Run struct {
	store *Store
	ctx   context.Context
	ID    int64
}

// BeginRun inserts a running run of the given kind.
func (s *Store) BeginRun(ctx context.Context, kind string) (*Run, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (kind, started_at, status) VALUES (?, ?, ?)`,
		kind, now(), StatusRunning)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}
	return &Run{store: s, ctx: ctx, ID: id}, nil
}

// RecordEntry stores one content file outcome.
func (r *Run) RecordEntry(kind, section, slug, path string, outcome markdown.Outcome) error {
	_, err := r.store.db.ExecContext(r.ctx,
		`INSERT INTO entries (run_id, kind, section, slug, path, outcome) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, kind, section, slug, path, string(outcome))
	if err != nil {
		return fmt.Errorf("inserting entry %s/%s: %w", section, slug, err)
	}
	return nil
}

// RecordAsset stores one asset download outcome.
func (r *Run) RecordAsset(imp types.AssetImport, status types.AssetStatus, cause error) error {
	var msg sql.NullString
	if cause != nil {
		msg = sql.NullString{String: cause.Error(), Valid: true}
	}
	_, err := r.store.db.ExecContext(r.ctx,
		`INSERT INTO assets (run_id, post_id, source_url, destination, status, error) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, imp.PostID, imp.SourceURL, imp.Destination, string(status), msg)
	if err != nil {
		return fmt.Errorf("inserting asset %s: %w", imp.SourceURL, err)
	}
	return nil
}

// Finish marks the run succeeded, or failed with runErr.
func (r *Run) Finish(runErr error) error {
	status := StatusSucceeded
	var msg sql.NullString
	if runErr != nil {
		status = StatusFailed
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	// The run context may already be cancelled when the run failed on a
	// deadline; finishing must still be recorded.
	_, err := r.store.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		now(), status, msg, r.ID)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", r.ID, err)
	}
	return nil
}

// RunSummary is a run with its entry and asset counts.
type RunSummary struct {
	ID         int64     `json:"id" yaml:"id"`
	Kind       string    `json:"kind" yaml:"kind"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status     string    `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Written    int       `json:"written" yaml:"written"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Assets     int       `json:"asset_count" yaml:"asset_count"`
	Failed     int       `json:"failed_assets" yaml:"failed_assets"`
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT r.id, r.kind, r.started_at, COALESCE(r.finished_at, ''), r.status, COALESCE(r.error, ''),
			(SELECT count(*) FROM entries e WHERE e.run_id = r.id AND e.outcome = ?),
			(SELECT count(*) FROM entries e WHERE e.run_id = r.id AND e.outcome = ?),
			(SELECT count(*) FROM assets a WHERE a.run_id = r.id),
			(SELECT count(*) FROM assets a WHERE a.run_id = r.id AND a.status = ?)
		FROM runs r ORDER BY r.id DESC`
	args := []any{string(markdown.Written), string(markdown.Skipped), string(types.AssetFailed)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Kind, &started, &finished, &r.Status, &r.Error,
			&r.Written, &r.Skipped, &r.Assets, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EntryRecord is a stored content entry.
type EntryRecord struct {
	Kind    string `json:"kind" yaml:"kind"`
	Section string `json:"section" yaml:"section"`
	Slug    string `json:"slug" yaml:"slug"`
	Path    string `json:"path" yaml:"path"`
	Outcome string `json:"outcome" yaml:"outcome"`
}

// AssetRecord is a stored asset outcome.
type AssetRecord struct {
	PostID      int    `json:"post_id" yaml:"post_id"`
	SourceURL   string `json:"source_url" yaml:"source_url"`
	Destination string `json:"destination" yaml:"destination"`
	Status      string `json:"status" yaml:"status"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Entries returns the entries of a run in insertion order.
func (s *Store) Entries(ctx context.Context, runID int64) ([]EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, section, slug, path, outcome FROM entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRecord
	for rows.Next() {
		var e EntryRecord
		if err := rows.Scan(&e.Kind, &e.Section, &e.Slug, &e.Path, &e.Outcome); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Assets returns the asset outcomes of a run in insertion order.
func (s *Store) Assets(ctx context.Context, runID int64) ([]AssetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, source_url, destination, status, COALESCE(error, '') FROM assets WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var out []AssetRecord
	for rows.Next() {
		var a AssetRecord
		if err := rows.Scan(&a.PostID, &a.SourceURL, &a.Destination, &a.Status, &a.Error); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
