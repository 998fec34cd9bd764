// Package repository persists batch runs to an embedded SQLite database so
// past extractions stay inspectable after the artifacts are shipped.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const ddl = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	documents   INTEGER NOT NULL DEFAULT 0,
	rows        INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL REFERENCES runs(id),
	source_path    TEXT NOT NULL,
	format         TEXT NOT NULL,
	classification TEXT NOT NULL,
	error_kind     TEXT NOT NULL DEFAULT '',
	row_count      INTEGER NOT NULL DEFAULT 0,
	raw_json       BLOB,
	created_at     TIMESTAMP NOT NULL
);
`

// DocumentRecord is one processed document's archived outcome.
type DocumentRecord struct {
	SourcePath     string
	Format         string
	Classification string
	ErrorKind      string
	RowCount       int
	RawJSON        []byte
}

type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the archive database at path. ":memory:" works for
// tests.
func Open(path string, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db, logger: logger}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// StartRun records a new batch run and returns its ID.
func (a *Archive) StartRun(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id.String(), time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps a run with its totals.
func (a *Archive) FinishRun(ctx context.Context, runID uuid.UUID, documents, rows int) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, documents = ?, rows = ? WHERE id = ?`,
		time.Now().UTC(), documents, rows, runID.String())
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordDocument archives one document's outcome under a run.
func (a *Archive) RecordDocument(ctx context.Context, runID uuid.UUID, rec DocumentRecord) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO documents (id, run_id, source_path, format, classification, error_kind, row_count, raw_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID.String(), rec.SourcePath, rec.Format,
		rec.Classification, rec.ErrorKind, rec.RowCount, rec.RawJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// RunDocuments lists archived documents for a run in insertion order.
func (a *Archive) RunDocuments(ctx context.Context, runID uuid.UUID) ([]DocumentRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT source_path, format, classification, error_kind, row_count, raw_json
		   FROM documents WHERE run_id = ? ORDER BY created_at, id`,
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			a.logger.Warn("archive rows close error", "error", cerr)
		}
	}()

	var out []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.SourcePath, &rec.Format, &rec.Classification,
			&rec.ErrorKind, &rec.RowCount, &rec.RawJSON); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
