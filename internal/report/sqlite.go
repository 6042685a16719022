package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/txengine/internal/ledger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS account_summaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	client INTEGER NOT NULL,
	available TEXT NOT NULL,
	held TEXT NOT NULL,
	total TEXT NOT NULL,
	locked INTEGER NOT NULL,
	exported_at TIMESTAMP NOT NULL,
	UNIQUE (run_id, client)
);

CREATE INDEX IF NOT EXISTS idx_account_summaries_client ON account_summaries(client);
`

// SQLiteExporter stores summaries in an embedded SQLite database. Amounts are
// stored as fixed four-digit decimal strings to stay exact.
type SQLiteExporter struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteExporter wraps an open database handle.
func NewSQLiteExporter(db *sql.DB) *SQLiteExporter {
	return &SQLiteExporter{db: db, now: time.Now}
}

// OpenSQLite opens (or creates) the database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteExporter, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	exporter := NewSQLiteExporter(db)
	if err := exporter.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return exporter, nil
}

// Migrate creates the summaries table if it does not exist.
func (s *SQLiteExporter) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

// Export inserts every summary in a single transaction.
func (s *SQLiteExporter) Export(ctx context.Context, runID uuid.UUID, entries []ledger.AccountEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO account_summaries (run_id, client, available, held, total, locked, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rowsFor(runID, entries, s.now()) {
		_, err := stmt.ExecContext(ctx, row.RunID, row.Client, row.Available, row.Held, row.Total, row.Locked, row.ExportedAt)
		if err != nil {
			return fmt.Errorf("failed to insert summary for client %d: %w", row.Client, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rows returns the stored summaries of one run ordered by client.
func (s *SQLiteExporter) Rows(ctx context.Context, runID uuid.UUID) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, client, available, held, total, locked, exported_at
		FROM account_summaries
		WHERE run_id = ?
		ORDER BY client
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.RunID, &row.Client, &row.Available, &row.Held, &row.Total, &row.Locked, &row.ExportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteExporter) Close() error {
	return s.db.Close()
}
