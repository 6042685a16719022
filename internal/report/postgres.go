package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/txengine/internal/ledger"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS account_summaries (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	client INTEGER NOT NULL CHECK (client >= 0),
	available NUMERIC(20, 4) NOT NULL CHECK (available >= 0),
	held NUMERIC(20, 4) NOT NULL CHECK (held >= 0),
	total NUMERIC(20, 4) NOT NULL,
	locked BOOLEAN NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL,
	UNIQUE (run_id, client)
);`

const postgresInsert = `
	INSERT INTO account_summaries (run_id, client, available, held, total, locked, exported_at)
	VALUES ($1::uuid, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7)`

// Pool is the subset of *pgxpool.Pool the exporter needs.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresExporter stores summaries in PostgreSQL.
type PostgresExporter struct {
	Pool Pool
	now  func() time.Time
}

// NewPostgresExporter creates an exporter over an existing pool.
func NewPostgresExporter(pool Pool) *PostgresExporter {
	return &PostgresExporter{Pool: pool, now: time.Now}
}

// OpenPostgres connects to databaseURL and migrates the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresExporter, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	exporter := NewPostgresExporter(pool)
	if err := exporter.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return exporter, nil
}

// Migrate creates the summaries table if it does not exist.
func (p *PostgresExporter) Migrate(ctx context.Context) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := p.Pool.Exec(queryCtx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate postgres schema: %w", err)
	}
	return nil
}

// Export inserts every summary as one batch inside a transaction.
func (p *PostgresExporter) Export(ctx context.Context, runID uuid.UUID, entries []ledger.AccountEntry) error {
	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := p.Pool.Begin(queryCtx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(queryCtx) }()

	rows := rowsFor(runID, entries, p.now())
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(postgresInsert, row.RunID, row.Client, row.Available, row.Held, row.Total, row.Locked, row.ExportedAt)
	}

	results := tx.SendBatch(queryCtx, batch)
	for _, row := range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert summary for client %d: %w", row.Client, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(queryCtx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the pool.
func (p *PostgresExporter) Close() error {
	p.Pool.Close()
	return nil
}
