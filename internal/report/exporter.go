// Package report exports end-of-run account summaries to a SQL database. It
// is an output side channel: nothing exported is ever read back into the
// ledger.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/txengine/internal/config"
	"github.com/example/txengine/internal/ledger"
)

// Exporter writes one run's account summaries.
type Exporter interface {
	Export(ctx context.Context, runID uuid.UUID, entries []ledger.AccountEntry) error
	Close() error
}

// Row is the stored form of one account summary.
type Row struct {
	RunID      string
	Client     int64
	Available  string
	Held       string
	Total      string
	Locked     bool
	ExportedAt time.Time
}

func rowsFor(runID uuid.UUID, entries []ledger.AccountEntry, now time.Time) []Row {
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{
			RunID:      runID.String(),
			Client:     int64(entry.ID),
			Available:  entry.Summary.Available.String(),
			Held:       entry.Summary.Held.String(),
			Total:      entry.Summary.Total().String(),
			Locked:     entry.Summary.Locked,
			ExportedAt: now.UTC(),
		})
	}
	return rows
}

// Open connects the exporter selected by sink and ensures its table exists.
// It returns nil for config.SinkNone.
func Open(ctx context.Context, sink, databaseURL string) (Exporter, error) {
	switch sink {
	case config.SinkNone:
		return nil, nil
	case config.SinkSQLite:
		exporter, err := OpenSQLite(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return exporter, nil
	case config.SinkPostgres:
		exporter, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return exporter, nil
	}
	return nil, fmt.Errorf("unknown report sink %q", sink)
}
