// Package runner drives one pass of an input stream through a fresh ledger
// engine and reports the resulting accounts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/txengine/internal/ledger"
	"github.com/example/txengine/internal/records"
	"github.com/example/txengine/internal/report"
	"github.com/example/txengine/pkg/audit"
)

// Options wires a run to its collaborators. Input and Output are required;
// the rest are optional.
type Options struct {
	Input    io.Reader
	Output   io.Writer
	Logger   *zap.Logger
	Audit    *audit.ChainLogger
	Exporter report.Exporter
}

// Stats summarises a completed run.
type Stats struct {
	RunID    uuid.UUID
	Records  int
	Applied  int
	Rejected int
	Accounts int
}

// Run applies every record in order. A malformed record or an unreadable
// input aborts the run; a transaction the ledger rejects is logged and
// skipped.
func Run(ctx context.Context, opts Options) (Stats, error) {
	if opts.Input == nil || opts.Output == nil {
		return Stats{}, errors.New("runner: input and output are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := Stats{RunID: uuid.New()}
	logger = logger.With(zap.String("run_id", stats.RunID.String()))

	engine := ledger.NewEngine()
	decoder := records.NewDecoder(opts.Input)

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("run cancelled after %d records: %w", stats.Records, err)
		}

		tx, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("aborting on unreadable input", zap.Int("records", stats.Records), zap.Error(err))
			return stats, fmt.Errorf("failed to decode input: %w", err)
		}
		stats.Records++

		applyErr := engine.Apply(tx)
		if applyErr != nil {
			stats.Rejected++
			logger.Warn("transaction rejected",
				zap.Stringer("kind", tx.Kind()),
				zap.Uint16("client", uint16(tx.Account())),
				zap.Uint32("tx", uint32(tx.ID())),
				zap.Error(applyErr),
			)
		} else {
			stats.Applied++
		}

		if opts.Audit != nil {
			if _, err := opts.Audit.AppendOutcome(outcome(stats.RunID, tx, applyErr)); err != nil {
				return stats, err
			}
		}
	}

	for _, failure := range ledger.NewValidator(engine).ValidateAll() {
		logger.Error("ledger invariant violated",
			zap.Uint16("client", uint16(failure.AccountID)),
			zap.String("check", failure.ValidationType),
			zap.String("message", failure.Message),
		)
	}

	entries := engine.SortedSnapshot()
	stats.Accounts = len(entries)

	if err := records.NewEncoder(opts.Output).EncodeAll(entries); err != nil {
		return stats, fmt.Errorf("failed to write accounts: %w", err)
	}

	if opts.Exporter != nil {
		if err := opts.Exporter.Export(ctx, stats.RunID, entries); err != nil {
			return stats, fmt.Errorf("failed to export accounts: %w", err)
		}
	}

	logger.Info("run complete",
		zap.Int("records", stats.Records),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("accounts", stats.Accounts),
	)
	return stats, nil
}

func outcome(runID uuid.UUID, tx ledger.Transaction, err error) audit.Outcome {
	o := audit.Outcome{
		RunID:   runID.String(),
		Kind:    tx.Kind().String(),
		Client:  uint16(tx.Account()),
		Tx:      uint32(tx.ID()),
		Applied: err == nil,
	}
	switch v := tx.(type) {
	case ledger.Deposit:
		o.Amount = v.Amount.String()
	case ledger.Withdrawal:
		o.Amount = v.Amount.String()
	}
	var txErr *ledger.TransactionError
	switch {
	case errors.As(err, &txErr):
		o.Reason = txErr.Err.Error()
	case err != nil:
		o.Reason = err.Error()
	}
	return o
}
