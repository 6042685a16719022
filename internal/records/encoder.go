package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/example/txengine/internal/ledger"
)

var outputHeader = []string{"client", "available", "held", "total", "locked"}

// Encoder writes account summaries as CSV. Monetary columns always carry
// four fractional digits.
type Encoder struct {
	writer *csv.Writer
	header bool
}

// NewEncoder creates an encoder over w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: csv.NewWriter(w)}
}

// Encode writes one summary row, preceded by the header on first use.
func (e *Encoder) Encode(id ledger.AccountID, s ledger.AccountSummary) error {
	if !e.header {
		if err := e.writer.Write(outputHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.header = true
	}
	row := []string{
		strconv.FormatUint(uint64(id), 10),
		s.Available.String(),
		s.Held.String(),
		s.Total().String(),
		strconv.FormatBool(s.Locked),
	}
	if err := e.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write client %d: %w", id, err)
	}
	return nil
}

// EncodeAll writes every entry and flushes.
func (e *Encoder) EncodeAll(entries []ledger.AccountEntry) error {
	for _, entry := range entries {
		if err := e.Encode(entry.ID, entry.Summary); err != nil {
			return err
		}
	}
	return e.Flush()
}

// Flush writes buffered rows. An encoder that wrote nothing still emits the
// header.
func (e *Encoder) Flush() error {
	if !e.header {
		if err := e.writer.Write(outputHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.header = true
	}
	e.writer.Flush()
	return e.writer.Error()
}
