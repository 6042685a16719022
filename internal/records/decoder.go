// Package records converts between the CSV wire format and ledger values.
// It validates field presence and shape only; all balance rules live in the
// ledger.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/txengine/internal/ledger"
)

// Input column names. The header may list them in any order; amount may be
// absent and unknown columns are ignored.
const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// ErrMalformedRecord is wrapped by every DecodeError.
var ErrMalformedRecord = errors.New("malformed record")

// DecodeError reports a record that cannot be turned into a transaction.
// It is fatal to the run.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrMalformedRecord, e.Err} }

// Decoder reads transactions from a CSV stream with a header row. Fields are
// trimmed and the amount column may be empty or missing for dispute, resolve
// and chargeback rows. Only shape is checked here: amount values are handed to
// the ledger as parsed.
type Decoder struct {
	reader  *csv.Reader
	columns map[string]int
	width   int
	line    int
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return &Decoder{reader: reader}
}

// Next returns the next transaction, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (ledger.Transaction, error) {
	if d.columns == nil {
		if err := d.readHeader(); err != nil {
			return nil, err
		}
	}

	record, err := d.read()
	if err != nil {
		return nil, err
	}
	tx, err := d.parse(record)
	if err != nil {
		return nil, &DecodeError{Line: d.line, Err: err}
	}
	return tx, nil
}

func (d *Decoder) readHeader() error {
	record, err := d.read()
	if err != nil {
		return err
	}

	columns := make(map[string]int, len(record))
	for i, name := range record {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; dup && name != "" {
			return &DecodeError{Line: d.line, Err: fmt.Errorf("duplicate column %q in header", name)}
		}
		columns[name] = i
	}
	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[required]; !ok {
			return &DecodeError{Line: d.line, Err: fmt.Errorf("header is missing column %q", required)}
		}
	}

	d.columns = columns
	d.width = len(record)
	return nil
}

func (d *Decoder) read() ([]string, error) {
	for {
		record, err := d.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &DecodeError{Line: parseErr.Line, Err: parseErr.Err}
			}
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		d.line, _ = d.reader.FieldPos(0)
		if blank(record) {
			continue
		}
		return record, nil
	}
}

// field returns the trimmed value of a named column, or "" when the column is
// not in the header or the row stops short of it.
func (d *Decoder) field(record []string, name string) string {
	i, ok := d.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (d *Decoder) parse(record []string) (ledger.Transaction, error) {
	if len(record) > d.width {
		return nil, fmt.Errorf("expected at most %d fields, got %d", d.width, len(record))
	}

	raw := d.field(record, columnType)
	if raw == "" {
		return nil, errors.New("missing transaction type")
	}
	kind, err := ledger.ParseKind(raw)
	if err != nil {
		return nil, err
	}

	raw = d.field(record, columnClient)
	if raw == "" {
		return nil, errors.New("missing client id")
	}
	client, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid client id %q: %w", raw, err)
	}

	raw = d.field(record, columnTx)
	if raw == "" {
		return nil, errors.New("missing tx id")
	}
	txID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid tx id %q: %w", raw, err)
	}

	// A present amount must parse for every kind; only deposit and withdrawal
	// use it.
	amount := ledger.ZeroAmount
	raw = d.field(record, columnAmount)
	if raw != "" {
		amount, err = ledger.ParseAmount(raw)
		if err != nil {
			return nil, err
		}
	} else if kind.HasAmount() {
		return nil, fmt.Errorf("amount is required for %s", kind)
	}

	return ledger.NewTransaction(kind, ledger.AccountID(client), ledger.TransactionID(txID), amount)
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
