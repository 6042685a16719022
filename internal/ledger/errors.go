package ledger

import (
	"errors"
	"fmt"
)

// Transaction-level rejections. Each leaves the account unchanged; the caller
// drops the transaction and continues with the next one.
var (
	ErrLocked               = errors.New("account is locked")
	ErrInsufficientFunds    = errors.New("insufficient available funds")
	ErrUnknownTransaction   = errors.New("unknown transaction")
	ErrInvalidDisputeState  = errors.New("invalid dispute state")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrInvalidAmount        = errors.New("amount must not be negative")
)

// TransactionError carries the transaction that was rejected alongside the
// reason. errors.Is matches it against the sentinels above.
type TransactionError struct {
	Kind    Kind
	Account AccountID
	TxID    TransactionID
	Err     error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s rejected for client %d tx %d: %v", e.Kind, e.Account, e.TxID, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func reject(tx Transaction, err error) error {
	return &TransactionError{Kind: tx.Kind(), Account: tx.Account(), TxID: tx.ID(), Err: err}
}

// InvalidStateTransitionError reports a dispute status change that the
// lifecycle does not allow.
type InvalidStateTransitionError struct {
	From DisputeStatus
	To   DisputeStatus
	TxID TransactionID
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s for tx %d", e.From, e.To, e.TxID)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidDisputeState }
