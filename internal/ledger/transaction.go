package ledger

import (
	"fmt"
	"strings"
)

// AccountID identifies a client account.
type AccountID uint16

// TransactionID identifies a transaction within one input stream. Dispute,
// Resolve and Chargeback use it to reference an earlier Deposit.
type TransactionID uint32

// Kind names a transaction variant.
type Kind uint8

const (
	KindDeposit Kind = iota + 1
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseKind maps a record type name to its Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return KindDeposit, nil
	case "withdrawal":
		return KindWithdrawal, nil
	case "dispute":
		return KindDispute, nil
	case "resolve":
		return KindResolve, nil
	case "chargeback":
		return KindChargeback, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

// HasAmount reports whether records of this kind carry an amount.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction is one of Deposit, Withdrawal, Dispute, Resolve or Chargeback.
// The set is closed: the unexported dispatch method keeps other packages from
// adding variants.
type Transaction interface {
	Account() AccountID
	ID() TransactionID
	Kind() Kind
	dispatch(h handler) error
}

// handler is implemented by the account ledger. Adding a variant means adding
// a method here, which breaks the build until the ledger handles it.
type handler interface {
	deposit(tx Deposit) error
	withdrawal(tx Withdrawal) error
	dispute(tx Dispute) error
	resolve(tx Resolve) error
	chargeback(tx Chargeback) error
}

// Ref is the (account, transaction) pair every variant carries.
type Ref struct {
	AccountID AccountID
	TxID      TransactionID
}

func (r Ref) Account() AccountID { return r.AccountID }
func (r Ref) ID() TransactionID { return r.TxID }
func (r Ref) String() string { return fmt.Sprintf("client=%d tx=%d", r.AccountID, r.TxID) }

// Deposit credits available funds. It is the only disputable variant.
type Deposit struct {
	Ref
	Amount Amount
}

// Withdrawal debits available funds.
type Withdrawal struct {
	Ref
	Amount Amount
}

// Dispute holds the funds of an earlier deposit.
type Dispute struct{ Ref }

// Resolve releases the funds of a disputed deposit.
type Resolve struct{ Ref }

// Chargeback reverses a disputed deposit and locks the account.
type Chargeback struct{ Ref }

func (Deposit) Kind() Kind { return KindDeposit }
func (Withdrawal) Kind() Kind { return KindWithdrawal }
func (Dispute) Kind() Kind { return KindDispute }
func (Resolve) Kind() Kind { return KindResolve }
func (Chargeback) Kind() Kind { return KindChargeback }

func (tx Deposit) dispatch(h handler) error { return h.deposit(tx) }
func (tx Withdrawal) dispatch(h handler) error { return h.withdrawal(tx) }
func (tx Dispute) dispatch(h handler) error { return h.dispute(tx) }
func (tx Resolve) dispatch(h handler) error { return h.resolve(tx) }
func (tx Chargeback) dispatch(h handler) error { return h.chargeback(tx) }

// NewTransaction builds the variant for kind. amount is ignored for kinds
// that carry none.
func NewTransaction(kind Kind, account AccountID, id TransactionID, amount Amount) (Transaction, error) {
	ref := Ref{AccountID: account, TxID: id}
	switch kind {
	case KindDeposit:
		return Deposit{Ref: ref, Amount: amount}, nil
	case KindWithdrawal:
		return Withdrawal{Ref: ref, Amount: amount}, nil
	case KindDispute:
		return Dispute{Ref: ref}, nil
	case KindResolve:
		return Resolve{Ref: ref}, nil
	case KindChargeback:
		return Chargeback{Ref: ref}, nil
	}
	return nil, fmt.Errorf("unknown transaction kind %d", kind)
}
