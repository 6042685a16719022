package ledger

// AccountSummary is the read-only projection of an account handed to
// reporting collaborators.
type AccountSummary struct {
	Available Amount
	Held      Amount
	Locked    bool
}

// Total is derived and never stored.
func (s AccountSummary) Total() Amount {
	return s.Available.Add(s.Held)
}

// Account owns one client's balances and its history of disputable deposits.
// Every operation validates before it mutates, so a rejected transaction
// leaves the account exactly as it was.
type Account struct {
	available Amount
	held      Amount
	locked    bool
	disputes  map[TransactionID]*DisputeRecord
}

var _ handler = (*Account)(nil)

// NewAccount returns an empty, unlocked account.
func NewAccount() *Account {
	return &Account{
		available: ZeroAmount,
		held:      ZeroAmount,
		disputes:  make(map[TransactionID]*DisputeRecord),
	}
}

// Apply applies a single transaction. A locked account rejects everything.
func (a *Account) Apply(tx Transaction) error {
	if a.locked {
		return reject(tx, ErrLocked)
	}
	if err := tx.dispatch(a); err != nil {
		return reject(tx, err)
	}
	return nil
}

// Summary returns the current balances.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		Available: a.available,
		Held:      a.held,
		Locked:    a.locked,
	}
}

// Dispute returns a copy of the record kept for a deposit.
func (a *Account) Dispute(id TransactionID) (DisputeRecord, bool) {
	rec, ok := a.disputes[id]
	if !ok {
		return DisputeRecord{}, false
	}
	return *rec, true
}

func (a *Account) deposit(tx Deposit) error {
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if _, seen := a.disputes[tx.TxID]; seen {
		return ErrDuplicateTransaction
	}
	a.available = a.available.Add(tx.Amount)
	a.disputes[tx.TxID] = &DisputeRecord{Amount: tx.Amount, Status: StatusNormal}
	return nil
}

func (a *Account) withdrawal(tx Withdrawal) error {
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	next := a.available.Sub(tx.Amount)
	if next.IsNegative() {
		return ErrInsufficientFunds
	}
	a.available = next
	return nil
}

func (a *Account) dispute(tx Dispute) error {
	rec, err := a.record(tx.TxID, StatusDisputed)
	if err != nil {
		return err
	}
	// Funds already withdrawn cannot be held.
	next := a.available.Sub(rec.Amount)
	if next.IsNegative() {
		return ErrInsufficientFunds
	}
	a.available = next
	a.held = a.held.Add(rec.Amount)
	rec.Status = StatusDisputed
	return nil
}

func (a *Account) resolve(tx Resolve) error {
	rec, err := a.record(tx.TxID, StatusNormal)
	if err != nil {
		return err
	}
	a.available = a.available.Add(rec.Amount)
	a.held = a.held.Sub(rec.Amount)
	rec.Status = StatusNormal
	return nil
}

func (a *Account) chargeback(tx Chargeback) error {
	rec, err := a.record(tx.TxID, StatusChargedBack)
	if err != nil {
		return err
	}
	a.held = a.held.Sub(rec.Amount)
	rec.Status = StatusChargedBack
	a.locked = true
	return nil
}

// record looks up the deposit referenced by id and checks that it may move to
// the target status.
func (a *Account) record(id TransactionID, to DisputeStatus) (*DisputeRecord, error) {
	rec, ok := a.disputes[id]
	if !ok {
		return nil, ErrUnknownTransaction
	}
	if err := rec.checkTransition(id, to); err != nil {
		return nil, err
	}
	return rec, nil
}
