package ledger

import (
	"iter"
	"maps"
	"slices"
)

// AccountEntry pairs an account id with its summary.
type AccountEntry struct {
	ID      AccountID
	Summary AccountSummary
}

// Engine routes transactions to per-account ledgers. Accounts are created on
// first reference and never removed. An Engine processes one transaction at a
// time and is not safe for concurrent use.
type Engine struct {
	accounts map[AccountID]*Account
}

// NewEngine creates an empty registry for one run.
func NewEngine() *Engine {
	return &Engine{
		accounts: make(map[AccountID]*Account),
	}
}

// Apply resolves the transaction's account, creating it if needed, and
// returns that account's result unchanged.
func (e *Engine) Apply(tx Transaction) error {
	return e.findOrCreate(tx.Account()).Apply(tx)
}

// Account returns the ledger for id, if it has been referenced.
func (e *Engine) Account(id AccountID) (*Account, bool) {
	acc, ok := e.accounts[id]
	return acc, ok
}

// Len reports the number of known accounts.
func (e *Engine) Len() int {
	return len(e.accounts)
}

// Snapshot yields every known account in unspecified order.
func (e *Engine) Snapshot() iter.Seq2[AccountID, AccountSummary] {
	return func(yield func(AccountID, AccountSummary) bool) {
		for id, acc := range e.accounts {
			if !yield(id, acc.Summary()) {
				return
			}
		}
	}
}

// SortedSnapshot returns every known account ordered by id.
func (e *Engine) SortedSnapshot() []AccountEntry {
	ids := slices.Sorted(maps.Keys(e.accounts))
	entries := make([]AccountEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, AccountEntry{ID: id, Summary: e.accounts[id].Summary()})
	}
	return entries
}

func (e *Engine) findOrCreate(id AccountID) *Account {
	acc, ok := e.accounts[id]
	if !ok {
		acc = NewAccount()
		e.accounts[id] = acc
	}
	return acc
}
