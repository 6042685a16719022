package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clientA AccountID = 1
	clientB AccountID = 2

	tx1 TransactionID = 1
	tx2 TransactionID = 2
	tx3 TransactionID = 3
)

func deposit(amount string, id TransactionID) Transaction {
	return Deposit{Ref: Ref{AccountID: clientA, TxID: id}, Amount: MustAmount(amount)}
}

func withdraw(amount string, id TransactionID) Transaction {
	return Withdrawal{Ref: Ref{AccountID: clientA, TxID: id}, Amount: MustAmount(amount)}
}

func dispute(id TransactionID) Transaction {
	return Dispute{Ref: Ref{AccountID: clientA, TxID: id}}
}

func resolve(id TransactionID) Transaction {
	return Resolve{Ref: Ref{AccountID: clientA, TxID: id}}
}

func chargeback(id TransactionID) Transaction {
	return Chargeback{Ref: Ref{AccountID: clientA, TxID: id}}
}

// run applies every transaction, ignoring rejections, and returns the account.
func run(t *testing.T, txs ...Transaction) *Account {
	t.Helper()
	acc := NewAccount()
	for _, tx := range txs {
		_ = acc.Apply(tx)
	}
	return acc
}

func assertSummary(t *testing.T, acc *Account, available, held string, locked bool) {
	t.Helper()
	s := acc.Summary()
	assert.Equal(t, available, s.Available.String(), "available")
	assert.Equal(t, held, s.Held.String(), "held")
	assert.Equal(t, locked, s.Locked, "locked")
}

func TestAccount_Scenarios(t *testing.T) {
	testCases := []struct {
		name      string
		txs       []Transaction
		available string
		held      string
		locked    bool
	}{
		{
			name:      "deposit then withdraw",
			txs:       []Transaction{deposit("2.0", tx1), withdraw("1.0", tx2)},
			available: "1.0000",
			held:      "0.0000",
		},
		{
			name:      "withdraw from empty account",
			txs:       []Transaction{withdraw("1.0", tx1)},
			available: "0.0000",
			held:      "0.0000",
		},
		{
			name:      "dispute holds funds",
			txs:       []Transaction{deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1)},
			available: "1.0000",
			held:      "2.0000",
		},
		{
			name:      "dispute after withdrawal is rejected",
			txs:       []Transaction{deposit("2.0", tx1), withdraw("1.0", tx2), dispute(tx1)},
			available: "1.0000",
			held:      "0.0000",
		},
		{
			name:      "double dispute",
			txs:       []Transaction{deposit("2.0", tx1), dispute(tx1), deposit("1.0", tx2), dispute(tx1)},
			available: "1.0000",
			held:      "2.0000",
		},
		{
			name:      "dispute then resolve",
			txs:       []Transaction{deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1), resolve(tx1)},
			available: "3.0000",
			held:      "0.0000",
		},
		{
			name:      "dispute then chargeback",
			txs:       []Transaction{deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1), chargeback(tx1)},
			available: "1.0000",
			held:      "0.0000",
			locked:    true,
		},
		{
			name: "double chargeback",
			txs: []Transaction{
				deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1), chargeback(tx1), chargeback(tx1),
			},
			available: "1.0000",
			held:      "0.0000",
			locked:    true,
		},
		{
			name: "dispute after chargeback",
			txs: []Transaction{
				deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1), chargeback(tx1), dispute(tx1),
			},
			available: "1.0000",
			held:      "0.0000",
			locked:    true,
		},
		{
			name: "dispute after resolve",
			txs: []Transaction{
				deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1), resolve(tx1), dispute(tx1),
			},
			available: "1.0000",
			held:      "2.0000",
		},
		{
			name:      "fractional amounts stay exact",
			txs:       []Transaction{deposit("0.1", tx1), deposit("0.2", tx2), withdraw("0.3", tx3)},
			available: "0.0000",
			held:      "0.0000",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := run(t, tc.txs...)
			assertSummary(t, acc, tc.available, tc.held, tc.locked)
		})
	}
}

func TestAccount_RejectionErrors(t *testing.T) {
	testCases := []struct {
		name  string
		setup []Transaction
		tx    Transaction
		want  error
	}{
		{"withdraw more than available", []Transaction{deposit("1.0", tx1)}, withdraw("1.5", tx2), ErrInsufficientFunds},
		{"dispute unknown id", []Transaction{deposit("1.0", tx1)}, dispute(tx3), ErrUnknownTransaction},
		{"resolve unknown id", nil, resolve(tx1), ErrUnknownTransaction},
		{"chargeback unknown id", nil, chargeback(tx1), ErrUnknownTransaction},
		{"withdrawal id is not disputable", []Transaction{deposit("2.0", tx1), withdraw("1.0", tx2)}, dispute(tx2), ErrUnknownTransaction},
		{"resolve undisputed deposit", []Transaction{deposit("1.0", tx1)}, resolve(tx1), ErrInvalidDisputeState},
		{"chargeback undisputed deposit", []Transaction{deposit("1.0", tx1)}, chargeback(tx1), ErrInvalidDisputeState},
		{"dispute disputed deposit", []Transaction{deposit("1.0", tx1), dispute(tx1)}, dispute(tx1), ErrInvalidDisputeState},
		{"dispute withdrawn funds", []Transaction{deposit("2.0", tx1), withdraw("1.5", tx2)}, dispute(tx1), ErrInsufficientFunds},
		{"duplicate deposit id", []Transaction{deposit("1.0", tx1)}, deposit("5.0", tx1), ErrDuplicateTransaction},
		{"negative deposit", nil, deposit("-1.0", tx1), ErrInvalidAmount},
		{"negative withdrawal", []Transaction{deposit("1.0", tx1)}, withdraw("-1.0", tx2), ErrInvalidAmount},
		{"locked account", []Transaction{deposit("1.0", tx1), dispute(tx1), chargeback(tx1)}, deposit("1.0", tx2), ErrLocked},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := run(t, tc.setup...)
			before := acc.Summary()

			err := acc.Apply(tc.tx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var txErr *TransactionError
			require.True(t, errors.As(err, &txErr))
			assert.Equal(t, tc.tx.Kind(), txErr.Kind)
			assert.Equal(t, tc.tx.ID(), txErr.TxID)
			assert.Equal(t, before, acc.Summary(), "rejected transaction must not change balances")
		})
	}
}

func TestAccount_ZeroAmounts(t *testing.T) {
	acc := NewAccount()
	require.NoError(t, acc.Apply(deposit("5.0", tx1)))
	require.NoError(t, acc.Apply(deposit("0", tx2)))
	require.NoError(t, acc.Apply(withdraw("0", tx3)))
	assertSummary(t, acc, "5.0000", "0.0000", false)

	rec, ok := acc.Dispute(tx2)
	require.True(t, ok)
	assert.Equal(t, StatusNormal, rec.Status)
	assert.True(t, rec.Amount.IsZero())

	require.NoError(t, acc.Apply(dispute(tx2)))
	require.NoError(t, acc.Apply(chargeback(tx2)))
	assertSummary(t, acc, "5.0000", "0.0000", true)
}

func TestAccount_SubPrecisionDeposit(t *testing.T) {
	acc := run(t, deposit("1.0", tx1), deposit("0.00001", tx2))
	assert.True(t, acc.Summary().Available.Equal(MustAmount("1.00001")))
	assert.Equal(t, "1.0000", acc.Summary().Available.String())
}

func TestAccount_InvalidTransitionCarriesStates(t *testing.T) {
	acc := run(t, deposit("1.0", tx1))

	err := acc.Apply(resolve(tx1))

	var transitionErr *InvalidStateTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StatusNormal, transitionErr.From)
	assert.Equal(t, StatusNormal, transitionErr.To)
	assert.Equal(t, tx1, transitionErr.TxID)
}

func TestAccount_DisputeRecordLifecycle(t *testing.T) {
	acc := NewAccount()

	_, ok := acc.Dispute(tx1)
	assert.False(t, ok)

	require.NoError(t, acc.Apply(deposit("2.5", tx1)))
	rec, ok := acc.Dispute(tx1)
	require.True(t, ok)
	assert.Equal(t, StatusNormal, rec.Status)
	assert.Equal(t, "2.5000", rec.Amount.String())

	require.NoError(t, acc.Apply(dispute(tx1)))
	rec, _ = acc.Dispute(tx1)
	assert.Equal(t, StatusDisputed, rec.Status)

	require.NoError(t, acc.Apply(resolve(tx1)))
	rec, _ = acc.Dispute(tx1)
	assert.Equal(t, StatusNormal, rec.Status)

	require.NoError(t, acc.Apply(dispute(tx1)))
	require.NoError(t, acc.Apply(chargeback(tx1)))
	rec, _ = acc.Dispute(tx1)
	assert.Equal(t, StatusChargedBack, rec.Status)
}

func TestAccount_FailedDisputeKeepsStatus(t *testing.T) {
	acc := run(t, deposit("2.0", tx1), withdraw("1.0", tx2))

	err := acc.Apply(dispute(tx1))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	rec, ok := acc.Dispute(tx1)
	require.True(t, ok)
	assert.Equal(t, StatusNormal, rec.Status)

	// Once funds are back the same deposit can still be disputed.
	require.NoError(t, acc.Apply(deposit("5.0", tx3)))
	require.NoError(t, acc.Apply(dispute(tx1)))
	assertSummary(t, acc, "4.0000", "2.0000", false)
}

func TestAccount_DuplicateDepositKeepsOriginalRecord(t *testing.T) {
	acc := run(t, deposit("1.0", tx1), deposit("9.0", tx1))

	assertSummary(t, acc, "1.0000", "0.0000", false)
	rec, ok := acc.Dispute(tx1)
	require.True(t, ok)
	assert.Equal(t, "1.0000", rec.Amount.String())
}

func TestAccount_LockFinality(t *testing.T) {
	acc := run(t, deposit("2.0", tx1), deposit("1.0", tx2), dispute(tx1), chargeback(tx1))
	locked := acc.Summary()
	require.True(t, locked.Locked)

	for _, tx := range []Transaction{
		deposit("10.0", tx3),
		withdraw("0.5", tx3),
		dispute(tx2),
		resolve(tx1),
		chargeback(tx1),
		dispute(tx1),
	} {
		err := acc.Apply(tx)
		assert.ErrorIs(t, err, ErrLocked, tx.Kind().String())
		assert.Equal(t, locked, acc.Summary())
	}
}

func TestAccount_Conservation(t *testing.T) {
	txs := []Transaction{
		deposit("3.25", tx1),
		deposit("1.75", tx2),
		dispute(tx1),
		dispute(tx2),
		resolve(tx1),
		dispute(tx1),
		resolve(tx2),
		resolve(tx1),
	}

	acc := NewAccount()
	for _, tx := range txs {
		before := acc.Summary()
		err := acc.Apply(tx)
		require.NoError(t, err)

		after := acc.Summary()
		assert.False(t, after.Available.IsNegative())
		assert.False(t, after.Held.IsNegative())

		switch tx.Kind() {
		case KindDispute, KindResolve:
			assert.True(t, before.Total().Equal(after.Total()),
				"%s changed total from %s to %s", tx.Kind(), before.Total(), after.Total())
		}
	}
	assertSummary(t, acc, "5.0000", "0.0000", false)
}

func TestAccount_IdempotentRejection(t *testing.T) {
	acc := run(t, deposit("2.0", tx1), dispute(tx1), resolve(tx1))

	for i := 0; i < 3; i++ {
		before := acc.Summary()
		err := acc.Apply(resolve(tx1))
		assert.ErrorIs(t, err, ErrInvalidDisputeState)
		assert.Equal(t, before, acc.Summary())

		rec, _ := acc.Dispute(tx1)
		assert.Equal(t, StatusNormal, rec.Status)
	}
}

func TestAccountSummary_Total(t *testing.T) {
	s := AccountSummary{Available: MustAmount("1.5"), Held: MustAmount("2.25")}
	assert.Equal(t, "3.7500", s.Total().String())
}
