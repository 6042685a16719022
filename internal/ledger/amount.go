package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits carried by every Amount at
// the record boundary.
const AmountPlaces = 4

// Amount is a monetary quantity. The zero value is 0.0000.
type Amount struct {
	value decimal.Decimal
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{value: decimal.Zero}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d}
}

// ParseAmount parses a base-10 string such as "2.5" or "0.0001".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{value: d}, nil
}

// MustAmount is ParseAmount for constants and fixtures. It panics on bad input.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount { return Amount{value: a.value.Sub(b.value)} }

func (a Amount) IsNegative() bool { return a.value.IsNegative() }
func (a Amount) IsPositive() bool { return a.value.IsPositive() }
func (a Amount) IsZero() bool { return a.value.IsZero() }

// Equal compares by value, so 1.5 equals 1.5000.
func (a Amount) Equal(b Amount) bool { return a.value.Equal(b.value) }

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.value.Cmp(b.value) }

// Decimal exposes the underlying value for storage adapters.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// String renders the amount with exactly AmountPlaces fractional digits.
func (a Amount) String() string {
	return a.value.StringFixed(AmountPlaces)
}
