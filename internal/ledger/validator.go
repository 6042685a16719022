package ledger

import (
	"fmt"
	"time"
)

// Validator checks ledger invariants over an engine's accounts.
type Validator struct {
	engine *Engine
}

// NewValidator creates a new validator instance
func NewValidator(engine *Engine) *Validator {
	return &Validator{
		engine: engine,
	}
}

// ValidationResult represents the result of a validation check
type ValidationResult struct {
	IsValid        bool                   `json:"is_valid"`
	ValidationType string                 `json:"validation_type"`
	Message        string                 `json:"message"`
	AccountID      AccountID              `json:"account_id"`
	Timestamp      time.Time              `json:"timestamp"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// ValidateNonNegativeBalances checks that neither available nor held funds
// are negative.
func (v *Validator) ValidateNonNegativeBalances(id AccountID) *ValidationResult {
	acc, result := v.lookup(id, "non_negative_balances")
	if acc == nil {
		return result
	}

	summary := acc.Summary()
	result.Details = map[string]interface{}{
		"available": summary.Available.String(),
		"held":      summary.Held.String(),
	}
	if summary.Available.IsNegative() || summary.Held.IsNegative() {
		result.Message = fmt.Sprintf("negative balance: available=%s held=%s", summary.Available, summary.Held)
		return result
	}

	result.IsValid = true
	result.Message = "balances are non-negative"
	return result
}

// ValidateHeldConsistency checks that held funds equal the sum of the
// currently disputed deposits.
func (v *Validator) ValidateHeldConsistency(id AccountID) *ValidationResult {
	acc, result := v.lookup(id, "held_consistency")
	if acc == nil {
		return result
	}

	expected := ZeroAmount
	disputed := 0
	for _, rec := range acc.disputes {
		if rec.Status == StatusDisputed {
			expected = expected.Add(rec.Amount)
			disputed++
		}
	}

	result.Details = map[string]interface{}{
		"held":              acc.held.String(),
		"expected_held":     expected.String(),
		"disputed_deposits": disputed,
	}
	if !acc.held.Equal(expected) {
		result.Message = fmt.Sprintf("held %s does not match disputed total %s", acc.held, expected)
		return result
	}

	result.IsValid = true
	result.Message = "held funds match open disputes"
	return result
}

// ValidateLockConsistency checks that an account is locked exactly when one
// of its deposits was charged back.
func (v *Validator) ValidateLockConsistency(id AccountID) *ValidationResult {
	acc, result := v.lookup(id, "lock_consistency")
	if acc == nil {
		return result
	}

	chargedBack := false
	for _, rec := range acc.disputes {
		if rec.Status == StatusChargedBack {
			chargedBack = true
			break
		}
	}

	result.Details = map[string]interface{}{
		"locked":       acc.locked,
		"charged_back": chargedBack,
	}
	if acc.locked != chargedBack {
		result.Message = fmt.Sprintf("locked=%t but charged_back=%t", acc.locked, chargedBack)
		return result
	}

	result.IsValid = true
	result.Message = "lock state matches chargebacks"
	return result
}

// ComprehensiveValidation runs all account checks.
func (v *Validator) ComprehensiveValidation(id AccountID) []*ValidationResult {
	return []*ValidationResult{
		v.ValidateNonNegativeBalances(id),
		v.ValidateHeldConsistency(id),
		v.ValidateLockConsistency(id),
	}
}

// ValidateAll runs every account check and returns only the failures, ordered
// by account id.
func (v *Validator) ValidateAll() []*ValidationResult {
	var failures []*ValidationResult
	for _, entry := range v.engine.SortedSnapshot() {
		for _, result := range v.ComprehensiveValidation(entry.ID) {
			if !result.IsValid {
				failures = append(failures, result)
			}
		}
	}
	return failures
}

func (v *Validator) lookup(id AccountID, validationType string) (*Account, *ValidationResult) {
	result := &ValidationResult{
		ValidationType: validationType,
		AccountID:      id,
		Timestamp:      time.Now(),
	}
	acc, ok := v.engine.Account(id)
	if !ok {
		result.Message = fmt.Sprintf("account %d not found", id)
		return nil, result
	}
	return acc, result
}
