package ledger

// DisputeStatus is the lifecycle state of a recorded deposit.
type DisputeStatus string

const (
	StatusNormal      DisputeStatus = "NORMAL"
	StatusDisputed    DisputeStatus = "DISPUTED"
	StatusChargedBack DisputeStatus = "CHARGED_BACK"
)

func (s DisputeStatus) String() string { return string(s) }

// AllowedTransitions defines valid status transitions.
func AllowedTransitions() map[DisputeStatus][]DisputeStatus {
	return map[DisputeStatus][]DisputeStatus{
		StatusNormal:      {StatusDisputed},
		StatusDisputed:    {StatusNormal, StatusChargedBack},
		StatusChargedBack: {}, // Terminal state
	}
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to DisputeStatus) bool {
	for _, allowed := range AllowedTransitions()[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StatusDescription provides human-readable descriptions of statuses.
func StatusDescription(s DisputeStatus) string {
	switch s {
	case StatusNormal:
		return "Deposit is settled and eligible for dispute"
	case StatusDisputed:
		return "Deposit is under dispute and its funds are held"
	case StatusChargedBack:
		return "Deposit was reversed and the account locked"
	default:
		return "Unknown status"
	}
}

// DisputeRecord is the disputable trace of one applied deposit. Records are
// owned by a single account and are never removed.
type DisputeRecord struct {
	Amount Amount
	Status DisputeStatus
}

// checkTransition validates a status change for the record stored under id. It
// does not mutate the record.
func (r *DisputeRecord) checkTransition(id TransactionID, to DisputeStatus) error {
	if !IsValidTransition(r.Status, to) {
		return &InvalidStateTransitionError{From: r.Status, To: to, TxID: id}
	}
	return nil
}
