package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// LogEntry represents a single audit log entry
type LogEntry struct {
	Sequence     int    `json:"sequence"`
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Payload      string `json:"payload"`
	Hash         string `json:"hash"`
}

// Outcome is the audited result of offering one transaction to the ledger.
type Outcome struct {
	RunID   string `json:"run_id"`
	Kind    string `json:"kind"`
	Client  uint16 `json:"client"`
	Tx      uint32 `json:"tx"`
	Amount  string `json:"amount,omitempty"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// ChainLogger provides a tamper-evident log using hash chaining.
type ChainLogger struct {
	mu           sync.Mutex
	previousHash string
	entries      []*LogEntry
	now          func() time.Time
}

// NewChainLogger creates a new ChainLogger initialized with a zero hash.
func NewChainLogger() *ChainLogger {
	return &ChainLogger{
		previousHash: strings.Repeat("0", 64),
		now:          time.Now,
	}
}

// Append adds a new log entry to the chain.
func (c *ChainLogger) Append(payload string) *LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &LogEntry{
		Sequence:     len(c.entries) + 1,
		Timestamp:    c.now().UTC().Format(time.RFC3339Nano),
		PreviousHash: c.previousHash,
		Payload:      payload,
	}
	entry.Hash = hashEntry(entry.PreviousHash, entry.Timestamp, entry.Payload)

	c.previousHash = entry.Hash
	c.entries = append(c.entries, entry)
	return entry
}

// AppendOutcome records a transaction outcome as a JSON payload.
func (c *ChainLogger) AppendOutcome(o Outcome) (*LogEntry, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}
	return c.Append(string(payload)), nil
}

// Entries returns a copy of the chain in append order.
func (c *ChainLogger) Entries() []*LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Head returns the hash of the latest entry.
func (c *ChainLogger) Head() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previousHash
}

// WriteJSONLines writes every entry as one JSON object per line.
func (c *ChainLogger) WriteJSONLines(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, entry := range c.Entries() {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to write audit entry %d: %w", entry.Sequence, err)
		}
	}
	return nil
}

// VerifyChain checks if a slice of entries forms a valid hash chain.
func VerifyChain(entries []*LogEntry) bool {
	for i, entry := range entries {
		prevHash := entry.PreviousHash
		if i > 0 {
			prevHash = entries[i-1].Hash
			if entry.PreviousHash != prevHash {
				return false
			}
		}

		if hashEntry(prevHash, entry.Timestamp, entry.Payload) != entry.Hash {
			return false
		}
	}
	return true
}

func hashEntry(prevHash, timestamp, payload string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", prevHash, timestamp, payload)))
	return hex.EncodeToString(hash[:])
}
