package moderation

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultAuditCapacity bounds how many entries the log retains.
const DefaultAuditCapacity = 500

// AuditEntry records one attempted moderation action.
type AuditEntry struct {
	Timestamp  time.Time
	IssuerID   int64
	IssuerName string
	Action     Action
	TargetID   int64
	TargetName string
	ChatID     int64
	Success    bool
	// Detail is the deny reason or failure kind for unsuccessful entries.
	Detail string
}

// AuditLog is an append-only in-memory record. Only the newest capacity
// entries are retained.
type AuditLog struct {
	mu       sync.Mutex
	entries  []AuditEntry
	capacity int
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewAuditLog creates a log retaining up to capacity entries.
func NewAuditLog(logger *slog.Logger, clock clockwork.Clock, capacity int) *AuditLog {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditLog{
		entries:  make([]AuditEntry, 0, capacity),
		capacity: capacity,
		clock:    clock,
		logger:   logger.With("component", "audit"),
	}
}

// Append stamps and stores an entry.
func (a *AuditLog) Append(e AuditEntry) AuditEntry {
	if e.Timestamp.IsZero() {
		e.Timestamp = a.clock.Now()
	}

	a.mu.Lock()
	if len(a.entries) == a.capacity {
		copy(a.entries, a.entries[1:])
		a.entries = a.entries[:len(a.entries)-1]
	}
	a.entries = append(a.entries, e)
	a.mu.Unlock()

	status := "SUCCESS"
	if !e.Success {
		status = "FAILED"
	}
	a.logger.Info("MODERATION",
		"issuer", e.IssuerName, "issuer_id", e.IssuerID,
		"action", string(e.Action),
		"target", e.TargetName, "target_id", e.TargetID,
		"chat_id", e.ChatID, "status", status, "detail", e.Detail)
	return e
}

// Recent returns a snapshot of up to n entries, oldest first.
func (a *AuditLog) Recent(n int) []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= 0 || len(a.entries) == 0 {
		return nil
	}
	if n > len(a.entries) {
		n = len(a.entries)
	}
	out := make([]AuditEntry, n)
	copy(out, a.entries[len(a.entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
