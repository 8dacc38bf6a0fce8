package health

import (
	"sync"
	"time"
)

// Tracker keeps the most recent probe record per server so the background
// check loop can log status transitions instead of every pass.
// It is safe for concurrent use by multiple goroutines.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]Record
	checked map[string]time.Time
}

// NewTracker creates a tracker seeded with an unknown-state record per name.
func NewTracker(serverNames []string) *Tracker {
	records := make(map[string]Record, len(serverNames))
	for _, name := range serverNames {
		records[name] = Record{Server: name, Status: StatusDown}
	}
	return &Tracker{
		records: records,
		checked: make(map[string]time.Time, len(serverNames)),
	}
}

// Update stores a record and reports whether the server's status changed
// since the previous update.
func (t *Tracker) Update(rec Record) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.records[rec.Server]
	t.records[rec.Server] = rec
	t.checked[rec.Server] = time.Now().UTC()

	return !seen || prev.Status != rec.Status
}

// Status returns the last recorded state for a server.
// It returns a boolean to indicate whether the server is tracked.
func (t *Tracker) Status(name string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[name]
	return rec, ok
}

// LastChecked returns when the server was last probed, zero if never.
func (t *Tracker) LastChecked(name string) time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.checked[name]
}
