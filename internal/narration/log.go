package narration

import (
	"fmt"
	"sync"
)

// DefaultLogLimit is how many entries a Log keeps when no limit is given
const DefaultLogLimit = 20

// Log is a bounded combat log. Entries are prefixed with their round and
// the oldest are dropped once the limit is reached.
type Log struct {
	mu      sync.Mutex
	limit   int
	entries []string
}

// NewLog creates a log holding at most limit entries
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &Log{limit: limit}
}

// Add appends entries for a round
func (l *Log) Add(round int, entries ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range entries {
		l.entries = append(l.entries, fmt.Sprintf("Round %d: %s", round, entry))
	}
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
}

// Entries returns a copy of the current entries, oldest first
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
