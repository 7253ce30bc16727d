package memory

import (
	"sync"

	"github.com/auditlens/auditlens/internal/domain"
)

// DefaultHistoryCapacity bounds the invoice history store.
const DefaultHistoryCapacity = 1000

// HistoryStore is a bounded FIFO collection of prior invoice fingerprints.
// It backs duplicate and vendor-statistics lookups. Appends are serialized;
// readers work on snapshot copies and never observe a partial write.
type HistoryStore struct {
	mu       sync.RWMutex
	entries  []*domain.HistoryEntry
	capacity int
}

// NewHistoryStore creates a history store with the given capacity. A capacity
// of zero or less falls back to DefaultHistoryCapacity.
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryStore{
		entries:  make([]*domain.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append records an entry, evicting the oldest entries once the store
// exceeds its capacity.
func (s *HistoryStore) Append(entry *domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.capacity {
		overflow := len(s.entries) - s.capacity
		s.entries = append(s.entries[:0:0], s.entries[overflow:]...)
	}
}

// Snapshot returns all entries oldest-first. The returned slice is a copy;
// callers may iterate it while other goroutines append.
func (s *HistoryStore) Snapshot() []*domain.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the current number of entries.
func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
