package rate

import (
	"sync"
	"time"
)

// MemoryWindow is the process-local fallback counter. It keeps the raw
// admission timestamps per identifier and prunes entries older than the
// window on every call.
//
// State is unshared across instances and resets on process restart; that
// is an accepted weakening under shared-store outage, not a bug.
type MemoryWindow struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewMemoryWindow creates an empty fallback window store.
func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{
		entries: make(map[string][]time.Time),
	}
}

// Admit records one admission attempt for the identifier and decides it
// against the quota within the window ending at now.
func (m *MemoryWindow) Admit(identifier string, quota int, window time.Duration, now time.Time) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-window)
	recent := m.entries[identifier][:0]
	for _, at := range m.entries[identifier] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= quota {
		m.entries[identifier] = recent
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   recent[0].Add(window),
		}
	}

	recent = append(recent, now)
	m.entries[identifier] = recent

	return Decision{
		Allowed:   true,
		Remaining: quota - len(recent),
		ResetAt:   recent[0].Add(window),
	}
}

// Reset clears all identifiers. Used by tests.
func (m *MemoryWindow) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]time.Time)
}
