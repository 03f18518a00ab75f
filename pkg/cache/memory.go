package cache

import (
	"sync"
	"time"
)

// DefaultTTL applies when Set is called without a positive TTL.
const DefaultTTL = 5 * time.Minute

// Options configures a Memory cache.
type Options struct {
	DefaultTTL time.Duration
	Now        func() time.Time
}

// Stats reports the live contents of the cache.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is a process-local key/value cache where every entry carries an
// expiry. Expired entries are dropped lazily on Get and in bulk by Sweep;
// the sweeper is housekeeping only and is never required for correctness.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemory builds a cache with the supplied options.
func NewMemory(opts Options) *Memory {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: ttl,
		now:        now,
	}
}

// Set stores a value under key. A non-positive ttl falls back to the default.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
}

// Get returns the value for key if present and unexpired. An expired entry is
// removed on access.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key.
func (m *Memory) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes the entry for key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Clear removes every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// Stats returns the current size and keys, including not-yet-swept expired
// entries.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return Stats{Size: len(m.entries), Keys: keys}
}

// Sweep removes every expired entry and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}
