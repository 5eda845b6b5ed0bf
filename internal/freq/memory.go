package freq

import (
	"context"
	"sync"
)

// MemoryStore is an in-process term-frequency table. It implements both the
// Provider interface and the matcher's FrequencySource directly, so the
// scoring hot path reads it without an adapter. Reads and writes may come
// from different goroutines: lookups take the read lock, term-stats updates
// the write lock.
type MemoryStore struct {
	mu    sync.RWMutex
	freqs map[string]uint64
}

var _ Provider = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{freqs: make(map[string]uint64)}
}

// NewMemoryStoreFrom returns a store seeded with the given frequencies.
func NewMemoryStoreFrom(freqs map[string]uint64) *MemoryStore {
	s := NewMemoryStore()
	for t, df := range freqs {
		if df > 0 {
			s.freqs[t] = df
		}
	}
	return s
}

// DocFreq returns the stored frequency for term, zero when absent.
func (s *MemoryStore) DocFreq(term []byte) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freqs[string(term)]
}

// Set records the frequency for term. A zero frequency removes the entry.
func (s *MemoryStore) Set(term string, docFreq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if docFreq == 0 {
		delete(s.freqs, term)
		return
	}
	s.freqs[term] = docFreq
}

// SetBulk records every frequency in the map, dropping zero entries.
func (s *MemoryStore) SetBulk(freqs map[string]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t, df := range freqs {
		if df == 0 {
			delete(s.freqs, t)
			continue
		}
		s.freqs[t] = df
	}
}

// Snapshot returns a copy of the current frequency table.
func (s *MemoryStore) Snapshot() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]uint64, len(s.freqs))
	for t, df := range s.freqs {
		out[t] = df
	}
	return out
}

// Len returns the number of terms with a recorded frequency.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.freqs)
}

// Name implements Provider.
func (s *MemoryStore) Name() string { return "memory" }

// Lookup implements the Provider interface for callers that route the
// store through the provider abstraction.
func (s *MemoryStore) Lookup(_ context.Context, term string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freqs[term], nil
}

// Close implements Provider.
func (s *MemoryStore) Close() error { return nil }
