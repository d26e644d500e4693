package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a thread-safe process-local store. Contents do not survive
// a restart; use it for tests and single-run tools.
type MemoryStore struct {
	records map[string]Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Get retrieves a record.
func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	return rec, ok, nil
}

// Put stores a record, replacing any previous one under key.
func (s *MemoryStore) Put(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = rec
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear removes all records.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
}

// Records returns all records ordered by key.
func (s *MemoryStore) Records(_ context.Context) ([]KeyedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]KeyedRecord, 0, len(s.records))
	for key, rec := range s.records {
		result = append(result, KeyedRecord{Key: key, Record: rec})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

// Verify MemoryStore implements Lister
var _ Lister = (*MemoryStore)(nil)
