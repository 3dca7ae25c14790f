package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

var (
	// ErrQuotaExceeded is returned by Save while the store is set to fail.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnavailable is returned by Load while the store is set to fail.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is an in-memory implementation of domain.RecordStore.
// Snapshots are copied on the way in and out so callers cannot alias stored bytes.
type Store struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	failSaves bool
	failLoads bool
	saves     int
}

// NewStore creates and returns an empty Store
func NewStore() *Store {
	return &Store{snapshots: make(map[string][]byte)}
}

// Load implements domain.RecordStore
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLoads {
		return nil, false, ErrUnavailable
	}
	data, ok := s.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Save implements domain.RecordStore
func (s *Store) Save(ctx context.Context, key string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSaves {
		return ErrQuotaExceeded
	}
	s.snapshots[key] = append([]byte(nil), snapshot...)
	s.saves++
	return nil
}

// Put seeds a raw snapshot, bypassing failure injection. Useful to plant malformed data.
func (s *Store) Put(key string, snapshot []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = append([]byte(nil), snapshot...)
}

// FailSaves makes subsequent Save calls fail (or succeed again).
func (s *Store) FailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = fail
}

// FailLoads makes subsequent Load calls fail (or succeed again).
func (s *Store) FailLoads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoads = fail
}

// Saves returns the number of successful Save calls.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.snapshots))
	for k := range s.snapshots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compile-time check: ensure Store implements RecordStore interface
var _ domain.RecordStore = (*Store)(nil)
