package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/redwire/pkg/errors"
)

// DefaultMemoryCapacity is the number of runs a [MemoryStore] keeps before
// evicting the oldest.
const DefaultMemoryCapacity = 1000

// MemoryStore keeps runs in memory. When full, the oldest run is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	runs     map[string]*Run
	order    []string // oldest first
	capacity int
}

// NewMemoryStore creates a store holding at most capacity runs.
// A capacity of zero or less uses DefaultMemoryCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{
		runs:     make(map[string]*Run),
		capacity: capacity,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "run %s already exists", run.ID)
	}
	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, notFound(id)
	}
	return run, nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = min(ClampLimit(limit), len(s.order))
	runs := make([]*Run, 0, limit)
	for _, id := range slices.Backward(s.order) {
		if len(runs) == limit {
			break
		}
		runs = append(runs, s.runs[id])
	}
	return runs, nil
}

// Len returns the number of stored runs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Ping implements Store. It always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store. It does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
