package memory

import (
	"context"
	"sort"
	"sync"

	"trustie-admin/application/ports"
)

// DeadLetterStore keeps fanout dead letters in memory
type DeadLetterStore struct {
	mu      sync.RWMutex
	letters map[string]ports.DeadLetter
}

// NewDeadLetterStore creates an empty store
func NewDeadLetterStore() *DeadLetterStore {
	return &DeadLetterStore{letters: make(map[string]ports.DeadLetter)}
}

// Record implements ports.DeadLetterStore
func (s *DeadLetterStore) Record(ctx context.Context, letter ports.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letters[letter.ID] = letter
	return nil
}

// List implements ports.DeadLetterStore, oldest first
func (s *DeadLetterStore) List(ctx context.Context, limit int) ([]ports.DeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.DeadLetter, 0, len(s.letters))
	for _, l := range s.letters {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.Before(out[j].FailedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get implements ports.DeadLetterStore
func (s *DeadLetterStore) Get(ctx context.Context, id string) (*ports.DeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.letters[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// Delete implements ports.DeadLetterStore
func (s *DeadLetterStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.letters, id)
	return nil
}
