package presence

import (
	"context"
	"sync"
	"time"
)

// memoryStore implements Store in process memory, for single-node
// deployments and tests.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an in-memory presence store.
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[string]Record),
	}
}

func (s *memoryStore) SetOnline(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[subjectID] = Record{
		SubjectID: subjectID,
		Online:    true,
		LastSeen:  time.Now().UTC(),
	}
	return nil
}

func (s *memoryStore) SetOffline(_ context.Context, subjectID string, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[subjectID] = Record{
		SubjectID: subjectID,
		Online:    false,
		LastSeen:  lastSeen,
	}
	return nil
}

func (s *memoryStore) IsOnline(_ context.Context, subjectID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[subjectID].Online, nil
}

func (s *memoryStore) Close() error {
	return nil
}
