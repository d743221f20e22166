package store

import (
	"context"
	"sync"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
)

// MemoryStore keeps the most recent records in process memory. The zero
// retention means the default cap.
type MemoryStore struct {
	mu        sync.RWMutex
	records   []Record
	retention int
}

func NewMemoryStore(retention int) *MemoryStore {
	if retention <= 0 {
		retention = constants.DefaultRetention
	}
	return &MemoryStore{retention: retention}
}

func (s *MemoryStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if over := len(s.records) - s.retention; over > 0 {
		s.records = append(s.records[:0:0], s.records[over:]...)
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
