package content

import (
	"context"
	"fmt"
	"sync"

	"github.com/certchain/certchain/pkg/certchain/model"
)

type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	id, err := ComputeCID(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = append([]byte(nil), data...)
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	normalized, err := NormalizeCID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[normalized]
	if !ok {
		return nil, fmt.Errorf("%s not pinned: %w", normalized, model.ErrContentUnavailable)
	}
	return append([]byte(nil), data...), nil
}

// Replace overwrites pinned bytes without changing the id. Used to simulate a
// gateway serving altered content.
func (s *MemoryStore) Replace(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = append([]byte(nil), data...)
}
