package memory

import (
	"context"
	"sync"

	"interview-prep-service/internal/domain"
)

// DocumentStore is an in-memory implementation of app.DocumentStore, used in
// tests and as the no-config fallback.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string][]byte)}
}

func (s *DocumentStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *DocumentStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.docs[key] = stored
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}
