package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"interview-prep-service/internal/domain"
)

// DocumentStore is the default durable store: one JSON file per document key
// inside a data directory. Writes go through a temp file and rename so a
// crash mid-write never leaves a torn document.
type DocumentStore struct {
	dir string
}

func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

func (s *DocumentStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *DocumentStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	return data, nil
}

func (s *DocumentStore) Save(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write document %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document %s: %w", key, err)
	}
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
