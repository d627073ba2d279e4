package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"interview-prep-service/internal/domain"
)

// DocumentStore keeps each document as a JSONB row in the documents table.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Load(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM documents WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", key, err)
	}
	return raw, nil
}

func (s *DocumentStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (key, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE key=$1`, key)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	return nil
}
