package store

import (
	"context"
	"errors"
	"fmt"

	"nowmarket/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps snapshots in a single-row jsonb table so multiple
// save points can coexist later without a schema change.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS market_snapshots (
    id         INT PRIMARY KEY,
    blob       JSONB NOT NULL,
    saved_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgresStore connects and ensures the snapshot table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, snapshotSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, blob []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO market_snapshots (id, blob, saved_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET blob = EXCLUDED.blob, saved_at = now()`, blob)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx, `SELECT blob FROM market_snapshots WHERE id = 1`).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return blob, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
