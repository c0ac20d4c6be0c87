package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the latest snapshot in a single JSON file. Writes go
// through a temp file and rename so a crash mid-save never corrupts the
// previous snapshot.
type FileStore struct {
	path string
}

// NewFileStore ensures the parent directory exists.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(_ context.Context, blob []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoSnapshot
	}
	return raw, nil
}

func (s *FileStore) Close() {}
