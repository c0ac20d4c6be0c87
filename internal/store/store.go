// Package store persists engine snapshots.
package store

import (
	"context"
	"errors"
)

// ErrNoSnapshot reports that nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Store saves and loads the latest snapshot blob.
type Store interface {
	Save(ctx context.Context, blob []byte) error
	Load(ctx context.Context) ([]byte, error)
	Close()
}
