// Package storage declares persistence for campaign snapshots.
//
// The store only sees opaque snapshot bytes; encoding belongs to the
// snapshot package.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound reports that no snapshot is stored under a key. It is the
// normal "no save yet" condition.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore keeps snapshot bytes by key.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
