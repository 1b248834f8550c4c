package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or has expired.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable key-value store in which every entry carries its own
// expiry. Implementations enforce the expiry themselves: a value returned by
// Get is always fresh.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Close() error
}

// Purger is implemented by stores that can sweep expired entries eagerly.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}
