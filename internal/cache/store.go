// Package cache implements the process-local ephemeral cache layer. It is
// optional relative to correctness: when no backend is available every
// operation degrades to a miss or no-op instead of failing the caller.
package cache

import (
	"context"
	"time"
)

// Store is the capability contract shared by the ephemeral cache backends.
// Entries are only removed by an explicit delete/overwrite or a Sweep; reads
// never cascade into deletes.
type Store interface {
	// Get returns the payload for key when the entry is still TTL-valid
	// (created_at + ttl > now). An expired or missing entry is a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set upserts the payload under key with the supplied TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete logically removes keys by overwriting them with an empty payload
	// and a near-zero TTL.
	Delete(ctx context.Context, keys ...string) error

	// Sweep physically removes entries written longer than olderThan ago and
	// returns the number removed.
	Sweep(ctx context.Context, olderThan time.Duration) (int64, error)
}

// deleteTTL is the near-zero TTL used for logical deletes; the entry becomes
// invalid on the next read and is purged by the following sweep.
const deleteTTL = time.Second

// Clear logically purges a store by sweeping everything older than a second.
func Clear(ctx context.Context, s Store) (int64, error) {
	return s.Sweep(ctx, time.Second)
}
