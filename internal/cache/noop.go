package cache

import (
	"context"
	"time"
)

// NoopStore serves when caching is disabled or no backend could be opened.
// Every read is a miss and every write succeeds without storing anything, so
// the cache only ever affects latency, never correctness.
type NoopStore struct{}

// NewNoopStore returns the shared no-op backend.
func NewNoopStore() NoopStore { return NoopStore{} }

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopStore) Delete(context.Context, ...string) error { return nil }

func (NoopStore) Sweep(context.Context, time.Duration) (int64, error) { return 0, nil }
