package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealhound/dealhound/internal/cache"
)

func TestCleanupRunSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := cache.NewMemoryStore(cache.WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "old", []byte("v"), time.Hour))
	now = now.Add(48 * time.Hour)
	require.NoError(t, store.Set(ctx, "fresh", []byte("v"), time.Hour))

	job := NewCleanupJob(store, CleanupConfig{Expiration: 24 * time.Hour})

	removed, err := job.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestCleanupRunOverlapGuard(t *testing.T) {
	store := &blockingStore{release: make(chan struct{}), entered: make(chan struct{})}
	job := NewCleanupJob(store, CleanupConfig{Expiration: time.Hour})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := job.Run(context.Background())
		assert.NoError(t, err)
	}()

	<-store.entered

	removed, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed, "overlapping sweep must be a no-op")

	close(store.release)
	wg.Wait()

	assert.Equal(t, 1, store.sweeps)
}

// blockingStore parks the first Sweep call until released.
type blockingStore struct {
	cache.NoopStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	sweeps  int
}

func (s *blockingStore) Sweep(context.Context, time.Duration) (int64, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	s.sweeps++
	return 0, nil
}
