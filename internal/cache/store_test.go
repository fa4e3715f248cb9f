package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a controllable time source shared by the contract tests.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// The full Store contract runs against both backend implementations.
func TestStoreContract(t *testing.T) {
	backends := map[string]func(t *testing.T, c *clock) Store{
		"sqlite": func(t *testing.T, c *clock) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.sqlite"), WithSQLiteClock(c.Now))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
		"memory": func(t *testing.T, c *clock) Store {
			return NewMemoryStore(WithMemoryClock(c.Now))
		},
	}

	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("miss on absent key", func(t *testing.T) {
				store := factory(t, newClock())

				_, ok, err := store.Get(context.Background(), "absent")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("set then get", func(t *testing.T) {
				store := factory(t, newClock())
				ctx := context.Background()

				require.NoError(t, store.Set(ctx, "key", []byte(`{"a":1}`), time.Hour))

				payload, ok, err := store.Get(ctx, "key")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, []byte(`{"a":1}`), payload)
			})

			t.Run("overwrite wins", func(t *testing.T) {
				store := factory(t, newClock())
				ctx := context.Background()

				require.NoError(t, store.Set(ctx, "key", []byte("old"), time.Hour))
				require.NoError(t, store.Set(ctx, "key", []byte("new"), time.Hour))

				payload, ok, err := store.Get(ctx, "key")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, []byte("new"), payload)
			})

			t.Run("ttl boundary", func(t *testing.T) {
				c := newClock()
				store := factory(t, c)
				ctx := context.Background()
				const ttl = 60 * time.Second

				require.NoError(t, store.Set(ctx, "key", []byte("v"), ttl))

				c.Advance(ttl - time.Second)
				_, ok, err := store.Get(ctx, "key")
				require.NoError(t, err)
				assert.True(t, ok, "entry should be a hit one second before expiry")

				c.Advance(2 * time.Second)
				_, ok, err = store.Get(ctx, "key")
				require.NoError(t, err)
				assert.False(t, ok, "entry should be a miss one second after expiry")
			})

			t.Run("delete is a logical overwrite", func(t *testing.T) {
				c := newClock()
				store := factory(t, c)
				ctx := context.Background()

				require.NoError(t, store.Set(ctx, "key", []byte("v"), time.Hour))
				require.NoError(t, store.Delete(ctx, "key"))

				c.Advance(2 * time.Second)
				_, ok, err := store.Get(ctx, "key")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("sweep removes only old entries", func(t *testing.T) {
				c := newClock()
				store := factory(t, c)
				ctx := context.Background()

				require.NoError(t, store.Set(ctx, "old", []byte("v"), time.Hour))
				c.Advance(48 * time.Hour)
				require.NoError(t, store.Set(ctx, "fresh", []byte("v"), time.Hour))

				removed, err := store.Sweep(ctx, 24*time.Hour)
				require.NoError(t, err)
				assert.Equal(t, int64(1), removed)

				_, ok, err := store.Get(ctx, "fresh")
				require.NoError(t, err)
				assert.True(t, ok)
			})
		})
	}
}

func TestNoopStoreAlwaysMisses(t *testing.T) {
	store := NewNoopStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("v"), time.Hour))

	_, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
