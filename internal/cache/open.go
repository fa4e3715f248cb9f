package cache

import (
	"go.uber.org/zap"

	"github.com/dealhound/dealhound/pkg/logger"
)

// Config selects and configures the ephemeral backend.
type Config struct {
	Enabled bool
	Path    string
}

// Open selects the ephemeral backend: the embedded SQLite engine when it can
// be initialised, the in-memory store otherwise. Disabled caching yields the
// no-op store. Open never fails; a broken backend only costs latency.
func Open(cfg Config) Store {
	log := logger.WithModule("cache")

	if !cfg.Enabled {
		log.Info("ephemeral cache disabled")
		return NewNoopStore()
	}

	store, err := NewSQLiteStore(cfg.Path)
	if err != nil {
		log.Warn("sqlite cache unavailable; falling back to in-memory store", zap.Error(err))
		return NewMemoryStore()
	}

	log.Info("sqlite cache ready", zap.String("path", cfg.Path))
	return store
}
