package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStore is the preferred ephemeral backend: an embedded SQLite database
// that survives process restarts and serialises access through the driver.
type SQLiteStore struct {
	db  *gorm.DB
	now func() time.Time
}

// SQLiteOption customises a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock overrides the clock, primarily for TTL tests.
func WithSQLiteClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSQLiteStore opens (or creates) the cache database at path. An empty or
// ":memory:" path yields a shared in-memory database.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("cache: create dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL", filepath.ToSlash(path))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Get returns the payload when the entry is still TTL-valid. Expired entries
// are left in place for the cleanup sweep.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var entry Entry
	err := s.db.WithContext(ctx).Take(&entry, "fingerprint = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !entry.validAt(s.now()) || len(entry.Payload) == 0 {
		return nil, false, nil
	}

	return entry.Payload, true, nil
}

// Set upserts the payload under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	entry := Entry{
		Fingerprint: key,
		Payload:     payload,
		TTLSeconds:  int64(ttl / time.Second),
		CreatedAt:   s.now(),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fingerprint"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "ttl_seconds", "created_at"}),
		}).Create(&entry).Error
}

// Delete overwrites keys with an empty payload and a near-zero TTL.
func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.Set(ctx, key, nil, deleteTTL); err != nil {
			return err
		}
	}
	return nil
}

// Sweep removes entries written longer than olderThan ago.
func (s *SQLiteStore) Sweep(ctx context.Context, olderThan time.Duration) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := s.now().Add(-olderThan)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&Entry{})
	return result.RowsAffected, result.Error
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
