// Package durable wraps the remote record store (Supabase PostgREST) behind
// bounded-batch query and upsert operations.
package durable

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	apperrors "github.com/dealhound/dealhound/pkg/errors"
	"github.com/dealhound/dealhound/pkg/logger"
)

const (
	// queryBatchSize bounds the id-set per lookup so the encoded filter stays
	// under the store's query-string limits.
	queryBatchSize = 100

	// upsertBatchSize bounds write payloads.
	upsertBatchSize = 50
)

// Client talks to the durable cache store. A client constructed without
// credentials stays usable; every operation then reports ErrNotConfigured so
// callers can treat the durable cache as simply unavailable.
type Client struct {
	sb  *supabase.Client
	log *zap.Logger
}

// NewClient builds a store client from the project URL and service-role key.
// Missing credentials do not fail construction.
func NewClient(url, serviceKey string) (*Client, error) {
	c := &Client{log: logger.WithModule("durable")}

	if url == "" || serviceKey == "" {
		return c, nil
	}

	sb, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("durable: new client: %w", err)
	}
	c.sb = sb
	return c, nil
}

// Configured reports whether store credentials were supplied.
func (c *Client) Configured() bool { return c != nil && c.sb != nil }

func (c *Client) guard() error {
	if !c.Configured() {
		return apperrors.ErrNotConfigured
	}
	return nil
}

// QueryByIDs fetches records whose article_id is in ids. An empty id set
// returns immediately without issuing a request. Large sets are split into
// sub-batches; a failing sub-batch is logged and skipped so its candidates
// fall through to re-classification rather than being dropped.
func (c *Client) QueryByIDs(ctx context.Context, ids []string) ([]Record, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var records []Record
	for _, batch := range chunk(ids, queryBatchSize) {
		var page []Record
		if _, err := c.sb.From(Table).
			Select("*", "", false).
			In("article_id", batch).
			ExecuteTo(&page); err != nil {
			c.log.Warn("lookup sub-batch failed; treating candidates as uncached",
				zap.Int("batch_size", len(batch)), zap.Error(err))
			continue
		}
		records = append(records, page...)
	}

	return records, nil
}

// QueryRecent returns up to limit records written within the last days days,
// newest first.
func (c *Client) QueryRecent(ctx context.Context, days, limit int) ([]Record, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var records []Record
	if _, err := c.sb.From(Table).
		Select("*", "", false).
		Gte("created_at", cutoff.Format(time.RFC3339)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&records); err != nil {
		return nil, fmt.Errorf("durable: query recent: %w", err)
	}

	return records, nil
}

// UpsertRecords writes records in bounded batches, keyed on article_id. A
// failed batch is retried record-by-record so one bad record cannot drop the
// whole batch. Returns the count actually persisted.
func (c *Client) UpsertRecords(ctx context.Context, records []Record) (int, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}

	persisted := 0
	for _, batch := range chunk(records, upsertBatchSize) {
		if _, _, err := c.sb.From(Table).
			Upsert(batch, "article_id", "minimal", "").
			Execute(); err == nil {
			persisted += len(batch)
			continue
		}

		// Batch write failed; retry one record at a time.
		for _, record := range batch {
			if _, _, err := c.sb.From(Table).
				Upsert([]Record{record}, "article_id", "minimal", "").
				Execute(); err != nil {
				c.log.Warn("record upsert failed",
					zap.String("article_id", record.ArticleID), zap.Error(err))
				continue
			}
			persisted++
		}
	}

	return persisted, nil
}

// DeleteOlderThan removes records written before the cutoff.
func (c *Client) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	if err := c.guard(); err != nil {
		return err
	}

	if _, _, err := c.sb.From(Table).
		Delete("minimal", "").
		Lt("created_at", cutoff.UTC().Format(time.RFC3339)).
		Execute(); err != nil {
		return fmt.Errorf("durable: delete older than: %w", err)
	}

	return nil
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
