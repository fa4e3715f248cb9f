package services

import (
	"context"

	"github.com/dealhound/dealhound/internal/durable"
)

// DurableStore is the slice of the durable client the services depend on.
type DurableStore interface {
	QueryByIDs(ctx context.Context, ids []string) ([]durable.Record, error)
	QueryRecent(ctx context.Context, days, limit int) ([]durable.Record, error)
	UpsertRecords(ctx context.Context, records []durable.Record) (int, error)
}
