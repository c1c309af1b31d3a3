// Package storage persists rolling candles and answers the startup CVD query.
package storage

import (
	"context"

	"github.com/tapeworks/futures-rollup/internal/model"
)

// CandleStore is the storage collaborator for the aggregation engine.
//
// UpsertRollingCandles must be idempotent and monotonic: a row is applied
// only when its volume is >= the stored volume for the same (ticker, time)
// key, and CVD high/low are merged as running max/min. Re-delivery of an
// already-written candle is therefore a safe no-op.
type CandleStore interface {
	// EnsureSchema creates the candle table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// UpsertRollingCandles writes a batch of candles. The batch is applied
	// in (ticker, time) order; on error no assumption is made about which
	// rows landed, and the caller may safely retry the whole batch.
	UpsertRollingCandles(ctx context.Context, candles []model.RollingCandle) error

	// LoadLastCvd returns the most recent closing CVD per ticker.
	LoadLastCvd(ctx context.Context) (map[string]float64, error)
}
