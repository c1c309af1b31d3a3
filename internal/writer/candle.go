package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tapeworks/futures-rollup/internal/config"
	"github.com/tapeworks/futures-rollup/internal/metrics"
	"github.com/tapeworks/futures-rollup/internal/model"
	"github.com/tapeworks/futures-rollup/internal/queue"
	"github.com/tapeworks/futures-rollup/internal/storage"
)

const (
	finalFlushAttempts = 3
	finalFlushBackoff  = 250 * time.Millisecond
)

// CandleWriter buffers emitted rolling candles and persists them in batches.
// It is the engine's sink: Enqueue is called from the aggregation loop and
// must never block, so candles wait in a bounded queue that sheds its oldest
// entries when storage falls too far behind.
type CandleWriter struct {
	cfg     config.WriterConfig
	store   storage.CandleStore
	pending *queue.Bounded[model.RollingCandle]
	met     *metrics.Metrics
	logger  *slog.Logger
}

// NewCandleWriter creates a writer persisting through store.
func NewCandleWriter(cfg config.WriterConfig, store storage.CandleStore, met *metrics.Metrics, logger *slog.Logger) *CandleWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CandleWriter{
		cfg:     cfg,
		store:   store,
		pending: queue.NewBounded[model.RollingCandle](cfg.MaxPending),
		met:     met,
		logger:  logger,
	}
}

// Enqueue accepts one candle for persistence. Never blocks; if the queue is
// full the oldest pending candle is dropped to make room.
func (w *CandleWriter) Enqueue(c model.RollingCandle) {
	if dropped := w.pending.Push(c); dropped > 0 {
		w.met.CandlesDropped.Add(float64(dropped))
		w.logger.Warn("pending queue full, dropped oldest candle",
			"ticker", c.Ticker,
			"capacity", w.cfg.MaxPending,
		)
	}
	w.met.QueueDepth.Set(float64(w.pending.Len()))
}

// Flush drains the queue in batches and upserts each one. On a storage
// error the failed batch is returned to the front of the queue and draining
// stops until the next flush, preserving per-ticker write order.
func (w *CandleWriter) Flush(ctx context.Context) error {
	defer w.met.QueueDepth.Set(float64(w.pending.Len()))

	for {
		batch := w.pending.Drain(w.cfg.BatchSize)
		if len(batch) == 0 {
			return nil
		}

		if err := w.writeBatch(ctx, batch); err != nil {
			w.requeue(batch)
			return fmt.Errorf("flush candles: %w", err)
		}
	}
}

// FinalFlush empties the queue on shutdown, retrying each batch a few times
// before giving it up as lost.
func (w *CandleWriter) FinalFlush(ctx context.Context) error {
	defer w.met.QueueDepth.Set(float64(w.pending.Len()))

	var lost int
	for {
		batch := w.pending.Drain(w.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}

		var err error
		for attempt := 1; attempt <= finalFlushAttempts; attempt++ {
			if err = w.writeBatch(ctx, batch); err == nil {
				break
			}
			w.logger.Warn("final flush attempt failed",
				"attempt", attempt,
				"count", len(batch),
				"error", err,
			)
			if attempt < finalFlushAttempts {
				select {
				case <-ctx.Done():
					err = ctx.Err()
					attempt = finalFlushAttempts
				case <-time.After(finalFlushBackoff):
				}
			}
		}
		if err != nil {
			lost += len(batch)
			w.met.CandlesDropped.Add(float64(len(batch)))
			w.logger.Error("abandoning unwritable batch", "count", len(batch), "error", err)
		}
	}

	if lost > 0 {
		return fmt.Errorf("final flush lost %d candles", lost)
	}
	return nil
}

// Depth reports the number of candles waiting to be written.
func (w *CandleWriter) Depth() int {
	return w.pending.Len()
}

// Stats returns queue counters for the health endpoint.
func (w *CandleWriter) Stats() queue.Stats {
	return w.pending.Stats()
}

func (w *CandleWriter) writeBatch(ctx context.Context, batch []model.RollingCandle) error {
	// Rows land in key order so concurrent upserts of overlapping batches
	// cannot deadlock. The sort works on a copy: on failure the original
	// queue order is what gets requeued.
	rows := make([]model.RollingCandle, len(batch))
	copy(rows, batch)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Ticker != rows[j].Ticker {
			return rows[i].Ticker < rows[j].Ticker
		}
		return rows[i].TimeMS < rows[j].TimeMS
	})

	start := time.Now()
	if err := w.store.UpsertRollingCandles(ctx, rows); err != nil {
		w.met.WriteErrors.Inc()
		w.logger.Error("candle batch write failed", "count", len(rows), "error", err)
		return err
	}

	w.met.CandlesWritten.Add(float64(len(rows)))
	w.met.BatchFlushes.Inc()
	w.logger.Debug("flushed candles", "count", len(rows), "duration", time.Since(start))
	return nil
}

func (w *CandleWriter) requeue(batch []model.RollingCandle) {
	if dropped := w.pending.PushFront(batch); dropped > 0 {
		w.met.CandlesDropped.Add(float64(dropped))
		w.logger.Warn("requeue overflow, dropped candles", "count", dropped)
	}
}
