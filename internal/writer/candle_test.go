package writer

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapeworks/futures-rollup/internal/config"
	"github.com/tapeworks/futures-rollup/internal/metrics"
	"github.com/tapeworks/futures-rollup/internal/model"
)

// fakeStore records upserted batches and can fail the first failN calls.
type fakeStore struct {
	batches [][]model.RollingCandle
	failN   int
	calls   int
}

func (s *fakeStore) EnsureSchema(ctx context.Context) error { return nil }

func (s *fakeStore) UpsertRollingCandles(ctx context.Context, candles []model.RollingCandle) error {
	s.calls++
	if s.calls <= s.failN {
		return errors.New("connection refused")
	}
	cp := make([]model.RollingCandle, len(candles))
	copy(cp, candles)
	s.batches = append(s.batches, cp)
	return nil
}

func (s *fakeStore) LoadLastCvd(ctx context.Context) (map[string]float64, error) {
	return nil, nil
}

func newTestWriter(store *fakeStore, batchSize, maxPending int) *CandleWriter {
	cfg := config.WriterConfig{BatchSize: batchSize, MaxPending: maxPending}
	return NewCandleWriter(cfg, store, metrics.New(prometheus.NewRegistry()), nil)
}

func candle(ticker string, ms int64) model.RollingCandle {
	return model.RollingCandle{Ticker: ticker, TimeMS: ms, Volume: 1}
}

func TestCandleWriter_FlushBatches(t *testing.T) {
	store := &fakeStore{}
	w := newTestWriter(store, 2, 100)

	for i := int64(0); i < 5; i++ {
		w.Enqueue(candle("ES", 1000*i))
	}

	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(store.batches) != 3 {
		t.Fatalf("wrote %d batches, want 3 (2+2+1)", len(store.batches))
	}
	if len(store.batches[0]) != 2 || len(store.batches[2]) != 1 {
		t.Errorf("batch sizes = %d,%d,%d", len(store.batches[0]), len(store.batches[1]), len(store.batches[2]))
	}
	if w.Depth() != 0 {
		t.Errorf("Depth = %d after flush, want 0", w.Depth())
	}
}

func TestCandleWriter_BatchSortedByKey(t *testing.T) {
	store := &fakeStore{}
	w := newTestWriter(store, 10, 100)

	w.Enqueue(candle("NQ", 2000))
	w.Enqueue(candle("ES", 3000))
	w.Enqueue(candle("ES", 1000))

	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := store.batches[0]
	want := []struct {
		ticker string
		ms     int64
	}{{"ES", 1000}, {"ES", 3000}, {"NQ", 2000}}
	for i, row := range want {
		if got[i].Ticker != row.ticker || got[i].TimeMS != row.ms {
			t.Errorf("row %d = %s/%d, want %s/%d", i, got[i].Ticker, got[i].TimeMS, row.ticker, row.ms)
		}
	}
}

func TestCandleWriter_FailureRequeuesInOrder(t *testing.T) {
	store := &fakeStore{failN: 1}
	w := newTestWriter(store, 2, 100)

	for i := int64(0); i < 3; i++ {
		w.Enqueue(candle("ES", 1000*i))
	}

	if err := w.Flush(context.Background()); err == nil {
		t.Fatal("Flush succeeded, want error from first batch")
	}
	if len(store.batches) != 0 {
		t.Fatalf("wrote %d batches during failure, want 0", len(store.batches))
	}
	if w.Depth() != 3 {
		t.Fatalf("Depth = %d after failed flush, want 3 (batch requeued)", w.Depth())
	}

	// Next flush sees the same candles in the same order.
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("retry Flush: %v", err)
	}
	if len(store.batches) != 2 {
		t.Fatalf("wrote %d batches on retry, want 2", len(store.batches))
	}
	if store.batches[0][0].TimeMS != 0 || store.batches[0][1].TimeMS != 1000 {
		t.Errorf("first retried batch = %d,%d, want 0,1000",
			store.batches[0][0].TimeMS, store.batches[0][1].TimeMS)
	}
}

func TestCandleWriter_DropsOldestWhenFull(t *testing.T) {
	store := &fakeStore{}
	w := newTestWriter(store, 10, 2)

	w.Enqueue(candle("ES", 1000))
	w.Enqueue(candle("ES", 2000))
	w.Enqueue(candle("ES", 3000)) // evicts 1000

	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got := store.batches[0]
	if len(got) != 2 || got[0].TimeMS != 2000 || got[1].TimeMS != 3000 {
		t.Errorf("surviving candles = %v, want buckets 2000 and 3000", got)
	}
}

func TestCandleWriter_FinalFlushRetries(t *testing.T) {
	store := &fakeStore{failN: 2}
	w := newTestWriter(store, 10, 100)

	w.Enqueue(candle("ES", 1000))
	if err := w.FinalFlush(context.Background()); err != nil {
		t.Fatalf("FinalFlush: %v", err)
	}
	if store.calls != 3 {
		t.Errorf("store calls = %d, want 3 (two failures then success)", store.calls)
	}
	if len(store.batches) != 1 {
		t.Errorf("wrote %d batches, want 1", len(store.batches))
	}
}

func TestCandleWriter_FinalFlushGivesUp(t *testing.T) {
	store := &fakeStore{failN: 1000}
	w := newTestWriter(store, 10, 100)

	w.Enqueue(candle("ES", 1000))
	err := w.FinalFlush(context.Background())
	if err == nil {
		t.Fatal("FinalFlush succeeded, want lost-candles error")
	}
	if store.calls != finalFlushAttempts {
		t.Errorf("store calls = %d, want %d", store.calls, finalFlushAttempts)
	}
	if w.Depth() != 0 {
		t.Errorf("Depth = %d, want 0 (lost batch not requeued)", w.Depth())
	}
}
