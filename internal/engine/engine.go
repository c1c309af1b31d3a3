package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tapeworks/futures-rollup/internal/classify"
	"github.com/tapeworks/futures-rollup/internal/frontmonth"
	"github.com/tapeworks/futures-rollup/internal/metrics"
	"github.com/tapeworks/futures-rollup/internal/model"
)

// Sink receives emitted rolling candles and persists them. Flush is called
// once per engine tick; FinalFlush once at shutdown, after the drain.
type Sink interface {
	Enqueue(model.RollingCandle)
	Flush(ctx context.Context) error
	FinalFlush(ctx context.Context) error
}

// Config holds engine settings.
type Config struct {
	WindowSeconds     int                // Rolling window width; also the warmup gate
	FrontMonthWindow  time.Duration      // Rolling volume window for contract selection
	MaxTradeAge       time.Duration      // Trades older than this are rejected
	LargeTradeDefault float64            // Baseline large-trade threshold
	LargeTradeSizes   map[string]float64 // Per-ticker overrides
	FlushInterval     time.Duration      // Sweep/flush cadence
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WindowSeconds:     60,
		FrontMonthWindow:  5 * time.Minute,
		MaxTradeAge:       3 * time.Minute,
		LargeTradeDefault: 10,
		FlushInterval:     time.Second,
	}
}

// TickerStatus is a point-in-time view of one ticker's state machine,
// exposed for health checks.
type TickerStatus struct {
	Ticker           string `json:"ticker"`
	Contract         string `json:"contract"`
	Warm             bool   `json:"warm"`
	SecondsCollected int    `json:"seconds_collected"`
}

// Engine is the rolling-window aggregation core. All state mutation happens
// on the single goroutine running Run; the only suspension point per tick is
// the sink's database write, and no state is touched while it is awaited.
type Engine struct {
	cfg    Config
	sel    *frontmonth.Selector
	sink   Sink
	met    *metrics.Metrics
	logger *slog.Logger

	// now is the processing clock; swapped in tests.
	now func() time.Time

	states map[string]*TickerRollingState

	// status is a copy refreshed once per tick so health checks never touch
	// live state.
	statusMu sync.RWMutex
	status   []TickerStatus
}

// New creates an Engine. The selector's contract switches are wired into the
// engine's metrics.
func New(cfg Config, sink Sink, met *metrics.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		cfg:    cfg,
		sink:   sink,
		met:    met,
		logger: logger,
		now:    time.Now,
		states: make(map[string]*TickerRollingState),
	}
	e.sel = frontmonth.New(cfg.FrontMonthWindow, logger)
	e.sel.OnSwitch = func(ticker, prev, next string) {
		met.FrontMonthSwitches.Inc()
	}
	return e
}

// SeedCvd primes tickers' running CVD from previously stored values so the
// CVD chain stays continuous across restarts.
func (e *Engine) SeedCvd(last map[string]float64) {
	for ticker, cvd := range last {
		st := e.state(ticker)
		st.RunningCvd = cvd
	}
	if len(last) > 0 {
		e.logger.Info("seeded cvd from storage", "tickers", len(last))
	}
}

// AcceptTrade ingests one trade. It returns false for trades that were
// rejected (late, non-front-month, spread symbol) and counted rather than
// aggregated.
func (e *Engine) AcceptTrade(t model.Trade) bool {
	now := e.now()
	if now.Sub(t.Time) > e.cfg.MaxTradeAge {
		e.met.TradesRejectedLate.Inc()
		return false
	}

	switch e.sel.Observe(t.Symbol, t.Ticker, t.Size, t.Time) {
	case frontmonth.RejectedSpread:
		e.met.TradesSpreadSymbol.Inc()
		return false
	case frontmonth.SkippedNonFront:
		e.met.TradesNonFront.Inc()
		return false
	}

	st := e.state(t.Ticker)
	bucket := model.BucketMS(t.Time)

	// A trade for an already-finalized second cannot be applied: seconds
	// finalize in open order and CVD is never recomputed retroactively.
	if (st.Cur != nil && bucket < st.CurBucketMS) || (st.Cur == nil && bucket <= st.newestRingMS()) {
		e.met.TradesRejectedLate.Inc()
		return false
	}

	side := classify.Aggressor(t.Price, t.BidPrice, t.AskPrice, t.Side)
	if side == model.SideUnknown {
		e.met.TradesUnknownSide.Inc()
	}

	if st.Cur != nil && bucket != st.CurBucketMS {
		e.finalizeSecond(t.Ticker, st)
	}

	if st.Cur == nil {
		st.Cur = newCandleState(t, side, st.RunningCvd, e.largeThreshold(t.Ticker))
		st.CurBucketMS = bucket
	} else {
		st.Cur.apply(t, side, e.largeThreshold(t.Ticker))
	}

	e.met.TradesProcessed.Inc()
	return true
}

// SweepStale finalizes every in-progress second whose bucket has fallen
// behind the wall clock, so briefly silent tickers still complete their
// seconds. Invoked from the periodic tick.
func (e *Engine) SweepStale(now time.Time) {
	nowBucket := model.BucketMS(now)
	for ticker, st := range e.states {
		if st.Cur != nil && st.CurBucketMS < nowBucket {
			e.finalizeSecond(ticker, st)
		}
	}
}

// DrainAll forces the boundary transition for every in-progress second
// regardless of staleness. Used at shutdown.
func (e *Engine) DrainAll() {
	for ticker, st := range e.states {
		if st.Cur != nil {
			e.finalizeSecond(ticker, st)
		}
	}
}

// Status returns the latest per-ticker snapshot for health checks.
func (e *Engine) Status() []TickerStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// Run is the single worker loop: it consumes trades and drives the periodic
// sweep/flush until ctx is cancelled, then drains and performs the final
// flush.
func (e *Engine) Run(ctx context.Context, trades <-chan model.Trade) error {
	ticker := time.NewTicker(e.cfg.FlushInterval)
	defer ticker.Stop()

	e.logger.Info("engine started",
		"window_seconds", e.cfg.WindowSeconds,
		"flush_interval", e.cfg.FlushInterval,
	)

	for {
		select {
		case <-ctx.Done():
			return e.shutdown()

		case t, ok := <-trades:
			if !ok {
				return e.shutdown()
			}
			e.AcceptTrade(t)

		case <-ticker.C:
			e.SweepStale(e.now())
			e.refreshStatus()
			if err := e.sink.Flush(ctx); err != nil {
				e.logger.Error("flush failed", "error", err)
			}
		}
	}
}

// shutdown drains every open second and flushes everything still pending.
func (e *Engine) shutdown() error {
	e.logger.Info("engine draining", "tickers", len(e.states))
	e.DrainAll()
	e.refreshStatus()

	flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.sink.FinalFlush(flushCtx); err != nil {
		e.logger.Error("final flush incomplete", "error", err)
		return err
	}
	e.logger.Info("engine stopped")
	return nil
}

// finalizeSecond freezes the ticker's in-progress second, advances the CVD
// chain, slides the window, and emits a rolling candle if warm. This is the
// single boundary-transition implementation, invoked both on new-second
// detection and from the stale sweep.
func (e *Engine) finalizeSecond(ticker string, st *TickerRollingState) {
	sum := st.Cur.freeze(ticker, st.CurBucketMS)
	st.Cur = nil
	st.RunningCvd = sum.CvdClose

	st.Ring = append(st.Ring, sum)
	st.SecondsCollected++
	e.met.SecondsFinalized.Inc()

	// Slide the window: keep seconds within the trailing window ending at
	// this summary.
	cutoff := sum.TimeMS - int64(e.cfg.WindowSeconds-1)*1000
	prevLen := len(st.Ring) - 1
	pruned := 0
	for pruned < len(st.Ring)-1 && st.Ring[pruned].TimeMS < cutoff {
		pruned++
	}
	if pruned > 0 {
		st.Ring = append(st.Ring[:0], st.Ring[pruned:]...)
	}

	// A gap wide enough to drop every previously buffered second resets
	// warmup; nothing is emitted this tick.
	if prevLen > 0 && pruned == prevLen {
		if st.Warm {
			e.met.WarmTickers.Dec()
		}
		st.Warm = false
		st.SecondsCollected = 1
		e.met.GapResets.Inc()
		e.logger.Warn("window gap, warmup reset", "ticker", ticker, "second", sum.TimeISO)
		return
	}

	if !st.Warm {
		if st.SecondsCollected < e.cfg.WindowSeconds {
			return // Warming: collect silently
		}
		st.Warm = true
		e.met.WarmTickers.Inc()
		e.logger.Info("ticker warm", "ticker", ticker, "second", sum.TimeISO)
	}

	e.sink.Enqueue(fold(st.Ring))
	e.met.CandlesEmitted.Inc()
}

// state returns (creating if needed) the rolling state for a ticker.
func (e *Engine) state(ticker string) *TickerRollingState {
	st := e.states[ticker]
	if st == nil {
		st = &TickerRollingState{}
		e.states[ticker] = st
	}
	return st
}

// largeThreshold returns the ticker's large-trade size threshold.
func (e *Engine) largeThreshold(ticker string) float64 {
	if v, ok := e.cfg.LargeTradeSizes[ticker]; ok {
		return v
	}
	return e.cfg.LargeTradeDefault
}

// refreshStatus rebuilds the health-check snapshot.
func (e *Engine) refreshStatus() {
	status := make([]TickerStatus, 0, len(e.states))
	for ticker, st := range e.states {
		contract, _ := e.sel.Active(ticker)
		status = append(status, TickerStatus{
			Ticker:           ticker,
			Contract:         contract,
			Warm:             st.Warm,
			SecondsCollected: st.SecondsCollected,
		})
	}
	e.statusMu.Lock()
	e.status = status
	e.statusMu.Unlock()
}
