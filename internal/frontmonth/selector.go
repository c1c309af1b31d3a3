package frontmonth

import (
	"log/slog"
	"strings"
	"time"
)

// Result classifies what the selector decided for one observed trade.
type Result int

const (
	// Accepted means the trade printed on the ticker's active contract.
	Accepted Result = iota
	// SkippedNonFront means the ticker is decided and the trade's contract
	// is not the active one.
	SkippedNonFront
	// RejectedSpread means the symbol is a multi-leg spread and can never
	// hold front-month status.
	RejectedSpread
)

// SwitchFunc is invoked when a ticker's active contract changes.
type SwitchFunc func(ticker, prev, next string)

// Selector tracks rolling traded volume per specific contract and keeps each
// parent ticker pointed at whichever contract currently carries the most.
// Re-pointing is continuous, not an explicit rollover event, but every switch
// is logged and reported through OnSwitch.
type Selector struct {
	window time.Duration
	logger *slog.Logger

	// OnSwitch, if set, observes active-contract changes.
	OnSwitch SwitchFunc

	volumes map[string]*rollingVolume // specific contract -> volume window
	tickers map[string]*tickerEntry   // parent ticker -> selection state
}

// tickerEntry holds the contract universe and current choice for one ticker.
type tickerEntry struct {
	active    string
	contracts map[string]struct{}
}

// rollingVolume is a per-minute bucketed volume sum over the selector window.
type rollingVolume struct {
	buckets map[int64]float64 // minute bucket (unix seconds) -> volume
}

// New creates a Selector with the given rolling-volume window (typically 5m).
func New(window time.Duration, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		window:  window,
		logger:  logger,
		volumes: make(map[string]*rollingVolume),
		tickers: make(map[string]*tickerEntry),
	}
}

// Observe records a trade's volume against its contract and decides whether
// the trade belongs to the ticker's continuous series. The observed volume
// always counts toward the contract's rolling window, even when the trade is
// skipped, so a rising contract can take over.
func (s *Selector) Observe(symbol, ticker string, size float64, at time.Time) Result {
	if IsSpread(symbol) {
		return RejectedSpread
	}

	rv := s.volumes[symbol]
	if rv == nil {
		rv = &rollingVolume{buckets: make(map[int64]float64)}
		s.volumes[symbol] = rv
	}
	rv.add(size, at)

	entry := s.tickers[ticker]
	if entry == nil {
		entry = &tickerEntry{contracts: make(map[string]struct{})}
		s.tickers[ticker] = entry
	}
	entry.contracts[symbol] = struct{}{}

	best := s.bestContract(entry, at)
	if best != entry.active {
		prev := entry.active
		entry.active = best
		s.logger.Info("front-month contract switched",
			"ticker", ticker,
			"prev", prev,
			"next", best,
		)
		if s.OnSwitch != nil {
			s.OnSwitch(ticker, prev, best)
		}
	}

	if symbol != entry.active {
		return SkippedNonFront
	}
	return Accepted
}

// Active returns the active contract for a ticker, if decided.
func (s *Selector) Active(ticker string) (string, bool) {
	entry := s.tickers[ticker]
	if entry == nil || entry.active == "" {
		return "", false
	}
	return entry.active, true
}

// IsSpread reports whether a symbol is a multi-leg/spread instrument.
// CME-style calendar spreads print as "ESZ5-ESH6"; some vendors use ":".
func IsSpread(symbol string) bool {
	return strings.ContainsAny(symbol, "-:")
}

// bestContract returns the contract with the highest rolling volume for the
// entry, pruning each contract's window as of at. Ties keep the incumbent.
func (s *Selector) bestContract(entry *tickerEntry, at time.Time) string {
	best := entry.active
	bestVol := 0.0
	if best != "" {
		if rv := s.volumes[best]; rv != nil {
			bestVol = rv.sum(at, s.window)
		}
	}

	for symbol := range entry.contracts {
		if symbol == entry.active {
			continue
		}
		rv := s.volumes[symbol]
		if rv == nil {
			continue
		}
		if vol := rv.sum(at, s.window); vol > bestVol {
			best = symbol
			bestVol = vol
		}
	}
	return best
}

// add accumulates volume into the minute bucket containing at.
func (rv *rollingVolume) add(size float64, at time.Time) {
	rv.buckets[at.Truncate(time.Minute).Unix()] += size
}

// sum totals the buckets within the window ending at at, evicting the rest.
func (rv *rollingVolume) sum(at time.Time, window time.Duration) float64 {
	cutoff := at.Add(-window).Truncate(time.Minute).Unix()
	total := 0.0
	for bucket, vol := range rv.buckets {
		if bucket < cutoff {
			delete(rv.buckets, bucket)
			continue
		}
		total += vol
	}
	return total
}
