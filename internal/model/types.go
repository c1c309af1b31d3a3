package model

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Trade input
// -----------------------------------------------------------------------------

// Side is the aggressor side of a trade.
type Side int8

const (
	SideUnknown Side = iota // No explicit tag and no usable quote context
	SideBuy                 // Aggressor lifted the offer
	SideSell                // Aggressor hit the bid
)

// String returns the side as a lowercase label.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Trade is a single executed trade from the feed. Owned transiently by the
// ingestion path; the engine copies what it needs and never retains it.
type Trade struct {
	TradeID    uuid.UUID // Feed-assigned trade ID
	Symbol     string    // Specific contract (e.g., "ESZ5")
	Ticker     string    // Parent ticker (e.g., "ES")
	Time       time.Time // Exchange event time
	ReceivedAt time.Time // Local receive time
	Price      float64   // Trade price
	Size       float64   // Trade size (contracts)
	Side       Side      // Explicit aggressor tag; SideUnknown if absent
	BidPrice   float64   // Best bid at trade time (0 if absent)
	AskPrice   float64   // Best ask at trade time (0 if absent)
	BidSize    float64   // Size at best bid (0 if absent)
	AskSize    float64   // Size at best ask (0 if absent)
}

// -----------------------------------------------------------------------------
// Aggregation output
// -----------------------------------------------------------------------------

// SecondSummary is a frozen one-second aggregate for a ticker. Created exactly
// once when the second completes, appended to the ticker's ring buffer, and
// pruned as the window slides.
type SecondSummary struct {
	Ticker  string // Parent ticker
	Symbol  string // Contract the last trade of the second printed on
	TimeMS  int64  // Second bucket key (epoch millis)
	TimeISO string // Same instant, ISO-8601 UTC

	// Price OHLC
	Open  float64
	High  float64
	Low   float64
	Close float64

	// Volume splits
	Volume        float64 // Total traded volume
	AskVolume     float64 // Aggressor-buy volume
	BidVolume     float64 // Aggressor-sell volume
	UnknownVolume float64 // Volume with unclassifiable side
	VolumeDelta   float64 // AskVolume - BidVolume for this second

	// Raw sums for downstream derivation (book imbalance, spread, VWAP)
	BidDepthSum    float64 // Summed best-bid size across trades
	AskDepthSum    float64 // Summed best-ask size across trades
	SpreadSum      float64 // Summed (ask - bid) across trades
	MidSum         float64 // Summed midpoint across trades
	PriceVolumeSum float64 // Summed price*size across trades

	// Trade counters
	TradeCount       int64
	MaxTradeSize     float64
	LargeTradeCount  int64
	LargeTradeVolume float64

	// CVD OHLC within the second, against the second's starting CVD
	CvdOpen  float64
	CvdHigh  float64
	CvdLow   float64
	CvdClose float64
}

// RollingCandle is a trailing 60-second aggregate emitted once per completed
// second for a warm ticker, keyed by (Ticker, TimeMS). Produced by folding the
// ring buffer of SecondSummary; queued for persistence.
type RollingCandle struct {
	Ticker  string // Parent ticker
	Symbol  string // Newest summary's contract (captures mid-window rolls)
	TimeMS  int64  // Newest summary's bucket key (epoch millis)
	TimeISO string // Same instant, ISO-8601 UTC

	Open  float64 // Oldest summary's open
	High  float64 // Max across window
	Low   float64 // Min across window
	Close float64 // Newest summary's close

	Volume        float64
	AskVolume     float64
	BidVolume     float64
	UnknownVolume float64
	VolumeDelta   float64

	BidDepthSum    float64
	AskDepthSum    float64
	SpreadSum      float64
	MidSum         float64
	PriceVolumeSum float64

	TradeCount       int64
	MaxTradeSize     float64
	LargeTradeCount  int64
	LargeTradeVolume float64

	CvdOpen  float64 // Oldest summary's CVD open
	CvdHigh  float64 // Max across window
	CvdLow   float64 // Min across window
	CvdClose float64 // Newest summary's CVD close
}

// -----------------------------------------------------------------------------
// Time helpers
// -----------------------------------------------------------------------------

// BucketMS truncates an event time to its second bucket key (epoch millis).
func BucketMS(t time.Time) int64 {
	return t.Truncate(time.Second).UnixMilli()
}

// ISOTime formats a bucket key as ISO-8601 UTC.
func ISOTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
