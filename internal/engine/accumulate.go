package engine

import (
	"github.com/tapeworks/futures-rollup/internal/model"
)

// CandleState is the in-progress aggregate for a ticker's current second.
// It is mutated in place by every accepted trade and frozen into an immutable
// SecondSummary when the second completes.
type CandleState struct {
	Symbol string // Latest contract symbol seen this second

	Open  float64
	High  float64
	Low   float64
	Close float64

	Volume        float64
	AskVolume     float64
	BidVolume     float64
	UnknownVolume float64

	BidDepthSum    float64
	AskDepthSum    float64
	SpreadSum      float64
	MidSum         float64
	PriceVolumeSum float64

	TradeCount       int64
	MaxTradeSize     float64
	LargeTradeCount  int64
	LargeTradeVolume float64

	// StartCvd is the ticker's running CVD when this second opened. The CVD
	// open never moves off it; high/low/close track the running value.
	StartCvd float64
	CvdOpen  float64
	CvdHigh  float64
	CvdLow   float64
	CvdClose float64
}

// newCandleState seeds a second's state from its first trade.
func newCandleState(t model.Trade, side model.Side, startCvd, largeAt float64) *CandleState {
	c := &CandleState{
		Open:     t.Price,
		High:     t.Price,
		Low:      t.Price,
		Close:    t.Price,
		StartCvd: startCvd,
		CvdOpen:  startCvd,
		CvdHigh:  startCvd,
		CvdLow:   startCvd,
		CvdClose: startCvd,
	}
	c.apply(t, side, largeAt)
	return c
}

// apply folds one accepted trade into the state. largeAt is the ticker's
// large-trade size threshold.
func (c *CandleState) apply(t model.Trade, side model.Side, largeAt float64) {
	c.Symbol = t.Symbol

	if t.Price > c.High {
		c.High = t.Price
	}
	if t.Price < c.Low {
		c.Low = t.Price
	}
	c.Close = t.Price

	c.Volume += t.Size
	switch side {
	case model.SideBuy:
		c.AskVolume += t.Size
	case model.SideSell:
		c.BidVolume += t.Size
	default:
		c.UnknownVolume += t.Size
	}

	c.BidDepthSum += t.BidSize
	c.AskDepthSum += t.AskSize
	if t.BidPrice > 0 && t.AskPrice > 0 {
		c.SpreadSum += t.AskPrice - t.BidPrice
		c.MidSum += (t.AskPrice + t.BidPrice) / 2
	}
	c.PriceVolumeSum += t.Price * t.Size

	c.TradeCount++
	if t.Size > c.MaxTradeSize {
		c.MaxTradeSize = t.Size
	}
	if t.Size >= largeAt {
		c.LargeTradeCount++
		c.LargeTradeVolume += t.Size
	}

	// CVD is recomputed from the raw side sums rather than adjusted
	// incrementally, so rounding never compounds across trades.
	running := c.StartCvd + c.AskVolume - c.BidVolume
	if running > c.CvdHigh {
		c.CvdHigh = running
	}
	if running < c.CvdLow {
		c.CvdLow = running
	}
	c.CvdClose = running
}

// freeze copies the state into an immutable SecondSummary for the given
// ticker and second bucket.
func (c *CandleState) freeze(ticker string, bucketMS int64) model.SecondSummary {
	return model.SecondSummary{
		Ticker:  ticker,
		Symbol:  c.Symbol,
		TimeMS:  bucketMS,
		TimeISO: model.ISOTime(bucketMS),

		Open:  c.Open,
		High:  c.High,
		Low:   c.Low,
		Close: c.Close,

		Volume:        c.Volume,
		AskVolume:     c.AskVolume,
		BidVolume:     c.BidVolume,
		UnknownVolume: c.UnknownVolume,
		VolumeDelta:   c.AskVolume - c.BidVolume,

		BidDepthSum:    c.BidDepthSum,
		AskDepthSum:    c.AskDepthSum,
		SpreadSum:      c.SpreadSum,
		MidSum:         c.MidSum,
		PriceVolumeSum: c.PriceVolumeSum,

		TradeCount:       c.TradeCount,
		MaxTradeSize:     c.MaxTradeSize,
		LargeTradeCount:  c.LargeTradeCount,
		LargeTradeVolume: c.LargeTradeVolume,

		CvdOpen:  c.CvdOpen,
		CvdHigh:  c.CvdHigh,
		CvdLow:   c.CvdLow,
		CvdClose: c.CvdClose,
	}
}
