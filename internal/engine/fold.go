package engine

import "github.com/tapeworks/futures-rollup/internal/model"

// fold collapses a window of second summaries (oldest first, never empty)
// into one rolling candle keyed by the newest summary's timestamp.
//
// Ordering rules: price open from the oldest, close from the newest, CVD
// open from the oldest summary's CVD open, CVD close from the newest
// summary's CVD close, extremes across the whole window. Everything else is
// a plain sum. The symbol comes from the newest summary so a front-month
// switch mid-window is reflected.
func fold(window []model.SecondSummary) model.RollingCandle {
	oldest := window[0]
	newest := window[len(window)-1]

	c := model.RollingCandle{
		Ticker:  newest.Ticker,
		Symbol:  newest.Symbol,
		TimeMS:  newest.TimeMS,
		TimeISO: newest.TimeISO,

		Open:  oldest.Open,
		High:  oldest.High,
		Low:   oldest.Low,
		Close: newest.Close,

		CvdOpen:  oldest.CvdOpen,
		CvdHigh:  oldest.CvdHigh,
		CvdLow:   oldest.CvdLow,
		CvdClose: newest.CvdClose,
	}

	for _, s := range window {
		if s.High > c.High {
			c.High = s.High
		}
		if s.Low < c.Low {
			c.Low = s.Low
		}
		if s.CvdHigh > c.CvdHigh {
			c.CvdHigh = s.CvdHigh
		}
		if s.CvdLow < c.CvdLow {
			c.CvdLow = s.CvdLow
		}

		c.Volume += s.Volume
		c.AskVolume += s.AskVolume
		c.BidVolume += s.BidVolume
		c.UnknownVolume += s.UnknownVolume

		c.BidDepthSum += s.BidDepthSum
		c.AskDepthSum += s.AskDepthSum
		c.SpreadSum += s.SpreadSum
		c.MidSum += s.MidSum
		c.PriceVolumeSum += s.PriceVolumeSum

		c.TradeCount += s.TradeCount
		if s.MaxTradeSize > c.MaxTradeSize {
			c.MaxTradeSize = s.MaxTradeSize
		}
		c.LargeTradeCount += s.LargeTradeCount
		c.LargeTradeVolume += s.LargeTradeVolume
	}

	c.VolumeDelta = c.AskVolume - c.BidVolume
	return c
}
