package engine

import (
	"testing"
	"time"

	"github.com/tapeworks/futures-rollup/internal/model"
)

func accTrade(price, size, bid, ask float64) model.Trade {
	return model.Trade{
		Symbol:   "NQZ5",
		Ticker:   "NQ",
		Time:     testBase,
		Price:    price,
		Size:     size,
		BidPrice: bid,
		AskPrice: ask,
		BidSize:  3,
		AskSize:  4,
	}
}

func TestCandleState_SeedAndApply(t *testing.T) {
	c := newCandleState(accTrade(100, 10, 99.5, 100.5), model.SideBuy, 0, 50)

	if c.Open != 100 || c.High != 100 || c.Low != 100 || c.Close != 100 {
		t.Errorf("seed OHLC = %v/%v/%v/%v, want all 100", c.Open, c.High, c.Low, c.Close)
	}
	if c.Volume != 10 || c.AskVolume != 10 {
		t.Errorf("seed volume = %v ask %v, want 10/10", c.Volume, c.AskVolume)
	}

	c.apply(accTrade(101, 5, 100.5, 101.5), model.SideBuy, 50)
	c.apply(accTrade(99, 20, 98.5, 99.5), model.SideSell, 50)

	if c.Open != 100 {
		t.Errorf("Open = %v, want 100 (never moves)", c.Open)
	}
	if c.High != 101 || c.Low != 99 {
		t.Errorf("High/Low = %v/%v, want 101/99", c.High, c.Low)
	}
	if c.Close != 99 {
		t.Errorf("Close = %v, want 99", c.Close)
	}
	if c.Volume != 35 || c.AskVolume != 15 || c.BidVolume != 20 {
		t.Errorf("volumes = %v/%v/%v, want 35/15/20", c.Volume, c.AskVolume, c.BidVolume)
	}
	if c.TradeCount != 3 {
		t.Errorf("TradeCount = %d, want 3", c.TradeCount)
	}
	if c.MaxTradeSize != 20 {
		t.Errorf("MaxTradeSize = %v, want 20", c.MaxTradeSize)
	}
	if c.PriceVolumeSum != 100*10+101*5+99*20 {
		t.Errorf("PriceVolumeSum = %v", c.PriceVolumeSum)
	}
	// Spread is 1.0 on each of the three trades.
	if c.SpreadSum != 3 {
		t.Errorf("SpreadSum = %v, want 3", c.SpreadSum)
	}
	if c.BidDepthSum != 9 || c.AskDepthSum != 12 {
		t.Errorf("depth sums = %v/%v, want 9/12", c.BidDepthSum, c.AskDepthSum)
	}
}

func TestCandleState_QuotelessTradeSkipsSpread(t *testing.T) {
	c := newCandleState(accTrade(100, 1, 0, 0), model.SideUnknown, 0, 50)
	if c.SpreadSum != 0 || c.MidSum != 0 {
		t.Errorf("spread/mid sums = %v/%v, want 0/0 without a two-sided book", c.SpreadSum, c.MidSum)
	}
}

func TestCandleState_CvdTracking(t *testing.T) {
	const start = -25.0
	c := newCandleState(accTrade(100, 10, 99, 101), model.SideBuy, start, 50)

	if c.CvdOpen != start {
		t.Errorf("CvdOpen = %v, want %v (the incoming running value)", c.CvdOpen, start)
	}
	if c.CvdHigh != start+10 || c.CvdClose != start+10 {
		t.Errorf("CvdHigh/Close = %v/%v, want %v", c.CvdHigh, c.CvdClose, start+10)
	}

	c.apply(accTrade(99, 40, 98, 100), model.SideSell, 50)
	if c.CvdLow != start-30 || c.CvdClose != start-30 {
		t.Errorf("CvdLow/Close = %v/%v, want %v", c.CvdLow, c.CvdClose, start-30)
	}
	// Unknown side moves volume but never the delta.
	c.apply(accTrade(99, 100, 0, 0), model.SideUnknown, 50)
	if c.CvdClose != start-30 {
		t.Errorf("CvdClose = %v after unknown-side trade, want %v", c.CvdClose, start-30)
	}
	if c.CvdHigh != start+10 || c.CvdOpen != start {
		t.Errorf("CvdHigh/Open = %v/%v, want %v/%v", c.CvdHigh, c.CvdOpen, start+10, start)
	}
}

func TestCandleState_LargeTrades(t *testing.T) {
	c := newCandleState(accTrade(100, 9.99, 99, 101), model.SideBuy, 0, 10)
	if c.LargeTradeCount != 0 {
		t.Fatalf("LargeTradeCount = %d below threshold, want 0", c.LargeTradeCount)
	}
	c.apply(accTrade(100, 10, 99, 101), model.SideBuy, 10)
	c.apply(accTrade(100, 25, 99, 101), model.SideSell, 10)
	if c.LargeTradeCount != 2 || c.LargeTradeVolume != 35 {
		t.Errorf("large trades = %d/%v, want 2/35 (threshold inclusive)", c.LargeTradeCount, c.LargeTradeVolume)
	}
}

func TestCandleState_Freeze(t *testing.T) {
	c := newCandleState(accTrade(100, 10, 99, 101), model.SideBuy, 5, 50)
	c.apply(accTrade(101, 4, 100, 102), model.SideSell, 50)

	bucket := model.BucketMS(testBase)
	sum := c.freeze("NQ", bucket)

	if sum.Ticker != "NQ" || sum.Symbol != "NQZ5" {
		t.Errorf("identity = %q/%q, want NQ/NQZ5", sum.Ticker, sum.Symbol)
	}
	if sum.TimeMS != bucket {
		t.Errorf("TimeMS = %d, want %d", sum.TimeMS, bucket)
	}
	if sum.TimeISO != model.ISOTime(bucket) {
		t.Errorf("TimeISO = %q", sum.TimeISO)
	}
	if sum.VolumeDelta != 6 {
		t.Errorf("VolumeDelta = %v, want 6", sum.VolumeDelta)
	}
	if sum.CvdOpen != 5 || sum.CvdClose != 11 {
		t.Errorf("CVD open/close = %v/%v, want 5/11", sum.CvdOpen, sum.CvdClose)
	}
}

func TestFold_WindowSemantics(t *testing.T) {
	window := []model.SecondSummary{
		{
			Ticker: "ES", Symbol: "ESZ5",
			TimeMS: testBase.UnixMilli(), TimeISO: model.ISOTime(testBase.UnixMilli()),
			Open: 100, High: 102, Low: 99, Close: 101,
			Volume: 50, AskVolume: 30, BidVolume: 20,
			TradeCount: 5, MaxTradeSize: 12,
			CvdOpen: 0, CvdHigh: 15, CvdLow: -2, CvdClose: 10,
		},
		{
			Ticker: "ES", Symbol: "ESH6",
			TimeMS: testBase.Add(time.Second).UnixMilli(), TimeISO: model.ISOTime(testBase.Add(time.Second).UnixMilli()),
			Open: 101, High: 104, Low: 100, Close: 103,
			Volume: 40, AskVolume: 25, BidVolume: 10, UnknownVolume: 5,
			TradeCount: 4, MaxTradeSize: 8,
			CvdOpen: 10, CvdHigh: 25, CvdLow: 9, CvdClose: 25,
		},
	}

	c := fold(window)

	if c.TimeMS != window[1].TimeMS || c.Symbol != "ESH6" {
		t.Errorf("identity from newest: TimeMS=%d Symbol=%q", c.TimeMS, c.Symbol)
	}
	if c.Open != 100 || c.Close != 103 {
		t.Errorf("Open/Close = %v/%v, want 100/103", c.Open, c.Close)
	}
	if c.High != 104 || c.Low != 99 {
		t.Errorf("High/Low = %v/%v, want 104/99", c.High, c.Low)
	}
	if c.Volume != 90 || c.AskVolume != 55 || c.BidVolume != 30 || c.UnknownVolume != 5 {
		t.Errorf("volumes = %v/%v/%v/%v", c.Volume, c.AskVolume, c.BidVolume, c.UnknownVolume)
	}
	if c.VolumeDelta != 25 {
		t.Errorf("VolumeDelta = %v, want 25", c.VolumeDelta)
	}
	if c.CvdOpen != 0 || c.CvdClose != 25 || c.CvdHigh != 25 || c.CvdLow != -2 {
		t.Errorf("CVD = %v/%v/%v/%v", c.CvdOpen, c.CvdHigh, c.CvdLow, c.CvdClose)
	}
	if c.TradeCount != 9 || c.MaxTradeSize != 12 {
		t.Errorf("TradeCount/MaxTradeSize = %d/%v", c.TradeCount, c.MaxTradeSize)
	}
}
