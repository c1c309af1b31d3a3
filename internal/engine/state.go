package engine

import "github.com/tapeworks/futures-rollup/internal/model"

// TickerRollingState is the per-ticker state machine. Owned exclusively by
// the engine for the process lifetime; nothing else mutates it.
//
// States: Empty (no ring entries, not warm) -> Warming (collecting seconds)
// -> Warm (>= window seconds collected; every finalized second emits).
// A gap that empties the ring forces the only backward transition, back to
// Empty with the warmup count restarted.
type TickerRollingState struct {
	// Ring holds the last window's worth of completed seconds, oldest first.
	Ring []model.SecondSummary

	// Cur is the in-progress second, nil between seconds. At most one per
	// ticker at any time.
	Cur *CandleState

	// CurBucketMS is Cur's second bucket key; meaningless when Cur is nil.
	CurBucketMS int64

	// RunningCvd is the ticker's cumulative volume delta as of the last
	// completed second. A completed second's closing CVD becomes the next
	// second's opening base; it is never recomputed retroactively.
	RunningCvd float64

	// Warm is set once SecondsCollected reaches the window size.
	Warm bool

	// SecondsCollected counts distinct completed seconds since the last
	// reset.
	SecondsCollected int
}

// newestRingMS returns the newest buffered second's bucket key, or 0 if the
// ring is empty.
func (st *TickerRollingState) newestRingMS() int64 {
	if len(st.Ring) == 0 {
		return 0
	}
	return st.Ring[len(st.Ring)-1].TimeMS
}
