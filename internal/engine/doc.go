// Package engine implements the rolling-window aggregation core.
//
// One goroutine owns all state: per-ticker second accumulators, the ring of
// finalized second summaries, and the running CVD chain. Each ticker moves
// Empty -> Warming -> Warm; once 60 seconds have been collected, every
// completed second folds the trailing window into one rolling candle and
// hands it to the sink. A gap that empties the window sends the ticker back
// to Warming.
package engine
