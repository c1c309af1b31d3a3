// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Trade ingestion rates and rejection counts (late, non-front, unknown side)
//   - Engine state (warm tickers, front-month switches)
//   - Pending queue depth, overflow drops
//   - Writer batch throughput and errors
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the aggregator.
type Metrics struct {
	// Ingestion
	TradesProcessed    prometheus.Counter
	TradesRejectedLate prometheus.Counter
	TradesNonFront     prometheus.Counter
	TradesSpreadSymbol prometheus.Counter
	TradesUnknownSide  prometheus.Counter
	FeedParseErrors    prometheus.Counter
	FeedReconnects     prometheus.Counter

	// Engine
	SecondsFinalized   prometheus.Counter
	CandlesEmitted     prometheus.Counter
	GapResets          prometheus.Counter
	FrontMonthSwitches prometheus.Counter
	WarmTickers        prometheus.Gauge

	// Persistence
	CandlesWritten prometheus.Counter
	CandlesDropped prometheus.Counter
	WriteErrors    prometheus.Counter
	BatchFlushes   prometheus.Counter
	QueueDepth     prometheus.Gauge
}

// New creates a Metrics instance registered against reg. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	const namespace = "futures_rollup"

	return &Metrics{
		TradesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_processed_total",
			Help:      "Total number of trades accepted into aggregation",
		}),
		TradesRejectedLate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_rejected_late_total",
			Help:      "Total number of trades rejected for exceeding max age",
		}),
		TradesNonFront: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_skipped_non_front_total",
			Help:      "Total number of trades skipped on non-front-month contracts",
		}),
		TradesSpreadSymbol: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_rejected_spread_total",
			Help:      "Total number of trades rejected on multi-leg spread symbols",
		}),
		TradesUnknownSide: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "trades_unknown_side_total",
			Help:      "Total number of trades with unclassifiable aggressor side",
		}),
		FeedParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "parse_errors_total",
			Help:      "Total number of feed messages that failed to parse",
		}),
		FeedReconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of feed reconnection attempts",
		}),

		SecondsFinalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "seconds_finalized_total",
			Help:      "Total number of one-second summaries finalized",
		}),
		CandlesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "candles_emitted_total",
			Help:      "Total number of rolling candles emitted for persistence",
		}),
		GapResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "gap_resets_total",
			Help:      "Total number of warmup resets caused by window gaps",
		}),
		FrontMonthSwitches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "front_month_switches_total",
			Help:      "Total number of active contract switches",
		}),
		WarmTickers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "warm_tickers",
			Help:      "Number of tickers currently past warmup",
		}),

		CandlesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "candles_written_total",
			Help:      "Total number of rolling candles upserted to storage",
		}),
		CandlesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "candles_dropped_total",
			Help:      "Total number of pending candles dropped by the queue cap",
		}),
		WriteErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "write_errors_total",
			Help:      "Total number of failed batch writes",
		}),
		BatchFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "batch_flushes_total",
			Help:      "Total number of successful batch writes",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "writer",
			Name:      "queue_depth",
			Help:      "Current number of candles pending persistence",
		}),
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
