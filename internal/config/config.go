package config

import "time"

// AggregatorConfig is the root configuration for an aggregator instance.
type AggregatorConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Feed     FeedConfig     `yaml:"feed"`
	Database DBConfig       `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Writer   WriterConfig   `yaml:"writer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this aggregator.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// FeedConfig holds trade-feed connection settings.
type FeedConfig struct {
	URL                string        `yaml:"url"`
	APIKey             string        `yaml:"api_key"`
	Tickers            []string      `yaml:"tickers"` // Parent tickers to subscribe
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	BufferSize         int           `yaml:"buffer_size"`
}

// DBConfig holds the PostgreSQL connection for candle storage.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// EngineConfig holds rolling-window engine settings.
type EngineConfig struct {
	WindowSeconds     int                `yaml:"window_seconds"`      // Rolling window width (also the warmup gate)
	FrontMonthWindow  time.Duration      `yaml:"front_month_window"`  // Rolling volume window for contract selection
	MaxTradeAge       time.Duration      `yaml:"max_trade_age"`       // Reject trades older than this
	LargeTradeDefault float64            `yaml:"large_trade_default"` // Baseline large-trade size threshold
	LargeTradeSizes   map[string]float64 `yaml:"large_trade_sizes"`   // Per-ticker overrides
}

// WriterConfig holds persistence coordinator settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	MaxPending    int           `yaml:"max_pending"` // Hard cap on queued candles; oldest dropped beyond it
}

// MetricsConfig holds the metrics/health HTTP server settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
