package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPingInterval       = 15 * time.Second
	DefaultPingTimeout        = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultFeedBufferSize     = 10000
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultWindowSeconds      = 60
	DefaultFrontMonthWindow   = 5 * time.Minute
	DefaultMaxTradeAge        = 3 * time.Minute
	DefaultLargeTradeSize     = 10.0
	DefaultBatchSize          = 500
	DefaultFlushInterval      = 1 * time.Second
	DefaultMaxPending         = 10000
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

func (c *AggregatorConfig) applyDefaults() {
	// Feed defaults
	if c.Feed.PingInterval == 0 {
		c.Feed.PingInterval = DefaultPingInterval
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}
	if c.Feed.ReconnectBaseDelay == 0 {
		c.Feed.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Feed.ReconnectMaxDelay == 0 {
		c.Feed.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultFeedBufferSize
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Engine defaults
	if c.Engine.WindowSeconds == 0 {
		c.Engine.WindowSeconds = DefaultWindowSeconds
	}
	if c.Engine.FrontMonthWindow == 0 {
		c.Engine.FrontMonthWindow = DefaultFrontMonthWindow
	}
	if c.Engine.MaxTradeAge == 0 {
		c.Engine.MaxTradeAge = DefaultMaxTradeAge
	}
	if c.Engine.LargeTradeDefault == 0 {
		c.Engine.LargeTradeDefault = DefaultLargeTradeSize
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.MaxPending == 0 {
		c.Writer.MaxPending = DefaultMaxPending
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
