package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *AggregatorConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if len(c.Feed.Tickers) == 0 {
		return errors.New("feed.tickers must name at least one ticker")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Engine.WindowSeconds < 1 {
		return errors.New("engine.window_seconds must be >= 1")
	}
	if c.Engine.MaxTradeAge <= 0 {
		return errors.New("engine.max_trade_age must be positive")
	}
	if c.Engine.LargeTradeDefault <= 0 {
		return errors.New("engine.large_trade_default must be positive")
	}

	if c.Writer.BatchSize < 1 {
		return errors.New("writer.batch_size must be >= 1")
	}
	if c.Writer.MaxPending < c.Writer.BatchSize {
		return fmt.Errorf("writer.max_pending (%d) must be >= batch_size (%d)", c.Writer.MaxPending, c.Writer.BatchSize)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
