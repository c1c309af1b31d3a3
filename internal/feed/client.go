package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tapeworks/futures-rollup/internal/config"
	"github.com/tapeworks/futures-rollup/internal/metrics"
	"github.com/tapeworks/futures-rollup/internal/model"
)

// Client maintains a websocket subscription to the trade feed and delivers
// parsed trades on a buffered channel. It reconnects with exponential
// backoff for as long as its context lives and resubscribes after every
// reconnect.
type Client struct {
	cfg    config.FeedConfig
	met    *metrics.Metrics
	logger *slog.Logger

	trades chan model.Trade

	nextCmdID atomic.Int64

	mu         sync.RWMutex
	connected  bool
	lastPingAt time.Time
}

// NewClient creates a feed client. Trades are delivered on Trades() once
// Run is started.
func NewClient(cfg config.FeedConfig, met *metrics.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		met:    met,
		logger: logger,
		trades: make(chan model.Trade, cfg.BufferSize),
	}
}

// Trades returns the parsed-trade channel. Closed when Run returns.
func (c *Client) Trades() <-chan model.Trade {
	return c.trades
}

// Connected reports whether a websocket session is currently up.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Run dials, subscribes and reads until ctx is cancelled, reconnecting on
// any session failure. Always returns nil after closing the trade channel.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.trades)

	delay := c.cfg.ReconnectBaseDelay
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			c.logger.Info("feed client stopped")
			return nil
		}

		c.logger.Warn("feed session ended, reconnecting",
			"error", err,
			"delay", delay,
		)
		c.met.FeedReconnects.Inc()

		select {
		case <-ctx.Done():
			c.logger.Info("feed client stopped")
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.cfg.ReconnectMaxDelay {
			delay = c.cfg.ReconnectMaxDelay
		}
		if err == nil {
			// Clean remote close: start backoff over.
			delay = c.cfg.ReconnectBaseDelay
		}
	}
}

// session runs one connect-subscribe-read cycle.
func (c *Client) session(ctx context.Context) error {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.setConnected(true)
	defer c.setConnected(false)

	// Pings and pongs both refresh the staleness clock; pings are answered
	// in kind.
	conn.SetPingHandler(func(data string) error {
		c.touchPing()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		c.touchPing()
		return nil
	})
	c.touchPing()

	if err := c.subscribe(conn); err != nil {
		return err
	}
	c.logger.Info("feed connected",
		"url", c.cfg.URL,
		"tickers", c.cfg.Tickers,
	)

	// Heartbeat and context cancellation both end the session by closing
	// the connection, which unblocks ReadMessage.
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go c.heartbeat(ctx, conn, sessionDone)

	for {
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return err
		}

		trade, err := ParseTrade(data, receivedAt)
		if err != nil {
			if !errors.Is(err, ErrNotTrade) {
				c.met.FeedParseErrors.Inc()
				c.logger.Debug("unparseable feed message", "error", err)
			}
			continue
		}

		select {
		case c.trades <- trade:
		default:
			c.logger.Warn("trade buffer full, dropping trade", "ticker", trade.Ticker)
		}
	}
}

// subscribe sends the trades subscription for the configured tickers.
func (c *Client) subscribe(conn *websocket.Conn) error {
	cmd := Command{
		ID:  c.nextCmdID.Add(1),
		Cmd: "subscribe",
		Params: SubscribeParams{
			Channels: []string{"trades"},
			Tickers:  c.cfg.Tickers,
		},
	}

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteJSON(cmd)
}

// heartbeat pings on an interval and force-closes the connection when the
// peer goes silent past the ping timeout or the context is cancelled.
func (c *Client) heartbeat(ctx context.Context, conn *websocket.Conn, sessionDone <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sessionDone:
			return
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("ping failed", "error", err)
			}
			if time.Since(c.lastPing()) > c.cfg.PingTimeout {
				c.logger.Warn("feed silent past ping timeout, dropping connection",
					"timeout", c.cfg.PingTimeout,
				)
				conn.Close()
				return
			}
		}
	}
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *Client) touchPing() {
	c.mu.Lock()
	c.lastPingAt = time.Now()
	c.mu.Unlock()
}

func (c *Client) lastPing() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPingAt
}
