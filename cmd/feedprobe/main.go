// feedprobe connects to a trade feed and streams parsed trades to console.
// It exercises the feed layer against a live endpoint without a database.
//
// Usage: go run ./cmd/feedprobe --url wss://feed.example.com/ws --tickers ES,NQ
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapeworks/futures-rollup/internal/config"
	"github.com/tapeworks/futures-rollup/internal/feed"
	"github.com/tapeworks/futures-rollup/internal/metrics"
)

func main() {
	url := flag.String("url", "", "feed websocket URL")
	tickers := flag.String("tickers", "ES", "comma-separated parent tickers")
	apiKey := flag.String("api-key", os.Getenv("FEED_API_KEY"), "feed API key (or FEED_API_KEY env)")
	verbose := flag.Bool("verbose", false, "print full trade JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if *url == "" {
		logger.Error("--url is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := config.FeedConfig{
		URL:                *url,
		APIKey:             *apiKey,
		Tickers:            strings.Split(*tickers, ","),
		PingInterval:       30 * time.Second,
		PingTimeout:        90 * time.Second,
		WriteTimeout:       5 * time.Second,
		ReconnectBaseDelay: time.Second,
		ReconnectMaxDelay:  30 * time.Second,
		BufferSize:         10000,
	}

	client := feed.NewClient(cfg, metrics.New(prometheus.NewRegistry()), logger)
	go client.Run(ctx)

	logger.Info("streaming trades", "url", cfg.URL, "tickers", cfg.Tickers)

	count := 0
	for trade := range client.Trades() {
		count++
		if *verbose {
			data, _ := json.Marshal(trade)
			fmt.Println(string(data))
			continue
		}
		fmt.Printf("%s  %-6s %-8s %10.2f x %-8.2f side=%-7s bid=%.2f ask=%.2f\n",
			trade.Time.Format("15:04:05.000"),
			trade.Ticker,
			trade.Symbol,
			trade.Price,
			trade.Size,
			trade.Side,
			trade.BidPrice,
			trade.AskPrice,
		)
	}

	logger.Info("feed closed", "trades_seen", count)
}
