package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapeworks/futures-rollup/internal/config"
	"github.com/tapeworks/futures-rollup/internal/database"
	"github.com/tapeworks/futures-rollup/internal/engine"
	"github.com/tapeworks/futures-rollup/internal/feed"
	"github.com/tapeworks/futures-rollup/internal/metrics"
	"github.com/tapeworks/futures-rollup/internal/storage"
	"github.com/tapeworks/futures-rollup/internal/version"
	"github.com/tapeworks/futures-rollup/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/aggregator.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting aggregator",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"feed_url", cfg.Feed.URL,
		"tickers", cfg.Feed.Tickers,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	store := storage.NewPGCandleStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	met := metrics.New(prometheus.DefaultRegisterer)

	// Persistence path
	candleWriter := writer.NewCandleWriter(cfg.Writer, store, met, logger)

	// Aggregation engine, seeded so the CVD chain continues across restarts
	engCfg := engine.Config{
		WindowSeconds:     cfg.Engine.WindowSeconds,
		FrontMonthWindow:  cfg.Engine.FrontMonthWindow,
		MaxTradeAge:       cfg.Engine.MaxTradeAge,
		LargeTradeDefault: cfg.Engine.LargeTradeDefault,
		LargeTradeSizes:   cfg.Engine.LargeTradeSizes,
		FlushInterval:     cfg.Writer.FlushInterval,
	}
	eng := engine.New(engCfg, candleWriter, met, logger)

	lastCvd, err := store.LoadLastCvd(ctx)
	if err != nil {
		// Degraded but survivable: CVD restarts from zero.
		logger.Warn("could not load prior cvd, starting from zero", "error", err)
	} else {
		eng.SeedCvd(lastCvd)
	}

	// Feed client
	feedClient := feed.NewClient(cfg.Feed, met, logger)

	// Health + metrics server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createHealthHandler(cfg.Metrics.Path, pool, feedClient, eng, candleWriter),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Run the feed and the engine; the engine owns all aggregation state and
	// exits only after its final flush.
	feedDone := make(chan struct{})
	go func() {
		feedClient.Run(ctx)
		close(feedDone)
	}()

	logger.Info("aggregator running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	engineErr := eng.Run(ctx, feedClient.Trades())

	logger.Info("shutting down...")

	<-feedDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	if engineErr != nil {
		logger.Error("engine exited with error", "error", engineErr)
		logger.Info("aggregator stopped")
		os.Exit(1)
	}
	logger.Info("aggregator stopped")
}

// createHealthHandler serves /health plus the Prometheus endpoint.
func createHealthHandler(metricsPath string, pool *pgxpool.Pool, feedClient *feed.Client, eng *engine.Engine, w *writer.CandleWriter) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, metrics.Handler())

	mux.HandleFunc("/health", func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["database"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["database"] = "connected"
		}

		// Check feed
		if feedClient.Connected() {
			health.Components["feed"] = "connected"
		} else {
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
			health.Components["feed"] = "disconnected"
		}

		// Engine and queue state
		tickers := eng.Status()
		warm := 0
		for _, ts := range tickers {
			if ts.Warm {
				warm++
			}
		}
		health.Components["engine"] = map[string]interface{}{
			"tickers":      tickers,
			"warm_tickers": warm,
		}
		health.Components["writer"] = map[string]interface{}{
			"queue_depth": w.Depth(),
			"queue_stats": w.Stats(),
		}

		rw.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			rw.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(rw).Encode(health)
	})

	return mux
}
