package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapeworks/futures-rollup/internal/model"
)

// PGCandleStore implements CandleStore on PostgreSQL.
type PGCandleStore struct {
	db *pgxpool.Pool
}

// NewPGCandleStore creates a candle store backed by the given pool.
func NewPGCandleStore(db *pgxpool.Pool) *PGCandleStore {
	return &PGCandleStore{db: db}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS rolling_candles (
	ticker             TEXT             NOT NULL,
	bucket_ms          BIGINT           NOT NULL,
	bucket_iso         TEXT             NOT NULL,
	symbol             TEXT             NOT NULL,
	open               DOUBLE PRECISION NOT NULL,
	high               DOUBLE PRECISION NOT NULL,
	low                DOUBLE PRECISION NOT NULL,
	close              DOUBLE PRECISION NOT NULL,
	volume             DOUBLE PRECISION NOT NULL,
	ask_volume         DOUBLE PRECISION NOT NULL,
	bid_volume         DOUBLE PRECISION NOT NULL,
	unknown_volume     DOUBLE PRECISION NOT NULL,
	volume_delta       DOUBLE PRECISION NOT NULL,
	bid_depth_sum      DOUBLE PRECISION NOT NULL,
	ask_depth_sum      DOUBLE PRECISION NOT NULL,
	spread_sum         DOUBLE PRECISION NOT NULL,
	mid_sum            DOUBLE PRECISION NOT NULL,
	price_volume_sum   DOUBLE PRECISION NOT NULL,
	trade_count        BIGINT           NOT NULL,
	max_trade_size     DOUBLE PRECISION NOT NULL,
	large_trade_count  BIGINT           NOT NULL,
	large_trade_volume DOUBLE PRECISION NOT NULL,
	cvd_open           DOUBLE PRECISION NOT NULL,
	cvd_high           DOUBLE PRECISION NOT NULL,
	cvd_low            DOUBLE PRECISION NOT NULL,
	cvd_close          DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (ticker, bucket_ms)
)`

// upsertSQL applies a row only when the incoming volume is at least the
// stored volume (idempotency/monotonicity contract), and merges CVD extremes
// as a running max/min so concurrent writers cannot narrow them.
const upsertSQL = `
INSERT INTO rolling_candles (
	ticker, bucket_ms, bucket_iso, symbol,
	open, high, low, close,
	volume, ask_volume, bid_volume, unknown_volume, volume_delta,
	bid_depth_sum, ask_depth_sum, spread_sum, mid_sum, price_volume_sum,
	trade_count, max_trade_size, large_trade_count, large_trade_volume,
	cvd_open, cvd_high, cvd_low, cvd_close
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
)
ON CONFLICT (ticker, bucket_ms) DO UPDATE SET
	bucket_iso         = EXCLUDED.bucket_iso,
	symbol             = EXCLUDED.symbol,
	open               = EXCLUDED.open,
	high               = EXCLUDED.high,
	low                = EXCLUDED.low,
	close              = EXCLUDED.close,
	volume             = EXCLUDED.volume,
	ask_volume         = EXCLUDED.ask_volume,
	bid_volume         = EXCLUDED.bid_volume,
	unknown_volume     = EXCLUDED.unknown_volume,
	volume_delta       = EXCLUDED.volume_delta,
	bid_depth_sum      = EXCLUDED.bid_depth_sum,
	ask_depth_sum      = EXCLUDED.ask_depth_sum,
	spread_sum         = EXCLUDED.spread_sum,
	mid_sum            = EXCLUDED.mid_sum,
	price_volume_sum   = EXCLUDED.price_volume_sum,
	trade_count        = EXCLUDED.trade_count,
	max_trade_size     = EXCLUDED.max_trade_size,
	large_trade_count  = EXCLUDED.large_trade_count,
	large_trade_volume = EXCLUDED.large_trade_volume,
	cvd_open           = EXCLUDED.cvd_open,
	cvd_high           = GREATEST(rolling_candles.cvd_high, EXCLUDED.cvd_high),
	cvd_low            = LEAST(rolling_candles.cvd_low, EXCLUDED.cvd_low),
	cvd_close          = EXCLUDED.cvd_close
WHERE EXCLUDED.volume >= rolling_candles.volume`

// EnsureSchema creates the rolling_candles table if missing.
func (s *PGCandleStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create rolling_candles: %w", err)
	}
	return nil
}

// UpsertRollingCandles writes candles using a pgx batch.
func (s *PGCandleStore) UpsertRollingCandles(ctx context.Context, candles []model.RollingCandle) error {
	if len(candles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range candles {
		batch.Queue(upsertSQL,
			c.Ticker, c.TimeMS, c.TimeISO, c.Symbol,
			c.Open, c.High, c.Low, c.Close,
			c.Volume, c.AskVolume, c.BidVolume, c.UnknownVolume, c.VolumeDelta,
			c.BidDepthSum, c.AskDepthSum, c.SpreadSum, c.MidSum, c.PriceVolumeSum,
			c.TradeCount, c.MaxTradeSize, c.LargeTradeCount, c.LargeTradeVolume,
			c.CvdOpen, c.CvdHigh, c.CvdLow, c.CvdClose,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range candles {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert rolling candle: %w", err)
		}
	}
	return nil
}

// LoadLastCvd returns each ticker's most recent closing CVD.
func (s *PGCandleStore) LoadLastCvd(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (ticker) ticker, cvd_close
		FROM rolling_candles
		ORDER BY ticker, bucket_ms DESC`)
	if err != nil {
		return nil, fmt.Errorf("query last cvd: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var ticker string
		var cvd float64
		if err := rows.Scan(&ticker, &cvd); err != nil {
			return nil, fmt.Errorf("scan last cvd: %w", err)
		}
		out[ticker] = cvd
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read last cvd rows: %w", err)
	}
	return out, nil
}
