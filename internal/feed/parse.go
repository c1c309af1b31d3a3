package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tapeworks/futures-rollup/internal/model"
)

// ParseTrade decodes one wire message into a Trade. Non-trade envelopes
// return ErrNotTrade so the caller can skip them without counting a parse
// failure.
func ParseTrade(data []byte, receivedAt time.Time) (model.Trade, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Trade{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != "trade" {
		return model.Trade{}, ErrNotTrade
	}

	var msg tradeMsg
	if err := json.Unmarshal(env.Msg, &msg); err != nil {
		return model.Trade{}, fmt.Errorf("decode trade: %w", err)
	}
	if msg.Symbol == "" || msg.Ticker == "" {
		return model.Trade{}, fmt.Errorf("trade missing symbol or ticker")
	}
	if msg.Price <= 0 || msg.Size <= 0 {
		return model.Trade{}, fmt.Errorf("trade %s: non-positive price or size", msg.TradeID)
	}

	id, err := uuid.Parse(msg.TradeID)
	if err != nil {
		return model.Trade{}, fmt.Errorf("trade id %q: %w", msg.TradeID, err)
	}

	return model.Trade{
		TradeID:    id,
		Symbol:     msg.Symbol,
		Ticker:     msg.Ticker,
		Time:       time.UnixMilli(msg.Ts).UTC(),
		ReceivedAt: receivedAt,
		Price:      msg.Price,
		Size:       msg.Size,
		Side:       parseSide(msg.Side),
		BidPrice:   msg.BidPrice,
		AskPrice:   msg.AskPrice,
		BidSize:    msg.BidSize,
		AskSize:    msg.AskSize,
	}, nil
}

// parseSide maps the optional wire tag. Anything unrecognized falls through
// to unknown so the quote-midpoint fallback still gets a chance.
func parseSide(s string) model.Side {
	switch s {
	case "buy":
		return model.SideBuy
	case "sell":
		return model.SideSell
	default:
		return model.SideUnknown
	}
}
