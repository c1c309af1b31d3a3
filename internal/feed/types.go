package feed

import (
	"encoding/json"
	"errors"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrNotTrade        = errors.New("not a trade message")
)

// Command is a client-to-server command frame.
type Command struct {
	ID     int64       `json:"id"`
	Cmd    string      `json:"cmd"`
	Params interface{} `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels []string `json:"channels"`
	Tickers  []string `json:"tickers"`
}

// envelope is the server-to-client message frame. Trades arrive with
// Type "trade"; everything else (command acks, heartbeats) is skipped.
type envelope struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// tradeMsg is the wire form of a single trade.
type tradeMsg struct {
	TradeID  string  `json:"trade_id"`
	Symbol   string  `json:"symbol"`
	Ticker   string  `json:"ticker"`
	Price    float64 `json:"price"`
	Size     float64 `json:"size"`
	Side     string  `json:"side,omitempty"` // "buy", "sell", or absent
	BidPrice float64 `json:"bid_price,omitempty"`
	AskPrice float64 `json:"ask_price,omitempty"`
	BidSize  float64 `json:"bid_size,omitempty"`
	AskSize  float64 `json:"ask_size,omitempty"`
	Ts       int64   `json:"ts"` // Exchange event time, epoch milliseconds
}
