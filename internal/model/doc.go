// Package model defines the domain types shared across the aggregator:
// inbound trades, frozen one-second summaries, and the rolling 60-second
// candles queued for persistence.
//
// Timestamps are carried as epoch milliseconds (second bucket keys) with an
// ISO-8601 string alongside for chart-facing consumers.
package model
