// Package feed connects to the upstream trade feed over websocket, decodes
// the JSON wire protocol and hands parsed trades to the aggregation engine.
//
// The wire protocol: the client sends a subscribe command for the "trades"
// channel with its parent tickers; the server pushes typed envelopes, of
// which only "trade" messages are consumed. Malformed messages are counted
// and skipped, never fatal.
package feed
