// Package writer persists rolling candles in batches.
//
// The writer sits between the aggregation engine and storage: the engine
// enqueues candles without blocking, and the periodic flush drains them in
// fixed-size batches. Storage failures requeue the batch for the next flush;
// the idempotent upsert makes retried batches safe.
package writer
