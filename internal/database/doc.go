// Package database provides connection pool management for the PostgreSQL
// instance that stores rolling candles. The aggregator uses a single pool;
// sizing comes from config.
package database
