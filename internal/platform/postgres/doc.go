// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store. Every store accepts a DBTX so it can
// run against either a plain connection pool or an open transaction; WithTx
// binds a store to a transaction for multi-store atomic units.
package postgres
