// Package postgres implements the store interfaces on PostgreSQL using
// database/sql over the pgx stdlib driver. Timestamps are persisted as
// Unix epoch seconds (UTC) per the store contract; review-state updates
// are atomic per item and rely on row-level locking for serialization.
package postgres
