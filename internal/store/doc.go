// Package store defines the persistence interfaces of the customer data
// access layer. Business code depends on these interfaces only; the
// PostgreSQL implementation lives in internal/platform/postgres.
package store
