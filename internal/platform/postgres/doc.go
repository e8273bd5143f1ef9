// Package postgres provides the PostgreSQL implementation of the customer
// store defined in internal/store, together with the schema migrations it
// relies on. Statements go through database/sql with the pgx driver.
package postgres
