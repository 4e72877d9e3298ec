// Package postgres provides the SQL implementations of the persistence
// interfaces defined in the internal/store package. Queries use only
// portable syntax ($N placeholders, ON CONFLICT upserts), so the same stores
// run against PostgreSQL through pgx and against SQLite through the
// modernc driver.
package postgres
