// Package database opens the SQL connection pool and applies the embedded
// schema migrations. PostgreSQL is reached through the pgx stdlib driver and
// SQLite through the pure-Go modernc driver, so tests and single-node
// deployments can run without a database server.
package database
