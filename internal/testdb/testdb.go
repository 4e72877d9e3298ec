package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/phrazzld/scry-analytics/internal/config"
	"github.com/phrazzld/scry-analytics/internal/platform/database"
	"github.com/stretchr/testify/require"
)

// GetTestDatabaseURL returns the Postgres URL for integration tests from
// DATABASE_URL or SCRY_TEST_DB_URL, in that order.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("SCRY_TEST_DB_URL")
}

// IsIntegrationTestEnvironment reports whether a Postgres URL is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// Open returns a migrated in-memory SQLite database closed at test cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	return open(t, config.DatabaseConfig{Driver: database.DriverSQLite, URL: ":memory:"})
}

// OpenPostgres returns a migrated connection to the integration database,
// skipping the test when none is configured.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}
	return open(t, config.DatabaseConfig{Driver: database.DriverPostgres, URL: url, MaxOpenConns: 4})
}

func open(t *testing.T, cfg config.DatabaseConfig) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, nil)
	require.NoError(t, err, "failed to open %s test database", cfg.Driver)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(ctx, db, cfg.Driver, nil)
	require.NoError(t, err, "failed to migrate %s test database", cfg.Driver)
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so nothing
// fn writes outlives it.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
