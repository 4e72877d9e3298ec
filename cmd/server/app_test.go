package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/config"
	"github.com/phrazzld/scry-analytics/internal/platform/database"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-that-is-long-enough"

// testConfig returns a valid configuration backed by url, which is migrated
// on open.
func testConfig(url string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error", ShutdownTimeoutSeconds: 5},
		Database: config.DatabaseConfig{
			Driver:      database.DriverSQLite,
			URL:         url,
			AutoMigrate: true,
		},
		Auth:      config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60},
		Analytics: config.AnalyticsConfig{DefaultStudyHour: 19},
		Retention: config.RetentionConfig{OutcomeMaxAgeDays: 365, CleanupIntervalMinutes: 60},
	}
}

// newTestApp builds an application over a migrated in-memory database.
func newTestApp(t *testing.T) *application {
	t.Helper()

	cfg := testConfig(":memory:")
	l, _ := logger.NewTestLogger(t)

	db, err := openDatabase(context.Background(), cfg, l)
	require.NoError(t, err)

	app, err := newApplication(cfg, l, db)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestNewApplication(t *testing.T) {
	t.Run("wires services", func(t *testing.T) {
		app := newTestApp(t)

		assert.NotNil(t, app.events)
		assert.NotNil(t, app.goals)
		assert.NotNil(t, app.engine)
		assert.NotNil(t, app.jwtService)
		assert.NotNil(t, app.studyService)
	})

	t.Run("rejects short jwt secret", func(t *testing.T) {
		cfg := testConfig(":memory:")
		cfg.Auth.JWTSecret = "short"

		_, err := newApplication(cfg, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT service")
	})
}

func TestBootstrap(t *testing.T) {
	t.Run("config failure", func(t *testing.T) {
		var out strings.Builder
		_, err := bootstrap(context.Background(), func() (*config.Config, error) {
			return nil, assert.AnError
		}, &out)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		cfg := testConfig(":memory:")
		cfg.Database.Driver = "mysql"

		var out strings.Builder
		_, err := bootstrap(context.Background(), func() (*config.Config, error) { return cfg, nil }, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestScoringParams(t *testing.T) {
	t.Run("zero config keeps defaults", func(t *testing.T) {
		assert.Equal(t, scoring.NewDefaultParams(), scoring.NewParams(scoringParams(config.ScoringConfig{})))
	})

	t.Run("overrides are carried", func(t *testing.T) {
		params := scoring.NewParams(scoringParams(config.ScoringConfig{
			CorrectPoints:        20,
			IncorrectPoints:      -2,
			FastThresholdSeconds: 2,
			StreakThreshold:      3,
			BeginnerMax:          50,
		}))

		assert.Equal(t, 20, params.CorrectPoints)
		assert.Equal(t, -2, params.IncorrectPoints)
		assert.Equal(t, 2*time.Second, params.FastThreshold)
		assert.Equal(t, 3, params.StreakThreshold)
		assert.Equal(t, 50, params.BeginnerMax)
	})
}

func TestAnalyticsOptions(t *testing.T) {
	opts := analyticsOptions(config.AnalyticsConfig{
		AccuracyThreshold: 0.6,
		MaxReviewCards:    4,
		DefaultStudyHour:  7,
	})

	assert.Equal(t, 0.6, opts.AccuracyThreshold)
	assert.Equal(t, 4, opts.MaxReviewCards)
	assert.Equal(t, 7, opts.DefaultStudyHour)
	assert.Zero(t, opts.MasteryBar)

	_, err := analytics.NewEngine(newTestApp(t).events, nil, nil, opts, nil)
	assert.NoError(t, err)
}

func TestRetentionWindow(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, retentionWindow(config.RetentionConfig{OutcomeMaxAgeDays: 30}))
	assert.Zero(t, retentionWindow(config.RetentionConfig{}))
}
