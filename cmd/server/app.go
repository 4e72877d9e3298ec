package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/config"
	"github.com/phrazzld/scry-analytics/internal/platform/database"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/platform/postgres"
	"github.com/phrazzld/scry-analytics/internal/scoring"
	"github.com/phrazzld/scry-analytics/internal/service"
	"github.com/phrazzld/scry-analytics/internal/service/auth"
	"github.com/phrazzld/scry-analytics/internal/store"
)

// configLoader produces the application configuration. main passes
// config.Load; tests pass a fixed config.
type configLoader func() (*config.Config, error)

// application holds the shared dependencies of every command and releases
// them in cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	events store.EventStore
	goals  store.GoalStore
	scorer scoring.Service
	engine analytics.Engine

	jwtService   auth.JWTService
	studyService service.StudyService
}

// newApplication wires stores and services on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.events = postgres.NewPostgresEventStore(db, logger)
	app.goals = postgres.NewPostgresGoalStore(db, logger)
	app.scorer = scoring.NewServiceWithParams(scoring.NewParams(scoringParams(cfg.Scoring)))

	app.engine, err = analytics.NewEngine(app.events, app.goals, app.scorer, analyticsOptions(cfg.Analytics), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics engine: %w", err)
	}

	app.studyService, err = service.NewStudyService(
		app.events,
		app.engine,
		app.scorer,
		retentionWindow(cfg.Retention),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	logger.Debug("application initialized",
		slog.String("driver", cfg.Database.Driver),
		slog.Duration("retention", retentionWindow(cfg.Retention)))
	return app, nil
}

// bootstrap loads configuration, sets up logging to logOut, opens the
// database and builds the application. Callers must call cleanup.
func bootstrap(ctx context.Context, load configLoader, logOut io.Writer) (*application, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.SetupWithWriter(cfg.Server, logOut)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// openDatabase opens the configured database and applies migrations when
// auto_migrate is set.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if _, err := database.Migrate(ctx, db, cfg.Database.Driver, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}

// scoringParams maps scoring configuration onto scoring overrides.
func scoringParams(cfg config.ScoringConfig) scoring.ParamsConfig {
	return scoring.ParamsConfig{
		CorrectPoints:          cfg.CorrectPoints,
		IncorrectPoints:        cfg.IncorrectPoints,
		FastThresholdSeconds:   cfg.FastThresholdSeconds,
		NormalThresholdSeconds: cfg.NormalThresholdSeconds,
		SlowThresholdSeconds:   cfg.SlowThresholdSeconds,
		FastBonus:              cfg.FastBonus,
		NormalBonus:            cfg.NormalBonus,
		SlowBonus:              cfg.SlowBonus,
		StreakThreshold:        cfg.StreakThreshold,
		StreakBonus:            cfg.StreakBonus,
		BeginnerMax:            cfg.BeginnerMax,
		IntermediateMax:        cfg.IntermediateMax,
		AdvancedMax:            cfg.AdvancedMax,
	}
}

// analyticsOptions maps analytics configuration onto engine options. Fields
// left zero take the engine defaults.
func analyticsOptions(cfg config.AnalyticsConfig) analytics.Options {
	return analytics.Options{
		AccuracyThreshold:      cfg.AccuracyThreshold,
		DifficultCardThreshold: cfg.DifficultCardThreshold,
		StreakInsightDays:      cfg.StreakInsightDays,
		MasteryBar:             cfg.MasteryBar,
		ImprovementRate:        cfg.ImprovementRate,
		PeerAverageAccuracy:    cfg.PeerAverageAccuracy,
		TrendChangeThreshold:   cfg.TrendChangeThreshold,
		MaxReviewCards:         cfg.MaxReviewCards,
		DefaultStudyHour:       cfg.DefaultStudyHour,
	}
}

func retentionWindow(cfg config.RetentionConfig) time.Duration {
	return time.Duration(cfg.OutcomeMaxAgeDays) * 24 * time.Hour
}
