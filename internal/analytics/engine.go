package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/scoring"
	"github.com/phrazzld/scry-analytics/internal/store"
	"golang.org/x/sync/errgroup"
)

// Engine builds analytics reports.
type Engine interface {
	// GenerateDashboard builds the full-history report for a user.
	// Event store errors are returned unmodified.
	GenerateDashboard(ctx context.Context, userID uuid.UUID) (*Report, error)

	// GenerateReport builds a report whose summary, metrics and patterns are
	// scoped to rng. Event store errors are returned unmodified.
	GenerateReport(ctx context.Context, userID uuid.UUID, rng TimeRange) (*Report, error)

	// Build assembles a report from already-loaded history. It performs no I/O.
	Build(userID uuid.UUID, h History, rng TimeRange) *Report
}

type engineImpl struct {
	events store.EventStore
	goals  store.GoalStore
	scorer scoring.Service
	opts   Options
	now    func() time.Time
	newID  IDFunc
	logger *slog.Logger
}

var _ Engine = (*engineImpl)(nil)

// NewEngine creates an analytics engine reading from events.
// goals may be nil, in which case reports carry no goals. A nil scorer uses
// the default scoring parameters. Zero option fields keep their defaults.
func NewEngine(
	events store.EventStore,
	goals store.GoalStore,
	scorer scoring.Service,
	opts Options,
	logger *slog.Logger,
) (Engine, error) {
	if events == nil {
		return nil, domain.NewValidationError("events", "cannot be nil", domain.ErrValidation)
	}
	if scorer == nil {
		scorer = scoring.NewDefaultService()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &engineImpl{
		events: events,
		goals:  goals,
		scorer: scorer,
		opts:   opts.withDefaults(),
		now:    time.Now,
		newID:  NewUUID,
		logger: logger.With(slog.String("component", "analytics_engine")),
	}, nil
}

// GenerateDashboard implements Engine.
func (e *engineImpl) GenerateDashboard(ctx context.Context, userID uuid.UUID) (*Report, error) {
	return e.GenerateReport(ctx, userID, RangeAll)
}

// GenerateReport implements Engine.
func (e *engineImpl) GenerateReport(ctx context.Context, userID uuid.UUID, rng TimeRange) (*Report, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	h, err := e.load(ctx, userID)
	if err != nil {
		log.Error("failed to load study history",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	report := e.Build(userID, h, rng)

	log.Debug("generated analytics report",
		slog.String("user_id", userID.String()),
		slog.String("range", string(rng)),
		slog.Int("sessions", len(h.Sessions)),
		slog.Int("outcomes", len(h.Outcomes)),
		slog.Int("insights", len(report.Insights)),
		slog.Int("recommendations", len(report.Recommendations)))

	return report, nil
}

// load reads the user's history from the stores concurrently.
func (e *engineImpl) load(ctx context.Context, userID uuid.UUID) (History, error) {
	var h History
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions, err := e.events.LoadSessions(gctx, userID)
		h.Sessions = sessions
		return err
	})
	g.Go(func() error {
		outcomes, err := e.events.LoadCardOutcomes(gctx, userID)
		h.Outcomes = outcomes
		return err
	})
	g.Go(func() error {
		stats, err := e.events.LoadUserStats(gctx, userID)
		if errors.Is(err, store.ErrUserStatsNotFound) {
			return nil
		}
		h.Stats = stats
		return err
	})
	if e.goals != nil {
		g.Go(func() error {
			goals, err := e.goals.LoadGoals(gctx, userID)
			h.Goals = goals
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return History{}, err
	}
	return h, nil
}

// Build implements Engine. Steps run in a fixed order: summary, insights,
// metrics, patterns, goals, recommendations, trends, predictions, comparisons.
func (e *engineImpl) Build(userID uuid.UUID, h History, rng TimeRange) *Report {
	if !rng.Valid() {
		rng = RangeAll
	}
	now := e.now().UTC()
	opts := e.opts

	all := sortedSessions(h.Sessions)
	scoped := filterRange(all, rng, now)
	cards := domain.LatestByCard(h.Outcomes)
	f := newFacts(History{Sessions: all}, cards, now, opts)

	// Predictions feed metrics and recommendations, so they are computed up
	// front and placed in the report in their own slot.
	predictions := Predict(all, cards, now, opts)

	report := &Report{
		UserID:      userID,
		Range:       rng,
		GeneratedAt: now,
	}
	report.Summary = buildSummary(scoped, f, h.Stats, e.scorer, opts)
	report.Insights = generateInsights(f, opts, e.newID)
	report.Metrics = buildMetrics(scoped, f, predictions, opts)
	report.Patterns = DetectPatterns(scoped)
	report.Goals = passGoals(h.Goals)
	report.Recommendations = generateRecommendations(f, predictions, opts, e.newID)
	report.Trends = BuildTrends(all, now, opts)
	report.Predictions = predictions
	report.Comparisons = compare(History{Sessions: all}, f, opts)

	return report
}
