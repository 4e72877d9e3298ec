package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/scoring"
	"github.com/phrazzld/scry-analytics/internal/store"
	"golang.org/x/sync/singleflight"
)

// LevelStatus is a user's lifetime stats together with their position in the
// current level tier.
type LevelStatus struct {
	Stats    domain.UserStats      `json:"stats"`
	Progress scoring.LevelProgress `json:"progress"`
}

// StudyService records study sessions and serves analytics built from them.
type StudyService interface {
	// StartSession persists a new in-progress session.
	StartSession(
		ctx context.Context,
		userID, setID uuid.UUID,
		mode domain.StudyMode,
	) (*domain.Session, error)

	// CompleteSession scores the answers of an in-progress session and, in one
	// transaction, completes the session, appends card outcomes and updates the
	// user's stats. Writes for the same user are serialised.
	//
	// Returns store.ErrSessionNotFound for unknown sessions, ErrNotOwned when the
	// session belongs to another user and ErrSessionAlreadyCompleted when the
	// session has already ended.
	CompleteSession(
		ctx context.Context,
		userID, sessionID uuid.UUID,
		answers []domain.Answer,
	) (*scoring.SessionResult, error)

	// Dashboard builds the analytics report for rng. Concurrent requests for
	// the same user and range share one build; callers must treat the returned
	// report as read-only.
	Dashboard(ctx context.Context, userID uuid.UUID, rng analytics.TimeRange) (*analytics.Report, error)

	// LevelStatus returns the user's stats and level progress. Users without a
	// completed session get zeroed beginner stats.
	LevelStatus(ctx context.Context, userID uuid.UUID) (*LevelStatus, error)

	// CleanupOutcomes deletes card outcome records that fall outside the
	// retention window ending at now and returns how many were removed.
	CleanupOutcomes(ctx context.Context, now time.Time) (int64, error)
}

// studyServiceImpl implements the StudyService interface
type studyServiceImpl struct {
	events    store.EventStore
	engine    analytics.Engine
	scorer    scoring.Service
	retention time.Duration
	locks     *userLocks
	reports   singleflight.Group
	now       func() time.Time
	logger    *slog.Logger
}

var _ StudyService = (*studyServiceImpl)(nil)

// NewStudyService creates a new StudyService.
// A nil scorer uses the default scoring parameters. A non-positive retention
// disables outcome cleanup.
func NewStudyService(
	events store.EventStore,
	engine analytics.Engine,
	scorer scoring.Service,
	retention time.Duration,
	logger *slog.Logger,
) (StudyService, error) {
	if events == nil {
		return nil, domain.NewValidationError("events", "cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, domain.NewValidationError("engine", "cannot be nil", domain.ErrValidation)
	}
	if scorer == nil {
		scorer = scoring.NewDefaultService()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		events:    events,
		engine:    engine,
		scorer:    scorer,
		retention: retention,
		locks:     newUserLocks(),
		now:       time.Now,
		logger:    logger.With(slog.String("component", "study_service")),
	}, nil
}

// StartSession implements StudyService.StartSession
func (s *studyServiceImpl) StartSession(
	ctx context.Context,
	userID, setID uuid.UUID,
	mode domain.StudyMode,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := domain.NewSession(userID, setID, mode, s.now())
	if err != nil {
		log.Debug("invalid session request",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.events.SaveSession(ctx, session); err != nil {
		log.Error("failed to save session",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("start_session", "failed to save session", err)
	}

	log.Info("session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("mode", string(mode)))
	return session, nil
}

// CompleteSession implements StudyService.CompleteSession
func (s *studyServiceImpl) CompleteSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answers []domain.Answer,
) (*scoring.SessionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()))

	if err := validateAnswers(answers); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var result scoring.SessionResult
	err := store.RunInTransaction(ctx, s.events.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txEvents := s.events.WithTx(tx)

		session, err := txEvents.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.UserID != userID {
			return ErrNotOwned
		}
		if session.IsCompleted() {
			return ErrSessionAlreadyCompleted
		}

		current, err := txEvents.LoadUserStats(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrUserStatsNotFound) {
			return NewStudyServiceError("complete_session", "failed to load user stats", err)
		}

		history, err := txEvents.LoadCardOutcomes(ctx, userID)
		if err != nil {
			return NewStudyServiceError("complete_session", "failed to load card outcomes", err)
		}

		now := s.now().UTC()
		if now.Before(session.StartedAt) {
			now = session.StartedAt
		}

		result = s.scorer.CompleteSession(session, answers, current)
		if err := session.Complete(now, distinctCards(answers), result.Score.Accuracy); err != nil {
			return err
		}

		outcomes := foldAnswers(history, session, answers, now)
		stats := s.scorer.UpdateUserStats(current, result, now)

		if err := txEvents.SaveSession(ctx, session); err != nil {
			return NewStudyServiceError("complete_session", "failed to save session", err)
		}
		if err := txEvents.AppendCardOutcomes(ctx, outcomes); err != nil {
			return NewStudyServiceError("complete_session", "failed to save card outcomes", err)
		}
		if err := txEvents.SaveUserStats(ctx, &stats); err != nil {
			return NewStudyServiceError("complete_session", "failed to save user stats", err)
		}
		return nil
	})
	if err != nil {
		log.Warn("failed to complete session", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("session completed",
		slog.Int("score", result.Score.TotalScore),
		slog.Int("answers", result.Score.TotalAnswers),
		slog.String("level", string(result.LevelAfter)),
		slog.Bool("leveled_up", result.LeveledUp))
	return &result, nil
}

// validateAnswers rejects answers that cannot be folded into card outcomes.
func validateAnswers(answers []domain.Answer) error {
	for _, a := range answers {
		if a.CardID == uuid.Nil {
			return domain.NewValidationError("card_id", "cannot be empty", domain.ErrInvalidID)
		}
		if a.ResponseSeconds < 0 {
			return domain.NewValidationError("response_seconds", "cannot be negative", domain.ErrValidation)
		}
	}
	return nil
}

func distinctCards(answers []domain.Answer) int {
	seen := make(map[uuid.UUID]struct{}, len(answers))
	for _, a := range answers {
		seen[a.CardID] = struct{}{}
	}
	return len(seen)
}

// foldAnswers turns answers into new outcome records, continuing each card's
// cumulative counters from its latest record in history.
func foldAnswers(
	history []domain.CardOutcome,
	session *domain.Session,
	answers []domain.Answer,
	at time.Time,
) []domain.CardOutcome {
	latest := make(map[uuid.UUID]domain.CardOutcome)
	for _, o := range domain.LatestByCard(history) {
		latest[o.CardID] = o
	}

	outcomes := make([]domain.CardOutcome, 0, len(answers))
	for _, a := range answers {
		var prev *domain.CardOutcome
		if o, ok := latest[a.CardID]; ok {
			prev = &o
		}
		next := domain.NextOutcome(prev, session, a, at)
		latest[a.CardID] = next
		outcomes = append(outcomes, next)
	}
	return outcomes
}

// Dashboard implements StudyService.Dashboard
func (s *studyServiceImpl) Dashboard(
	ctx context.Context,
	userID uuid.UUID,
	rng analytics.TimeRange,
) (*analytics.Report, error) {
	if !rng.Valid() {
		return nil, domain.NewValidationError("range", "must be one of week, month, quarter, all", nil)
	}

	key := userID.String() + ":" + string(rng)
	v, err, shared := s.reports.Do(key, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others.
		return s.engine.GenerateReport(context.WithoutCancel(ctx), userID, rng)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		logger.FromContextOrDefault(ctx, s.logger).Debug("shared dashboard build",
			slog.String("user_id", userID.String()),
			slog.String("range", string(rng)))
	}
	return v.(*analytics.Report), nil
}

// LevelStatus implements StudyService.LevelStatus
func (s *studyServiceImpl) LevelStatus(ctx context.Context, userID uuid.UUID) (*LevelStatus, error) {
	stats, err := s.events.LoadUserStats(ctx, userID)
	switch {
	case errors.Is(err, store.ErrUserStatsNotFound):
		stats = &domain.UserStats{UserID: userID, Level: s.scorer.UserLevel(0)}
	case err != nil:
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewStudyServiceError("level_status", "failed to load user stats", err)
	}

	return &LevelStatus{
		Stats:    *stats,
		Progress: s.scorer.LevelProgress(stats.TotalScore),
	}, nil
}

// CleanupOutcomes implements StudyService.CleanupOutcomes
func (s *studyServiceImpl) CleanupOutcomes(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.retention <= 0 {
		log.Debug("outcome retention disabled")
		return 0, nil
	}

	cutoff := now.UTC().Add(-s.retention)
	removed, err := s.events.DeleteOutcomesBefore(ctx, cutoff)
	if err != nil {
		log.Error("failed to delete expired card outcomes",
			slog.Time("cutoff", cutoff),
			slog.String("error", err.Error()))
		return 0, NewStudyServiceError("cleanup_outcomes", "failed to delete outcomes", err)
	}

	log.Info("deleted expired card outcomes",
		slog.Time("cutoff", cutoff),
		slog.Int64("removed", removed))
	return removed, nil
}
