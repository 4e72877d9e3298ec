package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/scoring"
	"github.com/phrazzld/scry-analytics/internal/service"
)

// MockStudyService implements service.StudyService for testing.
// Methods without a configured function return zero values and Err.
type MockStudyService struct {
	StartSessionFn    func(ctx context.Context, userID, setID uuid.UUID, mode domain.StudyMode) (*domain.Session, error)
	CompleteSessionFn func(
		ctx context.Context,
		userID, sessionID uuid.UUID,
		answers []domain.Answer,
	) (*scoring.SessionResult, error)
	DashboardFn       func(ctx context.Context, userID uuid.UUID, rng analytics.TimeRange) (*analytics.Report, error)
	LevelStatusFn     func(ctx context.Context, userID uuid.UUID) (*service.LevelStatus, error)
	CleanupOutcomesFn func(ctx context.Context, now time.Time) (int64, error)

	Err error
}

var _ service.StudyService = (*MockStudyService)(nil)

// StartSession implements the service.StudyService interface
func (m *MockStudyService) StartSession(
	ctx context.Context,
	userID, setID uuid.UUID,
	mode domain.StudyMode,
) (*domain.Session, error) {
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx, userID, setID, mode)
	}
	return nil, m.Err
}

// CompleteSession implements the service.StudyService interface
func (m *MockStudyService) CompleteSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answers []domain.Answer,
) (*scoring.SessionResult, error) {
	if m.CompleteSessionFn != nil {
		return m.CompleteSessionFn(ctx, userID, sessionID, answers)
	}
	return nil, m.Err
}

// Dashboard implements the service.StudyService interface
func (m *MockStudyService) Dashboard(
	ctx context.Context,
	userID uuid.UUID,
	rng analytics.TimeRange,
) (*analytics.Report, error) {
	if m.DashboardFn != nil {
		return m.DashboardFn(ctx, userID, rng)
	}
	return nil, m.Err
}

// LevelStatus implements the service.StudyService interface
func (m *MockStudyService) LevelStatus(ctx context.Context, userID uuid.UUID) (*service.LevelStatus, error) {
	if m.LevelStatusFn != nil {
		return m.LevelStatusFn(ctx, userID)
	}
	return nil, m.Err
}

// CleanupOutcomes implements the service.StudyService interface
func (m *MockStudyService) CleanupOutcomes(ctx context.Context, now time.Time) (int64, error) {
	if m.CleanupOutcomesFn != nil {
		return m.CleanupOutcomesFn(ctx, now)
	}
	return 0, m.Err
}
