package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockEventStore is a mock of store.EventStore interface for use with testify/mock
type TestifyMockEventStore struct {
	mock.Mock
}

var _ store.EventStore = (*TestifyMockEventStore)(nil)

// LoadSessions is a mock implementation of store.EventStore.LoadSessions
func (m *TestifyMockEventStore) LoadSessions(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, userID)
	if sessions, ok := args.Get(0).([]domain.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

// LoadCardOutcomes is a mock implementation of store.EventStore.LoadCardOutcomes
func (m *TestifyMockEventStore) LoadCardOutcomes(ctx context.Context, userID uuid.UUID) ([]domain.CardOutcome, error) {
	args := m.Called(ctx, userID)
	if outcomes, ok := args.Get(0).([]domain.CardOutcome); ok {
		return outcomes, args.Error(1)
	}
	return nil, args.Error(1)
}

// LoadUserStats is a mock implementation of store.EventStore.LoadUserStats
func (m *TestifyMockEventStore) LoadUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	args := m.Called(ctx, userID)
	if stats, ok := args.Get(0).(*domain.UserStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetSession is a mock implementation of store.EventStore.GetSession
func (m *TestifyMockEventStore) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if session, ok := args.Get(0).(*domain.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

// SaveSession is a mock implementation of store.EventStore.SaveSession
func (m *TestifyMockEventStore) SaveSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// SaveUserStats is a mock implementation of store.EventStore.SaveUserStats
func (m *TestifyMockEventStore) SaveUserStats(ctx context.Context, stats *domain.UserStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

// AppendCardOutcomes is a mock implementation of store.EventStore.AppendCardOutcomes
func (m *TestifyMockEventStore) AppendCardOutcomes(ctx context.Context, outcomes []domain.CardOutcome) error {
	args := m.Called(ctx, outcomes)
	return args.Error(0)
}

// DeleteOutcomesBefore is a mock implementation of store.EventStore.DeleteOutcomesBefore
func (m *TestifyMockEventStore) DeleteOutcomesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// WithTx is a mock implementation of store.EventStore.WithTx.
// The mock returns itself so expectations keep applying inside transactions.
func (m *TestifyMockEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return m
}

// DB is a mock implementation of store.EventStore.DB
func (m *TestifyMockEventStore) DB() *sql.DB {
	args := m.Called()
	if db, ok := args.Get(0).(*sql.DB); ok {
		return db
	}
	return nil
}

// TestifyMockGoalStore is a mock of store.GoalStore interface for use with testify/mock
type TestifyMockGoalStore struct {
	mock.Mock
}

var _ store.GoalStore = (*TestifyMockGoalStore)(nil)

// LoadGoals is a mock implementation of store.GoalStore.LoadGoals
func (m *TestifyMockGoalStore) LoadGoals(ctx context.Context, userID uuid.UUID) ([]domain.LearningGoal, error) {
	args := m.Called(ctx, userID)
	if goals, ok := args.Get(0).([]domain.LearningGoal); ok {
		return goals, args.Error(1)
	}
	return nil, args.Error(1)
}
