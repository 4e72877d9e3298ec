package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/mocks"
	"github.com/phrazzld/scry-analytics/internal/platform/postgres"
	"github.com/phrazzld/scry-analytics/internal/service"
	"github.com/phrazzld/scry-analytics/internal/store"
	"github.com/phrazzld/scry-analytics/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 4, 7, 19, 0, 0, 0, time.UTC)

// testClock hands out a fixed time that tests can move forward.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newSQLiteService wires the study service to a migrated in-memory database.
func newSQLiteService(t *testing.T) (service.StudyService, store.EventStore, *testClock) {
	t.Helper()

	db := testdb.Open(t)

	events := postgres.NewPostgresEventStore(db, nil)
	engine, err := analytics.NewEngine(events, postgres.NewPostgresGoalStore(db, nil), nil, analytics.Options{}, nil)
	require.NoError(t, err)

	svc, err := service.NewStudyService(events, engine, nil, 90*24*time.Hour, nil)
	require.NoError(t, err)

	clock := &testClock{now: start}
	service.SetClock(svc, clock.Now)
	return svc, events, clock
}

func TestNewStudyService(t *testing.T) {
	t.Parallel()

	events := &mocks.TestifyMockEventStore{}
	engine := &mocks.MockAnalyticsEngine{}

	t.Run("valid dependencies", func(t *testing.T) {
		svc, err := service.NewStudyService(events, engine, nil, 0, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("nil event store", func(t *testing.T) {
		svc, err := service.NewStudyService(nil, engine, nil, 0, nil)
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "events")
	})

	t.Run("nil engine", func(t *testing.T) {
		svc, err := service.NewStudyService(events, nil, nil, 0, nil)
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "engine")
	})
}

func TestStudyService_StartSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, events, _ := newSQLiteService(t)
	userID := uuid.New()
	setID := uuid.New()

	session, err := svc.StartSession(ctx, userID, setID, domain.StudyModeFlashcards)
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, setID, session.SetID)
	assert.True(t, session.StartedAt.Equal(start))
	assert.False(t, session.IsCompleted())

	stored, err := events.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
	assert.Equal(t, domain.StudyModeFlashcards, stored.Mode)

	t.Run("unknown mode", func(t *testing.T) {
		_, err := svc.StartSession(ctx, userID, setID, domain.StudyMode("cram"))
		assert.ErrorIs(t, err, domain.ErrInvalidStudyMode)
	})

	t.Run("store failure", func(t *testing.T) {
		failing := &mocks.TestifyMockEventStore{}
		dbErr := errors.New("connection refused")
		failing.On("SaveSession", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(dbErr)

		svc, err := service.NewStudyService(failing, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
		require.NoError(t, err)

		_, err = svc.StartSession(ctx, userID, setID, domain.StudyModeTest)
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)

		var svcErr *service.StudyServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "start_session", svcErr.Operation)
	})
}

func TestStudyService_CompleteSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, events, clock := newSQLiteService(t)
	userID := uuid.New()
	cardA := uuid.New()
	cardB := uuid.New()

	session, err := svc.StartSession(ctx, userID, uuid.New(), domain.StudyModeLearn)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	answers := []domain.Answer{
		{CardID: cardA, Correct: true, ResponseSeconds: 2},
		{CardID: cardB, Correct: true, ResponseSeconds: 4},
		{CardID: cardA, Correct: false, ResponseSeconds: 6},
	}

	result, err := svc.CompleteSession(ctx, userID, session.ID, answers)
	require.NoError(t, err)

	// 10+5 fast, 10+3 normal, incorrect floors at zero
	assert.Equal(t, 28, result.Score.TotalScore)
	assert.Equal(t, 2, result.Score.CorrectAnswers)
	assert.InDelta(t, 2.0/3.0, result.Score.Accuracy, 1e-9)
	assert.Equal(t, 0, result.PreviousTotal)
	assert.Equal(t, 28, result.NewTotal)
	assert.Equal(t, domain.LevelBeginner, result.LevelAfter)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, session.ID, result.SessionID)
	assert.Equal(t, userID, result.UserID)

	t.Run("session is completed", func(t *testing.T) {
		stored, err := events.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.True(t, stored.IsCompleted())
		assert.Equal(t, 10*time.Minute, stored.Duration())
		assert.Equal(t, 2, stored.CardsStudied)
		assert.InDelta(t, 2.0/3.0, stored.Accuracy, 1e-9)
	})

	t.Run("outcomes are cumulative per card", func(t *testing.T) {
		outcomes, err := events.LoadCardOutcomes(ctx, userID)
		require.NoError(t, err)
		require.Len(t, outcomes, 3)

		latest := domain.LatestByCard(outcomes)
		require.Len(t, latest, 2)
		for _, o := range latest {
			switch o.CardID {
			case cardA:
				assert.Equal(t, 2, o.Attempts)
				assert.Equal(t, 1, o.CorrectAttempts)
				assert.InDelta(t, 4.0, o.AverageResponseSeconds, 1e-9)
				assert.False(t, o.Correct)
			case cardB:
				assert.Equal(t, 1, o.Attempts)
				assert.Equal(t, 1, o.CorrectAttempts)
			default:
				t.Fatalf("unexpected card %s", o.CardID)
			}
		}
	})

	t.Run("stats are created", func(t *testing.T) {
		stats, err := events.LoadUserStats(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 28, stats.TotalScore)
		assert.Equal(t, 1, stats.TotalSessions)
		assert.Equal(t, 2, stats.CurrentStreak)
		assert.Equal(t, domain.LevelBeginner, stats.Level)
	})

	t.Run("second completion is rejected", func(t *testing.T) {
		_, err := svc.CompleteSession(ctx, userID, session.ID, answers)
		assert.ErrorIs(t, err, service.ErrSessionAlreadyCompleted)

		stats, err := events.LoadUserStats(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 28, stats.TotalScore, "rejected completion must not change stats")
	})

	t.Run("another user's session", func(t *testing.T) {
		_, err := svc.CompleteSession(ctx, uuid.New(), session.ID, answers)
		assert.ErrorIs(t, err, service.ErrNotOwned)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.CompleteSession(ctx, userID, uuid.New(), answers)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("next session continues counters", func(t *testing.T) {
		next, err := svc.StartSession(ctx, userID, uuid.New(), domain.StudyModeReview)
		require.NoError(t, err)
		clock.Advance(5 * time.Minute)

		result, err := svc.CompleteSession(ctx, userID, next.ID, []domain.Answer{
			{CardID: cardA, Correct: true, ResponseSeconds: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 28, result.PreviousTotal)
		assert.Equal(t, 43, result.NewTotal)

		outcomes, err := events.LoadCardOutcomes(ctx, userID)
		require.NoError(t, err)
		for _, o := range domain.LatestByCard(outcomes) {
			if o.CardID == cardA {
				assert.Equal(t, 3, o.Attempts)
				assert.Equal(t, 2, o.CorrectAttempts)
			}
		}

		stats, err := events.LoadUserStats(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 43, stats.TotalScore)
		assert.Equal(t, 2, stats.TotalSessions)
		assert.InDelta(t, 21.5, stats.AverageScore, 1e-9)
	})
}

func TestStudyService_CompleteSession_EmptyAnswers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, events, _ := newSQLiteService(t)
	userID := uuid.New()

	session, err := svc.StartSession(ctx, userID, uuid.New(), domain.StudyModeMatch)
	require.NoError(t, err)

	result, err := svc.CompleteSession(ctx, userID, session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score.TotalScore)
	assert.Zero(t, result.Score.Accuracy)

	stored, err := events.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	assert.Zero(t, stored.CardsStudied)
}

func TestStudyService_CompleteSession_InvalidAnswers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answer  domain.Answer
		wantErr error
	}{
		{
			name:    "missing card",
			answer:  domain.Answer{Correct: true, ResponseSeconds: 1},
			wantErr: domain.ErrInvalidID,
		},
		{
			name:    "negative latency",
			answer:  domain.Answer{CardID: uuid.New(), ResponseSeconds: -1},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			events := &mocks.TestifyMockEventStore{}
			svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
			require.NoError(t, err)

			_, err = svc.CompleteSession(context.Background(), uuid.New(), uuid.New(), []domain.Answer{tc.answer})
			assert.ErrorIs(t, err, tc.wantErr)
			events.AssertNotCalled(t, "DB")
		})
	}
}

func TestStudyService_CompleteSession_RollsBackOnWriteFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	userID := uuid.New()
	session, err := domain.NewSession(userID, uuid.New(), domain.StudyModeWrite, start)
	require.NoError(t, err)

	writeErr := errors.New("disk full")
	events := &mocks.TestifyMockEventStore{}
	events.On("DB").Return(db)
	events.On("GetSession", mock.Anything, session.ID).Return(session, nil)
	events.On("LoadUserStats", mock.Anything, userID).Return(nil, store.ErrUserStatsNotFound)
	events.On("LoadCardOutcomes", mock.Anything, userID).Return([]domain.CardOutcome{}, nil)
	events.On("SaveSession", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	events.On("AppendCardOutcomes", mock.Anything, mock.Anything).Return(writeErr)

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
	require.NoError(t, err)
	service.SetClock(svc, func() time.Time { return start.Add(time.Minute) })

	_, err = svc.CompleteSession(ctx, userID, session.ID, []domain.Answer{
		{CardID: uuid.New(), Correct: true, ResponseSeconds: 2},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)

	var svcErr *service.StudyServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "complete_session", svcErr.Operation)

	events.AssertNotCalled(t, "SaveUserStats", mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestStudyService_CompleteSession_SerialisesPerUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, events, _ := newSQLiteService(t)
	userID := uuid.New()

	const sessions = 5
	ids := make([]uuid.UUID, sessions)
	for i := range ids {
		s, err := svc.StartSession(ctx, userID, uuid.New(), domain.StudyModeFlashcards)
		require.NoError(t, err)
		ids[i] = s.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, sessions)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := svc.CompleteSession(ctx, userID, id, []domain.Answer{
				{CardID: uuid.New(), Correct: true, ResponseSeconds: 20},
			})
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := events.LoadUserStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, sessions, stats.TotalSessions)
	assert.Equal(t, sessions*10, stats.TotalScore)
}

func TestStudyService_Dashboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("report reflects completed sessions", func(t *testing.T) {
		t.Parallel()

		svc, _, clock := newSQLiteService(t)
		userID := uuid.New()

		session, err := svc.StartSession(ctx, userID, uuid.New(), domain.StudyModeTest)
		require.NoError(t, err)
		clock.Advance(20 * time.Minute)
		_, err = svc.CompleteSession(ctx, userID, session.ID, []domain.Answer{
			{CardID: uuid.New(), Correct: true, ResponseSeconds: 2},
			{CardID: uuid.New(), Correct: true, ResponseSeconds: 2},
		})
		require.NoError(t, err)

		report, err := svc.Dashboard(ctx, userID, analytics.RangeAll)
		require.NoError(t, err)
		assert.Equal(t, userID, report.UserID)
		assert.Equal(t, 1, report.Summary.TotalSessions)
		assert.Equal(t, 30, report.Summary.TotalScore)
		assert.Equal(t, 2, report.Summary.CardsTracked)
	})

	t.Run("invalid range", func(t *testing.T) {
		t.Parallel()

		engine := &mocks.MockAnalyticsEngine{}
		svc, err := service.NewStudyService(&mocks.TestifyMockEventStore{}, engine, nil, 0, nil)
		require.NoError(t, err)

		_, err = svc.Dashboard(ctx, uuid.New(), analytics.TimeRange("decade"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("engine error is returned", func(t *testing.T) {
		t.Parallel()

		loadErr := errors.New("timeout")
		engine := &mocks.MockAnalyticsEngine{Err: loadErr}
		svc, err := service.NewStudyService(&mocks.TestifyMockEventStore{}, engine, nil, 0, nil)
		require.NoError(t, err)

		_, err = svc.Dashboard(ctx, uuid.New(), analytics.RangeWeek)
		assert.ErrorIs(t, err, loadErr)
	})

	t.Run("concurrent requests share one build", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		started := make(chan struct{})
		release := make(chan struct{})
		userID := uuid.New()

		engine := &mocks.MockAnalyticsEngine{
			GenerateReportFn: func(ctx context.Context, id uuid.UUID, rng analytics.TimeRange) (*analytics.Report, error) {
				if calls.Add(1) == 1 {
					close(started)
				}
				<-release
				return &analytics.Report{UserID: id, Range: rng}, nil
			},
		}
		svc, err := service.NewStudyService(&mocks.TestifyMockEventStore{}, engine, nil, 0, nil)
		require.NoError(t, err)

		results := make(chan *analytics.Report, 2)
		go func() {
			r, _ := svc.Dashboard(ctx, userID, analytics.RangeMonth)
			results <- r
		}()
		<-started
		go func() {
			r, _ := svc.Dashboard(ctx, userID, analytics.RangeMonth)
			results <- r
		}()

		time.Sleep(50 * time.Millisecond)
		close(release)

		first, second := <-results, <-results
		require.NotNil(t, first)
		assert.Same(t, first, second)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestStudyService_LevelStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("new user", func(t *testing.T) {
		t.Parallel()

		events := &mocks.TestifyMockEventStore{}
		events.On("LoadUserStats", mock.Anything, userID).Return(nil, store.ErrUserStatsNotFound)
		svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
		require.NoError(t, err)

		status, err := svc.LevelStatus(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, status.Stats.UserID)
		assert.Equal(t, domain.LevelBeginner, status.Stats.Level)
		assert.Equal(t, 101, status.Progress.PointsToNext)
		assert.Zero(t, status.Progress.ProgressPercent)
	})

	t.Run("existing stats", func(t *testing.T) {
		t.Parallel()

		events := &mocks.TestifyMockEventStore{}
		events.On("LoadUserStats", mock.Anything, userID).Return(&domain.UserStats{
			UserID:     userID,
			TotalScore: 200,
			Level:      domain.LevelIntermediate,
		}, nil)
		svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
		require.NoError(t, err)

		status, err := svc.LevelStatus(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 200, status.Stats.TotalScore)
		assert.Equal(t, domain.LevelIntermediate, status.Progress.CurrentLevel)
		assert.InDelta(t, 50.0, status.Progress.ProgressPercent, 1e-9)
		assert.Equal(t, 101, status.Progress.PointsToNext)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("connection reset")
		events := &mocks.TestifyMockEventStore{}
		events.On("LoadUserStats", mock.Anything, userID).Return(nil, dbErr)
		svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
		require.NoError(t, err)

		_, err = svc.LevelStatus(ctx, userID)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestStudyService_CleanupOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC)

	t.Run("deletes outside retention", func(t *testing.T) {
		t.Parallel()

		events := &mocks.TestifyMockEventStore{}
		events.On("DeleteOutcomesBefore", mock.Anything, now.Add(-30*24*time.Hour)).Return(int64(7), nil)
		svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 30*24*time.Hour, nil)
		require.NoError(t, err)

		removed, err := svc.CleanupOutcomes(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(7), removed)
		events.AssertExpectations(t)
	})

	t.Run("retention disabled", func(t *testing.T) {
		t.Parallel()

		events := &mocks.TestifyMockEventStore{}
		svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, 0, nil)
		require.NoError(t, err)

		removed, err := svc.CleanupOutcomes(ctx, now)
		require.NoError(t, err)
		assert.Zero(t, removed)
		events.AssertNotCalled(t, "DeleteOutcomesBefore", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("locked")
		events := &mocks.TestifyMockEventStore{}
		events.On("DeleteOutcomesBefore", mock.Anything, mock.Anything).Return(int64(0), dbErr)
		svc, err := service.NewStudyService(events, &mocks.MockAnalyticsEngine{}, nil, time.Hour, nil)
		require.NoError(t, err)

		_, err = svc.CleanupOutcomes(ctx, now)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("sqlite store", func(t *testing.T) {
		t.Parallel()

		svc, events, clock := newSQLiteService(t)
		userID := uuid.New()
		session, err := svc.StartSession(ctx, userID, uuid.New(), domain.StudyModeReview)
		require.NoError(t, err)
		_, err = svc.CompleteSession(ctx, userID, session.ID, []domain.Answer{
			{CardID: uuid.New(), Correct: true, ResponseSeconds: 1},
		})
		require.NoError(t, err)

		removed, err := svc.CleanupOutcomes(ctx, clock.Now().Add(89*24*time.Hour))
		require.NoError(t, err)
		assert.Zero(t, removed)

		removed, err = svc.CleanupOutcomes(ctx, clock.Now().Add(91*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		outcomes, err := events.LoadCardOutcomes(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, outcomes)
	})
}
