package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreAnswer(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	tests := []struct {
		name        string
		correct     bool
		latency     float64
		priorStreak int
		want        AnswerScore
	}{
		{
			name:    "correct fast",
			correct: true, latency: 1.2,
			want: AnswerScore{Base: 10, TimeBonus: 5, Total: 15},
		},
		{
			name:    "correct normal",
			correct: true, latency: 3,
			want: AnswerScore{Base: 10, TimeBonus: 3, Total: 13},
		},
		{
			name:    "correct slow",
			correct: true, latency: 9.99,
			want: AnswerScore{Base: 10, TimeBonus: 1, Total: 11},
		},
		{
			name:    "correct timeout",
			correct: true, latency: 10,
			want: AnswerScore{Base: 10, Total: 10},
		},
		{
			name:    "fifth correct in a row earns streak bonus",
			correct: true, latency: 1, priorStreak: 4,
			want: AnswerScore{Base: 10, TimeBonus: 5, StreakBonus: 10, Total: 25},
		},
		{
			name:    "tenth correct in a row earns streak bonus",
			correct: true, latency: 1, priorStreak: 9,
			want: AnswerScore{Base: 10, TimeBonus: 5, StreakBonus: 10, Total: 25},
		},
		{
			name:    "sixth correct earns no streak bonus",
			correct: true, latency: 1, priorStreak: 5,
			want: AnswerScore{Base: 10, TimeBonus: 5, Total: 15},
		},
		{
			name:    "incorrect is floored at zero",
			correct: false, latency: 1, priorStreak: 4,
			want: AnswerScore{Base: -5, Total: 0},
		},
		{
			name:    "negative latency counts as fast",
			correct: true, latency: -3,
			want: AnswerScore{Base: 10, TimeBonus: 5, Total: 15},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, svc.ScoreAnswer(tc.correct, tc.latency, tc.priorStreak))
		})
	}
}

func TestScoreAnswer_Properties(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	svc := NewServiceWithParams(params)

	for streak := 4; streak < 100; streak += params.StreakThreshold {
		for _, latency := range []float64{0, 0.5, 1.7, 2.99} {
			got := svc.ScoreAnswer(true, latency, streak)
			assert.Equal(t, params.CorrectPoints+params.FastBonus+params.StreakBonus, got.Total,
				"streak %d latency %v", streak, latency)
		}
	}

	for streak := 0; streak < 20; streak++ {
		for _, latency := range []float64{0, 4, 12} {
			assert.GreaterOrEqual(t, svc.ScoreAnswer(false, latency, streak).Total, 0)
		}
	}
}

func TestScoreSession(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		got := svc.ScoreSession(nil)
		assert.Equal(t, SessionScore{}, got)
	})

	t.Run("streak resets on a miss", func(t *testing.T) {
		t.Parallel()
		answers := []domain.Answer{
			{Correct: true, ResponseSeconds: 1},
			{Correct: true, ResponseSeconds: 1},
			{Correct: true, ResponseSeconds: 1},
			{Correct: false, ResponseSeconds: 6},
			{Correct: true, ResponseSeconds: 4},
			{Correct: true, ResponseSeconds: 4},
		}

		got := svc.ScoreSession(answers)

		assert.Equal(t, 15*3+0+13*2, got.TotalScore)
		assert.Equal(t, 5, got.CorrectAnswers)
		assert.Equal(t, 6, got.TotalAnswers)
		assert.InDelta(t, 5.0/6.0, got.Accuracy, 1e-9)
		assert.InDelta(t, 17.0/6.0, got.AverageResponseSeconds, 1e-9)
		assert.Equal(t, 3, got.MaxStreak)
		assert.Equal(t, 5*3+3*2, got.TimeBonusTotal)
		assert.Equal(t, 0, got.StreakBonusTotal)
	})

	t.Run("streak bonus is itemised", func(t *testing.T) {
		t.Parallel()
		answers := make([]domain.Answer, 10)
		for i := range answers {
			answers[i] = domain.Answer{Correct: true, ResponseSeconds: 2}
		}

		got := svc.ScoreSession(answers)

		assert.Equal(t, 10, got.MaxStreak)
		assert.Equal(t, 20, got.StreakBonusTotal)
		assert.Equal(t, 50, got.TimeBonusTotal)
		assert.Equal(t, 170, got.TotalScore)
		assert.InDelta(t, 1.0, got.Accuracy, 1e-9)
	})
}

func TestCompleteSession(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	session, err := domain.NewSession(uuid.New(), uuid.New(), domain.StudyModeFlashcards, time.Now())
	require.NoError(t, err)

	answers := []domain.Answer{
		{Correct: true, ResponseSeconds: 1},
		{Correct: true, ResponseSeconds: 1},
	}

	t.Run("first session", func(t *testing.T) {
		t.Parallel()
		result := svc.CompleteSession(session, answers, nil)

		assert.Equal(t, session.ID, result.SessionID)
		assert.Equal(t, session.UserID, result.UserID)
		assert.Equal(t, 0, result.PreviousTotal)
		assert.Equal(t, 30, result.NewTotal)
		assert.Equal(t, domain.LevelBeginner, result.LevelBefore)
		assert.Equal(t, domain.LevelBeginner, result.LevelAfter)
		assert.False(t, result.LeveledUp)
	})

	t.Run("crossing a threshold levels up", func(t *testing.T) {
		t.Parallel()
		current := &domain.UserStats{UserID: session.UserID, TotalScore: 95, TotalSessions: 3, Level: domain.LevelBeginner}

		result := svc.CompleteSession(session, answers, current)

		assert.Equal(t, 95, result.PreviousTotal)
		assert.Equal(t, 125, result.NewTotal)
		assert.Equal(t, domain.LevelIntermediate, result.LevelAfter)
		assert.True(t, result.LeveledUp)
		require.NotNil(t, result.Progress.NextLevel)
		assert.Equal(t, domain.LevelAdvanced, *result.Progress.NextLevel)
	})
}

func TestUpdateUserStats(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("first session creates stats", func(t *testing.T) {
		t.Parallel()
		result := SessionResult{UserID: userID, Score: SessionScore{TotalScore: 40, MaxStreak: 4}}

		stats := svc.UpdateUserStats(nil, result, now)

		assert.Equal(t, userID, stats.UserID)
		assert.Equal(t, 40, stats.TotalScore)
		assert.Equal(t, 1, stats.TotalSessions)
		assert.InDelta(t, 40.0, stats.AverageScore, 1e-9)
		assert.Equal(t, 4, stats.CurrentStreak)
		assert.Equal(t, domain.LevelBeginner, stats.Level)
		assert.Equal(t, now, stats.CreatedAt)
		assert.Equal(t, now, stats.UpdatedAt)
		assert.NoError(t, stats.Validate())
	})

	t.Run("running average and max streak", func(t *testing.T) {
		t.Parallel()
		created := now.Add(-48 * time.Hour)
		current := &domain.UserStats{
			UserID:        userID,
			TotalScore:    280,
			TotalSessions: 4,
			AverageScore:  70,
			CurrentStreak: 8,
			Level:         domain.LevelIntermediate,
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		result := SessionResult{UserID: userID, Score: SessionScore{TotalScore: 120, MaxStreak: 3}}

		stats := svc.UpdateUserStats(current, result, now)

		assert.Equal(t, 400, stats.TotalScore)
		assert.Equal(t, 5, stats.TotalSessions)
		assert.InDelta(t, 80.0, stats.AverageScore, 1e-9)
		assert.Equal(t, 8, stats.CurrentStreak)
		assert.Equal(t, domain.LevelAdvanced, stats.Level)
		assert.Equal(t, created, stats.CreatedAt)
		assert.Equal(t, now, stats.UpdatedAt)

		// input untouched
		assert.Equal(t, 280, current.TotalScore)
		assert.Equal(t, 4, current.TotalSessions)
	})
}
