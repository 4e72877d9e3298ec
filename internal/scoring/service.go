package scoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// AnswerScore is the itemised score of a single answer.
type AnswerScore struct {
	Base        int `json:"base"`
	TimeBonus   int `json:"time_bonus"`
	StreakBonus int `json:"streak_bonus"`
	Total       int `json:"total"`
}

// SessionScore aggregates the answers of one session.
type SessionScore struct {
	TotalScore             int     `json:"total_score"`
	CorrectAnswers         int     `json:"correct_answers"`
	TotalAnswers           int     `json:"total_answers"`
	Accuracy               float64 `json:"accuracy"`
	AverageResponseSeconds float64 `json:"average_response_seconds"`
	MaxStreak              int     `json:"max_streak"`
	TimeBonusTotal         int     `json:"time_bonus_total"`
	StreakBonusTotal       int     `json:"streak_bonus_total"`
}

// SessionResult is the outcome of completing a session, with enough level
// information for the caller to show level-up feedback.
type SessionResult struct {
	SessionID     uuid.UUID     `json:"session_id"`
	UserID        uuid.UUID     `json:"user_id"`
	Score         SessionScore  `json:"score"`
	PreviousTotal int           `json:"previous_total"`
	NewTotal      int           `json:"new_total"`
	LevelBefore   domain.Level  `json:"level_before"`
	LevelAfter    domain.Level  `json:"level_after"`
	LeveledUp     bool          `json:"leveled_up"`
	Progress      LevelProgress `json:"progress"`
}

// Service defines the interface for scoring operations
type Service interface {
	// ScoreAnswer scores one answer given the number of consecutive correct
	// answers that preceded it.
	ScoreAnswer(correct bool, responseSeconds float64, priorStreak int) AnswerScore

	// ScoreSession replays ScoreAnswer across answers in order.
	ScoreSession(answers []domain.Answer) SessionScore

	// UserLevel maps a total score to its tier.
	UserLevel(totalScore int) domain.Level

	// LevelProgress reports the position of totalScore within its tier.
	LevelProgress(totalScore int) LevelProgress

	// CompleteSession scores a session and compares levels before and after.
	// current may be nil for a user's first session.
	CompleteSession(session *domain.Session, answers []domain.Answer, current *domain.UserStats) SessionResult

	// UpdateUserStats folds result into current, creating a fresh record when
	// current is nil. The input is never modified.
	UpdateUserStats(current *domain.UserStats, result SessionResult, now time.Time) domain.UserStats
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

var _ Service = (*defaultService)(nil)

// NewDefaultService creates a new scoring service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scoring service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// ScoreAnswer implements Service.
func (s *defaultService) ScoreAnswer(correct bool, responseSeconds float64, priorStreak int) AnswerScore {
	if !correct {
		return AnswerScore{
			Base:  s.params.IncorrectPoints,
			Total: max(0, s.params.IncorrectPoints),
		}
	}

	score := AnswerScore{
		Base:      s.params.CorrectPoints,
		TimeBonus: s.timeBonus(responseSeconds),
	}

	if priorStreak < 0 {
		priorStreak = 0
	}
	running := priorStreak + 1
	if s.params.StreakThreshold > 0 && running%s.params.StreakThreshold == 0 {
		score.StreakBonus = s.params.StreakBonus
	}

	score.Total = max(0, score.Base+score.TimeBonus+score.StreakBonus)
	return score
}

// timeBonus maps a latency to its band bonus. Negative latencies are treated as instant.
func (s *defaultService) timeBonus(responseSeconds float64) int {
	latency := seconds(max(0, responseSeconds))
	switch {
	case latency < s.params.FastThreshold:
		return s.params.FastBonus
	case latency < s.params.NormalThreshold:
		return s.params.NormalBonus
	case latency < s.params.SlowThreshold:
		return s.params.SlowBonus
	default:
		return 0
	}
}

// ScoreSession implements Service.
func (s *defaultService) ScoreSession(answers []domain.Answer) SessionScore {
	var result SessionScore
	if len(answers) == 0 {
		return result
	}

	var streak int
	var totalLatency float64
	for _, a := range answers {
		score := s.ScoreAnswer(a.Correct, a.ResponseSeconds, streak)

		result.TotalScore += score.Total
		result.TimeBonusTotal += score.TimeBonus
		result.StreakBonusTotal += score.StreakBonus
		totalLatency += max(0, a.ResponseSeconds)

		if a.Correct {
			result.CorrectAnswers++
			streak++
			result.MaxStreak = max(result.MaxStreak, streak)
		} else {
			streak = 0
		}
	}

	result.TotalAnswers = len(answers)
	result.Accuracy = float64(result.CorrectAnswers) / float64(result.TotalAnswers)
	result.AverageResponseSeconds = totalLatency / float64(result.TotalAnswers)
	return result
}

// CompleteSession implements Service.
func (s *defaultService) CompleteSession(
	session *domain.Session,
	answers []domain.Answer,
	current *domain.UserStats,
) SessionResult {
	score := s.ScoreSession(answers)

	var previous int
	if current != nil {
		previous = current.TotalScore
	}
	newTotal := previous + score.TotalScore

	before := s.UserLevel(previous)
	after := s.UserLevel(newTotal)

	result := SessionResult{
		Score:         score,
		PreviousTotal: previous,
		NewTotal:      newTotal,
		LevelBefore:   before,
		LevelAfter:    after,
		LeveledUp:     after.Rank() > before.Rank(),
		Progress:      s.LevelProgress(newTotal),
	}
	if session != nil {
		result.SessionID = session.ID
		result.UserID = session.UserID
	}
	return result
}

// UpdateUserStats implements Service.
func (s *defaultService) UpdateUserStats(
	current *domain.UserStats,
	result SessionResult,
	now time.Time,
) domain.UserStats {
	now = now.UTC()

	if current == nil {
		return domain.UserStats{
			UserID:        result.UserID,
			TotalScore:    result.Score.TotalScore,
			TotalSessions: 1,
			AverageScore:  float64(result.Score.TotalScore),
			CurrentStreak: result.Score.MaxStreak,
			Level:         s.UserLevel(result.Score.TotalScore),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	next := *current
	next.TotalScore = current.TotalScore + result.Score.TotalScore
	next.TotalSessions = current.TotalSessions + 1
	next.AverageScore = (current.AverageScore*float64(current.TotalSessions) + float64(result.Score.TotalScore)) /
		float64(next.TotalSessions)
	next.CurrentStreak = max(current.CurrentStreak, result.Score.MaxStreak)
	next.Level = s.UserLevel(next.TotalScore)
	next.UpdatedAt = now
	return next
}
