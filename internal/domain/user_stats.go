package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Level is a user's progression tier.
type Level string

// Level tiers in ascending order.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

// Levels lists every tier from lowest to highest.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}

// Rank returns the zero-based position of the level, or -1 for unknown values.
func (l Level) Rank() int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	case LevelExpert:
		return 3
	default:
		return -1
	}
}

// Valid reports whether l is a known tier.
func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// UserStats validation errors
var (
	ErrStatsUserIDEmpty   = errors.New("user stats user ID cannot be empty")
	ErrStatsNegativeScore = errors.New("user stats score cannot be negative")
	ErrStatsNegativeCount = errors.New("user stats counters cannot be negative")
)

// UserStats aggregates a user's lifetime performance. It is mutated once per
// completed session by the scoring engine.
type UserStats struct {
	UserID        uuid.UUID `json:"user_id"`
	TotalScore    int       `json:"total_score"`
	TotalSessions int       `json:"total_sessions"`
	AverageScore  float64   `json:"average_score"`
	CurrentStreak int       `json:"current_streak"`
	Level         Level     `json:"level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks if the UserStats has valid data.
func (s *UserStats) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrStatsUserIDEmpty
	}
	if s.TotalScore < 0 || s.AverageScore < 0 {
		return ErrStatsNegativeScore
	}
	if s.TotalSessions < 0 || s.CurrentStreak < 0 {
		return ErrStatsNegativeCount
	}
	if !s.Level.Valid() {
		return NewValidationError("level", "is not a known level", ErrInvalidLevel)
	}
	return nil
}
