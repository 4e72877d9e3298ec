package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// StudyMode identifies the kind of study activity a session was run in.
type StudyMode string

// Known study modes.
const (
	StudyModeFlashcards StudyMode = "flashcards"
	StudyModeLearn      StudyMode = "learn"
	StudyModeTest       StudyMode = "test"
	StudyModeMatch      StudyMode = "match"
	StudyModeWrite      StudyMode = "write"
	StudyModeReview     StudyMode = "review"
)

// Valid reports whether m is one of the known study modes.
func (m StudyMode) Valid() bool {
	switch m {
	case StudyModeFlashcards,
		StudyModeLearn,
		StudyModeTest,
		StudyModeMatch,
		StudyModeWrite,
		StudyModeReview:
		return true
	default:
		return false
	}
}

// Session validation errors
var (
	ErrSessionIDEmpty        = errors.New("session ID cannot be empty")
	ErrSessionUserIDEmpty    = errors.New("session user ID cannot be empty")
	ErrSessionSetIDEmpty     = errors.New("session set ID cannot be empty")
	ErrSessionStartMissing   = errors.New("session start time cannot be zero")
	ErrSessionEndBeforeStart = errors.New("session cannot end before it starts")
	ErrSessionAccuracyRange  = errors.New("session accuracy must be within [0, 1]")
	ErrSessionCardsNegative  = errors.New("session cards studied cannot be negative")

	// ErrSessionCompleted is returned when Complete is called on a session that already ended.
	ErrSessionCompleted = errors.New("session already completed")
)

// Session is one study encounter. It is created when a study activity begins
// and mutated exactly once, at completion. After that it is immutable.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	SetID        uuid.UUID  `json:"set_id"`
	Mode         StudyMode  `json:"mode"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	CardsStudied int        `json:"cards_studied"`
	Accuracy     float64    `json:"accuracy"`
}

// NewSession creates an in-progress session for the given user and set.
func NewSession(userID, setID uuid.UUID, mode StudyMode, startedAt time.Time) (*Session, error) {
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		SetID:     setID,
		Mode:      mode,
		StartedAt: startedAt.UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}
	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}
	if s.SetID == uuid.Nil {
		return ErrSessionSetIDEmpty
	}
	if !s.Mode.Valid() {
		return NewValidationError("mode", "is not a known study mode", ErrInvalidStudyMode)
	}
	if s.StartedAt.IsZero() {
		return ErrSessionStartMissing
	}
	if s.EndedAt != nil && s.EndedAt.Before(s.StartedAt) {
		return ErrSessionEndBeforeStart
	}
	if s.Accuracy < 0 || s.Accuracy > 1 {
		return ErrSessionAccuracyRange
	}
	if s.CardsStudied < 0 {
		return ErrSessionCardsNegative
	}
	return nil
}

// IsCompleted reports whether the session has an end timestamp.
func (s *Session) IsCompleted() bool {
	return s.EndedAt != nil
}

// Complete records the end of the session. It may only be applied once.
// The session is left untouched if the new values are invalid.
func (s *Session) Complete(endedAt time.Time, cardsStudied int, accuracy float64) error {
	if s.IsCompleted() {
		return ErrSessionCompleted
	}

	end := endedAt.UTC()
	next := *s
	next.EndedAt = &end
	next.CardsStudied = cardsStudied
	next.Accuracy = accuracy
	if err := next.Validate(); err != nil {
		return err
	}

	*s = next
	return nil
}

// Duration returns the elapsed study time. In-progress sessions report zero.
func (s *Session) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
