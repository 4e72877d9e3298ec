package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CardOutcome validation errors
var (
	ErrOutcomeCardIDEmpty     = errors.New("card outcome card ID cannot be empty")
	ErrOutcomeUserIDEmpty     = errors.New("card outcome user ID cannot be empty")
	ErrOutcomeSessionIDEmpty  = errors.New("card outcome session ID cannot be empty")
	ErrOutcomeNegativeCounts  = errors.New("card outcome attempt counts cannot be negative")
	ErrOutcomeCorrectExceeded = errors.New("correct attempts cannot exceed attempts")
	ErrOutcomeNegativeLatency = errors.New("response time cannot be negative")
)

// CardOutcome is one historical record of a card being answered inside a session.
// Attempt counters are cumulative for the card, so the most recent record for a
// card carries its full history.
type CardOutcome struct {
	CardID                 uuid.UUID `json:"card_id"`
	UserID                 uuid.UUID `json:"user_id"`
	SessionID              uuid.UUID `json:"session_id"`
	SetID                  uuid.UUID `json:"set_id"`
	Correct                bool      `json:"correct"`
	ResponseSeconds        float64   `json:"response_seconds"`
	Attempts               int       `json:"attempts"`
	CorrectAttempts        int       `json:"correct_attempts"`
	LastReviewedAt         time.Time `json:"last_reviewed_at"`
	AverageResponseSeconds float64   `json:"average_response_seconds"`
}

// Validate checks if the CardOutcome has valid data.
func (o *CardOutcome) Validate() error {
	if o.CardID == uuid.Nil {
		return ErrOutcomeCardIDEmpty
	}
	if o.UserID == uuid.Nil {
		return ErrOutcomeUserIDEmpty
	}
	if o.SessionID == uuid.Nil {
		return ErrOutcomeSessionIDEmpty
	}
	if o.Attempts < 0 || o.CorrectAttempts < 0 {
		return ErrOutcomeNegativeCounts
	}
	if o.CorrectAttempts > o.Attempts {
		return ErrOutcomeCorrectExceeded
	}
	if o.ResponseSeconds < 0 || o.AverageResponseSeconds < 0 {
		return ErrOutcomeNegativeLatency
	}
	return nil
}

// HasAttempts reports whether the card has been answered at least once.
// Records without attempts must be left out of accuracy ratios.
func (o *CardOutcome) HasAttempts() bool {
	return o.Attempts > 0
}

// Accuracy returns CorrectAttempts/Attempts, or 0 when there are no attempts.
func (o *CardOutcome) Accuracy() float64 {
	if o.Attempts <= 0 {
		return 0
	}
	return float64(o.CorrectAttempts) / float64(o.Attempts)
}

// Answer is a single answer event fed to the scoring engine.
type Answer struct {
	CardID          uuid.UUID `json:"card_id"`
	Correct         bool      `json:"correct"`
	ResponseSeconds float64   `json:"response_seconds"`
}

// NextOutcome folds an answer into the card's previous record and returns the
// new cumulative record. prev may be nil for a card seen for the first time.
func NextOutcome(prev *CardOutcome, session *Session, a Answer, at time.Time) CardOutcome {
	next := CardOutcome{
		CardID:          a.CardID,
		UserID:          session.UserID,
		SessionID:       session.ID,
		SetID:           session.SetID,
		Correct:         a.Correct,
		ResponseSeconds: a.ResponseSeconds,
		LastReviewedAt:  at.UTC(),
	}

	var prevAttempts, prevCorrect int
	var prevAvg float64
	if prev != nil {
		prevAttempts = prev.Attempts
		prevCorrect = prev.CorrectAttempts
		prevAvg = prev.AverageResponseSeconds
	}

	next.Attempts = prevAttempts + 1
	next.CorrectAttempts = prevCorrect
	if a.Correct {
		next.CorrectAttempts++
	}
	next.AverageResponseSeconds = (prevAvg*float64(prevAttempts) + a.ResponseSeconds) / float64(next.Attempts)

	return next
}

// LatestByCard reduces an outcome log to the most recent record per card,
// ordered by card ID. Ties on LastReviewedAt go to the record with more attempts.
func LatestByCard(outcomes []CardOutcome) []CardOutcome {
	latest := make(map[uuid.UUID]CardOutcome, len(outcomes))
	for _, o := range outcomes {
		cur, ok := latest[o.CardID]
		if !ok ||
			o.LastReviewedAt.After(cur.LastReviewedAt) ||
			(o.LastReviewedAt.Equal(cur.LastReviewedAt) && o.Attempts > cur.Attempts) {
			latest[o.CardID] = o
		}
	}

	out := make([]CardOutcome, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CardID.String() < out[j].CardID.String()
	})
	return out
}
