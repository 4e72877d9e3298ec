package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// StartSessionRequest defines the payload for starting a study session.
type StartSessionRequest struct {
	SetID uuid.UUID `json:"set_id" validate:"required"`
	Mode  string    `json:"mode"   validate:"required,oneof=flashcards learn test match write review"`
}

// AnswerRequest is a single answer given during a session.
type AnswerRequest struct {
	CardID          uuid.UUID `json:"card_id"          validate:"required"`
	Correct         bool      `json:"correct"`
	ResponseSeconds float64   `json:"response_seconds" validate:"gte=0"`
}

// CompleteSessionRequest defines the payload for completing a study session.
type CompleteSessionRequest struct {
	Answers []AnswerRequest `json:"answers" validate:"dive"`
}

// toDomain converts the request answers into domain answers.
func (r CompleteSessionRequest) toDomain() []domain.Answer {
	answers := make([]domain.Answer, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = domain.Answer{
			CardID:          a.CardID,
			Correct:         a.Correct,
			ResponseSeconds: a.ResponseSeconds,
		}
	}
	return answers
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
