package domain

import (
	"time"

	"github.com/google/uuid"
)

// LearningGoal is a user-defined target. Goals are managed elsewhere and are
// only read by the analytics engine.
type LearningGoal struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Metric    string     `json:"metric"`
	Target    float64    `json:"target"`
	Current   float64    `json:"current"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Completed bool       `json:"completed"`
}
