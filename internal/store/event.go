package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// EventStore is the persistence boundary of the analytics and scoring core.
// Implementations own sessions, card outcomes and per-user stats; the core
// only reads history through the Load methods and writes through the Save
// methods once per completed session.
type EventStore interface {
	// LoadSessions returns every session of the user ordered by start time.
	LoadSessions(ctx context.Context, userID uuid.UUID) ([]domain.Session, error)

	// LoadCardOutcomes returns the user's card outcome log ordered by review time.
	LoadCardOutcomes(ctx context.Context, userID uuid.UUID) ([]domain.CardOutcome, error)

	// LoadUserStats returns the user's stats record.
	// Returns ErrUserStatsNotFound if the user has not completed a session yet.
	LoadUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// GetSession retrieves a session by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)

	// SaveSession inserts the session or overwrites its completion fields.
	// Returns validation errors from the domain Session if data is invalid.
	SaveSession(ctx context.Context, session *domain.Session) error

	// SaveUserStats inserts or replaces the user's stats record.
	SaveUserStats(ctx context.Context, stats *domain.UserStats) error

	// AppendCardOutcomes adds outcome records to the log.
	AppendCardOutcomes(ctx context.Context, outcomes []domain.CardOutcome) error

	// DeleteOutcomesBefore removes outcome records last reviewed before cutoff
	// and returns the number of rows removed. Each card's latest record is
	// kept, since it holds the card's cumulative counters.
	DeleteOutcomesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new EventStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) EventStore

	// DB returns the underlying database connection.
	DB() *sql.DB
}

// GoalStore reads learning goals, which are managed outside this service.
type GoalStore interface {
	// LoadGoals returns the user's goals. A user without goals gets an empty slice.
	LoadGoals(ctx context.Context, userID uuid.UUID) ([]domain.LearningGoal, error)
}
