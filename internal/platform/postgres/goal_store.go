package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/store"
)

// PostgresGoalStore implements the store.GoalStore interface.
type PostgresGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGoalStore creates a goal reader over db.
// If logger is nil, a default logger will be used.
func NewPostgresGoalStore(db store.DBTX, logger *slog.Logger) *PostgresGoalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "goal_store")),
	}
}

var _ store.GoalStore = (*PostgresGoalStore)(nil)

// LoadGoals implements store.GoalStore.LoadGoals
func (s *PostgresGoalStore) LoadGoals(ctx context.Context, userID uuid.UUID) ([]domain.LearningGoal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, metric, target, current, deadline, completed
		FROM learning_goals
		WHERE user_id = $1
		ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query goals",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, wrapError("goal", "load", "failed to query goals", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	goals := []domain.LearningGoal{}
	for rows.Next() {
		var (
			g        domain.LearningGoal
			deadline sql.NullTime
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Metric, &g.Target, &g.Current, &deadline, &g.Completed); err != nil {
			log.Error("failed to scan goal row", slog.String("error", err.Error()))
			return nil, wrapError("goal", "load", "failed to scan goal", err)
		}
		if deadline.Valid {
			d := deadline.Time.UTC()
			g.Deadline = &d
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning goal rows", slog.String("error", err.Error()))
		return nil, wrapError("goal", "load", "failed to read goals", err)
	}
	return goals, nil
}
