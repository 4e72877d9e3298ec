package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/store"
)

// PostgresEventStore implements the store.EventStore interface on top of a
// SQL database. The same queries run on PostgreSQL and SQLite.
type PostgresEventStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresEventStore creates a new SQL implementation of the EventStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresEventStore(db *sql.DB, logger *slog.Logger) *PostgresEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEventStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "event_store")),
	}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// WithTx implements store.EventStore.WithTx
// It returns a new store that runs every query inside tx.
func (s *PostgresEventStore) WithTx(tx *sql.Tx) store.EventStore {
	return &PostgresEventStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.EventStore.DB
func (s *PostgresEventStore) DB() *sql.DB {
	return s.sqlDB
}

const sessionColumns = `id, user_id, set_id, mode, started_at, ended_at, cards_studied, accuracy`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session domain.Session
		mode    string
		endedAt sql.NullTime
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.SetID,
		&mode,
		&session.StartedAt,
		&endedAt,
		&session.CardsStudied,
		&session.Accuracy,
	)
	if err != nil {
		return domain.Session{}, err
	}

	session.Mode = domain.StudyMode(mode)
	session.StartedAt = session.StartedAt.UTC()
	if endedAt.Valid {
		end := endedAt.Time.UTC()
		session.EndedAt = &end
	}
	return session, nil
}

// LoadSessions implements store.EventStore.LoadSessions
func (s *PostgresEventStore) LoadSessions(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY started_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, wrapError("session", "load", "failed to query sessions", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row", slog.String("error", err.Error()))
			return nil, wrapError("session", "load", "failed to scan session", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning session rows", slog.String("error", err.Error()))
		return nil, wrapError("session", "load", "failed to read sessions", err)
	}

	log.Debug("loaded sessions",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(sessions)))
	return sessions, nil
}

// GetSession implements store.EventStore.GetSession
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresEventStore) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = $1`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", sessionID.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, wrapError("session", "get", "failed to get session", err)
	}
	return &session, nil
}

// SaveSession implements store.EventStore.SaveSession
// A new session is inserted; an existing one has its completion fields overwritten.
func (s *PostgresEventStore) SaveSession(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during save",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return invalidEntity("session", "save", err)
	}

	var endedAt sql.NullTime
	if session.EndedAt != nil {
		endedAt = sql.NullTime{Time: session.EndedAt.UTC(), Valid: true}
	}

	query := `
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			ended_at = EXCLUDED.ended_at,
			cards_studied = EXCLUDED.cards_studied,
			accuracy = EXCLUDED.accuracy`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.SetID,
		string(session.Mode),
		session.StartedAt.UTC(),
		endedAt,
		session.CardsStudied,
		session.Accuracy,
	)
	if err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return wrapError("session", "save", "failed to save session", err)
	}

	log.Debug("session saved",
		slog.String("session_id", session.ID.String()),
		slog.Bool("completed", session.IsCompleted()))
	return nil
}

// LoadCardOutcomes implements store.EventStore.LoadCardOutcomes
func (s *PostgresEventStore) LoadCardOutcomes(ctx context.Context, userID uuid.UUID) ([]domain.CardOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT card_id, user_id, session_id, set_id, correct, response_seconds,
			attempts, correct_attempts, average_response_seconds, last_reviewed_at
		FROM card_outcomes
		WHERE user_id = $1
		ORDER BY last_reviewed_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query card outcomes",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, wrapError("card_outcome", "load", "failed to query card outcomes", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	outcomes := []domain.CardOutcome{}
	for rows.Next() {
		var o domain.CardOutcome
		err := rows.Scan(
			&o.CardID,
			&o.UserID,
			&o.SessionID,
			&o.SetID,
			&o.Correct,
			&o.ResponseSeconds,
			&o.Attempts,
			&o.CorrectAttempts,
			&o.AverageResponseSeconds,
			&o.LastReviewedAt,
		)
		if err != nil {
			log.Error("failed to scan card outcome row", slog.String("error", err.Error()))
			return nil, wrapError("card_outcome", "load", "failed to scan card outcome", err)
		}
		o.LastReviewedAt = o.LastReviewedAt.UTC()
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning card outcome rows", slog.String("error", err.Error()))
		return nil, wrapError("card_outcome", "load", "failed to read card outcomes", err)
	}

	log.Debug("loaded card outcomes",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(outcomes)))
	return outcomes, nil
}

// AppendCardOutcomes implements store.EventStore.AppendCardOutcomes
// Every record is validated before anything is written.
func (s *PostgresEventStore) AppendCardOutcomes(ctx context.Context, outcomes []domain.CardOutcome) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for i := range outcomes {
		if err := outcomes[i].Validate(); err != nil {
			log.Warn("card outcome validation failed",
				slog.String("error", err.Error()),
				slog.String("card_id", outcomes[i].CardID.String()))
			return invalidEntity("card_outcome", "append", err)
		}
	}

	query := `
		INSERT INTO card_outcomes (card_id, user_id, session_id, set_id, correct, response_seconds,
			attempts, correct_attempts, average_response_seconds, last_reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, o := range outcomes {
		_, err := s.db.ExecContext(ctx, query,
			o.CardID,
			o.UserID,
			o.SessionID,
			o.SetID,
			o.Correct,
			o.ResponseSeconds,
			o.Attempts,
			o.CorrectAttempts,
			o.AverageResponseSeconds,
			o.LastReviewedAt.UTC(),
		)
		if err != nil {
			log.Error("failed to append card outcome",
				slog.String("error", err.Error()),
				slog.String("card_id", o.CardID.String()),
				slog.String("session_id", o.SessionID.String()))
			return wrapError("card_outcome", "append", "failed to append card outcome", err)
		}
	}

	log.Debug("appended card outcomes", slog.Int("count", len(outcomes)))
	return nil
}

// DeleteOutcomesBefore implements store.EventStore.DeleteOutcomesBefore
// A card's latest record carries its cumulative counters and is never removed,
// however old it is. Ordering matches domain.LatestByCard, with id as the final
// tie-break.
func (s *PostgresEventStore) DeleteOutcomesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM card_outcomes
		WHERE last_reviewed_at < $1
			AND EXISTS (
				SELECT 1 FROM card_outcomes newer
				WHERE newer.user_id = card_outcomes.user_id
					AND newer.card_id = card_outcomes.card_id
					AND (
						newer.last_reviewed_at > card_outcomes.last_reviewed_at
						OR (newer.last_reviewed_at = card_outcomes.last_reviewed_at
							AND newer.attempts > card_outcomes.attempts)
						OR (newer.last_reviewed_at = card_outcomes.last_reviewed_at
							AND newer.attempts = card_outcomes.attempts
							AND newer.id > card_outcomes.id)
					)
			)`

	result, err := s.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		log.Error("failed to delete old card outcomes",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, wrapError("card_outcome", "delete", "failed to delete old card outcomes", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, wrapError("card_outcome", "delete", "failed to get rows affected", err)
	}

	log.Info("deleted old card outcomes",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

// LoadUserStats implements store.EventStore.LoadUserStats
// Returns store.ErrUserStatsNotFound if the user has no stats record.
func (s *PostgresEventStore) LoadUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, total_score, total_sessions, average_score, current_streak,
			level, created_at, updated_at
		FROM user_stats
		WHERE user_id = $1`

	var (
		stats domain.UserStats
		level string
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.TotalScore,
		&stats.TotalSessions,
		&stats.AverageScore,
		&stats.CurrentStreak,
		&level,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user stats not found", slog.String("user_id", userID.String()))
			return nil, store.ErrUserStatsNotFound
		}
		log.Error("failed to load user stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, wrapError("user_stats", "load", "failed to load user stats", err)
	}

	stats.Level = domain.Level(level)
	stats.CreatedAt = stats.CreatedAt.UTC()
	stats.UpdatedAt = stats.UpdatedAt.UTC()
	return &stats, nil
}

// SaveUserStats implements store.EventStore.SaveUserStats
func (s *PostgresEventStore) SaveUserStats(ctx context.Context, stats *domain.UserStats) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := stats.Validate(); err != nil {
		log.Warn("user stats validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", stats.UserID.String()))
		return invalidEntity("user_stats", "save", err)
	}

	query := `
		INSERT INTO user_stats (user_id, total_score, total_sessions, average_score,
			current_streak, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			total_sessions = EXCLUDED.total_sessions,
			average_score = EXCLUDED.average_score,
			current_streak = EXCLUDED.current_streak,
			level = EXCLUDED.level,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		stats.UserID,
		stats.TotalScore,
		stats.TotalSessions,
		stats.AverageScore,
		stats.CurrentStreak,
		string(stats.Level),
		stats.CreatedAt.UTC(),
		stats.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to save user stats",
			slog.String("error", err.Error()),
			slog.String("user_id", stats.UserID.String()))
		return wrapError("user_stats", "save", "failed to save user stats", err)
	}

	log.Debug("user stats saved",
		slog.String("user_id", stats.UserID.String()),
		slog.Int("total_score", stats.TotalScore),
		slog.String("level", string(stats.Level)))
	return nil
}
