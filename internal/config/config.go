package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the database/sql driver: "pgx" for PostgreSQL or
	// "sqlite" for an embedded database file.
	Driver       string `mapstructure:"driver" validate:"required,oneof=pgx sqlite"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// ScoringConfig overrides scoring parameters. Zero values keep the defaults.
type ScoringConfig struct {
	CorrectPoints          int     `mapstructure:"correct_points" validate:"gte=0"`
	IncorrectPoints        int     `mapstructure:"incorrect_points" validate:"lte=0"`
	FastThresholdSeconds   float64 `mapstructure:"fast_threshold_seconds" validate:"gte=0"`
	NormalThresholdSeconds float64 `mapstructure:"normal_threshold_seconds" validate:"gte=0"`
	SlowThresholdSeconds   float64 `mapstructure:"slow_threshold_seconds" validate:"gte=0"`
	FastBonus              int     `mapstructure:"fast_bonus" validate:"gte=0"`
	NormalBonus            int     `mapstructure:"normal_bonus" validate:"gte=0"`
	SlowBonus              int     `mapstructure:"slow_bonus" validate:"gte=0"`
	StreakThreshold        int     `mapstructure:"streak_threshold" validate:"gte=0"`
	StreakBonus            int     `mapstructure:"streak_bonus" validate:"gte=0"`
	BeginnerMax            int     `mapstructure:"beginner_max" validate:"gte=0"`
	IntermediateMax        int     `mapstructure:"intermediate_max" validate:"gte=0"`
	AdvancedMax            int     `mapstructure:"advanced_max" validate:"gte=0"`
}

// AnalyticsConfig overrides analytics thresholds. Zero values keep the defaults.
type AnalyticsConfig struct {
	AccuracyThreshold      float64 `mapstructure:"accuracy_threshold" validate:"gte=0,lte=1"`
	DifficultCardThreshold int     `mapstructure:"difficult_card_threshold" validate:"gte=0"`
	StreakInsightDays      int     `mapstructure:"streak_insight_days" validate:"gte=0"`
	MasteryBar             float64 `mapstructure:"mastery_bar" validate:"gte=0,lte=1"`
	ImprovementRate        float64 `mapstructure:"improvement_rate" validate:"gte=0,lte=1"`
	PeerAverageAccuracy    float64 `mapstructure:"peer_average_accuracy" validate:"gte=0,lte=1"`
	TrendChangeThreshold   float64 `mapstructure:"trend_change_threshold" validate:"gte=0,lte=1"`
	MaxReviewCards         int     `mapstructure:"max_review_cards" validate:"gte=0"`
	DefaultStudyHour       int     `mapstructure:"default_study_hour" validate:"gte=0,lte=23"`
}

// RetentionConfig controls the age-based cleanup of card outcome records.
type RetentionConfig struct {
	// OutcomeMaxAgeDays is the age after which outcome records are deleted.
	// Zero disables cleanup.
	OutcomeMaxAgeDays      int `mapstructure:"outcome_max_age_days" validate:"gte=0"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"gt=0"`
}
