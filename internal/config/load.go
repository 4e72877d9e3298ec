package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SCRY_SERVER_PORT.
const EnvPrefix = "SCRY"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return load(".", "./config")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly to be seen by Unmarshal.
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	// Zero scoring and analytics values keep the engine defaults; they are
	// registered so environment overrides are picked up by Unmarshal.
	for _, key := range []string{
		"scoring.correct_points", "scoring.incorrect_points",
		"scoring.fast_threshold_seconds", "scoring.normal_threshold_seconds", "scoring.slow_threshold_seconds",
		"scoring.fast_bonus", "scoring.normal_bonus", "scoring.slow_bonus",
		"scoring.streak_threshold", "scoring.streak_bonus",
		"scoring.beginner_max", "scoring.intermediate_max", "scoring.advanced_max",
		"analytics.accuracy_threshold", "analytics.difficult_card_threshold", "analytics.streak_insight_days",
		"analytics.mastery_bar", "analytics.improvement_rate", "analytics.peer_average_accuracy",
		"analytics.trend_change_threshold", "analytics.max_review_cards",
	} {
		v.SetDefault(key, 0)
	}
	v.SetDefault("analytics.default_study_hour", 19)

	v.SetDefault("retention.outcome_max_age_days", 365)
	v.SetDefault("retention.cleanup_interval_minutes", 60)
}
