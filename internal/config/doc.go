// Package config loads service settings from an optional config.yaml and
// SCRY_-prefixed environment variables with viper, then validates them.
// Scoring and analytics sections only override engine defaults they set.
package config
