package scoring

import (
	"time"
)

// Params defines all configurable parameters for the scoring engine
type Params struct {
	// Base points
	CorrectPoints   int
	IncorrectPoints int

	// Latency bands, upper bounds are exclusive
	FastThreshold   time.Duration
	NormalThreshold time.Duration
	SlowThreshold   time.Duration

	// Correctness-gated bonuses per band; the timeout band awards nothing
	FastBonus   int
	NormalBonus int
	SlowBonus   int

	// Streak bonus awarded on every StreakThreshold-th consecutive correct answer
	StreakThreshold int
	StreakBonus     int

	// Inclusive upper bounds of the beginner, intermediate and advanced tiers
	BeginnerMax     int
	IntermediateMax int
	AdvancedMax     int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	CorrectPoints   int
	IncorrectPoints int

	FastThresholdSeconds   float64
	NormalThresholdSeconds float64
	SlowThresholdSeconds   float64

	FastBonus   int
	NormalBonus int
	SlowBonus   int

	StreakThreshold int
	StreakBonus     int

	BeginnerMax     int
	IntermediateMax int
	AdvancedMax     int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		CorrectPoints:   10,
		IncorrectPoints: -5,

		FastThreshold:   3 * time.Second,
		NormalThreshold: 5 * time.Second,
		SlowThreshold:   10 * time.Second,

		FastBonus:   5,
		NormalBonus: 3,
		SlowBonus:   1,

		StreakThreshold: 5,
		StreakBonus:     10,

		BeginnerMax:     100,
		IntermediateMax: 300,
		AdvancedMax:     500,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.CorrectPoints > 0 {
		params.CorrectPoints = config.CorrectPoints
	}
	// A penalty is negative, so only a non-zero value overrides it
	if config.IncorrectPoints != 0 {
		params.IncorrectPoints = config.IncorrectPoints
	}

	if config.FastThresholdSeconds > 0 {
		params.FastThreshold = seconds(config.FastThresholdSeconds)
	}
	if config.NormalThresholdSeconds > 0 {
		params.NormalThreshold = seconds(config.NormalThresholdSeconds)
	}
	if config.SlowThresholdSeconds > 0 {
		params.SlowThreshold = seconds(config.SlowThresholdSeconds)
	}

	if config.FastBonus > 0 {
		params.FastBonus = config.FastBonus
	}
	if config.NormalBonus > 0 {
		params.NormalBonus = config.NormalBonus
	}
	if config.SlowBonus > 0 {
		params.SlowBonus = config.SlowBonus
	}

	if config.StreakThreshold > 0 {
		params.StreakThreshold = config.StreakThreshold
	}
	if config.StreakBonus > 0 {
		params.StreakBonus = config.StreakBonus
	}

	if config.BeginnerMax > 0 {
		params.BeginnerMax = config.BeginnerMax
	}
	if config.IntermediateMax > 0 {
		params.IntermediateMax = config.IntermediateMax
	}
	if config.AdvancedMax > 0 {
		params.AdvancedMax = config.AdvancedMax
	}

	return params
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
