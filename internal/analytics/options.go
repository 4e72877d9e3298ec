package analytics

// Options holds the thresholds and constants used by the analytics rules.
type Options struct {
	// Insight and recommendation triggers
	AccuracyThreshold      float64
	DifficultCardAccuracy  float64
	DifficultCardThreshold int
	MaxSampleCards         int
	StreakInsightDays      int
	InactivityDays         int
	MinWeeklySessions      int

	// Trend classification
	TrendChangeThreshold float64
	DailyTrendDays       int
	WeeklyTrendWeeks     int

	// Predictions
	MasteryBar            float64
	ImprovementRate       float64
	MaxConfidence         float64
	HighRiskStaleDays     float64
	HighRiskAccuracy      float64
	MediumRiskStaleDays   float64
	MediumRiskAccuracy    float64
	ForgettingHorizonDays float64
	ReviewStaleDays       float64
	ReviewAccuracy        float64
	MaxReviewCards        int
	DefaultStudyHour      int

	// Comparisons
	PeerAverageAccuracy float64
	HistoricalWindow    int
	MilestoneStreakDays int
	MilestoneAccuracy   float64
	RecentSessionWindow int
}

// DefaultOptions returns the standard analytics thresholds.
func DefaultOptions() Options {
	return Options{
		AccuracyThreshold:      0.7,
		DifficultCardAccuracy:  0.5,
		DifficultCardThreshold: 5,
		MaxSampleCards:         10,
		StreakInsightDays:      7,
		InactivityDays:         7,
		MinWeeklySessions:      3,

		TrendChangeThreshold: 0.05,
		DailyTrendDays:       30,
		WeeklyTrendWeeks:     12,

		MasteryBar:            0.8,
		ImprovementRate:       0.1,
		MaxConfidence:         0.9,
		HighRiskStaleDays:     7,
		HighRiskAccuracy:      0.7,
		MediumRiskStaleDays:   3,
		MediumRiskAccuracy:    0.8,
		ForgettingHorizonDays: 14,
		ReviewStaleDays:       2,
		ReviewAccuracy:        0.7,
		MaxReviewCards:        10,
		DefaultStudyHour:      19,

		PeerAverageAccuracy: 0.75,
		HistoricalWindow:    10,
		MilestoneStreakDays: 7,
		MilestoneAccuracy:   0.9,
		RecentSessionWindow: 5,
	}
}

// withDefaults fills zero fields from DefaultOptions.
// DefaultStudyHour is kept as is since midnight is a valid hour.
func (o Options) withDefaults() Options {
	d := DefaultOptions()

	floats := []struct{ v, def *float64 }{
		{&o.AccuracyThreshold, &d.AccuracyThreshold},
		{&o.DifficultCardAccuracy, &d.DifficultCardAccuracy},
		{&o.TrendChangeThreshold, &d.TrendChangeThreshold},
		{&o.MasteryBar, &d.MasteryBar},
		{&o.ImprovementRate, &d.ImprovementRate},
		{&o.MaxConfidence, &d.MaxConfidence},
		{&o.HighRiskStaleDays, &d.HighRiskStaleDays},
		{&o.HighRiskAccuracy, &d.HighRiskAccuracy},
		{&o.MediumRiskStaleDays, &d.MediumRiskStaleDays},
		{&o.MediumRiskAccuracy, &d.MediumRiskAccuracy},
		{&o.ForgettingHorizonDays, &d.ForgettingHorizonDays},
		{&o.ReviewStaleDays, &d.ReviewStaleDays},
		{&o.ReviewAccuracy, &d.ReviewAccuracy},
		{&o.PeerAverageAccuracy, &d.PeerAverageAccuracy},
		{&o.MilestoneAccuracy, &d.MilestoneAccuracy},
	}
	for _, f := range floats {
		if *f.v <= 0 {
			*f.v = *f.def
		}
	}

	ints := []struct{ v, def *int }{
		{&o.DifficultCardThreshold, &d.DifficultCardThreshold},
		{&o.MaxSampleCards, &d.MaxSampleCards},
		{&o.StreakInsightDays, &d.StreakInsightDays},
		{&o.InactivityDays, &d.InactivityDays},
		{&o.MinWeeklySessions, &d.MinWeeklySessions},
		{&o.DailyTrendDays, &d.DailyTrendDays},
		{&o.WeeklyTrendWeeks, &d.WeeklyTrendWeeks},
		{&o.MaxReviewCards, &d.MaxReviewCards},
		{&o.HistoricalWindow, &d.HistoricalWindow},
		{&o.MilestoneStreakDays, &d.MilestoneStreakDays},
		{&o.RecentSessionWindow, &d.RecentSessionWindow},
	}
	for _, i := range ints {
		if *i.v <= 0 {
			*i.v = *i.def
		}
	}

	if o.DefaultStudyHour < 0 || o.DefaultStudyHour > 23 {
		o.DefaultStudyHour = d.DefaultStudyHour
	}

	return o
}
