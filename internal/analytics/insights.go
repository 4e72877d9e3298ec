package analytics

import (
	"fmt"

	"github.com/google/uuid"
)

// IDFunc generates identifiers for insights and recommendations.
type IDFunc func() string

// NewUUID is the default IDFunc.
func NewUUID() string {
	return uuid.NewString()
}

// insightRule produces zero or one insight.
type insightRule func(f facts, opts Options, newID IDFunc) (Insight, bool)

// insightRules run in this order. Each rule is independent of the others.
var insightRules = []insightRule{
	lowAccuracyInsight,
	streakInsight,
	difficultCardsInsight,
	studyBreakInsight,
}

// generateInsights evaluates every insight rule against f. A user without any
// sessions gets no insights.
func generateInsights(f facts, opts Options, newID IDFunc) []Insight {
	insights := []Insight{}
	if f.sessions == 0 {
		return insights
	}
	for _, rule := range insightRules {
		if insight, ok := rule(f, opts, newID); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

func lowAccuracyInsight(f facts, opts Options, newID IDFunc) (Insight, bool) {
	if f.completed == 0 || f.overallAccuracy >= opts.AccuracyThreshold {
		return Insight{}, false
	}
	return Insight{
		ID:    newID(),
		Type:  InsightWeakness,
		Title: "Accuracy Below Target",
		Description: fmt.Sprintf(
			"Your average accuracy is %.0f%%, below the %.0f%% target. Slowing down and reviewing missed cards will help.",
			f.overallAccuracy*100, opts.AccuracyThreshold*100,
		),
		Severity:   SeverityHigh,
		Actionable: true,
		Confidence: 0.85,
		Data: InsightData{
			Metric:    "accuracy",
			Value:     round(f.overallAccuracy, 4),
			Threshold: opts.AccuracyThreshold,
		},
	}, true
}

func streakInsight(f facts, opts Options, newID IDFunc) (Insight, bool) {
	if f.dayStreak < opts.StreakInsightDays {
		return Insight{}, false
	}
	return Insight{
		ID:          newID(),
		Type:        InsightStrength,
		Title:       "Consistent Study Habit",
		Description: fmt.Sprintf("You have studied %d days in a row. Keep it going!", f.dayStreak),
		Severity:    SeverityLow,
		Actionable:  false,
		Confidence:  0.95,
		Data: InsightData{
			Metric:    "study_day_streak",
			Value:     float64(f.dayStreak),
			Threshold: float64(opts.StreakInsightDays),
		},
	}, true
}

func difficultCardsInsight(f facts, opts Options, newID IDFunc) (Insight, bool) {
	if len(f.difficultCards) <= opts.DifficultCardThreshold {
		return Insight{}, false
	}

	n := min(len(f.difficultCards), opts.MaxSampleCards)
	sample := make([]uuid.UUID, n)
	for i := range sample {
		sample[i] = f.difficultCards[i].CardID
	}

	return Insight{
		ID:    newID(),
		Type:  InsightWeakness,
		Title: "Difficult Cards Identified",
		Description: fmt.Sprintf(
			"%d cards are answered correctly less than %.0f%% of the time. Targeted practice on them will raise your overall score.",
			len(f.difficultCards), opts.DifficultCardAccuracy*100,
		),
		Severity:   SeverityMedium,
		Actionable: true,
		Confidence: 0.8,
		Data: InsightData{
			Metric:    "difficult_cards",
			Value:     float64(len(f.difficultCards)),
			Threshold: float64(opts.DifficultCardThreshold),
			CardIDs:   sample,
		},
	}, true
}

func studyBreakInsight(f facts, opts Options, newID IDFunc) (Insight, bool) {
	if f.sessionsLastWeek > 0 {
		return Insight{}, false
	}
	return Insight{
		ID:    newID(),
		Type:  InsightPattern,
		Title: "Study Break Detected",
		Description: fmt.Sprintf(
			"You have not studied in the last %d days. A short session today will help you keep what you learned.",
			opts.InactivityDays,
		),
		Severity:   SeverityMedium,
		Actionable: true,
		Confidence: 0.9,
		Data: InsightData{
			Metric:    "recent_sessions",
			Value:     0,
			Threshold: 1,
		},
	}, true
}
