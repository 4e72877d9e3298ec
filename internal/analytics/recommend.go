package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// recommendationRule produces zero or one recommendation.
type recommendationRule func(f facts, p Predictions, opts Options, newID IDFunc) (Recommendation, bool)

var recommendationRules = []recommendationRule{
	reviewSessionRecommendation,
	targetedPracticeRecommendation,
	atRiskReviewRecommendation,
	frequencyRecommendation,
}

// generateRecommendations evaluates every rule and orders the result by
// priority, keeping rule order within a priority.
func generateRecommendations(f facts, p Predictions, opts Options, newID IDFunc) []Recommendation {
	recs := []Recommendation{}
	if f.sessions == 0 {
		return recs
	}
	for _, rule := range recommendationRules {
		if rec, ok := rule(f, p, opts, newID); ok {
			recs = append(recs, rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.rank() < recs[j].Priority.rank()
	})
	return recs
}

func validFor(now time.Time, days int) (time.Time, time.Time) {
	return now, now.AddDate(0, 0, days)
}

func reviewSessionRecommendation(f facts, _ Predictions, opts Options, newID IDFunc) (Recommendation, bool) {
	if f.completed == 0 || f.overallAccuracy >= opts.AccuracyThreshold {
		return Recommendation{}, false
	}
	from, until := validFor(f.now, 3)
	return Recommendation{
		ID:          newID(),
		Type:        RecommendationSession,
		Priority:    PriorityHigh,
		Title:       "Take a Review Session",
		Description: "Run a review session focused on the cards you miss most often.",
		Reasoning: fmt.Sprintf("Average accuracy is %.0f%%, below the %.0f%% target",
			f.overallAccuracy*100, opts.AccuracyThreshold*100),
		Action: Action{
			Type: ActionStartSession,
			Parameters: ActionParameters{
				Mode:      domain.StudyModeReview,
				CardCount: 20,
			},
		},
		Benefit: Benefit{
			AccuracyImprovement:   0.1,
			RetentionImprovement:  0.05,
			TimeToCompleteMinutes: 20,
		},
		ValidFrom:  from,
		ValidUntil: until,
	}, true
}

func targetedPracticeRecommendation(f facts, _ Predictions, opts Options, newID IDFunc) (Recommendation, bool) {
	if len(f.difficultCards) <= opts.DifficultCardThreshold {
		return Recommendation{}, false
	}

	n := min(len(f.difficultCards), opts.MaxSampleCards)
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = f.difficultCards[i].CardID
	}

	from, until := validFor(f.now, 7)
	return Recommendation{
		ID:          newID(),
		Type:        RecommendationCard,
		Priority:    PriorityMedium,
		Title:       "Practice Difficult Cards",
		Description: fmt.Sprintf("Work through your %d hardest cards in a focused practice round.", n),
		Reasoning: fmt.Sprintf("%d cards have accuracy below %.0f%%",
			len(f.difficultCards), opts.DifficultCardAccuracy*100),
		Action: Action{
			Type: ActionPracticeCards,
			Parameters: ActionParameters{
				Mode:      domain.StudyModeLearn,
				CardIDs:   ids,
				CardCount: n,
			},
		},
		Benefit: Benefit{
			AccuracyImprovement:   0.15,
			RetentionImprovement:  0.1,
			TimeToCompleteMinutes: 2 * n,
		},
		ValidFrom:  from,
		ValidUntil: until,
	}, true
}

func atRiskReviewRecommendation(f facts, p Predictions, opts Options, newID IDFunc) (Recommendation, bool) {
	var ids []uuid.UUID
	total := 0
	for _, r := range p.ForgettingRisk {
		if r.Risk != RiskHigh {
			continue
		}
		total++
		if len(ids) < opts.MaxSampleCards {
			ids = append(ids, r.CardID)
		}
	}
	if total == 0 {
		return Recommendation{}, false
	}

	from, until := validFor(f.now, 3)
	return Recommendation{
		ID:          newID(),
		Type:        RecommendationCard,
		Priority:    PriorityHigh,
		Title:       "Review Cards You Are About to Forget",
		Description: fmt.Sprintf("Review %d cards that have not been seen recently and are often missed.", len(ids)),
		Reasoning: fmt.Sprintf("%d cards are at high risk of being forgotten (>%.0f days since review, <%.0f%% accuracy)",
			total, opts.HighRiskStaleDays, opts.HighRiskAccuracy*100),
		Action: Action{
			Type: ActionReviewCards,
			Parameters: ActionParameters{
				Mode:      domain.StudyModeReview,
				CardIDs:   ids,
				CardCount: len(ids),
			},
		},
		Benefit: Benefit{
			AccuracyImprovement:   0.05,
			RetentionImprovement:  0.2,
			TimeToCompleteMinutes: max(5, len(ids)),
		},
		ValidFrom:  from,
		ValidUntil: until,
	}, true
}

func frequencyRecommendation(f facts, p Predictions, opts Options, newID IDFunc) (Recommendation, bool) {
	if f.sessionsLastWeek >= opts.MinWeeklySessions {
		return Recommendation{}, false
	}

	hour := p.OptimalSession.Hour
	from, until := validFor(f.now, 14)
	return Recommendation{
		ID:          newID(),
		Type:        RecommendationSchedule,
		Priority:    PriorityMedium,
		Title:       "Study More Often",
		Description: fmt.Sprintf("Aim for at least %d sessions a week, ideally around %s.", opts.MinWeeklySessions, formatHour(hour)),
		Reasoning: fmt.Sprintf("Only %d sessions in the last %d days",
			f.sessionsLastWeek, opts.InactivityDays),
		Action: Action{
			Type: ActionAdjustSchedule,
			Parameters: ActionParameters{
				TargetSessionsPerWeek: opts.MinWeeklySessions,
				PreferredHour:         &hour,
			},
		},
		Benefit: Benefit{
			AccuracyImprovement:   0.05,
			RetentionImprovement:  0.15,
			TimeToCompleteMinutes: 15 * opts.MinWeeklySessions,
		},
		ValidFrom:  from,
		ValidUntil: until,
	}, true
}
