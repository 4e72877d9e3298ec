package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// PredictMastery estimates, for every answered card below the mastery bar, the
// number of daily sessions needed to cross it at a fixed per-session
// improvement rate. Results are ordered by sessions needed.
func PredictMastery(cards []domain.CardOutcome, now time.Time, opts Options) []MasteryPrediction {
	opts = opts.withDefaults()

	out := []MasteryPrediction{}
	for _, c := range cards {
		if !c.HasAttempts() {
			continue
		}
		acc := c.Accuracy()
		if acc >= opts.MasteryBar {
			continue
		}

		// epsilon absorbs float noise such as (0.8-0.5)/0.1 = 3.0000000000000004
		needed := int(math.Ceil((opts.MasteryBar-acc)/opts.ImprovementRate - 1e-9))
		needed = max(1, needed)

		out = append(out, MasteryPrediction{
			CardID:          c.CardID,
			CurrentAccuracy: round(acc, 4),
			SessionsNeeded:  needed,
			PredictedDate:   startOfDay(now).AddDate(0, 0, needed),
			Confidence:      round(math.Min(opts.MaxConfidence, acc+0.3), 4),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionsNeeded < out[j].SessionsNeeded
	})
	return out
}

// AssessRisk classifies one card. Stale, inaccurate cards are high risk.
func AssessRisk(daysSinceReview, accuracy float64, opts Options) RiskLevel {
	opts = opts.withDefaults()
	switch {
	case daysSinceReview > opts.HighRiskStaleDays && accuracy < opts.HighRiskAccuracy:
		return RiskHigh
	case daysSinceReview > opts.MediumRiskStaleDays && accuracy < opts.MediumRiskAccuracy:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AssessForgettingRisk rates every answered card by staleness and accuracy.
// The forgetting date moves out by up to ForgettingHorizonDays as accuracy
// rises. Results are ordered from highest risk, then most stale.
func AssessForgettingRisk(cards []domain.CardOutcome, now time.Time, opts Options) []ForgettingRisk {
	opts = opts.withDefaults()

	out := []ForgettingRisk{}
	for _, c := range cards {
		if !c.HasAttempts() {
			continue
		}
		days := math.Max(0, daysBetween(c.LastReviewedAt, now))
		acc := c.Accuracy()
		risk := AssessRisk(days, acc, opts)

		out = append(out, ForgettingRisk{
			CardID:            c.CardID,
			DaysSinceReview:   int(days),
			Accuracy:          round(acc, 4),
			Risk:              risk,
			ForgettingDate:    now.Add(time.Duration(acc * opts.ForgettingHorizonDays * float64(day))).Truncate(time.Second),
			ReviewRecommended: risk != RiskLow,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Risk != out[j].Risk {
			return out[i].Risk.rank() < out[j].Risk.rank()
		}
		return out[i].DaysSinceReview > out[j].DaysSinceReview
	})
	return out
}

// hourStats is the accuracy record of sessions started in one hour of day.
type hourStats struct {
	hour     int
	sessions int
	accuracy float64
}

// bestHour returns the hour with the highest mean session accuracy. Ties go
// to the hour with more sessions, then to the earlier hour.
func bestHour(sessions []domain.Session) (hourStats, bool) {
	var sums [24]float64
	var counts [24]int
	for _, s := range completedSessions(sessions) {
		h := s.StartedAt.UTC().Hour()
		sums[h] += s.Accuracy
		counts[h]++
	}

	var best hourStats
	found := false
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		cand := hourStats{hour: h, sessions: counts[h], accuracy: sums[h] / float64(counts[h])}
		if !found ||
			cand.accuracy > best.accuracy ||
			(cand.accuracy == best.accuracy && cand.sessions > best.sessions) {
			best = cand
			found = true
		}
	}
	return best, found
}

// PlanOptimalSession picks the best-performing hour of day and the cards most
// in need of review for the next session. Without history the default study
// hour is used.
func PlanOptimalSession(
	sessions []domain.Session,
	cards []domain.CardOutcome,
	now time.Time,
	opts Options,
) OptimalSession {
	opts = opts.withDefaults()

	plan := OptimalSession{
		Hour:    opts.DefaultStudyHour,
		CardIDs: []uuid.UUID{},
		Reason:  "No completed sessions yet; suggesting the default study time",
	}
	if best, ok := bestHour(sessions); ok {
		plan.Hour = best.hour
		plan.ExpectedAccuracy = round(best.accuracy, 4)
		plan.Reason = fmt.Sprintf(
			"Your accuracy is highest (%.0f%%) in sessions started around %s",
			best.accuracy*100, formatHour(best.hour),
		)
	}

	next := startOfDay(now).Add(time.Duration(plan.Hour) * time.Hour)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	plan.RecommendedAt = next

	type candidate struct {
		id    uuid.UUID
		acc   float64
		stale float64
	}
	var due []candidate
	for _, c := range cards {
		stale := daysBetween(c.LastReviewedAt, now)
		weak := c.HasAttempts() && c.Accuracy() < opts.ReviewAccuracy
		if stale > opts.ReviewStaleDays || weak {
			due = append(due, candidate{id: c.CardID, acc: c.Accuracy(), stale: stale})
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].acc != due[j].acc {
			return due[i].acc < due[j].acc
		}
		return due[i].stale > due[j].stale
	})
	for i := 0; i < len(due) && i < opts.MaxReviewCards; i++ {
		plan.CardIDs = append(plan.CardIDs, due[i].id)
	}

	return plan
}

// Predict runs the three predictive models over the same card states.
func Predict(sessions []domain.Session, cards []domain.CardOutcome, now time.Time, opts Options) Predictions {
	return Predictions{
		Mastery:        PredictMastery(cards, now, opts),
		ForgettingRisk: AssessForgettingRisk(cards, now, opts),
		OptimalSession: PlanOptimalSession(sessions, cards, now, opts),
	}
}
