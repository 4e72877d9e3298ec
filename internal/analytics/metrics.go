package analytics

import (
	"math"
	"time"

	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/scoring"
)

func buildSummary(
	scoped []domain.Session,
	f facts,
	stats *domain.UserStats,
	scorer scoring.Service,
	opts Options,
) Summary {
	completed := completedSessions(scoped)

	s := Summary{
		TotalSessions:     len(scoped),
		CompletedSessions: len(completed),
		TotalCardsStudied: int(cardsStudied(scoped)),
		TotalStudyMinutes: round(studyMinutes(scoped), 2),
		AverageAccuracy:   round(mean(accuracies(completed)), 4),
		CurrentStreak:     f.dayStreak,
		Level:             domain.LevelBeginner,
		CardsTracked:      len(f.cards),
		SessionsLast7Days: f.sessionsLastWeek,
	}

	if stats != nil {
		s.TotalScore = stats.TotalScore
		if stats.Level.Valid() {
			s.Level = stats.Level
		}
	}
	s.LevelProgress = scorer.LevelProgress(s.TotalScore)

	for _, c := range f.cards {
		if c.HasAttempts() && c.Accuracy() >= opts.MasteryBar {
			s.CardsMastered++
		}
	}

	return s
}

func buildMetrics(scoped []domain.Session, f facts, p Predictions, opts Options) PerformanceMetrics {
	ordered := sortedSessions(scoped)
	completed := completedSessions(ordered)

	return PerformanceMetrics{
		Accuracy:   accuracyMetrics(completed, opts),
		Speed:      speedMetrics(completed, f.cards),
		Retention:  retentionMetrics(f, p, opts),
		Engagement: engagementMetrics(ordered, f.now),
	}
}

func accuracyMetrics(completed []domain.Session, opts Options) AccuracyMetrics {
	values := accuracies(completed)
	recent := values
	if len(recent) > opts.RecentSessionWindow {
		recent = recent[len(recent)-opts.RecentSessionWindow:]
	}
	direction, _ := ClassifyTrend(values, opts.TrendChangeThreshold)

	byMode := make(map[domain.StudyMode][]float64)
	for _, s := range completed {
		byMode[s.Mode] = append(byMode[s.Mode], s.Accuracy)
	}
	modes := make(map[domain.StudyMode]float64, len(byMode))
	for mode, v := range byMode {
		modes[mode] = round(mean(v), 4)
	}

	return AccuracyMetrics{
		Overall: round(mean(values), 4),
		Recent:  round(mean(recent), 4),
		Trend:   direction,
		ByMode:  modes,
	}
}

func speedMetrics(completed []domain.Session, cards []domain.CardOutcome) SpeedMetrics {
	var latencies []float64
	for _, c := range cards {
		if c.HasAttempts() {
			latencies = append(latencies, c.AverageResponseSeconds)
		}
	}

	var perMinute float64
	if minutes := studyMinutes(completed); minutes > 0 {
		perMinute = cardsStudied(completed) / minutes
	}

	return SpeedMetrics{
		AverageResponseSeconds: round(mean(latencies), 2),
		CardsPerMinute:         round(perMinute, 2),
	}
}

func retentionMetrics(f facts, p Predictions, opts Options) RetentionMetrics {
	var answered, mastered int
	var staleness []float64
	for _, c := range f.cards {
		if !c.HasAttempts() {
			continue
		}
		answered++
		if c.Accuracy() >= opts.MasteryBar {
			mastered++
		}
		staleness = append(staleness, math.Max(0, daysBetween(c.LastReviewedAt, f.now)))
	}

	var rate float64
	if answered > 0 {
		rate = float64(mastered) / float64(answered)
	}

	var atRisk int
	for _, r := range p.ForgettingRisk {
		if r.Risk != RiskLow {
			atRisk++
		}
	}

	return RetentionMetrics{
		MasteryRate:            round(rate, 4),
		AverageDaysSinceReview: round(mean(staleness), 2),
		CardsAtRisk:            atRisk,
	}
}

func engagementMetrics(ordered []domain.Session, now time.Time) EngagementMetrics {
	if len(ordered) == 0 {
		return EngagementMetrics{}
	}

	days := activeDays(ordered)
	weeks := math.Max(1, daysBetween(ordered[0].StartedAt, now)/7)

	var longest int
	for i := 1; i < len(days); i++ {
		gap := int(days[i].Sub(days[i-1]).Hours()/24) - 1
		longest = max(longest, gap)
	}

	return EngagementMetrics{
		SessionsPerWeek:       round(float64(len(ordered))/weeks, 2),
		AverageSessionMinutes: round(averageMinutes(ordered), 2),
		ActiveDays:            len(days),
		LongestGapDays:        longest,
		StudyDayStreak:        dayStreak(ordered, now),
	}
}

// passGoals copies goals through untouched, never returning nil.
func passGoals(goals []domain.LearningGoal) []domain.LearningGoal {
	out := make([]domain.LearningGoal, len(goals))
	copy(out, goals)
	return out
}
