package analytics

import (
	"fmt"
	"math"

	"github.com/phrazzld/scry-analytics/internal/domain"
)

// PeerPercentile is a synthetic percentile: every point of accuracy above or
// below the peer average moves the user one percentile from the median.
func PeerPercentile(accuracy, peerAverage float64) float64 {
	return clamp(50+(accuracy-peerAverage)*100, 5, 95)
}

// CompareHistory compares the mean accuracy of the earliest and latest
// completed sessions. Each side holds min(window, n/2) sessions so they never
// overlap. With fewer than window sessions every field is zero.
func CompareHistory(sessions []domain.Session, window int) HistoricalComparison {
	completed := completedSessions(sortedSessions(sessions))
	n := len(completed)
	if window <= 0 || n < window {
		return HistoricalComparison{}
	}

	k := min(window, n/2)
	early := mean(accuracies(completed[:k]))
	recent := mean(accuracies(completed[n-k:]))

	var improvement float64
	if early > 0 {
		improvement = (recent - early) / early * 100
	}

	return HistoricalComparison{
		SessionsCompared:    k,
		EarlyAccuracy:       round(early, 4),
		RecentAccuracy:      round(recent, 4),
		AccuracyImprovement: round(improvement, 2),
	}
}

// ConsistencyScore is max(0, 1 - stddev) of per-session accuracy. A user with
// no completed sessions scores 0.
func ConsistencyScore(sessions []domain.Session) float64 {
	completed := completedSessions(sessions)
	if len(completed) == 0 {
		return 0
	}
	return math.Max(0, 1-stddev(accuracies(completed)))
}

func milestones(f facts, opts Options) []Milestone {
	out := []Milestone{}
	if f.dayStreak >= opts.MilestoneStreakDays {
		out = append(out, Milestone{
			Type:  MilestoneStreak,
			Title: fmt.Sprintf("%d-day study streak", f.dayStreak),
			Value: float64(f.dayStreak),
		})
	}
	if f.completed > 0 && f.overallAccuracy >= opts.MilestoneAccuracy {
		out = append(out, Milestone{
			Type:  MilestoneAccuracy,
			Title: fmt.Sprintf("%.0f%% average accuracy", f.overallAccuracy*100),
			Value: round(f.overallAccuracy, 4),
		})
	}
	return out
}

func compare(h History, f facts, opts Options) Comparisons {
	return Comparisons{
		PeerPercentile:      round(PeerPercentile(f.overallAccuracy, opts.PeerAverageAccuracy), 2),
		PeerAverageAccuracy: opts.PeerAverageAccuracy,
		Historical:          CompareHistory(h.Sessions, opts.HistoricalWindow),
		ConsistencyScore:    round(ConsistencyScore(h.Sessions), 4),
		Milestones:          milestones(f, opts),
	}
}
