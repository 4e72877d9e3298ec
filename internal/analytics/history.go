package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/phrazzld/scry-analytics/internal/domain"
)

const day = 24 * time.Hour

// History is everything the engine loads for one user.
type History struct {
	Sessions []domain.Session
	Outcomes []domain.CardOutcome
	Stats    *domain.UserStats
	Goals    []domain.LearningGoal
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the Monday midnight UTC of t's ISO week.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// daysBetween returns the fractional days from t to now.
func daysBetween(t, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}

// sortedSessions returns a copy of sessions ordered by start time.
func sortedSessions(sessions []domain.Session) []domain.Session {
	out := make([]domain.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// completedSessions keeps only sessions with an end timestamp, in order.
func completedSessions(sessions []domain.Session) []domain.Session {
	var out []domain.Session
	for _, s := range sessions {
		if s.IsCompleted() {
			out = append(out, s)
		}
	}
	return out
}

// sessionsSince keeps sessions that started at or after from.
func sessionsSince(sessions []domain.Session, from time.Time) []domain.Session {
	var out []domain.Session
	for _, s := range sessions {
		if !s.StartedAt.Before(from) {
			out = append(out, s)
		}
	}
	return out
}

// filterRange scopes sessions to rng, measured back from now.
func filterRange(sessions []domain.Session, rng TimeRange, now time.Time) []domain.Session {
	days := rng.Days()
	if days == 0 {
		return sessions
	}
	return sessionsSince(sessions, now.Add(-time.Duration(days)*day))
}

// accuracies returns the accuracy of each session, in order.
func accuracies(sessions []domain.Session) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = s.Accuracy
	}
	return out
}

// activeDays returns the distinct study days, oldest first.
func activeDays(sessions []domain.Session) []time.Time {
	seen := make(map[int64]struct{})
	var days []time.Time
	for _, s := range sessions {
		d := startOfDay(s.StartedAt)
		if _, ok := seen[d.Unix()]; ok {
			continue
		}
		seen[d.Unix()] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// dayStreak counts consecutive study days ending today, or yesterday when the
// user has not studied yet today.
func dayStreak(sessions []domain.Session, now time.Time) int {
	days := activeDays(sessions)
	if len(days) == 0 {
		return 0
	}

	today := startOfDay(now)
	last := days[len(days)-1]
	if last.Before(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if !days[i-1].Equal(days[i].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	return math.Sqrt(variance(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round keeps report values stable across float noise.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
