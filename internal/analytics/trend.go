package analytics

import (
	"math"
	"time"

	"github.com/phrazzld/scry-analytics/internal/domain"
)

// ClassifyTrend splits values at the midpoint and compares the mean of each
// half. The second half must differ by more than threshold (relative) to
// count as improving or declining. changePercent is the relative change times
// 100. Fewer than two values classify as stable with no change.
func ClassifyTrend(values []float64, threshold float64) (TrendDirection, float64) {
	if len(values) < 2 {
		return TrendStable, 0
	}

	mid := len(values) / 2
	first := mean(values[:mid])
	second := mean(values[mid:])

	if first == 0 {
		if second > 0 {
			return TrendImproving, 100
		}
		return TrendStable, 0
	}

	change := (second - first) / math.Abs(first)
	switch {
	case change > threshold:
		return TrendImproving, change * 100
	case change < -threshold:
		return TrendDeclining, change * 100
	default:
		return TrendStable, change * 100
	}
}

// Significance is max(0, 1 - stddev/mean) over the whole series. It is 0 for
// fewer than two values or a non-positive mean.
func Significance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m <= 0 {
		return 0
	}
	return clamp(1-stddev(values)/m, 0, 1)
}

// bucket reduces the sessions that fall into one period to a value.
type bucket func(sessions []domain.Session) float64

// series builds a gap-filled series of n periods ending with the period that
// contains now. start truncates a time to its period and step advances one period.
func series(
	sessions []domain.Session,
	now time.Time,
	n int,
	start func(time.Time) time.Time,
	step func(time.Time) time.Time,
	reduce bucket,
) []Point {
	groups := make(map[int64][]domain.Session)
	for _, s := range sessions {
		k := start(s.StartedAt).Unix()
		groups[k] = append(groups[k], s)
	}

	first := start(now)
	for i := 1; i < n; i++ {
		first = start(first.Add(-time.Nanosecond))
	}

	points := make([]Point, 0, n)
	for p, i := first, 0; i < n; p, i = step(p), i+1 {
		points = append(points, Point{Start: p, Value: round(reduce(groups[p.Unix()]), 4)})
	}
	return points
}

func dailySeries(sessions []domain.Session, now time.Time, days int, reduce bucket) []Point {
	return series(sessions, now, days, startOfDay,
		func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }, reduce)
}

func weeklySeries(sessions []domain.Session, now time.Time, weeks int, reduce bucket) []Point {
	return series(sessions, now, weeks, startOfWeek,
		func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }, reduce)
}

func meanAccuracy(sessions []domain.Session) float64 {
	return mean(accuracies(completedSessions(sessions)))
}

func cardsStudied(sessions []domain.Session) float64 {
	var n int
	for _, s := range sessions {
		n += s.CardsStudied
	}
	return float64(n)
}

func sessionCount(sessions []domain.Session) float64 {
	return float64(len(sessions))
}

func studyMinutes(sessions []domain.Session) float64 {
	var d time.Duration
	for _, s := range sessions {
		d += s.Duration()
	}
	return d.Minutes()
}

func newTrend(metric string, period Period, points []Point, threshold float64) Trend {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	direction, change := ClassifyTrend(values, threshold)
	return Trend{
		Metric:        metric,
		Period:        period,
		Direction:     direction,
		ChangePercent: round(change, 2),
		Significance:  round(Significance(values), 4),
		Points:        points,
	}
}

// BuildTrends returns the daily accuracy, daily cards studied, weekly session
// count and weekly study minutes trends, in that order.
func BuildTrends(sessions []domain.Session, now time.Time, opts Options) []Trend {
	opts = opts.withDefaults()
	days, weeks, threshold := opts.DailyTrendDays, opts.WeeklyTrendWeeks, opts.TrendChangeThreshold

	return []Trend{
		newTrend("accuracy", PeriodDay, dailySeries(sessions, now, days, meanAccuracy), threshold),
		newTrend("cards_studied", PeriodDay, dailySeries(sessions, now, days, cardsStudied), threshold),
		newTrend("sessions", PeriodWeek, weeklySeries(sessions, now, weeks, sessionCount), threshold),
		newTrend("study_minutes", PeriodWeek, weeklySeries(sessions, now, weeks, studyMinutes), threshold),
	}
}
