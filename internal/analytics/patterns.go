package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/scry-analytics/internal/domain"
)

const topPeaks = 3

// DetectPatterns buckets sessions by hour of day and day of week. Each pattern
// reports the top three buckets, the share of the single most common one, and
// how well sessions inside the top buckets went. No sessions, no patterns.
func DetectPatterns(sessions []domain.Session) []StudyPattern {
	if len(sessions) == 0 {
		return []StudyPattern{}
	}

	return []StudyPattern{
		detectPattern(sessions, PatternTimeOfDay, 24, func(t time.Time) int { return t.Hour() }),
		detectPattern(sessions, PatternDayOfWeek, 7, func(t time.Time) int { return int(t.Weekday()) }),
	}
}

func detectPattern(
	sessions []domain.Session,
	kind PatternType,
	buckets int,
	key func(time.Time) int,
) StudyPattern {
	counts := make([]int, buckets)
	for _, s := range sessions {
		counts[key(s.StartedAt.UTC())]++
	}

	peaks := topBuckets(counts, topPeaks)
	inPeak := make(map[int]bool, len(peaks))
	for _, p := range peaks {
		inPeak[p] = true
	}

	distribution := make([]float64, buckets)
	for i, c := range counts {
		distribution[i] = round(float64(c)/float64(len(sessions))*100, 2)
	}

	var peakAccuracy []float64
	for _, s := range completedSessions(sessions) {
		if inPeak[key(s.StartedAt.UTC())] {
			peakAccuracy = append(peakAccuracy, s.Accuracy)
		}
	}

	return StudyPattern{
		Type:                   kind,
		Description:            describePattern(kind, peaks),
		Peaks:                  peaks,
		Frequency:              round(float64(counts[peaks[0]])/float64(len(sessions)), 4),
		Distribution:           distribution,
		AverageSessionMinutes:  round(averageMinutes(sessions), 2),
		AverageCardsPerSession: round(cardsStudied(sessions)/float64(len(sessions)), 2),
		Effectiveness:          round(mean(peakAccuracy), 4),
	}
}

// topBuckets returns up to n non-empty buckets by descending count, earlier
// bucket first on ties.
func topBuckets(counts []int, n int) []int {
	idx := make([]int, 0, len(counts))
	for i, c := range counts {
		if c > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return counts[idx[a]] > counts[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

// averageMinutes is the mean duration of the completed sessions.
func averageMinutes(sessions []domain.Session) float64 {
	completed := completedSessions(sessions)
	if len(completed) == 0 {
		return 0
	}
	return studyMinutes(completed) / float64(len(completed))
}

func describePattern(kind PatternType, peaks []int) string {
	labels := make([]string, len(peaks))
	for i, p := range peaks {
		if kind == PatternTimeOfDay {
			labels[i] = formatHour(p)
		} else {
			labels[i] = time.Weekday(p).String()
		}
	}

	if kind == PatternTimeOfDay {
		return fmt.Sprintf("Most study sessions start around %s", strings.Join(labels, ", "))
	}
	return fmt.Sprintf("Most active on %s", strings.Join(labels, ", "))
}

// formatHour formats an hour (0-23) as a readable string
func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
