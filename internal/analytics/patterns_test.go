package analytics

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(month time.Month, dayOfMonth, hour int) time.Time {
	return time.Date(2025, month, dayOfMonth, hour, 0, 0, 0, time.UTC)
}

func TestDetectPatterns(t *testing.T) {
	t.Parallel()

	t.Run("no sessions", func(t *testing.T) {
		t.Parallel()
		patterns := DetectPatterns(nil)
		assert.NotNil(t, patterns)
		assert.Empty(t, patterns)
	})

	// One session on each day of a week; three of them start at 7 PM.
	sessions := []domain.Session{
		completedSession(at(time.June, 16, 19), 20, 10, 0.9), // Monday
		completedSession(at(time.June, 17, 19), 20, 10, 0.8), // Tuesday
		completedSession(at(time.June, 12, 19), 20, 10, 0.7), // Thursday
		completedSession(at(time.June, 11, 8), 20, 10, 0.5),  // Wednesday
		completedSession(at(time.June, 13, 10), 20, 10, 0.3), // Friday
		completedSession(at(time.June, 14, 12), 20, 10, 0.2), // Saturday
		completedSession(at(time.June, 15, 14), 20, 10, 0.1), // Sunday
	}

	patterns := DetectPatterns(sessions)
	require.Len(t, patterns, 2)

	t.Run("time of day", func(t *testing.T) {
		t.Parallel()
		p := patterns[0]
		assert.Equal(t, PatternTimeOfDay, p.Type)
		assert.Equal(t, []int{19, 8, 10}, p.Peaks, "ties go to the earlier hour")
		assert.InDelta(t, 0.4286, p.Frequency, 1e-9)
		require.Len(t, p.Distribution, 24)
		assert.InDelta(t, 42.86, p.Distribution[19], 1e-9)
		assert.Zero(t, p.Distribution[0])
		assert.InDelta(t, 20, p.AverageSessionMinutes, 1e-9)
		assert.InDelta(t, 10, p.AverageCardsPerSession, 1e-9)
		assert.InDelta(t, 0.64, p.Effectiveness, 1e-9, "only sessions inside the peak hours count")
		assert.Equal(t, "Most study sessions start around 7 PM, 8 AM, 10 AM", p.Description)
	})

	t.Run("day of week", func(t *testing.T) {
		t.Parallel()
		p := patterns[1]
		assert.Equal(t, PatternDayOfWeek, p.Type)
		assert.Equal(t, []int{int(time.Sunday), int(time.Monday), int(time.Tuesday)}, p.Peaks)
		assert.InDelta(t, 0.1429, p.Frequency, 1e-9)
		require.Len(t, p.Distribution, 7)
		assert.Equal(t, "Most active on Sunday, Monday, Tuesday", p.Description)
	})

	t.Run("open sessions count toward frequency only", func(t *testing.T) {
		t.Parallel()
		p := DetectPatterns([]domain.Session{openSession(at(time.June, 16, 6))})[0]
		assert.Equal(t, []int{6}, p.Peaks)
		assert.InDelta(t, 1, p.Frequency, 1e-9)
		assert.Zero(t, p.Effectiveness)
		assert.Zero(t, p.AverageSessionMinutes)
	})
}

func TestFormatHour(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0:  "12 AM",
		9:  "9 AM",
		12: "12 PM",
		13: "1 PM",
		23: "11 PM",
	}
	for hour, want := range tests {
		assert.Equal(t, want, formatHour(hour))
	}
}
