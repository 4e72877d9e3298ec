package analytics

import (
	"sort"
	"time"

	"github.com/phrazzld/scry-analytics/internal/domain"
)

// facts are the aggregates shared by the insight and recommendation rules.
// They are computed once per report over the full history.
type facts struct {
	now              time.Time
	sessions         int
	completed        int
	overallAccuracy  float64
	sessionsLastWeek int
	dayStreak        int
	cards            []domain.CardOutcome
	difficultCards   []domain.CardOutcome
}

func newFacts(h History, cards []domain.CardOutcome, now time.Time, opts Options) facts {
	completed := completedSessions(h.Sessions)

	f := facts{
		now:              now,
		sessions:         len(h.Sessions),
		completed:        len(completed),
		overallAccuracy:  mean(accuracies(completed)),
		sessionsLastWeek: len(sessionsSince(h.Sessions, now.Add(-time.Duration(opts.InactivityDays)*day))),
		dayStreak:        dayStreak(h.Sessions, now),
		cards:            cards,
	}

	for _, c := range cards {
		if c.HasAttempts() && c.Accuracy() < opts.DifficultCardAccuracy {
			f.difficultCards = append(f.difficultCards, c)
		}
	}
	// hardest first so samples show the worst cards
	sort.SliceStable(f.difficultCards, func(i, j int) bool {
		return f.difficultCards[i].Accuracy() < f.difficultCards[j].Accuracy()
	})

	return f
}
