package analytics

import (
	"testing"

	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecommendations(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	t.Run("no sessions", func(t *testing.T) {
		t.Parallel()
		recs := generateRecommendations(testFacts(nil, nil), Predictions{}, opts, sequentialIDs())
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})

	t.Run("every rule fires and high priority comes first", func(t *testing.T) {
		t.Parallel()
		sessions := []domain.Session{completedSession(daysAgo(2, 8), 20, 20, 0.4)}
		var cards []domain.CardOutcome
		for i := 0; i < 6; i++ {
			cards = append(cards, cardState(10, 2, testNow.AddDate(0, 0, -10)))
		}
		f := testFacts(sessions, cards)
		p := Predict(sessions, cards, testNow, opts)

		recs := generateRecommendations(f, p, opts, sequentialIDs())
		require.Len(t, recs, 4)

		assert.Equal(t, RecommendationSession, recs[0].Type)
		assert.Equal(t, PriorityHigh, recs[0].Priority)
		assert.Equal(t, ActionStartSession, recs[0].Action.Type)

		assert.Equal(t, ActionReviewCards, recs[1].Action.Type)
		assert.Equal(t, PriorityHigh, recs[1].Priority)
		assert.Len(t, recs[1].Action.Parameters.CardIDs, 6)

		assert.Equal(t, ActionPracticeCards, recs[2].Action.Type)
		assert.Equal(t, PriorityMedium, recs[2].Priority)

		assert.Equal(t, RecommendationSchedule, recs[3].Type)
		require.NotNil(t, recs[3].Action.Parameters.PreferredHour)
		assert.Equal(t, p.OptimalSession.Hour, *recs[3].Action.Parameters.PreferredHour)
		assert.Equal(t, 3, recs[3].Action.Parameters.TargetSessionsPerWeek)

		// IDs follow rule evaluation order, not the sorted order
		assert.Equal(t, "id-1", recs[0].ID)
		assert.Equal(t, "id-3", recs[1].ID)
		assert.Equal(t, "id-2", recs[2].ID)
		assert.Equal(t, "id-4", recs[3].ID)

		assert.Equal(t, testNow, recs[0].ValidFrom)
		assert.Equal(t, testNow.AddDate(0, 0, 3), recs[0].ValidUntil)
		assert.Equal(t, testNow.AddDate(0, 0, 14), recs[3].ValidUntil)
	})

	t.Run("frequent accurate studier gets nothing", func(t *testing.T) {
		t.Parallel()
		sessions := []domain.Session{
			completedSession(daysAgo(1, 8), 20, 20, 0.9),
			completedSession(daysAgo(2, 8), 20, 20, 0.9),
			completedSession(daysAgo(3, 8), 20, 20, 0.9),
		}
		cards := []domain.CardOutcome{cardState(10, 9, testNow.AddDate(0, 0, -1))}
		f := testFacts(sessions, cards)

		recs := generateRecommendations(f, Predict(sessions, cards, testNow, opts), opts, sequentialIDs())
		assert.Empty(t, recs)
	})
}
