package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// testNow is a Wednesday noon.
var testNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

var testUser = uuid.MustParse("7d2c7a5e-2f1c-4b8e-9a51-0d6f3b7c9e10")

func completedSession(start time.Time, minutes, cards int, accuracy float64) domain.Session {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return domain.Session{
		ID:           uuid.New(),
		UserID:       testUser,
		SetID:        uuid.New(),
		Mode:         domain.StudyModeReview,
		StartedAt:    start,
		EndedAt:      &end,
		CardsStudied: cards,
		Accuracy:     accuracy,
	}
}

func openSession(start time.Time) domain.Session {
	return domain.Session{
		ID:        uuid.New(),
		UserID:    testUser,
		SetID:     uuid.New(),
		Mode:      domain.StudyModeLearn,
		StartedAt: start,
	}
}

// daysAgo returns testNow shifted back n days to the given hour.
func daysAgo(n, hour int) time.Time {
	return startOfDay(testNow).AddDate(0, 0, -n).Add(time.Duration(hour) * time.Hour)
}

func cardState(attempts, correct int, reviewed time.Time) domain.CardOutcome {
	return domain.CardOutcome{
		CardID:                 uuid.New(),
		UserID:                 testUser,
		SessionID:              uuid.New(),
		SetID:                  uuid.New(),
		Correct:                correct > 0,
		ResponseSeconds:        4,
		Attempts:               attempts,
		CorrectAttempts:        correct,
		LastReviewedAt:         reviewed,
		AverageResponseSeconds: 4,
	}
}

// sequentialIDs returns an IDFunc producing id-1, id-2, ...
func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testFacts(sessions []domain.Session, cards []domain.CardOutcome) facts {
	return newFacts(History{Sessions: sessions}, cards, testNow, DefaultOptions())
}
