package scoring

import (
	"github.com/phrazzld/scry-analytics/internal/domain"
)

// LevelProgress describes where a total score sits inside its tier.
// NextLevel is nil at the top tier. PointsToNext is the score still needed to
// enter NextLevel.
type LevelProgress struct {
	CurrentLevel    domain.Level  `json:"current_level"`
	NextLevel       *domain.Level `json:"next_level"`
	ProgressPercent float64       `json:"progress_percent"`
	PointsToNext    int           `json:"points_to_next"`
}

// tier is one level with its score bounds. A score belongs to the first tier
// whose upper bound it does not exceed.
type tier struct {
	level domain.Level
	lower int
	upper int
}

func (s *defaultService) tiers() []tier {
	p := s.params
	return []tier{
		{level: domain.LevelBeginner, lower: 0, upper: p.BeginnerMax},
		{level: domain.LevelIntermediate, lower: p.BeginnerMax, upper: p.IntermediateMax},
		{level: domain.LevelAdvanced, lower: p.IntermediateMax, upper: p.AdvancedMax},
	}
}

// UserLevel implements Service. Upper bounds are inclusive: a score equal to
// BeginnerMax is still beginner.
func (s *defaultService) UserLevel(totalScore int) domain.Level {
	for _, t := range s.tiers() {
		if totalScore <= t.upper {
			return t.level
		}
	}
	return domain.LevelExpert
}

// LevelProgress implements Service.
func (s *defaultService) LevelProgress(totalScore int) LevelProgress {
	totalScore = max(0, totalScore)

	tiers := s.tiers()
	for i, t := range tiers {
		if totalScore > t.upper {
			continue
		}

		next := domain.LevelExpert
		if i+1 < len(tiers) {
			next = tiers[i+1].level
		}

		span := t.upper - t.lower
		percent := 100.0
		if span > 0 {
			percent = float64(totalScore-t.lower) / float64(span) * 100
		}

		return LevelProgress{
			CurrentLevel:    t.level,
			NextLevel:       &next,
			ProgressPercent: clampPercent(percent),
			PointsToNext:    t.upper + 1 - totalScore,
		}
	}

	return LevelProgress{
		CurrentLevel:    domain.LevelExpert,
		NextLevel:       nil,
		ProgressPercent: 100,
		PointsToNext:    0,
	}
}

func clampPercent(p float64) float64 {
	return min(100, max(0, p))
}
