package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()

	assert.Equal(t, 10, params.CorrectPoints)
	assert.Equal(t, -5, params.IncorrectPoints)
	assert.Less(t, params.FastThreshold, params.NormalThreshold)
	assert.Less(t, params.NormalThreshold, params.SlowThreshold)
	assert.Greater(t, params.FastBonus, params.NormalBonus)
	assert.Greater(t, params.NormalBonus, params.SlowBonus)
	assert.Equal(t, 5, params.StreakThreshold)
	assert.Equal(t, []int{100, 300, 500}, []int{params.BeginnerMax, params.IntermediateMax, params.AdvancedMax})
}

func TestNewParams(t *testing.T) {
	t.Parallel()

	t.Run("zero config keeps defaults", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, NewDefaultParams(), NewParams(ParamsConfig{}))
	})

	t.Run("overrides apply", func(t *testing.T) {
		t.Parallel()
		params := NewParams(ParamsConfig{
			CorrectPoints:        20,
			IncorrectPoints:      -10,
			FastThresholdSeconds: 2.5,
			StreakThreshold:      3,
			StreakBonus:          7,
			BeginnerMax:          50,
		})

		assert.Equal(t, 20, params.CorrectPoints)
		assert.Equal(t, -10, params.IncorrectPoints)
		assert.Equal(t, 2500*time.Millisecond, params.FastThreshold)
		assert.Equal(t, 5*time.Second, params.NormalThreshold)
		assert.Equal(t, 3, params.StreakThreshold)
		assert.Equal(t, 7, params.StreakBonus)
		assert.Equal(t, 50, params.BeginnerMax)
		assert.Equal(t, 300, params.IntermediateMax)
	})
}
