package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/quizboard/pkg/models"
)

func user(name string, quizzes, total int, seconds, final float64) models.ScoredUser {
	return models.ScoredUser{
		UserStats: models.UserStats{
			Username:            name,
			QuizzesParticipated: quizzes,
			TotalScore:          total,
			TotalSeconds:        seconds,
		},
		FinalScore: final,
	}
}

func TestRank_TieBreakChain(t *testing.T) {
	scored := map[string]models.ScoredUser{
		"top":       user("top", 3, 30, 60, 95),
		"points":    user("points", 2, 20, 40, 80), // avg 10
		"fewpoints": user("fewpoints", 2, 18, 40, 80),
		"slow":      user("slow", 1, 10, 30, 80), // avg 10, avg time 30
		"fast":      user("fast", 2, 20, 20, 80), // avg 10, avg time 10
		"more":      user("more", 4, 40, 40, 70), // same avgs as "less"
		"less":      user("less", 2, 20, 20, 70),
		"bravo":     user("bravo", 1, 5, 5, 10),
		"alpha":     user("alpha", 1, 5, 5, 10),
	}

	rows := Rank(scored)
	require.Len(t, rows, len(scored))

	var names []string
	for _, r := range rows {
		names = append(names, r.Username)
	}
	assert.Equal(t, []string{"top", "fast", "points", "slow", "fewpoints", "more", "less", "alpha", "bravo"}, names)
}

func TestRank_DenseAndMonotonic(t *testing.T) {
	scored := map[string]models.ScoredUser{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		scored[name] = user(name, 1+i%3, 10*(i%4), float64(10*i), float64(i*7%5)*10)
	}

	for run := 0; run < 5; run++ {
		rows := Rank(scored)
		for i, r := range rows {
			assert.Equal(t, i+1, r.Rank)
			if i > 0 {
				assert.GreaterOrEqual(t, rows[i-1].FinalScore, r.FinalScore)
			}
		}
		assert.Equal(t, Rank(scored), rows)
	}
}

func TestRank_Rounding(t *testing.T) {
	u := user("a", 3, 10, 100, 66.66666)
	u.Stars = 7

	rows := Rank(map[string]models.ScoredUser{"a": u})
	require.Len(t, rows, 1)
	assert.Equal(t, 3.33, rows[0].AvgPoints)
	assert.Equal(t, 33.3, rows[0].AvgTime)
	assert.Equal(t, 66.67, rows[0].FinalScore)
	assert.Equal(t, 7, rows[0].Stars)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
