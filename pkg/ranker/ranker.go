// Package ranker orders scored users into a leaderboard
package ranker

import (
	"math"
	"sort"

	"github.com/myusername/quizboard/pkg/models"
)

// Less reports whether a ranks above b. The chain is final score desc,
// average points desc, average time asc, quizzes desc, then username asc,
// which makes the order total and independent of map iteration.
func Less(a, b models.ScoredUser) bool {
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	if ap, bp := a.AvgPoints(), b.AvgPoints(); ap != bp {
		return ap > bp
	}
	if at, bt := a.AvgTime(), b.AvgTime(); at != bt {
		return at < bt
	}
	if a.QuizzesParticipated != b.QuizzesParticipated {
		return a.QuizzesParticipated > b.QuizzesParticipated
	}
	return a.Username < b.Username
}

// Rank sorts the users and assigns dense 1-based ranks
func Rank(scored map[string]models.ScoredUser) []models.LeaderboardRow {
	users := make([]models.ScoredUser, 0, len(scored))
	for _, u := range scored {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return Less(users[i], users[j])
	})

	rows := make([]models.LeaderboardRow, len(users))
	for i, u := range users {
		rows[i] = models.LeaderboardRow{
			Rank:                i + 1,
			Username:            u.Username,
			QuizzesParticipated: u.QuizzesParticipated,
			AvgPoints:           round(u.AvgPoints(), 2),
			AvgTime:             round(u.AvgTime(), 1),
			FinalScore:          round(u.FinalScore, 2),
			Stars:               u.Stars,
		}
	}
	return rows
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
