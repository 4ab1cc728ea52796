// Package aggregator folds quiz results into per-user statistics
package aggregator

import (
	"github.com/myusername/quizboard/pkg/models"
)

// Aggregate groups results by username. Usernames are compared exactly, so
// "Abel" and "abel" are different users. Every returned entry has at least
// one quiz.
func Aggregate(results []models.QuizResult) map[string]models.UserStats {
	stats := make(map[string]models.UserStats)
	for _, r := range results {
		s := stats[r.Username]
		s.Username = r.Username
		s.QuizzesParticipated++
		s.TotalScore += r.Score
		s.TotalSeconds += r.ElapsedSeconds
		stats[r.Username] = s
	}
	return stats
}
