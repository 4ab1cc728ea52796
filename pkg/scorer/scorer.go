// Package scorer computes the weighted composite score and star tier for each user
package scorer

import (
	"math"

	"go.uber.org/zap"

	"github.com/myusername/quizboard/internal/config"
	"github.com/myusername/quizboard/pkg/models"
)

// Scorer blends participation, accuracy and speed into a final score
type Scorer struct {
	weights config.ScoringConfig
	stars   config.StarConfig
	logger  *zap.Logger
}

// New creates a Scorer with fixed weights and star tiers
func New(weights config.ScoringConfig, stars config.StarConfig, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{weights: weights, stars: stars, logger: logger}
}

// Score computes a ScoredUser for every entry. The maxima used for
// normalization are taken once over the whole set. An empty result is
// returned when either maximum is zero.
func (s *Scorer) Score(stats map[string]models.UserStats) map[string]models.ScoredUser {
	maxQuizzes := 0
	maxAvgPoints := 0.0
	for _, u := range stats {
		if u.QuizzesParticipated > maxQuizzes {
			maxQuizzes = u.QuizzesParticipated
		}
		if avg := u.AvgPoints(); avg > maxAvgPoints {
			maxAvgPoints = avg
		}
	}

	scored := make(map[string]models.ScoredUser, len(stats))
	if maxQuizzes == 0 || maxAvgPoints == 0 {
		s.logger.Warn("Nothing to score",
			zap.Int("users", len(stats)),
			zap.Int("max_quizzes", maxQuizzes),
			zap.Float64("max_avg_points", maxAvgPoints))
		return scored
	}

	for name, u := range stats {
		scored[name] = s.scoreUser(u, maxQuizzes, maxAvgPoints)
	}
	return scored
}

func (s *Scorer) scoreUser(u models.UserStats, maxQuizzes int, maxAvgPoints float64) models.ScoredUser {
	participation := float64(u.QuizzesParticipated) / float64(maxQuizzes) * s.weights.ParticipationWeight
	accuracy := u.AvgPoints() / maxAvgPoints * s.weights.AccuracyWeight
	speed := s.SpeedScore(u.AvgTime())

	// Clamped so float error at the top of the scale cannot push past the weight total
	final := math.Max(0, math.Min(participation+accuracy+speed, s.weights.MaxScore()))

	return models.ScoredUser{
		UserStats:     u,
		Participation: participation,
		Accuracy:      accuracy,
		Speed:         speed,
		FinalScore:    final,
		Stars:         s.StarTier(final),
	}
}

// SpeedScore gives the full speed weight at or under the cutoff and decays
// inversely with the average time above it
func (s *Scorer) SpeedScore(avgTime float64) float64 {
	cutoff := s.weights.SpeedCutoffSeconds
	if avgTime <= cutoff {
		return s.weights.SpeedWeight
	}
	return cutoff / avgTime * s.weights.SpeedWeight
}

// StarTier maps a final score to a star count using the first tier whose
// threshold the score reaches
func (s *Scorer) StarTier(score float64) int {
	for _, tier := range s.stars.Tiers {
		if score >= tier.MinScore {
			return tier.Stars
		}
	}
	return s.stars.Floor
}
