// Package models contains data structures for quiz results and leaderboards
package models

import (
	"strconv"
	"strings"
)

// Ranking markers used by the chat bot that posts quiz results
const (
	GoldMedal   = "🥇"
	SilverMedal = "🥈"
	BronzeMedal = "🥉"

	// Separator is the en-dash between a username and its score
	Separator = "–"
)

// QuizResult holds one participant's result in a single quiz
type QuizResult struct {
	Username       string
	Score          int
	ElapsedSeconds float64
	TimeRaw        string
}

// UserStats holds cumulative statistics for one user across all quizzes
type UserStats struct {
	Username            string
	QuizzesParticipated int
	TotalScore          int
	TotalSeconds        float64
}

// AvgPoints returns the average score per quiz
func (s UserStats) AvgPoints() float64 {
	if s.QuizzesParticipated == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.QuizzesParticipated)
}

// AvgTime returns the average elapsed seconds per quiz
func (s UserStats) AvgTime() float64 {
	if s.QuizzesParticipated == 0 {
		return 0
	}
	return s.TotalSeconds / float64(s.QuizzesParticipated)
}

// ScoredUser holds a user's statistics along with the composite score
type ScoredUser struct {
	UserStats
	Participation float64
	Accuracy      float64
	Speed         float64
	FinalScore    float64
	Stars         int
}

// LeaderboardRow is one row of the published leaderboard
type LeaderboardRow struct {
	Rank                int
	Username            string
	QuizzesParticipated int
	AvgPoints           float64
	AvgTime             float64
	FinalScore          float64
	Stars               int
}

// Remark renders the star tier as a numeral followed by the star glyph
func (r LeaderboardRow) Remark(glyph string) string {
	return strconv.Itoa(r.Stars) + glyph
}

// CleanedLog is a cleaned quiz log: ranking lines with blank-line separators
// between quiz sections
type CleanedLog struct {
	Lines []string
}

// Empty reports whether the log holds no ranking lines
func (l CleanedLog) Empty() bool {
	for _, line := range l.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// Sections splits the log into quiz sections on blank lines
func (l CleanedLog) Sections() [][]string {
	var sections [][]string
	var current []string
	for _, line := range l.Lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				sections = append(sections, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// String joins the log into newline-terminated text
func (l CleanedLog) String() string {
	if len(l.Lines) == 0 {
		return ""
	}
	return strings.Join(l.Lines, "\n") + "\n"
}
