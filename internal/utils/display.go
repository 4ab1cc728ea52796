// Package utils provides terminal output helpers for quizboard
package utils

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/myusername/quizboard/pkg/models"
	"github.com/myusername/quizboard/pkg/writer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	topStyle    = cellStyle.Foreground(lipgloss.Color("220"))
)

// LeaderboardTable renders the first top rows as a bordered table.
// A top of zero or less renders every row.
func LeaderboardTable(rows []models.LeaderboardRow, top int, glyph string) string {
	if top <= 0 || top > len(rows) {
		top = len(rows)
	}

	records := make([][]string, 0, top)
	for _, row := range rows[:top] {
		records = append(records, writer.Record(row, glyph))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(writer.Header...).
		Rows(records...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0:
				return topStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

// DisplayLeaderboard prints the top rows with a short title
func DisplayLeaderboard(w io.Writer, rows []models.LeaderboardRow, top int, glyph string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No participants on the leaderboard")
		return
	}
	if top <= 0 || top > len(rows) {
		top = len(rows)
	}
	fmt.Fprintf(w, "\nTop %d of %d participants:\n", top, len(rows))
	fmt.Fprintln(w, LeaderboardTable(rows, top, glyph))
}
