// Package writer serializes leaderboards and cleaned logs to files
package writer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/myusername/quizboard/pkg/models"
)

// Supported leaderboard formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Header is the fixed leaderboard column order
var Header = []string{"Rank", "Username", "Quizzes_Participated", "Avg_Points", "Avg_Time", "Final_Score", "Remark"}

// Record formats one row in Header order
func Record(row models.LeaderboardRow, glyph string) []string {
	return []string{
		strconv.Itoa(row.Rank),
		row.Username,
		strconv.Itoa(row.QuizzesParticipated),
		strconv.FormatFloat(row.AvgPoints, 'f', 2, 64),
		strconv.FormatFloat(row.AvgTime, 'f', 1, 64),
		strconv.FormatFloat(row.FinalScore, 'f', 2, 64),
		row.Remark(glyph),
	}
}

// WriteCSV writes the header and every row as CSV
func WriteCSV(w io.Writer, rows []models.LeaderboardRow, glyph string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(Record(row, glyph)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Rank, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonRow is the JSON shape of a leaderboard row
type jsonRow struct {
	Rank                int     `json:"rank"`
	Username            string  `json:"username"`
	QuizzesParticipated int     `json:"quizzes_participated"`
	AvgPoints           float64 `json:"avg_points"`
	AvgTime             float64 `json:"avg_time"`
	FinalScore          float64 `json:"final_score"`
	Remark              string  `json:"remark"`
	Stars               int     `json:"stars"`
}

// WriteJSON writes the rows as an indented JSON array
func WriteJSON(w io.Writer, rows []models.LeaderboardRow, glyph string) error {
	out := make([]jsonRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, jsonRow{
			Rank:                row.Rank,
			Username:            row.Username,
			QuizzesParticipated: row.QuizzesParticipated,
			AvgPoints:           row.AvgPoints,
			AvgTime:             row.AvgTime,
			FinalScore:          row.FinalScore,
			Remark:              row.Remark(glyph),
			Stars:               row.Stars,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	return nil
}

// Render serializes the rows in the given format
func Render(format string, rows []models.LeaderboardRow, glyph string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, rows, glyph)
	case FormatJSON:
		err = WriteJSON(&buf, rows, glyph)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the leaderboard and replaces path with it atomically.
// On failure the previous file, if any, is left as it was.
func WriteFile(path, format string, rows []models.LeaderboardRow, glyph string) error {
	data, err := Render(format, rows, glyph)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// WriteCleaned writes a cleaned log as plain text
func WriteCleaned(path string, log models.CleanedLog) error {
	return atomicWrite(path, []byte(log.String()))
}

func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
