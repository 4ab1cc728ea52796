package writer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/quizboard/pkg/models"
)

var sampleRows = []models.LeaderboardRow{
	{Rank: 1, Username: "abel", QuizzesParticipated: 10, AvgPoints: 8, AvgTime: 40, FinalScore: 100, Stars: 10},
	{Rank: 2, Username: "Sara, K", QuizzesParticipated: 5, AvgPoints: 3.33, AvgTime: 95.3, FinalScore: 62.5, Stars: 7},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows, "🌟"))

	want := "Rank,Username,Quizzes_Participated,Avg_Points,Avg_Time,Final_Score,Remark\n" +
		"1,abel,10,8.00,40.0,100.00,10🌟\n" +
		"2,\"Sara, K\",5,3.33,95.3,62.50,7🌟\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_EmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, "🌟"))
	assert.Equal(t, "Rank,Username,Quizzes_Participated,Avg_Points,Avg_Time,Final_Score,Remark\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRows, "🌟"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "10🌟", got[0]["remark"])
	assert.Equal(t, 62.5, got[1]["final_score"])
	assert.Equal(t, "Sara, K", got[1]["username"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil, "🌟"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render("xml", sampleRows, "🌟")
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "board.csv")

	require.NoError(t, WriteFile(path, FormatCSV, sampleRows, "🌟"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,abel,10,8.00,40.0,100.00,10🌟")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFile_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	err := WriteFile(path, "xml", sampleRows, "🌟")
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestWriteFile_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "board.csv")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0644))

	require.Error(t, WriteFile(target, FormatCSV, sampleRows, "🌟"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed write must clean up its temp file")
}

func TestWriteCleaned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_cleaned.txt")
	log := models.CleanedLog{Lines: []string{"🥇 @a – 5 (20 sec)", "", "", "🥇 @b – 4 (21 sec)"}}

	require.NoError(t, WriteCleaned(path, log))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, log.String(), string(data))
}
