package audit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest-go-srv/internal/models"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()

	report := models.HarvestReport{
		PlaylistName: "Summer Mix",
		Added:        []string{"id1", "id2"},
		Failed:       []string{"Lost Song by Nobody"},
		NoTagFiles:   []string{"mystery.mp3"},
	}

	path, err := WriteReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Summer_Mix.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"status", "detail"},
		{"added", "id1"},
		{"added", "id2"},
		{"failed", "Lost Song by Nobody"},
		{"no_tags", "mystery.mp3"},
	}, rows)
}

func TestWriteReportCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audit")

	_, err := WriteReport(dir, models.HarvestReport{PlaylistName: "x"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "x.csv"))
	assert.NoError(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitizeName("a/b c"))
	assert.Equal(t, "plain", sanitizeName(" plain "))
}
