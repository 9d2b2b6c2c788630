package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"harvest-go-srv/internal/models"
)

// WriteReport persists the run outcome as a CSV next to the registry so the
// user can retry or manually resolve failed tracks later. Returns the path
// of the written file.
func WriteReport(dir string, report models.HarvestReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create audit dir: %w", err)
	}

	path := filepath.Join(dir, sanitizeName(report.PlaylistName)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create audit file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"status", "detail"}); err != nil {
		return "", err
	}
	for _, id := range report.Added {
		if err := w.Write([]string{"added", id}); err != nil {
			return "", err
		}
	}
	for _, label := range report.Failed {
		if err := w.Write([]string{"failed", label}); err != nil {
			return "", err
		}
	}
	for _, name := range report.NoTagFiles {
		if err := w.Write([]string{"no_tags", name}); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	return replacer.Replace(strings.TrimSpace(name))
}
