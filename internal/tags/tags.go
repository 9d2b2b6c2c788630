package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"

	"harvest-go-srv/internal/models"
)

var mediaExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
}

// FindMediaFiles lists the audio files directly under dir, in directory
// order, as full paths.
func FindMediaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// ReadTags pulls title/artist/album out of the file's embedded tags.
// Non-mp3 files and unreadable tags yield an all-empty descriptor; the
// source filename is always set so triage can route the file to inference.
func ReadTags(path string) models.SongDescriptor {
	d := models.SongDescriptor{SourceFilename: filepath.Base(path)}

	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return d
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return d
	}
	defer tag.Close()

	d.Title = strings.TrimSpace(tag.Title())
	d.Artist = strings.TrimSpace(tag.Artist())
	d.Album = strings.TrimSpace(tag.Album())
	return d
}

// HarvestDirectory reads tags for every media file under dir, one
// descriptor per file in directory order.
func HarvestDirectory(dir string) ([]models.SongDescriptor, error) {
	files, err := FindMediaFiles(dir)
	if err != nil {
		return nil, err
	}

	descriptors := make([]models.SongDescriptor, 0, len(files))
	for _, f := range files {
		descriptors = append(descriptors, ReadTags(f))
	}

	return descriptors, nil
}
