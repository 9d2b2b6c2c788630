package triage

import (
	"strings"

	"harvest-go-srv/internal/models"
)

// Split partitions a batch of descriptors into those that can go straight
// to catalog matching and the source filenames that need AI inference.
//
// Usability policy: a descriptor is usable only when both title and artist
// are non-empty after trimming. Descriptors failing that test contribute
// their filename to the inference queue; a descriptor with neither usable
// metadata nor a filename is dropped, since nothing can recover it.
// Relative order is preserved within both outputs.
func Split(batch []models.SongDescriptor) (usable []models.SongDescriptor, needsInference []string) {
	for _, d := range batch {
		title := strings.TrimSpace(d.Title)
		artist := strings.TrimSpace(d.Artist)

		if title != "" && artist != "" {
			usable = append(usable, d)
			continue
		}
		if d.SourceFilename != "" {
			needsInference = append(needsInference, d.SourceFilename)
		}
	}
	return usable, needsInference
}
