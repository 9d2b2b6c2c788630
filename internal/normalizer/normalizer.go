package normalizer

import (
	"regexp"
	"strings"

	"harvest-go-srv/internal/models"
)

// Cleanup rules for noisy rip/download metadata. Bracketed groups carry
// annotations like "(Official Video)" or "[320kbps]" that poison catalog
// search, and a trailing hyphen section is almost always a variant marker
// or uploader junk rather than part of the song name.
var (
	bracketGroups = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	trailingDash  = regexp.MustCompile(`\s+-.*$`)
	promoMarkers  = regexp.MustCompile(`(?i)\b(feat\.?|ft\.?|official|video|audio|lyrics|[0-9]{2,4}\s*kbps)\b.*`)
	multiSpace    = regexp.MustCompile(`\s{2,}`)
)

// Normalize cleans a raw descriptor into search-ready title and artist
// strings. Pure: no I/O, deterministic for any input.
func Normalize(d models.SongDescriptor) models.NormalizedDescriptor {
	title, artist := CleanMetadata(d.Title, d.Artist)
	return models.NormalizedDescriptor{
		Title:  title,
		Artist: artist,
		Album:  strings.TrimSpace(d.Album),
	}
}

// CleanMetadata applies the cleanup rules to a title/artist pair.
// When the title embeds an "Artist - Title" pattern and no artist was
// supplied, the two halves are reassigned before the regex pass runs.
func CleanMetadata(title, artist string) (string, string) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)

	if artist == "" {
		if before, after, found := strings.Cut(title, " - "); found {
			artist = strings.TrimSpace(before)
			title = strings.TrimSpace(after)
		}
	}

	title = cleanField(title)
	artist = cleanField(PrimaryArtist(artist))

	return title, artist
}

// PrimaryArtist reduces a comma-separated artist list to its first entry.
func PrimaryArtist(artist string) string {
	first, _, _ := strings.Cut(artist, ",")
	return strings.TrimSpace(first)
}

func cleanField(s string) string {
	s = bracketGroups.ReplaceAllString(s, " ")
	s = trailingDash.ReplaceAllString(s, "")
	s = promoMarkers.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
