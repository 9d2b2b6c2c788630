package models

// SongDescriptor is one candidate song as it enters the pipeline, either
// from embedded tags or from filename inference. Any field may be empty;
// triage decides what happens to incomplete descriptors.
type SongDescriptor struct {
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Album          string `json:"album,omitempty"`
	SourceFilename string `json:"source_filename,omitempty"`
}

// NormalizedDescriptor is a SongDescriptor after cleanup: trimmed,
// annotation-free title, exactly one artist name.
type NormalizedDescriptor struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// Label renders the descriptor as a human-readable "title by artist" string
// for the failed list and audit output.
func (d NormalizedDescriptor) Label() string {
	artist := d.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}
	return d.Title + " by " + artist
}

// CandidateTrack is one search hit from the catalog. It lives only for the
// duration of a single match operation.
type CandidateTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Popularity int    `json:"popularity,omitempty"`
}

type MatchStatus string

const (
	StatusMatched   MatchStatus = "MATCHED"
	StatusDuplicate MatchStatus = "DUPLICATE"
	StatusNotFound  MatchStatus = "NOT_FOUND"
)

// MatchOutcome is the per-descriptor result of the catalog matcher.
// Exactly one outcome exists per input descriptor: TrackID is set for
// MATCHED and DUPLICATE, Query carries the search text for NOT_FOUND.
type MatchOutcome struct {
	Status  MatchStatus `json:"status"`
	TrackID string      `json:"track_id,omitempty"`
	Query   string      `json:"query,omitempty"`
}

// ReconciliationResult is the net effect of one harvest run against the
// target playlist. ToAdd preserves input order with duplicates removed;
// Failed preserves the relative order of descriptors that missed.
type ReconciliationResult struct {
	ToAdd  []string `json:"to_add"`
	Failed []string `json:"failed"`
}

// HarvestReport is the run summary returned to the caller.
type HarvestReport struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Added        []string `json:"added"`
	Failed       []string `json:"failed"`
	NoTagFiles   []string `json:"no_tag_files,omitempty"`
	Timestamp    string   `json:"timestamp"`
}
