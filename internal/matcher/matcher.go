package matcher

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"harvest-go-srv/internal/database"
	"harvest-go-srv/internal/models"
)

// Searcher is the external catalog search collaborator.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error)
}

// searchLimit caps how many candidates one match operation considers.
const searchLimit = 5

type Matcher struct {
	searcher Searcher
	db       *sql.DB // optional match registry, nil disables caching
}

func New(searcher Searcher, db *sql.DB) *Matcher {
	return &Matcher{searcher: searcher, db: db}
}

// BuildQuery renders a descriptor as a field-constrained catalog query.
// The artist constraint is dropped when no artist survived normalization.
func BuildQuery(d models.NormalizedDescriptor) string {
	if d.Artist != "" {
		return fmt.Sprintf("track:%s artist:%s", d.Title, d.Artist)
	}
	return fmt.Sprintf("track:%s", d.Title)
}

// Match resolves one normalized descriptor to a catalog track id.
//
// Every descriptor gets exactly one outcome. A transient search failure is
// folded into NOT_FOUND for that descriptor so the rest of the batch keeps
// going; a candidate already present in existingIDs comes back DUPLICATE,
// which is a success, not a failure.
func (m *Matcher) Match(ctx context.Context, d models.NormalizedDescriptor, existingIDs map[string]bool) models.MatchOutcome {
	query := BuildQuery(d)

	// Registry hit skips the search entirely.
	if id, err := database.LookupMatch(m.db, query); err == nil {
		return m.outcomeFor(id, existingIDs)
	}

	candidates, err := m.searcher.SearchTracks(ctx, query, searchLimit)
	if err != nil {
		log.Printf("catalog search failed for %q: %v", query, err)
		return notFound(d)
	}
	if len(candidates) == 0 {
		return notFound(d)
	}

	best := bestCandidate(d, candidates)

	if err := database.RecordMatch(m.db, query, best.ID); err != nil {
		log.Printf("match registry write failed: %v", err)
	}

	return m.outcomeFor(best.ID, existingIDs)
}

func (m *Matcher) outcomeFor(id string, existingIDs map[string]bool) models.MatchOutcome {
	if existingIDs[id] {
		return models.MatchOutcome{Status: models.StatusDuplicate, TrackID: id}
	}
	return models.MatchOutcome{Status: models.StatusMatched, TrackID: id}
}

func notFound(d models.NormalizedDescriptor) models.MatchOutcome {
	return models.MatchOutcome{
		Status: models.StatusNotFound,
		Query:  d.Title + ", " + d.Artist,
	}
}

// bestCandidate ranks candidates by token-sort similarity against the
// descriptor and returns the highest scorer. Ties go to the earlier
// candidate, which keeps selection stable across runs.
func bestCandidate(d models.NormalizedDescriptor, candidates []models.CandidateTrack) models.CandidateTrack {
	target := d.Title + " " + d.Artist

	best := candidates[0]
	bestScore := -1

	for _, cand := range candidates {
		score := TokenSortRatio(cand.Name+" "+cand.Artist, target)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	return best
}

// TokenSortRatio scores two strings 0-100, ignoring word order: both sides
// are lowercased, split into tokens, sorted and rejoined before comparison.
func TokenSortRatio(a, b string) int {
	sim := strutil.Similarity(sortTokens(a), sortTokens(b), metrics.NewLevenshtein())
	return int(sim * 100)
}

func sortTokens(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
