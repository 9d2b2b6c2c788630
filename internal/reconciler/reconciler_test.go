package reconciler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"harvest-go-srv/internal/models"
)

// fakeMatcher resolves by title: "miss" prefixed titles are NOT_FOUND,
// otherwise the title itself is the track id. existingIDs is honored the
// way the real matcher does it.
type fakeMatcher struct{}

func (fakeMatcher) Match(_ context.Context, d models.NormalizedDescriptor, existingIDs map[string]bool) models.MatchOutcome {
	if len(d.Title) >= 4 && d.Title[:4] == "miss" {
		return models.MatchOutcome{Status: models.StatusNotFound, Query: d.Title + ", " + d.Artist}
	}
	if existingIDs[d.Title] {
		return models.MatchOutcome{Status: models.StatusDuplicate, TrackID: d.Title}
	}
	return models.MatchOutcome{Status: models.StatusMatched, TrackID: d.Title}
}

func descriptors(titles ...string) []models.NormalizedDescriptor {
	out := make([]models.NormalizedDescriptor, len(titles))
	for i, title := range titles {
		out[i] = models.NormalizedDescriptor{Title: title, Artist: "Artist"}
	}
	return out
}

func TestReconcileSplitsOutcomes(t *testing.T) {
	r := New(fakeMatcher{})

	result := r.Reconcile(context.Background(),
		descriptors("one", "missA", "two", "missB"),
		nil)

	assert.Equal(t, []string{"one", "two"}, result.ToAdd)
	assert.Equal(t, []string{"missA by Artist", "missB by Artist"}, result.Failed)
}

func TestReconcileDeduplicatesWithinRun(t *testing.T) {
	r := New(fakeMatcher{})

	result := r.Reconcile(context.Background(),
		descriptors("same", "same", "other", "same"),
		nil)

	assert.Equal(t, []string{"same", "other"}, result.ToAdd)
	assert.Empty(t, result.Failed)
}

func TestReconcileAbsorbsDuplicates(t *testing.T) {
	r := New(fakeMatcher{})

	result := r.Reconcile(context.Background(),
		descriptors("fresh", "onplaylist"),
		map[string]bool{"onplaylist": true})

	// already-present tracks are success, not failure
	assert.Equal(t, []string{"fresh"}, result.ToAdd)
	assert.Empty(t, result.Failed)
}

func TestReconcileFailedPreservesOrder(t *testing.T) {
	r := New(fakeMatcher{})

	result := r.Reconcile(context.Background(),
		descriptors("missZ", "hit", "missA", "missM"),
		nil)

	assert.Equal(t, []string{"missZ by Artist", "missA by Artist", "missM by Artist"}, result.Failed)
}

func TestReconcileEmptyInput(t *testing.T) {
	r := New(fakeMatcher{})

	result := r.Reconcile(context.Background(), nil, nil)

	assert.Empty(t, result.ToAdd)
	assert.Empty(t, result.Failed)
}

func TestReconcileParallelMatchesSequential(t *testing.T) {
	titles := []string{"a", "missX", "b", "a", "c", "missY", "b", "d"}

	sequential := New(fakeMatcher{}).Reconcile(context.Background(), descriptors(titles...), nil)
	parallel := NewParallel(fakeMatcher{}, 4).Reconcile(context.Background(), descriptors(titles...), nil)

	assert.Equal(t, sequential, parallel)
}

func TestReconcileOnOutcomeObservesInputOrder(t *testing.T) {
	r := NewParallel(fakeMatcher{}, 3)

	var seen []int
	r.OnOutcome = func(index int, _ models.NormalizedDescriptor, _ models.MatchOutcome) {
		seen = append(seen, index)
	}

	r.Reconcile(context.Background(), descriptors("a", "b", "c", "d"), nil)

	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}
