package reconciler

import (
	"context"

	"github.com/arunsworld/nursery"

	"harvest-go-srv/internal/models"
)

// TrackMatcher resolves one descriptor against the catalog.
type TrackMatcher interface {
	Match(ctx context.Context, d models.NormalizedDescriptor, existingIDs map[string]bool) models.MatchOutcome
}

type Reconciler struct {
	matcher TrackMatcher
	workers int // 0 or 1 means sequential

	// OnOutcome, when set, observes each outcome in input order during
	// assembly. Used by the HTTP layer to stream per-track progress.
	OnOutcome func(index int, d models.NormalizedDescriptor, outcome models.MatchOutcome)
}

func New(matcher TrackMatcher) *Reconciler {
	return &Reconciler{matcher: matcher}
}

// NewParallel returns a reconciler that runs up to workers match calls
// concurrently. Results are still assembled in input order, so the output
// is identical to the sequential reconciler's.
func NewParallel(matcher TrackMatcher, workers int) *Reconciler {
	return &Reconciler{matcher: matcher, workers: workers}
}

// Reconcile matches every descriptor and splits the outcomes:
// MATCHED ids land in ToAdd (deduplicated against both existingIDs and ids
// already chosen earlier in this run), NOT_FOUND descriptors land in Failed
// as "title by artist" strings, DUPLICATE outcomes are absorbed silently.
// existingIDs is read-only throughout the run.
func (r *Reconciler) Reconcile(ctx context.Context, descriptors []models.NormalizedDescriptor, existingIDs map[string]bool) models.ReconciliationResult {
	outcomes := make([]models.MatchOutcome, len(descriptors))

	if r.workers > 1 {
		r.matchConcurrently(ctx, descriptors, existingIDs, outcomes)
	} else {
		for i, d := range descriptors {
			outcomes[i] = r.matcher.Match(ctx, d, existingIDs)
		}
	}

	result := models.ReconciliationResult{
		ToAdd:  []string{},
		Failed: []string{},
	}
	chosen := make(map[string]bool)

	for i, outcome := range outcomes {
		if r.OnOutcome != nil {
			r.OnOutcome(i, descriptors[i], outcome)
		}
		switch outcome.Status {
		case models.StatusMatched:
			if !chosen[outcome.TrackID] {
				chosen[outcome.TrackID] = true
				result.ToAdd = append(result.ToAdd, outcome.TrackID)
			}
		case models.StatusNotFound:
			result.Failed = append(result.Failed, descriptors[i].Label())
		case models.StatusDuplicate:
			// already on the playlist, which is success, not failure
		}
	}

	return result
}

// matchConcurrently fans descriptor indexes out to a fixed worker pool and
// writes each outcome back to its input slot, preserving order for the
// sequential assembly pass.
func (r *Reconciler) matchConcurrently(ctx context.Context, descriptors []models.NormalizedDescriptor, existingIDs map[string]bool, outcomes []models.MatchOutcome) {
	indexes := make(chan int, len(descriptors))
	for i := range descriptors {
		indexes <- i
	}
	close(indexes)

	// distinct slice slots per index, no locking needed
	worker := func(ctx context.Context, _ chan error) {
		for i := range indexes {
			outcomes[i] = r.matcher.Match(ctx, descriptors[i], existingIDs)
		}
	}

	jobs := make([]nursery.ConcurrentJob, r.workers)
	for w := range jobs {
		jobs[w] = worker
	}

	// workers never write to the error channel; Match folds its own
	// failures into NOT_FOUND outcomes
	_ = nursery.RunConcurrentlyWithContext(ctx, jobs...)
}
