package harvest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"harvest-go-srv/internal/audit"
	"harvest-go-srv/internal/catalog"
	"harvest-go-srv/internal/inference"
	"harvest-go-srv/internal/models"
	"harvest-go-srv/internal/normalizer"
	"harvest-go-srv/internal/reconciler"
	"harvest-go-srv/internal/triage"
)

// Catalog is the slice of the catalog service one harvest run needs.
type Catalog interface {
	catalog.TrackAdder
	GetOrCreatePlaylist(ctx context.Context, userID, name string) (string, error)
	ListPlaylistTracks(ctx context.Context, playlistID string) ([]string, error)
}

// Request describes one harvest invocation. All run state is scoped here;
// nothing survives across runs.
type Request struct {
	UserID       string
	PlaylistName string
	Descriptors  []models.SongDescriptor
}

var ErrEmptyPlaylistName = errors.New("playlist name must not be empty")

// Runner wires the pipeline stages together for one target playlist.
type Runner struct {
	catalog    Catalog
	inferrer   *inference.Adapter
	reconciler *reconciler.Reconciler
	auditDir   string // empty disables the CSV artifact
}

func NewRunner(cat Catalog, inferrer *inference.Adapter, rec *reconciler.Reconciler, auditDir string) *Runner {
	return &Runner{
		catalog:    cat,
		inferrer:   inferrer,
		reconciler: rec,
		auditDir:   auditDir,
	}
}

// Run executes one harvest: triage the batch, infer metadata for untagged
// files, normalize, resolve the target playlist, reconcile against its
// current tracks and append the net-new ids in batches.
//
// Per-item misses are absorbed into the report's Failed list. Playlist
// resolution and lookup failures are fatal and return a nil report. A batch
// write failure returns both the report (Added holds what actually landed)
// and the error.
func (r *Runner) Run(ctx context.Context, req Request) (*models.HarvestReport, error) {
	if req.PlaylistName == "" {
		return nil, ErrEmptyPlaylistName
	}

	usable, needsInference := triage.Split(req.Descriptors)
	log.Printf("harvest %q: %d usable, %d need inference", req.PlaylistName, len(usable), len(needsInference))

	if len(needsInference) > 0 && r.inferrer != nil {
		usable = append(usable, r.inferrer.Infer(ctx, needsInference)...)
	}

	normalized := make([]models.NormalizedDescriptor, len(usable))
	for i, d := range usable {
		normalized[i] = normalizer.Normalize(d)
	}

	playlistID, err := r.catalog.GetOrCreatePlaylist(ctx, req.UserID, req.PlaylistName)
	if err != nil {
		return nil, fmt.Errorf("resolve playlist %q: %w", req.PlaylistName, err)
	}

	existing, err := r.catalog.ListPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist tracks: %w", err)
	}
	existingIDs := make(map[string]bool, len(existing))
	for _, id := range existing {
		existingIDs[id] = true
	}

	result := r.reconciler.Reconcile(ctx, normalized, existingIDs)

	added, writeErr := catalog.AddInBatches(ctx, r.catalog, playlistID, result.ToAdd, catalog.WriteBatchSize)

	report := &models.HarvestReport{
		PlaylistID:   playlistID,
		PlaylistName: req.PlaylistName,
		Added:        added,
		Failed:       result.Failed,
		NoTagFiles:   needsInference,
		Timestamp:    time.Now().Format(time.RFC3339),
	}

	if r.auditDir != "" {
		if path, err := audit.WriteReport(r.auditDir, *report); err != nil {
			log.Printf("audit write failed: %v", err)
		} else {
			log.Printf("audit written to %s", path)
		}
	}

	if writeErr != nil {
		return report, fmt.Errorf("playlist write incomplete: %w", writeErr)
	}
	return report, nil
}
