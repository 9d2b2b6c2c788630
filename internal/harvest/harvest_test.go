package harvest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest-go-srv/internal/models"
	"harvest-go-srv/internal/reconciler"
)

type fakeCatalog struct {
	playlistID   string
	existing     []string
	resolveErr   error
	listErr      error
	addErr       error
	addedChunks  [][]string
	createdNames []string
}

func (f *fakeCatalog) GetOrCreatePlaylist(_ context.Context, _, name string) (string, error) {
	f.createdNames = append(f.createdNames, name)
	return f.playlistID, f.resolveErr
}

func (f *fakeCatalog) ListPlaylistTracks(_ context.Context, _ string) ([]string, error) {
	return f.existing, f.listErr
}

func (f *fakeCatalog) AddTracks(_ context.Context, _ string, ids []string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addedChunks = append(f.addedChunks, append([]string(nil), ids...))
	return nil
}

// titleMatcher resolves descriptors to their lowercased title, with "miss"
// titles failing, mirroring the real matcher's outcome contract.
type titleMatcher struct{}

func (titleMatcher) Match(_ context.Context, d models.NormalizedDescriptor, existingIDs map[string]bool) models.MatchOutcome {
	if strings.HasPrefix(d.Title, "miss") {
		return models.MatchOutcome{Status: models.StatusNotFound, Query: d.Title + ", " + d.Artist}
	}
	id := strings.ToLower(d.Title)
	if existingIDs[id] {
		return models.MatchOutcome{Status: models.StatusDuplicate, TrackID: id}
	}
	return models.MatchOutcome{Status: models.StatusMatched, TrackID: id}
}

func newTestRunner(cat *fakeCatalog, auditDir string) *Runner {
	return NewRunner(cat, nil, reconciler.New(titleMatcher{}), auditDir)
}

func TestRunEndToEnd(t *testing.T) {
	cat := &fakeCatalog{playlistID: "pl-1", existing: []string{"onplaylist"}}
	runner := newTestRunner(cat, "")

	report, err := runner.Run(context.Background(), Request{
		UserID:       "user",
		PlaylistName: "Road Trip",
		Descriptors: []models.SongDescriptor{
			{Title: "Fresh", Artist: "Band"},
			{Title: "OnPlaylist", Artist: "Band"},
			{Title: "missing one", Artist: "Band"},
			{Album: "album only, nothing usable"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "pl-1", report.PlaylistID)
	assert.Equal(t, []string{"fresh"}, report.Added)
	assert.Equal(t, []string{"missing one by Band"}, report.Failed)
	assert.Empty(t, report.NoTagFiles)
	assert.Equal(t, [][]string{{"fresh"}}, cat.addedChunks)
	assert.Equal(t, []string{"Road Trip"}, cat.createdNames)
}

func TestRunEmptyPlaylistName(t *testing.T) {
	runner := newTestRunner(&fakeCatalog{}, "")

	report, err := runner.Run(context.Background(), Request{PlaylistName: ""})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrEmptyPlaylistName)
}

func TestRunPlaylistResolutionIsFatal(t *testing.T) {
	cat := &fakeCatalog{resolveErr: errors.New("auth expired")}
	runner := newTestRunner(cat, "")

	report, err := runner.Run(context.Background(), Request{
		PlaylistName: "X",
		Descriptors:  []models.SongDescriptor{{Title: "A", Artist: "B"}},
	})

	assert.Nil(t, report, "no partial report for fatal failures")
	assert.Error(t, err)
}

func TestRunListTracksIsFatal(t *testing.T) {
	cat := &fakeCatalog{playlistID: "pl", listErr: errors.New("boom")}
	runner := newTestRunner(cat, "")

	report, err := runner.Run(context.Background(), Request{
		PlaylistName: "X",
		Descriptors:  []models.SongDescriptor{{Title: "A", Artist: "B"}},
	})

	assert.Nil(t, report)
	assert.Error(t, err)
}

func TestRunBatchWriteFailureKeepsReport(t *testing.T) {
	cat := &fakeCatalog{playlistID: "pl", addErr: errors.New("transport down")}
	runner := newTestRunner(cat, "")

	report, err := runner.Run(context.Background(), Request{
		PlaylistName: "X",
		Descriptors:  []models.SongDescriptor{{Title: "A", Artist: "B"}},
	})

	require.Error(t, err)
	require.NotNil(t, report, "caller needs to know which ids landed")
	assert.Empty(t, report.Added)
}

func TestRunCollectsNoTagFilenames(t *testing.T) {
	cat := &fakeCatalog{playlistID: "pl"}
	// nil inference adapter: untagged files stay unresolved but are reported
	runner := newTestRunner(cat, "")

	report, err := runner.Run(context.Background(), Request{
		PlaylistName: "X",
		Descriptors: []models.SongDescriptor{
			{Title: "A", Artist: "B"},
			{SourceFilename: "mystery.mp3"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"mystery.mp3"}, report.NoTagFiles)
}

func TestRunWritesAuditArtifact(t *testing.T) {
	dir := t.TempDir()
	cat := &fakeCatalog{playlistID: "pl"}
	runner := newTestRunner(cat, dir)

	_, err := runner.Run(context.Background(), Request{
		PlaylistName: "My Mix",
		Descriptors: []models.SongDescriptor{
			{Title: "A", Artist: "B"},
			{Title: "miss this", Artist: "B"},
		},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "My_Mix.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "added,a")
	assert.Contains(t, content, "failed,miss this by B")
}
