package catalog

import (
	"context"
	"fmt"
)

// TrackAdder is the playlist-mutation collaborator. One call accepts at
// most WriteBatchSize ids.
type TrackAdder interface {
	AddTracks(ctx context.Context, playlistID string, ids []string) error
}

// WriteBatchSize is the transport's per-call payload limit.
const WriteBatchSize = 100

// AddInBatches appends ids to the playlist in consecutive chunks of at most
// batchSize, sequentially and in order. There is no rollback across chunks:
// on a mid-run failure the returned slice holds exactly the ids already
// written, so the caller knows where the run stopped.
func AddInBatches(ctx context.Context, adder TrackAdder, playlistID string, ids []string, batchSize int) ([]string, error) {
	if batchSize <= 0 {
		batchSize = WriteBatchSize
	}

	submitted := make([]string, 0, len(ids))

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		if err := adder.AddTracks(ctx, playlistID, ids[start:end]); err != nil {
			return submitted, fmt.Errorf("batch starting at %d failed after %d tracks written: %w", start, len(submitted), err)
		}
		submitted = append(submitted, ids[start:end]...)
	}

	return submitted, nil
}
