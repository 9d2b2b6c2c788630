package catalog

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// ListPlaylistTracks fetches every track id currently on a playlist,
// walking all pages.
func (c *Client) ListPlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	res, err := c.sp.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}

	var ids []string
	trackPage := res.Tracks
	for {
		for _, item := range trackPage.Tracks {
			if item.Track.ID != "" && !item.IsLocal {
				ids = append(ids, string(item.Track.ID))
			}
		}

		err = c.sp.NextPage(ctx, &trackPage)
		if err == spotify.ErrNoMorePages {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("playlist pagination error: %w", err)
		}
	}

	return ids, nil
}

// GetOrCreatePlaylist returns the id of the user's playlist with the given
// name, creating it when none exists. When duplicates exist the first match
// wins.
func (c *Client) GetOrCreatePlaylist(ctx context.Context, userID, name string) (string, error) {
	page, err := c.sp.GetPlaylistsForUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list playlists: %w", err)
	}

	for {
		for _, p := range page.Playlists {
			if p.Name == name {
				return string(p.ID), nil
			}
		}

		err = c.sp.NextPage(ctx, page)
		if err == spotify.ErrNoMorePages {
			break
		}
		if err != nil {
			return "", fmt.Errorf("playlist pagination error: %w", err)
		}
	}

	created, err := c.sp.CreatePlaylistForUser(ctx, userID, name, "Created via harvest-go-srv", false, false)
	if err != nil {
		return "", fmt.Errorf("create playlist: %w", err)
	}

	return string(created.ID), nil
}

// AddTracks submits one chunk of track ids to the playlist. The transport
// rejects more than 100 ids per call; AddInBatches handles partitioning.
func (c *Client) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	trackIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		trackIDs[i] = spotify.ID(id)
	}

	if _, err := c.sp.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs...); err != nil {
		return fmt.Errorf("add tracks: %w", err)
	}
	return nil
}
