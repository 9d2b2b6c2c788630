package catalog

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"harvest-go-srv/internal/models"
)

// Client adapts the Spotify Web API to the interfaces the pipeline consumes.
type Client struct {
	sp *spotify.Client
}

func NewClient(sp *spotify.Client) *Client {
	return &Client{sp: sp}
}

// SearchTracks runs a track search and flattens the hits into candidates.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	res, err := c.sp.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	candidates := make([]models.CandidateTrack, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		var artist string
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		candidates = append(candidates, models.CandidateTrack{
			ID:         string(t.ID),
			Name:       t.Name,
			Artist:     artist,
			Popularity: int(t.Popularity),
		})
	}

	return candidates, nil
}

// CurrentUserID resolves the id of the authenticated user.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	user, err := c.sp.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	return user.ID, nil
}
