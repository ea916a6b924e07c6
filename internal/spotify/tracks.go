package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// topTracksPageSize is the largest page /me/top/tracks serves.
const topTracksPageSize = 50

// TopTracks returns up to limit of the user's top tracks with artists joined by ", ".
// Limits above one page are fetched in consecutive pages.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]Track, error) {
	tracks := make([]Track, 0, min(limit, topTracksPageSize))
	for len(tracks) < limit {
		n := min(topTracksPageSize, limit-len(tracks))
		page, err := c.api.CurrentUsersTopTracks(ctx, spotify.Limit(n), spotify.Offset(len(tracks)))
		if err != nil {
			return nil, fmt.Errorf("%w: getting top tracks: %w", ErrRemoteResource, err)
		}

		for _, t := range page.Tracks {
			tracks = append(tracks, convertTrack(t))
		}
		if len(page.Tracks) < n || page.Next == "" {
			break
		}
	}
	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(t spotify.FullTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:     t.ID.String(),
		Name:   t.Name,
		Artist: strings.Join(artists, ", "),
	}
}
