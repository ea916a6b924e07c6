package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const unknownArtist = "Unknown Artist"

// TopArtists returns the user's top artists, most listened first.
func (c *Client) TopArtists(ctx context.Context, limit int) ([]ArtistSummary, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: getting top artists: %w", ErrRemoteResource, err)
	}

	artists := make([]ArtistSummary, 0, len(page.Artists))
	for _, a := range page.Artists {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// convertArtist projects a Spotify artist to an ArtistSummary.
func convertArtist(a spotify.FullArtist) ArtistSummary {
	summary := ArtistSummary{Name: a.Name}
	if summary.Name == "" {
		summary.Name = unknownArtist
	}
	if len(a.Images) > 0 {
		imageURL := a.Images[0].URL
		summary.ImageURL = &imageURL
	}
	return summary
}
