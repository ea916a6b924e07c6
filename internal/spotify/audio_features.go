package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// AudioFeatures retrieves audio features for the given track IDs in one request.
// Tracks Spotify has no analysis for are left out, and the result is not
// guaranteed to follow the order of ids.
func (c *Client) AudioFeatures(ctx context.Context, ids ...string) ([]AudioFeatures, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	features, err := c.api.GetAudioFeatures(ctx, spotifyIDs...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting audio features: %w", ErrRemoteResource, err)
	}

	out := make([]AudioFeatures, 0, len(features))
	for _, f := range features {
		if f == nil {
			continue // Track has no audio features
		}
		out = append(out, convertAudioFeatures(f))
	}
	return out, nil
}

// convertAudioFeatures copies audio feature values out of the API type.
func convertAudioFeatures(f *spotify.AudioFeatures) AudioFeatures {
	return AudioFeatures{
		ID:               f.ID.String(),
		Acousticness:     f.Acousticness,
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Instrumentalness: f.Instrumentalness,
		Liveness:         f.Liveness,
		Loudness:         f.Loudness,
		Speechiness:      f.Speechiness,
		Tempo:            f.Tempo,
		Valence:          f.Valence,
	}
}
