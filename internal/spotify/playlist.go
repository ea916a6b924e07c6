package spotify

import (
	"context"
	"errors"
	"fmt"
)

const (
	unknownTrack = "Unknown Track"
	unknownAlbum = "Unknown Album"
)

var (
	// ErrNoFeaturedPlaylists is returned when Spotify lists no featured playlists.
	ErrNoFeaturedPlaylists = errors.New("no featured playlists available")

	// ErrNoPlaylistTracks is returned when the chosen playlist has no tracks.
	ErrNoPlaylistTracks = errors.New("no tracks found in the selected playlist")
)

// Rand picks an index in [0, n).
type Rand interface {
	IntN(n int) int
}

// FeaturedPlaylist is a featured playlist and the absolute URL of its detail.
type FeaturedPlaylist struct {
	ID   string
	Name string
	Href string
}

// playlistDetail is the subset of the playlist object read by PlaylistTracks.
type playlistDetail struct {
	Tracks struct {
		Items []struct {
			Track *playlistTrack `json:"track"`
		} `json:"items"`
	} `json:"tracks"`
}

type playlistTrack struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album *struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// FeaturedPlaylists returns Spotify's current featured playlists.
func (c *Client) FeaturedPlaylists(ctx context.Context) ([]FeaturedPlaylist, error) {
	_, page, err := c.api.FeaturedPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getting featured playlists: %w", ErrRemoteResource, err)
	}
	if page == nil {
		return nil, nil
	}

	playlists := make([]FeaturedPlaylist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		playlists = append(playlists, FeaturedPlaylist{
			ID:   p.ID.String(),
			Name: p.Name,
			Href: p.Endpoint,
		})
	}
	return playlists, nil
}

// PlaylistTracks fetches a playlist by the href Spotify returned for it and
// projects its tracks. Items whose track is null are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, href string) ([]TrackInfo, error) {
	var detail playlistDetail
	if err := c.Get(ctx, href, &detail); err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}

	tracks := make([]TrackInfo, 0, len(detail.Tracks.Items))
	for _, item := range detail.Tracks.Items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, convertPlaylistTrack(item.Track))
	}
	return tracks, nil
}

// RandomFeaturedTrack picks a featured playlist and then one of its tracks, both
// uniformly with rng. The playlist detail is only fetched when a playlist exists.
func (c *Client) RandomFeaturedTrack(ctx context.Context, rng Rand) (TrackInfo, error) {
	playlists, err := c.FeaturedPlaylists(ctx)
	if err != nil {
		return TrackInfo{}, err
	}
	if len(playlists) == 0 {
		return TrackInfo{}, ErrNoFeaturedPlaylists
	}

	playlist := playlists[rng.IntN(len(playlists))]

	tracks, err := c.PlaylistTracks(ctx, playlist.Href)
	if err != nil {
		return TrackInfo{}, err
	}
	if len(tracks) == 0 {
		return TrackInfo{}, ErrNoPlaylistTracks
	}

	return tracks[rng.IntN(len(tracks))], nil
}

// convertPlaylistTrack projects a playlist track to TrackInfo, filling defaults.
func convertPlaylistTrack(t *playlistTrack) TrackInfo {
	info := TrackInfo{
		Name:        t.Name,
		Artists:     make([]string, 0, len(t.Artists)),
		Album:       unknownAlbum,
		ExternalURL: t.ExternalURLs["spotify"],
	}
	if info.Name == "" {
		info.Name = unknownTrack
	}
	for _, a := range t.Artists {
		info.Artists = append(info.Artists, a.Name)
	}

	if t.Album != nil {
		if t.Album.Name != "" {
			info.Album = t.Album.Name
		}
		if len(t.Album.Images) > 0 {
			imageURL := t.Album.Images[0].URL
			info.ImageURL = &imageURL
		}
	}
	return info
}
