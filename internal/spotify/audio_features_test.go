package spotify

import (
	"context"
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-quiz/internal/spotify/spotifytest"
)

func TestConvertAudioFeatures(t *testing.T) {
	features := &spotify.AudioFeatures{
		ID:               "test123",
		Acousticness:     0.5,
		Danceability:     0.7,
		Energy:           0.8,
		Instrumentalness: 0.1,
		Liveness:         0.2,
		Loudness:         -5.0,
		Speechiness:      0.05,
		Tempo:            120.0,
		Valence:          0.6,
	}

	got := convertAudioFeatures(features)

	tests := []struct {
		name     string
		got      float32
		expected float32
	}{
		{"Acousticness", got.Acousticness, 0.5},
		{"Danceability", got.Danceability, 0.7},
		{"Energy", got.Energy, 0.8},
		{"Instrumentalness", got.Instrumentalness, 0.1},
		{"Liveness", got.Liveness, 0.2},
		{"Loudness", got.Loudness, -5.0},
		{"Speechiness", got.Speechiness, 0.05},
		{"Tempo", got.Tempo, 120.0},
		{"Valence", got.Valence, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if got.ID != "test123" {
		t.Errorf("ID = %q, want %q", got.ID, "test123")
	}
}

func TestAudioFeaturesSingleBatchedCall(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AudioFeatures = []map[string]any{
		spotifytest.Features("a", 0.9, 0.1),
		spotifytest.Features("b", 0.2, 0.8),
	}

	features, err := c.AudioFeatures(context.Background(), "a", "b", "missing")
	if err != nil {
		t.Fatalf("AudioFeatures() error = %v", err)
	}

	if got := srv.Hits("/v1/audio-features"); got != 1 {
		t.Errorf("audio-features hits = %d, want 1", got)
	}

	// The fake answers in reverse order and drops "missing".
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	byID := make(map[string]AudioFeatures)
	for _, f := range features {
		byID[f.ID] = f
	}
	if byID["a"].Energy != 0.9 || byID["b"].Valence != 0.8 {
		t.Errorf("features = %+v", features)
	}
}

func TestAudioFeaturesNoIDs(t *testing.T) {
	c, srv := newTestClient(t)

	features, err := c.AudioFeatures(context.Background())
	if err != nil || features != nil {
		t.Errorf("AudioFeatures() = %v, %v, want nil, nil", features, err)
	}
	if srv.TotalHits() != 0 {
		t.Errorf("made %d requests, want 0", srv.TotalHits())
	}
}
