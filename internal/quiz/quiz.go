// Package quiz builds two-song audio-feature quizzes and grades answers.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/justestif/go-spotify-quiz/internal/spotify"
)

// TopTrackLimit is how many top tracks a quiz samples from.
const TopTrackLimit = 100

// Grading results.
const (
	ResultCorrect   = "Correct!"
	ResultIncorrect = "Incorrect!"
)

var (
	// ErrInsufficientTracks is returned when the user has fewer than two top tracks.
	ErrInsufficientTracks = errors.New("at least two top tracks are needed for a quiz")

	// ErrMissingFeatures is returned when Spotify has no audio features for a chosen track.
	ErrMissingFeatures = errors.New("audio features missing for a quiz track")
)

// Source is the subset of the Spotify client a quiz needs.
type Source interface {
	TopTracks(ctx context.Context, limit int) ([]spotify.Track, error)
	AudioFeatures(ctx context.Context, ids ...string) ([]spotify.AudioFeatures, error)
}

// Quiz is a generated question. Song1 and Features1 describe the same track,
// as do Song2 and Features2.
type Quiz struct {
	CorrectAnswer string                `json:"correct_answer"`
	Song1         spotify.Track         `json:"song1"`
	Song2         spotify.Track         `json:"song2"`
	Features1     spotify.AudioFeatures `json:"features1"`
	Features2     spotify.AudioFeatures `json:"features2"`
}

// Engine generates quizzes. It is safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an Engine drawing randomness from src.
func NewEngine(src rand.Source) *Engine {
	return &Engine{rng: rand.New(src)}
}

// Generate samples two distinct top tracks, fetches their audio features in
// one call and picks one of them as the correct answer with a fair coin.
func (e *Engine) Generate(ctx context.Context, src Source) (*Quiz, error) {
	tracks, err := src.TopTracks(ctx, TopTrackLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}
	if len(tracks) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientTracks, len(tracks))
	}

	first, second, coin := e.draw(len(tracks))
	song1, song2 := tracks[first], tracks[second]

	features, err := src.AudioFeatures(ctx, song1.ID, song2.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features: %w", err)
	}

	// Spotify does not promise to keep the request order.
	byID := make(map[string]spotify.AudioFeatures, len(features))
	for _, f := range features {
		byID[f.ID] = f
	}
	features1, ok := byID[song1.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFeatures, song1.ID)
	}
	features2, ok := byID[song2.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFeatures, song2.ID)
	}

	correct := song1.ID
	if coin {
		correct = song2.ID
	}

	return &Quiz{
		CorrectAnswer: correct,
		Song1:         song1,
		Song2:         song2,
		Features1:     features1,
		Features2:     features2,
	}, nil
}

// draw picks two distinct indexes in [0, n) uniformly and flips the coin.
func (e *Engine) draw(n int) (first, second int, coin bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	first = e.rng.IntN(n)
	second = e.rng.IntN(n - 1)
	if second >= first {
		second++
	}
	coin = e.rng.IntN(2) == 1
	return first, second, coin
}

// Grade compares the submitted track ID with the quiz's correct answer.
func Grade(q *Quiz, answer string) string {
	if q != nil && answer == q.CorrectAnswer {
		return ResultCorrect
	}
	return ResultIncorrect
}
