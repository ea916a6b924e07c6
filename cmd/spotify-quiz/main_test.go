package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/justestif/go-spotify-quiz/internal/config"
	"github.com/justestif/go-spotify-quiz/internal/logging"
	"github.com/justestif/go-spotify-quiz/internal/quiz"
	"github.com/justestif/go-spotify-quiz/internal/results"
	"github.com/justestif/go-spotify-quiz/internal/web"
)

func TestPrintHistory(t *testing.T) {
	tests := []struct {
		name    string
		records []quiz.Record
		want    []string
	}{
		{
			name: "empty",
			want: []string{"No quizzes taken yet."},
		},
		{
			name: "records",
			records: []quiz.Record{
				{Song1Name: "Hyperballad", Song2Name: "Glory Box", Result: quiz.ResultCorrect},
				{Song1Name: "Teardrop", Song2Name: "Roads", Result: quiz.ResultIncorrect},
			},
			want: []string{
				"  1. Hyperballad vs Glory Box: Correct!",
				"  2. Teardrop vs Roads: Incorrect!",
				"1 of 2 correct",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printHistory(&buf, tt.records)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
		})
	}
}

func TestOpenStoresInMemory(t *testing.T) {
	cfg := &config.Config{
		Session: config.SessionConfig{Backend: config.BackendMemory},
		Results: config.ResultsConfig{Backend: config.BackendMemory},
	}

	st, err := openStores(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("openStores() error = %v", err)
	}
	defer st.Close(context.Background())

	if _, ok := st.sessions.(*web.SessionStore); !ok {
		t.Errorf("sessions = %T, want *web.SessionStore", st.sessions)
	}
	if _, ok := st.results.(*results.MemoryStore); !ok {
		t.Errorf("results = %T, want *results.MemoryStore", st.results)
	}
	if st.database != nil || st.redis != nil {
		t.Error("opened connections for in-memory backends")
	}
	if _, ok := st.sweeper.(*web.SessionStore); !ok {
		t.Errorf("sweeper = %T, want *web.SessionStore", st.sweeper)
	}
}

func TestOpenResultsRejectsMemory(t *testing.T) {
	cfg := &config.Config{Results: config.ResultsConfig{Backend: config.BackendMemory}}

	_, _, err := openResults(context.Background(), cfg, logging.Discard())
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("openResults() error = %v, want ErrInvalidConfig", err)
	}
}

func TestAppCommands(t *testing.T) {
	app := newApp()

	want := map[string]bool{"serve": false, "migrate": false, "history": false}
	for _, c := range app.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %q command", name)
		}
	}
}

func TestServeRequiresCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPOTIFY_ID", "")
	t.Setenv("SPOTIFY_SECRET", "")

	app := newApp()
	var stderr bytes.Buffer
	app.ErrWriter = &stderr

	err := app.Run(context.Background(), []string{"spotify-quiz", "serve"})
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Errorf("Run() error = %v, want ErrMissingCredentials", err)
	}
}
