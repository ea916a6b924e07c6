package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPOTIFY_ID", "id")
	t.Setenv("SPOTIFY_SECRET", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:8080")
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Session.TTL = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Session.SweepInterval != time.Hour {
		t.Errorf("Session.SweepInterval = %v, want 1h", cfg.Session.SweepInterval)
	}
	if cfg.Session.Backend != BackendMemory {
		t.Errorf("Session.Backend = %q, want %q", cfg.Session.Backend, BackendMemory)
	}
	if cfg.Spotify.ClientID != "id" || cfg.Spotify.ClientSecret != "secret" {
		t.Errorf("credentials = %q/%q, want id/secret", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
	if len(cfg.Spotify.Scopes) != 4 {
		t.Errorf("Scopes = %v, want 4 scopes", cfg.Spotify.Scopes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPOTIFY_ID", "id")
	t.Setenv("SPOTIFY_SECRET", "secret")
	t.Setenv("QUIZ_SERVER_ADDR", ":9090")
	t.Setenv("QUIZ_RESULTS_BACKEND", "mongo")
	t.Setenv("QUIZ_MONGO_DATABASE", "scores")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Results.Backend != BackendMongo {
		t.Errorf("Results.Backend = %q, want %q", cfg.Results.Backend, BackendMongo)
	}
	if cfg.Mongo.Database != "scores" {
		t.Errorf("Mongo.Database = %q, want %q", cfg.Mongo.Database, "scores")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.yaml")
	content := `
server:
  addr: ":7070"
session:
  backend: redis
  ttl: 1h
redis:
  addr: "cache:6379"
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":7070")
	}
	if cfg.Session.Backend != BackendRedis {
		t.Errorf("Session.Backend = %q, want %q", cfg.Session.Backend, BackendRedis)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
	}
	if cfg.Redis.Addr != "cache:6379" {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, "cache:6379")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Spotify: SpotifyConfig{ClientID: "id", ClientSecret: "secret"},
			Session: SessionConfig{Backend: BackendMemory},
			Results: ResultsConfig{Backend: BackendMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing id", func(c *Config) { c.Spotify.ClientID = "" }, ErrMissingCredentials},
		{"missing secret", func(c *Config) { c.Spotify.ClientSecret = "" }, ErrMissingCredentials},
		{"unknown session backend", func(c *Config) { c.Session.Backend = "mongo" }, ErrInvalidConfig},
		{"unknown results backend", func(c *Config) { c.Results.Backend = "redis" }, ErrInvalidConfig},
		{"postgres without url", func(c *Config) { c.Results.Backend = BackendPostgres }, ErrInvalidConfig},
		{"postgres with url", func(c *Config) {
			c.Session.Backend = BackendPostgres
			c.Postgres.URL = "postgres://localhost/quiz"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
