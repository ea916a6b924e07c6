// Package config loads the Spotify Quiz configuration from defaults, an
// optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

var (
	// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")

	// ErrInvalidConfig is returned when a setting holds an unsupported value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Spotify  SpotifyConfig  `mapstructure:"spotify"`
	Session  SessionConfig  `mapstructure:"session"`
	Results  ResultsConfig  `mapstructure:"results"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SpotifyConfig holds OAuth client settings and API endpoints.
type SpotifyConfig struct {
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	RedirectURL    string        `mapstructure:"redirect_url"`
	AuthURL        string        `mapstructure:"auth_url"`
	TokenURL       string        `mapstructure:"token_url"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	Scopes         []string      `mapstructure:"scopes"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig selects where browser sessions are kept.
type SessionConfig struct {
	Backend      string        `mapstructure:"backend"` // memory, postgres, redis
	TTL          time.Duration `mapstructure:"ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`

	// SweepInterval is how often expired postgres sessions are deleted.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ResultsConfig selects where quiz records are persisted.
type ResultsConfig struct {
	Backend string `mapstructure:"backend"` // memory, postgres, mongo
}

// PostgresConfig holds the PostgreSQL connection string.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MongoConfig holds MongoDB configuration.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json, logfmt
}

// Load reads configuration from an optional file and environment variables.
// If path is empty, config.yaml is searched for in the usual locations.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/spotify-quiz")
	}

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The Spotify credentials keep their conventional names.
	_ = v.BindEnv("spotify.client_id", "SPOTIFY_ID", "QUIZ_SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("spotify.client_secret", "SPOTIFY_SECRET", "QUIZ_SPOTIFY_CLIENT_SECRET")
	_ = v.BindEnv("postgres.url", "DATABASE_URL", "QUIZ_POSTGRES_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

// Validate checks required settings and backend names.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}

	switch c.Session.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("%w: session backend %q", ErrInvalidConfig, c.Session.Backend)
	}

	switch c.Results.Backend {
	case BackendMemory, BackendPostgres, BackendMongo:
	default:
		return fmt.Errorf("%w: results backend %q", ErrInvalidConfig, c.Results.Backend)
	}

	if c.NeedsPostgres() && c.Postgres.URL == "" {
		return fmt.Errorf("%w: postgres.url is required for the postgres backend", ErrInvalidConfig)
	}

	return nil
}

// NeedsPostgres reports whether any backend is PostgreSQL.
func (c *Config) NeedsPostgres() bool {
	return c.Session.Backend == BackendPostgres || c.Results.Backend == BackendPostgres
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Spotify requires the explicit IPv4 loopback for local redirect URIs.
	v.SetDefault("spotify.redirect_url", "http://127.0.0.1:8080/callback")
	v.SetDefault("spotify.auth_url", spotifyauth.AuthURL)
	v.SetDefault("spotify.token_url", spotifyauth.TokenURL)
	v.SetDefault("spotify.api_base_url", "https://api.spotify.com/v1/")
	v.SetDefault("spotify.scopes", []string{
		spotifyauth.ScopeUserReadPrivate,
		spotifyauth.ScopeUserReadEmail,
		spotifyauth.ScopeUserTopRead,
		spotifyauth.ScopeUserLibraryRead,
	})
	v.SetDefault("spotify.request_timeout", "15s")

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.sweep_interval", "1h")

	v.SetDefault("results.backend", BackendMemory)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "quiz_game_db")
	v.SetDefault("mongo.collection", "quiz_scores")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
