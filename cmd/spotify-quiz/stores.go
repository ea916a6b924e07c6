package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/justestif/go-spotify-quiz/internal/config"
	"github.com/justestif/go-spotify-quiz/internal/db"
	"github.com/justestif/go-spotify-quiz/internal/results"
	"github.com/justestif/go-spotify-quiz/internal/web"
)

// stores holds the session and result backends plus the connections behind them.
type stores struct {
	sessions web.SessionManager
	results  results.Store

	database   *db.DB
	redis      *redis.Client
	mongo      *results.MongoStore
	sweeper    sweeper
	logger     *log.Logger
}

// sweeper is a session store that can drop expired sessions in the background.
type sweeper interface {
	Sweep(ctx context.Context, interval time.Duration, logger *log.Logger)
}

// openStores connects the backends named in cfg. PostgreSQL tables are
// created on first use.
func openStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (_ *stores, err error) {
	st := &stores{logger: logger}
	defer func() {
		if err != nil {
			st.Close(context.Background())
		}
	}()

	if cfg.NeedsPostgres() {
		st.database, err = db.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err = st.database.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	switch cfg.Session.Backend {
	case config.BackendPostgres:
		dbSessions := web.NewDBSessionStore(st.database, cfg.Session.TTL, cfg.Session.CookieSecure)
		st.sessions = dbSessions
		st.sweeper = dbSessions
	case config.BackendRedis:
		st.redis, err = web.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		st.sessions = web.NewRedisSessionStore(st.redis, cfg.Session.TTL, cfg.Session.CookieSecure)
	default:
		memSessions := web.NewSessionStore(cfg.Session.TTL, cfg.Session.CookieSecure)
		st.sessions = memSessions
		st.sweeper = memSessions
	}

	switch cfg.Results.Backend {
	case config.BackendPostgres:
		st.results = results.NewPostgresStore(st.database)
	case config.BackendMongo:
		mongo, err := results.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, err
		}
		st.mongo = mongo
		st.results = mongo
	default:
		logger.Warn("quiz results are kept in memory and lost on restart")
		st.results = results.NewMemoryStore()
	}

	return st, nil
}

// checks returns a ping for every connected backend.
func (s *stores) checks() map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error)
	if s.database != nil {
		checks["postgres"] = s.database.Ping
	}
	if s.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.redis.Ping(ctx).Err()
		}
	}
	if s.mongo != nil {
		checks["mongo"] = s.mongo.Ping
	}
	return checks
}

// sweep deletes expired sessions in the background until ctx is done.
// Redis expires its own keys.
func (s *stores) sweep(ctx context.Context, interval time.Duration) {
	if s.sweeper == nil || interval <= 0 {
		return
	}
	go s.sweeper.Sweep(ctx, interval, s.logger)
}

// Close releases every open connection.
func (s *stores) Close(ctx context.Context) {
	if s.results != nil {
		if err := s.results.Close(ctx); err != nil {
			s.logger.Warn("closing results store", "err", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("closing redis", "err", err)
		}
	}
	if s.database != nil {
		s.database.Close()
	}
}

// openResults opens only the results backend, for commands that read history.
func openResults(ctx context.Context, cfg *config.Config, logger *log.Logger) (results.Store, func(), error) {
	switch cfg.Results.Backend {
	case config.BackendPostgres:
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("%w: postgres.url is required for the postgres backend", config.ErrInvalidConfig)
		}
		database, err := db.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return results.NewPostgresStore(database), database.Close, nil

	case config.BackendMongo:
		store, err := results.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Warn("closing results store", "err", err)
			}
		}, nil

	case config.BackendMemory:
		return nil, nil, fmt.Errorf("%w: results backend %q keeps no history between runs", config.ErrInvalidConfig, cfg.Results.Backend)

	default:
		return nil, nil, fmt.Errorf("%w: results backend %q", config.ErrInvalidConfig, cfg.Results.Backend)
	}
}
