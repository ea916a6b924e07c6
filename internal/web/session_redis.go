package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-quiz/internal/quiz"
)

// RedisSessionStore manages sessions in Redis. Keys expire with the session.
type RedisSessionStore struct {
	cookieJar
	client *redis.Client
	prefix string
}

// redisSession is the JSON value stored under a session key.
type redisSession struct {
	Token     *oauth2.Token `json:"token,omitempty"`
	Quiz      *quiz.Quiz    `json:"quiz,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, secureCookie bool) *RedisSessionStore {
	return &RedisSessionStore{
		cookieJar: newCookieJar(ttl, secureCookie),
		client:    client,
		prefix:    "session:",
	}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

// Create starts a new empty session.
func (s *RedisSessionStore) Create(ctx context.Context) (*Session, error) {
	session := newSession()
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by ID.
func (s *RedisSessionStore) Get(ctx context.Context, id string) *Session {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		// redis.Nil means not found or expired.
		return nil
	}

	var data redisSession
	if err := json.Unmarshal(val, &data); err != nil {
		return nil
	}

	return &Session{
		ID:        id,
		Token:     data.Token,
		Quiz:      data.Quiz,
		CreatedAt: data.CreatedAt,
	}
}

// Save stores the session, keeping the expiry derived from its creation time.
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	ttl := time.Until(session.CreatedAt.Add(s.ttl))
	if ttl <= 0 {
		return s.client.Del(ctx, s.key(session.ID)).Err()
	}

	data, err := json.Marshal(redisSession{
		Token:     session.Token,
		Quiz:      session.Quiz,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) {
	_ = s.client.Del(ctx, s.key(id)).Err()
}

// GetFromRequest extracts the session from the request cookie.
func (s *RedisSessionStore) GetFromRequest(r *http.Request) *Session {
	id, ok := sessionID(r)
	if !ok {
		return nil
	}
	return s.Get(r.Context(), id)
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return client, nil
}
