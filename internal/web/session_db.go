package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-quiz/internal/db"
	"github.com/justestif/go-spotify-quiz/internal/quiz"
)

// DBSessionStore manages sessions in PostgreSQL.
type DBSessionStore struct {
	cookieJar
	database *db.DB
}

// NewDBSessionStore creates a new database-backed session store.
func NewDBSessionStore(database *db.DB, ttl time.Duration, secureCookie bool) *DBSessionStore {
	return &DBSessionStore{
		cookieJar: newCookieJar(ttl, secureCookie),
		database:  database,
	}
}

// Create starts a new empty session and stores it in the database.
func (s *DBSessionStore) Create(ctx context.Context) (*Session, error) {
	session := newSession()

	row, err := toDBSession(session)
	if err != nil {
		return nil, err
	}
	row.ExpiresAt = session.CreatedAt.Add(s.ttl)

	if err := s.database.Sessions().Create(ctx, row); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by ID from the database.
func (s *DBSessionStore) Get(ctx context.Context, id string) *Session {
	row, err := s.database.Sessions().Get(ctx, id)
	if err != nil {
		return nil
	}

	session, err := fromDBSession(row)
	if err != nil {
		return nil
	}
	return session
}

// Save writes the session's token and quiz to the database.
func (s *DBSessionStore) Save(ctx context.Context, session *Session) error {
	row, err := toDBSession(session)
	if err != nil {
		return err
	}
	return s.database.Sessions().Update(ctx, row)
}

// Delete removes a session from the database.
func (s *DBSessionStore) Delete(ctx context.Context, id string) {
	_ = s.database.Sessions().Delete(ctx, id)
}

// GetFromRequest extracts the session from the request cookie.
func (s *DBSessionStore) GetFromRequest(r *http.Request) *Session {
	id, ok := sessionID(r)
	if !ok {
		return nil
	}
	return s.Get(r.Context(), id)
}

// Sweep deletes expired sessions every interval until ctx is cancelled.
func (s *DBSessionStore) Sweep(ctx context.Context, interval time.Duration, logger *log.Logger) {
	sweep(ctx, interval, logger, s.database.Sessions().DeleteExpired)
}

// toDBSession flattens a session into its table row. ExpiresAt is left to the caller.
func toDBSession(session *Session) (*db.Session, error) {
	row := &db.Session{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
	}

	if session.Token != nil {
		row.AccessToken = session.Token.AccessToken
		row.RefreshToken = session.Token.RefreshToken
		if !session.Token.Expiry.IsZero() {
			expiry := session.Token.Expiry
			row.TokenExpiry = &expiry
		}
	}

	if session.Quiz != nil {
		data, err := json.Marshal(session.Quiz)
		if err != nil {
			return nil, fmt.Errorf("encoding session quiz: %w", err)
		}
		row.Quiz = data
	}

	return row, nil
}

// fromDBSession rebuilds a session from its table row.
func fromDBSession(row *db.Session) (*Session, error) {
	session := &Session{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
	}

	if row.AccessToken != "" || row.RefreshToken != "" {
		session.Token = &oauth2.Token{
			AccessToken:  row.AccessToken,
			RefreshToken: row.RefreshToken,
			TokenType:    "Bearer",
		}
		if row.TokenExpiry != nil {
			session.Token.Expiry = *row.TokenExpiry
		}
	}

	if len(row.Quiz) > 0 {
		var q quiz.Quiz
		if err := json.Unmarshal(row.Quiz, &q); err != nil {
			return nil, fmt.Errorf("decoding session quiz: %w", err)
		}
		session.Quiz = &q
	}

	return session, nil
}
