// Package web provides the HTTP server and web UI for the Spotify Quiz.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-quiz/internal/quiz"
)

const (
	sessionCookieName = "session_id"

	// DefaultSessionTTL is used when a store is created with a zero TTL.
	DefaultSessionTTL = 24 * time.Hour
)

// Session is the server-side state of one browser.
type Session struct {
	ID        string
	Token     *oauth2.Token // nil until the OAuth callback succeeds
	Quiz      *quiz.Quiz    // nil when no quiz is waiting to be graded
	CreatedAt time.Time
}

// SessionManager defines the interface for session management.
// Get and GetFromRequest return copies; changes are stored with Save.
type SessionManager interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) *Session
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string)
	GetFromRequest(r *http.Request) *Session
	SetCookie(w http.ResponseWriter, session *Session)
	ClearCookie(w http.ResponseWriter)
}

// cookieJar writes the session cookie. Every store embeds one.
type cookieJar struct {
	ttl    time.Duration
	secure bool
}

func newCookieJar(ttl time.Duration, secure bool) cookieJar {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return cookieJar{ttl: ttl, secure: secure}
}

// SetCookie sets the session cookie on the response.
func (c cookieJar) SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.ttl.Seconds()),
	})
}

// ClearCookie removes the session cookie from the response.
func (c cookieJar) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		MaxAge:   -1,
	})
}

// sessionID reads the session cookie value.
func sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// sweep calls deleteExpired every interval until ctx is cancelled.
func sweep(ctx context.Context, interval time.Duration, logger *log.Logger, deleteExpired func(context.Context) (int64, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := deleteExpired(ctx)
			if err != nil {
				logger.Warn("sweeping sessions", "err", err)
				continue
			}
			if n > 0 {
				logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}

// newSession creates an empty session with a random ID.
func newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// ============================================================================
// In-Memory Session Store (for development/testing)
// ============================================================================

// SessionStore manages sessions in memory.
type SessionStore struct {
	cookieJar

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(ttl time.Duration, secureCookie bool) *SessionStore {
	return &SessionStore{
		cookieJar: newCookieJar(ttl, secureCookie),
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new empty session.
func (s *SessionStore) Create(_ context.Context) (*Session, error) {
	session := newSession()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	cp := *session
	return &cp, nil
}

// Get retrieves a session by ID. An expired session is removed and nil is returned.
func (s *SessionStore) Get(_ context.Context, id string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if s.expired(session, time.Now()) {
		s.mu.Lock()
		if cur, ok := s.sessions[id]; ok && s.expired(cur, time.Now()) {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
		return nil
	}

	cp := *session
	return &cp
}

func (s *SessionStore) expired(session *Session, now time.Time) bool {
	return now.Sub(session.CreatedAt) > s.ttl
}

// DeleteExpired removes every expired session and reports how many were removed.
func (s *SessionStore) DeleteExpired(_ context.Context) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Sweep deletes expired sessions every interval until ctx is cancelled.
func (s *SessionStore) Sweep(ctx context.Context, interval time.Duration, logger *log.Logger) {
	sweep(ctx, interval, logger, s.DeleteExpired)
}

// Len reports how many sessions are held, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Save stores the session's token and quiz.
func (s *SessionStore) Save(_ context.Context, session *Session) error {
	cp := *session

	s.mu.Lock()
	s.sessions[session.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// GetFromRequest extracts the session from the request cookie.
func (s *SessionStore) GetFromRequest(r *http.Request) *Session {
	id, ok := sessionID(r)
	if !ok {
		return nil
	}
	return s.Get(r.Context(), id)
}

// Ensure all stores implement SessionManager.
var (
	_ SessionManager = (*SessionStore)(nil)
	_ SessionManager = (*DBSessionStore)(nil)
	_ SessionManager = (*RedisSessionStore)(nil)
)
