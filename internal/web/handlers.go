package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	mrand "math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-quiz/internal/auth"
	"github.com/justestif/go-spotify-quiz/internal/quiz"
	"github.com/justestif/go-spotify-quiz/internal/results"
	"github.com/justestif/go-spotify-quiz/internal/spotify"
)

const (
	stateCookieName = "oauth_state"
	topArtistLimit  = 3
	readyTimeout    = 2 * time.Second

	noTopArtists = "No top artists available"
)

// Deps holds the collaborators of the HTTP handlers.
type Deps struct {
	Auth     *auth.Client
	Sessions SessionManager
	Results  results.Store
	Logger   *log.Logger

	// APIBaseURL and APITimeout configure the per-request Spotify client.
	APIBaseURL string
	APITimeout time.Duration

	// HTTPClient carries Spotify API requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Engine and Rand default to randomly seeded sources.
	Engine *quiz.Engine
	Rand   spotify.Rand

	// Now defaults to time.Now.
	Now func() time.Time

	// Checks are run by the readiness endpoint, keyed by backend name.
	Checks map[string]func(context.Context) error
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth       *auth.Client
	sessions   SessionManager
	results    results.Store
	templates  *Templates
	logger     *log.Logger
	apiBaseURL string
	apiTimeout time.Duration
	httpClient *http.Client
	engine     *quiz.Engine
	rng        spotify.Rand
	now        func() time.Time
	checks     map[string]func(context.Context) error
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, templates *Templates) *Handlers {
	h := &Handlers{
		auth:       deps.Auth,
		sessions:   deps.Sessions,
		results:    deps.Results,
		templates:  templates,
		logger:     deps.Logger,
		apiBaseURL: deps.APIBaseURL,
		apiTimeout: deps.APITimeout,
		httpClient: deps.HTTPClient,
		engine:     deps.Engine,
		rng:        deps.Rand,
		now:        deps.Now,
		checks:     deps.Checks,
	}

	if h.logger == nil {
		h.logger = log.Default()
	}
	if h.httpClient == nil {
		h.httpClient = http.DefaultClient
	}
	if h.engine == nil {
		h.engine = quiz.NewEngine(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))
	}
	if h.rng == nil {
		h.rng = &lockedRand{r: mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))}
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// pageFunc handles a request for the session attached by withSession.
type pageFunc func(w http.ResponseWriter, r *http.Request, s *Session) Outcome

// page adapts a pageFunc to http.HandlerFunc.
func (h *Handlers) page(fn pageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		if s == nil {
			h.write(w, r, ErrorResponse{Kind: Persistence, Detail: "session unavailable"})
			return
		}
		h.write(w, r, fn(w, r, s))
	}
}

// guard runs fn only for sessions holding an unexpired access token.
func (h *Handlers) guard(fn pageFunc) pageFunc {
	return func(w http.ResponseWriter, r *http.Request, s *Session) Outcome {
		switch auth.State(s.Token, h.now()) {
		case auth.NoToken:
			return Redirect{To: "/login"}
		case auth.TokenExpired:
			return Redirect{To: "/refresh-token"}
		}
		return fn(w, r, s)
	}
}

// spotifyFor builds a Spotify client for the session's access token.
func (h *Handlers) spotifyFor(ctx context.Context, tok *oauth2.Token) *spotify.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, h.httpClient)
	return spotify.NewForToken(ctx, h.apiBaseURL, tok.AccessToken, h.apiTimeout)
}

func (h *Handlers) pageData(r *http.Request, s *Session, title string) PageData {
	return PageData{
		Title:         title,
		CurrentPath:   r.URL.Path,
		Authenticated: auth.State(s.Token, h.now()) != auth.NoToken,
	}
}

// save stores the session, turning failures into an error outcome.
func (h *Handlers) save(ctx context.Context, s *Session) Outcome {
	if err := h.sessions.Save(ctx, s); err != nil {
		h.logger.Error("saving session", "err", err)
		return ErrorResponse{Kind: Persistence, Detail: "failed to save session"}
	}
	return nil
}

// remoteError logs err and classifies it for the response.
func (h *Handlers) remoteError(msg string, err error) ErrorResponse {
	h.logger.Error(msg, "err", err)
	switch {
	case errors.Is(err, auth.ErrRemoteAuth):
		return ErrorResponse{Kind: RemoteAuth, Detail: err.Error()}
	case errors.Is(err, quiz.ErrInsufficientTracks), errors.Is(err, quiz.ErrMissingFeatures):
		return ErrorResponse{Kind: InsufficientData, Detail: err.Error()}
	default:
		return ErrorResponse{Kind: RemoteResource, Detail: err.Error()}
	}
}

// Home handles the landing page (GET /).
func (h *Handlers) Home(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	return Rendered{Page: "home", Data: h.pageData(r, s, "Spotify Quiz")}
}

// Login redirects to Spotify's authorize page (GET /login).
func (h *Handlers) Login(w http.ResponseWriter, _ *http.Request, _ *Session) Outcome {
	// Generate state for CSRF protection
	state, err := generateOAuthState()
	if err != nil {
		h.logger.Error("generating oauth state", "err", err)
		return ErrorResponse{Kind: Persistence, Detail: "failed to generate state"}
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	return Redirect{To: h.auth.AuthURL(state)}
}

// Callback handles the OAuth callback from Spotify (GET /callback).
// A request carrying neither error nor code is answered with 204.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request, s *Session) Outcome {
	query := r.URL.Query()

	if query.Has("error") {
		return ErrorResponse{Kind: AuthDenied, Detail: query.Get("error")}
	}
	if !query.Has("code") {
		return NoContent{}
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		return ErrorResponse{Kind: BadRequest, Detail: "state mismatch"}
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	tok, err := h.auth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		return h.remoteError("exchanging authorization code", err)
	}

	s.Token = tok
	if o := h.save(r.Context(), s); o != nil {
		return o
	}
	return Redirect{To: "/top_artists"}
}

// RefreshToken renews an expired access token (GET /refresh-token).
// A token that has not expired yet is left alone.
func (h *Handlers) RefreshToken(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	if s.Token == nil || s.Token.RefreshToken == "" {
		return Redirect{To: "/login"}
	}
	if auth.State(s.Token, h.now()) == auth.TokenValid {
		return Redirect{To: "/top_artists"}
	}

	tok, err := h.auth.Refresh(r.Context(), s.Token.RefreshToken)
	if err != nil {
		return h.remoteError("refreshing token", err)
	}

	s.Token = tok
	if o := h.save(r.Context(), s); o != nil {
		return o
	}
	return Redirect{To: "/top_artists"}
}

// TopArtists shows the user's name and top three artists (GET /top_artists).
func (h *Handlers) TopArtists(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	client := h.spotifyFor(r.Context(), s.Token)

	name, err := client.DisplayName(r.Context())
	if err != nil {
		return h.remoteError("fetching profile", err)
	}

	artists, err := client.TopArtists(r.Context(), topArtistLimit)
	if err != nil {
		return h.remoteError("fetching top artists", err)
	}
	if len(artists) == 0 {
		return Text{Body: noTopArtists}
	}

	return Rendered{Page: "top_artists", Data: TopArtistsPageData{
		PageData:    h.pageData(r, s, "Your Top Artists"),
		DisplayName: name,
		Artists:     artists,
	}}
}

// Quiz generates a new quiz and keeps it in the session (GET /quiz).
func (h *Handlers) Quiz(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	q, err := h.engine.Generate(r.Context(), h.spotifyFor(r.Context(), s.Token))
	if err != nil {
		return h.remoteError("generating quiz", err)
	}

	s.Quiz = q
	if o := h.save(r.Context(), s); o != nil {
		return o
	}

	return Rendered{Page: "quiz", Data: QuizPageData{
		PageData: h.pageData(r, s, "Quiz"),
		Quiz:     q,
	}}
}

// SubmitQuiz grades the answer in form field answer1 and stores the attempt
// (POST /quiz/submit). A quiz can be graded once.
func (h *Handlers) SubmitQuiz(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	if s.Quiz == nil {
		return ErrorResponse{Kind: BadRequest, Detail: "no quiz in progress"}
	}

	result := quiz.Grade(s.Quiz, r.PostFormValue("answer1"))
	rec := quiz.NewRecord(s.Quiz, result)

	if err := h.results.Insert(r.Context(), rec); err != nil {
		h.logger.Error("storing quiz result", "err", err)
		return ErrorResponse{Kind: Persistence, Detail: "failed to save quiz result"}
	}
	quizResultsTotal.WithLabelValues(result).Inc()

	s.Quiz = nil
	if o := h.save(r.Context(), s); o != nil {
		return o
	}

	return Rendered{Page: "quiz_result", Data: QuizResultPageData{
		PageData: h.pageData(r, s, "Quiz Result"),
		Result:   result,
		Record:   rec,
	}}
}

// RandomSong shows a random track from a random featured playlist (GET /random_song).
func (h *Handlers) RandomSong(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	track, err := h.spotifyFor(r.Context(), s.Token).RandomFeaturedTrack(r.Context(), h.rng)
	switch {
	case errors.Is(err, spotify.ErrNoFeaturedPlaylists):
		return Message{Text: "No featured playlists available"}
	case errors.Is(err, spotify.ErrNoPlaylistTracks):
		return Message{Text: "No tracks found in the selected playlist"}
	case err != nil:
		return h.remoteError("fetching random song", err)
	}

	return Rendered{Page: "random_song", Data: RandomSongPageData{
		PageData: h.pageData(r, s, "Random Song"),
		Track:    track,
	}}
}

// History lists every stored quiz attempt (GET /history). Only the presence
// of a token is checked since no Spotify call is made.
func (h *Handlers) History(_ http.ResponseWriter, r *http.Request, s *Session) Outcome {
	if auth.State(s.Token, h.now()) == auth.NoToken {
		return Redirect{To: "/login"}
	}

	records, err := h.results.All(r.Context())
	if err != nil {
		h.logger.Error("listing quiz results", "err", err)
		return ErrorResponse{Kind: Persistence, Detail: "failed to load quiz history"}
	}

	correct := 0
	for _, rec := range records {
		if rec.Correct() {
			correct++
		}
	}

	return Rendered{Page: "history", Data: HistoryPageData{
		PageData: h.pageData(r, s, "Quiz History"),
		Records:  records,
		Correct:  correct,
	}}
}

// Logout clears the session and redirects to home (POST /logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request, s *Session) Outcome {
	h.sessions.Delete(r.Context(), s.ID)
	h.sessions.ClearCookie(w)
	return Redirect{To: "/"}
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether every storage backend answers (GET /ready).
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	failed := make(map[string]string)
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			h.logger.Warn("readiness check failed", "backend", name, "err", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// lockedRand makes a *rand.Rand safe for concurrent requests.
type lockedRand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
