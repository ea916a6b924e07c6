// Package spotifytest provides a fake Spotify accounts service and Web API for tests.
package spotifytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Server serves canned Spotify responses. Set the exported fields before
// issuing requests.
type Server struct {
	*httptest.Server

	DisplayName   string
	TopArtists    []map[string]any
	TopTracks     []map[string]any
	AudioFeatures []map[string]any
	Playlists     []string                    // featured playlist IDs
	PlaylistItems map[string][]map[string]any // playlist ID -> tracks.items

	// TokenResponse is returned by the token endpoint with TokenStatus (200 when zero).
	TokenResponse map[string]any
	TokenStatus   int

	// Fail forces a status code for a request path, e.g. "/v1/me".
	Fail map[string]int

	mu        sync.Mutex
	hits      map[string]int
	tokenForm []url.Values
	auth      []string
}

// NewServer starts a fake Spotify. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		PlaylistItems: make(map[string][]map[string]any),
		Fail:          make(map[string]int),
		hits:          make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/api/token", s.handleToken)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/me/top/artists", s.handleTopArtists)
		r.Get("/me/top/tracks", s.handleTopTracks)
		r.Get("/audio-features", s.handleAudioFeatures)
		r.Get("/browse/featured-playlists", s.handleFeaturedPlaylists)
		r.Get("/playlists/{id}", s.handlePlaylist)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the Web API root, with a trailing slash.
func (s *Server) BaseURL() string { return s.URL + "/v1/" }

// TokenURL is the accounts token endpoint.
func (s *Server) TokenURL() string { return s.URL + "/api/token" }

// AuthURL is the accounts authorize endpoint.
func (s *Server) AuthURL() string { return s.URL + "/authorize" }

// PlaylistHref is the absolute detail URL of a playlist.
func (s *Server) PlaylistHref(id string) string { return s.URL + "/v1/playlists/" + id }

// Hits reports how many requests were made to path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits reports how many requests were made to any path.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.hits {
		n += c
	}
	return n
}

// TokenForms returns the form bodies posted to the token endpoint.
func (s *Server) TokenForms() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.tokenForm...)
}

// Authorizations returns the Authorization headers sent to the Web API.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		if strings.HasPrefix(r.URL.Path, "/v1/") {
			s.auth = append(s.auth, r.Header.Get("Authorization"))
		}
		status := s.Fail[r.URL.Path]
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]any{
				"error": map[string]any{"status": status, "message": http.StatusText(status)},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.tokenForm = append(s.tokenForm, r.PostForm)
	s.mu.Unlock()

	status := s.TokenStatus
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, s.TokenResponse)
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": "user-1", "display_name": s.DisplayName})
}

func (s *Server) handleTopArtists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, page(limited(s.TopArtists, r)))
}

// handleTopTracks pages by limit and offset and rejects limits above 50.
func (s *Server) handleTopTracks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 20
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	if limit < 1 || limit > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"status": http.StatusBadRequest, "message": "Invalid limit"},
		})
		return
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	offset = min(max(offset, 0), len(s.TopTracks))
	end := min(offset+limit, len(s.TopTracks))

	items := s.TopTracks[offset:end]
	if items == nil {
		items = []map[string]any{}
	}
	body := map[string]any{"items": items, "total": len(s.TopTracks), "limit": limit, "offset": offset, "next": nil}
	if end < len(s.TopTracks) {
		body["next"] = s.URL + r.URL.Path + "?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, body)
}

// handleAudioFeatures answers in reverse request order with null for unknown ids.
func (s *Server) handleAudioFeatures(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	out := make([]any, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		var match any
		for _, f := range s.AudioFeatures {
			if f["id"] == ids[i] {
				match = f
				break
			}
		}
		out = append(out, match)
	}
	writeJSON(w, http.StatusOK, map[string]any{"audio_features": out})
}

func (s *Server) handleFeaturedPlaylists(w http.ResponseWriter, _ *http.Request) {
	items := make([]map[string]any, 0, len(s.Playlists))
	for _, id := range s.Playlists {
		items = append(items, map[string]any{
			"id":   id,
			"name": "Playlist " + id,
			"href": s.PlaylistHref(id),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Featured",
		"playlists": page(items),
	})
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	items, ok := s.PlaylistItems[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"status": http.StatusNotFound, "message": "Not found"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"tracks": page(items),
	})
}

// Artist builds a top-artists item. An empty image means no images.
func Artist(name, image string) map[string]any {
	a := map[string]any{"id": "artist-" + name, "name": name, "images": []any{}}
	if image != "" {
		a["images"] = []any{map[string]any{"url": image, "height": 640, "width": 640}}
	}
	return a
}

// Track builds a top-tracks item.
func Track(id, name string, artists ...string) map[string]any {
	as := make([]any, len(artists))
	for i, a := range artists {
		as[i] = map[string]any{"name": a}
	}
	return map[string]any{"id": id, "name": name, "artists": as}
}

// Features builds an audio-features item.
func Features(id string, energy, valence float64) map[string]any {
	return map[string]any{
		"id":               id,
		"acousticness":     0.1,
		"danceability":     0.5,
		"energy":           energy,
		"instrumentalness": 0.0,
		"liveness":         0.2,
		"loudness":         -6.5,
		"speechiness":      0.04,
		"tempo":            120.0,
		"valence":          valence,
	}
}

// PlaylistItem wraps a playlist track object as a tracks.items entry.
func PlaylistItem(track map[string]any) map[string]any {
	return map[string]any{"track": track}
}

// PlaylistTrack builds a full playlist track with album art and an external URL.
func PlaylistTrack(name, album, image, external string, artists ...string) map[string]any {
	t := Track("t-"+name, name, artists...)
	images := []any{}
	if image != "" {
		images = append(images, map[string]any{"url": image})
	}
	t["album"] = map[string]any{"name": album, "images": images}
	t["external_urls"] = map[string]any{"spotify": external}
	return t
}

func page(items []map[string]any) map[string]any {
	if items == nil {
		items = []map[string]any{}
	}
	return map[string]any{"items": items, "total": len(items), "limit": len(items), "offset": 0}
}

func limited(items []map[string]any, r *http.Request) []map[string]any {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err == nil && limit > 0 && limit < len(items) {
		return items[:limit]
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
