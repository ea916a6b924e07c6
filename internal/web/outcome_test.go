package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justestif/go-spotify-quiz/internal/logging"
)

func TestErrorKindStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
		name string
	}{
		{AuthDenied, http.StatusBadRequest, "auth_denied"},
		{BadRequest, http.StatusBadRequest, "bad_request"},
		{InsufficientData, http.StatusUnprocessableEntity, "insufficient_data"},
		{RemoteAuth, http.StatusBadGateway, "remote_auth"},
		{RemoteResource, http.StatusBadGateway, "remote_resource"},
		{Persistence, http.StatusInternalServerError, "persistence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestWriteOutcome(t *testing.T) {
	h := NewHandlers(Deps{Logger: logging.Discard()}, mustTemplates(t))

	tests := []struct {
		name        string
		method      string
		outcome     Outcome
		wantStatus  int
		wantType    string
		wantBody    string
		wantHeader  string
		headerValue string
	}{
		{
			name:        "redirect after GET",
			method:      http.MethodGet,
			outcome:     Redirect{To: "/login"},
			wantStatus:  http.StatusTemporaryRedirect,
			wantHeader:  "Location",
			headerValue: "/login",
		},
		{
			name:        "redirect after POST",
			method:      http.MethodPost,
			outcome:     Redirect{To: "/"},
			wantStatus:  http.StatusSeeOther,
			wantHeader:  "Location",
			headerValue: "/",
		},
		{
			name:       "text",
			method:     http.MethodGet,
			outcome:    Text{Body: "hello"},
			wantStatus: http.StatusOK,
			wantType:   "text/plain; charset=utf-8",
			wantBody:   "hello",
		},
		{
			name:       "message",
			method:     http.MethodGet,
			outcome:    Message{Text: "nothing here"},
			wantStatus: http.StatusOK,
			wantType:   "application/json",
			wantBody:   `{"message":"nothing here"}`,
		},
		{
			name:       "no content",
			method:     http.MethodGet,
			outcome:    NoContent{},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "error",
			method:     http.MethodGet,
			outcome:    ErrorResponse{Kind: RemoteResource, Detail: "upstream down"},
			wantStatus: http.StatusBadGateway,
			wantType:   "application/json",
			wantBody:   `{"error":"upstream down"}`,
		},
		{
			name:       "page",
			method:     http.MethodGet,
			outcome:    Rendered{Page: "home", Data: PageData{Title: "Home"}},
			wantStatus: http.StatusOK,
			wantType:   "text/html; charset=utf-8",
			wantBody:   "<title>Home</title>",
		},
		{
			name:       "unknown page",
			method:     http.MethodGet,
			outcome:    Rendered{Page: "missing"},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)

			h.write(rec, req, tt.outcome)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantType != "" {
				if got := rec.Header().Get("Content-Type"); got != tt.wantType {
					t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
				}
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantHeader != "" {
				if got := rec.Header().Get(tt.wantHeader); got != tt.headerValue {
					t.Errorf("%s = %q, want %q", tt.wantHeader, got, tt.headerValue)
				}
			}
		})
	}
}
