package web

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Outcome is what a page handler decided to do. write turns it into a response.
type Outcome interface {
	outcome()
}

// Redirect sends the browser elsewhere.
type Redirect struct {
	To string
}

// Rendered is an HTML page.
type Rendered struct {
	Page string
	Data any
}

// Text is a plain-text 200 response.
type Text struct {
	Body string
}

// Message is a JSON {"message": ...} 200 response for empty results.
type Message struct {
	Text string
}

// NoContent is an empty 204 response.
type NoContent struct{}

// ErrorKind classifies failures surfaced to the user.
type ErrorKind int

const (
	AuthDenied ErrorKind = iota
	BadRequest
	InsufficientData
	RemoteAuth
	RemoteResource
	Persistence
)

// Status maps an ErrorKind to its HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case AuthDenied, BadRequest:
		return http.StatusBadRequest
	case InsufficientData:
		return http.StatusUnprocessableEntity
	case RemoteAuth, RemoteResource:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case AuthDenied:
		return "auth_denied"
	case BadRequest:
		return "bad_request"
	case InsufficientData:
		return "insufficient_data"
	case RemoteAuth:
		return "remote_auth"
	case RemoteResource:
		return "remote_resource"
	case Persistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// ErrorResponse is a JSON {"error": ...} response with the kind's status.
type ErrorResponse struct {
	Kind   ErrorKind
	Detail string
}

func (Redirect) outcome()      {}
func (Rendered) outcome()      {}
func (Text) outcome()          {}
func (Message) outcome()       {}
func (NoContent) outcome()     {}
func (ErrorResponse) outcome() {}

// write sends an outcome. Redirects answering a POST use 303 so the browser
// follows with GET; all others use 307.
func (h *Handlers) write(w http.ResponseWriter, r *http.Request, o Outcome) {
	switch o := o.(type) {
	case Redirect:
		status := http.StatusTemporaryRedirect
		if r.Method == http.MethodPost {
			status = http.StatusSeeOther
		}
		http.Redirect(w, r, o.To, status)

	case Rendered:
		var buf bytes.Buffer
		if err := h.templates.Render(&buf, o.Page, o.Data); err != nil {
			h.logger.Error("rendering template", "page", o.Page, "err", err)
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)

	case Text:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(o.Body))

	case Message:
		writeJSON(w, http.StatusOK, map[string]string{"message": o.Text})

	case NoContent:
		w.WriteHeader(http.StatusNoContent)

	case ErrorResponse:
		writeJSON(w, o.Kind.Status(), map[string]string{"error": o.Detail})

	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
