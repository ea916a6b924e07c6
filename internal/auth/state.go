package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenState classifies a session's token before a guarded request runs.
type TokenState int

const (
	NoToken TokenState = iota
	TokenExpired
	TokenValid
)

func (s TokenState) String() string {
	switch s {
	case NoToken:
		return "no_token"
	case TokenExpired:
		return "token_expired"
	case TokenValid:
		return "token_valid"
	default:
		return "unknown"
	}
}

// State reports whether tok can be used at now.
// A token without an expiry is treated as expired.
func State(tok *oauth2.Token, now time.Time) TokenState {
	if tok == nil || tok.AccessToken == "" {
		return NoToken
	}
	if tok.Expiry.IsZero() || now.After(tok.Expiry) {
		return TokenExpired
	}
	return TokenValid
}
