// Package auth implements the Spotify OAuth2 authorization-code flow for the web app.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

var (
	// ErrRemoteAuth is returned when the token endpoint rejects a request or cannot be reached.
	ErrRemoteAuth = errors.New("spotify token endpoint error")

	// ErrMalformedToken is returned when a token response lacks a required field.
	ErrMalformedToken = fmt.Errorf("%w: malformed token response", ErrRemoteAuth)

	// ErrMissingRefreshToken is returned by Refresh when no refresh token is available.
	ErrMissingRefreshToken = errors.New("no refresh token")
)

// DefaultScopes are requested when Config.Scopes is empty.
var DefaultScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserLibraryRead,
}

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string

	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client exchanges authorization codes and refreshes access tokens.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewClient creates a Client. Empty endpoint URLs fall back to Spotify's accounts service.
func NewClient(cfg Config) *Client {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Credentials travel in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// AuthURL returns the authorize URL the user is sent to. state is echoed back
// on the callback; show_dialog forces Spotify to ask for consent every time.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for a token.
// The response must carry an access token, a refresh token and an expiry.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging code: %w", ErrRemoteAuth, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrMalformedToken)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh_token", ErrMalformedToken)
	}
	if tok.Expiry.IsZero() {
		return nil, fmt.Errorf("%w: missing expires_in", ErrMalformedToken)
	}
	return tok, nil
}

// Refresh obtains a new access token. Spotify does not rotate the refresh token,
// so the returned token always carries the one passed in.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	src := c.oauth.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refreshing token: %w", ErrRemoteAuth, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrMalformedToken)
	}
	if tok.Expiry.IsZero() {
		return nil, fmt.Errorf("%w: missing expires_in", ErrMalformedToken)
	}

	refreshed := *tok
	refreshed.RefreshToken = refreshToken
	return &refreshed, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
