// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1/"

// ErrRemoteResource is returned when a Web API call fails or returns an unexpected body.
var ErrRemoteResource = errors.New("spotify resource error")

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api     *spotify.Client
	http    *http.Client
	baseURL *url.URL
}

// NewForToken creates a client that sends accessToken as a bearer token.
// An *http.Client stored in ctx under oauth2.HTTPClient is used as the transport.
func NewForToken(ctx context.Context, baseURL, accessToken string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = timeout

	base, err := url.Parse(baseURL)
	if err != nil {
		base, _ = url.Parse(DefaultBaseURL)
		baseURL = DefaultBaseURL
	}

	return &Client{
		api:     spotify.New(httpClient, spotify.WithBaseURL(baseURL)),
		http:    httpClient,
		baseURL: base,
	}
}

// Get issues an authenticated GET and decodes the JSON body into v.
// Absolute URLs, such as the follow-up hrefs Spotify returns, are used verbatim;
// anything else is resolved against the API base URL.
func (c *Client) Get(ctx context.Context, pathOrURL string, v any) error {
	target, err := c.resolve(pathOrURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteResource, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrRemoteResource, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrRemoteResource, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: GET %s: status %d: %s", ErrRemoteResource, target, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrRemoteResource, target, err)
	}
	return nil
}

func (c *Client) resolve(pathOrURL string) (string, error) {
	u, err := url.Parse(pathOrURL)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", pathOrURL, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	rel, err := url.Parse(strings.TrimPrefix(pathOrURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", pathOrURL, err)
	}
	return c.baseURL.ResolveReference(rel).String(), nil
}

// DisplayName returns the current user's display name.
func (c *Client) DisplayName(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: getting current user: %w", ErrRemoteResource, err)
	}
	return user.DisplayName, nil
}
