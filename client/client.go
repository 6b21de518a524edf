// Package client provides the authenticated HTTP client for the forum API.
//
// All authenticated calls go through a single executor that attaches the
// current access token and transparently recovers from one class of failure:
// token expiry signalled by a 401. The recovery is refresh-then-retry,
// exactly once; a second 401 is terminal and cascades into a logout.
package client

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openboard/openboard/session"
)

// Client calls the forum API on behalf of a session.
type Client struct {
	baseURL  string
	sessions *session.Manager
	httpc    *http.Client
	log      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for forum endpoints.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpc = c
	}
}

// WithLogger sets the structured logger. Default: a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(cl *Client) {
		cl.log = log
	}
}

// New creates a Client for the forum at baseURL, authenticating through the
// given session manager.
func New(baseURL string, sessions *session.Manager, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		sessions: sessions,
		httpc:    &http.Client{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sessions returns the session manager this client authenticates through.
func (c *Client) Sessions() *session.Manager {
	return c.sessions
}
