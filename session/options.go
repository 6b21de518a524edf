package session

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the HTTP client used for identity endpoints
// (login, reissue, logout). Default: a client with no timeout; callers
// bound requests through context.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.httpc = c
	}
}

// WithLogger sets the structured logger. Default: a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithExpiryFunc sets the function used to extract the refresh token's
// expiry for proactive logout scheduling. Default: JWTExpiry.
func WithExpiryFunc(fn ExpiryFunc) Option {
	return func(m *Manager) {
		m.expiry = fn
	}
}

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}
