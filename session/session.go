// Package session implements the client-side session manager for the forum
// API: durable token storage, expiry tracking, coalesced token refresh, and
// session lifecycle notification.
//
// A Manager is the single source of truth for the authentication state of a
// process. All mutations are serialized; observers subscribed via Subscribe
// see every transition synchronously, before the next mutation can run.
package session

// UserProfile is the cached profile of the authenticated member. It is an
// immutable snapshot: replaced wholesale on login, profile edit, or hydrate,
// never field-patched.
type UserProfile struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email"`
	JoiningDate string `json:"joiningDate"`
}

// Credentials are the login form values sent to the identity endpoint.
type Credentials struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Snapshot is a point-in-time copy of the session state.
//
// Authenticated is true if and only if the access token, refresh token, and
// user profile are all present. The Manager never exposes a state where only
// one or two of the three are set.
type Snapshot struct {
	AccessToken   string
	RefreshToken  string
	User          *UserProfile
	Authenticated bool
}

// Persisted key layout. All three are written and removed together, except
// that a profile edit rewrites keyUser alone.
const (
	keyAccessToken  = "token"
	keyRefreshToken = "refreshToken"
	keyUser         = "user"
)
