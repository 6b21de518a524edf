package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openboard/openboard/storage"
)

// Manager owns the process-wide authentication state. It talks to the
// identity endpoints (/api/login, /api/reissue, /api/logout) itself;
// everything else goes through an authenticated executor that borrows the
// Manager's access token and refresh flow.
type Manager struct {
	baseURL string
	httpc   *http.Client
	store   storage.Store
	log     zerolog.Logger
	expiry  ExpiryFunc
	now     func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *UserProfile
	refreshing   *refreshCall
	expiryTimer  *time.Timer
	subs         map[int]func(Snapshot)
	nextSubID    int
}

// NewManager creates a Manager persisting to the given store. The session
// starts empty; call Hydrate to restore a persisted session.
func NewManager(baseURL string, store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		store:   store,
		log:     zerolog.Nop(),
		expiry:  JWTExpiry,
		now:     time.Now,
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a point-in-time copy of the session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Authenticated reports whether a complete session is present.
func (m *Manager) Authenticated() bool {
	return m.Snapshot().Authenticated
}

// User returns the cached profile, or nil when anonymous.
func (m *Manager) User() *UserProfile {
	return m.Snapshot().User
}

// AccessToken returns the current access token, or "" when anonymous.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	snap.Authenticated = m.accessToken != "" && m.refreshToken != "" && m.user != nil
	return snap
}

// Subscribe registers fn to be called synchronously on every session state
// transition, while the transition is being applied. fn must not call back
// into the Manager's mutators. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notifyLocked() {
	snap := m.snapshotLocked()
	for _, fn := range m.subs {
		fn(snap)
	}
}

// Hydrate restores a persisted session at startup. A missing or partially
// written session leaves the Manager anonymous; a persisted refresh token
// whose expiry is already in the past triggers a logout instead of a restore.
func (m *Manager) Hydrate(ctx context.Context) error {
	access, errAccess := m.store.Get(keyAccessToken)
	refresh, errRefresh := m.store.Get(keyRefreshToken)
	userRaw, errUser := m.store.Get(keyUser)

	missing := 0
	for _, err := range []error{errAccess, errRefresh, errUser} {
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			missing++
		default:
			return fmt.Errorf("reading persisted session: %w", err)
		}
	}
	if missing == 3 {
		return nil
	}
	if missing > 0 {
		// Partial state from an interrupted write: discard it.
		m.log.Warn().Msg("discarding partially persisted session")
		return m.clearPersisted()
	}

	var user UserProfile
	if err := json.Unmarshal(userRaw, &user); err != nil {
		m.log.Warn().Err(err).Msg("discarding unreadable persisted profile")
		return m.clearPersisted()
	}

	if exp, err := m.expiry(string(refresh)); err == nil && !exp.After(m.now()) {
		m.log.Info().Time("expired_at", exp).Msg("persisted refresh token expired")
		return m.Logout(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = string(access)
	m.refreshToken = string(refresh)
	m.user = &user
	m.scheduleExpiryLocked()
	m.notifyLocked()
	m.log.Info().Str("user", user.ID).Msg("session restored")
	return nil
}

// Login authenticates against /api/login. On success the returned tokens and
// profile are stored atomically and the profile is returned. A rejected login
// returns ErrBadCredentials and changes nothing; transport failures propagate
// unchanged.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*UserProfile, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("login rejected (status %d): %w", resp.StatusCode, ErrBadCredentials)
	}

	access, refresh, err := tokensFromHeaders(resp.Header)
	if err != nil {
		return nil, fmt.Errorf("login response: %w", err)
	}
	var payload struct {
		User UserProfile `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persistSessionLocked(access, refresh, &payload.User); err != nil {
		return nil, err
	}
	m.accessToken = access
	m.refreshToken = refresh
	u := payload.User
	m.user = &u
	m.scheduleExpiryLocked()
	m.notifyLocked()
	m.log.Info().Str("user", u.ID).Msg("logged in")

	out := u
	return &out, nil
}

// Logout tears down the session. The server is notified best-effort so it can
// invalidate the refresh token; a failed notification is logged, never
// propagated, because local state clearing must succeed regardless of server
// reachability. Logout of an already-empty session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	access, refresh := m.accessToken, m.refreshToken
	m.mu.Unlock()

	if access != "" || refresh != "" {
		if err := m.serverLogout(ctx, access, refresh); err != nil {
			m.log.Warn().Err(err).Msg("server logout notification failed")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearSessionLocked()
}

// SetUser replaces the cached profile after a profile edit. Tokens are
// untouched. Setting a profile on an anonymous session would violate the
// all-or-nothing invariant and is rejected.
func (m *Manager) SetUser(profile UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accessToken == "" || m.refreshToken == "" {
		return ErrUnauthenticated
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := m.store.Put(keyUser, raw); err != nil {
		return fmt.Errorf("persisting profile: %w", err)
	}
	u := profile
	m.user = &u
	m.notifyLocked()
	return nil
}

func (m *Manager) persistSessionLocked(access, refresh string, user *UserProfile) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	err = m.store.Batch(func(tx storage.BatchTx) error {
		if err := tx.Put(keyAccessToken, []byte(access)); err != nil {
			return err
		}
		if err := tx.Put(keyRefreshToken, []byte(refresh)); err != nil {
			return err
		}
		return tx.Put(keyUser, raw)
	})
	if err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

func (m *Manager) clearPersisted() error {
	err := m.store.Batch(func(tx storage.BatchTx) error {
		if err := tx.Delete(keyAccessToken); err != nil {
			return err
		}
		if err := tx.Delete(keyRefreshToken); err != nil {
			return err
		}
		return tx.Delete(keyUser)
	})
	if err != nil {
		return fmt.Errorf("clearing persisted session: %w", err)
	}
	return nil
}

func (m *Manager) clearSessionLocked() error {
	if err := m.clearPersisted(); err != nil {
		return err
	}
	wasEmpty := m.accessToken == "" && m.refreshToken == "" && m.user == nil
	m.accessToken = ""
	m.refreshToken = ""
	m.user = nil
	if m.expiryTimer != nil {
		m.expiryTimer.Stop()
		m.expiryTimer = nil
	}
	if !wasEmpty {
		m.notifyLocked()
		m.log.Info().Msg("logged out")
	}
	return nil
}

// scheduleExpiryLocked arms the proactive logout timer at the refresh token's
// expiry. Any previous timer is cancelled. Tokens without a readable expiry
// claim get no timer; the server's 401 remains the only expiry signal then.
func (m *Manager) scheduleExpiryLocked() {
	if m.expiryTimer != nil {
		m.expiryTimer.Stop()
		m.expiryTimer = nil
	}
	if m.refreshToken == "" {
		return
	}
	exp, err := m.expiry(m.refreshToken)
	if err != nil {
		m.log.Debug().Err(err).Msg("refresh token has no readable expiry; proactive logout disabled")
		return
	}
	d := exp.Sub(m.now())
	if d < 0 {
		d = 0
	}
	m.expiryTimer = time.AfterFunc(d, m.expireSession)
}

// expireSession fires when the refresh token's lifetime elapses with no
// activity having replaced it. A timer that lost the race against a refresh
// finds a still-valid token and stands down.
func (m *Manager) expireSession() {
	m.mu.Lock()
	if m.refreshToken == "" {
		m.mu.Unlock()
		return
	}
	if exp, err := m.expiry(m.refreshToken); err == nil && exp.After(m.now()) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.log.Info().Msg("refresh token lifetime elapsed, logging out")
	_ = m.Logout(context.Background())
}

func (m *Manager) serverLogout(ctx context.Context, access, refresh string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+access)
	req.Header.Set("X-Refresh-Token", refresh)

	resp, err := m.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if !is2xx(resp.StatusCode) {
		return fmt.Errorf("logout returned status %d", resp.StatusCode)
	}
	return nil
}

func is2xx(status int) bool {
	return status >= 200 && status <= 299
}

// tokensFromHeaders extracts the token pair the identity endpoints return in
// response headers.
func tokensFromHeaders(h http.Header) (access, refresh string, err error) {
	access = strings.TrimPrefix(h.Get("Authorization"), "Bearer ")
	refresh = h.Get("X-Refresh-Token")
	if access == "" || refresh == "" {
		return "", "", errors.New("response is missing token headers")
	}
	return access, refresh, nil
}
