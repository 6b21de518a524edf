package session

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/openboard/openboard/storage"
)

// The refresh flow has two states: Valid (m.refreshing == nil) and Refreshing
// (m.refreshing holds the in-flight call). Triggers arriving while Refreshing
// do not issue a second reissue request; they wait on the in-flight call and
// share its outcome.
type refreshCall struct {
	done        chan struct{}
	accessToken string
	err         error
}

// Refresh exchanges the refresh token for a new token pair and returns the
// new access token. Concurrent callers coalesce onto a single reissue
// request. A rejected reissue is terminal: the session is logged out and all
// waiters receive ErrSessionExpired.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if call := m.refreshing; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.accessToken, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	refresh := m.refreshToken
	call := &refreshCall{done: make(chan struct{})}
	m.refreshing = call
	m.mu.Unlock()

	call.accessToken, call.err = m.reissue(ctx, refresh)

	m.mu.Lock()
	m.refreshing = nil
	m.mu.Unlock()
	close(call.done)

	return call.accessToken, call.err
}

func (m *Manager) reissue(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		m.mu.Lock()
		_ = m.clearSessionLocked()
		m.mu.Unlock()
		return "", ErrSessionExpired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/reissue", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Refresh-Token", refreshToken)

	resp, err := m.httpc.Do(req)
	if err != nil {
		// Transport failure: the refresh token may still be good, so the
		// session is left alone.
		return "", fmt.Errorf("reissue request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !is2xx(resp.StatusCode) {
		m.log.Warn().Int("status", resp.StatusCode).Msg("token reissue rejected")
		_ = m.Logout(ctx)
		return "", ErrSessionExpired
	}

	access, refresh, err := tokensFromHeaders(resp.Header)
	if err != nil {
		return "", fmt.Errorf("reissue response: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persistTokensLocked(access, refresh); err != nil {
		return "", err
	}
	m.accessToken = access
	m.refreshToken = refresh
	m.scheduleExpiryLocked()
	m.notifyLocked()
	m.log.Debug().Msg("tokens refreshed")
	return access, nil
}

// persistTokensLocked rewrites the token pair, leaving the persisted user
// untouched.
func (m *Manager) persistTokensLocked(access, refresh string) error {
	err := m.store.Batch(func(tx storage.BatchTx) error {
		if err := tx.Put(keyAccessToken, []byte(access)); err != nil {
			return err
		}
		return tx.Put(keyRefreshToken, []byte(refresh))
	})
	if err != nil {
		return fmt.Errorf("persisting refreshed tokens: %w", err)
	}
	return nil
}
