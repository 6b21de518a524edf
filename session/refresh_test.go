package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openboard/openboard/session"
	"github.com/openboard/openboard/storage"
	"github.com/openboard/openboard/storage/memory"
)

func TestManager_Refresh(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	store := memory.NewStore()
	m := session.NewManager(srv.URL, store)

	_, err := m.Login(ctx, session.Credentials{ID: "alice", Password: "s3cret"})
	require.NoError(t, err)
	before := m.Snapshot()

	token, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, m.AccessToken())

	after := m.Snapshot()
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken, "refresh token should rotate")
	assert.True(t, after.Authenticated)
	assert.Equal(t, before.User, after.User, "profile must survive a refresh")

	// The rotated pair is persisted.
	persisted, err := store.Get("token")
	require.NoError(t, err)
	assert.Equal(t, token, string(persisted))
}

func TestManager_Refresh_Coalesces(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	srv.ReissueDelay = 100 * time.Millisecond
	m := session.NewManager(srv.URL, memory.NewStore())

	_, err := m.Login(ctx, session.Credentials{ID: "alice", Password: "s3cret"})
	require.NoError(t, err)

	const callers = 5
	start := make(chan struct{})
	tokens := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			tokens[i], errs[i] = m.Refresh(ctx)
		}()
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, tokens[0], tokens[i], "all callers must share one outcome")
	}
	assert.Equal(t, 1, srv.Hits("/api/reissue"), "concurrent refreshes must coalesce into one reissue")
}

func TestManager_Refresh_RejectedLogsOut(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	store := memory.NewStore()
	m := session.NewManager(srv.URL, store)

	_, err := m.Login(ctx, session.Credentials{ID: "alice", Password: "s3cret"})
	require.NoError(t, err)

	srv.FailReissue(true)
	_, err = m.Refresh(ctx)
	require.ErrorIs(t, err, session.ErrSessionExpired)

	assert.False(t, m.Authenticated())
	_, err = store.Get("token")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_Refresh_Anonymous(t *testing.T) {
	srv := newTestServer(t)
	m := session.NewManager(srv.URL, memory.NewStore())

	_, err := m.Refresh(context.Background())
	require.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Zero(t, srv.Hits("/api/reissue"))
}

func TestManager_Refresh_TransportErrorKeepsSession(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	m := session.NewManager(srv.URL, memory.NewStore())

	_, err := m.Login(ctx, session.Credentials{ID: "alice", Password: "s3cret"})
	require.NoError(t, err)
	before := m.Snapshot()

	// Kill the server so the reissue request fails at the transport layer.
	srv.CloseClientConnections()
	srv.Close()

	_, err = m.Refresh(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrSessionExpired)

	after := m.Snapshot()
	assert.True(t, after.Authenticated, "a transport failure must not tear the session down")
	assert.Equal(t, before.RefreshToken, after.RefreshToken)
}
