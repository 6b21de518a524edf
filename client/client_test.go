package client_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openboard/openboard/client"
	"github.com/openboard/openboard/forum"
	"github.com/openboard/openboard/internal/forumtest"
	"github.com/openboard/openboard/session"
	"github.com/openboard/openboard/storage/memory"
)

var testProfile = session.UserProfile{
	ID:       "alice",
	Nickname: "Alice",
	Email:    "alice@example.com",
}

// newTestClient returns a client logged in as alice.
func newTestClient(t *testing.T) (*client.Client, *forumtest.Server) {
	t.Helper()
	srv := forumtest.New(t)
	srv.AddAccount("alice", "s3cret", testProfile)

	m := session.NewManager(srv.URL, memory.NewStore())
	_, err := m.Login(context.Background(), session.Credentials{ID: "alice", Password: "s3cret"})
	require.NoError(t, err)

	return client.New(srv.URL, m), srv
}

func TestClient_CreateAndListPosts(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	err := c.CreatePost(ctx, forum.PostInput{Title: "hello", TextBody: "first post"})
	require.NoError(t, err)

	page, err := c.ListPosts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "hello", page.Content[0].Title)
	assert.Equal(t, "first post", page.Content[0].TextBody)
}

func TestClient_GetPostWithComments(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	require.NoError(t, c.CreatePost(ctx, forum.PostInput{Title: "t", TextBody: "b"}))

	comments, err := c.CreateComment(ctx, 1, "nice post")
	require.NoError(t, err)
	require.Len(t, comments.Content, 1)

	post, got, err := c.GetPost(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, 1, post.PostNum)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "nice post", got.Content[0].CommentBody)
}

func TestClient_LikePost_Toggles(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	require.NoError(t, c.CreatePost(ctx, forum.PostInput{Title: "t", TextBody: "b"}))

	post, err := c.LikePost(ctx, 1)
	require.NoError(t, err)
	assert.True(t, post.IsLiked)
	assert.Equal(t, 1, post.Like)

	post, err = c.LikePost(ctx, 1)
	require.NoError(t, err)
	assert.False(t, post.IsLiked)
	assert.Zero(t, post.Like)
}

func TestClient_RetriesOnceAfter401(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)
	require.NoError(t, c.CreatePost(ctx, forum.PostInput{Title: "t", TextBody: "b"}))

	// The next authenticated request is rejected once; the executor must
	// refresh and replay it invisibly.
	srv.ForceUnauthorized(1)
	err := c.CreatePost(ctx, forum.PostInput{Title: "again", TextBody: "b"})
	require.NoError(t, err)

	assert.Equal(t, 3, srv.Hits("/api/normal/create"), "original + rejected + replay")
	assert.Equal(t, 1, srv.Hits("/api/reissue"))
	assert.True(t, c.Sessions().Authenticated())
}

func TestClient_SecondUnauthorizedLogsOut(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	srv.AlwaysUnauthorized(true)
	err := c.CreatePost(ctx, forum.PostInput{Title: "t", TextBody: "b"})
	require.ErrorIs(t, err, session.ErrSessionExpired)

	// Exactly two attempts on the target and one reissue; no retry loop.
	assert.Equal(t, 2, srv.Hits("/api/normal/create"))
	assert.Equal(t, 1, srv.Hits("/api/reissue"))
	assert.False(t, c.Sessions().Authenticated())
}

func TestClient_UnauthenticatedFailsFast(t *testing.T) {
	srv := forumtest.New(t)
	m := session.NewManager(srv.URL, memory.NewStore())
	c := client.New(srv.URL, m)

	err := c.CreatePost(context.Background(), forum.PostInput{Title: "t", TextBody: "b"})
	require.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Zero(t, srv.Hits("/api/normal/create"))
}

func TestClient_PublicEndpointWorksAnonymously(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)
	require.NoError(t, c.CreatePost(ctx, forum.PostInput{Title: "t", TextBody: "b"}))

	anon := client.New(srv.URL, session.NewManager(srv.URL, memory.NewStore()))
	page, err := anon.ListPosts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
}

func TestClient_EditMemberUpdatesSession(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	user, err := c.EditMember(ctx, forum.MemberEdit{Nickname: "Allie", Password: "s3cret"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Allie", user.Nickname)

	cached := c.Sessions().User()
	require.NotNil(t, cached)
	assert.Equal(t, "Allie", cached.Nickname)
	assert.True(t, c.Sessions().Authenticated())
}

func TestClient_UploadProfileImage(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	err := c.UploadProfileImage(ctx, "avatar.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("/api/file/profile/upload"))
}

func TestClient_UploadProfileImage_ReplaysMultipartOn401(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	srv.ForceUnauthorized(1)
	err := c.UploadProfileImage(ctx, "avatar.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Hits("/api/file/profile/upload"))
}

func TestClient_EnvelopeErrorBecomesAPIError(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	// Registering a taken id returns 200 with an error envelope.
	err := c.Register(ctx, forum.RegisterInput{
		ID:       "alice",
		Password: "pw",
		Nickname: "Alice2",
		Email:    "alice2@example.com",
	})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, forum.StatusError, apiErr.Status)
	assert.Equal(t, "id already taken", apiErr.Message)
}

func TestClient_NotFoundBecomesAPIError(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	_, _, err := c.GetPost(ctx, 42)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestClient_ValidationRejectsLocally(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	err := c.CreatePost(ctx, forum.PostInput{Title: "", TextBody: "b"})
	require.ErrorIs(t, err, forum.ErrValidation)
	assert.Zero(t, srv.Hits("/api/normal/create"))

	_, err = c.CreateComment(ctx, 1, strings.Repeat("x", forum.MaxCommentLength+1))
	require.ErrorIs(t, err, forum.ErrValidation)
}

func TestClient_Register(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	err := c.Register(ctx, forum.RegisterInput{
		ID:       "bob",
		Password: "pw",
		Nickname: "Bob",
		Email:    "bob@example.com",
	})
	require.NoError(t, err)

	m := session.NewManager(srv.URL, memory.NewStore())
	_, err = m.Login(ctx, session.Credentials{ID: "bob", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", m.User().Nickname)
}

func TestAPIError_Message(t *testing.T) {
	err := &client.APIError{StatusCode: 500, Status: forum.StatusError, Message: "boom"}
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "500")

	var target *client.APIError
	assert.True(t, errors.As(error(err), &target))
}
