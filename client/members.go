package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/openboard/openboard/forum"
	"github.com/openboard/openboard/session"
)

// GetMember returns the public profile of a member.
func (c *Client) GetMember(ctx context.Context, userID string) (*session.UserProfile, error) {
	var out struct {
		forum.Envelope
		User *session.UserProfile `json:"user"`
	}
	path := "/api/member?user=" + url.QueryEscape(userID)
	if err := c.doOptionalAuth(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// EditMember updates the caller's account. The server returns the updated
// profile, which replaces the session's cached copy; tokens are untouched.
func (c *Client) EditMember(ctx context.Context, edit forum.MemberEdit) (*session.UserProfile, error) {
	if edit.ID != "" {
		if err := forum.ValidateMemberID(edit.ID); err != nil {
			return nil, err
		}
	}
	if edit.Nickname != "" {
		if err := forum.ValidateNickname(edit.Nickname); err != nil {
			return nil, err
		}
	}
	if edit.Email != "" {
		if err := forum.ValidateEmail(edit.Email); err != nil {
			return nil, err
		}
	}

	var out struct {
		forum.Envelope
		User *session.UserProfile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/member/edit", edit, &out); err != nil {
		return nil, err
	}
	if out.User != nil {
		if err := c.sessions.SetUser(*out.User); err != nil {
			return nil, err
		}
	}
	return out.User, nil
}

// MemberPosts returns a page of posts written by a member.
func (c *Client) MemberPosts(ctx context.Context, userID string, page int) (forum.Page[forum.Post], error) {
	var out struct {
		forum.Envelope
		Posts forum.Page[forum.Post] `json:"posts"`
	}
	path := fmt.Sprintf("/api/member/posts?user=%s&page=%d", url.QueryEscape(userID), page)
	err := c.doOptionalAuth(ctx, http.MethodGet, path, nil, &out)
	return out.Posts, err
}

// MemberComments returns a page of comments written by a member.
func (c *Client) MemberComments(ctx context.Context, userID string, page int) (forum.Page[forum.Comment], error) {
	var out struct {
		forum.Envelope
		Comments forum.Page[forum.Comment] `json:"comments"`
	}
	path := fmt.Sprintf("/api/member/comments?user=%s&page=%d", url.QueryEscape(userID), page)
	err := c.doOptionalAuth(ctx, http.MethodGet, path, nil, &out)
	return out.Comments, err
}

// MemberLikes returns a page of posts the member has liked. The server only
// serves this to the member themselves, so the call always authenticates.
func (c *Client) MemberLikes(ctx context.Context, userID string, page int) (forum.Page[forum.Post], error) {
	var out struct {
		forum.Envelope
		Posts forum.Page[forum.Post] `json:"posts"`
	}
	path := fmt.Sprintf("/api/member/likes?user=%s&page=%d", url.QueryEscape(userID), page)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Posts, err
}

// UploadProfileImage uploads a new profile picture as multipart/form-data.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, r io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading profile image: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	body := &Multipart{ContentType: w.FormDataContentType(), Body: buf.Bytes()}
	return c.do(ctx, http.MethodPost, "/api/file/profile/upload", body, nil)
}

// ProfileImageURL returns the download URL for a member's profile picture.
func (c *Client) ProfileImageURL(userID string) string {
	return c.baseURL + "/api/file/profile/download?user=" + url.QueryEscape(userID)
}
