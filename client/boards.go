package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openboard/openboard/forum"
)

// ListPosts returns a page of the free board. Pages are zero-based.
func (c *Client) ListPosts(ctx context.Context, page int) (forum.Page[forum.Post], error) {
	var out struct {
		forum.Envelope
		Posts forum.Page[forum.Post] `json:"posts"`
	}
	err := c.doOptionalAuth(ctx, http.MethodGet, fmt.Sprintf("/api/normal/list?page=%d", page), nil, &out)
	return out.Posts, err
}

// GetPost returns a single post and its comments.
func (c *Client) GetPost(ctx context.Context, postNum int) (*forum.Post, forum.Page[forum.Comment], error) {
	var out struct {
		forum.Envelope
		Post     *forum.Post               `json:"post"`
		Comments forum.Page[forum.Comment] `json:"comments"`
	}
	err := c.doOptionalAuth(ctx, http.MethodGet, fmt.Sprintf("/api/normal?post=%d", postNum), nil, &out)
	if err != nil {
		return nil, forum.Page[forum.Comment]{}, err
	}
	return out.Post, out.Comments, nil
}

// CreatePost submits a new post to the free board.
func (c *Client) CreatePost(ctx context.Context, in forum.PostInput) error {
	if err := forum.ValidatePostInput(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/normal/create", in, nil)
}

// EditPost replaces the title and body of an existing post.
func (c *Client) EditPost(ctx context.Context, postNum int, in forum.PostInput) error {
	if err := forum.ValidatePostInput(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/normal/edit?post=%d", postNum), in, nil)
}

// LikePost toggles the caller's like on a post and returns the updated post.
func (c *Client) LikePost(ctx context.Context, postNum int) (*forum.Post, error) {
	var out struct {
		forum.Envelope
		Post *forum.Post `json:"post"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/like?post=%d", postNum), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Post, nil
}

// SearchPosts runs a keyword search over the selected fields.
func (c *Client) SearchPosts(ctx context.Context, page int, q forum.SearchQuery) (forum.Page[forum.Post], error) {
	if err := forum.ValidateSearchQuery(q); err != nil {
		return forum.Page[forum.Post]{}, err
	}
	var out struct {
		forum.Envelope
		Posts forum.Page[forum.Post] `json:"posts"`
	}
	err := c.doOptionalAuth(ctx, http.MethodPost, fmt.Sprintf("/api/search/posts?page=%d", page), q, &out)
	return out.Posts, err
}
