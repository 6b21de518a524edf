package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openboard/openboard/forum"
)

type commentsResponse struct {
	forum.Envelope
	Comments forum.Page[forum.Comment] `json:"comments"`
}

// CreateComment adds a top-level comment to a post and returns the refreshed
// comment page.
func (c *Client) CreateComment(ctx context.Context, postNum int, body string) (forum.Page[forum.Comment], error) {
	if err := forum.ValidateCommentBody(body); err != nil {
		return forum.Page[forum.Comment]{}, err
	}
	payload := struct {
		CommentBody string `json:"commentBody"`
	}{CommentBody: body}

	var out commentsResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/comment/create?post=%d", postNum), payload, &out)
	return out.Comments, err
}

// CreateReply adds a reply under an existing comment and returns the
// refreshed comment page.
func (c *Client) CreateReply(ctx context.Context, parent int, body string) (forum.Page[forum.Comment], error) {
	if err := forum.ValidateCommentBody(body); err != nil {
		return forum.Page[forum.Comment]{}, err
	}
	payload := struct {
		CommentBody string `json:"commentBody"`
		Parent      int    `json:"parent"`
	}{CommentBody: body, Parent: parent}

	var out commentsResponse
	err := c.do(ctx, http.MethodPost, "/api/comment/reply/create", payload, &out)
	return out.Comments, err
}

// DeleteComment removes the caller's comment.
func (c *Client) DeleteComment(ctx context.Context, commentNum int) error {
	payload := struct {
		CommentNum int `json:"commentNum"`
	}{CommentNum: commentNum}
	return c.do(ctx, http.MethodPost, "/api/comment/delete", payload, nil)
}
