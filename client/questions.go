package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openboard/openboard/forum"
)

// ListQuestions returns a page of the question board. Pages are zero-based.
func (c *Client) ListQuestions(ctx context.Context, page int) (forum.Page[forum.Question], error) {
	var out struct {
		forum.Envelope
		Questions forum.Page[forum.Question] `json:"questions"`
	}
	err := c.doOptionalAuth(ctx, http.MethodGet, fmt.Sprintf("/api/question/list?page=%d", page), nil, &out)
	return out.Questions, err
}

// GetQuestion returns a question and its answers.
func (c *Client) GetQuestion(ctx context.Context, postNum int) (*forum.Question, forum.Page[forum.Answer], error) {
	var out struct {
		forum.Envelope
		Post    *forum.Question          `json:"post"`
		Answers forum.Page[forum.Answer] `json:"answers"`
	}
	err := c.doOptionalAuth(ctx, http.MethodGet, fmt.Sprintf("/api/question?post=%d", postNum), nil, &out)
	if err != nil {
		return nil, forum.Page[forum.Answer]{}, err
	}
	return out.Post, out.Answers, nil
}

// CreateQuestion submits a new question.
func (c *Client) CreateQuestion(ctx context.Context, in forum.PostInput) error {
	if err := forum.ValidatePostInput(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/question/create", in, nil)
}

// DeleteQuestion removes the caller's question.
func (c *Client) DeleteQuestion(ctx context.Context, postNum int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/question/delete?post=%d", postNum), nil, nil)
}

// CreateAnswer submits an answer to a question.
func (c *Client) CreateAnswer(ctx context.Context, postNum int, in forum.PostInput) error {
	if err := forum.ValidatePostInput(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/answer/create?post=%d", postNum), in, nil)
}

// DeleteAnswer removes the caller's answer.
func (c *Client) DeleteAnswer(ctx context.Context, postNum int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/answer/delete?post=%d", postNum), nil, nil)
}

// UpvoteAnswer toggles the caller's upvote and returns the updated answer.
func (c *Client) UpvoteAnswer(ctx context.Context, postNum int) (*forum.Answer, error) {
	return c.voteAnswer(ctx, fmt.Sprintf("/api/like/answer?post=%d", postNum))
}

// DownvoteAnswer toggles the caller's downvote and returns the updated answer.
func (c *Client) DownvoteAnswer(ctx context.Context, postNum int) (*forum.Answer, error) {
	return c.voteAnswer(ctx, fmt.Sprintf("/api/dislike/answer?post=%d", postNum))
}

func (c *Client) voteAnswer(ctx context.Context, path string) (*forum.Answer, error) {
	var out struct {
		forum.Envelope
		Answer *forum.Answer `json:"answer"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Answer, nil
}
