package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/openboard/openboard/forum"
)

// Register creates a new member account. The endpoint is anonymous; a fresh
// account still has to log in afterwards.
func (c *Client) Register(ctx context.Context, in forum.RegisterInput) error {
	if err := forum.ValidateMemberID(in.ID); err != nil {
		return err
	}
	if err := forum.ValidateNickname(in.Nickname); err != nil {
		return err
	}
	if err := forum.ValidateEmail(in.Email); err != nil {
		return err
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/register", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if !is2xx(resp.StatusCode) {
		return apiErrorFromResponse(resp.StatusCode, body)
	}
	var env forum.Envelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil && env.Status == forum.StatusError {
		return &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}
	return nil
}
