package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/openboard/openboard/forum"
	"github.com/openboard/openboard/session"
)

// Multipart is a request body that is sent as-is with its own content type
// (multipart/form-data with boundary) instead of being JSON-encoded.
type Multipart struct {
	ContentType string
	Body        []byte
}

// do performs an authenticated request. It fails immediately with
// ErrUnauthenticated when no session is present.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token := c.sessions.AccessToken()
	if token == "" {
		return session.ErrUnauthenticated
	}
	return c.exchange(ctx, method, path, body, out, token)
}

// doOptionalAuth performs a request against an endpoint that serves anonymous
// callers too. With a session present it behaves exactly like do, so
// per-viewer fields (liked flags) come back populated.
func (c *Client) doOptionalAuth(ctx context.Context, method, path string, body, out any) error {
	return c.exchange(ctx, method, path, body, out, c.sessions.AccessToken())
}

func (c *Client) exchange(ctx context.Context, method, path string, body, out any, token string) error {
	payload, contentType, err := encodeBody(body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()

	resp, err := c.attempt(ctx, method, path, payload, contentType, token, reqID)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		drain(resp)
		c.log.Debug().Str("request_id", reqID).Str("path", path).Msg("access token rejected, refreshing")

		// Refresh coalesces concurrent 401s into one reissue call. A failed
		// refresh has already torn the session down.
		newToken, err := c.sessions.Refresh(ctx)
		if err != nil {
			return err
		}
		resp, err = c.attempt(ctx, method, path, payload, contentType, newToken, reqID)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			// A 401 on freshly issued credentials proves the chain is
			// unrecoverable without user interaction.
			_ = c.sessions.Logout(ctx)
			return session.ErrSessionExpired
		}
	}

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	c.log.Debug().Str("request_id", reqID).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Msg("request completed")

	if !is2xx(resp.StatusCode) {
		return apiErrorFromResponse(resp.StatusCode, raw)
	}

	var env forum.Envelope
	if len(raw) > 0 && json.Valid(raw) {
		_ = json.Unmarshal(raw, &env)
	}
	if env.Status == forum.StatusError {
		return &APIError{StatusCode: resp.StatusCode, Status: env.Status, Message: env.Message}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// attempt sends one HTTP request. The payload is replayed from bytes so the
// 401 retry can resend identical content, multipart included.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, contentType, token, reqID string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func encodeBody(body any) (payload []byte, contentType string, err error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.Body, b.ContentType, nil
	case Multipart:
		return b.Body, b.ContentType, nil
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return raw, "application/json", nil
	}
}

func apiErrorFromResponse(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env forum.Envelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil && env.Message != "" {
		apiErr.Status = env.Status
		apiErr.Message = env.Message
	}
	return apiErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func is2xx(status int) bool {
	return status >= 200 && status <= 299
}
