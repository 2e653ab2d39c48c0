// Package client talks to a taskflow server over REST. It implements the
// task and rule repository contracts so a board can run against a remote store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mtlprog/taskflow/internal/config"
	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler/dto"
)

// Client is a REST client for the /api routes.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: config.DefaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// codeErrors maps server error codes to the sentinel they came from.
var codeErrors = map[string]error{
	"TASK_NOT_FOUND":    domain.ErrTaskNotFound,
	"RULE_NOT_FOUND":    domain.ErrRuleNotFound,
	"COMMENT_NOT_FOUND": domain.ErrCommentNotFound,
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Every failure wraps domain.ErrRemoteFailure.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %w", domain.ErrRemoteFailure, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrRemoteFailure, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteFailure, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrRemoteFailure, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp dto.ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Error.Message == "" {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%w: %s", domain.ErrRemoteFailure, msg)
	}

	if sentinel, ok := codeErrors[errResp.Error.Code]; ok {
		return fmt.Errorf("%w: %w", domain.ErrRemoteFailure, serverError{sentinel: sentinel, msg: errResp.Error.Message})
	}
	return fmt.Errorf("%w: %s", domain.ErrRemoteFailure, errResp.Error.Message)
}

// serverError keeps the server's message while matching a domain sentinel.
type serverError struct {
	sentinel error
	msg      string
}

func (e serverError) Error() string { return e.msg }
func (e serverError) Unwrap() error { return e.sentinel }
