// Package api implements the HTTP client for the shortener REST API:
// thin JSON helpers over net/http plus typed endpoint wrappers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// APIError is returned for any non-2xx response. Message carries the
// server-supplied message; Errors is populated by the setup endpoint,
// which reports validation failures as a list.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api: status %d: %v", e.StatusCode, e.Errors)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// TokenSource supplies the bearer token attached to authenticated
// requests. An empty token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// Client issues JSON requests against a single base URL. Every call
// is a single attempt: no retries, no deduplication. Timeouts and
// cancellation come from the caller's context and the underlying
// http.Client.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

// NewClient builds a Client for the given base URL. tokens may be nil
// for a client that only ever hits public endpoints.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: baseURL, http: httpClient, tokens: tokens, log: log}
}

// GetJSON issues a GET and decodes a 2xx body into out (skipped when
// out is nil).
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST with the JSON-encoded body.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// PutJSON issues a PUT with the JSON-encoded body.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// DeleteJSON issues a DELETE.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, data)
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: invalid response: %w", method, path, err)
	}
	return nil
}

// decodeError normalizes the three error body shapes the server
// produces: a bare JSON string, {"message": ...}, or {"errors": [...]}.
// Anything else is passed through as the raw payload.
func decodeError(status int, data []byte) *APIError {
	var withFields struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(data, &withFields); err == nil {
		if len(withFields.Errors) > 0 {
			return &APIError{StatusCode: status, Message: withFields.Message, Errors: withFields.Errors}
		}
		if withFields.Message != "" {
			return &APIError{StatusCode: status, Message: withFields.Message}
		}
	}

	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		return &APIError{StatusCode: status, Message: bare}
	}

	return &APIError{StatusCode: status, Message: string(data)}
}
