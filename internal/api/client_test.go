package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// roundTripperFunc makes it easy to mock an http.Client.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestGetJSON_Success(t *testing.T) {
	client := NewClient("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet || req.URL.String() != "http://example.com/api/config" {
			t.Errorf("unexpected request: %s %s", req.Method, req.URL)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"base_url":"http://sho.rt","setup_done":true}`)),
		}, nil
	}), nil, nil)

	var cfg ServerConfig
	if err := client.GetJSON(context.Background(), "/api/config", &cfg); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if cfg.BaseURL != "http://sho.rt" || !cfg.SetupDone {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	client := NewClient("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		if auth := req.Header.Get("Authorization"); auth != "Bearer tok123" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
	}), staticToken("tok123"), nil)

	if err := client.GetJSON(context.Background(), "/api/user/me", nil); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
}

func TestDo_ErrorShapes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantErrors  int
	}{
		{
			name:        "message object",
			status:      http.StatusConflict,
			body:        `{"message":"Slug already exists."}`,
			wantMessage: "Slug already exists.",
		},
		{
			name:        "bare string",
			status:      http.StatusBadRequest,
			body:        `"something went wrong"`,
			wantMessage: "something went wrong",
		},
		{
			name:       "errors array",
			status:     http.StatusBadRequest,
			body:       `{"errors":["db.url is required","app.base_url is required"]}`,
			wantErrors: 2,
		},
		{
			name:        "unparseable payload",
			status:      http.StatusInternalServerError,
			body:        `<html>boom</html>`,
			wantMessage: `<html>boom</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: tt.status,
					Body:       io.NopCloser(strings.NewReader(tt.body)),
				}, nil
			}), nil, nil)

			err := client.GetJSON(context.Background(), "/api/x", nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d; want %d", apiErr.StatusCode, tt.status)
			}
			if tt.wantMessage != "" && apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q; want %q", apiErr.Message, tt.wantMessage)
			}
			if len(apiErr.Errors) != tt.wantErrors {
				t.Errorf("errors = %v; want %d entries", apiErr.Errors, tt.wantErrors)
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	client := NewClient("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	}), nil, nil)

	err := client.GetJSON(context.Background(), "/api/config", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("network failure must not be an APIError, got %v", apiErr)
	}
}

func TestDo_InvalidResponseBody(t *testing.T) {
	client := NewClient("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("not-json"))}, nil
	}), nil, nil)

	var out ServerConfig
	err := client.GetJSON(context.Background(), "/api/config", &out)
	if err == nil || !strings.Contains(err.Error(), "invalid response") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(&APIError{StatusCode: http.StatusUnauthorized}) {
		t.Error("401 APIError should be unauthorized")
	}
	if IsUnauthorized(&APIError{StatusCode: http.StatusForbidden}) {
		t.Error("403 APIError should not be unauthorized")
	}
	if IsUnauthorized(errors.New("plain")) {
		t.Error("plain error should not be unauthorized")
	}
}
