package client

import (
	"babymassage/webapp/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is any non-2xx answer from the backend. Detail carries the
// backend's own message when it sent one and is empty otherwise; callers
// pick their fallback text.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api: %s (status %d)", detail, e.StatusCode)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a stateless wrapper over the backend REST API at one base URL.
// A zero token means unauthenticated; WithToken derives a client that sends
// the bearer token on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	// Single-slot upload progress callback, replaced per call via
	// SetUploadProgressFunc. Last writer wins across overlapping uploads.
	progressFn func(percent int)
}

// New creates a backend API client from configuration.
func New(cfg config.APIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base URL cannot be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// WithToken returns a client that attaches the given bearer token to every
// request. The receiver is not modified, so per-visitor clients can be
// derived from one shared base client.
func (c *Client) WithToken(token string) *Client {
	dup := *c
	dup.token = token
	return &dup
}

// SetUploadProgressFunc installs the progress callback for the next upload,
// replacing any previous one. fn receives a 0-100 percentage.
func (c *Client) SetUploadProgressFunc(fn func(percent int)) {
	c.progressFn = fn
}

// do issues one request and decodes a JSON response into out (out may be
// nil). Non-2xx responses come back as *APIError. No retries.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
