// Package client is a Go client for the Thumblify API. Responses are
// unwrapped from the versioned envelope; API errors surface their
// machine-readable code.
package client

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 150 * time.Second

// APIError is a structured error returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a Thumblify server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The default timeout
// is generous because generation requests block on the provider.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token up front, skipping Login.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// envelope mirrors the server's response wrapper. Error responses put
// code and message where data would be.
type envelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Login authenticates and stores the access token on the client for
// subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	session, err := do[Session](ctx, c, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return nil, err
	}
	c.token = session.AccessToken
	return session, nil
}

// Generate requests a new thumbnail. The call blocks until the server
// finishes the provider round trip and returns the completed (or
// failed) record.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*Thumbnail, error) {
	return do[Thumbnail](ctx, c, http.MethodPost, "/api/thumbnail/generate", req)
}

// GetThumbnail fetches one record by id.
func (c *Client) GetThumbnail(ctx context.Context, id string) (*Thumbnail, error) {
	return do[Thumbnail](ctx, c, http.MethodGet, "/api/user/thumbnail/"+id, nil)
}

// ListThumbnails fetches the caller's gallery, newest first.
func (c *Client) ListThumbnails(ctx context.Context) (*ThumbnailList, error) {
	return do[ThumbnailList](ctx, c, http.MethodGet, "/api/user/thumbnails", nil)
}

// Search finds the caller's thumbnails matching q.
func (c *Client) Search(ctx context.Context, q string) (*ThumbnailList, error) {
	return do[ThumbnailList](ctx, c, http.MethodGet, "/api/user/thumbnails/search?q="+url.QueryEscape(q), nil)
}

// Delete removes a record and its stored image. Deleting an unknown id
// succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := do[struct {
		Message string `json:"message"`
	}](ctx, c, http.MethodDelete, "/api/thumbnail/delete/"+id, nil)
	return err
}

// DownloadURL returns a direct-download link for a completed record.
func (c *Client) DownloadURL(ctx context.Context, id string) (string, error) {
	resp, err := do[struct {
		DownloadURL string `json:"download_url"`
	}](ctx, c, http.MethodGet, "/api/user/thumbnail/"+id+"/download", nil)
	if err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}

// do performs one request and unwraps the envelope.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		message := env.Message
		if message == "" {
			message = env.Error
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    message,
		}
	}

	return &env.Data, nil
}
