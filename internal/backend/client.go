package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// maxResponseSize bounds a backend response body read into memory
const maxResponseSize = 16 << 20

// RequestIDFunc extracts a request id from a context so it can be forwarded
// to the backend
type RequestIDFunc func(ctx context.Context) string

// Config holds client settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RequestID RequestIDFunc
}

// DefaultConfig returns sensible defaults for talking to a local backend
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:5000/api",
		Timeout:   30 * time.Second,
		UserAgent: "boardgametracker-web",
	}
}

// Client is the shared HTTP client every resource wrapper goes through
type Client struct {
	baseURL    string
	userAgent  string
	requestID  RequestIDFunc
	httpClient *http.Client

	Games     *Games
	Players   *Players
	Locations *Locations
	Sessions  *Sessions
	Plays     *Plays
	Settings  *Settings
	Badges    *Badges
	Images    *Images
}

// NewClient creates a new backend client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		requestID: cfg.RequestID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	c.Games = &Games{c: c}
	c.Players = &Players{c: c}
	c.Locations = &Locations{c: c}
	c.Sessions = &Sessions{c: c}
	c.Plays = &Plays{c: c}
	c.Settings = &Settings{c: c}
	c.Badges = &Badges{c: c}
	c.Images = &Images{c: c}
	return c
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs a JSON request and decodes the response into result
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, result)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Upload posts a multipart form with a single file part plus extra fields
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req, result)
}

func (c *Client) send(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.requestID != nil {
		if id := c.requestID(req.Context()); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(req, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(respBody) > maxResponseSize {
		return fmt.Errorf("response from %s exceeds %d bytes", req.URL.Path, maxResponseSize)
	}

	if resp.StatusCode >= 400 {
		return newAPIError(req.Method, req.URL.Path, resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response from %s: %w", req.URL.Path, err)
		}
	}

	return nil
}
