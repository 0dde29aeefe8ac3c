package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single upstream API call
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read
const maxErrorBody = 64 * 1024

// Authenticator decorates an outgoing request with credentials
type Authenticator func(req *http.Request)

// BearerToken authenticates with Authorization: Bearer <token>
func BearerToken(token string) Authenticator {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// BasicAuth authenticates with HTTP basic credentials
func BasicAuth(username, password string) Authenticator {
	return func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}
}

// HTTPClient is a small JSON REST client shared by the backend adapters.
// Every request carries X-Correlation-ID and is logged with its status and duration.
// Requests are attempted exactly once.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
	logger     zerolog.Logger
	userAgent  string
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithAuth sets the request authenticator
func WithAuth(auth Authenticator) Option {
	return func(c *HTTPClient) {
		c.auth = auth
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *HTTPClient) {
		c.userAgent = userAgent
	}
}

// NewHTTPClient creates a client rooted at baseURL
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		userAgent:  "mcp-toolservers",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root all relative paths are resolved against
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Do executes req with authentication and correlation headers injected
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	correlationID := uuid.New().String()

	logger := c.logger.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("correlationId", correlationID).
		Logger()

	req = req.WithContext(ctx)
	req.Header.Set("X-Correlation-ID", correlationID)
	if req.Header.Get("User-Agent") == "" && c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.auth != nil {
		c.auth(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		logger.Error().Err(err).Dur("duration", duration).Msg("HTTP request failed")
		return nil, err
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("HTTP request completed")

	return resp, nil
}

// DoJSON sends body (if non-nil) as JSON and decodes a successful response into out (if non-nil).
// Non-2xx responses are returned as *APIError.
func (c *HTTPClient) DoJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.roundTrip(ctx, req, out)
}

// PostForm sends form as application/x-www-form-urlencoded and decodes the JSON response into out
func (c *HTTPClient) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.roundTrip(ctx, req, out)
}

func (c *HTTPClient) roundTrip(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// resolve joins path onto the base URL; absolute URLs pass through untouched
func (c *HTTPClient) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// parseRetryAfter parses the Retry-After header
// Supports both integer seconds and HTTP-date format
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
