// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Ava chat backend.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors on non-streaming endpoints.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size for
	// non-streaming endpoints.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// MaxContentSize is the maximum size of a fetched source document.
	MaxContentSize = 50 * 1024 * 1024 // 50MB
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for all non-streaming backend requests.
	// SECURITY: TLS 1.2+ enforced.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests (no timeout,
	// cancellation is context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates no backend URL or credential is set.
	ErrNotConfigured = errors.New("backend not configured")

	// ErrUnauthorized indicates the bearer token was rejected.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the signed-in user may not use this bot.
	ErrForbidden = errors.New("access denied")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// APIError represents an error response from the backend. Status is 0
// for in-band errors delivered over a healthy stream.
type APIError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("backend error (HTTP %d)", e.Status)
	default:
		return "backend error: " + e.Message
	}
}

// apiErrorBody is the JSON error envelope the backend uses.
type apiErrorBody struct {
	Error string `json:"error"`
}

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource supplies the bearer credential for each request. The
// credential store implements this; the client itself never persists
// tokens.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
// Useful for tests and for tokens passed via environment.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (no trailing slash).
	BaseURL string

	// Timeout for non-streaming requests (default: 60s).
	Timeout time.Duration

	// MaxRetries for transient failures on non-streaming endpoints
	// (default: 3).
	MaxRetries int

	// RequestsPerSecond caps the non-streaming request rate
	// (default: 5, burst 10). Streaming requests are not limited.
	RequestsPerSecond float64

	// UserAgent sent with every request.
	UserAgent string
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:           DefaultTimeout,
		MaxRetries:        DefaultMaxRetries,
		RequestsPerSecond: 5,
		UserAgent:         "ava-tui/0.3.0",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ava backend.
//
// The Client is safe for concurrent use.
type Client struct {
	config  *ClientConfig
	tokens  TokenSource
	limiter *rate.Limiter
}

// NewClient creates a backend client with default configuration. The
// base URL must be set via config before requests succeed; use
// NewClientWithConfig to supply it directly.
func NewClient(tokens TokenSource) *Client {
	return NewClientWithConfig(DefaultClientConfig(), tokens)
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig, tokens TokenSource) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}

	// Fill in defaults for any zero values
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "ava-tui/0.3.0"
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	return &Client{
		config:  config,
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 10),
	}
}

// WithBaseURL sets the backend base URL.
func (c *Client) WithBaseURL(base string) *Client {
	c.config.BaseURL = strings.TrimSuffix(base, "/")
	return c
}

// IsConfigured returns true if a backend URL is set.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// setHeaders sets the common headers for a backend request. Every
// request gets a fresh UUID so backend logs can be correlated with
// client-side failures.
func (c *Client) setHeaders(req *http.Request) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-Id", uuid.New().String())

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("credential lookup failed: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var envelope apiErrorBody
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.Error
	}

	switch statusCode {
	case http.StatusUnauthorized:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, message)
		}
		return ErrUnauthorized
	case http.StatusForbidden:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, message)
		}
		return ErrForbidden
	case http.StatusNotFound:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		return ErrNotFound
	case http.StatusTooManyRequests:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrRateLimited, message)
		}
		return ErrRateLimited
	default:
		if message == "" {
			message = strings.TrimSpace(string(body))
		}
		return &APIError{Message: message, Status: statusCode}
	}
}

// readResponse reads a response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response, limit int64) ([]byte, error) {
	limited := io.LimitReader(resp.Body, limit)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == limit {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", limit)
	}
	return body, nil
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	// Connection-level failures are worth another attempt
	return errors.Is(err, ErrBackendUnavailable)
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// doJSON performs a non-streaming request with rate limiting and retry,
// decoding the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody any, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		err := c.doJSONOnce(ctx, method, path, bodyBytes, out)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doJSONOnce performs a single non-streaming request.
func (c *Client) doJSONOnce(ctx context.Context, method, path string, bodyBytes []byte, out any) error {
	var body io.Reader
	if bodyBytes != nil {
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.setHeaders(req); err != nil {
		return err
	}

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp, MaxResponseSize)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return handleErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends a chat request and returns the complete answer
// (non-streaming). Used by the one-shot CLI path.
func (c *Client) Chat(ctx context.Context, request *ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", request, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, &APIError{Message: resp.ErrorMessage, Status: http.StatusOK}
	}
	return &resp, nil
}

// ChatStream sends a streaming chat request and calls the callback for
// each chunk, in order, on the calling goroutine. Returns when the
// stream ends or the context is cancelled. On mid-stream failure the
// returned error is a *StreamError carrying the partial answer.
func (c *Client) ChatStream(ctx context.Context, request *ChatRequest, callback StreamCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	bodyBytes, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/stream", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.setHeaders(req); err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json-lines")

	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return handleErrorResponse(resp.StatusCode, body)
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}

// =============================================================================
// PRODUCT SURFACE
// =============================================================================

// FetchConfig retrieves the backend feature flags and advertised bots.
func (c *Client) FetchConfig(ctx context.Context) (*BackendConfig, error) {
	var cfg BackendConfig
	if err := c.doJSON(ctx, http.MethodGet, "/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchAuthSetup retrieves the identity-provider parameters.
func (c *Client) FetchAuthSetup(ctx context.Context) (*AuthSetup, error) {
	var setup AuthSetup
	if err := c.doJSON(ctx, http.MethodGet, "/auth_setup", nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// SubmitFeedback records a thumbs up/down for an answer.
func (c *Client) SubmitFeedback(ctx context.Context, fb *FeedbackRequest) (*FeedbackResponse, error) {
	if fb.Feedback != "positive" && fb.Feedback != "negative" {
		return nil, fmt.Errorf("feedback must be positive or negative, got %q", fb.Feedback)
	}
	var resp FeedbackResponse
	if err := c.doJSON(ctx, http.MethodPost, "/feedback", fb, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchWelcome retrieves the personalized greeting for the signed-in user.
func (c *Client) FetchWelcome(ctx context.Context, details map[string]string) (string, error) {
	var resp WelcomeResponse
	req := WelcomeRequest{UserDetails: details}
	if req.UserDetails == nil {
		req.UserDetails = map[string]string{}
	}
	if err := c.doJSON(ctx, http.MethodPost, "/welcome", &req, &resp); err != nil {
		return "", err
	}
	return resp.WelcomeMessage, nil
}

// FetchContent downloads a cited source document for viewing. The name
// is the citation token, e.g. "travel_policy.pdf".
func (c *Client) FetchContent(ctx context.Context, name string) ([]byte, string, error) {
	if !c.IsConfigured() {
		return nil, "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/content/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.setHeaders(req); err != nil {
		return nil, "", err
	}

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return nil, "", handleErrorResponse(resp.StatusCode, body)
	}

	body, err := readResponse(resp, MaxContentSize)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// CheckReachable verifies the backend answers at all. Used by `ava status`.
func (c *Client) CheckReachable(ctx context.Context) error {
	_, err := c.FetchConfig(ctx)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		// An auth rejection still proves the backend is up
		return err
	}
	return nil
}
