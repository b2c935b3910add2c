package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/statelet/statelet"
)

// maxResponseBodySize caps how much of a response body is read. 1MB is
// plenty for entity payloads and keeps a misbehaving server from
// exhausting memory.
const maxResponseBodySize = 1 << 20

// connection pooling limits to prevent resource exhaustion when many
// stores share one client
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
	defaultRequestTimeout      = 10 * time.Second
)

// Query holds query parameters for collection requests. Keys with empty
// values are skipped when the request URL is built, so callers can pass a
// filter struct's fields through without pruning blanks themselves.
type Query map[string]string

// Client builds [statelet.Producer] values for one API base URL.
//
// Requests get per-call timeouts via context, a generated X-Request-Id
// header for log correlation, and the client's default headers. The
// underlying transport pools connections; one Client is intended to be
// shared by all stores talking to the same API.
type Client struct {
	baseURL    *url.URL
	headers    http.Header
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a [Client] during construction via [NewClient].
type ClientOption func(*clientConfig) error

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	headers    http.Header
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHeader adds a default header sent with every request, e.g. an
// Authorization header. Repeat for multiple headers.
//
// Returns an error if name is empty.
func WithHeader(name, value string) ClientOption {
	return func(cfg *clientConfig) error {
		if name == "" {
			return errors.New("header name cannot be empty")
		}
		cfg.headers.Add(name, value)
		return nil
	}
}

// WithTimeout sets the per-request timeout. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithHTTPClient replaces the default pooled [http.Client].
//
// Returns an error if c is nil.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = c
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified,
// [slog.Default] is used.
//
// Returns an error if logger is nil.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// NewClient creates a [Client] for the given base URL.
//
// The base URL must include a scheme (http:// or https://). Paths passed
// to request methods are resolved against it.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, errors.New("base URL must have a scheme (http:// or https://)")
	}

	cfg := &clientConfig{
		headers: make(http.Header),
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			// no global timeout, per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    parsed,
		headers:    cfg.headers,
		timeout:    cfg.timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the client's base URL as a string.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get returns a producer performing GET on path with the given query.
func (c *Client) Get(path string, query Query) statelet.Producer {
	return c.producer(http.MethodGet, path, query, nil)
}

// Post returns a producer performing POST on path with body encoded as
// JSON.
func (c *Client) Post(path string, body any) statelet.Producer {
	return c.producer(http.MethodPost, path, nil, body)
}

// Put returns a producer performing PUT on path with body encoded as JSON.
func (c *Client) Put(path string, body any) statelet.Producer {
	return c.producer(http.MethodPut, path, nil, body)
}

// Patch returns a producer performing PATCH on path with body encoded as
// JSON.
func (c *Client) Patch(path string, body any) statelet.Producer {
	return c.producer(http.MethodPatch, path, nil, body)
}

// Delete returns a producer performing DELETE on path.
func (c *Client) Delete(path string) statelet.Producer {
	return c.producer(http.MethodDelete, path, nil, nil)
}

// producer builds the single-emission producer all request methods share.
// The HTTP call happens when a pipeline invokes the producer, not when it
// is built.
func (c *Client) producer(method, path string, query Query, body any) statelet.Producer {
	return func(ctx context.Context) (json.RawMessage, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		target, err := c.requestURL(path, query)
		if err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request body: %w", err)
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		for name, values := range c.headers {
			for _, value := range values {
				req.Header.Add(name, value)
			}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", uuid.NewString())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, target, err)
		}
		defer func() { _ = resp.Body.Close() }()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		if err != nil {
			return nil, fmt.Errorf("%s %s: read response: %w", method, target, err)
		}

		c.logger.Debug("request completed",
			"method", method,
			"url", target,
			"status", resp.StatusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{
				Method:     method,
				URL:        target,
				StatusCode: resp.StatusCode,
				Body:       payload,
			}
		}
		return payload, nil
	}
}

// requestURL resolves path against the base URL and appends the non-empty
// query parameters.
func (c *Client) requestURL(path string, query Query) (string, error) {
	joined, err := url.JoinPath(c.baseURL.String(), path)
	if err != nil {
		return "", fmt.Errorf("join path %q: %w", path, err)
	}

	if len(query) == 0 {
		return joined, nil
	}

	values := url.Values{}
	for key, value := range query {
		if value == "" {
			continue
		}
		values.Set(key, value)
	}
	if len(values) == 0 {
		return joined, nil
	}
	return joined + "?" + values.Encode(), nil
}
