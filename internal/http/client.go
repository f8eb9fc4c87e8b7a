// Package http implements the HTTP transport for the CUBE client: token
// authentication, retry of transient failures, optional response caching,
// and decoding of CUBE error bodies.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/fnndsc/cube-client/internal/constants"
	"github.com/fnndsc/cube-client/pkg/cube"
)

// Client is the low-level HTTP client. It implements cube.Requester.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	debug      bool
	logger     cube.Logger
	cache      cube.Cache
	cacheTTL   time.Duration
	httpClient *retryablehttp.Client

	// streamClient carries no timeout: transfers are bounded by context,
	// not by the per-request deadline applied to API calls.
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger cube.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging when a logger is set.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRetryConfig tunes the retry policy.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the underlying HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithCache enables caching of GET responses.
func WithCache(cache cube.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// NewClient creates a client for the given base URL. An empty token makes
// an anonymous client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = constants.DefaultRetryMax
	rc.RetryWaitMin = constants.DefaultRetryWaitMin
	rc.RetryWaitMax = constants.DefaultRetryWaitMax
	rc.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	rc.Logger = nil
	rc.CheckRetry = checkRetry

	client := &Client{
		baseURL:      baseURL,
		token:        token,
		userAgent:    constants.DefaultUserAgent,
		httpClient:   rc,
		streamClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// checkRetry retries connection errors, 5xx, and 429. Other 4xx responses
// are final: the request itself is wrong and repeating it cannot help.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	if resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}

	return false, nil
}

// BaseURL reports the URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token reports whether the client carries credentials.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, rawURL, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	return req, nil
}

// do sends the request and returns the body of a 2xx response. Non-2xx
// responses become *cube.Error with the body text preserved.
func (c *Client) do(req *retryablehttp.Request) ([]byte, error) {
	c.logDebug("cube request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", req.URL, err)
	}

	c.logDebug("cube response", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
		"status": resp.StatusCode,
	})

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, cube.NewError(resp.StatusCode, body)
	}

	return body, nil
}

func withQuery(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	merged := u.Query()
	for key, vals := range query {
		merged[key] = vals
	}

	u.RawQuery = merged.Encode()

	return u.String(), nil
}

// GetJSON fetches rawURL with the given query and decodes the JSON
// response into out. Cached when a cache is configured.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	fullURL, err := withQuery(rawURL, query)
	if err != nil {
		return err
	}

	if c.cache != nil {
		if entry, cacheErr := c.cache.Get(ctx, fullURL); cacheErr == nil {
			return decodeJSON(entry.Data, out, fullURL)
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, fullURL, cube.NewCacheEntry(body, c.cacheTTL))
	}

	return decodeJSON(body, out, fullURL)
}

// PostJSON sends body as JSON and decodes the response into out. A nil out
// discards the response body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, rawURL, body, out)
}

// PutJSON sends body as JSON via PUT and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, rawURL string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, rawURL, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s body for %s: %w", method, rawURL, err)
	}

	req, err := c.newRequest(ctx, method, rawURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	return decodeJSON(respBody, out, rawURL)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, rawURL, nil)
	if err != nil {
		return err
	}

	_, err = c.do(req)

	return err
}

// GetStream fetches rawURL and returns the raw body for streaming reads,
// along with the Content-Length when known. The caller must close the body.
// Stream responses bypass the cache.
func (c *Client) GetStream(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building GET %s: %w", rawURL, err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", rawURL, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		return nil, 0, cube.NewError(resp.StatusCode, body)
	}

	return resp.Body, resp.ContentLength, nil
}

// PostUpload sends r as an "upload_path"/"fname" multipart form, the shape
// CUBE's userfiles endpoint expects. The form is streamed through a pipe so
// the file never fully buffers in memory; as a consequence the request is
// not retried.
func (c *Client) PostUpload(ctx context.Context, rawURL, uploadPath, name string, r io.Reader, out any) error {
	pr, pw := io.Pipe()
	writer := newMultipartWriter(pw)

	go func() {
		pw.CloseWithError(writer.writeUpload(uploadPath, name, r))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, pr)
	if err != nil {
		return fmt.Errorf("building POST %s: %w", rawURL, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", writer.contentType())

	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", rawURL, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return cube.NewError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}

	return decodeJSON(body, out, rawURL)
}

func decodeJSON(data []byte, out any, rawURL string) error {
	err := json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}
