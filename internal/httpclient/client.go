// Package httpclient is the JSON-over-HTTP client used for thread
// enrichment: per-attempt timeouts, linear-backoff retries on transient
// failures and an optional rate limit.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
	UserAgent         = "last30days/1.0"

	maxLoggedBody = 500
)

// Error is a failed request. StatusCode is 0 when no response was received.
type Error struct {
	Message    string
	StatusCode int
	Body       string

	retryable bool
}

func (e *Error) Error() string { return e.Message }

// IsRetryable reports whether err is a transient failure: a 5xx or 429
// response, or a transport-level error.
func IsRetryable(err error) bool {
	var he *Error
	if !errors.As(err, &he) {
		return false
	}
	return he.retryable
}

// Client performs JSON requests. The zero value is not usable; call New.
type Client struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	UserAgent  string
	Limiter    *rate.Limiter
	Logger     *slog.Logger

	http  *http.Client
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a client with the default timeout, retry and user agent
// settings. limiter may be nil.
func New(limiter *rate.Limiter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		UserAgent:  UserAgent,
		Limiter:    limiter,
		Logger:     logger,
		http:       &http.Client{},
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetJSON fetches url and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	return c.Do(ctx, http.MethodGet, url, headers, nil, out)
}

// PostJSON sends payload as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload map[string]any, out any) error {
	return c.Do(ctx, http.MethodPost, url, headers, payload, out)
}

// Do runs one request with retries. A nil out discards the response body.
// An empty response body leaves out untouched.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, payload map[string]any, out any) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = b
		c.Logger.Debug("http: request", "method", method, "url", url, "payload_keys", payloadKeys(payload))
	} else {
		c.Logger.Debug("http: request", "method", method, "url", url)
	}

	retries := c.Retries
	if retries < 1 {
		retries = 1
	}
	var lastErr *Error
	for attempt := 0; attempt < retries; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		respBody, status, err := c.once(ctx, method, url, headers, body)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Logger.Debug("http: connection error", "url", url, "attempt", attempt+1, "err", err)
			lastErr = &Error{Message: "connection error: " + err.Error(), retryable: true}
		case status >= 400:
			c.Logger.Debug("http: error response", "url", url, "status", status, "body", truncate(respBody, maxLoggedBody))
			lastErr = &Error{
				Message:    fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
				StatusCode: status,
				Body:       string(respBody),
				retryable:  status >= 500 || status == http.StatusTooManyRequests,
			}
			if !lastErr.retryable {
				return lastErr
			}
		default:
			c.Logger.Debug("http: response", "url", url, "status", status, "bytes", len(respBody))
			if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				c.Logger.Debug("http: json decode error", "url", url, "err", err)
				return &Error{Message: "invalid JSON response: " + err.Error(), StatusCode: status, Body: string(respBody)}
			}
			return nil
		}

		if attempt < retries-1 {
			if err := c.sleep(ctx, c.RetryDelay*time.Duration(attempt+1)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, int, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, 0, err
	}
	ua := c.UserAgent
	if ua == "" {
		ua = UserAgent
	}
	req.Header.Set("User-Agent", ua)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return b, resp.StatusCode, nil
}

func payloadKeys(p map[string]any) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}

// RedditJSONURL builds the public JSON endpoint for a thread path.
func RedditJSONURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.TrimRight(path, "/")
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	return "https://www.reddit.com" + path + "?raw_json=1"
}

// SetTransport replaces the round tripper used for requests.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.Transport = rt
}
