// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

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

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/logging"
	"github.com/danielhkuo/syncmeet/models"
)

// ErrNoPoll is returned when the store has no poll for the request.
var ErrNoPoll = errors.New("poll not found")

// APIError is a non-2xx answer from the store.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("store returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// RetryPolicy bounds retries of transport errors and temporary API errors.
// Delays double from BaseDelay up to MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy tries three times over roughly half a second.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		return p.MaxDelay
	}
	return d
}

// Client talks to the poll store over HTTP.
type Client struct {
	baseURL     string
	http        *http.Client
	retry       RetryPolicy
	logger      *slog.Logger
	organizerID string
	newKey      func() string

	inflight singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOrganizerID sends X-Organizer-ID on poll creation and history calls.
func WithOrganizerID(id string) Option {
	return func(c *Client) { c.organizerID = id }
}

// New returns a client for the store at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		retry:   DefaultRetryPolicy,
		newKey:  auth.NewIdempotencyKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Resolve(c.logger)
	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}
	return c
}

// call performs one request. out may be nil. A non-2xx status becomes
// *APIError; anything else that fails is a wrapped transport error.
func (c *Client) call(ctx context.Context, method, path string, in any, headers map[string]string, out any) (int, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Message
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// callWithRetry repeats call per the retry policy. Requests must be safe to
// repeat; votes get that from their idempotency key.
func (c *Client) callWithRetry(ctx context.Context, method, path string, in any, headers map[string]string, out any) (int, int, error) {
	var (
		status int
		err    error
	)
	for attempt := 1; ; attempt++ {
		status, err = c.call(ctx, method, path, in, headers, out)
		if err == nil || !retryable(ctx, err) || attempt >= c.retry.MaxAttempts {
			return status, attempt, err
		}

		wait := c.retry.delay(attempt)
		c.logger.Warn("store request failed, retrying",
			"method", method,
			"path", path,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return status, attempt, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	// http.Client.Do reports transport failures as *url.Error
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// notFound maps a 404 from the store to ErrNoPoll.
func notFound(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNoPoll, apiErr.Message)
	}
	return err
}
