// Package marketplace is the typed HTTP client for the marketplace REST API,
// which owns rooms, offers, ledgers and bookings.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout     = 12 * time.Second
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
	userAgent          = "staybook/1.0"
)

type Config struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxAttempts int
	RetryBase   time.Duration
	RetryCap    time.Duration
}

// Client wraps HTTP access to the marketplace API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// APIError is returned when the marketplace responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "marketplace api error"
	}

	return fmt.Sprintf("marketplace api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}

// New creates a client. If httpClient is nil, a default client is used.
func New(conf Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := conf.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(conf.BaseURL, "/"),
		token:       conf.Token,
		maxAttempts: conf.MaxAttempts,
		retryBase:   conf.RetryBase,
		retryCap:    conf.RetryCap,
	}

	if c.maxAttempts < 1 {
		c.maxAttempts = defaultMaxAttempts
	}

	return c
}

type call struct {
	method   string
	endpoint string
	body     any
	header   http.Header
	// retry allows resending after a 429/5xx or a network error. Only set
	// for reads and for writes guarded by an idempotency key.
	retry bool
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	var payload []byte

	if cl.body != nil {
		var err error

		payload, err = json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode request for %s: %w", cl.endpoint, err)
		}
	}

	maxAttempts := 1
	if cl.retry {
		maxAttempts = c.maxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := c.newRequest(ctx, cl, payload)
		if err != nil {
			return err
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}

				continue
			}

			return fmt.Errorf("request %s %s failed: %w", cl.method, cl.endpoint, err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10)) //nolint:gomnd
			_ = res.Body.Close()

			apiErr := &APIError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   cl.endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}

			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}

				continue
			}

			return apiErr
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, res.Body)
			_ = res.Body.Close()

			return nil
		}

		err = json.NewDecoder(res.Body).Decode(out)
		_ = res.Body.Close()

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("decode response from %s: %w", cl.endpoint, err)
		}

		return nil
	}

	return ErrRetriesExhausted
}

func (c *Client) newRequest(ctx context.Context, cl call, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return req, nil
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.retryDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}

	ceiling := c.retryCap
	if ceiling <= 0 {
		ceiling = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= ceiling/2 {
			return ceiling
		}

		delay *= 2
	}

	return min(delay, ceiling)
}
