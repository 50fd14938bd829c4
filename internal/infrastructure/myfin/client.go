// Package myfin is the HTTP connector for the MyFin exchange-rate API.
package myfin

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

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

const (
	exchangeRatesEndpoint = "/exchangeRates"
	mapEndpoint           = "/exchangeRates/map"
)

type Client struct {
	baseURL string
	client  *http.Client
	retries int
	backoff time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.client = httpClient
	}
}

// WithRetries sets how many extra attempts follow a retryable failure.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retries = retries
	}
}

// WithBackoff sets the base delay of the exponential retry backoff.
func WithBackoff(backoff time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoff
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		retries: 3,
		backoff: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExchangeRates fetches the rate snapshot.
func (c *Client) ExchangeRates(ctx context.Context, filter domain.SnapshotFilter) (*ExchangeResponse, error) {
	var response ExchangeResponse
	if err := c.postSnapshot(ctx, exchangeRatesEndpoint, filter, &response); err != nil {
		return nil, fmt.Errorf("fetching exchange snapshot: %w", err)
	}
	return &response, nil
}

// OfficeCoordinates fetches the office/coordinate snapshot.
func (c *Client) OfficeCoordinates(ctx context.Context, filter domain.SnapshotFilter) (*MapResponse, error) {
	var response MapResponse
	if err := c.postSnapshot(ctx, mapEndpoint, filter, &response); err != nil {
		return nil, fmt.Errorf("fetching map snapshot: %w", err)
	}
	return &response, nil
}

// postSnapshot sends the snapshot request with bounded retry: server-side
// (5xx) failures and transport errors back off exponentially, client-side
// (4xx) failures fail fast.
func (c *Client) postSnapshot(ctx context.Context, endpoint string, filter domain.SnapshotFilter, out any) error {
	payload, err := json.Marshal(snapshotRequest{
		City:          filter.City,
		IncludeOnline: filter.IncludeOnline,
		Availability:  filter.Availability,
	})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.send(ctx, endpoint, payload)
		if err != nil {
			var retryErr *retryableError
			if !errors.As(err, &retryErr) {
				return err
			}
			lastErr = err
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) send(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 500:
		return nil, &retryableError{err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}
