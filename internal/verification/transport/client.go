// Package transport submits verification payloads to verifier HTTP APIs.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pendergraft/contraverify/internal/observability/metrics"
	"github.com/pendergraft/contraverify/internal/verification"
)

// Submitter sends a payload to a resolved verifier endpoint.
type Submitter interface {
	Submit(ctx context.Context, url string, payload verification.Payload) (*verification.Result, error)
}

// Client is the HTTP Submitter.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	attempts   int
	backoff    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-attempt timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithRetry retries requests that never reached the verifier (dial and DNS
// failures). Timeouts, resets and responses, including 4xx/5xx, are final.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(client *Client) {
		if attempts < 1 {
			attempts = 1
		}
		client.attempts = attempts
		client.backoff = backoff
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(client *Client) {
		client.logger = l
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// New creates a Client. Without options it makes a single attempt with a
// 60 second timeout.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		userAgent: "contraverify",
		attempts:  1,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Submit POSTs payload to url as JSON. A 200 response yields its body as the
// result message; any other status yields a *verification.ServiceRejectedError
// carrying the body.
func (c *Client) Submit(ctx context.Context, url string, payload verification.Payload) (*verification.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", verification.ErrRequestSerialization, err)
	}
	if err := verification.ValidatePayloadJSON(body); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID, "url", url)

	// Burst of one: the first attempt goes out immediately, later ones wait
	// one backoff interval each.
	limiter := rate.NewLimiter(rate.Every(c.backoff), 1)

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, fmt.Errorf("%w: %w", verification.ErrTransportSend, err)
		}

		resp, err := c.send(ctx, url, requestID, body)
		if err != nil {
			metrics.VerificationAttempt("send_error")
			logger.Warn("verification request failed", "attempt", attempt, "error", err)
			lastErr = fmt.Errorf("%w: %w", verification.ErrTransportSend, err)
			if ctx.Err() != nil || !neverDelivered(err) {
				break
			}
			continue
		}

		return c.handleResponse(resp, logger)
	}

	return nil, lastErr
}

func (c *Client) send(ctx context.Context, url, requestID string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	return c.httpClient.Do(req)
}

func (c *Client) handleResponse(resp *http.Response, logger *slog.Logger) (*verification.Result, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusOK {
		if err != nil {
			metrics.VerificationAttempt("read_error")
			return nil, fmt.Errorf("%w: %w", verification.ErrResponseRead, err)
		}
		metrics.VerificationAttempt("ok")
		logger.Debug("verification accepted", "status", resp.StatusCode, "bytes", len(data))
		return &verification.Result{Message: string(data)}, nil
	}

	if err != nil {
		metrics.VerificationAttempt("read_error")
		return nil, fmt.Errorf("%w: failed to verify contract (HTTP %d): %w", verification.ErrResponseRead, resp.StatusCode, err)
	}

	metrics.VerificationAttempt("rejected")
	logger.Info("verification rejected", "status", resp.StatusCode)
	return nil, &verification.ServiceRejectedError{
		StatusCode: resp.StatusCode,
		Body:       string(data),
	}
}

// neverDelivered reports whether a send failed before any byte of the
// request could reach the verifier. Only these failures are retried.
func neverDelivered(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// IsTransportError reports whether err happened before the verifier answered.
func IsTransportError(err error) bool {
	return errors.Is(err, verification.ErrTransportSend)
}
