// Package backend is the typed REST client for the trading backend.
// It owns no state: no caching, no retries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds every call when no timeout is configured
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 8 << 20
)

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	AccessToken() string
}

// Client for the trading backend REST API
type Client struct {
	baseURL        string
	client         *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            zerolog.Logger
}

// NewClient creates a new backend client. tokens may be nil for anonymous use.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.With().Str("client", "backend").Logger(),
	}
}

// OnUnauthorized registers a hook run whenever an authenticated call gets a 401
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method    string
	path      string
	query     url.Values
	body      interface{}
	fallback  string
	anonymous bool // no bearer token, 401 does not tear down the session
}

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.anonymous && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return c.transportError(ctx, req, requestID, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.transportError(ctx, req, requestID, err)
	}

	c.log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("Backend call")

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Kind:       KindClient,
			StatusCode: resp.StatusCode,
			Message:    req.fallback,
		}
		if resp.StatusCode >= 500 {
			apiErr.Kind = KindServer
		}
		if detail := extractDetail(payload); detail != "" {
			apiErr.Detail = detail
			apiErr.Message = detail
		}

		if resp.StatusCode == http.StatusUnauthorized && !req.anonymous && c.onUnauthorized != nil {
			c.log.Warn().Str("path", req.path).Msg("Backend rejected session token")
			c.onUnauthorized()
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		c.log.Warn().Err(err).Str("path", req.path).Msg("Failed to decode backend response")
		return &APIError{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    req.fallback,
			Err:        err,
		}
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, req request, requestID string, err error) error {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}

	// Caller cancellation is not a failure worth logging
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return &APIError{Kind: KindNetwork, Message: req.fallback, Err: err}
	}

	c.log.Warn().
		Err(err).
		Str("kind", string(kind)).
		Str("method", req.method).
		Str("path", req.path).
		Str("request_id", requestID).
		Msg("Backend call failed")

	return &APIError{Kind: kind, Message: req.fallback, Err: err}
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setIfPositive(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, strconv.Itoa(value))
	}
}
