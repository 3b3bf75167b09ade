package ubi

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

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/metrics"
	"github.com/nkiryanov/r6tracker/internal/models"
)

const (
	defaultTimeout = 10 * time.Second

	userAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:80.0) Gecko/20100101 Firefox/80.0"
	referer   = "https://connect.ubisoft.com"

	sessionsPath = "/v3/profiles/sessions"
)

// Operation names used in errors, logs and metrics
const (
	OpLogin       = "login"
	OpPing        = "ping"
	OpProfile     = "find_profile"
	OpRankStats   = "find_rank_stats"
	OpPopulations = "find_populations_statistics"
	OpXPProfiles  = "find_player_xp_profiles"
)

const statusNoStatus = 0

// UpstreamError is returned for every failed upstream call.
// StatusCode is 0 when no response was received.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == apperrors.ErrUpstream
}

func newUpstreamError(op string, status int, err error) *UpstreamError {
	return &UpstreamError{Op: op, StatusCode: status, Err: err}
}

type ClientConfig struct {
	// Upstream services root, DefaultBaseURL if empty
	BaseURL string

	// Value of ubi-appid header
	AppID string

	// Timeout of every request. Default is used if not set
	Timeout time.Duration

	// Optional
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// Client talks to upstream identity and stats endpoints.
// It never retries, callers decide what to do on failure.
type Client struct {
	baseURL string
	appID   string

	client  *http.Client
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Headers sent with every upstream request.
// Authorization is set only when authorization is not empty, login must go without it.
func (c *Client) Headers(authorization string) http.Header {
	h := http.Header{}
	h.Set("ubi-appid", c.appID)
	h.Set("User-Agent", userAgent)
	h.Set("Content-Type", "application/json")
	h.Set("Connection", "keep-alive")
	h.Set("Accept", "*/*")
	h.Set("Content-Length", "0")
	h.Set("Referer", referer)

	if authorization != "" {
		h.Set("Authorization", authorization)
	}
	return h
}

// Login opens new upstream session with basic auth
func (c *Client) Login(ctx context.Context, email string, password string) (models.Session, error) {
	var session models.Session

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+sessionsPath, "", []byte(`{"rememberMe":true}`))
	if err != nil {
		return session, newUpstreamError(OpLogin, statusNoStatus, err)
	}
	req.SetBasicAuth(email, password)

	if err := c.do(req, OpLogin, &session); err != nil {
		return session, err
	}
	if err := validateSession(session); err != nil {
		return session, newUpstreamError(OpLogin, http.StatusOK, err)
	}

	c.logger.Info("Upstream session opened", "profile_id", session.ProfileID, "expires_at", session.Expiration)
	return session, nil
}

// Ping refreshes existing session, authorization is the full header value (prefix + ticket)
func (c *Client) Ping(ctx context.Context, authorization string) (models.Session, error) {
	var session models.Session

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+sessionsPath, authorization, nil)
	if err != nil {
		return session, newUpstreamError(OpPing, statusNoStatus, err)
	}

	if err := c.do(req, OpPing, &session); err != nil {
		return session, err
	}
	if err := validateSession(session); err != nil {
		return session, newUpstreamError(OpPing, http.StatusOK, err)
	}

	c.logger.Debug("Upstream session refreshed", "profile_id", session.ProfileID, "expires_at", session.Expiration)
	return session, nil
}

// getJSON issues authorized GET and decodes 2xx response into out
func (c *Client) getJSON(ctx context.Context, op string, url string, authorization string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, authorization, nil)
	if err != nil {
		return newUpstreamError(op, statusNoStatus, err)
	}

	return c.do(req, op, out)
}

func (c *Client) newRequest(ctx context.Context, method string, url string, authorization string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.Headers(authorization)
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(op, statusNoStatus, time.Since(start))
		c.logger.Warn("Upstream request failed", "op", op, "error", err)
		return newUpstreamError(op, statusNoStatus, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	c.metrics.UpstreamRequest(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Upstream replied with unexpected status", "op", op, "status_code", resp.StatusCode)
		return newUpstreamError(op, resp.StatusCode, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("Failed to decode upstream response", "op", op, "error", err)
		return newUpstreamError(op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

func validateSession(s models.Session) error {
	switch {
	case s.Ticket == "":
		return errors.New("session without ticket")
	case s.Expiration.IsZero():
		return errors.New("session without expiration")
	}
	return nil
}
