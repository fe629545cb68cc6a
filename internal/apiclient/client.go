// Package apiclient is the typed HTTP client for the InsightPulse backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/google/uuid"
)

const (
	TraceHeader = "X-Trace-ID"
	ActorHeader = "X-Actor"

	defaultTimeout = 10 * time.Second
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	actor      string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client; its Timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithActor tags every request with the username acting on the console.
func WithActor(username string) Option {
	return func(c *Client) {
		c.actor = username
	}
}

func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetActor changes the actor header for subsequent requests.
func (c *Client) SetActor(username string) {
	c.actor = username
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Non-2xx answers become BACKEND_REJECTED errors carrying the
// backend's detail or message; transport failures become
// BACKEND_UNAVAILABLE.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	traceID := apperrors.TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	req.Header.Set(TraceHeader, traceID)
	if c.actor != "" {
		req.Header.Set(ActorHeader, c.actor)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", method,
			"path", path,
			"trace_id", traceID,
			"error", err)
		return apperrors.ErrBackendUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request completed",
		"method", method,
		"path", path,
		"trace_id", traceID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalError("Invalid response from server.", apperrors.ErrCodeBackendRejected, resp.StatusCode).
			WithCause(err)
	}
	return nil
}

// errorBody covers both error shapes the backend uses.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	message := eb.Detail
	if message == "" {
		message = eb.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return apperrors.NewExternalError(message, apperrors.ErrCodeBackendRejected, resp.StatusCode)
}

// StatusOf returns the HTTP status carried by a backend error, or 0.
func StatusOf(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeExternal {
		return appErr.StatusCode
	}
	return 0
}
