// Package agent talks to the remote trip-planning agent and normalizes what it
// sends back.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "trip-planner/internal/common/errors"
	commonhttp "trip-planner/internal/common/http"
	"trip-planner/internal/common/metrics"
)

const tokenTypeHeader = "X-Snowflake-Authorization-Token-Type"

var ErrAgentRequestFailed = errors.New("AGENT_REQUEST_FAILED")

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Config addresses one agent object.
type Config struct {
	BaseURL        string
	Database       string
	Schema         string
	Name           string
	AuthToken      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

type Client struct {
	config     *Config
	client     *commonhttp.Client
	dispatcher *Dispatcher
	logger     Logger
}

func NewClient(config *Config, log Logger) *Client {
	return &Client{
		config:     config,
		client:     commonhttp.NewClient(config.ConnectTimeout, config.ReadTimeout),
		dispatcher: NewDispatcher(),
		logger: log.With(map[string]interface{}{
			"service": metrics.ServiceAgent,
		}),
	}
}

// RunURL is the run endpoint of the configured agent, with each identifier in
// canonical form.
func (c *Client) RunURL() string {
	return fmt.Sprintf("%s/api/v2/databases/%s/schemas/%s/agents/%s:run",
		c.config.BaseURL,
		CanonicalIdentifier(c.config.Database),
		CanonicalIdentifier(c.config.Schema),
		CanonicalIdentifier(c.config.Name),
	)
}

// BuildRequestBody wraps the user's text, unmodified, in a single user message.
func BuildRequestBody(prompt string) map[string]any {
	return map[string]any{
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": prompt},
				},
			},
		},
	}
}

// Run sends prompt to the agent and returns the decoded response. Transport
// failures come back as an {"error": message} payload.
func (c *Client) Run(ctx context.Context, prompt string) any {
	resp, err := c.Call(ctx, prompt)
	if err != nil {
		return ErrorPayload(err)
	}
	return c.dispatcher.Dispatch(*resp)
}

// Call performs the HTTP exchange. Errors are *apperrors.StandardError values.
func (c *Client) Call(ctx context.Context, prompt string) (*RawResponse, error) {
	if c.config.AuthToken == "" {
		c.logger.Warn("agent auth token missing", nil)
		return nil, apperrors.NewAgentNotConfiguredError("agent auth token is not set")
	}

	body, err := json.Marshal(BuildRequestBody(prompt))
	if err != nil {
		return nil, apperrors.NewAgentRequestFailedError(err)
	}

	url := c.RunURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewAgentRequestFailedError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(tokenTypeHeader, "PROGRAMMATIC_ACCESS_TOKEN")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.transportError(err, start)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(err, start)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveOutbound(metrics.ServiceAgent, metrics.OutcomeError, time.Since(start))
		c.logger.Error("agent returned error status", map[string]interface{}{
			"status":     resp.StatusCode,
			"durationMs": time.Since(start).Milliseconds(),
		})
		return nil, apperrors.NewAgentRequestFailedError(
			fmt.Errorf("%w: %s for url: %s", ErrAgentRequestFailed, resp.Status, url))
	}

	metrics.ObserveOutbound(metrics.ServiceAgent, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Info("agent call completed", map[string]interface{}{
		"status":      resp.StatusCode,
		"contentType": resp.Header.Get("Content-Type"),
		"bytes":       len(payload),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
		Header:      resp.Header,
	}, nil
}

func (c *Client) transportError(err error, start time.Time) error {
	elapsed := time.Since(start)
	if apperrors.IsTimeout(err) {
		metrics.ObserveOutbound(metrics.ServiceAgent, metrics.OutcomeTimeout, elapsed)
		c.logger.Error("agent call timed out", map[string]interface{}{
			"error":      err.Error(),
			"durationMs": elapsed.Milliseconds(),
		})
		return apperrors.NewAgentTimeoutError(err)
	}
	metrics.ObserveOutbound(metrics.ServiceAgent, metrics.OutcomeError, elapsed)
	c.logger.Error("agent call failed", map[string]interface{}{
		"error":      err.Error(),
		"durationMs": elapsed.Milliseconds(),
	})
	return apperrors.NewAgentRequestFailedError(err)
}
