// Package runtime invokes a deployed trip-planner runtime the way a front end
// does: through the Bedrock AgentCore API by runtime ARN, or over plain HTTP
// against a local serve process.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"trip-planner/internal/agent"
	apperrors "trip-planner/internal/common/errors"
	commonhttp "trip-planner/internal/common/http"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/common/sse"
)

// SessionHeader carries the session id on every invocation.
const SessionHeader = "X-Amzn-Bedrock-AgentCore-Runtime-Session-Id"

// Invoker sends one payload to a runtime and decodes the reply. Failures come
// back as {"error": ...}.
type Invoker interface {
	Invoke(ctx context.Context, payload map[string]interface{}) any
	SessionID() string
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Config struct {
	Endpoint string
	// SessionID is generated when empty.
	SessionID      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client keeps one session id for its lifetime.
type Client struct {
	endpoint   string
	sessionID  string
	client     *commonhttp.Client
	dispatcher *agent.Dispatcher
	logger     Logger
}

func NewClient(config *Config, log Logger) *Client {
	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Client{
		endpoint:   strings.TrimRight(config.Endpoint, "/"),
		sessionID:  sessionID,
		client:     commonhttp.NewClient(config.ConnectTimeout, config.ReadTimeout),
		dispatcher: &agent.Dispatcher{NewStrategy: sse.NewDataBlob},
		logger: log.With(map[string]interface{}{
			"service":   metrics.ServiceRuntime,
			"sessionId": sessionID,
		}),
	}
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// InvocationsURL is the invocation endpoint of the runtime.
func (c *Client) InvocationsURL() string {
	return c.endpoint + "/invocations"
}

// Invoke posts payload to the runtime. Streamed replies are read as one JSON
// document split across data lines. Failures come back as {"error": ...}.
func (c *Client) Invoke(ctx context.Context, payload map[string]interface{}) any {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewRuntimeRequestFailedError(err).ToPayload()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.InvocationsURL(), bytes.NewReader(body))
	if err != nil {
		return apperrors.NewRuntimeRequestFailedError(err).ToPayload()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream, application/json")
	req.Header.Set(SessionHeader, c.sessionID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return failure(c.logger, err, start)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(c.logger, err, start)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(c.logger, fmt.Errorf("%s for url: %s", resp.Status, c.InvocationsURL()), start)
	}

	metrics.ObserveOutbound(metrics.ServiceRuntime, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Info("runtime invocation completed", map[string]interface{}{
		"status":      resp.StatusCode,
		"contentType": resp.Header.Get("Content-Type"),
		"bytes":       len(data),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return c.dispatcher.Dispatch(agent.RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
		Header:      resp.Header,
	})
}

func failure(log Logger, err error, start time.Time) map[string]any {
	outcome := metrics.OutcomeError
	if apperrors.IsTimeout(err) {
		outcome = metrics.OutcomeTimeout
	}
	metrics.ObserveOutbound(metrics.ServiceRuntime, outcome, time.Since(start))
	log.Error("runtime invocation failed", map[string]interface{}{
		"error":      err.Error(),
		"outcome":    outcome,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return apperrors.NewRuntimeRequestFailedError(err).ToPayload()
}
