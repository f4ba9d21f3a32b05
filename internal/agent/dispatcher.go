package agent

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/common/sse"
)

const (
	contentTypeEventStream = "text/event-stream"
	contentTypeJSON        = "application/json"
)

// RawResponse is a completed HTTP exchange with the agent service.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Header      http.Header
}

// Dispatcher picks one decode path for a RawResponse by content type.
type Dispatcher struct {
	// NewStrategy builds the event-stream strategy for one response.
	NewStrategy func() sse.Strategy
}

// NewDispatcher returns a dispatcher for multi-event agent streams.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{NewStrategy: sse.NewLastResponse}
}

// Dispatch decodes resp. It never fails: an event stream goes through the
// stream decoder, JSON is parsed directly, and anything else comes back as a
// raw payload carrying the status code and content type.
func (d *Dispatcher) Dispatch(resp RawResponse) any {
	text := bodyText(resp.Body)

	switch {
	case strings.Contains(resp.ContentType, contentTypeEventStream) && len(resp.Body) > 0:
		metrics.DecodePaths.WithLabelValues(metrics.PathEventStream).Inc()
		return sse.DecodeString(text, d.strategy())
	case strings.Contains(resp.ContentType, contentTypeJSON):
		metrics.DecodePaths.WithLabelValues(metrics.PathJSON).Inc()
		var v any
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return sse.RawPayload(text)
		}
		return v
	default:
		metrics.DecodePaths.WithLabelValues(metrics.PathRaw).Inc()
		return map[string]any{
			"raw":          text,
			"status_code":  resp.StatusCode,
			"content_type": resp.ContentType,
		}
	}
}

func (d *Dispatcher) strategy() sse.Strategy {
	if d == nil || d.NewStrategy == nil {
		return sse.NewLastResponse()
	}
	return d.NewStrategy()
}

func bodyText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), "�")
}

// ErrorPayload renders a transport failure as {"error": message}.
func ErrorPayload(err error) map[string]any {
	if stdErr, ok := err.(*apperrors.StandardError); ok {
		return stdErr.ToPayload()
	}
	return map[string]any{"error": err.Error()}
}

// ErrorOf returns the "error" value of a dispatched payload when it is set to
// something other than an empty value.
func ErrorOf(payload any) (any, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m["error"]
	if !ok || !truthy(v) {
		return nil, false
	}
	return v, true
}

// truthy mirrors how loosely-typed payload fields are tested for presence:
// nil, false, zero, and empty strings, lists or objects count as absent.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
