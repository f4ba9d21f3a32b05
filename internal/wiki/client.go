// Package wiki fetches encyclopedia page summaries for destination names.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "trip-planner/internal/common/errors"
	commonhttp "trip-planner/internal/common/http"
	"trip-planner/internal/common/jsonsafe"
	"trip-planner/internal/common/metrics"
)

var (
	ErrEmptyTitle       = errors.New("empty_title")
	ErrNotFound         = errors.New("not_found")
	ErrUnexpectedStatus = errors.New("WIKI_UNEXPECTED_STATUS")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client looks up one page summary per call. Lookups are not retried.
type Client struct {
	config *Config
	client *commonhttp.Client
	logger Logger
}

func NewClient(config *Config, log Logger) *Client {
	return &Client{
		config: config,
		client: commonhttp.NewClient(config.Timeout, config.Timeout),
		logger: log.With(map[string]interface{}{
			"service": metrics.ServiceWiki,
		}),
	}
}

// SummaryURL is the summary endpoint for title. Spaces become underscores and
// everything outside the unreserved set is percent-encoded.
func (c *Client) SummaryURL(title string) string {
	return fmt.Sprintf("%s/page/summary/%s", c.config.BaseURL, escapeTitle(strings.ReplaceAll(title, " ", "_")))
}

// PageSummary returns the reshaped summary of title, or a result carrying an
// "error" key. It never fails.
func (c *Client) PageSummary(ctx context.Context, title string) map[string]any {
	title = strings.TrimSpace(title)
	if title == "" {
		return map[string]any{"error": ErrEmptyTitle.Error()}
	}

	start := time.Now()
	data, err := c.fetch(ctx, title)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrNotFound):
		metrics.ObserveOutbound(metrics.ServiceWiki, metrics.OutcomeNotFound, elapsed)
		c.logger.Info("page not found", map[string]interface{}{"title": title, "status": http.StatusNotFound})
		return map[string]any{"title": title, "error": ErrNotFound.Error(), "status_code": http.StatusNotFound}
	case err != nil:
		outcome := metrics.OutcomeError
		if apperrors.IsTimeout(err) {
			outcome = metrics.OutcomeTimeout
		}
		metrics.ObserveOutbound(metrics.ServiceWiki, outcome, elapsed)
		stdErr := apperrors.NewWikiLookupFailedError(title, err)
		c.logger.Warn("page summary lookup failed", map[string]interface{}{
			"title":      title,
			"errorCode":  string(stdErr.Code),
			"error":      err.Error(),
			"durationMs": elapsed.Milliseconds(),
		})
		return map[string]any{"title": title, "error": err.Error()}
	}

	metrics.ObserveOutbound(metrics.ServiceWiki, metrics.OutcomeSuccess, elapsed)
	c.logger.Info("page summary fetched", map[string]interface{}{
		"title":      title,
		"durationMs": elapsed.Milliseconds(),
	})
	return reshape(title, data)
}

func (c *Client) fetch(ctx context.Context, title string) (map[string]any, error) {
	url := c.SummaryURL(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s for url: %s", ErrUnexpectedStatus, resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return data, nil
}

// reshape keeps the fields a traveller-facing card needs plus the coerced
// upstream document.
func reshape(title string, data map[string]any) map[string]any {
	desktop := asMap(asMap(data["content_urls"])["desktop"])
	thumb := asMap(data["thumbnail"])["source"]
	thumbSrc, _ := thumb.(string)
	origSrc, _ := asMap(data["originalimage"])["source"].(string)

	images := []any{}
	if thumbSrc != "" {
		images = append(images, thumbSrc)
	}
	if origSrc != "" && origSrc != thumbSrc {
		images = append(images, origSrc)
	}

	return map[string]any{
		"title":       valueOr(data, "title", title),
		"extract":     data["extract"],
		"lang":        valueOr(data, "lang", "en"),
		"page_url":    desktop["page"],
		"thumbnail":   thumb,
		"images":      images,
		"description": data["description"],
		"raw":         jsonsafe.Coerce(data),
	}
}

func valueOr(m map[string]any, key string, fallback any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

const upperhex = "0123456789ABCDEF"

func escapeTitle(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
