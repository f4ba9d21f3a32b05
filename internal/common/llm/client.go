// Package llm is the text-generation capability used to guess destination
// names and to draft travel summaries. It speaks the OpenAI chat completions
// protocol, so any compatible gateway can serve it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	apperrors "trip-planner/internal/common/errors"
	commonhttp "trip-planner/internal/common/http"
	"trip-planner/internal/common/metrics"
)

const defaultConnectTimeout = 10 * time.Second

var (
	ErrNoChoices = errors.New("LLM_NO_CHOICES")
	ErrTimeout   = errors.New("LLM_TIMEOUT")
)

// TextGenerator turns a system and a user prompt into free text.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds the wait for a reply. ConnectTimeout defaults to 10s.
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

type Client struct {
	client openai.Client
	model  string
}

func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		connect := cfg.ConnectTimeout
		if connect <= 0 {
			connect = defaultConnectTimeout
		}
		opts = append(opts,
			option.WithHTTPClient(commonhttp.NewClient(connect, cfg.Timeout).HTTPClient()),
			option.WithRequestTimeout(cfg.Timeout),
		)
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	start := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		if apperrors.IsTimeout(err) {
			metrics.ObserveOutbound(metrics.ServiceLLM, metrics.OutcomeTimeout, time.Since(start))
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		metrics.ObserveOutbound(metrics.ServiceLLM, metrics.OutcomeError, time.Since(start))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	metrics.ObserveOutbound(metrics.ServiceLLM, metrics.OutcomeSuccess, time.Since(start))

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
