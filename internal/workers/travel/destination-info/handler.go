// internal/workers/travel/destination-info/handler.go
package destinationinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/samber/lo"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/jsonsafe"
	"trip-planner/internal/common/llm"
	"trip-planner/internal/common/validation"
)

const (
	TaskType = "destination-info"

	errNotAList = "destinations must be a string or a list of strings"
)

const extractionPrompt = `You are a travel destination extractor.
Given a user's natural language travel request, extract the main cities/countries
they are travelling to (NOT the origin city) as a JSON object:
{
  "destinations": ["<city or country>", ...]
}
- Only output valid JSON (no backticks, no explanation).
- Use concise Wikipedia-friendly titles, e.g. 'Singapore', 'Tokyo', 'Bali', 'Japan'.
- If you can't infer any, return {"destinations": []}.
`

const summaryPrompt = `You are a travel assistant.
You are given JSON containing Wikipedia metadata for one or more travel destinations.
Write a concise, traveller-focused markdown summary that:
- Briefly introduces each destination (1-2 sentences).
- Highlights top family-friendly attractions and experiences.
- Mentions any notable culture, food, or neighborhoods that visitors should know.
- Adds 2-4 practical notes: safety, transport basics, when to visit, or local tips.
- Do NOT copy raw Wikipedia text verbatim; rewrite in your own words.
- Do NOT invent specific statistics or facts that are not implied by the data.
`

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// WikiClient fetches one page summary; failures come back inside the map.
type WikiClient interface {
	PageSummary(ctx context.Context, title string) map[string]interface{}
}

type Handler struct {
	config    *Config
	wiki      WikiClient
	generator llm.TextGenerator
	errors    *apperrors.ErrorHandler
	logger    Logger
}

func NewHandler(config *Config, wiki WikiClient, generator llm.TextGenerator, log Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:    config,
		wiki:      wiki,
		generator: generator,
		errors:    apperrors.NewErrorHandler(scoped),
		logger:    scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := DecodeInput(job.Variables)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		output = &Output{Error: err.Error()}
	}

	h.completeJob(ctx, client, job, output)
}

// DecodeInput validates and decodes job variables or an invocation payload.
func DecodeInput(variables string) (*Input, error) {
	var payload interface{}
	if err := json.Unmarshal([]byte(variables), &payload); err != nil {
		return nil, apperrors.NewInvalidInvocationError(fmt.Sprintf("parse input: %v", err))
	}
	if result := validation.ValidateInvocation(payload); !result.Valid {
		return nil, apperrors.NewInvalidInvocationError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInvocationError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	destinations := input.Destinations
	if !isSet(destinations) {
		destinations = input.Titles
	}
	if isSet(destinations) {
		return h.FromList(ctx, destinations), nil
	}

	prompt := input.Prompt
	if prompt == "" {
		prompt = input.Query
	}
	return h.FromPrompt(ctx, prompt)
}

// FromList fetches one summary per destination, in order. destinations may be
// a single string or a list; other shapes produce an error result.
func (h *Handler) FromList(ctx context.Context, destinations interface{}) *Output {
	var items []interface{}
	switch d := destinations.(type) {
	case string:
		items = []interface{}{d}
	case []interface{}:
		items = d
	case []string:
		items = lo.ToAnySlice(d)
	default:
		h.logger.Warn("rejected destinations", map[string]interface{}{
			"type": fmt.Sprintf("%T", destinations),
		})
		return &Output{Error: errNotAList}
	}

	cleaned := cleanDestinations(items)
	summaries := make([]map[string]interface{}, 0, len(cleaned))
	for _, title := range cleaned {
		summaries = append(summaries, h.wiki.PageSummary(ctx, title))
	}

	h.logger.Info("destination summaries collected", map[string]interface{}{
		"destinations": len(cleaned),
		"failed": len(lo.Filter(summaries, func(s map[string]interface{}, _ int) bool {
			_, failed := s["error"]
			return failed
		})),
	})

	return &Output{Destinations: cleaned, Summaries: summaries}
}

// FromPrompt infers destinations from prompt, fetches their summaries and
// drafts a travel summary. Only a failed extraction call is an error.
func (h *Handler) FromPrompt(ctx context.Context, prompt string) (*Output, error) {
	extraction, err := h.ExtractDestinations(ctx, prompt)
	if err != nil {
		return nil, err
	}

	destinations, _ := extraction["destinations"].([]interface{})
	if len(destinations) == 0 {
		empty := ""
		return &Output{
			Destinations:  []string{},
			Summaries:     []map[string]interface{}{},
			Extraction:    extraction,
			TravelSummary: &empty,
		}, nil
	}

	wiki := h.FromList(ctx, destinations)
	summary := h.TravelSummary(ctx, map[string]interface{}{
		"extraction": extraction,
		"wiki":       wiki.ToMap(),
	})

	return &Output{
		Destinations:  wiki.Destinations,
		Summaries:     wiki.Summaries,
		Extraction:    extraction,
		TravelSummary: &summary,
	}, nil
}

// ExtractDestinations asks the text generator for destination names. A reply
// that is not JSON is searched for its outermost {...} block; when that fails
// too, the result has no destinations and keeps the reply under "raw".
func (h *Handler) ExtractDestinations(ctx context.Context, prompt string) (map[string]interface{}, error) {
	start := time.Now()
	reply, err := h.generator.Generate(ctx, extractionPrompt, prompt)
	if err != nil {
		stdErr := apperrors.NewLLMRequestFailedError(err)
		h.logger.Error("destination extraction failed", map[string]interface{}{
			"errorCode":  string(stdErr.Code),
			"error":      err.Error(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return nil, stdErr
	}

	obj, ok := parseExtraction(reply)
	if !ok {
		h.logger.Warn("destination extraction reply was not JSON", map[string]interface{}{
			"replyLength": len(reply),
		})
		return map[string]interface{}{"destinations": []interface{}{}, "raw": reply}, nil
	}

	items, _ := obj["destinations"].([]interface{})
	destinations := lo.ToAnySlice(cleanDestinations(items))

	h.logger.Info("destinations extracted", map[string]interface{}{
		"count":      len(destinations),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return map[string]interface{}{
		"destinations": destinations,
		"raw":          jsonsafe.Coerce(obj),
	}, nil
}

// TravelSummary drafts traveller-focused markdown from destination info. A
// failed call is reported in the returned text.
func (h *Handler) TravelSummary(ctx context.Context, info interface{}) string {
	if info == nil {
		info = map[string]interface{}{}
	}
	encoded, err := json.Marshal(jsonsafe.Coerce(info))
	if err != nil {
		return fmt.Sprintf("Could not summarize Wikipedia info: %v", err)
	}

	summary, err := h.generator.Generate(ctx, summaryPrompt, string(encoded))
	if err != nil {
		h.logger.Warn("travel summary failed", map[string]interface{}{
			"errorCode": string(apperrors.ErrCodeLLMRequestFailed),
			"error":     err.Error(),
		})
		return fmt.Sprintf("Could not summarize Wikipedia info: %v", err)
	}
	return summary
}

func parseExtraction(reply string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(reply), &obj); err == nil && obj != nil {
		return obj, true
	}
	block := jsonObjectPattern.FindString(reply)
	if block == "" {
		return nil, false
	}
	obj = nil
	if err := json.Unmarshal([]byte(block), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// cleanDestinations stringifies and trims each name, dropping blanks.
func cleanDestinations(items []interface{}) []string {
	return lo.FilterMap(items, func(item interface{}, _ int) (string, bool) {
		name := strings.TrimSpace(stringify(item))
		return name, name != ""
	})
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func isSet(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []interface{}:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return true
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(ctx)
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
