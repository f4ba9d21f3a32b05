// internal/workers/travel/plan-trip/handler.go
package plantrip

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"trip-planner/internal/agent"
	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/jsonsafe"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/common/observability"
	"trip-planner/internal/common/validation"
	destinationinfo "trip-planner/internal/workers/travel/destination-info"
)

const TaskType = "plan-trip"

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// AgentClient runs one prompt against the trip-planning agent. Failures come
// back as an {"error": ...} payload.
type AgentClient interface {
	Run(ctx context.Context, prompt string) any
}

// DestinationInfo answers wiki mode and enriches trip plans.
type DestinationInfo interface {
	Execute(ctx context.Context, input *destinationinfo.Input) (*destinationinfo.Output, error)
	FromPrompt(ctx context.Context, prompt string) (*destinationinfo.Output, error)
}

type Handler struct {
	config       *Config
	agent        AgentClient
	destinations DestinationInfo
	errors       *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       Logger
}

// NewHandler builds the trip handler. destinations may be nil, in which case
// trip plans are not enriched and wiki mode reports an error.
func NewHandler(config *Config, agentClient AgentClient, destinations DestinationInfo, obs *observability.Observability, log Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		agent:        agentClient,
		destinations: destinations,
		errors:       apperrors.NewErrorHandler(scoped),
		obs:          obs,
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := DecodeInput([]byte(job.Variables))
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	result := h.Invoke(ctx, input)
	h.completeJob(ctx, client, job, result)
}

// DecodeInput validates and decodes an invocation payload.
func DecodeInput(payload []byte) (*Input, error) {
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, apperrors.NewInvalidInvocationError(fmt.Sprintf("parse input: %v", err))
	}
	if result := validation.ValidateInvocation(doc); !result.Valid {
		return nil, apperrors.NewInvalidInvocationError(result.Error())
	}

	var input Input
	if err := json.Unmarshal(payload, &input); err != nil {
		return nil, apperrors.NewInvalidInvocationError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

// InvokePayload decodes payload and invokes it. An invalid payload is answered
// with an {"error": ...} object.
func (h *Handler) InvokePayload(ctx context.Context, payload []byte) map[string]interface{} {
	input, err := DecodeInput(payload)
	if err != nil {
		h.logger.Warn("invalid invocation", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.Invocations.WithLabelValues("invalid", metrics.OutcomeError).Inc()
		return agent.ErrorPayload(err)
	}
	return h.Invoke(ctx, input)
}

// Invoke routes one invocation: wiki mode goes to destination info, anything
// else is planned by the agent. prompt falls back to query, destinations to
// titles.
func (h *Handler) Invoke(ctx context.Context, input *Input) map[string]interface{} {
	mode := ModeTrip
	if strings.ToLower(input.Mode) == ModeWiki {
		mode = ModeWiki
	}

	invocationID := uuid.NewString()
	log := h.logger.With(map[string]interface{}{
		"invocationId": invocationID,
		"mode":         mode,
	})

	metrics.InvocationsActive.WithLabelValues(mode).Inc()
	defer metrics.InvocationsActive.WithLabelValues(mode).Dec()
	start := time.Now()

	prompt := input.Prompt
	if prompt == "" {
		prompt = input.Query
	}

	var result map[string]interface{}
	if mode == ModeWiki {
		result = h.wiki(ctx, input, prompt)
	} else {
		result = h.PlanTrip(ctx, prompt).ToMap()
	}

	outcome := metrics.OutcomeSuccess
	if msg, failed := agent.ErrorOf(result); failed {
		outcome = metrics.OutcomeError
		log.Warn("invocation returned an error", map[string]interface{}{
			"error": msg,
		})
	}
	elapsed := time.Since(start)
	metrics.Invocations.WithLabelValues(mode, outcome).Inc()
	h.obs.RecordInvocation(ctx, mode, outcome, elapsed)

	log.Info("invocation completed", map[string]interface{}{
		"outcome":    outcome,
		"durationMs": elapsed.Milliseconds(),
	})
	return result
}

func (h *Handler) wiki(ctx context.Context, input *Input, prompt string) map[string]interface{} {
	if h.destinations == nil {
		return apperrors.NewConfigurationError("destination info is not configured").ToPayload()
	}
	out, err := h.destinations.Execute(ctx, &destinationinfo.Input{
		Prompt:       prompt,
		Destinations: input.Destinations,
		Titles:       input.Titles,
	})
	if err != nil {
		return agent.ErrorPayload(err)
	}
	return out.ToMap()
}

// PlanTrip asks the agent for a plan. An agent error is returned together
// with the coerced payload. Otherwise the plan text is extracted and the raw
// context carries the agent response and, best effort, destination info
// inferred from the same prompt.
func (h *Handler) PlanTrip(ctx context.Context, prompt string) *Output {
	raw := h.agent.Run(ctx, prompt)
	if msg, failed := agent.ErrorOf(raw); failed {
		return &Output{
			Error:      msg,
			RawContext: jsonsafe.Coerce(raw),
		}
	}

	rawContext := map[string]interface{}{
		"cortex_agent_response": raw,
	}
	if info := h.enrich(ctx, prompt); info != nil {
		rawContext["wiki_destination_info"] = info
	}

	return &Output{
		BestTripRecommendation: agent.ExtractText(raw),
		RawContext:             jsonsafe.Coerce(rawContext),
	}
}

// enrich never fails the plan: errors and panics become {"error": ...}.
func (h *Handler) enrich(ctx context.Context, prompt string) (info map[string]interface{}) {
	if h.destinations == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("destination enrichment panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			info = map[string]interface{}{"error": fmt.Sprint(r)}
		}
	}()

	out, err := h.destinations.FromPrompt(ctx, prompt)
	if err != nil {
		h.logger.Warn("destination enrichment failed", map[string]interface{}{
			"error": err.Error(),
		})
		return map[string]interface{}{"error": err.Error()}
	}
	return out.ToMap()
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, result map[string]interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromMap(result)

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
	if input == nil {
		return nil, apperrors.NewInvalidInvocationError("input is required")
	}
	prompt := input.Prompt
	if prompt == "" {
		prompt = input.Query
	}
	return h.PlanTrip(ctx, prompt), nil
}
