// internal/runtime/agentcore.go
package runtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/google/uuid"

	"trip-planner/internal/agent"
	apperrors "trip-planner/internal/common/errors"
	commonhttp "trip-planner/internal/common/http"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/common/sse"
)

type agentCoreAPI interface {
	InvokeAgentRuntime(ctx context.Context, params *bedrockagentcore.InvokeAgentRuntimeInput, optFns ...func(*bedrockagentcore.Options)) (*bedrockagentcore.InvokeAgentRuntimeOutput, error)
}

type AgentCoreConfig struct {
	RuntimeARN string
	Region     string
	// Qualifier selects an endpoint of the runtime; the service default is used when empty.
	Qualifier string
	// SessionID is generated when empty.
	SessionID      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// AgentCoreClient invokes a runtime deployed on Bedrock AgentCore. Requests
// are signed with the default AWS credential chain.
type AgentCoreClient struct {
	api        agentCoreAPI
	arn        string
	qualifier  string
	sessionID  string
	dispatcher *agent.Dispatcher
	logger     Logger
}

func NewAgentCoreClient(ctx context.Context, config *AgentCoreConfig, log Logger) (*AgentCoreClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.ConnectTimeout > 0 && config.ReadTimeout > 0 {
		httpClient := commonhttp.NewClient(config.ConnectTimeout, config.ReadTimeout).HTTPClient()
		opts = append(opts, awsconfig.WithHTTPClient(httpClient))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConfigurationError("load aws config: " + err.Error())
	}
	api := bedrockagentcore.NewFromConfig(cfg, func(o *bedrockagentcore.Options) {
		// one attempt per invocation
		o.RetryMaxAttempts = 1
	})
	return newAgentCoreClient(api, config, log), nil
}

func newAgentCoreClient(api agentCoreAPI, config *AgentCoreConfig, log Logger) *AgentCoreClient {
	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &AgentCoreClient{
		api:        api,
		arn:        config.RuntimeARN,
		qualifier:  config.Qualifier,
		sessionID:  sessionID,
		dispatcher: &agent.Dispatcher{NewStrategy: sse.NewDataBlob},
		logger: log.With(map[string]interface{}{
			"service":    metrics.ServiceRuntime,
			"sessionId":  sessionID,
			"runtimeArn": config.RuntimeARN,
		}),
	}
}

func (c *AgentCoreClient) SessionID() string {
	return c.sessionID
}

// Invoke sends payload to the runtime and decodes the reply by its content
// type, the same way as the HTTP client.
func (c *AgentCoreClient) Invoke(ctx context.Context, payload map[string]interface{}) any {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewRuntimeRequestFailedError(err).ToPayload()
	}

	input := &bedrockagentcore.InvokeAgentRuntimeInput{
		AgentRuntimeArn:  awssdk.String(c.arn),
		RuntimeSessionId: awssdk.String(c.sessionID),
		Payload:          body,
		ContentType:      awssdk.String("application/json"),
		Accept:           awssdk.String("text/event-stream, application/json"),
	}
	if c.qualifier != "" {
		input.Qualifier = awssdk.String(c.qualifier)
	}

	start := time.Now()
	out, err := c.api.InvokeAgentRuntime(ctx, input)
	if err != nil {
		return failure(c.logger, err, start)
	}

	var data []byte
	if out.Response != nil {
		defer out.Response.Close()
		data, err = io.ReadAll(out.Response)
		if err != nil {
			return failure(c.logger, err, start)
		}
	}
	contentType := awssdk.ToString(out.ContentType)

	metrics.ObserveOutbound(metrics.ServiceRuntime, metrics.OutcomeSuccess, time.Since(start))
	c.logger.Info("runtime invocation completed", map[string]interface{}{
		"contentType": contentType,
		"bytes":       len(data),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return c.dispatcher.Dispatch(agent.RawResponse{
		StatusCode:  http.StatusOK,
		ContentType: contentType,
		Body:        data,
	})
}
