package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRuntimeARN = "arn:aws:bedrock-agentcore:us-east-1:123456789012:runtime/travel-planner-abc123"

type fakeAgentCore struct {
	contentType string
	body        string
	err         error
	inputs      []*bedrockagentcore.InvokeAgentRuntimeInput
}

func (f *fakeAgentCore) InvokeAgentRuntime(ctx context.Context, params *bedrockagentcore.InvokeAgentRuntimeInput, optFns ...func(*bedrockagentcore.Options)) (*bedrockagentcore.InvokeAgentRuntimeOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockagentcore.InvokeAgentRuntimeOutput{
		ContentType: awssdk.String(f.contentType),
		Response:    io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func newTestAgentCoreClient(t *testing.T, api agentCoreAPI, qualifier string) *AgentCoreClient {
	return newAgentCoreClient(api, &AgentCoreConfig{
		RuntimeARN: testRuntimeARN,
		Qualifier:  qualifier,
	}, &TestLogger{t: t})
}

// ===== Request =====

func TestAgentCoreInvoke_SendsArnSessionAndPayload(t *testing.T) {
	api := &fakeAgentCore{contentType: "application/json", body: `{"best_trip_recommendation":"Go"}`}
	client := newTestAgentCoreClient(t, api, "")

	client.Invoke(context.Background(), map[string]interface{}{"prompt": "Delhi to Pune"})
	client.Invoke(context.Background(), map[string]interface{}{"prompt": "Delhi to Pune"})

	require.Len(t, api.inputs, 2)
	in := api.inputs[0]
	assert.Equal(t, testRuntimeARN, awssdk.ToString(in.AgentRuntimeArn))
	assert.Nil(t, in.Qualifier)

	var body map[string]any
	require.NoError(t, json.Unmarshal(in.Payload, &body))
	assert.Equal(t, map[string]any{"prompt": "Delhi to Pune"}, body)

	session := awssdk.ToString(in.RuntimeSessionId)
	assert.Equal(t, session, awssdk.ToString(api.inputs[1].RuntimeSessionId))
	assert.Equal(t, client.SessionID(), session)
	_, err := uuid.Parse(session)
	assert.NoError(t, err)
}

func TestAgentCoreInvoke_Qualifier(t *testing.T) {
	api := &fakeAgentCore{contentType: "application/json", body: `{}`}

	newTestAgentCoreClient(t, api, "DEFAULT").Invoke(context.Background(), map[string]interface{}{"prompt": "x"})

	require.Len(t, api.inputs, 1)
	assert.Equal(t, "DEFAULT", awssdk.ToString(api.inputs[0].Qualifier))
}

// ===== Decoding =====

func TestAgentCoreInvoke_Decoding(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        any
	}{
		{
			name:        "event stream joins data lines",
			contentType: "text/event-stream",
			body:        "data: {\"best_trip_recommendation\":\n\ndata: \"3 nights in Pune\"}\n\n",
			want:        map[string]any{"best_trip_recommendation": "3 nights in Pune"},
		},
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"wiki_destination_info":{"destinations":["Pune"]}}`,
			want:        map[string]any{"wiki_destination_info": map[string]any{"destinations": []any{"Pune"}}},
		},
		{
			name:        "broken json",
			contentType: "application/json",
			body:        `{"best_trip`,
			want:        map[string]any{"raw": `{"best_trip`},
		},
		{
			name:        "other content type",
			contentType: "text/plain",
			body:        "hello",
			want:        map[string]any{"raw": "hello", "status_code": 200, "content_type": "text/plain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAgentCore{contentType: tt.contentType, body: tt.body}

			got := newTestAgentCoreClient(t, api, "").Invoke(context.Background(), map[string]interface{}{"prompt": "x"})

			assert.Equal(t, tt.want, got)
		})
	}
}

// ===== Failures =====

func TestAgentCoreInvoke_APIError(t *testing.T) {
	api := &fakeAgentCore{err: errors.New("AccessDeniedException: not authorized")}

	got := newTestAgentCoreClient(t, api, "").Invoke(context.Background(), map[string]interface{}{"prompt": "x"})

	assert.Equal(t, map[string]any{"error": "Request failed: AccessDeniedException: not authorized"}, got)
}

func TestAgentCoreInvoke_UnencodablePayload(t *testing.T) {
	api := &fakeAgentCore{}

	got := newTestAgentCoreClient(t, api, "").Invoke(context.Background(), map[string]interface{}{"bad": make(chan int)})

	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m["error"], "Request failed: ")
	assert.Empty(t, api.inputs)
}

func TestClients_ImplementInvoker(t *testing.T) {
	var _ Invoker = (*Client)(nil)
	var _ Invoker = (*AgentCoreClient)(nil)
}
