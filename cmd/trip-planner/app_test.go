package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/common/config"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/runtime"
)

const testARN = "arn:aws:bedrock-agentcore:us-east-1:123456789012:runtime/planner"

func testApp(rc config.RuntimeConfig) *app {
	rc.Region = "us-east-1"
	return &app{cfg: &config.Config{Runtime: rc}, log: logger.NewNoOpLogger()}
}

func TestRuntimeClient_Selection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RuntimeConfig
		endpoint string
		arn      string
		want     interface{}
	}{
		{"endpoint flag", config.RuntimeConfig{ARN: testARN}, "http://localhost:8080", "", &runtime.Client{}},
		{"arn flag", config.RuntimeConfig{Endpoint: "http://localhost:8080"}, "", testARN, &runtime.AgentCoreClient{}},
		{"configured arn wins over configured endpoint", config.RuntimeConfig{ARN: testARN, Endpoint: "http://localhost:8080"}, "", "", &runtime.AgentCoreClient{}},
		{"configured endpoint", config.RuntimeConfig{Endpoint: "http://localhost:8080"}, "", "", &runtime.Client{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWS_ACCESS_KEY_ID", "test")
			t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

			client, err := testApp(tt.cfg).runtimeClient(context.Background(), tt.endpoint, tt.arn)

			require.NoError(t, err)
			assert.IsType(t, tt.want, client)
			assert.NotEmpty(t, client.SessionID())
		})
	}
}

func TestRuntimeClient_NothingConfigured(t *testing.T) {
	_, err := testApp(config.RuntimeConfig{}).runtimeClient(context.Background(), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--arn or --endpoint")
}
