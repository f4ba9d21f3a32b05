package errors

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestStandardError_Payload(t *testing.T) {
	err := NewAgentRequestFailedError(fmt.Errorf("HTTP 500"))

	assert.Equal(t, "Agent error: HTTP 500", err.Error())
	assert.Equal(t, map[string]interface{}{"error": "Agent error: HTTP 500"}, err.ToPayload())
	assert.False(t, err.Retryable)
}

func TestStandardError_NoDetails(t *testing.T) {
	err := NewInvalidInvocationError("")

	assert.Equal(t, "Invalid invocation", err.Error())
}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("read body: %w", context.DeadlineExceeded), true},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, true},
		{"client timeout text", fmt.Errorf("Get x: Client.Timeout exceeded"), true},
		{"refused", fmt.Errorf("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeout(tt.err))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AGENT", GetErrorCategory(ErrCodeAgentTimeout))
	assert.Equal(t, "ENRICHMENT", GetErrorCategory(ErrCodeWikiNotFound))
	assert.Equal(t, "ENRICHMENT", GetErrorCategory(ErrCodeLLMRequestFailed))
	assert.Equal(t, "RUNTIME", GetErrorCategory(ErrCodeRuntimeRequestFailed))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeBrokerUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInvocation))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeConfigurationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory("INTERNAL_ERROR"))
}

func TestNormalizeError(t *testing.T) {
	std := NewBrokerUnavailableError(fmt.Errorf("dial tcp"))
	assert.Same(t, std, normalizeError(std))

	wrapped := normalizeError(fmt.Errorf("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), wrapped.Code)
	assert.Equal(t, "Unexpected error: boom", wrapped.Error())
}
