// Package errors provides the structured error vocabulary of the trip planner.
//
// Nothing in the request path propagates a Go error to the caller: failures are
// downgraded at the boundary where they happen into an {"error": message} object.
// StandardError carries the code and details for logs and metrics on the way.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAgentRequestFailed   ErrorCode = "AGENT_REQUEST_FAILED"
	ErrCodeAgentTimeout         ErrorCode = "AGENT_TIMEOUT"
	ErrCodeAgentNotConfigured   ErrorCode = "AGENT_NOT_CONFIGURED"
	ErrCodeWikiLookupFailed     ErrorCode = "WIKI_LOOKUP_FAILED"
	ErrCodeWikiNotFound         ErrorCode = "WIKI_NOT_FOUND"
	ErrCodeLLMRequestFailed     ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeRuntimeRequestFailed ErrorCode = "RUNTIME_REQUEST_FAILED"
	ErrCodeBrokerUnavailable    ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeInvalidInvocation    ErrorCode = "INVALID_INVOCATION"
	ErrCodeConfigurationFailed  ErrorCode = "CONFIGURATION_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// ToPayload renders the error as the {"error": message} object returned to callers.
func (e *StandardError) ToPayload() map[string]interface{} {
	return map[string]interface{}{"error": e.Error()}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAgentRequestFailedError covers connection errors, non-2xx replies and unreadable bodies.
func NewAgentRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentRequestFailed,
		Message:   "Agent error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentTimeoutError is returned when the agent call exceeds its connect or read timeout.
func NewAgentTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentTimeout,
		Message:   "Agent timeout",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAgentNotConfiguredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentNotConfigured,
		Message:   "Agent not configured",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewWikiLookupFailedError(title string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWikiLookupFailed,
		Message:   "Encyclopedia lookup failed",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"title": title},
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Text generation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRuntimeRequestFailedError covers failed calls to a deployed runtime.
func NewRuntimeRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuntimeRequestFailed,
		Message:   "Request failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrokerUnavailableError is returned when the workflow broker cannot be reached.
func NewBrokerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerUnavailable,
		Message:   "Workflow broker unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInvocationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInvocation,
		Message:   "Invalid invocation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationFailed,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsTimeout reports whether err came from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "AGENT"):
		return "AGENT"
	case strings.HasPrefix(codeStr, "WIKI"):
		return "ENRICHMENT"
	case strings.HasPrefix(codeStr, "LLM"):
		return "ENRICHMENT"
	case strings.HasPrefix(codeStr, "RUNTIME"):
		return "RUNTIME"
	case strings.HasPrefix(codeStr, "BROKER"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
