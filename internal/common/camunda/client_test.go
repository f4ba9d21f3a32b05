package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trip-planner/internal/common/errors"
)

func newRetryClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	err := newRetryClient(3).ExecuteWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := newRetryClient(2).ExecuteWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("context deadline exceeded")
	}, "topology")

	assert.Equal(t, 3, calls)
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeBrokerUnavailable, stdErr.Code)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	err := newRetryClient(3).ExecuteWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("permission denied")
	}, "topology")

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newRetryClient(5)
	client.config.RetryConfig.BaseDelay = time.Hour
	client.config.RetryConfig.MaxDelay = time.Hour

	err := client.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("unavailable")
	}, "topology")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled after 1 attempts")
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("Connection Reset by peer")))
	assert.True(t, isRetryableZeebeError(errors.New("i/o timeout")))
	assert.False(t, isRetryableZeebeError(errors.New("NOT_FOUND: process")))
}
