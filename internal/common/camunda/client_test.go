package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reco-workers/internal/common/config"
	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/logger"
)

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(fmt.Errorf("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(fmt.Errorf("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(fmt.Errorf("rpc error: code = NotFound desc = job not found")))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"deadline exceeded", "TIMEOUT_ERROR"},
		{"job 12 not found", "RESOURCE_NOT_FOUND"},
		{"permission denied", "AUTHENTICATION_ERROR"},
		{"connection refused", "EXTERNAL_SERVICE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(fmt.Errorf("%s", tt.msg), "complete", 2)
			stdErr := errors.AsStandardError(err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Contains(t, stdErr.Details, "after 3 attempts")
		})
	}
}

func testClient() *Client {
	return &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	}}}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		err := testClient().ExecuteWithRetry(context.Background(), "topology", func(context.Context) error {
			calls++
			if calls < 3 {
				return fmt.Errorf("unavailable")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		err := testClient().ExecuteWithRetry(context.Background(), "topology", func(context.Context) error {
			calls++
			return fmt.Errorf("permission denied")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := testClient().ExecuteWithRetry(context.Background(), "topology", func(context.Context) error {
			calls++
			return fmt.Errorf("connection reset")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 5000})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

type disabledHandler struct{}

func (disabledHandler) Handle(worker.JobClient, entities.Job) {}
func (disabledHandler) GetTaskType() string                   { return "record-feedback" }
func (disabledHandler) IsEnabled() bool                       { return false }

func TestWorker_DisabledDoesNotOpen(t *testing.T) {
	w := NewWorker(nil, disabledHandler{}, WorkerOptions{MaxJobsActive: 1}, logger.NewNoOpLogger())
	assert.False(t, w.Start())
	w.Stop()
}
