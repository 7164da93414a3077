package recordfeedback

import (
	"encoding/json"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/models"
)

func newJob(t *testing.T, vars map[string]interface{}) entities.Job {
	t.Helper()
	raw, err := json.Marshal(vars)
	require.NoError(t, err)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       777,
		Type:      TaskType,
		Retries:   3,
		Variables: string(raw),
	}}
}

func TestNewHandler_RequiresStore(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	require.Error(t, err)
}

func TestParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Logger:       logger.NewNoOpLogger(),
		Dependencies: ServiceDependencies{Store: new(MockStore)},
	})
	require.NoError(t, err)
	assert.Equal(t, TaskType, h.GetTaskType())
	assert.True(t, h.IsEnabled())

	t.Run("quick", func(t *testing.T) {
		input, err := h.parseInput(newJob(t, map[string]interface{}{
			"userId":          "01012345678",
			"restaurantName":  "을지면옥",
			"source":          "quick",
			"liked":           false,
			"internalPlaceId": 42,
		}))
		require.NoError(t, err)
		require.NotNil(t, input.Liked)
		assert.False(t, *input.Liked)
		require.NotNil(t, input.InternalPlaceID)
		assert.Equal(t, int64(42), *input.InternalPlaceID)
		assert.Equal(t, models.FeedbackSourceQuick, input.Source)
	})

	tests := []struct {
		name string
		vars map[string]interface{}
		code errors.ErrorCode
	}{
		{"missing restaurant", map[string]interface{}{"userId": "u", "source": "form", "rating": 3}, errors.ErrCodeInputValidationFailed},
		{"unknown source", map[string]interface{}{"userId": "u", "restaurantName": "a", "source": "sms"}, errors.ErrCodeInputValidationFailed},
		{"fractional rating", map[string]interface{}{"userId": "u", "restaurantName": "a", "source": "form", "rating": 3.5}, errors.ErrCodeInputValidationFailed},
		{"bad slot", map[string]interface{}{"userId": "u", "restaurantName": "a", "source": "form", "rating": 3, "timeSlot": "tea"}, errors.ErrCodeInvalidTimeSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(newJob(t, tt.vars))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.AsStandardError(err).Code)
		})
	}
}
