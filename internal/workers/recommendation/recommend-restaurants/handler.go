package recommendrestaurants

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"reco-workers/internal/common/config"
	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/metrics"
	"reco-workers/internal/common/validation"
)

const TaskType = "recommend-restaurants"

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      *Service
	errorHandler *errors.ErrorHandler
	deps         ServiceDependencies
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Dependencies ServiceDependencies
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	deps := opts.Dependencies
	if deps.Primary == nil || deps.Matcher == nil {
		return nil, fmt.Errorf("%s requires a primary searcher and a matcher", TaskType)
	}
	deps.Logger = log

	return &Handler{
		config:       workerConfig,
		logger:       log,
		service:      NewService(deps, workerConfig),
		errorHandler: errors.NewErrorHandler(log),
		deps:         deps,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing recommendation job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
			h.deps.Observability.RecordJobProcessed(ctx, TaskType, "completed")
			h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
			return
		}
	}

	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "failed")
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		if result.HasErrors("lat") || result.HasErrors("lon") {
			lat, _ := variables["lat"].(float64)
			lon, _ := variables["lon"].(float64)
			return nil, errors.NewInvalidCoordinatesError(lat, lon).
				WithMetadata("validationErrors", result.GetErrorMessages())
		}
		if result.HasErrors("timeSlot") {
			slot, _ := variables["timeSlot"].(string)
			return nil, errors.NewInvalidTimeSlotError(slot)
		}
		return nil, errors.NewInputValidationError(fmt.Sprintf("validation errors: %v", result.GetErrorMessages()))
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"recommendations":     output.Recommendations,
		"recommendationCount": output.RecommendationCount,
		"requestId":           output.RequestID,
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey":    job.GetKey(),
			"requestId": output.RequestID,
			"error":     err.Error(),
		})
		return
	}
	h.logger.Info("recommendation job completed", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"requestId": output.RequestID,
		"count":     output.RecommendationCount,
	})
}

// Execute runs the recommendation directly, bypassing Zeebe.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
