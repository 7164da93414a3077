// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"reco-workers/internal/common/logger"
)

// JobHandler is implemented by every worker handler. Handlers report job
// outcomes to Zeebe themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
	GetTaskType() string
	IsEnabled() bool
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type Worker struct {
	client   zbc.Client
	handler  JobHandler
	opts     WorkerOptions
	logger   logger.Logger
	worker   worker.JobWorker
	taskType string
}

func NewWorker(client zbc.Client, handler JobHandler, opts WorkerOptions, log logger.Logger) *Worker {
	return &Worker{
		client:   client,
		handler:  handler,
		opts:     opts,
		logger:   log,
		taskType: handler.GetTaskType(),
	}
}

// Start opens the job worker. It reports false for a disabled handler.
func (w *Worker) Start() bool {
	if !w.handler.IsEnabled() {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": w.taskType})
		return false
	}

	step := w.client.NewJobWorker().
		JobType(w.taskType).
		Handler(w.handler.Handle).
		MaxJobsActive(w.opts.MaxJobsActive)
	if w.opts.Timeout > 0 {
		step = step.Timeout(w.opts.Timeout)
	}
	w.worker = step.Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      w.taskType,
		"maxJobsActive": w.opts.MaxJobsActive,
		"timeout":       w.opts.Timeout.String(),
	})
	return true
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	if w.worker == nil {
		return
	}
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
	w.worker = nil
}
