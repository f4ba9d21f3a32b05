// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
}

// WorkerConfig holds the polling settings of one job worker.
type WorkerConfig struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker is an open job subscription for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   Logger
	taskType string
}

// StartWorker opens a job worker for taskType. Handlers complete or fail
// their own jobs.
func StartWorker(client zbc.Client, taskType string, cfg WorkerConfig, handler worker.JobHandler, log Logger) *Worker {
	step := client.NewJobWorker().
		JobType(taskType).
		Handler(handler)
	if cfg.MaxJobsActive > 0 {
		step = step.MaxJobsActive(cfg.MaxJobsActive)
	}
	if cfg.Timeout > 0 {
		step = step.Timeout(cfg.Timeout)
	}

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": cfg.MaxJobsActive,
		"timeout":       cfg.Timeout.String(),
	})

	return &Worker{
		worker:   step.Open(),
		logger:   log,
		taskType: taskType,
	}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
