package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"plagiarism-check-platform/internal/logger"
	"plagiarism-check-platform/internal/telemetry"
	"plagiarism-check-platform/services"
)

const TaskProcessCheck = "check:process"

type CheckProcessPayload struct {
	CheckID string `json:"check_id"`
}

// NewCheckProcessTask builds the durable scoring job for a check.
// MaxRetry applies only to errors the worker lets escape; domain
// failures are recorded on the check and never reach the retry policy.
func NewCheckProcessTask(checkID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CheckProcessPayload{CheckID: checkID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskProcessCheck,
		payload,
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Client wraps the asynq producer behind the orchestrator's Enqueuer
// boundary.
type Client struct {
	inner *asynq.Client
}

func NewClient(inner *asynq.Client) *Client {
	return &Client{inner: inner}
}

func (c *Client) EnqueueCheck(checkID string) error {
	task, err := NewCheckProcessTask(checkID)
	if err != nil {
		return err
	}
	info, err := c.inner.Enqueue(task)
	if err != nil {
		return err
	}
	logger.Debug("check job enqueued", "check_id", checkID, "task_id", info.ID)
	return nil
}

// TaskProcessor holds the worker-side task handlers.
type TaskProcessor struct {
	checks  *services.CheckService
	metrics *telemetry.Metrics
}

func NewTaskProcessor(checks *services.CheckService, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{checks: checks, metrics: metrics}
}

func (p *TaskProcessor) ProcessCheck(ctx context.Context, t *asynq.Task) error {
	var payload CheckProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("processing check", "check_id", payload.CheckID)
	start := time.Now()

	if err := p.checks.ProcessCheck(ctx, payload.CheckID); err != nil {
		if p.metrics != nil {
			p.metrics.RecordCheckProcessed("retryable_error", time.Since(start).Seconds())
		}
		// Infrastructure error; let asynq retry it.
		return err
	}

	if p.metrics != nil {
		p.metrics.RecordCheckProcessed("processed", time.Since(start).Seconds())
	}
	logger.Info("check job finished", "check_id", payload.CheckID, "duration", time.Since(start))
	return nil
}
