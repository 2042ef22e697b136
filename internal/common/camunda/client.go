// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"staffing-workers/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc is the signature every job handler in this module exposes.
// Completion and failure are reported through the JobClient, not a return value.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// JobObserver receives per-job telemetry once a handler returns.
type JobObserver interface {
	RecordHandled(ctx context.Context, taskType string, d time.Duration)
}

// Client owns the Zeebe connection and the lifecycle of every job worker
// opened on it. Shutdown closes workers before the connection so in-flight
// jobs can still report their outcome.
type Client struct {
	zeebe    zbc.Client
	cfg      config.CamundaConfig
	log      *zap.Logger
	observer JobObserver
	workers  []namedWorker
}

type namedWorker struct {
	taskType string
	worker   worker.JobWorker
}

// Connect dials the broker and verifies it answers a topology request.
// A gateway that accepts the gRPC connection but has no reachable broker
// would otherwise only surface once the first job activates.
func Connect(cfg config.CamundaConfig, log *zap.Logger, observer JobObserver) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout(cfg))
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}

	return &Client{
		zeebe:    zeebeClient,
		cfg:      cfg,
		log:      log,
		observer: observer,
	}, nil
}

// StartWorker opens a job worker for the given task type. Per-worker settings
// fall back to the broker-level defaults when unset.
func (c *Client) StartWorker(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) {
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = c.cfg.MaxJobsActive
	}
	timeout := wcfg.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	wrapped := handler
	if c.observer != nil {
		wrapped = func(jc worker.JobClient, job entities.Job) {
			start := time.Now()
			handler(jc, job)
			c.observer.RecordHandled(context.Background(), taskType, time.Since(start))
		}
	}

	jobWorker := c.zeebe.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(wrapped)).
		MaxJobsActive(maxJobs).
		Timeout(time.Duration(timeout) * time.Millisecond).
		Open()

	c.workers = append(c.workers, namedWorker{taskType: taskType, worker: jobWorker})

	c.log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobs),
		zap.Int("timeout_ms", timeout),
	)
}

// HealthCheck verifies the broker still answers topology requests.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout(c.cfg))
	defer cancel()

	if _, err := c.zeebe.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Shutdown drains the worker fleet, then releases the gRPC connection.
func (c *Client) Shutdown() error {
	for _, w := range c.workers {
		c.log.Info("stopping worker", zap.String("taskType", w.taskType))
		w.worker.Close()
	}
	return c.zeebe.Close()
}

func requestTimeout(cfg config.CamundaConfig) time.Duration {
	if cfg.RequestTimeout > 0 {
		return time.Duration(cfg.RequestTimeout) * time.Millisecond
	}
	return 10 * time.Second
}
