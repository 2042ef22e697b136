package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler is the single exit point for failed jobs. Every worker hands
// its errors here so retry budgets and BPMN error codes stay consistent
// across the fleet.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError normalizes, logs and reports any worker error. Retryable
// technical errors fail the job with retries left; business errors throw a
// BPMN error so the workflow's boundary events can route them.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          GetRetryCount(stdErr.Code),
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	if retries := GetRetryCount(stdErr.Code); retries > 0 && job.Retries > 0 {
		h.failJob(ctx, client, job, bpmnErr, retries)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
}

// normalize ensures every error leaving a worker carries a code.
func normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, maxRetries int) {
	// Never increase the job's remaining retry budget.
	retries := maxRetries
	if job.Retries > 0 && int(job.Retries) < maxRetries {
		retries = int(job.Retries)
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, ok := errorVariablesJSON(bpmnErr); ok {
		if cmdWithVars, err := cmd.VariablesFromString(varsJSON); err == nil {
			_, _ = cmdWithVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, ok := errorVariablesJSON(bpmnErr); ok {
		if cmdWithVars, err := cmd.VariablesFromString(varsJSON); err == nil {
			_, _ = cmdWithVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

// errorVariablesJSON marshals the error payload that boundary events read.
// A marshal failure downgrades to reporting without variables.
func errorVariablesJSON(bpmnErr *BPMNError) (string, bool) {
	vars := bpmnErr.ToErrorVariables()
	if len(vars) == 0 {
		return "", false
	}
	raw, err := json.Marshal(vars)
	if err != nil || string(raw) == "null" {
		return "", false
	}
	return string(raw), true
}
