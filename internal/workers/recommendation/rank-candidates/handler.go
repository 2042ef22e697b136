// internal/workers/recommendation/rank-candidates/handler.go
package rankcandidates

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "staffing-workers/internal/common/errors"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/common/validation"
	"staffing-workers/internal/engine"
)

const TaskType = "recommendation.ranking.rank-candidates"

var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"jobOfferId":     {Type: "integer"},
		"jobTitle":       {Type: "string"},
		"jobDescription": {Type: "string"},
		"requiredSkills": {Type: "string"},
		"departmentId":   {Type: "integer", Minimum: floatPtr(1)},
		"topN":           {Type: "integer", Minimum: floatPtr(0)},
		"candidates":     {Type: "array"},
	},
	Required:             []string{"departmentId"},
	AdditionalProperties: true,
}

func floatPtr(f float64) *float64 { return &f }

type Handler struct {
	config *Config
	engine *engine.Engine
	store  *Store
	errors *commonerrors.ErrorHandler
	logger logger.Logger
}

// NewHandler wires the ranking worker. The store may be nil, results
// are then returned as process variables only.
func NewHandler(config *Config, eng *engine.Engine, store *Store, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: eng,
		store:  store,
		errors: commonerrors.NewErrorHandler(scoped),
		logger: scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	timer := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.fail(ctx, client, job, commonerrors.NewInvalidJobPayloadError(err.Error()))
		return
	}
	if result := validation.ValidateInput(raw, inputSchema); !result.Valid {
		h.fail(ctx, client, job, commonerrors.NewInvalidJobPayloadError(
			strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, commonerrors.NewInvalidJobPayloadError(err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(timer).Seconds())
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DepartmentID <= 0 {
		return nil, commonerrors.NewDepartmentRequiredError("departmentId is mandatory for ranking")
	}

	opening := engine.JobOpening{
		Title:          input.JobTitle,
		Description:    input.JobDescription,
		RequiredSkills: input.RequiredSkills,
		DepartmentID:   input.DepartmentID,
	}

	start := time.Now()
	result, err := h.engine.Rank(ctx, opening, input.Candidates, input.TopN)
	if err != nil {
		if errors.Is(err, engine.ErrDepartmentRequired) {
			return nil, commonerrors.NewDepartmentRequiredError("departmentId is mandatory for ranking")
		}
		return nil, commonerrors.NewRankingFailedError(err)
	}

	metrics.RankingDuration.Observe(time.Since(start).Seconds())
	metrics.RankingCandidatesEvaluated.Add(float64(result.Summary.EligibleCandidates))
	topN := input.TopN
	if topN <= 0 {
		topN = h.engine.Config().TopN
	}
	// Below topN the shortfall is threshold rejections, not truncation.
	if result.Summary.Returned < topN {
		if rejected := result.Summary.EligibleCandidates - result.Summary.Returned; rejected > 0 {
			metrics.RankingCandidatesRejected.Add(float64(rejected))
		}
	}

	output := &Output{
		Recommendations: result.Candidates,
		Summary:         result.Summary,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}

	// Persistence is best effort. A dead recommendations table must not
	// cost the process its ranking result.
	if h.config.Persist && h.store != nil && input.JobOfferID > 0 {
		if err := h.store.Save(ctx, input.JobOfferID, result.Candidates); err != nil {
			h.logger.Warn("failed to persist recommendations", map[string]interface{}{
				"jobOfferId": input.JobOfferID,
				"error":      err,
			})
		} else {
			output.Persisted = true
			output.PersistedCount = len(result.Candidates)
		}
	}

	h.logger.Info("candidates ranked", map[string]interface{}{
		"jobOfferId": input.JobOfferID,
		"pool":       result.Summary.TotalCandidates,
		"eligible":   result.Summary.EligibleCandidates,
		"returned":   result.Summary.Returned,
		"persisted":  output.Persisted,
	})

	return output, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
