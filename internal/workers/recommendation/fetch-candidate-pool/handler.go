// internal/workers/recommendation/fetch-candidate-pool/handler.go
package fetchcandidatepool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"staffing-workers/internal/common/database"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/engine"
)

const (
	TaskType = "recommendation.pool.fetch-candidates"

	ratingsCacheKeyFormat = "candidate:ratings:%d"
)

var (
	ErrDepartmentRequired = errors.New("DEPARTMENT_REQUIRED")
	ErrPoolFetchFailed    = errors.New("POOL_FETCH_FAILED")
	ErrQueryTimeout       = errors.New("QUERY_TIMEOUT")
)

type Handler struct {
	config *Config
	repo   *Repository
	cache  *database.RedisClient
	logger logger.Logger
}

// NewHandler wires the pool worker. The cache may be nil, rating lookups
// then always go to Postgres.
func NewHandler(config *Config, repo *Repository, cache *database.RedisClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		repo:   repo,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "POOL_FETCH_FAILED"
		retries := int32(3)
		switch {
		case errors.Is(err, ErrDepartmentRequired):
			errorCode = "DEPARTMENT_REQUIRED"
			retries = 0
		case errors.Is(err, ErrQueryTimeout):
			errorCode = "QUERY_TIMEOUT"
			retries = 2
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.DepartmentID <= 0 {
		return nil, fmt.Errorf("%w: departmentId is mandatory", ErrDepartmentRequired)
	}

	role := input.Role
	if role == "" {
		role = h.config.DefaultRole
	}

	start := time.Now()
	candidates, err := h.repo.FetchCandidates(ctx, role, input.DepartmentID)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrPoolFetchFailed, err)
	}

	rated := 0
	for i := range candidates {
		ratings, err := h.loadRatings(ctx, candidates[i].ID)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, ErrQueryTimeout
			}
			return nil, fmt.Errorf("%w: %v", ErrPoolFetchFailed, err)
		}
		candidates[i].Ratings = ratings
		if len(ratings) > 0 {
			rated++
		}
	}

	h.logger.Info("candidate pool fetched", map[string]interface{}{
		"departmentId": input.DepartmentID,
		"role":         role,
		"total":        len(candidates),
		"rated":        rated,
	})

	return &Output{
		Candidates:      candidates,
		TotalCandidates: len(candidates),
		RatedCandidates: rated,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// loadRatings serves the rating history from Redis when present and
// falls back to Postgres. Cache failures are logged and ignored, the
// cache is an optimisation only.
func (h *Handler) loadRatings(ctx context.Context, candidateID int) ([]engine.RatingRecord, error) {
	key := fmt.Sprintf(ratingsCacheKeyFormat, candidateID)

	if h.cache != nil {
		if raw, err := h.cache.Get(ctx, key); err == nil {
			var cached []engine.RatingRecord
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			h.logger.Warn("discarding corrupt ratings cache entry", map[string]interface{}{
				"key": key,
			})
		}
	}

	ratings, err := h.repo.FetchRatings(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if raw, err := json.Marshal(ratings); err == nil {
			if err := h.cache.Set(ctx, key, string(raw), h.config.CacheTTL); err != nil {
				h.logger.Warn("failed to cache ratings", map[string]interface{}{
					"key":   key,
					"error": err,
				})
			}
		}
	}

	return ratings, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
