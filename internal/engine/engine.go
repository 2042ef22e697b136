// Package engine implements the candidate ranking pipeline: eligibility
// filtering, multi-factor scoring, threshold rejection, deterministic
// ordering and match-reason generation. The engine is pure and
// stateless; all configuration is injected at construction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"staffing-workers/internal/common/logger"
)

var (
	ErrDepartmentRequired = errors.New("DEPARTMENT_REQUIRED")
	ErrInvalidConfig      = errors.New("INVALID_ENGINE_CONFIG")
)

// Engine ranks candidate pools against job openings. Safe for
// concurrent use: per-request state lives on the stack.
type Engine struct {
	cfg  Config
	text TextSimilarity
	log  logger.Logger
	now  func() time.Time
}

// Option customizes engine construction.
type Option func(*Engine)

// WithTextSimilarity swaps the free-text strategy (lexical by default).
func WithTextSimilarity(ts TextSimilarity) Option {
	return func(e *Engine) { e.text = ts }
}

// WithClock overrides the eligibility reference time (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New validates the configuration and builds an engine.
func New(cfg Config, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	e := &Engine{
		cfg:  cfg,
		text: Lexical{},
		log:  log.WithFields(map[string]interface{}{"component": "ranking-engine"}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Rank runs the full pipeline over one job opening and its candidate
// pool. topN <= 0 falls back to the configured default. A scoring
// failure on one candidate skips that candidate only; the batch always
// completes.
func (e *Engine) Rank(ctx context.Context, job JobOpening, pool []Candidate, topN int) (*Result, error) {
	if job.DepartmentID == 0 {
		return nil, ErrDepartmentRequired
	}
	if topN <= 0 {
		topN = e.cfg.TopN
	}

	start := time.Now()

	eligibleCandidates := e.filterEligible(job, pool)

	jobSkills, _ := e.cfg.ExtractSkills(job.RequiredSkills)

	scored := make([]ScoredCandidate, 0, len(eligibleCandidates))
	for _, c := range eligibleCandidates {
		result, err := e.scoreOne(ctx, job, c, jobSkills)
		if err != nil {
			e.log.Warn("skipping candidate after scoring failure", map[string]interface{}{
				"candidateId": c.ID,
				"error":       err,
			})
			continue
		}
		if result != nil {
			scored = append(scored, *result)
		}
	}

	// Stable sort: input order is the tie-break for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}

	e.log.Info("ranking completed", map[string]interface{}{
		"jobTitle":   job.Title,
		"department": job.DepartmentID,
		"pool":       len(pool),
		"eligible":   len(eligibleCandidates),
		"returned":   len(scored),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Result{
		Candidates: scored,
		Summary: Summary{
			TotalCandidates:    len(pool),
			EligibleCandidates: len(eligibleCandidates),
			Returned:           len(scored),
		},
	}, nil
}

// scoreOne isolates one candidate's scoring: an error or panic here
// must never abort the batch. Returns nil for threshold-rejected
// candidates.
func (e *Engine) scoreOne(ctx context.Context, job JobOpening, c Candidate, jobSkills []string) (result *ScoredCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic scoring candidate %d: %v", c.ID, r)
		}
	}()

	scores, err := e.scoreCandidate(ctx, job, c, jobSkills)
	if err != nil {
		return nil, err
	}
	if scores.rejected {
		return nil, nil
	}

	period := ""
	if c.EngagementStart != "" || c.EngagementEnd != "" {
		period = c.EngagementStart + " → " + c.EngagementEnd
	}

	return &ScoredCandidate{
		CandidateID:      c.ID,
		Name:             strings.TrimSpace(c.FirstName + " " + c.LastName),
		Email:            c.Email,
		Skills:           c.Skills,
		Department:       c.DepartmentName,
		University:       c.University,
		EngagementPeriod: period,
		Rating:           scores.aggregate.Average,
		RatingCount:      scores.aggregate.Count,
		HasRatings:       scores.aggregate.HasRatings,
		RatingQuality:    scores.aggregate.Quality,
		RatingScore:      scores.rating,
		SkillSimilarity:  scores.skill,
		TextSimilarity:   scores.text,
		CompositeScore:   scores.composite,
		MatchReasons:     matchReasons(scores),
		DepartmentMatch:  e.cfg.DepartmentMode == DepartmentModeHard || (c.DepartmentID != nil && *c.DepartmentID == job.DepartmentID),
		StageCompleted:   true,
	}, nil
}
