package engine

import (
	"context"
	"testing"
	"time"

	"staffing-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testClock() time.Time {
	return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(testClock)}, opts...)
	e, err := New(cfg, logger.NewNoOpLogger(), opts...)
	require.NoError(t, err)
	return e
}

func backendJob() JobOpening {
	return JobOpening{
		Title:          "Backend Developer",
		Description:    "python sql backend",
		RequiredSkills: "Python, SQL",
		DepartmentID:   7,
	}
}

func TestRank_FullPipeline(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	pool := []Candidate{
		{
			// Strong profile: full skill coverage, three qualifying
			// reviews averaging 4.2.
			ID: 1, FirstName: "Alice", LastName: "Martin",
			DepartmentID: intPtr(7), DepartmentName: "Engineering",
			Skills:        "Python, SQL",
			EngagementEnd: "2024-06-30",
			Ratings: []RatingRecord{
				{Score: 4.5, EvaluatorRole: "tutor"},
				{Score: 4.0, EvaluatorRole: "hr"},
				{Score: 4.1, EvaluatorRole: "tutor"},
			},
		},
		{
			// Wrong department: filtered before scoring.
			ID: 2, FirstName: "Bruno", LastName: "Keller",
			DepartmentID: intPtr(8),
			Skills:       "Python, SQL", EngagementEnd: "2024-06-30",
		},
		{
			// Engagement still running: filtered.
			ID: 3, FirstName: "Chloe", LastName: "Durand",
			DepartmentID: intPtr(7),
			Skills:       "Python, SQL", EngagementEnd: "2025-12-31",
		},
		{
			// Unparsable end date: filtered.
			ID: 4, FirstName: "David", LastName: "Roy",
			DepartmentID: intPtr(7),
			Skills:       "Python, SQL", EngagementEnd: "soon",
		},
		{
			// Eligible but no skills and no history: floor scores put it
			// under the skill threshold.
			ID: 5, FirstName: "Eva", LastName: "Blanc",
			DepartmentID: intPtr(7),
			Skills:       "", EngagementEnd: "2024-06-30",
		},
	}

	result, err := e.Rank(context.Background(), backendJob(), pool, 10)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Summary.TotalCandidates)
	assert.Equal(t, 2, result.Summary.EligibleCandidates)
	assert.Equal(t, 1, result.Summary.Returned)
	require.Len(t, result.Candidates, 1)

	top := result.Candidates[0]
	assert.Equal(t, 1, top.CandidateID)
	assert.Equal(t, "Alice Martin", top.Name)

	// avg 4.2 over 3 reviews: (4.2/5) * 1.1 confidence multiplier.
	assert.InDelta(t, 0.924, top.RatingScore, 1e-9)
	assert.InDelta(t, 4.2, top.Rating, 1e-9)
	assert.Equal(t, 3, top.RatingCount)
	assert.True(t, top.HasRatings)

	assert.InDelta(t, 1.0, top.SkillSimilarity, 1e-9)
	assert.Equal(t, 1.0, top.CompositeScore) // excellence bonus pushes past the clamp
	assert.True(t, top.DepartmentMatch)
	assert.True(t, top.StageCompleted)

	assert.Contains(t, top.MatchReasons, "required skills fully covered")
	assert.Contains(t, top.MatchReasons, "multiple evaluations on record")
	assert.Contains(t, top.MatchReasons, "top performer with matching skills")
	assert.LessOrEqual(t, len(top.MatchReasons), maxReasons)
}

func TestRank_DepartmentRequired(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	job := backendJob()
	job.DepartmentID = 0
	_, err := e.Rank(context.Background(), job, nil, 10)
	assert.ErrorIs(t, err, ErrDepartmentRequired)
}

func TestRank_EmptyPool(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	result, err := e.Rank(context.Background(), backendJob(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, 0, result.Summary.TotalCandidates)
	assert.Equal(t, 0, result.Summary.Returned)
}

func TestRank_StableTieBreak(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	make3 := func(id int) Candidate {
		return Candidate{
			ID: id, FirstName: "Same", LastName: "Profile",
			DepartmentID: intPtr(7), DepartmentName: "Engineering",
			Skills: "Python, SQL", EngagementEnd: "2024-06-30",
		}
	}
	pool := []Candidate{make3(11), make3(22), make3(33)}

	result, err := e.Rank(context.Background(), backendJob(), pool, 10)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 3)

	// Identical profiles score identically; input order decides.
	assert.Equal(t, 11, result.Candidates[0].CandidateID)
	assert.Equal(t, 22, result.Candidates[1].CandidateID)
	assert.Equal(t, 33, result.Candidates[2].CandidateID)
	assert.Equal(t, result.Candidates[0].CompositeScore, result.Candidates[2].CompositeScore)
}

func TestRank_TopNTruncation(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	pool := []Candidate{
		{ID: 1, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30",
			Ratings: []RatingRecord{{Score: 5.0, EvaluatorRole: "tutor"}}},
		{ID: 2, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30",
			Ratings: []RatingRecord{{Score: 3.0, EvaluatorRole: "tutor"}}},
		{ID: 3, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30",
			Ratings: []RatingRecord{{Score: 4.0, EvaluatorRole: "tutor"}}},
	}

	result, err := e.Rank(context.Background(), backendJob(), pool, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.EligibleCandidates)
	assert.Equal(t, 2, result.Summary.Returned)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, 1, result.Candidates[0].CandidateID)
	assert.Equal(t, 3, result.Candidates[1].CandidateID)
	assert.GreaterOrEqual(t, result.Candidates[0].CompositeScore, result.Candidates[1].CompositeScore)
}

func TestRank_TopNZeroUsesConfiguredDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopN = 1
	e := newTestEngine(t, cfg)

	pool := []Candidate{
		{ID: 1, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30"},
		{ID: 2, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30"},
	}
	result, err := e.Rank(context.Background(), backendJob(), pool, 0)
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 1)
}

func TestRank_ScoresAreClamped(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	// Three perfect reviews: raw rating signal is 1.1 before clamping.
	pool := []Candidate{{
		ID: 1, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30",
		Ratings: []RatingRecord{
			{Score: 5.0, EvaluatorRole: "tutor"},
			{Score: 5.0, EvaluatorRole: "hr"},
			{Score: 5.0, EvaluatorRole: "tutor"},
		},
	}}

	result, err := e.Rank(context.Background(), backendJob(), pool, 10)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, 1.0, result.Candidates[0].RatingScore)
	assert.Equal(t, 1.0, result.Candidates[0].CompositeScore)
}

func TestRank_SoftDepartmentMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DepartmentMode = DepartmentModeSoft
	e := newTestEngine(t, cfg)

	pool := []Candidate{
		{
			// Wrong department is no longer a gate in soft mode.
			ID: 1, FirstName: "Omar", LastName: "Haddad",
			DepartmentID: intPtr(8), DepartmentName: "Marketing",
			Skills: "Python, SQL", EngagementEnd: "2024-06-30",
			Status: "available",
		},
		{
			ID: 2, FirstName: "Lena", LastName: "Petit",
			DepartmentID: intPtr(7), DepartmentName: "Engineering",
			Skills: "Python, SQL", EngagementEnd: "2024-06-30",
			Status: "unavailable",
		},
	}

	result, err := e.Rank(context.Background(), backendJob(), pool, 10)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)

	byID := map[int]ScoredCandidate{}
	for _, c := range result.Candidates {
		byID[c.CandidateID] = c
	}
	assert.False(t, byID[1].DepartmentMatch)
	assert.True(t, byID[2].DepartmentMatch)
}

func TestSoftAdjustments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DepartmentMode = DepartmentModeSoft
	e := newTestEngine(t, cfg)
	job := backendJob()

	tests := []struct {
		name     string
		dept     *int
		status   string
		expected float64
	}{
		{"matching department", intPtr(7), "", 0.2},
		{"available status", nil, "available", 0.1},
		{"unavailable status", nil, "unavailable", -0.1},
		{"french available", nil, "Disponible", 0.1},
		{"french unavailable", nil, "indisponible", -0.1},
		{"busy status", nil, "busy", -0.1},
		{"department plus availability", intPtr(7), "actif", 0.3},
		{"no signal", nil, "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{DepartmentID: tt.dept, Status: tt.status}
			assert.InDelta(t, tt.expected, e.softAdjustments(job, c), 1e-9)
		})
	}
}

func TestScoreCandidate_NoHistoryPenalty(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	jobSkills, _ := e.cfg.ExtractSkills(backendJob().RequiredSkills)

	c := Candidate{ID: 1, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30"}
	scores, err := e.scoreCandidate(context.Background(), backendJob(), c, jobSkills)
	require.NoError(t, err)

	assert.InDelta(t, 0.4, scores.rating, 1e-9)
	assert.False(t, scores.aggregate.HasRatings)
	assert.False(t, scores.excellence)
	assert.False(t, scores.rejected)
}

func TestScoreCandidate_TwoReviewMultiplier(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	jobSkills, _ := e.cfg.ExtractSkills(backendJob().RequiredSkills)

	c := Candidate{
		ID: 1, DepartmentID: intPtr(7), Skills: "Python, SQL", EngagementEnd: "2024-06-30",
		Ratings: []RatingRecord{
			{Score: 4.0, EvaluatorRole: "tutor"},
			{Score: 4.0, EvaluatorRole: "hr"},
		},
	}
	scores, err := e.scoreCandidate(context.Background(), backendJob(), c, jobSkills)
	require.NoError(t, err)
	assert.InDelta(t, 0.84, scores.rating, 1e-9) // (4.0/5) * 1.05
}

func TestScoreCandidate_ExcellenceRequiresBothSignals(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	job := backendJob()
	jobSkills, _ := e.cfg.ExtractSkills(job.RequiredSkills)

	// High rating, weak skills: no excellence bonus.
	weak := Candidate{
		ID: 1, DepartmentID: intPtr(7), Skills: "Design", EngagementEnd: "2024-06-30",
		Ratings: []RatingRecord{{Score: 4.8, EvaluatorRole: "tutor"}},
	}
	scores, err := e.scoreCandidate(context.Background(), job, weak, jobSkills)
	require.NoError(t, err)
	assert.False(t, scores.excellence)

	// Skill exactly at the excellence threshold still does not qualify.
	// java and nosql are related to python and sql without matching them
	// exactly: 0.2 related score plus the full-coverage bonus lands on 0.5.
	half := Candidate{
		ID: 2, DepartmentID: intPtr(7), Skills: "Java, MongoDB", EngagementEnd: "2024-06-30",
		Ratings: []RatingRecord{{Score: 4.8, EvaluatorRole: "tutor"}},
	}
	scores, err = e.scoreCandidate(context.Background(), job, half, jobSkills)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scores.skill, 1e-9)
	assert.False(t, scores.excellence)
}

func TestScoreCandidate_RejectionBoundaries(t *testing.T) {
	// A lone java skill against python/design lands on exactly 0.2 skill
	// similarity (one related pair, half coverage). With the 0.4
	// no-history rating and zero text overlap the composite lands on the
	// 0.3 floor, so this candidate sits on both thresholds at once.
	job := JobOpening{
		Title:          "Backend Developer",
		Description:    "backend services",
		RequiredSkills: "Python, Design",
		DepartmentID:   7,
	}
	boundary := Candidate{ID: 1, DepartmentID: intPtr(7), Skills: "Java", EngagementEnd: "2024-06-30"}
	noSkills := Candidate{ID: 2, DepartmentID: intPtr(7), Skills: "", EngagementEnd: "2024-06-30"}

	tests := []struct {
		name         string
		candidate    Candidate
		minSkill     float64
		minComposite float64
		wantSkill    float64
		rejected     bool
	}{
		{"scores exactly at both floors pass", boundary, 0.2, 0.3, 0.2, false},
		{"skill under a raised floor is excluded", boundary, 0.25, 0.3, 0.2, true},
		{"composite under a raised floor is excluded", boundary, 0.2, 0.35, 0.2, true},
		{"empty skill field sinks under the default floor", noSkills, 0.2, 0.3, 0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MinSkillSimilarity = tt.minSkill
			cfg.MinCompositeScore = tt.minComposite
			e := newTestEngine(t, cfg)
			jobSkills, _ := e.cfg.ExtractSkills(job.RequiredSkills)

			scores, err := e.scoreCandidate(context.Background(), job, tt.candidate, jobSkills)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSkill, scores.skill, 1e-9)
			assert.Equal(t, tt.rejected, scores.rejected)
		})
	}
}

func TestMatchReasons(t *testing.T) {
	tests := []struct {
		name     string
		scores   subScores
		contains []string
		excludes []string
	}{
		{
			name: "no history",
			scores: subScores{
				skill: 0.5, composite: 0.45,
				aggregate: neutralAggregate,
			},
			contains: []string{"no evaluations on record", "good technical skill match", "good overall fit"},
			excludes: []string{"multiple evaluations on record"},
		},
		{
			name: "outstanding tier",
			scores: subScores{
				skill: 0.9, composite: 0.85,
				aggregate: RatingAggregate{Average: 4.7, Count: 3, HasRatings: true},
			},
			contains: []string{
				"outstanding evaluations (4.7/5 across 3 reviews)",
				"required skills fully covered",
				"exceptional overall fit",
				"multiple evaluations on record",
			},
		},
		{
			// Two reviews trigger the confidence multiplier but not the
			// evaluation-depth note, that needs three.
			name: "two reviews stay below the depth note",
			scores: subScores{
				skill: 0.7, composite: 0.7,
				aggregate: RatingAggregate{Average: 4.1, Count: 2, HasRatings: true},
			},
			contains: []string{"strong evaluations (4.1/5 across 2 reviews)", "excellent skill match"},
			excludes: []string{"multiple evaluations on record"},
		},
		{
			name: "excellence entry fills the cap exactly",
			scores: subScores{
				skill: 0.9, composite: 0.85, excellence: true,
				aggregate: RatingAggregate{Average: 4.2, Count: 3, HasRatings: true},
			},
			contains: []string{
				"strong evaluations (4.2/5 across 3 reviews)",
				"multiple evaluations on record",
				"top performer with matching skills",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasons := matchReasons(tt.scores)
			for _, want := range tt.contains {
				assert.Contains(t, reasons, want)
			}
			for _, not := range tt.excludes {
				assert.NotContains(t, reasons, not)
			}
			assert.LessOrEqual(t, len(reasons), maxReasons)
			assert.Contains(t, reasons, "engagement completed")
			assert.Contains(t, reasons, "department match")
		})
	}
}

func TestEngagementCompleted(t *testing.T) {
	now := testClock()

	tests := []struct {
		name     string
		endDate  string
		expected bool
	}{
		{"past date", "2024-06-30", true},
		{"today", "2025-01-15", true}, // date-only layouts parse to midnight, before the noon clock
		{"future date", "2025-12-31", false},
		{"rfc3339", "2024-06-30T10:00:00Z", true},
		{"no timezone timestamp", "2024-06-30T10:00:00", true},
		{"french layout", "30/06/2024", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"unparsable", "next month", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engagementCompleted(tt.endDate, now))
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Rating: 0.9, Skill: 0.9, Text: 0.9}
	_, err := New(cfg, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
