// internal/workers/recommendation/rank-candidates/models.go
package rankcandidates

import "staffing-workers/internal/engine"

// Input variables read from the process instance. Candidates usually
// come from the pool worker, optionally enriched by the CV worker.
type Input struct {
	JobOfferID     int                `json:"jobOfferId,omitempty"`
	JobTitle       string             `json:"jobTitle"`
	JobDescription string             `json:"jobDescription,omitempty"`
	RequiredSkills string             `json:"requiredSkills"`
	DepartmentID   int                `json:"departmentId"`
	TopN           int                `json:"topN,omitempty"`
	Candidates     []engine.Candidate `json:"candidates"`
}

// Output variables published back to the process.
type Output struct {
	Recommendations []engine.ScoredCandidate `json:"recommendations"`
	Summary         engine.Summary           `json:"summary"`
	Persisted       bool                     `json:"persisted"`
	PersistedCount  int                      `json:"persistedCount"`
	ExecutionTimeMs int64                    `json:"executionTimeMs"`
}
