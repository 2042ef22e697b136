// internal/workers/recommendation/fetch-candidate-pool/models.go
package fetchcandidatepool

import "staffing-workers/internal/engine"

// Input variables read from the process instance.
type Input struct {
	DepartmentID int    `json:"departmentId"`
	Role         string `json:"role,omitempty"`
}

// Output variables published back to the process.
type Output struct {
	Candidates      []engine.Candidate `json:"candidates"`
	TotalCandidates int                `json:"totalCandidates"`
	RatedCandidates int                `json:"ratedCandidates"`
	ExecutionTimeMs int64              `json:"executionTimeMs"`
}
