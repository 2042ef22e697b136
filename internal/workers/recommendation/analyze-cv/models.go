// internal/workers/recommendation/analyze-cv/models.go
package analyzecv

import "staffing-workers/internal/engine"

// Input variables read from the process instance.
type Input struct {
	CandidateID int    `json:"candidateId"`
	CVURL       string `json:"cvUrl"`
}

// Output variables published back to the process. Analysis carries the
// enrichment consumed downstream by the ranking step.
type Output struct {
	CandidateID     int                  `json:"candidateId"`
	Analysis        *engine.CVEnrichment `json:"cvAnalysis,omitempty"`
	AnalysisSuccess bool                 `json:"analysisSuccess"`
	ProjectsCount   int                  `json:"projectsCount"`
	WordCount       int                  `json:"wordCount"`
	CacheHit        bool                 `json:"cacheHit"`
	ExecutionTimeMs int64                `json:"executionTimeMs"`
}
