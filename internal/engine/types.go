package engine

import "time"

// JobOpening describes the position candidates are ranked against.
// DepartmentID is mandatory; a zero value rejects the whole request.
type JobOpening struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	RequiredSkills string `json:"requiredSkills"`
	DepartmentID   int    `json:"departmentId"`
}

// Candidate is one profile from the pool, already enriched by the
// data-access and CV-analysis collaborators. The engine never fetches
// anything itself.
type Candidate struct {
	ID              int            `json:"id"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email"`
	Skills          string         `json:"skills"`
	DepartmentID    *int           `json:"departmentId"`
	DepartmentName  string         `json:"departmentName,omitempty"`
	University      string         `json:"university,omitempty"`
	EngagementStart string         `json:"engagementStartDate,omitempty"`
	EngagementEnd   string         `json:"engagementEndDate,omitempty"`
	Status          string         `json:"status,omitempty"`
	Ratings         []RatingRecord `json:"ratings,omitempty"`
	Enrichment      *CVEnrichment  `json:"cvAnalysis,omitempty"`
}

// Evaluator roles that qualify for rating aggregation. Records from any
// other role are ignored.
const (
	EvaluatorTutor = "tutor"
	EvaluatorHR    = "hr"
)

// RatingRecord is one historical evaluation of a candidate. Status is
// informational only: draft, submitted, approved and rejected records
// all count equally.
type RatingRecord struct {
	Score         float64            `json:"score"`
	EvaluatorRole string             `json:"evaluatorRole"`
	Status        string             `json:"status,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	Criteria      map[string]float64 `json:"criteria,omitempty"`
}

// RatingAggregate is derived per candidate from the qualifying rating
// records. With no qualifying records the neutral default applies:
// average 3.0 (a midpoint, never zero), quality 0.3.
type RatingAggregate struct {
	Average    float64 `json:"averageRating"`
	Count      int     `json:"ratingCount"`
	HasRatings bool    `json:"hasRatings"`
	Quality    float64 `json:"qualityScore"`
}

// CVEnrichment carries the document-ingestion collaborator's output.
// All fields are optional enrichment; absence never fails scoring.
type CVEnrichment struct {
	ExtractedText   string  `json:"extractedText,omitempty"`
	ExtractedSkills string  `json:"extractedSkills,omitempty"`
	ExperienceYears int     `json:"experienceYears,omitempty"`
	EducationLevel  string  `json:"educationLevel,omitempty"`
	Quality         float64 `json:"qualityScore,omitempty"`
}

// ScoredCandidate is one ranked recommendation.
type ScoredCandidate struct {
	CandidateID      int      `json:"candidateId"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Skills           string   `json:"skills"`
	Department       string   `json:"department,omitempty"`
	University       string   `json:"university,omitempty"`
	EngagementPeriod string   `json:"engagementPeriod,omitempty"`
	Rating           float64  `json:"rating"`
	RatingCount      int      `json:"ratingCount"`
	HasRatings       bool     `json:"hasRatings"`
	RatingQuality    float64  `json:"ratingQuality"`
	RatingScore      float64  `json:"ratingScore"`
	SkillSimilarity  float64  `json:"skillSimilarity"`
	TextSimilarity   float64  `json:"textSimilarity"`
	CompositeScore   float64  `json:"compositeScore"`
	MatchReasons     []string `json:"matchReasons"`
	DepartmentMatch  bool     `json:"departmentMatch"`
	StageCompleted   bool     `json:"stageCompleted"`
}

// Summary reports pool-level counts for observability.
type Summary struct {
	TotalCandidates    int `json:"totalCandidates"`
	EligibleCandidates int `json:"eligibleCandidates"`
	Returned           int `json:"returned"`
}

// Result is the ordered recommendation list plus its summary.
type Result struct {
	Candidates []ScoredCandidate `json:"recommendations"`
	Summary    Summary           `json:"summary"`
}
