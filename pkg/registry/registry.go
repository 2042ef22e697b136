// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"staffing-workers/internal/common/validation"
)

// LoadRegistry reads an activity registry from a JSON file, for
// deployments that override the built-in catalogue.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks registry consistency at startup: naming convention,
// unique task types, declared error codes and well-formed JSON schemas.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]struct{}, len(r.Activities))
	for _, a := range r.Activities {
		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			return fmt.Errorf("activity %q: %w", a.ID, err)
		}
		if _, dup := seen[a.TaskType]; dup {
			return fmt.Errorf("activity %q: duplicate task type %q", a.ID, a.TaskType)
		}
		seen[a.TaskType] = struct{}{}
		if len(a.ErrorCodes) == 0 {
			return fmt.Errorf("activity %q: no error codes declared", a.ID)
		}
		if err := validateSchema(a.ID, "inputSchema", a.InputSchema); err != nil {
			return err
		}
		if err := validateSchema(a.ID, "outputSchema", a.OutputSchema); err != nil {
			return err
		}
	}
	return nil
}

func validateSchema(activityID, name string, schema map[string]interface{}) error {
	if schema == nil {
		return fmt.Errorf("activity %q: missing %s", activityID, name)
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return fmt.Errorf("activity %q: invalid %s: %w", activityID, name, err)
	}
	return nil
}

// BuiltIn returns the catalogue of activities this fleet implements.
func BuiltIn() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2025-08-20",
		Activities: []Activity{
			{
				ID:          "recommendation.pool.fetch-candidates",
				DisplayName: "Fetch Candidate Pool",
				Description: "Loads candidates and rating history for a department from Postgres, with Redis-cached ratings.",
				Category:    "recommendation",
				TaskType:    "recommendation.pool.fetch-candidates",
				InputSchema: objectSchema(map[string]interface{}{
					"departmentId": map[string]interface{}{"type": "integer", "minimum": 1},
					"role":         map[string]interface{}{"type": "string"},
				}, "departmentId"),
				OutputSchema: objectSchema(map[string]interface{}{
					"candidates":      map[string]interface{}{"type": "array"},
					"totalCandidates": map[string]interface{}{"type": "integer"},
					"ratedCandidates": map[string]interface{}{"type": "integer"},
				}, "candidates"),
				ErrorCodes: []string{"DEPARTMENT_REQUIRED", "POOL_FETCH_FAILED", "QUERY_TIMEOUT"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{"candidate-recommendation"},
				Tags:       []string{"postgres", "redis"},
			},
			{
				ID:          "recommendation.cv.analyze",
				DisplayName: "Analyze CV",
				Description: "Downloads a CV, extracts text and derives skills, experience, education and quality signals.",
				Category:    "recommendation",
				TaskType:    "recommendation.cv.analyze",
				InputSchema: objectSchema(map[string]interface{}{
					"candidateId": map[string]interface{}{"type": "integer"},
					"cvUrl":       map[string]interface{}{"type": "string"},
				}, "candidateId"),
				OutputSchema: objectSchema(map[string]interface{}{
					"cvAnalysis":      map[string]interface{}{"type": "object"},
					"analysisSuccess": map[string]interface{}{"type": "boolean"},
				}, "analysisSuccess"),
				ErrorCodes: []string{"CV_DOWNLOAD_FAILED", "CV_UNREADABLE"},
				Timeout:    "45s",
				Retries:    2,
				Workflows:  []string{"candidate-recommendation"},
				Tags:       []string{"http", "redis"},
			},
			{
				ID:          "recommendation.ranking.rank-candidates",
				DisplayName: "Rank Candidates",
				Description: "Scores and orders a candidate pool against a job opening, persisting the shortlist.",
				Category:    "recommendation",
				TaskType:    "recommendation.ranking.rank-candidates",
				InputSchema: objectSchema(map[string]interface{}{
					"jobOfferId":     map[string]interface{}{"type": "integer"},
					"jobTitle":       map[string]interface{}{"type": "string"},
					"jobDescription": map[string]interface{}{"type": "string"},
					"requiredSkills": map[string]interface{}{"type": "string"},
					"departmentId":   map[string]interface{}{"type": "integer", "minimum": 1},
					"topN":           map[string]interface{}{"type": "integer", "minimum": 0},
					"candidates":     map[string]interface{}{"type": "array"},
				}, "departmentId"),
				OutputSchema: objectSchema(map[string]interface{}{
					"recommendations": map[string]interface{}{"type": "array"},
					"summary":         map[string]interface{}{"type": "object"},
					"persisted":       map[string]interface{}{"type": "boolean"},
				}, "recommendations"),
				ErrorCodes: []string{"DEPARTMENT_REQUIRED", "INVALID_JOB_PAYLOAD", "RANKING_FAILED"},
				Timeout:    "60s",
				Retries:    1,
				Workflows:  []string{"candidate-recommendation"},
				Tags:       []string{"engine", "postgres"},
			},
			{
				ID:          "communication.notify.recommendations",
				DisplayName: "Notify Recommendations",
				Description: "Emails the generated shortlist to the recruiter and pages them by SMS for strong matches.",
				Category:    "communication",
				TaskType:    "communication.notify.recommendations",
				InputSchema: objectSchema(map[string]interface{}{
					"jobOfferId":      map[string]interface{}{"type": "integer"},
					"jobTitle":        map[string]interface{}{"type": "string"},
					"recipientEmail":  map[string]interface{}{"type": "string"},
					"recipientPhone":  map[string]interface{}{"type": "string"},
					"recommendations": map[string]interface{}{"type": "array"},
				}, "recipientEmail"),
				OutputSchema: objectSchema(map[string]interface{}{
					"notificationId": map[string]interface{}{"type": "string"},
					"status":         map[string]interface{}{"type": "string"},
				}, "status"),
				ErrorCodes: []string{"NOTIFICATION_SEND_FAILED"},
				Timeout:    "30s",
				Retries:    3,
				Workflows:  []string{"candidate-recommendation"},
				Tags:       []string{"ses", "sns"},
			},
		},
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
