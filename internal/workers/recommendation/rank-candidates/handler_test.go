// internal/workers/recommendation/rank-candidates/handler_test.go
package rankcandidates

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "staffing-workers/internal/common/errors"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/validation"
	"staffing-workers/internal/engine"
)

func createTestConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Persist: true,
	}
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), logger.NewNoOpLogger(),
		engine.WithClock(func() time.Time {
			return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
		}))
	require.NoError(t, err)
	return eng
}

func intPtr(v int) *int { return &v }

func eligibleCandidate(id int, firstName, skills string) engine.Candidate {
	return engine.Candidate{
		ID:            id,
		FirstName:     firstName,
		LastName:      "Test",
		Email:         firstName + "@example.com",
		Skills:        skills,
		DepartmentID:  intPtr(7),
		EngagementEnd: "2025-01-10",
	}
}

func rankingInput(candidates ...engine.Candidate) *Input {
	return &Input{
		JobOfferID:     42,
		JobTitle:       "Backend Developer",
		RequiredSkills: "Python, SQL",
		DepartmentID:   7,
		Candidates:     candidates,
	}
}

func TestExecute_RanksAndPersists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE job_offer_recommendations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO job_offer_recommendations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO job_offer_recommendations").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	handler := NewHandler(createTestConfig(), newTestEngine(t), NewStore(db), logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), rankingInput(
		eligibleCandidate(1, "alice", "Python, SQL"),
		eligibleCandidate(2, "bob", "Python"),
	))
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 2)
	assert.Equal(t, 1, output.Recommendations[0].CandidateID)
	assert.Equal(t, 2, output.Summary.TotalCandidates)
	assert.True(t, output.Persisted)
	assert.Equal(t, 2, output.PersistedCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_PersistFailureDoesNotFailRanking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE job_offer_recommendations").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), newTestEngine(t), NewStore(db), logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), rankingInput(
		eligibleCandidate(1, "alice", "Python, SQL"),
	))
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 1)
	assert.False(t, output.Persisted)
	assert.Equal(t, 0, output.PersistedCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_MissingJobOfferSkipsPersistence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), newTestEngine(t), NewStore(db), logger.NewNoOpLogger())

	input := rankingInput(eligibleCandidate(1, "alice", "Python, SQL"))
	input.JobOfferID = 0

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, output.Persisted)

	// no database traffic at all
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DepartmentRequired(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestEngine(t), nil, logger.NewNoOpLogger())

	input := rankingInput()
	input.DepartmentID = 0

	_, err := handler.Execute(context.Background(), input)
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeDepartmentRequired, stdErr.Code)
}

func TestExecute_EmptyPoolReturnsEmptyResult(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestEngine(t), nil, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), rankingInput())
	require.NoError(t, err)
	assert.Empty(t, output.Recommendations)
	assert.Equal(t, 0, output.Summary.TotalCandidates)
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		valid bool
	}{
		{
			name: "valid payload",
			input: map[string]interface{}{
				"departmentId":   float64(7),
				"jobTitle":       "Backend Developer",
				"requiredSkills": "Python, SQL",
				"candidates":     []interface{}{},
			},
			valid: true,
		},
		{
			name:  "missing department",
			input: map[string]interface{}{"jobTitle": "Backend Developer"},
			valid: false,
		},
		{
			name: "department must be numeric",
			input: map[string]interface{}{
				"departmentId": "seven",
			},
			valid: false,
		},
		{
			name: "department below minimum",
			input: map[string]interface{}{
				"departmentId": float64(0),
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validation.ValidateInput(tt.input, inputSchema)
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.GetErrorMessages())
		})
	}
}
