// internal/workers/recommendation/fetch-candidate-pool/repository.go
package fetchcandidatepool

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"staffing-workers/internal/engine"
)

// Repository loads the candidate pool and rating history from Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const candidatesByDepartmentQuery = `
	SELECT u.id, u.first_name, u.last_name, u.email,
	       COALESCE(u.skills, ''), u.department_id,
	       COALESCE(d.name, ''), COALESCE(un.name, ''),
	       COALESCE(to_char(u.engagement_start_date, 'YYYY-MM-DD'), ''),
	       COALESCE(to_char(u.engagement_end_date, 'YYYY-MM-DD'), ''),
	       COALESCE(u.status, '')
	FROM users u
	LEFT JOIN departments d ON d.id = u.department_id
	LEFT JOIN universities un ON un.id = u.university_id
	WHERE LOWER(u.role) = LOWER($1) AND u.department_id = $2
	ORDER BY u.id`

const ratingsByCandidateQuery = `
	SELECT r.score, COALESCE(r.evaluator_role, ''), COALESCE(r.status, ''), r.created_at
	FROM ratings r
	WHERE r.evaluated_user_id = $1
	  AND LOWER(r.evaluator_role) IN ('tutor', 'tuteur', 'hr', 'rh')
	ORDER BY r.created_at DESC`

// FetchCandidates returns every candidate with the given role attached to
// the department. Ratings are loaded separately, the rows here carry the
// profile only.
func (r *Repository) FetchCandidates(ctx context.Context, role string, departmentID int) ([]engine.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, candidatesByDepartmentQuery, role, departmentID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []engine.Candidate
	for rows.Next() {
		var c engine.Candidate
		var deptID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email,
			&c.Skills, &deptID, &c.DepartmentName, &c.University,
			&c.EngagementStart, &c.EngagementEnd, &c.Status); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		if deptID.Valid {
			id := int(deptID.Int64)
			c.DepartmentID = &id
		}
		c.Skills = strings.TrimSpace(c.Skills)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}
	return candidates, nil
}

// FetchRatings returns the qualifying rating history for one candidate,
// newest first. Only tutor and HR evaluations qualify, the filter also
// accepts the French role spellings.
func (r *Repository) FetchRatings(ctx context.Context, candidateID int) ([]engine.RatingRecord, error) {
	rows, err := r.db.QueryContext(ctx, ratingsByCandidateQuery, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query ratings for candidate %d: %w", candidateID, err)
	}
	defer rows.Close()

	var ratings []engine.RatingRecord
	for rows.Next() {
		var rec engine.RatingRecord
		if err := rows.Scan(&rec.Score, &rec.EvaluatorRole, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}
	return ratings, nil
}
