// internal/workers/recommendation/rank-candidates/store.go
package rankcandidates

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"staffing-workers/internal/engine"
)

// Store persists generated recommendations. Rows are denormalized so
// the hiring UI can display a shortlist without joining back to users.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const deactivateRecommendationsQuery = `
	UPDATE job_offer_recommendations
	SET is_active = false, updated_at = $2
	WHERE job_offer_id = $1 AND is_active = true`

const insertRecommendationQuery = `
	INSERT INTO job_offer_recommendations (
		job_offer_id, stagiaire_id, stagiaire_email, stagiaire_name,
		skills, department, university,
		composite_score, skill_similarity, text_similarity, department_match,
		recommendation_rank, match_reasons, generated_at, is_active, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, true, $14)`

// Save replaces the active recommendation set for a job offer. Previous
// rows are soft-deleted so tracking flags on them survive.
func (s *Store) Save(ctx context.Context, jobOfferID int, recs []engine.ScoredCandidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, deactivateRecommendationsQuery, jobOfferID, now); err != nil {
		return fmt.Errorf("deactivate previous recommendations: %w", err)
	}

	for i, rec := range recs {
		_, err := tx.ExecContext(ctx, insertRecommendationQuery,
			jobOfferID, rec.CandidateID, rec.Email, rec.Name,
			rec.Skills, rec.Department, rec.University,
			rec.CompositeScore, rec.SkillSimilarity, rec.TextSimilarity, rec.DepartmentMatch,
			i+1, strings.Join(rec.MatchReasons, "; "), now)
		if err != nil {
			return fmt.Errorf("insert recommendation rank %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
