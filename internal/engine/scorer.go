package engine

import (
	"context"
	"fmt"
	"strings"
)

// subScores carries the intermediate per-candidate signals between the
// scorer, the threshold gate and the explainer.
type subScores struct {
	rating     float64
	skill      float64
	text       float64
	composite  float64
	aggregate  RatingAggregate
	excellence bool
	rejected   bool
}

// scoreCandidate computes all sub-scores and the thresholded composite
// for one eligible candidate. jobSkills is the pre-extracted required
// skill set, shared across the pool.
func (e *Engine) scoreCandidate(ctx context.Context, job JobOpening, c Candidate, jobSkills []string) (subScores, error) {
	agg := AggregateRatings(c.Ratings)

	// Rating signal: normalized average with a count-based confidence
	// multiplier, or the fixed penalty when no history exists.
	ratingScore := e.cfg.NoRatingPenalty
	if agg.HasRatings {
		ratingScore = agg.Average / ratingScale
		switch {
		case agg.Count >= 3:
			ratingScore *= 1.1
		case agg.Count == 2:
			ratingScore *= 1.05
		}
	}

	// Skill signal: penalty floor on an empty raw field, otherwise the
	// overlap score over extracted sets.
	skillScore := e.cfg.MissingSkillsFloor
	if !emptySkillField(c.Skills) {
		candidateSkills, kind := e.cfg.ExtractSkills(candidateSkillText(c))
		if kind == ExtractOK {
			skillScore = e.cfg.SkillSetSimilarity(jobSkills, candidateSkills)
		}
	}

	// Text signal: job title+description against the candidate profile
	// text. Provider failures surface as errors only from misbehaving
	// custom strategies; the built-in ones never fail.
	jobText := strings.TrimSpace(job.Title + " " + job.Description)
	textScore, err := e.text.Similarity(ctx, jobText, candidateProfileText(c))
	if err != nil {
		return subScores{}, fmt.Errorf("text similarity for candidate %d: %w", c.ID, err)
	}

	composite := e.cfg.Weights.Rating*ratingScore +
		e.cfg.Weights.Skill*skillScore +
		e.cfg.Weights.Text*textScore

	excellence := agg.Average >= e.cfg.ExcellenceRating && skillScore > e.cfg.ExcellenceSkill
	if excellence {
		composite += e.cfg.ExcellenceBonus
	}

	if e.cfg.DepartmentMode == DepartmentModeSoft {
		composite += e.softAdjustments(job, c)
	}

	composite = clamp01(composite)

	rejected := skillScore < e.cfg.MinSkillSimilarity || composite < e.cfg.MinCompositeScore

	return subScores{
		rating:     clamp01(ratingScore),
		skill:      clamp01(skillScore),
		text:       clamp01(textScore),
		composite:  composite,
		aggregate:  agg,
		excellence: excellence,
		rejected:   rejected,
	}, nil
}

// softAdjustments applies the broader-signal deployment mode bonuses:
// exact department match and availability-status keyword detection.
func (e *Engine) softAdjustments(job JobOpening, c Candidate) float64 {
	adjustment := 0.0
	if c.DepartmentID != nil && *c.DepartmentID == job.DepartmentID {
		adjustment += e.cfg.DepartmentBonus
	}

	// Negative keywords must be checked first: "unavailable" and
	// "indisponible" contain their positive counterparts as substrings.
	status := strings.ToLower(c.Status)
	switch {
	case strings.Contains(status, "unavailable") || strings.Contains(status, "busy") ||
		strings.Contains(status, "indisponible") || strings.Contains(status, "occupé"):
		adjustment -= e.cfg.AvailabilityBonus
	case strings.Contains(status, "available") || strings.Contains(status, "active") ||
		strings.Contains(status, "disponible") || strings.Contains(status, "actif"):
		adjustment += e.cfg.AvailabilityBonus
	}
	return adjustment
}

// candidateSkillText is the raw text the skill extractor works on. CV
// analysis results widen the declared skill field when present.
func candidateSkillText(c Candidate) string {
	if c.Enrichment != nil && c.Enrichment.ExtractedSkills != "" {
		return c.Skills + " " + c.Enrichment.ExtractedSkills
	}
	return c.Skills
}

// candidateProfileText is the candidate side of the free-text
// comparison: CV-derived text when available, otherwise declared skills
// plus department.
func candidateProfileText(c Candidate) string {
	if c.Enrichment != nil && strings.TrimSpace(c.Enrichment.ExtractedText) != "" {
		return c.Enrichment.ExtractedText
	}
	return strings.TrimSpace(c.Skills + " " + c.DepartmentName)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
