package engine

import "fmt"

// maxReasons bounds the explanation list per recommendation. Every
// tier plus both gate confirmations and the excellence entry fit.
const maxReasons = 7

// matchReasons turns the sub-scores into an ordered list of short
// human-readable justifications: rating tier, skill tier, composite
// tier, evaluation-depth note, fixed gate confirmations, then the
// excellence entry. It never fails; any panic collapses to a single
// generic reason.
func matchReasons(scores subScores) (reasons []string) {
	defer func() {
		if r := recover(); r != nil {
			reasons = []string{"candidate matched the opening"}
		}
	}()

	agg := scores.aggregate

	switch {
	case agg.Count == 0:
		reasons = append(reasons, "no evaluations on record")
	case agg.Average >= 4.5:
		reasons = append(reasons, fmt.Sprintf("outstanding evaluations (%.1f/5 across %d reviews)", agg.Average, agg.Count))
	case agg.Average >= 4.0:
		reasons = append(reasons, fmt.Sprintf("strong evaluations (%.1f/5 across %d reviews)", agg.Average, agg.Count))
	case agg.Average >= 3.5:
		reasons = append(reasons, fmt.Sprintf("good evaluations (%.1f/5 across %d reviews)", agg.Average, agg.Count))
	default:
		reasons = append(reasons, fmt.Sprintf("average evaluations (%.1f/5 across %d reviews)", agg.Average, agg.Count))
	}

	switch {
	case scores.skill > 0.8:
		reasons = append(reasons, "required skills fully covered")
	case scores.skill > 0.6:
		reasons = append(reasons, "excellent skill match")
	case scores.skill > 0.4:
		reasons = append(reasons, "good technical skill match")
	case scores.skill > 0.2:
		reasons = append(reasons, "partial skill overlap")
	default:
		reasons = append(reasons, "limited skill overlap")
	}

	switch {
	case scores.composite >= 0.8:
		reasons = append(reasons, "exceptional overall fit")
	case scores.composite >= 0.6:
		reasons = append(reasons, "very good overall fit")
	case scores.composite >= 0.4:
		reasons = append(reasons, "good overall fit")
	}

	if agg.Count >= 3 {
		reasons = append(reasons, "multiple evaluations on record")
	}

	reasons = append(reasons, "engagement completed", "department match")

	if scores.excellence {
		reasons = append(reasons, "top performer with matching skills")
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}
