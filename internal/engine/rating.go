package engine

import "strings"

// ratingScale is the maximum evaluation score. Averages are always
// normalized against it before entering the composite.
const ratingScale = 5.0

// neutralAggregate applies when a candidate has no qualifying records:
// a 3.0 midpoint average so absence of history costs only the fixed
// penalty, and a 0.3 quality floor.
var neutralAggregate = RatingAggregate{
	Average:    3.0,
	Count:      0,
	HasRatings: false,
	Quality:    0.3,
}

// AggregateRatings reduces a candidate's rating history to one
// aggregate. Only tutor and HR evaluations qualify; record status is
// ignored (drafts count the same as approved records).
func AggregateRatings(records []RatingRecord) RatingAggregate {
	var sum float64
	count := 0
	for _, r := range records {
		if !qualifyingEvaluator(r.EvaluatorRole) {
			continue
		}
		sum += r.Score
		count++
	}

	if count == 0 {
		return neutralAggregate
	}

	average := sum / float64(count)
	return RatingAggregate{
		Average:    average,
		Count:      count,
		HasRatings: true,
		Quality:    ratingQuality(count, average),
	}
}

// qualifyingEvaluator accepts the two recognized evaluator categories,
// including the French role names upstream systems still emit.
func qualifyingEvaluator(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case EvaluatorTutor, "tuteur", EvaluatorHR, "rh":
		return true
	}
	return false
}

// ratingQuality rewards both volume and magnitude, weighted toward
// magnitude: 0.3·min(count/3, 1) + 0.7·(average/5).
func ratingQuality(count int, average float64) float64 {
	countScore := float64(count) / 3.0
	if countScore > 1.0 {
		countScore = 1.0
	}
	return 0.3*countScore + 0.7*(average/ratingScale)
}
