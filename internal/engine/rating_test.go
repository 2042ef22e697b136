package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateRatings(t *testing.T) {
	tests := []struct {
		name     string
		records  []RatingRecord
		expected RatingAggregate
	}{
		{
			name:     "no records yields neutral aggregate",
			records:  nil,
			expected: RatingAggregate{Average: 3.0, Count: 0, HasRatings: false, Quality: 0.3},
		},
		{
			name: "single tutor rating",
			records: []RatingRecord{
				{Score: 4.0, EvaluatorRole: "tutor"},
			},
			expected: RatingAggregate{
				Average:    4.0,
				Count:      1,
				HasRatings: true,
				Quality:    0.3*(1.0/3.0) + 0.7*(4.0/5.0),
			},
		},
		{
			name: "tutor and hr averaged",
			records: []RatingRecord{
				{Score: 5.0, EvaluatorRole: "tutor"},
				{Score: 4.0, EvaluatorRole: "hr"},
			},
			expected: RatingAggregate{
				Average:    4.5,
				Count:      2,
				HasRatings: true,
				Quality:    0.3*(2.0/3.0) + 0.7*(4.5/5.0),
			},
		},
		{
			name: "unknown evaluator roles are skipped",
			records: []RatingRecord{
				{Score: 1.0, EvaluatorRole: "manager"},
				{Score: 2.0, EvaluatorRole: "peer"},
				{Score: 5.0, EvaluatorRole: "tutor"},
			},
			expected: RatingAggregate{
				Average:    5.0,
				Count:      1,
				HasRatings: true,
				Quality:    0.3*(1.0/3.0) + 0.7*1.0,
			},
		},
		{
			name: "only unknown roles falls back to neutral",
			records: []RatingRecord{
				{Score: 5.0, EvaluatorRole: "manager"},
			},
			expected: RatingAggregate{Average: 3.0, Count: 0, HasRatings: false, Quality: 0.3},
		},
		{
			name: "french role names qualify",
			records: []RatingRecord{
				{Score: 4.0, EvaluatorRole: "Tuteur"},
				{Score: 3.0, EvaluatorRole: "RH"},
			},
			expected: RatingAggregate{
				Average:    3.5,
				Count:      2,
				HasRatings: true,
				Quality:    0.3*(2.0/3.0) + 0.7*(3.5/5.0),
			},
		},
		{
			name: "draft records count like approved ones",
			records: []RatingRecord{
				{Score: 4.0, EvaluatorRole: "tutor", Status: "draft"},
				{Score: 2.0, EvaluatorRole: "hr", Status: "approved"},
			},
			expected: RatingAggregate{
				Average:    3.0,
				Count:      2,
				HasRatings: true,
				Quality:    0.3*(2.0/3.0) + 0.7*(3.0/5.0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateRatings(tt.records)
			assert.InDelta(t, tt.expected.Average, got.Average, 1e-9)
			assert.Equal(t, tt.expected.Count, got.Count)
			assert.Equal(t, tt.expected.HasRatings, got.HasRatings)
			assert.InDelta(t, tt.expected.Quality, got.Quality, 1e-9)
		})
	}
}

func TestRatingQuality_VolumeSaturatesAtThree(t *testing.T) {
	// Beyond three qualifying reviews the count component is capped, so
	// quality only moves with the average.
	three := ratingQuality(3, 4.0)
	ten := ratingQuality(10, 4.0)
	assert.Equal(t, three, ten)
	assert.InDelta(t, 0.3+0.7*0.8, three, 1e-9)
}
