package engine

import (
	"strings"
	"time"
)

// engagementDateLayouts are tried in order when parsing end dates. The
// pool repository emits the first layout; the others cover records that
// arrive via process variables from older systems.
var engagementDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// eligible applies both hard gates: department equality and engagement
// completion. A missing or unparsable end date makes the candidate
// ineligible; the filter errs toward exclusion, never toward completed.
func eligible(job JobOpening, c Candidate, now time.Time) bool {
	if c.DepartmentID == nil || *c.DepartmentID != job.DepartmentID {
		return false
	}
	return engagementCompleted(c.EngagementEnd, now)
}

// engagementCompleted reports whether the end date parses and is not in
// the future.
func engagementCompleted(endDate string, now time.Time) bool {
	endDate = strings.TrimSpace(endDate)
	if endDate == "" {
		return false
	}
	for _, layout := range engagementDateLayouts {
		if end, err := time.Parse(layout, endDate); err == nil {
			return !end.After(now)
		}
	}
	return false
}

// filterEligible narrows the pool before any scoring happens. In soft
// department mode only the completion gate applies; department match
// becomes a scoring signal instead.
func (e *Engine) filterEligible(job JobOpening, pool []Candidate) []Candidate {
	now := e.now()
	eligibleCandidates := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if e.cfg.DepartmentMode == DepartmentModeSoft {
			if engagementCompleted(c.EngagementEnd, now) {
				eligibleCandidates = append(eligibleCandidates, c)
			}
			continue
		}
		if eligible(job, c, now) {
			eligibleCandidates = append(eligibleCandidates, c)
		}
	}
	return eligibleCandidates
}
