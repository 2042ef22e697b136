package engine

import (
	"context"
	"math"
	"strings"

	"staffing-workers/internal/common/logger"
)

// emptySetFloor is returned when either skill set is empty: low enough
// to land under the rejection threshold, but never zero, so "no data"
// stays distinguishable from "no overlap".
const emptySetFloor = 0.1

// SkillSetSimilarity scores how well a candidate's extracted skills
// cover the job's required skills. Exact intersections weigh 0.8,
// related pairs 0.2, and a coverage bonus rewards breadth on top:
// broad-but-imperfect matches deliberately beat narrow-but-exact ones.
func (c *Config) SkillSetSimilarity(jobSkills, candidateSkills []string) float64 {
	if len(jobSkills) == 0 || len(candidateSkills) == 0 {
		return emptySetFloor
	}

	jobSet := make(map[string]struct{}, len(jobSkills))
	for _, s := range jobSkills {
		jobSet[s] = struct{}{}
	}

	exact := 0
	for _, s := range candidateSkills {
		if _, ok := jobSet[s]; ok {
			exact++
		}
	}

	// Every related pair counts, identical ones included: an exact match
	// contributes to both terms and to the coverage ratio below.
	related := 0
	for _, js := range jobSkills {
		for _, cs := range candidateSkills {
			if c.skillsRelated(js, cs) {
				related++
			}
		}
	}

	total := float64(len(jobSkills))
	score := 0.8*(float64(exact)/total) + 0.2*(float64(related)/total)

	coverage := float64(exact+related) / total
	switch {
	case coverage >= 1.0:
		score += 0.3
	case coverage >= 0.8:
		score += 0.25
	case coverage >= 0.6:
		score += 0.2
	case coverage >= 0.4:
		score += 0.1
	}

	return math.Min(score, 1.0)
}

// skillsRelated reports whether two normalized skills are substring
// related or co-members of one skill family.
func (c *Config) skillsRelated(a, b string) bool {
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	for _, family := range c.families {
		inA, inB := false, false
		for _, member := range family.members {
			if strings.Contains(a, member) {
				inA = true
			}
			if strings.Contains(b, member) {
				inB = true
			}
			if inA && inB {
				return true
			}
		}
	}
	return false
}

// TextSimilarity scores two free-text blobs into [0,1]. Implementations
// must treat empty or whitespace-only input as similarity 0, never as
// an error.
type TextSimilarity interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Lexical is the Jaccard word-overlap fallback strategy.
type Lexical struct{}

func (Lexical) Similarity(_ context.Context, a, b string) (float64, error) {
	return Jaccard(a, b), nil
}

// Jaccard computes intersection-over-union of the lowercase word sets.
// Symmetric; 0 when either side is empty.
func Jaccard(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	intersection := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			intersection++
		}
	}
	union := len(wa) + len(wb) - intersection
	return float64(intersection) / float64(union)
}

// Cosine is the term-frequency vector-space strategy, usable as an
// independently weighted signal for job-description-vs-profile text.
type Cosine struct{}

func (Cosine) Similarity(_ context.Context, a, b string) (float64, error) {
	return CosineTF(a, b), nil
}

// CosineTF computes cosine similarity over term-frequency vectors built
// from the lowercase word streams of both inputs.
func CosineTF(a, b string) float64 {
	ta := termFreq(a)
	tb := termFreq(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, fa := range ta {
		normA += fa * fa
		if fb, ok := tb[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range tb {
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return math.Max(dot/(math.Sqrt(normA)*math.Sqrt(normB)), 0)
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func termFreq(text string) map[string]float64 {
	words := strings.Fields(strings.ToLower(text))
	freq := make(map[string]float64, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}

// semanticWithFallback wraps an external provider: any provider error or
// out-of-range value silently degrades to the lexical strategy. One
// provider failure only affects the candidate being scored.
type semanticWithFallback struct {
	provider TextSimilarity
	fallback TextSimilarity
	log      logger.Logger
	onFall   func()
}

// NewSemantic builds a TextSimilarity that prefers the given provider
// and falls back to Jaccard on failure. onFallback may be nil; when set
// it is invoked once per degraded call (metrics hook).
func NewSemantic(provider TextSimilarity, log logger.Logger, onFallback func()) TextSimilarity {
	return &semanticWithFallback{
		provider: provider,
		fallback: Lexical{},
		log:      log,
		onFall:   onFallback,
	}
}

func (s *semanticWithFallback) Similarity(ctx context.Context, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, nil
	}
	sim, err := s.provider.Similarity(ctx, a, b)
	if err == nil && !math.IsNaN(sim) {
		return math.Min(math.Max(sim, 0), 1), nil
	}
	if err != nil {
		s.log.Warn("semantic similarity unavailable, falling back to lexical", map[string]interface{}{
			"error": err,
		})
	}
	if s.onFall != nil {
		s.onFall()
	}
	return s.fallback.Similarity(ctx, a, b)
}
