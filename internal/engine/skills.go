package engine

import (
	"regexp"
	"strings"
)

// ExtractKind classifies the outcome of a skill extraction so callers
// can distinguish "no data" from "data that yielded nothing" instead of
// substituting defaults deep inside scoring.
type ExtractKind int

const (
	ExtractOK ExtractKind = iota
	ExtractEmpty
	ExtractMalformed
)

var (
	skillSeparators = regexp.MustCompile(`[,;|\n\r\t\-•·/\\()\[\]{}+=<>"']+`)
	nonWordChars    = regexp.MustCompile(`[^\w\s.\-]`)
	multiSpace      = regexp.MustCompile(`\s+`)
	digitsOnly      = regexp.MustCompile(`^\d+$`)
)

// NormalizeSkill maps one lowercase, trimmed skill token to its
// canonical form. Lookup order: exact synonym, substring containment in
// table order, identity. Total over strings; never fails.
func (c *Config) NormalizeSkill(skill string) string {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return skill
	}
	if canonical, ok := c.exact[skill]; ok {
		return canonical
	}
	for _, entry := range c.synonyms {
		if strings.Contains(skill, entry.variant) || strings.Contains(entry.variant, skill) {
			return entry.canonical
		}
	}
	return skill
}

// ExtractSkills tokenizes free text into a bounded, de-duplicated set of
// normalized skill tokens. Empty input yields (nil, ExtractEmpty);
// non-empty input that produces no usable token yields ExtractMalformed.
func (c *Config) ExtractSkills(text string) ([]string, ExtractKind) {
	if strings.TrimSpace(text) == "" {
		return nil, ExtractEmpty
	}

	fragments := skillSeparators.Split(strings.ToLower(text), -1)

	seen := make(map[string]struct{})
	var skills []string
	for _, fragment := range fragments {
		fragment = nonWordChars.ReplaceAllString(fragment, " ")
		fragment = strings.TrimSpace(multiSpace.ReplaceAllString(fragment, " "))

		if !usableFragment(fragment, c.stops) {
			continue
		}

		normalized := c.NormalizeSkill(fragment)
		if _, stop := c.stops[normalized]; stop {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		skills = append(skills, normalized)
		if len(skills) >= c.MaxSkills {
			break
		}
	}

	if len(skills) == 0 {
		return nil, ExtractMalformed
	}
	return skills, ExtractOK
}

// usableFragment applies the noise filters: minimum length, stop words,
// pure numbers, fragments over four words or fifty characters, URLs.
func usableFragment(fragment string, stops map[string]struct{}) bool {
	if len(fragment) < 2 || len(fragment) > 50 {
		return false
	}
	if _, stop := stops[fragment]; stop {
		return false
	}
	if digitsOnly.MatchString(fragment) {
		return false
	}
	if len(strings.Fields(fragment)) > 4 {
		return false
	}
	if strings.HasPrefix(fragment, "http") {
		return false
	}
	return true
}

// emptySkillField reports whether a raw skill field carries no usable
// data ("", "none", "null" as stored by upstream systems).
func emptySkillField(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "null":
		return true
	}
	return false
}
