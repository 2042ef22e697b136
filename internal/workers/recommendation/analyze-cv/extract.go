// internal/workers/recommendation/analyze-cv/extract.go
package analyzecv

import (
	"regexp"
	"strconv"
	"strings"
)

// Education levels reported to the process. The scale only expresses
// how much academic signal the document carries, not a credential check.
const (
	EducationUnknown      = "Inconnu"
	EducationIntermediate = "Intermédiaire"
	EducationHigher       = "Supérieure"
)

const (
	minUsableTextLength = 50
	maxProjectsCounted  = 10
	maxSkillsExtracted  = 20
)

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:ans?|years?)\s*(?:d'|of)?\s*(?:experience|expérience)`),
	regexp.MustCompile(`(?i)(?:experience|expérience).*?(\d+)\s*(?:ans?|years?)`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:ans?|years?)`),
}

var educationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:master|m[12]|msc|ma|diplôme|degree|bachelor|licence|l[123]|bts|dut)`),
	regexp.MustCompile(`(?i)(?:université|university|école|school|institut|college)`),
	regexp.MustCompile(`(?i)(?:informatique|computer|engineering|ingénieur|développement|development)`),
}

var projectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:projet|project|application|app|site|website|système|system)`),
	regexp.MustCompile(`(?i)(?:développé|developed|créé|created|réalisé|built)`),
	regexp.MustCompile(`(?i)(?:github|git|portfolio)`),
}

var skillSectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:compétences|skills|technologies)[\s:]*([^\n\r]+)`),
	regexp.MustCompile(`(?i)(?:langages|languages)[\s:]*([^\n\r]+)`),
	regexp.MustCompile(`(?i)(?:frameworks?|outils|tools)[\s:]*([^\n\r]+)`),
	regexp.MustCompile(`(?i)(?:certifications?)[\s:]*([^\n\r]+)`),
}

var techSkills = []string{
	"python", "java", "javascript", "typescript", "react", "angular", "vue",
	"node", "express", "django", "flask", "spring", "laravel", "php",
	"sql", "mysql", "postgresql", "mongodb", "redis", "html", "css",
	"docker", "kubernetes", "aws", "azure", "git", "linux", "windows",
	"figma", "photoshop", "illustrator", "sketch", "xd",
}

// Soft-skill fillers that say nothing about technical fit.
var genericSkillWords = map[string]struct{}{
	"travail": {}, "équipe": {}, "communication": {}, "organisation": {},
	"autonomie": {}, "rigueur": {}, "motivation": {}, "dynamique": {},
	"polyvalent": {}, "adaptable": {},
}

// Analysis is the raw outcome of the content heuristics before it is
// folded into the process output.
type Analysis struct {
	Skills          []string
	ExperienceYears int
	EducationLevel  string
	ProjectsCount   int
	Quality         float64
	WordCount       int
	Success         bool
}

// analyzeContent derives structured signals from extracted document text.
// Documents under 50 usable characters are treated as unreadable noise
// and get the floor quality of 0.1.
func analyzeContent(text string) Analysis {
	if len(strings.TrimSpace(text)) < minUsableTextLength {
		return Analysis{
			EducationLevel: EducationUnknown,
			Quality:        0.1,
		}
	}

	lower := strings.ToLower(text)

	years := extractExperienceYears(lower)
	eduScore := 0
	for _, p := range educationPatterns {
		if p.MatchString(lower) {
			eduScore++
		}
	}
	level := EducationUnknown
	switch {
	case eduScore >= 2:
		level = EducationHigher
	case eduScore >= 1:
		level = EducationIntermediate
	}

	projects := 0
	for _, p := range projectPatterns {
		projects += len(p.FindAllString(lower, -1))
	}
	if projects > maxProjectsCounted {
		projects = maxProjectsCounted
	}

	skills := extractSkills(text)

	return Analysis{
		Skills:          skills,
		ExperienceYears: years,
		EducationLevel:  level,
		ProjectsCount:   projects,
		Quality:         qualityScore(text, years, eduScore, projects, len(skills)),
		WordCount:       len(strings.Fields(text)),
		Success:         true,
	}
}

// extractExperienceYears keeps the largest number any pattern matched.
// Resumes often state the same figure several ways, the max is the
// least pessimistic reading.
func extractExperienceYears(lower string) int {
	years := 0
	for _, p := range experiencePatterns {
		for _, m := range p.FindAllStringSubmatch(lower, -1) {
			if len(m) < 2 {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil && n > years {
				years = n
			}
		}
	}
	return years
}

var skillSeparators = regexp.MustCompile(`[,;|\n\r\t\-•·/\\()\[\]{}+=<>"']+`)

// extractSkills scans the whole document plus any labelled skill
// sections for known technical terms.
func extractSkills(text string) []string {
	found := basicSkills(text)
	for _, p := range skillSectionPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 {
				found = append(found, basicSkills(m[1])...)
			}
		}
	}

	seen := make(map[string]struct{}, len(found))
	var unique []string
	for _, s := range found {
		if _, generic := genericSkillWords[s]; generic || len(s) <= 2 {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
		if len(unique) == maxSkillsExtracted {
			break
		}
	}
	return unique
}

func basicSkills(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})
	var found []string
	add := func(s string) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			found = append(found, s)
		}
	}

	for _, skill := range techSkills {
		if strings.Contains(lower, skill) {
			add(skill)
		}
	}

	for _, word := range skillSeparators.Split(lower, -1) {
		word = strings.TrimSpace(word)
		if len(word) < 2 || isStopWord(word) || isAllDigits(word) {
			continue
		}
		for _, tech := range techSkills {
			if strings.Contains(word, tech) {
				add(word)
				break
			}
		}
	}
	return found
}

func isStopWord(w string) bool {
	switch w {
	case "et", "de", "la", "le", "du", "des", "avec", "pour":
		return true
	}
	return false
}

func isAllDigits(w string) bool {
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(w) > 0
}

// qualityScore weighs length, experience, education, projects and skill
// count into [0.1, 1]. Both very short and very long documents score
// below 1 on the length component.
func qualityScore(text string, years, eduScore, projects, skillCount int) float64 {
	words := len(strings.Fields(text))
	lengthScore := 1.0
	switch {
	case words < 100:
		lengthScore = float64(words) / 100
	case words > 1000:
		lengthScore = 1000 / float64(words)
	}

	expScore := minf(float64(years)/5, 1)
	eduComponent := minf(float64(eduScore)/3, 1)
	projScore := minf(float64(projects)/5, 1)
	skillScore := minf(float64(skillCount)/10, 1)

	q := lengthScore*0.2 + expScore*0.3 + eduComponent*0.2 + projScore*0.15 + skillScore*0.15
	if q < 0.1 {
		return 0.1
	}
	if q > 1 {
		return 1
	}
	return q
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
