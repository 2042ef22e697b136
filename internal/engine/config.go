package engine

import "fmt"

// DepartmentMode selects whether the department check is a hard filter
// or a soft scoring signal.
const (
	DepartmentModeHard = "hard"
	DepartmentModeSoft = "soft"
)

// Weights is the fixed composite weight triple. Ratings dominate because
// they reflect verified past performance over self-reported skills.
type Weights struct {
	Rating float64 `mapstructure:"rating"`
	Skill  float64 `mapstructure:"skill"`
	Text   float64 `mapstructure:"text"`
}

// Config holds every tunable of the ranking engine. It is built once at
// startup and treated as immutable afterwards; the engine never mutates
// it and a single Config may back any number of concurrent rankings.
type Config struct {
	Weights            Weights `mapstructure:"weights"`
	MinSkillSimilarity float64 `mapstructure:"min_skill_similarity"`
	MinCompositeScore  float64 `mapstructure:"min_composite_score"`
	NoRatingPenalty    float64 `mapstructure:"no_rating_penalty"`
	MissingSkillsFloor float64 `mapstructure:"missing_skills_floor"`
	ExcellenceBonus    float64 `mapstructure:"excellence_bonus"`
	ExcellenceRating   float64 `mapstructure:"excellence_rating"`
	ExcellenceSkill    float64 `mapstructure:"excellence_skill"`
	DepartmentMode     string  `mapstructure:"department_mode"`
	DepartmentBonus    float64 `mapstructure:"department_bonus"`
	AvailabilityBonus  float64 `mapstructure:"availability_bonus"`
	TopN               int     `mapstructure:"top_n"`
	MaxSkills          int     `mapstructure:"max_skills"`

	synonyms []synonymEntry
	families []skillFamily
	exact    map[string]string
	stops    map[string]struct{}
}

type synonymEntry struct {
	variant   string
	canonical string
}

type skillFamily struct {
	name    string
	members []string
}

// DefaultConfig returns the canonical engine configuration: 60/30/10
// weights, the 0.2 skill floor and 0.3 composite floor, hard department
// filtering, and the built-in synonym and family tables.
func DefaultConfig() Config {
	cfg := Config{
		Weights:            Weights{Rating: 0.6, Skill: 0.3, Text: 0.1},
		MinSkillSimilarity: 0.2,
		MinCompositeScore:  0.3,
		NoRatingPenalty:    0.4,
		MissingSkillsFloor: 0.1,
		ExcellenceBonus:    0.15,
		ExcellenceRating:   4.0,
		ExcellenceSkill:    0.5,
		DepartmentMode:     DepartmentModeHard,
		DepartmentBonus:    0.2,
		AvailabilityBonus:  0.1,
		TopN:               10,
		MaxSkills:          15,
	}
	cfg.synonyms = defaultSynonyms()
	cfg.families = defaultFamilies()
	cfg.buildIndexes()
	return cfg
}

// buildIndexes derives the exact-match synonym index and the stop-word
// set from the ordered tables.
func (c *Config) buildIndexes() {
	c.exact = make(map[string]string, len(c.synonyms))
	for _, s := range c.synonyms {
		c.exact[s.variant] = s.canonical
	}
	c.stops = make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		c.stops[w] = struct{}{}
	}
}

// Validate checks the configuration invariants that scoring relies on.
func (c *Config) Validate() error {
	sum := c.Weights.Rating + c.Weights.Skill + c.Weights.Text
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("composite weights must sum to 1.0, got %.3f", sum)
	}
	if c.MinSkillSimilarity < 0 || c.MinSkillSimilarity > 1 {
		return fmt.Errorf("min_skill_similarity out of range: %.3f", c.MinSkillSimilarity)
	}
	if c.MinCompositeScore < 0 || c.MinCompositeScore > 1 {
		return fmt.Errorf("min_composite_score out of range: %.3f", c.MinCompositeScore)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be >= 1, got %d", c.TopN)
	}
	if c.MaxSkills < 1 {
		return fmt.Errorf("max_skills must be >= 1, got %d", c.MaxSkills)
	}
	if c.DepartmentMode != DepartmentModeHard && c.DepartmentMode != DepartmentModeSoft {
		return fmt.Errorf("unknown department_mode %q", c.DepartmentMode)
	}
	if len(c.exact) == 0 {
		return fmt.Errorf("synonym table not initialized")
	}
	return nil
}

// defaultSynonyms maps spelling, language and abbreviation variants to
// canonical family tokens. Ordered: substring matching walks the table
// in this order and the first hit wins.
func defaultSynonyms() []synonymEntry {
	return []synonymEntry{
		// Web front-end
		{"js", "javascript"},
		{"reactjs", "react"},
		{"react.js", "react"},
		{"nodejs", "node"},
		{"node.js", "node"},
		{"vue.js", "vue"},
		{"vuejs", "vue"},
		{"angular.js", "angular"},
		{"angularjs", "angular"},
		{"typescript", "ts"},
		{"html5", "html"},
		{"css3", "css"},
		{"sass", "css"},
		{"scss", "css"},
		{"less", "css"},
		{"bootstrap", "css"},
		{"tailwind", "css"},
		{"jquery", "javascript"},

		// Back-end languages
		{"c#", "csharp"},
		{"c sharp", "csharp"},
		{".net", "dotnet"},
		{"dot net", "dotnet"},
		{"asp.net", "dotnet"},
		{"py", "python"},
		{"kotlin", "java"},
		{"scala", "java"},
		{"go", "golang"},
		{"swift", "ios"},
		{"objective-c", "ios"},
		{"dart", "flutter"},

		// Databases
		{"mysql", "sql"},
		{"postgresql", "sql"},
		{"postgres", "sql"},
		{"sqlite", "sql"},
		{"mssql", "sql"},
		{"sql server", "sql"},
		{"oracle", "sql"},
		{"mongodb", "nosql"},
		{"redis", "nosql"},
		{"cassandra", "nosql"},
		{"elasticsearch", "nosql"},
		{"firebase", "nosql"},

		// Frameworks
		{"spring", "java"},
		{"spring boot", "java"},
		{"django", "python"},
		{"flask", "python"},
		{"fastapi", "python"},
		{"express", "node"},
		{"express.js", "node"},
		{"laravel", "php"},
		{"symfony", "php"},
		{"rails", "ruby"},
		{"ruby on rails", "ruby"},

		// Design and UI/UX
		{"photoshop", "design"},
		{"illustrator", "design"},
		{"figma", "design"},
		{"sketch", "design"},
		{"xd", "design"},
		{"adobe xd", "design"},
		{"canva", "design"},
		{"ui", "design"},
		{"ux", "design"},

		// Marketing
		{"seo", "marketing"},
		{"sem", "marketing"},
		{"social media", "marketing"},
		{"réseaux sociaux", "marketing"},
		{"digital marketing", "marketing"},

		// Cloud and DevOps
		{"aws", "cloud"},
		{"azure", "cloud"},
		{"gcp", "cloud"},
		{"docker", "devops"},
		{"kubernetes", "devops"},
		{"jenkins", "devops"},
		{"git", "git"},

		// AI and data
		{"machine learning", "ai"},
		{"deep learning", "ai"},
		{"data science", "data"},
		{"tensorflow", "ai"},
		{"pytorch", "ai"},
		{"pandas", "data"},
		{"numpy", "data"},
	}
}

// defaultFamilies groups canonical tokens for related-skill detection.
// The family tables intentionally contain tokens the synonym table never
// emits (e.g. "react native") so relatedness stays broader than
// normalization.
func defaultFamilies() []skillFamily {
	return []skillFamily{
		{"frontend", []string{"react", "angular", "vue", "javascript", "typescript", "ts", "html", "css"}},
		{"backend", []string{"node", "python", "java", "csharp", "php", "dotnet", "golang", "ruby"}},
		{"database", []string{"sql", "nosql", "mysql", "mongodb", "postgresql"}},
		{"mobile", []string{"ios", "android", "react native", "flutter", "swift", "kotlin"}},
		{"data", []string{"data", "analytics", "ai", "ml"}},
		{"design", []string{"design", "ui", "ux", "photoshop", "figma"}},
		{"cloud", []string{"aws", "azure", "cloud", "devops"}},
	}
}

// stopWords is the bilingual filler-term list applied during extraction,
// both before and after normalization.
var stopWords = []string{
	// French
	"et", "de", "la", "le", "du", "des", "avec", "pour", "dans", "sur",
	"par", "un", "une", "les", "son", "sa", "ses", "ce", "cette", "ces",
	"développement", "programmation", "expérience", "connaissance", "maîtrise",
	"compétences", "technologies", "outils", "niveau", "ans", "année", "années",
	"formation", "diplôme", "stage", "projet", "projets", "travail", "équipe",
	"bon", "bonne", "très", "bien", "excellent", "parfait", "solide",
	// English
	"and", "or", "the", "of", "in", "on", "at", "to", "for", "with",
	"from", "by", "as", "is", "are", "was", "were", "be", "been", "being",
	"development", "programming", "experience", "knowledge", "skills",
	"tools", "level", "years", "year", "good",
	"strong", "solid", "proficient", "familiar", "using", "used", "work",
	"working", "team", "project", "projects",
}
