package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkill(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		skill    string
		expected string
	}{
		{"exact synonym", "js", "javascript"},
		{"exact synonym with dot", "react.js", "react"},
		{"csharp spelling", "c#", "csharp"},
		{"csharp spelled out", "c sharp", "csharp"},
		{"database variant", "postgresql", "sql"},
		{"uppercase input", "MySQL", "sql"},
		{"surrounding whitespace", "  docker  ", "devops"},
		{"substring containment", "python developer", "python"},
		{"unknown token unchanged", "cobol", "cobol"},
		{"empty string unchanged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.NormalizeSkill(tt.skill))
		})
	}
}

func TestExtractSkills(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name         string
		text         string
		expectedKind ExtractKind
		contains     []string
		excludes     []string
	}{
		{
			name:         "comma separated list",
			text:         "Python, SQL, Docker",
			expectedKind: ExtractOK,
			contains:     []string{"python", "sql", "devops"},
		},
		{
			name:         "mixed separators",
			text:         "react.js | node.js; mongodb / figma",
			expectedKind: ExtractOK,
			contains:     []string{"react", "node", "nosql", "design"},
		},
		{
			name:         "empty input",
			text:         "",
			expectedKind: ExtractEmpty,
		},
		{
			name:         "whitespace only",
			text:         "   \n\t  ",
			expectedKind: ExtractEmpty,
		},
		{
			name:         "stop words only",
			text:         "experience, knowledge, maîtrise, bonne",
			expectedKind: ExtractMalformed,
		},
		{
			name:         "numbers and urls dropped",
			text:         "2023, 42, http://example.com/cv, java",
			expectedKind: ExtractOK,
			contains:     []string{"java"},
			excludes:     []string{"2023", "42"},
		},
		{
			name:         "duplicates collapse",
			text:         "js, javascript, jquery",
			expectedKind: ExtractOK,
			contains:     []string{"javascript"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skills, kind := cfg.ExtractSkills(tt.text)
			assert.Equal(t, tt.expectedKind, kind)
			for _, want := range tt.contains {
				assert.Contains(t, skills, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, skills, unwanted)
			}
		})
	}
}

func TestExtractSkills_DuplicatesProduceSingleEntry(t *testing.T) {
	cfg := DefaultConfig()

	skills, kind := cfg.ExtractSkills("js, javascript, jquery, javascript")
	assert.Equal(t, ExtractOK, kind)
	assert.Equal(t, []string{"javascript"}, skills)
}

func TestExtractSkills_Bounded(t *testing.T) {
	cfg := DefaultConfig()

	var parts []string
	for _, s := range []string{
		"aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg", "hhh", "iii", "jjj",
		"kkk", "lll", "mmm", "nnn", "ooo", "ppp", "qqq", "rrr", "sss", "ttt",
	} {
		parts = append(parts, s)
	}
	skills, kind := cfg.ExtractSkills(strings.Join(parts, ", "))
	assert.Equal(t, ExtractOK, kind)
	assert.LessOrEqual(t, len(skills), cfg.MaxSkills)
}

func TestExtractSkills_Idempotent(t *testing.T) {
	cfg := DefaultConfig()

	first, kind := cfg.ExtractSkills("Python, SQL, React.js, Docker")
	assert.Equal(t, ExtractOK, kind)

	second, kind := cfg.ExtractSkills(strings.Join(first, ", "))
	assert.Equal(t, ExtractOK, kind)
	assert.ElementsMatch(t, first, second)
}
