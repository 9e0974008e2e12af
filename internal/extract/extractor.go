// Package extract turns free text into categorized fields and provides the
// projection and intersection helpers built on them.
package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/spigell/resume-ranker/internal/tokenize"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

// Extractor recognises vocabulary terms and experience phrases in text.
// It is immutable and safe for concurrent use.
type Extractor struct {
	skills     []string
	jobTitles  []string
	education  []string
	languages  []string
	skillSet   map[string]struct{}
	experience *regexp.Regexp
}

// NewExtractor builds an extractor over a copy of the given tables.
func NewExtractor(tables *vocabulary.Tables) *Extractor {
	if tables == nil {
		tables = vocabulary.Default()
	}

	experience := tables.Experience
	if experience == nil {
		experience = regexp.MustCompile(vocabulary.DefaultExperiencePattern)
	}

	e := &Extractor{
		skills:     slices.Clone(tables.Skills),
		jobTitles:  slices.Clone(tables.JobTitles),
		education:  slices.Clone(tables.Education),
		languages:  slices.Clone(tables.Languages),
		skillSet:   make(map[string]struct{}, len(tables.Skills)),
		experience: experience,
	}
	for _, skill := range e.skills {
		e.skillSet[skill] = struct{}{}
	}

	return e
}

// Extract returns the fields found in text. It never fails: text without any
// known term yields empty categories.
func (e *Extractor) Extract(text string) Fields {
	lower := Lower(text)

	fields := NewFields()
	fields.Skills = e.matchSkills(lower)
	fields.JobTitles = containedIn(lower, e.jobTitles)
	fields.Education = containedIn(lower, e.education)
	fields.Experience = e.matchExperience(lower)
	fields.Languages = containedIn(lower, e.languages)

	return fields
}

// Lower applies full Unicode lowercasing, the mapping vocabulary terms are
// normalized with.
func Lower(text string) string {
	return vocabulary.Lower(text)
}

// matchSkills accepts a skill when it is a whole token or a substring of the
// text. Multi-word skills can only match by substring.
func (e *Extractor) matchSkills(lower string) []string {
	tokens := make(map[string]struct{})
	for _, token := range tokenize.Words(lower) {
		if _, ok := e.skillSet[token]; ok {
			tokens[token] = struct{}{}
		}
	}

	found := make([]string, 0)
	for _, skill := range e.skills {
		if _, ok := tokens[skill]; ok || strings.Contains(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

func (e *Extractor) matchExperience(lower string) []string {
	experience := make([]string, 0)
	for _, match := range e.experience.FindAllStringSubmatch(lower, -1) {
		experience = append(experience, match[1]+" years")
	}
	return experience
}

// containedIn keeps the terms that occur anywhere in text, without any word
// boundary check: "ai" matches inside "maintain".
func containedIn(text string, terms []string) []string {
	found := make([]string, 0)
	for _, term := range terms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}
