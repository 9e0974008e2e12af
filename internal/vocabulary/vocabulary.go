// Package vocabulary holds the term tables used to recognise categorized
// fields in résumés and job descriptions.
//
// Tables are immutable values: they are built once from the defaults and the
// optional configuration overrides, then injected into the extractor. Two
// batches may run side by side with different tables.
package vocabulary

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// space is any Unicode white space, including NBSP and the line separators.
const space = `[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]`

// DefaultExperiencePattern matches phrases such as "5 years", "3+ yrs" or "2yr".
// The first capture group is the number of years, in any decimal digit script.
const DefaultExperiencePattern = `(\p{Nd}+)` + space + `*(?:\+?` + space + `*)?(?:years?|yrs?)`

var ErrNoCaptureGroup = errors.New("experience pattern must capture the number of years")

// Tables is the set of known terms per category plus the experience pattern.
// All terms are lowercase and trimmed.
type Tables struct {
	Skills     []string
	JobTitles  []string
	Education  []string
	Languages  []string
	Experience *regexp.Regexp
}

// Config describes overrides for the built-in tables. A non-empty list replaces
// the built-in list of that category, Extra* lists are appended to it.
type Config struct {
	File              string   `mapstructure:"file"`
	Skills            []string `mapstructure:"skills"`
	JobTitles         []string `mapstructure:"job-titles"`
	Education         []string `mapstructure:"education"`
	Languages         []string `mapstructure:"languages"`
	ExtraSkills       []string `mapstructure:"extra-skills"`
	ExtraJobTitles    []string `mapstructure:"extra-job-titles"`
	ExtraEducation    []string `mapstructure:"extra-education"`
	ExtraLanguages    []string `mapstructure:"extra-languages"`
	ExperiencePattern string   `mapstructure:"experience-pattern"`
}

// Default returns the built-in tables.
func Default() *Tables {
	return &Tables{
		Skills:     slices.Clone(defaultSkills),
		JobTitles:  slices.Clone(defaultJobTitles),
		Education:  slices.Clone(defaultEducation),
		Languages:  slices.Clone(defaultLanguages),
		Experience: regexp.MustCompile(DefaultExperiencePattern),
	}
}

// Build returns tables made of the defaults with cfg applied on top.
// When cfg.File is set, the file is loaded first and the inline settings of
// cfg are applied after it.
func Build(cfg *Config) (*Tables, error) {
	tables := Default()
	if cfg == nil {
		return tables, nil
	}

	if path := strings.TrimSpace(cfg.File); path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := tables.apply(fromFile); err != nil {
			return nil, fmt.Errorf("vocabulary file %q: %w", path, err)
		}
	}

	if err := tables.apply(cfg); err != nil {
		return nil, err
	}

	return tables, nil
}

func (t *Tables) apply(cfg *Config) error {
	if len(cfg.Skills) > 0 {
		t.Skills = Normalize(cfg.Skills)
	}
	if len(cfg.JobTitles) > 0 {
		t.JobTitles = Normalize(cfg.JobTitles)
	}
	if len(cfg.Education) > 0 {
		t.Education = Normalize(cfg.Education)
	}
	if len(cfg.Languages) > 0 {
		t.Languages = Normalize(cfg.Languages)
	}

	t.Skills = Normalize(append(t.Skills, cfg.ExtraSkills...))
	t.JobTitles = Normalize(append(t.JobTitles, cfg.ExtraJobTitles...))
	t.Education = Normalize(append(t.Education, cfg.ExtraEducation...))
	t.Languages = Normalize(append(t.Languages, cfg.ExtraLanguages...))

	if pattern := strings.TrimSpace(cfg.ExperiencePattern); pattern != "" {
		re, err := CompileExperience(pattern)
		if err != nil {
			return err
		}
		t.Experience = re
	}

	return nil
}

// CompileExperience compiles an experience pattern and checks that it captures
// the number of years in its first group.
func CompileExperience(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile experience pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, ErrNoCaptureGroup
	}
	return re, nil
}

// Lower applies full Unicode lowercasing, the same mapping used on document
// text. A Caser is not safe for concurrent use, so one is created per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize lowercases and trims terms, dropping empty entries and duplicates
// while keeping the first occurrence order.
func Normalize(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	result := make([]string, 0, len(terms))
	for _, term := range terms {
		term = Lower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		result = append(result, term)
	}
	return result
}

// Size returns the total number of fixed terms across all categories.
func (t *Tables) Size() int {
	return len(t.Skills) + len(t.JobTitles) + len(t.Education) + len(t.Languages)
}
