package extract

import "strings"

// EmptyPlaceholder is the projection of a document without any recognised term.
const EmptyPlaceholder = "empty"

// Category identifies one group of extracted terms.
type Category int

const (
	Skills Category = iota
	JobTitles
	Education
	Experience
	Languages
)

// Categories lists every category in projection order.
var Categories = []Category{Skills, JobTitles, Education, Experience, Languages}

func (c Category) String() string {
	switch c {
	case Skills:
		return "skills"
	case JobTitles:
		return "job_titles"
	case Education:
		return "education"
	case Experience:
		return "experience"
	case Languages:
		return "languages"
	default:
		return "unknown"
	}
}

// Fields is the categorized bag of terms found in one document.
// Every category except Experience is a set kept in vocabulary order.
// Experience entries have the form "<n> years" and keep repeated mentions.
type Fields struct {
	Skills     []string `json:"skills"`
	JobTitles  []string `json:"job_titles"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Languages  []string `json:"languages"`
}

// NewFields returns Fields with every category empty but non-nil.
func NewFields() Fields {
	return Fields{
		Skills:     []string{},
		JobTitles:  []string{},
		Education:  []string{},
		Experience: []string{},
		Languages:  []string{},
	}
}

// Get returns the terms of a category.
func (f Fields) Get(c Category) []string {
	switch c {
	case Skills:
		return f.Skills
	case JobTitles:
		return f.JobTitles
	case Education:
		return f.Education
	case Experience:
		return f.Experience
	case Languages:
		return f.Languages
	default:
		return nil
	}
}

func (f *Fields) set(c Category, terms []string) {
	switch c {
	case Skills:
		f.Skills = terms
	case JobTitles:
		f.JobTitles = terms
	case Education:
		f.Education = terms
	case Experience:
		f.Experience = terms
	case Languages:
		f.Languages = terms
	}
}

// Len returns the number of terms across all categories.
func (f Fields) Len() int {
	n := 0
	for _, c := range Categories {
		n += len(f.Get(c))
	}
	return n
}

// Terms returns all terms concatenated in category order.
func (f Fields) Terms() []string {
	terms := make([]string, 0, f.Len())
	for _, c := range Categories {
		terms = append(terms, f.Get(c)...)
	}
	return terms
}

// Project flattens fields into the text used as vectorizer input. A document
// without terms projects to EmptyPlaceholder so that it still owns a token.
func Project(f Fields) string {
	text := strings.Join(f.Terms(), " ")
	if strings.TrimSpace(text) == "" {
		return EmptyPlaceholder
	}
	return text
}

// Intersect returns, per category, the terms of candidate that are also in
// reference. Comparison is exact on already normalized terms; the result keeps
// candidate order and holds every term once.
func Intersect(reference, candidate Fields) Fields {
	matched := NewFields()
	for _, c := range Categories {
		matched.set(c, intersect(reference.Get(c), candidate.Get(c)))
	}
	return matched
}

func intersect(reference, candidate []string) []string {
	known := make(map[string]struct{}, len(reference))
	for _, term := range reference {
		known[term] = struct{}{}
	}

	result := make([]string, 0)
	seen := make(map[string]struct{}, len(candidate))
	for _, term := range candidate {
		if _, ok := known[term]; !ok {
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
