package filtering

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/suitability"
)

type suitabilityFilter struct {
	disabled    bool
	reason      string
	assessments map[string]*suitability.Assessment
}

// NewSuitability creates the step that labels every document with the
// classifier verdict. It never drops documents.
func NewSuitability() Filter {
	return &suitabilityFilter{}
}

func (f *suitabilityFilter) Name() string { return "suitability" }

func (f *suitabilityFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *suitabilityFilter) IsEnabled() bool { return !f.disabled }

func (f *suitabilityFilter) Validate(*Config) error { return nil }

func (f *suitabilityFilter) Apply(_ context.Context, deps Deps, b *analysis.Batch) (*analysis.Batch, Step, error) {
	initial := b.Len()
	f.assessments = make(map[string]*suitability.Assessment, initial)

	if deps.Classifier == nil {
		if deps.Logger != nil {
			deps.Logger.Info("classifier is not configured; skipping suitability step")
		}
		return b, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	suitable := 0
	for _, doc := range b.Documents {
		assessment := deps.Classifier.Classify(doc.Score)
		f.assessments[doc.ID] = assessment
		if assessment.Suitable {
			suitable++
		}
	}

	if deps.Logger != nil {
		deps.Logger.Info("candidates classified",
			zap.Int("suitable", suitable),
			zap.Int("not_suitable", initial-suitable),
		)
	}

	return b, Step{Initial: initial, Dropped: 0, Left: initial}, nil
}

func (f *suitabilityFilter) Assessments() map[string]*suitability.Assessment {
	result := make(map[string]*suitability.Assessment, len(f.assessments))
	maps.Copy(result, f.assessments)
	return result
}

func (f *suitabilityFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
