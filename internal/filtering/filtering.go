// Package filtering applies ordered screening steps to a ranked batch.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/suitability"
)

// Filter represents a single screening step applied to ranked documents.
// Steps must keep the relative order of the documents they let through.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, b *analysis.Batch) (*analysis.Batch, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger     *zap.Logger
	Classifier suitability.Classifier
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinimumScore float64
	Top          int
	ExcludeFile  string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// assessmentCollector is implemented by filters that classify documents.
type assessmentCollector interface {
	Assessments() map[string]*suitability.Assessment
}

// Default returns the standard chain: exclusions first, then score based cuts,
// then classification of what is left.
func Default() []Filter {
	return []Filter{
		NewExcludeFile(),
		NewMinimumScore(),
		NewTop(),
		NewSuitability(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and may modify b in place.
// It returns the resulting batch and the suitability assessments keyed by document id.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, b *analysis.Batch) (*analysis.Batch, map[string]*suitability.Assessment, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	assessments := make(map[string]*suitability.Assessment)
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, b)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		b = next

		if collector, ok := step.(assessmentCollector); ok {
			for id, assessment := range collector.Assessments() {
				assessments[id] = assessment
			}
		}
	}

	return b, assessments, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep removes, in place and in order, the documents for which drop returns true.
// It returns the ids of the removed documents.
func keep(b *analysis.Batch, drop func(doc analysis.ScoredDocument) bool) []string {
	var removed []string
	kept := b.Documents[:0]
	for _, doc := range b.Documents {
		if drop(doc) {
			removed = append(removed, doc.ID)
			continue
		}
		kept = append(kept, doc)
	}
	b.Documents = kept
	return removed
}
