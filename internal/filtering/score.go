package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
)

type minimumScoreFilter struct {
	minimum float64
}

// NewMinimumScore creates a filter that drops documents scoring below the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(string) {}

func (f *minimumScoreFilter) IsEnabled() bool { return true }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %v", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, b *analysis.Batch) (*analysis.Batch, Step, error) {
	initial := b.Len()
	if f.minimum == 0 {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	removed := keep(b, func(doc analysis.ScoredDocument) bool {
		return doc.Score < f.minimum
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"minimum_score": strconv.FormatFloat(f.minimum, 'f', 2, 64)},
	}
}

type topFilter struct {
	limit int
}

// NewTop creates a filter that keeps only the best ranked documents.
func NewTop() Filter {
	return &topFilter{}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Disable(string) {}

func (f *topFilter) IsEnabled() bool { return true }

func (f *topFilter) Validate(cfg *Config) error {
	f.limit = 0
	if cfg == nil {
		return nil
	}
	if cfg.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", cfg.Top)
	}
	f.limit = cfg.Top
	return nil
}

func (f *topFilter) Apply(_ context.Context, deps Deps, b *analysis.Batch) (*analysis.Batch, Step, error) {
	initial := b.Len()
	if f.limit == 0 || initial <= f.limit {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	dropped := b.Documents[f.limit:]
	if deps.Logger != nil {
		ids := make([]string, 0, len(dropped))
		for _, doc := range dropped {
			ids = append(ids, doc.ID)
		}
		deps.Logger.Info("keeping only top candidates",
			zap.Int("top", f.limit),
			zap.Strings("excluded_candidates", ids),
		)
	}
	b.Documents = b.Documents[:f.limit]

	return b, Step{Initial: initial, Dropped: initial - f.limit, Left: b.Len()}, nil
}

func (f *topFilter) Status() Status {
	details := map[string]string{}
	if f.limit > 0 {
		details["top"] = strconv.Itoa(f.limit)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
