package filtering

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/suitability"
)

func batchFixture() *analysis.Batch {
	return &analysis.Batch{Documents: []analysis.ScoredDocument{
		{ID: "a.pdf", Score: 91.5},
		{ID: "b.pdf", Score: 64},
		{ID: "c.pdf", Score: 50},
		{ID: "d.pdf", Score: 12.25},
		{ID: "e.pdf", Score: 0},
	}}
}

func TestRunKeepsRankingOrder(t *testing.T) {
	dir := t.TempDir()
	excludeFile := filepath.Join(dir, "excluded.json")
	excluded := &ExcludedCandidates{Items: []*ExcludedCandidate{{ID: "b.pdf"}}}
	if err := excluded.ToFile(excludeFile); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	cfg := &Config{MinimumScore: 10, Top: 2, ExcludeFile: excludeFile}
	deps := Deps{Logger: zap.NewNop(), Classifier: suitability.NewThreshold(suitability.DefaultThreshold)}

	b, assessments, err := Run(context.Background(), cfg, deps, Default(), batchFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := b.IDs(); !reflect.DeepEqual(got, []string{"a.pdf", "c.pdf"}) {
		t.Fatalf("unexpected documents: %q", got)
	}

	if len(assessments) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(assessments))
	}
	if !assessments["a.pdf"].Suitable || !assessments["c.pdf"].Suitable {
		t.Fatalf("expected scores at or above the threshold to be suitable")
	}
}

func TestRunWithEmptyConfigKeepsEverything(t *testing.T) {
	b, _, err := Run(context.Background(), &Config{}, Deps{}, Default(), batchFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Len() != 5 {
		t.Fatalf("expected all documents to be kept, got %q", b.IDs())
	}
}

func TestRunValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "negative minimum", cfg: &Config{MinimumScore: -1}},
		{name: "minimum above 100", cfg: &Config{MinimumScore: 101}},
		{name: "negative top", cfg: &Config{Top: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Run(context.Background(), tt.cfg, Deps{}, Default(), batchFixture()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Run(ctx, &Config{}, Deps{}, Default(), batchFixture()); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRunLogsSteps(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	deps := Deps{Logger: zap.New(core)}

	_, _, err := Run(context.Background(), &Config{Top: 1}, deps, []Filter{NewTop()}, batchFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("filter step").All()
	if len(entries) != 1 {
		t.Fatalf("expected one step entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["name"] != "top" || fields["dropped"] != int64(4) || fields["left"] != int64(1) {
		t.Fatalf("unexpected step fields: %v", fields)
	}
}

func TestDisabledSuitabilityProducesNoAssessments(t *testing.T) {
	steps := Default()
	DisableByName(steps, "suitability", "not needed")

	deps := Deps{Classifier: suitability.NewThreshold(suitability.DefaultThreshold)}
	_, assessments, err := Run(context.Background(), &Config{}, deps, steps, batchFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assessments) != 0 {
		t.Fatalf("expected no assessments, got %d", len(assessments))
	}

	for _, status := range Describe(steps) {
		if status.Name == "suitability" && (status.Enabled || status.Reason != "not needed") {
			t.Fatalf("unexpected suitability status: %+v", status)
		}
	}
}

func TestDescribe(t *testing.T) {
	steps := Default()
	if err := steps[1].Validate(&Config{MinimumScore: 25}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := Describe(steps)
	if len(statuses) != len(steps) {
		t.Fatalf("expected %d statuses, got %d", len(steps), len(statuses))
	}

	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.Name)
	}
	if !reflect.DeepEqual(names, []string{"exclude_file", "minimum_score", "top", "suitability"}) {
		t.Fatalf("unexpected filter order: %q", names)
	}

	if statuses[1].Details["minimum_score"] != "25.00" {
		t.Fatalf("unexpected minimum score details: %v", statuses[1].Details)
	}
}

func TestExcludedCandidatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	missing, err := LoadExcluded(path)
	if err != nil {
		t.Fatalf("missing file must load as empty list: %v", err)
	}
	if len(missing.Items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(missing.Items))
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	empty, err := LoadExcluded(path)
	if err != nil || len(empty.Items) != 0 {
		t.Fatalf("expected empty file to load as empty list, got %v, %v", empty, err)
	}

	list := ToExcluded(batchFixture())
	list.Append(&ExcludedCandidates{Items: []*ExcludedCandidate{{ID: "f.pdf"}}})
	if err := list.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	// A shorter list must fully replace the previous content.
	short := &ExcludedCandidates{Items: []*ExcludedCandidate{{ID: "z.pdf"}}}
	if err := short.ToFile(path); err != nil {
		t.Fatalf("rewrite exclude file: %v", err)
	}

	loaded, err := LoadExcluded(path)
	if err != nil {
		t.Fatalf("load exclude file: %v", err)
	}
	if got := loaded.IDs(); !reflect.DeepEqual(got, []string{"z.pdf"}) {
		t.Fatalf("unexpected ids: %q", got)
	}
}

func TestExcludeFileRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, batchFixture())
	if err == nil {
		t.Fatalf("expected decode error")
	}
}
