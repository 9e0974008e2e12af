package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/extract"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "test.db")
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func batchFixture(reference string) *analysis.Batch {
	return &analysis.Batch{
		Reference: reference,
		Documents: []analysis.ScoredDocument{
			{
				ID:    "backend.pdf",
				Score: 72.15,
				Fields: extract.Fields{
					Skills:     []string{"python", "aws"},
					JobTitles:  []string{},
					Education:  []string{"bachelor"},
					Experience: []string{"5 years", "5 years"},
					Languages:  []string{"english"},
				},
			},
			{ID: "blank.pdf", Score: 0, Fields: extract.NewFields()},
		},
	}
}

func TestSaveAndLoadLatestBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.LatestResults(ctx)
	assert.True(t, errors.Is(err, ErrNoResults))

	meta, err := s.SaveBatch(ctx, batchFixture("python developer"))
	require.NoError(t, err)
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, 2, meta.Results)

	latest, rows, err := s.LatestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, latest.ID)
	assert.Equal(t, meta.JobID, latest.JobID)
	assert.WithinDuration(t, meta.AnalyzedAt, latest.AnalyzedAt, time.Microsecond)
	require.Len(t, rows, 2)

	assert.Equal(t, "backend.pdf", rows[0].Filename)
	assert.Equal(t, 72.15, rows[0].Score)
	assert.Equal(t, []string{"python", "aws"}, rows[0].MatchedSkills)
	assert.Equal(t, []string{}, rows[0].MatchedTitle)
	assert.Equal(t, []string{"5 years", "5 years"}, rows[0].MatchedExperience)
	assert.Equal(t, "blank.pdf", rows[1].Filename)
	assert.Empty(t, rows[1].MatchedSkills)
}

func TestLatestResultsSelectsMostRecentBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveBatch(ctx, batchFixture("python developer"))
	require.NoError(t, err)

	second, err := s.SaveBatch(ctx, &analysis.Batch{
		Reference: "python developer",
		Documents: []analysis.ScoredDocument{{ID: "only.pdf", Score: 10, Fields: extract.NewFields()}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.JobID, second.JobID, "job description must be reused by content")

	latest, rows, err := s.LatestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "only.pdf", rows[0].Filename)

	third, err := s.SaveBatch(ctx, &analysis.Batch{Reference: "go developer"})
	require.NoError(t, err)
	assert.NotEqual(t, first.JobID, third.JobID)

	latest, rows, err = s.LatestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, third.ID, latest.ID)
	assert.Empty(t, rows, "an empty batch is still the latest one")
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: DriverPostgres}, nil)
	assert.Error(t, err, "postgres needs a dsn")
}

func TestBind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?, ?)`
	assert.Equal(t, q, sqliteDialect.bind(q))
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, postgresDialect.bind(q))
}

func TestSaveResultAppendsToBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta, err := s.SaveBatch(ctx, &analysis.Batch{Reference: "python developer"})
	require.NoError(t, err)
	assert.Zero(t, meta.Results)

	require.NoError(t, s.SaveResult(ctx, meta, analysis.ScoredDocument{
		ID:     "late.pdf",
		Score:  33.33,
		Fields: extract.Fields{Skills: []string{"python"}},
	}))
	assert.Equal(t, 1, meta.Results)

	latest, rows, err := s.LatestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Results)
	require.Len(t, rows, 1)
	assert.Equal(t, "late.pdf", rows[0].Filename)
	assert.Equal(t, []string{"python"}, rows[0].MatchedSkills)

	assert.Error(t, s.SaveResult(ctx, nil, analysis.ScoredDocument{ID: "x.pdf"}))
}

func TestMatchedTermsKeepSeparators(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveBatch(ctx, &analysis.Batch{
		Reference: "c developer",
		Documents: []analysis.ScoredDocument{{
			ID:    "systems.pdf",
			Score: 40,
			Fields: extract.Fields{
				Skills:    []string{"c, c++", "go"},
				Education: []string{`master "cum laude"`},
			},
		}},
	})
	require.NoError(t, err)

	_, rows, err := s.LatestResults(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"c, c++", "go"}, rows[0].MatchedSkills)
	assert.Equal(t, []string{`master "cum laude"`}, rows[0].MatchedEducation)
	assert.Equal(t, []string{}, rows[0].MatchedTitle)
	assert.Equal(t, []string{}, rows[0].MatchedLanguages)
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		raw    string
		expect []string
	}{
		{raw: "", expect: []string{}},
		{raw: "null", expect: []string{}},
		{raw: "[]", expect: []string{}},
		{raw: `["a, b","c"]`, expect: []string{"a, b", "c"}},
	}

	for _, tt := range tests {
		got, err := decodeList(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.expect, got, tt.raw)
	}

	_, err := decodeList("python, aws")
	assert.Error(t, err)
}
