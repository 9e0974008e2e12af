// Package analysis ranks candidate documents against a reference document.
//
// One call to Analyze is one batch: fields are extracted from every document,
// a TF-IDF matrix is fitted over the reference plus all candidates, each
// candidate is scored by cosine similarity against the reference and its
// fields are reduced to the terms it shares with the reference.
package analysis

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/extract"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/similarity"
	"github.com/spigell/resume-ranker/internal/tfidf"
	"github.com/spigell/resume-ranker/internal/tokenize"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const previewLength = 80

var ErrDuplicateCandidate = errors.New("duplicate candidate id")

// Candidate is one document to rank.
type Candidate struct {
	ID   string
	Text string
}

// ScoredDocument is a ranked candidate. Fields holds only the terms shared
// with the reference once Analyze returns.
type ScoredDocument struct {
	ID     string         `json:"filename"`
	Fields extract.Fields `json:"fields"`
	Score  float64        `json:"score"`
}

// Batch is the outcome of one analysis.
type Batch struct {
	Reference       string           `json:"-"`
	ReferenceFields extract.Fields   `json:"reference_fields"`
	Documents       []ScoredDocument `json:"results"`
}

// Len returns the number of ranked documents.
func (b *Batch) Len() int {
	return len(b.Documents)
}

// AllZero reports whether no candidate shares anything with the reference.
func (b *Batch) AllZero() bool {
	for _, doc := range b.Documents {
		if doc.Score != 0 {
			return false
		}
	}
	return true
}

// FindByID returns the document with the given id or nil.
func (b *Batch) FindByID(id string) *ScoredDocument {
	for i := range b.Documents {
		if b.Documents[i].ID == id {
			return &b.Documents[i]
		}
	}
	return nil
}

// IDs returns document ids in ranking order.
func (b *Batch) IDs() []string {
	ids := make([]string, 0, len(b.Documents))
	for _, doc := range b.Documents {
		ids = append(ids, doc.ID)
	}
	return ids
}

// Analyzer runs the matching pipeline. It holds no per-batch state and can
// serve concurrent batches.
type Analyzer struct {
	extractor  *extract.Extractor
	vectorizer *tfidf.Vectorizer
	logger     *zap.Logger
}

// New creates an analyzer over the given vocabulary tables.
func New(tables *vocabulary.Tables, log *zap.Logger) *Analyzer {
	return &Analyzer{
		extractor:  extract.NewExtractor(tables),
		vectorizer: tfidf.New(),
		logger:     logger.WithFields(log),
	}
}

// Extract exposes the field extraction step.
func (a *Analyzer) Extract(text string) extract.Fields {
	return a.extractor.Extract(text)
}

// Analyze ranks candidates against reference. Candidates are scored in the
// given order and the result is sorted by descending score; equal scores keep
// their input order.
func (a *Analyzer) Analyze(reference string, candidates []Candidate) (*Batch, error) {
	referenceFields := a.extractor.Extract(reference)

	batch := &Batch{
		Reference:       reference,
		ReferenceFields: referenceFields,
		Documents:       make([]ScoredDocument, 0, len(candidates)),
	}

	if len(candidates) == 0 {
		a.logger.Debug("no candidates to analyze")
		return batch, nil
	}

	seen := make(map[string]struct{}, len(candidates))
	projections := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCandidate, candidate.ID)
		}
		seen[candidate.ID] = struct{}{}

		fields := a.extractor.Extract(candidate.Text)
		projection := extract.Project(fields)
		projections = append(projections, projection)

		batch.Documents = append(batch.Documents, ScoredDocument{
			ID:     candidate.ID,
			Fields: fields,
		})

		a.logger.Debug("candidate fields extracted",
			zap.String(logger.FieldCandidate, candidate.ID),
			zap.Int("tokens", tokenize.Count(candidate.Text)),
			zap.Int("terms", fields.Len()),
			zap.String("projection", logger.TruncateForLog(projection, previewLength)),
		)
	}

	matrix, err := a.vectorizer.Vectorize(extract.Project(referenceFields), projections)
	if err != nil {
		return nil, fmt.Errorf("vectorize batch: %w", err)
	}

	scores := similarity.Score(matrix)
	if len(scores) != len(batch.Documents) {
		return nil, fmt.Errorf("got %d scores for %d candidates", len(scores), len(batch.Documents))
	}

	for i := range batch.Documents {
		doc := &batch.Documents[i]
		doc.Score = scores[i]
		doc.Fields = extract.Intersect(referenceFields, doc.Fields)
	}

	sort.SliceStable(batch.Documents, func(i, j int) bool {
		return batch.Documents[i].Score > batch.Documents[j].Score
	})

	_, vocabularySize := matrix.Dims()
	a.logger.Debug("batch analyzed",
		zap.Int("candidates", len(batch.Documents)),
		zap.Int("vocabulary", vocabularySize),
		zap.Int("reference_terms", referenceFields.Len()),
	)

	return batch, nil
}
