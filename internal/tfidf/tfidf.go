// Package tfidf builds per-batch TF-IDF term weight matrices.
//
// The vocabulary is learned from the documents of one call and thrown away
// afterwards: nothing is shared between batches.
//
// Weights follow the usual smoothed scheme:
//
//	tf(t, d)  = number of occurrences of t in d
//	idf(t)    = ln((1 + n) / (1 + df(t))) + 1
//	w(t, d)   = tf(t, d) * idf(t), rows L2-normalized
//
// where n is the number of documents and df(t) the number of documents that
// contain t.
package tfidf

import (
	"errors"
	"math"
	"slices"

	"github.com/spigell/resume-ranker/internal/tokenize"
)

var (
	ErrNoDocuments     = errors.New("no documents to vectorize")
	ErrNoCandidates    = errors.New("no candidate documents to vectorize")
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no terms")
)

// Analyzer splits a document into terms.
type Analyzer func(doc string) []string

// Matrix is a dense row-per-document weight matrix.
type Matrix struct {
	// Vocabulary holds the column terms in lexical order.
	Vocabulary []string
	Rows       [][]float64
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) {
	return len(m.Rows), len(m.Vocabulary)
}

// Row returns the weights of document i.
func (m *Matrix) Row(i int) []float64 {
	return m.Rows[i]
}

// Weight returns the weight of term in document i, or 0 when the term is
// unknown to the batch.
func (m *Matrix) Weight(i int, term string) float64 {
	col, ok := slices.BinarySearch(m.Vocabulary, term)
	if !ok {
		return 0
	}
	return m.Rows[i][col]
}

// Vectorizer computes TF-IDF matrices. The zero value is not usable; call New.
type Vectorizer struct {
	analyzer Analyzer
}

// New returns a vectorizer using the two-rune term analyzer.
func New() *Vectorizer {
	return &Vectorizer{analyzer: tokenize.Terms}
}

// NewWithAnalyzer returns a vectorizer with a custom analyzer.
func NewWithAnalyzer(analyzer Analyzer) *Vectorizer {
	if analyzer == nil {
		analyzer = tokenize.Terms
	}
	return &Vectorizer{analyzer: analyzer}
}

// Vectorize returns the matrix whose row 0 is the reference and rows 1..N are
// the candidates in the given order.
func (v *Vectorizer) Vectorize(reference string, candidates []string) (*Matrix, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	docs := make([]string, 0, len(candidates)+1)
	docs = append(docs, reference)
	docs = append(docs, candidates...)

	return v.FitTransform(docs)
}

// FitTransform learns the vocabulary of docs and returns their weights.
func (v *Vectorizer) FitTransform(docs []string) (*Matrix, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range v.analyzer(doc) {
			counts[i][term]++
		}
		for term := range counts[i] {
			df[term]++
		}
	}

	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	slices.Sort(vocabulary)

	n := float64(len(docs))
	idf := make([]float64, len(vocabulary))
	for col, term := range vocabulary {
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i := range docs {
		row := make([]float64, len(vocabulary))
		for col, term := range vocabulary {
			if tf := counts[i][term]; tf > 0 {
				row[col] = float64(tf) * idf[col]
			}
		}
		normalize(row)
		rows[i] = row
	}

	return &Matrix{Vocabulary: vocabulary, Rows: rows}, nil
}

// normalize scales row to unit L2 length in place. Zero rows stay zero.
func normalize(row []float64) {
	var sum float64
	for _, w := range row {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}
