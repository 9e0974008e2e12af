// Package similarity scores candidate rows of a TF-IDF matrix against the
// reference row.
package similarity

import (
	"math"

	"github.com/spigell/resume-ranker/internal/tfidf"
)

// Cosine returns dot(a, b) / (|a| * |b|), or 0 when either vector is zero.
// The result is clamped into [0, 1] to absorb floating point drift.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(1, math.Max(0, sim))
}

// Percent maps a similarity to the 0-100 scale rounded to two decimals.
// The scaled value is multiplied by 100 and rounded half to even, so exact
// binary ties such as 3.125 go to the even neighbour (3.12).
func Percent(sim float64) float64 {
	return math.RoundToEven(sim*100*100) / 100
}

// Score returns one percentage per candidate row (rows 1..N), in row order.
func Score(m *tfidf.Matrix) []float64 {
	rows, _ := m.Dims()
	if rows < 2 {
		return []float64{}
	}

	reference := m.Row(0)
	scores := make([]float64, 0, rows-1)
	for i := 1; i < rows; i++ {
		scores = append(scores, Percent(Cosine(reference, m.Row(i))))
	}
	return scores
}
