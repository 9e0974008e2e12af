// Package suitability turns a similarity score into a hire/no-hire style label.
package suitability

import (
	"fmt"
	"math"
)

// DefaultThreshold is the score from which a candidate counts as a match.
const DefaultThreshold = 50.0

const (
	LabelSuitable    = "Suitable"
	LabelNotSuitable = "Not Suitable"
)

// Assessment is the verdict for one candidate.
type Assessment struct {
	Suitable  bool    `json:"suitable"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Label     string  `json:"label"`
}

// Classifier consumes a similarity score as its single feature.
type Classifier interface {
	Classify(score float64) *Assessment
}

// ThresholdClassifier marks every score at or above Threshold as suitable.
type ThresholdClassifier struct {
	Threshold float64
}

// NewThreshold returns a classifier for the given threshold. Values outside
// [0, 100] or NaN fall back to DefaultThreshold.
func NewThreshold(threshold float64) *ThresholdClassifier {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &ThresholdClassifier{Threshold: threshold}
}

func (c *ThresholdClassifier) Classify(score float64) *Assessment {
	suitable := score >= c.Threshold
	label := LabelNotSuitable
	if suitable {
		label = LabelSuitable
	}

	return &Assessment{
		Suitable:  suitable,
		Score:     score,
		Threshold: c.Threshold,
		Label:     label,
	}
}

func (a *Assessment) String() string {
	return fmt.Sprintf("%s (match: %.2f%%, threshold: %.2f%%)", a.Label, a.Score, a.Threshold)
}
