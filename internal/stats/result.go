// Package stats holds the hypothesis tests and the dispatchers that choose
// between them.
package stats

import (
	"errors"
	"math"
)

// Test names as printed to the operator.
const (
	ShapiroWilkTest     = "Shapiro-Wilk Test"
	AndersonDarlingTest = "Anderson-Darling Test"
	ANOVATest           = "ANOVA"
	KruskalWallisTest   = "Kruskal-Wallis Test"
	StudentTTest        = "t-test"
	MannWhitneyTest     = "Mann-Whitney U Test"
	ChiSquareTest       = "Chi-square Test"
)

var (
	// ErrInsufficientData is returned when a test lacks the observations or
	// groups it needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrZeroVariance is returned when the data is constant.
	ErrZeroVariance = errors.New("zero variance")
)

// CriticalValue is a tabulated statistic threshold at a significance level in percent.
type CriticalValue struct {
	Significance float64
	Value        float64
}

// Result is the outcome of a single test.
type Result struct {
	Test      string
	Statistic float64
	PValue    float64
	// DF is the degrees of freedom; DF2 is the denominator for F tests.
	DF  float64
	DF2 float64
	N   int
	// Approximate marks p-values obtained from an interpolation formula.
	Approximate    bool
	CriticalValues []CriticalValue
}

// Reject reports whether the p-value falls below alpha.
func (r *Result) Reject(alpha float64) bool {
	return r.PValue < alpha
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
