package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics shown on inspection.
type Summary struct {
	N          int
	Mean       float64
	Median     float64
	StdDev     float64
	Skew       float64
	ExKurtosis float64
	Min        float64
	Max        float64
}

// Describe summarizes the present values of x. Spread and shape use the
// bias-adjusted sample estimators.
func Describe(x []float64) (*Summary, error) {
	data := dropNaN(x)
	if len(data) == 0 {
		return nil, fmt.Errorf("describe: %w", ErrInsufficientData)
	}
	s := &Summary{N: len(data)}
	s.Mean, _ = mstats.Mean(data)
	s.Median, _ = mstats.Median(data)
	s.Min, _ = mstats.Min(data)
	s.Max, _ = mstats.Max(data)
	s.StdDev = StdDev(data)
	s.Skew = SampleSkew(data)
	s.ExKurtosis = Kurtosis(data)
	return s, nil
}

// StdDev is the sample standard deviation (n-1 denominator).
func StdDev(x []float64) float64 {
	data := dropNaN(x)
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// SampleSkew is the adjusted Fisher-Pearson skewness.
func SampleSkew(x []float64) float64 {
	data := dropNaN(x)
	if len(data) < 3 {
		return math.NaN()
	}
	return stat.Skew(data, nil)
}

// Kurtosis is the bias-corrected excess kurtosis.
func Kurtosis(x []float64) float64 {
	data := dropNaN(x)
	if len(data) < 4 {
		return math.NaN()
	}
	return stat.ExKurtosis(data, nil)
}

// Pearson is the correlation over rows where both values are present.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("pearson: length mismatch %d vs %d", len(x), len(y))
	}
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("pearson: %w", ErrInsufficientData)
	}
	return stat.Correlation(xs, ys, nil), nil
}
