package stats

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Regression is an ordinary least squares fit of y on x.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	// PValue is the two-sided p-value for a zero slope.
	PValue float64
	// StdErr is the standard error of the slope.
	StdErr float64
	N      int
	// Truncated is set when the inputs had different lengths.
	Truncated bool
}

// TruncatePair cuts x and y to the shorter length. Missing values are removed
// from each column independently before pairing, so rows are aligned by
// position among present values rather than by record.
func TruncatePair(x, y []float64) ([]float64, []float64, bool) {
	x, y = dropNaN(x), dropNaN(y)
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	return x[:n], y[:n], len(x) != len(y)
}

// LinearRegression fits y = Intercept + Slope*x over position-paired present
// values; see TruncatePair.
func LinearRegression(x, y []float64) (*Regression, error) {
	xs, ys, truncated := TruncatePair(x, y)
	if truncated {
		slog.Warn("regression inputs truncated to the shorter column", "x", len(dropNaN(x)), "y", len(dropNaN(y)), "used", len(xs))
	}
	n := len(xs)
	if n < 3 {
		return nil, fmt.Errorf("regression needs at least 3 pairs, got %d: %w", n, ErrInsufficientData)
	}
	if stat.Variance(xs, nil) == 0 {
		return nil, fmt.Errorf("regression: %w in x", ErrZeroVariance)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)

	mx, my := stat.Mean(xs, nil), stat.Mean(ys, nil)
	var sxx, syy float64
	for i := range xs {
		sxx += (xs[i] - mx) * (xs[i] - mx)
		syy += (ys[i] - my) * (ys[i] - my)
	}
	df := float64(n - 2)
	reg := &Regression{Slope: beta, Intercept: alpha, RSquared: r2, N: n, Truncated: truncated}
	if r2 >= 1 || syy == 0 {
		reg.RSquared = math.Min(r2, 1)
		reg.PValue = 0
		reg.StdErr = 0
		return reg, nil
	}
	t := math.Sqrt(r2) * math.Sqrt(df/(1-r2))
	reg.PValue = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(t)
	reg.StdErr = math.Sqrt((1 - r2) * syy / sxx / df)
	return reg, nil
}
