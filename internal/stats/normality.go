package stats

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultNormalitySizeLimit is the largest sample tested with Shapiro-Wilk.
const DefaultNormalitySizeLimit = 2000

// Normality runs Shapiro-Wilk when the sample has at most sizeLimit
// observations and Anderson-Darling otherwise. NaNs are dropped first.
// A non-positive sizeLimit means DefaultNormalitySizeLimit.
func Normality(x []float64, sizeLimit int) (*Result, error) {
	if sizeLimit <= 0 {
		sizeLimit = DefaultNormalitySizeLimit
	}
	data := dropNaN(x)
	if len(data) <= sizeLimit {
		return ShapiroWilk(data)
	}
	slog.Debug("sample above Shapiro-Wilk limit", "n", len(data), "limit", sizeLimit)
	return AndersonDarling(data)
}

// ShapiroWilk computes W and its p-value with Royston's approximation.
func ShapiroWilk(x []float64) (*Result, error) {
	n := len(x)
	if n < 3 {
		return nil, fmt.Errorf("%s needs at least 3 observations, got %d: %w", ShapiroWilkTest, n, ErrInsufficientData)
	}
	xs := append([]float64(nil), x...)
	sort.Float64s(xs)
	if xs[n-1]-xs[0] == 0 {
		return nil, fmt.Errorf("%s: %w", ShapiroWilkTest, ErrZeroVariance)
	}

	a := swCoefficients(n)
	mean := stat.Mean(xs, nil)
	var num, ss float64
	for i, v := range xs {
		num += a[i] * v
		d := v - mean
		ss += d * d
	}
	w := num * num / ss
	if w > 1 {
		w = 1
	}
	return &Result{Test: ShapiroWilkTest, Statistic: w, PValue: swPValue(w, n), N: n}, nil
}

// swCoefficients returns the antisymmetric weights a_1..a_n.
func swCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}
	m := make([]float64, n)
	fn := float64(n)
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
	}
	summ2 := floats.Dot(m, m)
	ssumm2 := math.Sqrt(summ2)
	u := 1 / math.Sqrt(fn)

	an := m[n-1]/ssumm2 + poly([]float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}, u)
	if n > 5 {
		an1 := m[n-2]/ssumm2 + poly([]float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}, u)
		phi := (summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		s := math.Sqrt(phi)
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / s
		}
		a[0], a[1], a[n-2], a[n-1] = -an, -an1, an1, an
		return a
	}
	phi := (summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	s := math.Sqrt(phi)
	for i := 1; i < n-1; i++ {
		a[i] = m[i] / s
	}
	a[0], a[n-1] = -an, an
	return a
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Max(0, math.Min(1, p))
	}
	fn := float64(n)
	var y, mu, sigma float64
	if n <= 11 {
		gamma := poly([]float64{-2.273, 0.459}, fn)
		l := math.Log(1 - w)
		if l >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - l)
		mu = poly([]float64{0.544, -0.39978, 0.025054, -6.714e-4}, fn)
		sigma = math.Exp(poly([]float64{1.3822, -0.77857, 0.062767, -0.0020322}, fn))
	} else {
		ln := math.Log(fn)
		y = math.Log(1 - w)
		mu = poly([]float64{-1.5861, -0.31082, -0.083751, 0.0038915}, ln)
		sigma = math.Exp(poly([]float64{-0.4803, -0.082676, 0.0030302}, ln))
	}
	return distuv.UnitNormal.Survival((y - mu) / sigma)
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}

// Anderson-Darling critical values for the normal case with estimated
// mean and variance, at 15, 10, 5, 2.5 and 1 percent.
var (
	adSignificance = []float64{15, 10, 5, 2.5, 1}
	adCritical     = []float64{0.576, 0.656, 0.787, 0.918, 1.092}
)

// AndersonDarling computes A² against a normal with estimated parameters,
// the small-sample adjusted critical values and an approximate p-value.
func AndersonDarling(x []float64) (*Result, error) {
	n := len(x)
	if n < 8 {
		return nil, fmt.Errorf("%s needs at least 8 observations, got %d: %w", AndersonDarlingTest, n, ErrInsufficientData)
	}
	xs := append([]float64(nil), x...)
	sort.Float64s(xs)
	mean, sd := stat.MeanStdDev(xs, nil)
	if sd == 0 {
		return nil, fmt.Errorf("%s: %w", AndersonDarlingTest, ErrZeroVariance)
	}
	fn := float64(n)
	var s float64
	for i := 0; i < n; i++ {
		zi := (xs[i] - mean) / sd
		zr := (xs[n-1-i] - mean) / sd
		s += float64(2*i+1) / fn * (normLogCDF(zi) + normLogCDF(-zr))
	}
	a2 := -fn - s

	adj := 1 + 4/fn - 25/(fn*fn)
	cv := make([]CriticalValue, len(adCritical))
	for i, c := range adCritical {
		cv[i] = CriticalValue{Significance: adSignificance[i], Value: math.Round(c/adj*1000) / 1000}
	}
	return &Result{
		Test:           AndersonDarlingTest,
		Statistic:      a2,
		PValue:         adPValue(a2, fn),
		N:              n,
		Approximate:    true,
		CriticalValues: cv,
	}, nil
}

// adPValue is the D'Agostino and Stephens interpolation for the modified statistic.
func adPValue(a2, n float64) float64 {
	a := a2 * (1 + 0.75/n + 2.25/(n*n))
	var p float64
	switch {
	case a >= 0.6:
		p = math.Exp(1.2937 - 5.709*a + 0.0186*a*a)
	case a >= 0.34:
		p = math.Exp(0.9177 - 4.279*a - 1.38*a*a)
	case a >= 0.2:
		p = 1 - math.Exp(-8.318+42.796*a-59.938*a*a)
	default:
		p = 1 - math.Exp(-13.436+101.14*a-223.73*a*a)
	}
	return math.Max(0, math.Min(1, p))
}

func normLogCDF(z float64) float64 {
	return math.Log(0.5 * math.Erfc(-z/math.Sqrt2))
}

// QQPoints pairs the sorted sample with standard normal quantiles at the
// same plotting positions.
func QQPoints(x []float64) (theoretical, sample []float64) {
	sample = dropNaN(x)
	sort.Float64s(sample)
	n := float64(len(sample))
	theoretical = make([]float64, len(sample))
	for i := range sample {
		theoretical[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (n + 0.25))
	}
	return theoretical, sample
}
