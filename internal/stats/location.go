package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSkewThreshold is the absolute skewness above which location tests
// switch to a rank-based test.
const DefaultSkewThreshold = 1.0

// Skewness is the biased sample skewness m3/m2^1.5. NaNs are dropped.
func Skewness(x []float64) float64 {
	data := dropNaN(x)
	if len(data) == 0 {
		return math.NaN()
	}
	m2 := stat.Moment(2, data, nil)
	if m2 == 0 {
		return 0
	}
	return stat.Moment(3, data, nil) / math.Pow(m2, 1.5)
}

// IsSkewed reports whether |Skewness(x)| exceeds threshold, along with the value.
func IsSkewed(x []float64, threshold float64) (float64, bool) {
	s := Skewness(x)
	return s, math.Abs(s) > threshold
}

// CompareLocations tests whether two or more groups share a location:
// Kruskal-Wallis when the pooled data is skewed, one-way ANOVA otherwise.
func CompareLocations(groups [][]float64, skewed bool) (*Result, error) {
	if skewed {
		return KruskalWallis(groups)
	}
	return OneWayANOVA(groups)
}

func validGroups(name string, groups [][]float64) ([][]float64, int, error) {
	out := make([][]float64, 0, len(groups))
	total := 0
	for _, g := range groups {
		g = dropNaN(g)
		if len(g) == 0 {
			continue
		}
		out = append(out, g)
		total += len(g)
	}
	if len(out) < 2 {
		return nil, 0, fmt.Errorf("%s needs at least 2 non-empty groups, got %d: %w", name, len(out), ErrInsufficientData)
	}
	return out, total, nil
}

// OneWayANOVA computes the F statistic for equal group means.
func OneWayANOVA(groups [][]float64) (*Result, error) {
	gs, n, err := validGroups(ANOVATest, groups)
	if err != nil {
		return nil, err
	}
	k := len(gs)
	if n <= k {
		return nil, fmt.Errorf("%s needs more observations than groups: %w", ANOVATest, ErrInsufficientData)
	}
	var all []float64
	for _, g := range gs {
		all = append(all, g...)
	}
	grand := stat.Mean(all, nil)
	var ssb, ssw float64
	for _, g := range gs {
		m := stat.Mean(g, nil)
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}
	df1, df2 := float64(k-1), float64(n-k)
	if ssw == 0 {
		return nil, fmt.Errorf("%s: %w within groups", ANOVATest, ErrZeroVariance)
	}
	f := (ssb / df1) / (ssw / df2)
	p := distuv.F{D1: df1, D2: df2}.Survival(f)
	return &Result{Test: ANOVATest, Statistic: f, PValue: p, DF: df1, DF2: df2, N: n}, nil
}

// KruskalWallis computes the tie-corrected H statistic.
func KruskalWallis(groups [][]float64) (*Result, error) {
	gs, n, err := validGroups(KruskalWallisTest, groups)
	if err != nil {
		return nil, err
	}
	type obs struct {
		v float64
		g int
	}
	all := make([]obs, 0, n)
	for gi, g := range gs {
		for _, v := range g {
			all = append(all, obs{v, gi})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	rankSum := make([]float64, len(gs))
	var ties float64
	for i := 0; i < n; {
		j := i
		for j < n && all[j].v == all[i].v {
			j++
		}
		r := float64(i+j+1) / 2 // mean of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			rankSum[all[k].g] += r
		}
		t := float64(j - i)
		ties += t*t*t - t
		i = j
	}
	fn := float64(n)
	var h float64
	for gi, g := range gs {
		h += rankSum[gi] * rankSum[gi] / float64(len(g))
	}
	h = 12/(fn*(fn+1))*h - 3*(fn+1)
	c := 1 - ties/(fn*fn*fn-fn)
	if c == 0 {
		return nil, fmt.Errorf("%s: %w", KruskalWallisTest, ErrZeroVariance)
	}
	h /= c
	df := float64(len(gs) - 1)
	p := distuv.ChiSquared{K: df}.Survival(h)
	return &Result{Test: KruskalWallisTest, Statistic: h, PValue: p, DF: df, N: n}, nil
}
