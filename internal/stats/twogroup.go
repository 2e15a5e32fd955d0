package stats

import (
	"fmt"

	mstats "github.com/aclements/go-moremath/stats"
)

// NormalityAlpha is the normality p-value above which two groups are
// compared with a t-test.
const NormalityAlpha = 0.05

// CompareTwoGroups runs a pooled-variance t-test when normality holds
// (p > NormalityAlpha) and a two-sided Mann-Whitney U test otherwise.
func CompareTwoGroups(a, b []float64, normality *Result) (*Result, error) {
	if normality != nil && normality.PValue > NormalityAlpha {
		return TTest(a, b)
	}
	return MannWhitney(a, b)
}

// TTest is Student's two-sample t-test assuming equal variances.
func TTest(a, b []float64) (*Result, error) {
	a, b = dropNaN(a), dropNaN(b)
	res, err := mstats.TwoSampleTTest(&mstats.Sample{Xs: a}, &mstats.Sample{Xs: b}, mstats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", StudentTTest, ErrInsufficientData, err)
	}
	return &Result{Test: StudentTTest, Statistic: res.T, PValue: res.P, DF: res.DoF, N: len(a) + len(b)}, nil
}

// MannWhitney is the two-sided Mann-Whitney U test; the statistic is U for a.
func MannWhitney(a, b []float64) (*Result, error) {
	a, b = dropNaN(a), dropNaN(b)
	res, err := mstats.MannWhitneyUTest(a, b, mstats.LocationDiffers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", MannWhitneyTest, ErrInsufficientData, err)
	}
	return &Result{Test: MannWhitneyTest, Statistic: res.U, PValue: res.P, N: len(a) + len(b)}, nil
}
