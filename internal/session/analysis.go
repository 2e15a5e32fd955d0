package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"
	"github.com/KaramelBytes/edaloom-cli/internal/stats"
)

func (s *Session) analysis1(ctx context.Context) error {
	return s.menu(ctx, "Statistical Analysis 1 Menu", []menuItem{
		{"Normality Test", s.normalityTest},
		{"Hypothesis Test", s.hypothesisTest},
	}, "Back to Main Menu")
}

func (s *Session) analysis2(ctx context.Context) error {
	s.p.Printf("Column Classifications:\n%s", classificationTable(classify.Classify(s.ds, s.cfg.Comparison)))
	return s.menu(ctx, "Statistical Analysis 2 Menu", []menuItem{
		{"Linear Regression", s.regression},
		{"t-test or Mann-Whitney U Test", s.twoGroup},
		{"Chi-square Test", s.chiSquare},
	}, "Back to Main Menu")
}

func (s *Session) printResult(r *stats.Result) {
	approx := ""
	if r.Approximate {
		approx = " (approximate)"
	}
	s.p.Printf("%s: Statistic=%v, p-value=%v%s\n", r.Test, r.Statistic, r.PValue, approx)
	for _, cv := range r.CriticalValues {
		s.p.Printf("  critical value at %g%%: %v\n", cv.Significance, cv.Value)
	}
}

func (s *Session) normalityTest(ctx context.Context) error {
	cls := classify.Classify(s.ds, s.cfg.Inference)
	col, err := s.selectColumn(ctx, cls, classify.Interval, false)
	if err != nil {
		return err
	}
	vals, err := s.ds.NonMissingFloats(col)
	if err != nil {
		return err
	}
	s.notePlot(s.plot.QQHistogram(col, vals))
	r, err := stats.Normality(vals, s.cfg.NormalitySizeLimit)
	if err != nil {
		return fmt.Errorf("normality test on %s: %w", col, err)
	}
	s.printResult(r)
	if r.Reject(s.cfg.Alpha) {
		s.p.Printf("⚠ '%s' does not look normally distributed at alpha=%g.\n", col, s.cfg.Alpha)
	} else {
		s.p.Printf("✓ No evidence against normality of '%s' at alpha=%g.\n", col, s.cfg.Alpha)
	}
	return nil
}

// hypothesisTest compares an interval column across the groups of a nominal
// column. The nominal column may be skipped when none is eligible.
func (s *Session) hypothesisTest(ctx context.Context) error {
	cls := classify.Classify(s.ds, s.cfg.Inference)
	cont, err := s.selectColumn(ctx, cls, classify.Interval, false)
	if err != nil {
		return err
	}
	cat, err := s.selectColumn(ctx, cls, classify.Nominal, true)
	if err != nil && !errors.Is(err, classify.ErrNoSelection) {
		return err
	}
	vals, err := s.ds.NonMissingFloats(cont)
	if err != nil {
		return err
	}
	skew, skewed := stats.IsSkewed(vals, s.cfg.SkewThreshold)
	s.p.Printf("Skewness: %v\n", skew)
	null, err := s.p.Ask(ctx, "Please enter the null hypothesis: ")
	if err != nil {
		return err
	}
	if cat == "" {
		s.p.Printf("No categorical variable selected.\n")
		return nil
	}
	groups, err := s.ds.Groups(cont, cat)
	if err != nil {
		return err
	}
	samples := make([][]float64, len(groups))
	for i, g := range groups {
		samples[i] = g.Values
	}
	r, err := stats.CompareLocations(samples, skewed)
	if err != nil {
		return fmt.Errorf("compare %s by %s: %w", cont, cat, err)
	}
	s.printResult(r)
	if null != "" {
		s.p.Printf("Null hypothesis: %s\n", null)
	}
	s.p.Printf("%s\n", s.decision(r))
	return nil
}

// regression pairs present values by position; see stats.TruncatePair.
func (s *Session) regression(ctx context.Context) error {
	cls := classify.Classify(s.ds, s.cfg.Comparison)
	xCol, err := s.selectColumn(ctx, cls, classify.Interval, false)
	if err != nil {
		return err
	}
	yCol, err := s.selectColumn(ctx, cls, classify.Interval, false)
	if err != nil {
		return err
	}
	x, _ := s.ds.Floats(xCol)
	y, _ := s.ds.Floats(yCol)
	fit, err := stats.LinearRegression(x, y)
	if err != nil {
		return fmt.Errorf("regression of %s on %s: %w", yCol, xCol, err)
	}
	if fit.Truncated {
		s.p.Printf("⚠ Columns have different numbers of present values; using the first %d of each.\n", fit.N)
	}
	s.p.Printf("Slope: %.4f\n", fit.Slope)
	s.p.Printf("Intercept: %.4f\n", fit.Intercept)
	s.p.Printf("R-squared: %.4f\n", fit.RSquared)
	s.p.Printf("P-value: %.15f\n", fit.PValue)
	s.p.Printf("Standard error: %.4f\n", fit.StdErr)
	return nil
}

// twoGroup checks normality on the whole interval column, then compares the
// two groups of the chosen nominal column.
func (s *Session) twoGroup(ctx context.Context) error {
	cls := classify.Classify(s.ds, s.cfg.Comparison)
	cont, err := s.selectColumn(ctx, cls, classify.Interval, false)
	if err != nil {
		return err
	}
	cat, err := s.selectColumn(ctx, cls, classify.Nominal, false, classify.MaxCategories(2))
	if err != nil {
		return err
	}
	all, _ := s.ds.NonMissingFloats(cont)
	norm, err := stats.Normality(all, s.cfg.NormalitySizeLimit)
	if err != nil {
		return fmt.Errorf("normality test on %s: %w", cont, err)
	}
	s.printResult(norm)
	groups, err := s.ds.Groups(cont, cat)
	if err != nil {
		return err
	}
	if len(groups) != 2 {
		return fmt.Errorf("%s has %d groups with data, need 2: %w", cat, len(groups), stats.ErrInsufficientData)
	}
	r, err := stats.CompareTwoGroups(groups[0].Values, groups[1].Values, norm)
	if err != nil {
		return err
	}
	s.p.Printf("%s: Statistic = %.4f, p-value = %.15f\n", r.Test, r.Statistic, r.PValue)
	s.p.Printf("%s\n", s.decision(r))
	return nil
}

func (s *Session) chiSquare(ctx context.Context) error {
	cls := classify.Classify(s.ds, s.cfg.Comparison)
	a, err := s.selectColumn(ctx, cls, classify.Nominal, false)
	if err != nil {
		return err
	}
	b, err := s.selectColumn(ctx, cls, classify.Nominal, false)
	if err != nil {
		return err
	}
	ct, err := s.ds.Crosstab(a, b)
	if err != nil {
		return err
	}
	r, err := stats.ChiSquare(ct.Counts)
	if err != nil {
		return fmt.Errorf("chi-square on %s x %s: %w", a, b, err)
	}
	s.p.Printf("Chi-square Test: chi2 = %.4f, p-value = %.15f\n", r.Statistic, r.PValue)
	s.p.Printf("%s\n", s.decision(r))
	return nil
}
