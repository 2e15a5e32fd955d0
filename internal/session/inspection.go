package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/plot"
	"github.com/KaramelBytes/edaloom-cli/internal/stats"
)

// inspection cleans a copy of the dataset column by column, then offers
// plots and summary statistics on the cleaned copy.
func (s *Session) inspection(ctx context.Context) error {
	ds := s.ds.Clone()
	opt := analysis.DefaultOptions()
	opt.DropFraction = s.cfg.DropFraction
	rep, err := analysis.Inspect(ds, s.plot, opt)
	if err != nil {
		return err
	}
	for _, c := range rep.Cols {
		s.printColumn(c, opt.DropFraction)
	}
	in := &inspector{s: s, ds: ds}
	return s.menu(ctx, "Data Inspection Menu", []menuItem{
		{"Scatter Plot", in.scatter},
		{"Box Plot", in.boxPlot},
		{"Correlation", in.correlation},
		{"Standard Deviation", in.measure("Standard Deviation", stats.StdDev)},
		{"Kurtosis", in.measure("Kurtosis", stats.Kurtosis)},
		{"Skewness", in.measure("Skewness", stats.SampleSkew)},
	}, "Back to Main Menu")
}

func (s *Session) printColumn(c analysis.ColumnReport, dropFraction float64) {
	s.p.Printf("\nProcessing column: %s\n", c.Name)
	imp := c.Imputation
	if c.Dropped {
		s.p.Printf("Column '%s' dropped due to more than %.0f%% missing values.\n", c.Name, dropFraction*100)
		return
	}
	switch {
	case imp.Missing == 0:
	case imp.Strategy == dataset.StrategyMedian:
		s.p.Printf("Filled missing values in numeric column '%s' with median value %s.\n", c.Name, imp.Value)
	case imp.Strategy == dataset.StrategyMode:
		s.p.Printf("Filled missing values in non-numeric column '%s' with mode value '%s'.\n", c.Name, imp.Value)
	}
	if c.Coerced {
		s.p.Printf("Converted column '%s' to numeric data type.\n", c.Name)
	}
	switch c.Measure {
	case "mean":
		s.p.Printf("Mean of '%s': %s\n", c.Name, c.Central)
	case "median":
		s.p.Printf("Median of ordinal numeric column '%s': %s\n", c.Name, c.Central)
	default:
		s.p.Printf("Mode of nominal column '%s': %s\n", c.Name, c.Central)
	}
	if c.Plot != "" {
		s.p.Printf("✓ Saved plot: %s\n", c.Plot)
	}
}

type inspector struct {
	s  *Session
	ds *dataset.Dataset
}

func (in *inspector) numeric() []string {
	var out []string
	for _, c := range in.ds.Columns() {
		if in.ds.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

func (in *inspector) nonNumeric() []string {
	var out []string
	for _, c := range in.ds.Columns() {
		if !in.ds.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ask collects one answer per question after listing the candidates.
func (in *inspector) ask(ctx context.Context, questions ...string) ([]string, error) {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		ans, err := in.s.p.Ask(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, ans)
	}
	return out, nil
}

func (in *inspector) scatter(ctx context.Context) error {
	num := in.numeric()
	in.s.p.Printf("Numeric Columns: %s\n", strings.Join(num, ", "))
	ans, err := in.ask(ctx, "Enter the name of the X-axis column: ", "Enter the name of the Y-axis column: ")
	if err != nil {
		return err
	}
	x, y := ans[0], ans[1]
	if !contains(num, x) || !contains(num, y) {
		in.s.p.Printf("Invalid columns selected.\n")
		return nil
	}
	xs, _ := in.ds.Floats(x)
	ys, _ := in.ds.Floats(y)
	in.s.notePlot(in.s.plot.Scatter(fmt.Sprintf("Scatter Plot of %s vs %s", y, x), x, y, xs, ys))
	return nil
}

func (in *inspector) boxPlot(ctx context.Context) error {
	num, ord := in.numeric(), in.nonNumeric()
	in.s.p.Printf("Numeric Columns: %s\n", strings.Join(num, ", "))
	in.s.p.Printf("Ordinal Columns: %s\n", strings.Join(ord, ", "))
	ans, err := in.ask(ctx, "Enter the name of the numeric column: ", "Enter the name of the ordinal column: ")
	if err != nil {
		return err
	}
	n, o := ans[0], ans[1]
	if !contains(num, n) || !contains(ord, o) {
		in.s.p.Printf("Invalid columns selected.\n")
		return nil
	}
	groups, err := in.ds.Groups(n, o)
	if err != nil {
		return err
	}
	series := make([]plot.Series, len(groups))
	for i, g := range groups {
		series[i] = plot.Series{Name: g.Key, Values: g.Values}
	}
	in.s.notePlot(in.s.plot.BoxPlot(fmt.Sprintf("Box Plot of %s by %s", n, o), series))
	return nil
}

func (in *inspector) correlation(ctx context.Context) error {
	num := in.numeric()
	in.s.p.Printf("Numeric Columns: %s\n", strings.Join(num, ", "))
	ans, err := in.ask(ctx, "Enter the first column: ", "Enter the second column: ")
	if err != nil {
		return err
	}
	a, b := ans[0], ans[1]
	if !contains(num, a) || !contains(num, b) {
		in.s.p.Printf("Invalid columns selected.\n")
		return nil
	}
	xa, _ := in.ds.Floats(a)
	xb, _ := in.ds.Floats(b)
	r, err := stats.Pearson(xa, xb)
	if err != nil {
		return err
	}
	in.s.p.Printf("Correlation between '%s' and '%s': %v\n", a, b, r)
	return nil
}

func (in *inspector) measure(label string, fn func([]float64) float64) func(context.Context) error {
	return func(ctx context.Context) error {
		num := in.numeric()
		in.s.p.Printf("Numeric Columns: %s\n", strings.Join(num, ", "))
		ans, err := in.ask(ctx, "Enter the column name: ")
		if err != nil {
			return err
		}
		if !contains(num, ans[0]) {
			in.s.p.Printf("Invalid column selected.\n")
			return nil
		}
		vals, _ := in.ds.NonMissingFloats(ans[0])
		in.s.p.Printf("%s of '%s': %v\n", label, ans[0], fn(vals))
		return nil
	}
}
