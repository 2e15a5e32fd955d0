package analysis

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/plot"
	"github.com/KaramelBytes/edaloom-cli/internal/stats"
)

// Options controls inspection.
type Options struct {
	// DropFraction is the missing share above which a column is dropped.
	DropFraction float64
	// OrdinalCutoff: numeric columns with at most this many distinct values
	// report the median and a box plot instead of the mean and a histogram.
	OrdinalCutoff int
	// SampleRows determines how many head rows to include in the report.
	SampleRows int
	// TopValues is the number of frequent values listed for text columns.
	TopValues int
	// GroupBy computes per-group summaries of numeric columns.
	GroupBy string
	// Correlations lists Pearson correlations among numeric columns.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for dataset inspection.
func DefaultOptions() Options {
	return Options{
		DropFraction:  dataset.DefaultDropFraction,
		OrdinalCutoff: 10,
		SampleRows:    5,
		TopValues:     3,
	}
}

// Inspect applies the missing-value policy and type coercion to every column
// of ds, computes its central tendency and draws the matching chart. ds is
// modified in place; pass a clone to keep the session dataset untouched.
// Plot failures are recorded as notes and never abort the inspection.
func Inspect(ds *dataset.Dataset, p plot.Plotter, opt Options) (*Report, error) {
	if p == nil {
		p = plot.Discard{}
	}
	if opt.OrdinalCutoff <= 0 {
		opt.OrdinalCutoff = 10
	}
	if opt.DropFraction <= 0 {
		opt.DropFraction = dataset.DefaultDropFraction
	}
	rep := &Report{Name: ds.Name, Rows: ds.Rows()}
	for _, name := range ds.Columns() {
		cr, err := inspectColumn(ds, name, p, opt, rep)
		if err != nil {
			return nil, err
		}
		rep.Cols = append(rep.Cols, cr)
	}
	for i := 0; i < min(opt.SampleRows, ds.Rows()); i++ {
		rep.Samples = append(rep.Samples, headRow(ds, i))
	}
	if opt.GroupBy != "" {
		if err := groupSummary(ds, opt.GroupBy, rep); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by %s skipped: %v", opt.GroupBy, err))
		}
	}
	if opt.Correlations {
		rep.Corr = correlations(ds)
	}
	return rep, nil
}

func inspectColumn(ds *dataset.Dataset, name string, p plot.Plotter, opt Options, rep *Report) (ColumnReport, error) {
	cr := ColumnReport{Name: name}
	kept, imp, err := ds.HandleMissingWith(name, opt.DropFraction)
	cr.Imputation = imp
	if err != nil {
		return cr, fmt.Errorf("column %s: %w", name, err)
	}
	if !kept {
		cr.Dropped = true
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("column '%s' dropped due to more than %.0f%% missing values", name, opt.DropFraction*100))
		return cr, nil
	}
	if cr.Coerced, err = ds.CoerceNumeric(name); err != nil {
		return cr, fmt.Errorf("column %s: %w", name, err)
	}
	cr.Kind, _ = ds.Kind(name)
	if ds.IsNumeric(name) {
		cr.Kind = "numeric"
	} else if cr.Kind == "string" {
		cr.Kind = "text"
	}
	cr.Distinct = ds.Distinct(name)

	var path string
	var perr error
	if ds.IsNumeric(name) {
		vals, _ := ds.NonMissingFloats(name)
		if cr.Summary, err = stats.Describe(vals); err != nil {
			cr.Measure, cr.Central = "mean", dataset.Missing
			return cr, nil
		}
		if cr.Distinct > opt.OrdinalCutoff {
			cr.Measure, cr.Central = "mean", fmtNum(cr.Summary.Mean)
			path, perr = p.Histogram("Histogram of "+name, vals)
		} else {
			cr.Measure, cr.Central = "median", fmtNum(cr.Summary.Median)
			path, perr = p.BoxPlot("Box plot of "+name, []plot.Series{{Name: name, Values: vals}})
		}
	} else {
		vals, _ := ds.NonMissingStrings(name)
		cr.Measure, cr.Central = "mode", dataset.Mode(vals)
		labels, counts := plot.Frequencies(vals)
		for i := 0; i < min(opt.TopValues, len(labels)); i++ {
			cr.TopValues = append(cr.TopValues, CategoryCount{Value: labels[i], Count: int(counts[i])})
		}
		path, perr = p.BarChart("Bar chart of "+name, labels, counts)
	}
	if perr != nil {
		slog.Warn("plot failed", "column", name, "err", perr)
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("plot for '%s' failed: %v", name, perr))
	}
	cr.Plot = path
	return cr, nil
}

func headRow(ds *dataset.Dataset, i int) []string {
	var row []string
	for _, c := range ds.Columns() {
		vals, _ := ds.Strings(c)
		row = append(row, vals[i])
	}
	return row
}

func groupSummary(ds *dataset.Dataset, by string, rep *Report) error {
	if !ds.Has(by) {
		return fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, by)
	}
	idx := map[string]int{}
	for _, c := range ds.Columns() {
		if c == by || !ds.IsNumeric(c) {
			continue
		}
		groups, err := ds.Groups(c, by)
		if err != nil {
			return err
		}
		for _, g := range groups {
			j, ok := idx[g.Key]
			if !ok {
				j = len(rep.Groups)
				idx[g.Key] = j
				rep.Groups = append(rep.Groups, GroupResult{Key: g.Key, Metrics: map[string]NumSummary{}})
			}
			s, err := stats.Describe(g.Values)
			if err != nil {
				continue
			}
			rep.Groups[j].Metrics[c] = NumSummary{Count: s.N, Min: s.Min, Max: s.Max, Mean: s.Mean}
			rep.Groups[j].Size = max(rep.Groups[j].Size, s.N)
		}
	}
	rep.GroupBy = by
	return nil
}

func correlations(ds *dataset.Dataset) []PairCorr {
	var cols []string
	for _, c := range ds.Columns() {
		if ds.IsNumeric(c) {
			cols = append(cols, c)
		}
	}
	var pairs []PairCorr
	for i := 0; i < len(cols); i++ {
		xi, _ := ds.Floats(cols[i])
		for j := i + 1; j < len(cols); j++ {
			xj, _ := ds.Floats(cols[j])
			r, err := stats.Pearson(xi, xj)
			if err != nil || math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: cols[i], B: cols[j], R: r})
		}
	}
	sortPairs(pairs)
	return pairs
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
