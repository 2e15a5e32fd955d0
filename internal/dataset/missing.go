package dataset

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/series"
	mstats "github.com/montanaflynn/stats"
)

// DefaultDropFraction is the missing share above which a column is dropped.
const DefaultDropFraction = 0.5

// Strategy names what HandleMissing did to a column.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyDrop   Strategy = "drop"
	StrategyMedian Strategy = "median"
	StrategyMode   Strategy = "mode"
)

// Imputation records the outcome of the missing-value policy for one column.
type Imputation struct {
	Column   string
	Missing  int
	Fraction float64
	Strategy Strategy
	// Value is the fill value as text; empty for none and drop.
	Value string
}

// HandleMissing applies the policy with DefaultDropFraction.
func (d *Dataset) HandleMissing(name string) (bool, Imputation, error) {
	return d.HandleMissingWith(name, DefaultDropFraction)
}

// HandleMissingWith drops the column when its missing share exceeds
// dropFraction; otherwise numeric columns are filled with the median of the
// present values and other columns with their mode. kept is false only when
// the column was dropped.
func (d *Dataset) HandleMissingWith(name string, dropFraction float64) (kept bool, imp Imputation, err error) {
	imp = Imputation{Column: name, Strategy: StrategyNone}
	s, err := d.col(name)
	if err != nil {
		return false, imp, err
	}
	imp.Missing = d.MissingCount(name)
	if s.Len() > 0 {
		imp.Fraction = float64(imp.Missing) / float64(s.Len())
	}
	if imp.Missing == 0 {
		return true, imp, nil
	}
	if imp.Fraction > dropFraction {
		imp.Strategy = StrategyDrop
		if err := d.Drop(name); err != nil {
			return false, imp, err
		}
		return false, imp, nil
	}

	vals, _ := d.Strings(name)
	if d.IsNumeric(name) {
		present, _ := d.NonMissingFloats(name)
		med, err := mstats.Median(present)
		if err != nil {
			return true, imp, fmt.Errorf("median %s: %w", name, err)
		}
		imp.Strategy, imp.Value = StrategyMedian, formatFloat(med)
		for i, v := range vals {
			if v == Missing {
				vals[i] = imp.Value
			}
		}
		return true, imp, d.replace(name, vals, series.Float)
	}

	present, _ := d.NonMissingStrings(name)
	imp.Strategy, imp.Value = StrategyMode, Mode(present)
	for i, v := range vals {
		if v == Missing {
			vals[i] = imp.Value
		}
	}
	return true, imp, d.replace(name, vals, s.Type())
}

// Mode returns the most frequent value; ties resolve to the lexicographically
// smallest. Empty input yields "".
func Mode(vals []string) string {
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestN := "", 0
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}
