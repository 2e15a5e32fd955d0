package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/stats"
)

// Report is a markdown-friendly inspection of a dataset.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnReport
	Samples  [][]string
	Groups   []GroupResult
	GroupBy  string
	Corr     []PairCorr
	Warnings []string
}

// ColumnReport is the outcome of inspecting one column.
type ColumnReport struct {
	Name       string
	Kind       string // numeric|text|bool
	Imputation dataset.Imputation
	Dropped    bool
	Coerced    bool
	Distinct   int
	// Measure is mean, median or mode; Central is its value as text.
	Measure   string
	Central   string
	Summary   *stats.Summary
	TopValues []CategoryCount
	Plot      string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	kept := 0
	for _, c := range r.Cols {
		if !c.Dropped {
			kept++
		}
	}
	b.WriteString(fmt.Sprintf("Columns: %d (kept %d)\n\n", len(r.Cols), kept))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		name := safeName(c.Name)
		miss := c.Imputation
		if c.Dropped {
			b.WriteString(fmt.Sprintf("- %s: dropped (missing %.1f%%)\n", name, miss.Fraction*100))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s (distinct %d, missing %.1f%%)", name, c.Kind, c.Distinct, miss.Fraction*100))
		switch miss.Strategy {
		case dataset.StrategyMedian, dataset.StrategyMode:
			b.WriteString(fmt.Sprintf(" filled %d with %s %s", miss.Missing, miss.Strategy, safeVal(miss.Value)))
		}
		if c.Coerced {
			b.WriteString(" (converted to numeric)")
		}
		b.WriteString(fmt.Sprintf(": %s %s", c.Measure, safeVal(c.Central)))
		if s := c.Summary; s != nil {
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, std %.4g", s.Min, s.Max, s.StdDev))
		}
		if len(c.TopValues) > 0 {
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		}
		if c.Plot != "" {
			b.WriteString(fmt.Sprintf(" [plot: %s]", c.Plot))
		}
		b.WriteString("\n")
	}
	if len(r.Groups) > 0 {
		b.WriteString(fmt.Sprintf("\n[GROUP-BY SUMMARY: %s]\n", r.GroupBy))
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", g.Key, g.Size))
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			maxk := min(6, len(keys))
			for i := 0; i < maxk; i++ {
				m := g.Metrics[keys[i]]
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g)\n", keys[i], m.Mean, m.Min, m.Max))
			}
		}
	}
	if len(r.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for i := 0; i < min(10, len(r.Corr)); i++ {
			p := r.Corr[i]
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		var names []string
		for _, c := range r.Cols {
			if !c.Dropped {
				names = append(names, safeName(c.Name))
			}
		}
		b.WriteString("| " + strings.Join(names, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(names)) + "\n")
		for _, row := range r.Samples {
			cells := make([]string, len(names))
			for i := range names {
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				cells[i] = safeVal(val)
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sortPairs(pairs []PairCorr) {
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
