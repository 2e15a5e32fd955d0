package dataset

import (
	"math"
	"sort"
)

// Group holds the present values of a numeric column for one level of a
// grouping column.
type Group struct {
	Key    string
	Values []float64
}

// Groups splits value by the levels of by. Rows missing either cell are
// skipped; groups come back sorted by key.
func (d *Dataset) Groups(value, by string) ([]Group, error) {
	vals, err := d.Floats(value)
	if err != nil {
		return nil, err
	}
	keys, err := d.Strings(by)
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	var groups []Group
	for i, v := range vals {
		if math.IsNaN(v) || keys[i] == Missing {
			continue
		}
		j, ok := idx[keys[i]]
		if !ok {
			j = len(groups)
			idx[keys[i]] = j
			groups = append(groups, Group{Key: keys[i]})
		}
		groups[j].Values = append(groups[j].Values, v)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Key < groups[b].Key })
	return groups, nil
}

// Contingency is a cross-tabulation of two categorical columns.
type Contingency struct {
	Rows   []string
	Cols   []string
	Counts [][]float64
}

// Crosstab counts co-occurrences of the levels of a and b over rows where both
// are present.
func (d *Dataset) Crosstab(a, b string) (*Contingency, error) {
	av, err := d.Strings(a)
	if err != nil {
		return nil, err
	}
	bv, err := d.Strings(b)
	if err != nil {
		return nil, err
	}
	pairs := map[[2]string]float64{}
	rowSet, colSet := map[string]struct{}{}, map[string]struct{}{}
	for i := range av {
		if av[i] == Missing || bv[i] == Missing {
			continue
		}
		pairs[[2]string{av[i], bv[i]}]++
		rowSet[av[i]] = struct{}{}
		colSet[bv[i]] = struct{}{}
	}
	ct := &Contingency{Rows: sortedKeys(rowSet), Cols: sortedKeys(colSet)}
	ct.Counts = make([][]float64, len(ct.Rows))
	for i, r := range ct.Rows {
		ct.Counts[i] = make([]float64, len(ct.Cols))
		for j, c := range ct.Cols {
			ct.Counts[i][j] = pairs[[2]string{r, c}]
		}
	}
	return ct, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
