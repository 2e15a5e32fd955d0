package dataset

import "unicode/utf8"

// TextSummary describes a text column for the sentiment overview.
type TextSummary struct {
	Name      string
	AvgLength float64
	Unique    int
}

// TextColumns summarizes every string-typed column in file order.
func (d *Dataset) TextColumns() []TextSummary {
	var out []TextSummary
	for _, name := range d.Columns() {
		if !d.IsText(name) {
			continue
		}
		vals, _ := d.NonMissingStrings(name)
		ts := TextSummary{Name: name, Unique: d.Distinct(name)}
		if len(vals) > 0 {
			total := 0
			for _, v := range vals {
				total += utf8.RuneCountInString(v)
			}
			ts.AvgLength = float64(total) / float64(len(vals))
		}
		out = append(out, ts)
	}
	return out
}
