// Package classify assigns each column a statistical category from its
// storage type and cardinality, and lets the operator pick columns by category.
package classify

// Category is a column's statistical type.
type Category string

const (
	NumericOrdinal    Category = "numeric ordinal"
	Interval          Category = "interval"
	Nominal           Category = "nominal"
	NonNumericOrdinal Category = "non-numeric ordinal"
)

// Categories lists every category in display order.
var Categories = []Category{NumericOrdinal, Interval, Nominal, NonNumericOrdinal}

// Config holds the cardinality cut-offs. A column is low-cardinality when its
// distinct count is below the threshold, or equal to it when Inclusive is set.
type Config struct {
	NumericThreshold     int
	CategoricalThreshold int
	Inclusive            bool
}

// InferenceConfig is used by statistical analysis 1.
func InferenceConfig() Config {
	return Config{NumericThreshold: 20, CategoricalThreshold: 20}
}

// ComparisonConfig is used by statistical analysis 2.
func ComparisonConfig() Config {
	return Config{NumericThreshold: 10, CategoricalThreshold: 10, Inclusive: true}
}

func (c Config) low(distinct, threshold int) bool {
	if c.Inclusive {
		return distinct <= threshold
	}
	return distinct < threshold
}

// Label maps storage type and distinct count to a category.
func (c Config) Label(numeric bool, distinct int) Category {
	if numeric {
		if c.low(distinct, c.NumericThreshold) {
			return NumericOrdinal
		}
		return Interval
	}
	if c.low(distinct, c.CategoricalThreshold) {
		return Nominal
	}
	return NonNumericOrdinal
}

// Table is the view of a dataset the classifier needs.
type Table interface {
	Columns() []string
	IsNumeric(name string) bool
	Distinct(name string) int
}

// Column is one classified column.
type Column struct {
	Name     string
	Category Category
	Numeric  bool
	Distinct int
}

// Classification is a snapshot; classify again after the table changes.
type Classification struct {
	Columns []Column
	index   map[string]int
}

// Classify labels every column of t in column order.
func Classify(t Table, cfg Config) *Classification {
	names := t.Columns()
	cls := &Classification{Columns: make([]Column, 0, len(names)), index: make(map[string]int, len(names))}
	for _, n := range names {
		num := t.IsNumeric(n)
		d := t.Distinct(n)
		cls.index[n] = len(cls.Columns)
		cls.Columns = append(cls.Columns, Column{Name: n, Category: cfg.Label(num, d), Numeric: num, Distinct: d})
	}
	return cls
}

// Of returns the category of a column.
func (c *Classification) Of(name string) (Category, bool) {
	i, ok := c.index[name]
	if !ok {
		return "", false
	}
	return c.Columns[i].Category, true
}

// Count returns how many columns fall in each category.
func (c *Classification) Count() map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, col := range c.Columns {
		out[col.Category]++
	}
	return out
}
