package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Missing is the token every missing cell is normalized to before typing.
const Missing = "NaN"

var (
	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when a numeric view of a text column is requested.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrEmpty is returned for inputs without a header row.
	ErrEmpty = errors.New("dataset has no columns")
)

var missingTokens = map[string]bool{
	"":      true,
	"na":    true,
	"n/a":   true,
	"nan":   true,
	"null":  true,
	"none":  true,
	"<nil>": true,
}

func isMissingToken(s string) bool {
	return missingTokens[strings.ToLower(s)]
}

// Dataset is the session's working table. Methods that change it (Drop,
// HandleMissing, CoerceNumeric) mutate the receiver; use Clone for a scratch copy.
type Dataset struct {
	Name string
	df   dataframe.DataFrame
}

// FromRecords builds a dataset from a header row followed by data rows.
// Short rows are padded with missing cells and long rows are cut to the header width.
func FromRecords(name string, records [][]string) (*Dataset, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrEmpty
	}
	header := uniqueNames(records[0])
	ncol := len(header)
	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		row := make([]string, ncol)
		for i := 0; i < ncol; i++ {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			if isMissingToken(v) {
				v = Missing
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	return &Dataset{Name: name, df: df}, nil
}

// uniqueNames trims header cells, names empty ones by position and
// suffixes repeats so every column is addressable by name.
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		base := n
		for seen[n] > 0 {
			n = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[n]++
		out[i] = n
	}
	return out
}

// Columns returns column names in file order.
func (d *Dataset) Columns() []string { return d.df.Names() }

// Rows returns the number of data rows.
func (d *Dataset) Rows() int { return d.df.Nrow() }

// Clone returns an independent copy.
func (d *Dataset) Clone() *Dataset {
	return &Dataset{Name: d.Name, df: d.df.Copy()}
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (d *Dataset) col(name string) (series.Series, error) {
	if !d.Has(name) {
		return series.Series{}, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return d.df.Col(name), nil
}

// Kind returns the storage type of a column: int, float, string or bool.
func (d *Dataset) Kind(name string) (string, error) {
	s, err := d.col(name)
	if err != nil {
		return "", err
	}
	return string(s.Type()), nil
}

// IsNumeric reports whether the column has integer or float storage.
// Booleans are not numeric.
func (d *Dataset) IsNumeric(name string) bool {
	s, err := d.col(name)
	if err != nil {
		return false
	}
	return s.Type() == series.Int || s.Type() == series.Float
}

// IsText reports whether the column has string storage.
func (d *Dataset) IsText(name string) bool {
	s, err := d.col(name)
	if err != nil {
		return false
	}
	return s.Type() == series.String
}

// Floats returns the column as float64 with NaN for missing cells.
func (d *Dataset) Floats(name string) ([]float64, error) {
	s, err := d.col(name)
	if err != nil {
		return nil, err
	}
	if s.Type() != series.Int && s.Type() != series.Float {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, name)
	}
	return s.Float(), nil
}

// NonMissingFloats is Floats with missing cells removed.
func (d *Dataset) NonMissingFloats(name string) ([]float64, error) {
	vals, err := d.Floats(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Strings returns every cell rendered as text; missing cells are Missing.
func (d *Dataset) Strings(name string) ([]string, error) {
	s, err := d.col(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, s.Len())
	for i := range out {
		out[i] = cellString(s, i)
	}
	return out, nil
}

// NonMissingStrings is Strings with missing cells removed.
func (d *Dataset) NonMissingStrings(name string) ([]string, error) {
	vals, err := d.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != Missing {
			out = append(out, v)
		}
	}
	return out, nil
}

func cellString(s series.Series, i int) string {
	e := s.Elem(i)
	if e.IsNA() {
		return Missing
	}
	if s.Type() == series.Float {
		return formatFloat(e.Float())
	}
	return e.String()
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return Missing
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Distinct counts unique non-missing values.
func (d *Dataset) Distinct(name string) int {
	vals, err := d.NonMissingStrings(name)
	if err != nil {
		return 0
	}
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// MissingCount counts missing cells in a column.
func (d *Dataset) MissingCount(name string) int {
	s, err := d.col(name)
	if err != nil {
		return 0
	}
	n := 0
	for _, na := range s.IsNaN() {
		if na {
			n++
		}
	}
	return n
}

// Drop removes a column.
func (d *Dataset) Drop(name string) error {
	if !d.Has(name) {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	df := d.df.Drop(name)
	if df.Err != nil {
		return fmt.Errorf("drop %s: %w", name, df.Err)
	}
	d.df = df
	return nil
}

// replace swaps a column for values of type t, keeping its position.
// Missing values must already be rendered as Missing.
func (d *Dataset) replace(name string, vals []string, t series.Type) error {
	df := d.df.Mutate(series.New(vals, t, name))
	if df.Err != nil {
		return fmt.Errorf("replace %s: %w", name, df.Err)
	}
	d.df = df
	return nil
}
