package dataset

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// CoerceNumeric converts a text column to float storage when every present
// value parses as a number. A column that uses the comma both as a thousands
// separator ("1,000") and as a decimal mark ("1,5") is ambiguous and stays
// text. It reports whether the column changed.
func (d *Dataset) CoerceNumeric(name string) (bool, error) {
	s, err := d.col(name)
	if err != nil {
		return false, err
	}
	if s.Type() != series.String {
		return false, nil
	}
	vals, _ := d.Strings(name)
	out := make([]string, len(vals))
	present := 0
	var grouped, decimal bool
	for i, v := range vals {
		if v == Missing {
			out[i] = Missing
			continue
		}
		f, ok := ParseNumeric(v)
		if !ok {
			return false, nil
		}
		switch commaRole(v) {
		case commaThousands:
			grouped = true
		case commaDecimal:
			decimal = true
		}
		if grouped && decimal {
			return false, nil
		}
		out[i] = formatFloat(f)
		present++
	}
	if present == 0 {
		return false, nil
	}
	return true, d.replace(name, out, series.Float)
}

type commaUse int

const (
	commaNone commaUse = iota
	commaThousands
	commaDecimal
)

// commaGroups matches an integer grouped in threes by commas: 1,000 or 12,345,678.
var commaGroups = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

// commaRole reports how a value without a dot uses its commas.
func commaRole(s string) commaUse {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if !strings.Contains(raw, ",") || strings.Contains(raw, ".") {
		return commaNone
	}
	if commaGroups.MatchString(raw) {
		return commaThousands
	}
	return commaDecimal
}

// ParseNumeric parses numbers written with either decimal separator, optional
// thousands grouping, a trailing percent sign or scientific notation. When
// the comma is the only separator it is a thousands separator if it groups
// digits in threes ("1,000", "12,345,678") and a decimal mark otherwise.
func ParseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	var dec, thou rune
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		dec, thou = ',', '.'
	case cpos >= 0 && dpos >= 0:
		dec, thou = '.', ','
	case cpos >= 0 && commaGroups.MatchString(raw):
		dec, thou = '.', ','
	case cpos >= 0:
		if strings.Count(raw, ",") > 1 {
			return 0, false
		}
		dec = ','
	default:
		dec = '.'
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else {
		raw = strings.ReplaceAll(raw, string(thou), "")
		raw = strings.ReplaceAll(raw, " ", "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
