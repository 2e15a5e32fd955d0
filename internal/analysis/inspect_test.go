package analysis

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/plot"
)

type recPlotter struct {
	plot.Discard
	calls []string
	fail  bool
}

func (r *recPlotter) rec(kind, title string) (string, error) {
	r.calls = append(r.calls, kind+":"+title)
	if r.fail {
		return "", errors.New("disk full")
	}
	return title + ".png", nil
}

func (r *recPlotter) Histogram(title string, _ []float64) (string, error) {
	return r.rec("hist", title)
}

func (r *recPlotter) BoxPlot(title string, _ []plot.Series) (string, error) {
	return r.rec("box", title)
}

func (r *recPlotter) BarChart(title string, _ []string, _ []float64) (string, error) {
	return r.rec("bar", title)
}

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	recs := [][]string{{"id", "rating", "city", "sparse", "amount"}}
	cities := []string{"Paris", "Lyon", "Paris", "Nice"}
	for i := 0; i < 12; i++ {
		sparse := ""
		if i < 3 {
			sparse = "x"
		}
		amount := strconv.Itoa(i * 10)
		if i == 5 {
			amount = "NA"
		}
		recs = append(recs, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(i%3 + 1),
			cities[i%4],
			sparse,
			amount,
		})
	}
	ds, err := dataset.FromRecords("shop.csv", recs)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return ds
}

func TestInspectCentralTendencyAndPlots(t *testing.T) {
	ds := fixture(t)
	rp := &recPlotter{}
	rep, err := Inspect(ds, rp, DefaultOptions())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(rep.Cols) != 5 {
		t.Fatalf("cols=%d", len(rep.Cols))
	}
	byName := map[string]ColumnReport{}
	for _, c := range rep.Cols {
		byName[c.Name] = c
	}
	if c := byName["id"]; c.Measure != "mean" || c.Central != "6.5" {
		t.Errorf("id: %s %s", c.Measure, c.Central)
	}
	if c := byName["rating"]; c.Measure != "median" || c.Central != "2" {
		t.Errorf("rating: %s %s", c.Measure, c.Central)
	}
	if c := byName["city"]; c.Measure != "mode" || c.Central != "Paris" || c.TopValues[0].Count != 6 {
		t.Errorf("city: %+v", c)
	}
	if c := byName["sparse"]; !c.Dropped {
		t.Errorf("sparse should be dropped: %+v", c.Imputation)
	}
	if c := byName["amount"]; c.Imputation.Strategy != dataset.StrategyMedian || c.Imputation.Missing != 1 {
		t.Errorf("amount imputation: %+v", c.Imputation)
	}
	want := []string{"hist:Histogram of id", "box:Box plot of rating", "bar:Bar chart of city", "hist:Histogram of amount"}
	if strings.Join(rp.calls, ",") != strings.Join(want, ",") {
		t.Errorf("plots=%v", rp.calls)
	}
	if ds.Has("sparse") {
		t.Errorf("dropped column still present")
	}
}

func TestInspectPlotFailureIsNote(t *testing.T) {
	rep, err := Inspect(fixture(t), &recPlotter{fail: true}, DefaultOptions())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	md := rep.Markdown()
	if !strings.Contains(md, "plot for 'city' failed: disk full") {
		t.Errorf("missing plot note:\n%s", md)
	}
}

func TestInspectCoercesNumericText(t *testing.T) {
	ds, err := dataset.FromRecords("p.csv", [][]string{{"price"}, {"1,5"}, {"2,5"}, {"3,5"}})
	if err != nil {
		t.Fatal(err)
	}
	rep, err := Inspect(ds, nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	c := rep.Cols[0]
	if !c.Coerced || c.Kind != "numeric" || c.Central != "2.5" {
		t.Errorf("price: %+v", c)
	}
}

func TestMarkdownSections(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = "city"
	opt.Correlations = true
	rep, err := Inspect(fixture(t), nil, opt)
	if err != nil {
		t.Fatal(err)
	}
	md := rep.Markdown()
	for _, sec := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[GROUP-BY SUMMARY: city]", "[CORRELATIONS]", "[HEAD AND SAMPLE ROWS]", "[NOTES]"} {
		if !strings.Contains(md, sec) {
			t.Errorf("missing %s", sec)
		}
	}
	if !strings.Contains(md, "- sparse: dropped") {
		t.Errorf("dropped column not reported:\n%s", md)
	}
	if len(rep.Groups) != 3 || rep.Groups[0].Key != "Lyon" {
		t.Errorf("groups=%+v", rep.Groups)
	}
	if len(rep.Samples) != 5 {
		t.Errorf("samples=%d", len(rep.Samples))
	}
}

func TestGroupByUnknownColumn(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = "nope"
	rep, err := Inspect(fixture(t), nil, opt)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Warnings) == 0 || !strings.Contains(rep.Warnings[len(rep.Warnings)-1], "group-by nope skipped") {
		t.Errorf("warnings=%v", rep.Warnings)
	}
}

func TestSafeHelpers(t *testing.T) {
	if safeName("  ") != "(unnamed)" {
		t.Error("safeName")
	}
	if safeVal("a|b\nc") != "a/b c" {
		t.Error("safeVal")
	}
}
