package classify_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/prompt"
)

type fakeTable struct {
	names    []string
	numeric  map[string]bool
	distinct map[string]int
}

func (f fakeTable) Columns() []string       { return f.names }
func (f fakeTable) IsNumeric(n string) bool { return f.numeric[n] }
func (f fakeTable) Distinct(n string) int   { return f.distinct[n] }

func TestLabelThresholds(t *testing.T) {
	inf := classify.InferenceConfig()
	cmp := classify.ComparisonConfig()
	cases := []struct {
		name     string
		cfg      classify.Config
		numeric  bool
		distinct int
		want     classify.Category
	}{
		{"inference numeric 19", inf, true, 19, classify.NumericOrdinal},
		{"inference numeric 20", inf, true, 20, classify.Interval},
		{"inference text 19", inf, false, 19, classify.Nominal},
		{"inference text 20", inf, false, 20, classify.NonNumericOrdinal},
		{"comparison numeric 10", cmp, true, 10, classify.NumericOrdinal},
		{"comparison numeric 11", cmp, true, 11, classify.Interval},
		{"comparison text 10", cmp, false, 10, classify.Nominal},
		{"comparison text 11", cmp, false, 11, classify.NonNumericOrdinal},
		{"all null numeric", inf, true, 0, classify.NumericOrdinal},
		{"all null text", cmp, false, 0, classify.Nominal},
	}
	for _, c := range cases {
		if got := c.cfg.Label(c.numeric, c.distinct); got != c.want {
			t.Errorf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestIndependentThresholds(t *testing.T) {
	cfg := classify.Config{NumericThreshold: 5, CategoricalThreshold: 50}
	if cfg.Label(true, 6) != classify.Interval || cfg.Label(false, 6) != classify.Nominal {
		t.Fatalf("numeric and categorical thresholds must apply independently")
	}
}

func TestClassifyEveryColumnOnce(t *testing.T) {
	tb := fakeTable{
		names:    []string{"id", "city", "comment", "rating"},
		numeric:  map[string]bool{"id": true, "rating": true},
		distinct: map[string]int{"id": 500, "city": 4, "comment": 480, "rating": 5},
	}
	cls := classify.Classify(tb, classify.InferenceConfig())
	if len(cls.Columns) != 4 {
		t.Fatalf("columns=%d", len(cls.Columns))
	}
	want := map[string]classify.Category{
		"id":      classify.Interval,
		"city":    classify.Nominal,
		"comment": classify.NonNumericOrdinal,
		"rating":  classify.NumericOrdinal,
	}
	for n, c := range want {
		if got, ok := cls.Of(n); !ok || got != c {
			t.Errorf("%s: got %q want %q", n, got, c)
		}
	}
	if _, ok := cls.Of("missing"); ok {
		t.Errorf("unknown column must not classify")
	}
	counts := cls.Count()
	if counts[classify.Interval] != 1 || counts[classify.Nominal] != 1 {
		t.Errorf("counts=%v", counts)
	}
}

func TestAgeWithThreeValuesIsNumericOrdinal(t *testing.T) {
	recs := [][]string{{"age", "note"}}
	for i := 0; i < 30; i++ {
		recs = append(recs, []string{strconv.Itoa(20 + i%3), "row " + strconv.Itoa(i)})
	}
	ds, err := dataset.FromRecords("ages", recs)
	if err != nil {
		t.Fatal(err)
	}
	for _, cfg := range []classify.Config{classify.InferenceConfig(), classify.ComparisonConfig()} {
		cls := classify.Classify(ds, cfg)
		if got, _ := cls.Of("age"); got != classify.NumericOrdinal {
			t.Errorf("age: got %q", got)
		}
		if got, _ := cls.Of("note"); got != classify.NonNumericOrdinal {
			t.Errorf("note: got %q", got)
		}
	}
}

func TestClassifyRecomputesAfterMutation(t *testing.T) {
	ds, _ := dataset.FromRecords("t", [][]string{{"a", "b"}, {"1", "x"}, {"2", "y"}})
	before := classify.Classify(ds, classify.InferenceConfig())
	if err := ds.Drop("a"); err != nil {
		t.Fatal(err)
	}
	after := classify.Classify(ds, classify.InferenceConfig())
	if len(before.Columns) != 2 || len(after.Columns) != 1 {
		t.Fatalf("before=%d after=%d", len(before.Columns), len(after.Columns))
	}
}

func TestEligibleWithMaxCategories(t *testing.T) {
	tb := fakeTable{
		names:    []string{"sex", "region", "smoker"},
		distinct: map[string]int{"sex": 2, "region": 4, "smoker": 2},
	}
	cls := classify.Classify(tb, classify.ComparisonConfig())
	all := classify.Eligible(cls, classify.Nominal)
	if strings.Join(all, ",") != "sex,region,smoker" {
		t.Fatalf("eligible=%v", all)
	}
	two := classify.Eligible(cls, classify.Nominal, classify.MaxCategories(2))
	if strings.Join(two, ",") != "sex,smoker" {
		t.Fatalf("eligible<=2=%v", two)
	}
}

func TestSelectRepromptsUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := prompt.NewConsole(strings.NewReader("nope\n\nincome\n"), &out)
	got, err := classify.Select(context.Background(), p, []string{"income", "age"}, classify.SelectOptions{Category: classify.Interval})
	if err != nil || got != "income" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if strings.Count(out.String(), "Invalid selection") != 2 {
		t.Fatalf("expected two rejections, output=%q", out.String())
	}
}

func TestSelectEmpty(t *testing.T) {
	p := prompt.NewConsole(strings.NewReader(""), io.Discard)
	ctx := context.Background()
	if _, err := classify.Select(ctx, p, nil, classify.SelectOptions{AllowSkip: true}); !errors.Is(err, classify.ErrNoSelection) {
		t.Fatalf("want ErrNoSelection, got %v", err)
	}
	if _, err := classify.Select(ctx, p, nil, classify.SelectOptions{}); !errors.Is(err, classify.ErrNoEligibleColumns) {
		t.Fatalf("want ErrNoEligibleColumns, got %v", err)
	}
	if _, err := classify.Select(ctx, p, []string{"a"}, classify.SelectOptions{}); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF on exhausted input, got %v", err)
	}
}
