package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
)

// script is a Prompter that replays canned answers and records everything.
type script struct {
	answers []string
	out     strings.Builder
}

func (s *script) Ask(ctx context.Context, q string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.out.WriteString(q)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	s.out.WriteString(a + "\n")
	return a, nil
}

func (s *script) Printf(format string, args ...any) {
	fmt.Fprintf(&s.out, format, args...)
}

func run(t *testing.T, ds *dataset.Dataset, cfg Config, answers ...string) string {
	t.Helper()
	sc := &script{answers: answers}
	if err := New(ds, sc, nil, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v\n%s", err, sc.out.String())
	}
	return sc.out.String()
}

func records(t *testing.T, header []string, n int, row func(i int) []string) *dataset.Dataset {
	t.Helper()
	recs := [][]string{header}
	for i := 0; i < n; i++ {
		recs = append(recs, row(i))
	}
	ds, err := dataset.FromRecords("test.csv", recs)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return ds
}

func linear(t *testing.T, n int) *dataset.Dataset {
	return records(t, []string{"x", "y", "g"}, n, func(i int) []string {
		g := "a"
		if i%2 == 1 {
			g = "b"
		}
		return []string{strconv.Itoa(i + 1), strconv.Itoa(2*(i+1) + 1), g}
	})
}

func reviews(t *testing.T) *dataset.Dataset {
	texts := []string{"great product", "terrible service", "it arrived on tuesday", ""}
	return records(t, []string{"id", "review"}, len(texts), func(i int) []string {
		return []string{strconv.Itoa(i), texts[i]}
	})
}

func wantAll(t *testing.T, out string, subs ...string) {
	t.Helper()
	for _, s := range subs {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q\n---\n%s", s, out)
		}
	}
}

func TestMainMenuInvalidThenExit(t *testing.T) {
	out := run(t, linear(t, 12), DefaultConfig(), "9", "abc", "5")
	if strings.Count(out, "Invalid choice. Please try again.") != 2 {
		t.Errorf("expected two rejections:\n%s", out)
	}
	wantAll(t, out, "Main Menu:", "5. Exit", "Exiting the program.")
}

func TestRunEndsOnEOF(t *testing.T) {
	out := run(t, linear(t, 12), DefaultConfig())
	wantAll(t, out, "Exiting the program.")
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(linear(t, 12), &script{answers: []string{"5"}}, nil, DefaultConfig()).Run(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestInspectionMenu(t *testing.T) {
	ds := records(t, []string{"score", "city", "notes"}, 12, func(i int) []string {
		city := "Paris"
		if i%3 == 0 {
			city = ""
		}
		note := ""
		if i < 2 {
			note = "late"
		}
		return []string{strconv.Itoa(i), city, note}
	})
	out := run(t, ds, DefaultConfig(),
		"1",
		"4", "score",
		"4", "city",
		"3", "score", "score",
		"7", "5")
	wantAll(t, out,
		"Processing column: score",
		"Mean of 'score': 5.5",
		"Filled missing values in non-numeric column 'city' with mode value 'Paris'.",
		"Column 'notes' dropped due to more than 50% missing values.",
		"Standard Deviation of 'score': ",
		"Invalid column selected.",
		"Correlation between 'score' and 'score': ",
		"Back to Main Menu",
	)
	if !ds.Has("notes") {
		t.Error("inspection must not modify the session dataset")
	}
}

func TestRegressionMenu(t *testing.T) {
	out := run(t, linear(t, 12), DefaultConfig(), "3", "1", "x", "y", "4", "5")
	wantAll(t, out, "Available interval columns: x, y", "Slope: 2.0000", "Intercept: 1.0000", "R-squared: 1.0000")
}

func TestAnalysis2ListsClassifications(t *testing.T) {
	out := run(t, linear(t, 12), DefaultConfig(), "3", "4", "5")
	wantAll(t, out, "Column Classifications:", "interval", "nominal", "Statistical Analysis 2 Menu:")
	if strings.Index(out, "Column Classifications:") > strings.Index(out, "Statistical Analysis 2 Menu:") {
		t.Errorf("classifications should precede the menu:\n%s", out)
	}
}

func TestTwoGroupMenu(t *testing.T) {
	out := run(t, linear(t, 24), DefaultConfig(), "3", "2", "x", "g", "4", "5")
	wantAll(t, out, "Shapiro-Wilk Test: Statistic=", "p-value = ", "null hypothesis at alpha=0.05")
}

func TestChiSquareNoEligibleColumns(t *testing.T) {
	ds := records(t, []string{"x"}, 12, func(i int) []string { return []string{strconv.Itoa(i)} })
	out := run(t, ds, DefaultConfig(), "3", "3", "4", "5")
	wantAll(t, out, "✗ no eligible columns: nominal", "Statistical Analysis 2 Menu:")
}

func TestHypothesisTestSkipsMissingNominal(t *testing.T) {
	ds := records(t, []string{"x"}, 24, func(i int) []string { return []string{strconv.Itoa(i * i)} })
	out := run(t, ds, DefaultConfig(), "2", "2", "x", "means are equal", "3", "5")
	wantAll(t, out, "Skewness: ", "Please enter the null hypothesis: ", "No categorical variable selected.")
}

func TestHypothesisTestWithGroups(t *testing.T) {
	ds := records(t, []string{"x", "g"}, 30, func(i int) []string {
		return []string{strconv.Itoa(i + 10*(i%3)), "grp" + strconv.Itoa(i%3)}
	})
	out := run(t, ds, DefaultConfig(), "2", "2", "x", "g", "groups share a mean", "3", "5")
	wantAll(t, out, "Null hypothesis: groups share a mean", "null hypothesis at alpha=0.05")
	if !strings.Contains(out, "ANOVA: Statistic=") && !strings.Contains(out, "Kruskal-Wallis Test: Statistic=") {
		t.Errorf("no location test printed:\n%s", out)
	}
}

func TestSentimentLexicon(t *testing.T) {
	out := run(t, reviews(t), DefaultConfig(), "4", "review", "1", "5")
	wantAll(t, out, "Text Columns in the Dataset:", "great product", "positive", "negative", "neutral")
}

func TestSentimentStarsUnavailable(t *testing.T) {
	out := run(t, reviews(t), DefaultConfig(), "4", "review", "3", "5")
	wantAll(t, out, "⚠ stars backend unavailable", "EDALOOM_STARS_API_TOKEN", "Main Menu:")
}

func TestSentimentRejectsColumns(t *testing.T) {
	out := run(t, reviews(t), DefaultConfig(), "4", "nope", "4", "id", "4", "review", "7", "5")
	wantAll(t, out, "Invalid column name.", "Selected column is not a text column.", "Invalid choice. Please choose a number from 1 to 3.")
}

func TestOpenAsksForPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "d.csv")
	if err := os.WriteFile(p, []byte("a,b\n1,x\n2,y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sc := &script{answers: []string{p}}
	ds, err := Open(context.Background(), sc, "", dataset.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ds.Rows() != 2 {
		t.Errorf("rows=%d", ds.Rows())
	}
	wantAll(t, sc.out.String(), "Please provide the file path to the CSV dataset: ", "Data loaded successfully with 2 rows and 2 columns.")
	if _, err := Open(context.Background(), &script{}, filepath.Join(t.TempDir(), "missing.csv"), dataset.Options{}); err == nil {
		t.Error("expected load error")
	}
}
