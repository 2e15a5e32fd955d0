package cmd

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so invocations do not leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(fl *pflag.Flag) {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		})
	}
	reset(c.Flags())
	reset(c.PersistentFlags())
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := runCmd(t, stdin, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(p, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

// linearCSV has x=1..n, y=2x+1, a two-level group and a review column.
func linearCSV(t *testing.T, n int) string {
	rows := []string{"x,y,g,review"}
	reviews := []string{"great product", "terrible service", "it arrived on tuesday"}
	for i := 1; i <= n; i++ {
		g := "a"
		if i%2 == 0 {
			g = "b"
		}
		rows = append(rows, strings.Join([]string{strconv.Itoa(i), strconv.Itoa(2*i + 1), g, reviews[i%3]}, ","))
	}
	return writeCSV(t, rows...)
}

func TestInteractiveExit(t *testing.T) {
	p := linearCSV(t, 12)
	out := mustRun(t, "5\n", p)
	for _, want := range []string{"Data loaded successfully with 12 rows and 4 columns.", "Main Menu:", "Exiting the program."} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestInteractiveAsksForPath(t *testing.T) {
	p := linearCSV(t, 12)
	out := mustRun(t, p+"\n5\n")
	if !strings.Contains(out, "Please provide the file path to the CSV dataset: ") {
		t.Errorf("no path prompt:\n%s", out)
	}
}

func TestInteractiveLoadFailure(t *testing.T) {
	if _, err := runCmd(t, "", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected load error")
	}
}

func TestClassifyProfiles(t *testing.T) {
	p := linearCSV(t, 12)
	out := mustRun(t, "", "classify", p)
	if !strings.Contains(out, "numeric ordinal=2") || !strings.Contains(out, "nominal=2") {
		t.Errorf("inference profile:\n%s", out)
	}
	out = mustRun(t, "", "classify", p, "--profile", "comparison")
	if !strings.Contains(out, "interval=2") {
		t.Errorf("comparison profile:\n%s", out)
	}
	out = mustRun(t, "", "classify", p, "--numeric-threshold", "12", "--inclusive")
	if !strings.Contains(out, "Thresholds: numeric 12, categorical 20, inclusive true") || !strings.Contains(out, "numeric ordinal=2") {
		t.Errorf("overrides:\n%s", out)
	}
	if _, err := runCmd(t, "", "classify", p, "--profile", "bogus"); err == nil {
		t.Error("expected profile error")
	}
}

func TestDescribeWritesMarkdown(t *testing.T) {
	p := linearCSV(t, 12)
	md := filepath.Join(t.TempDir(), "summary.md")
	out := mustRun(t, "", "describe", p, "-o", md, "--group-by", "g", "--correlations")
	if !strings.Contains(out, "✓ Wrote summary to") {
		t.Errorf("out=%s", out)
	}
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatal(err)
	}
	for _, sec := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[GROUP-BY SUMMARY: g]", "[CORRELATIONS]", "- x: numeric"} {
		if !strings.Contains(string(b), sec) {
			t.Errorf("missing %s in:\n%s", sec, b)
		}
	}
}

func TestDescribePlots(t *testing.T) {
	p := linearCSV(t, 12)
	dir := filepath.Join(t.TempDir(), "plots")
	mustRun(t, "", "describe", p, "--plots", "--plot-dir", dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("plot dir: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("want 4 charts, got %d", len(entries))
	}
}

func TestHypothesisCommands(t *testing.T) {
	p := linearCSV(t, 24)
	out := mustRun(t, "", "test", "regression", p, "--x", "x", "--y", "y")
	if !strings.Contains(out, "Slope: 2.0000") || !strings.Contains(out, "Intercept: 1.0000") {
		t.Errorf("regression:\n%s", out)
	}
	out = mustRun(t, "", "test", "normality", p, "--x", "x")
	if !strings.Contains(out, "Shapiro-Wilk Test: Statistic=") {
		t.Errorf("normality:\n%s", out)
	}
	out = mustRun(t, "", "test", "two-group", p, "--x", "x", "--group", "g")
	if !strings.Contains(out, "null hypothesis at alpha=0.05") {
		t.Errorf("two-group:\n%s", out)
	}
	out = mustRun(t, "", "test", "chi-square", p, "--x", "g", "--y", "review")
	if !strings.Contains(out, "Chi-square Test: Statistic=") {
		t.Errorf("chi-square:\n%s", out)
	}
	out = mustRun(t, "", "test", "location", p, "--x", "x", "--group", "review")
	if !strings.Contains(out, "Skewness: ") {
		t.Errorf("location:\n%s", out)
	}
	if _, err := runCmd(t, "", "test", "regression", p, "--x", "x"); err == nil {
		t.Error("expected missing --y error")
	}
	if _, err := runCmd(t, "", "test", "bogus", p); err == nil {
		t.Error("expected unknown test error")
	}
}

func TestSentimentCommand(t *testing.T) {
	p := linearCSV(t, 6)
	out := mustRun(t, "", "sentiment", p, "--column", "review")
	if !strings.Contains(out, "positive") || !strings.Contains(out, "negative") {
		t.Errorf("table:\n%s", out)
	}
	csvPath := filepath.Join(t.TempDir(), "scores.csv")
	mustRun(t, "", "sentiment", p, "-c", "review", "-b", "polarity", "-o", csvPath)
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 7 || strings.Join(rows[0], ",") != "text,score,sentiment,subjectivity" {
		t.Errorf("csv rows=%v", rows)
	}
	if _, err := runCmd(t, "", "sentiment", p, "-c", "x"); err == nil {
		t.Error("expected non-text column error")
	}
}

func TestSentimentStarsUnavailable(t *testing.T) {
	t.Setenv("EDALOOM_STARS_API_TOKEN", "")
	p := linearCSV(t, 3)
	_, err := runCmd(t, "", "sentiment", p, "-c", "review", "-b", "stars")
	if err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("err=%v", err)
	}
}

func TestBackendsList(t *testing.T) {
	out := mustRun(t, "", "backends")
	for _, want := range []string{"lexicon", "polarity", "stars", "✓ available"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSetAndShow(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.yaml")
	mustRun(t, "", "config", "set", "alpha", "0.01", "--config", cfgPath)
	out := mustRun(t, "", "config", "show", "--config", cfgPath)
	if !strings.Contains(out, "alpha: 0.01") {
		t.Errorf("show:\n%s", out)
	}
	for _, bad := range [][]string{
		{"alpha", "2"},
		{"comparison_inclusive", "maybe"},
		{"stars_api_token", "secret"},
		{"nope", "1"},
	} {
		if _, err := runCmd(t, "", "config", "set", bad[0], bad[1], "--config", cfgPath); err == nil {
			t.Errorf("set %v should fail", bad)
		}
	}
}
