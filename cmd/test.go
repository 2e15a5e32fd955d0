package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"
	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/stats"
	"github.com/spf13/cobra"
)

var (
	testX     string
	testY     string
	testGroup string
)

var testCmd = &cobra.Command{
	Use:   "test <normality|location|two-group|chi-square|regression> <file>",
	Short: "Run a hypothesis test without the menus",
	Long: `Runs one of the dispatchers used by the statistical analysis menus:

  normality   --x col              Shapiro-Wilk, or Anderson-Darling above the size limit
  location    --x col --group col  ANOVA, or Kruskal-Wallis when --x is skewed
  two-group   --x col --group col  t-test when --x looks normal, else Mann-Whitney U
  chi-square  --x col --y col      independence of two categorical columns
  regression  --x col --y col      least-squares fit of --y on --x`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := args[0]
		ds, c, err := openDataset(args[1])
		if err != nil {
			return err
		}
		sc := sessionConfig(c)
		out := cmd.OutOrStdout()
		need := func(flag, val string) error {
			if val == "" {
				return fmt.Errorf("%s requires --%s", kind, flag)
			}
			if !ds.Has(val) {
				return fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, val)
			}
			return nil
		}
		expect := func(conf classify.Config, col string, cat classify.Category) {
			cls := classify.Classify(ds, conf)
			if got, _ := cls.Of(col); got != cat {
				fmt.Fprintf(out, "⚠ '%s' is classified as %s, expected %s\n", col, got, cat)
			}
		}

		var res *stats.Result
		switch kind {
		case "normality":
			if err := need("x", testX); err != nil {
				return err
			}
			x, err := ds.NonMissingFloats(testX)
			if err != nil {
				return err
			}
			if res, err = stats.Normality(x, sc.NormalitySizeLimit); err != nil {
				return err
			}
		case "location":
			if err := need("x", testX); err != nil {
				return err
			}
			if err := need("group", testGroup); err != nil {
				return err
			}
			expect(sc.Inference, testX, classify.Interval)
			expect(sc.Inference, testGroup, classify.Nominal)
			x, err := ds.NonMissingFloats(testX)
			if err != nil {
				return err
			}
			skew, skewed := stats.IsSkewed(x, sc.SkewThreshold)
			fmt.Fprintf(out, "Skewness: %v\n", skew)
			groups, err := ds.Groups(testX, testGroup)
			if err != nil {
				return err
			}
			samples := make([][]float64, len(groups))
			for i, g := range groups {
				samples[i] = g.Values
			}
			if res, err = stats.CompareLocations(samples, skewed); err != nil {
				return err
			}
		case "two-group":
			if err := need("x", testX); err != nil {
				return err
			}
			if err := need("group", testGroup); err != nil {
				return err
			}
			expect(sc.Comparison, testX, classify.Interval)
			all, err := ds.NonMissingFloats(testX)
			if err != nil {
				return err
			}
			norm, err := stats.Normality(all, sc.NormalitySizeLimit)
			if err != nil {
				return err
			}
			printResult(out, norm)
			groups, err := ds.Groups(testX, testGroup)
			if err != nil {
				return err
			}
			if len(groups) != 2 {
				return fmt.Errorf("%s has %d groups with data, need 2: %w", testGroup, len(groups), stats.ErrInsufficientData)
			}
			if res, err = stats.CompareTwoGroups(groups[0].Values, groups[1].Values, norm); err != nil {
				return err
			}
		case "chi-square":
			if err := need("x", testX); err != nil {
				return err
			}
			if err := need("y", testY); err != nil {
				return err
			}
			expect(sc.Comparison, testX, classify.Nominal)
			expect(sc.Comparison, testY, classify.Nominal)
			ct, err := ds.Crosstab(testX, testY)
			if err != nil {
				return err
			}
			if res, err = stats.ChiSquare(ct.Counts); err != nil {
				return err
			}
		case "regression":
			if err := need("x", testX); err != nil {
				return err
			}
			if err := need("y", testY); err != nil {
				return err
			}
			x, err := ds.Floats(testX)
			if err != nil {
				return err
			}
			y, err := ds.Floats(testY)
			if err != nil {
				return err
			}
			fit, err := stats.LinearRegression(x, y)
			if err != nil {
				return err
			}
			if fit.Truncated {
				fmt.Fprintf(out, "⚠ Columns have different numbers of present values; using the first %d of each.\n", fit.N)
			}
			fmt.Fprintf(out, "Slope: %.4f\nIntercept: %.4f\nR-squared: %.4f\nP-value: %.15f\nStandard error: %.4f\n",
				fit.Slope, fit.Intercept, fit.RSquared, fit.PValue, fit.StdErr)
			return nil
		default:
			return fmt.Errorf("unknown test: %s", kind)
		}
		printResult(out, res)
		if res.Reject(sc.Alpha) {
			fmt.Fprintf(out, "✗ Reject the null hypothesis at alpha=%g\n", sc.Alpha)
		} else {
			fmt.Fprintf(out, "✓ Fail to reject the null hypothesis at alpha=%g\n", sc.Alpha)
		}
		return nil
	},
}

func printResult(w io.Writer, r *stats.Result) {
	approx := ""
	if r.Approximate {
		approx = " (approximate)"
	}
	fmt.Fprintf(w, "%s: Statistic=%v, p-value=%v%s\n", r.Test, r.Statistic, r.PValue, approx)
	for _, cv := range r.CriticalValues {
		fmt.Fprintf(w, "  critical value at %g%%: %v\n", cv.Significance, cv.Value)
	}
}

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().StringVar(&testX, "x", "", "numeric column (first categorical column for chi-square)")
	testCmd.Flags().StringVar(&testY, "y", "", "second column for regression and chi-square")
	testCmd.Flags().StringVar(&testGroup, "group", "", "categorical column defining the groups")
}
