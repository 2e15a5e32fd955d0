package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	clsProfile   string
	clsNumeric   int
	clsCategoric int
	clsInclusive bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Show the statistical category of every column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, c, err := openDataset(args[0])
		if err != nil {
			return err
		}
		sc := sessionConfig(c)
		var conf classify.Config
		switch strings.ToLower(clsProfile) {
		case "inference", "":
			conf = sc.Inference
		case "comparison":
			conf = sc.Comparison
		default:
			return fmt.Errorf("unknown --profile: %s (use inference|comparison)", clsProfile)
		}
		f := cmd.Flags()
		if f.Changed("numeric-threshold") {
			conf.NumericThreshold = clsNumeric
		}
		if f.Changed("categorical-threshold") {
			conf.CategoricalThreshold = clsCategoric
		}
		if f.Changed("inclusive") {
			conf.Inclusive = clsInclusive
		}
		cls := classify.Classify(ds, conf)

		tw := tablewriter.NewWriter(cmd.OutOrStdout())
		tw.SetHeader([]string{"Column", "Storage", "Distinct", "Category"})
		for _, col := range cls.Columns {
			storage := "text"
			if col.Numeric {
				storage = "numeric"
			}
			tw.Append([]string{col.Name, storage, strconv.Itoa(col.Distinct), string(col.Category)})
		}
		tw.Render()
		counts := cls.Count()
		var parts []string
		for _, cat := range classify.Categories {
			parts = append(parts, fmt.Sprintf("%s=%d", cat, counts[cat]))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Thresholds: numeric %d, categorical %d, inclusive %t\n", conf.NumericThreshold, conf.CategoricalThreshold, conf.Inclusive)
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&clsProfile, "profile", "inference", "threshold preset: inference|comparison")
	classifyCmd.Flags().IntVar(&clsNumeric, "numeric-threshold", 0, "distinct-value cut-off for numeric columns")
	classifyCmd.Flags().IntVar(&clsCategoric, "categorical-threshold", 0, "distinct-value cut-off for text columns")
	classifyCmd.Flags().BoolVar(&clsInclusive, "inclusive", false, "treat a distinct count equal to the threshold as low cardinality")
}
