package cmd

import (
	"fmt"

	"github.com/KaramelBytes/edaloom-cli/internal/analysis"
	"github.com/KaramelBytes/edaloom-cli/internal/plot"
	"github.com/KaramelBytes/edaloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descOutputPath string
	descSampleRows int
	descGroupBy    string
	descCorr       bool
	descPlots      bool
	descTopValues  int
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Inspect every column and produce a Markdown summary",
	Long: `Applies the missing-value policy and numeric coercion to each column, then
reports its central tendency: the mean for numeric columns with more than ten
distinct values, the median for the rest, and the mode for text columns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, c, err := openDataset(args[0])
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		opt.DropFraction = c.MissingDropFraction
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = descSampleRows
		}
		if descTopValues > 0 {
			opt.TopValues = descTopValues
		}
		opt.GroupBy = descGroupBy
		opt.Correlations = descCorr

		var p plot.Plotter = plot.Discard{}
		if descPlots {
			p = plotter(c)
		}
		rep, err := analysis.Inspect(ds, p, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of head rows to include")
	describeCmd.Flags().IntVar(&descTopValues, "top", 3, "frequent values listed per text column")
	describeCmd.Flags().StringVar(&descGroupBy, "group-by", "", "column to group numeric summaries by")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descPlots, "plots", false, "write a chart per column to the plot directory")
}
