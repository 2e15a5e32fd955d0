package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/sentiment"
	"github.com/KaramelBytes/edaloom-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	sentColumn  string
	sentBackend string
	sentOutput  string
)

var sentimentCmd = &cobra.Command{
	Use:   "sentiment <file>",
	Short: "Score a text column with a sentiment backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, c, err := openDataset(args[0])
		if err != nil {
			return err
		}
		if !ds.Has(sentColumn) {
			return fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, sentColumn)
		}
		if !ds.IsText(sentColumn) {
			return fmt.Errorf("column %s is not a text column", sentColumn)
		}
		info, ok := sentiment.Lookup(sentBackend)
		if !ok {
			return fmt.Errorf("unknown backend: %s (see 'edaloom backends')", sentBackend)
		}
		b, err := sentiment.Get(info.Name, sentimentConfig(c))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		texts, _ := ds.NonMissingStrings(sentColumn)
		results, err := sentiment.AnalyzeAll(ctx, b, texts)
		if err != nil {
			return err
		}
		if sentOutput != "" {
			if err := writeResultsCSV(sentOutput, results, info); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d scored rows to %s\n", len(results), sentOutput)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), session.ResultsTable(results, info.Subjectivity))
		return nil
	},
}

func writeResultsCSV(path string, results []sentiment.Result, info sentiment.Info) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"text", "score", "sentiment"}
	if info.Subjectivity {
		header = append(header, "subjectivity")
	}
	if info.Remote {
		header = append(header, "stars")
	}
	_ = w.Write(header)
	for _, r := range results {
		row := []string{r.Text, strconv.FormatFloat(r.Score, 'f', 4, 64), string(r.Label)}
		if info.Subjectivity {
			row = append(row, strconv.FormatFloat(r.Subjectivity, 'f', 4, 64))
		}
		if info.Remote {
			row = append(row, strconv.Itoa(r.Stars))
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(sentimentCmd)
	sentimentCmd.Flags().StringVarP(&sentColumn, "column", "c", "", "text column to score")
	sentimentCmd.Flags().StringVarP(&sentBackend, "backend", "b", sentiment.BackendLexicon, "backend: lexicon|polarity|stars")
	sentimentCmd.Flags().StringVarP(&sentOutput, "output", "o", "", "write results as CSV instead of a table")
	_ = sentimentCmd.MarkFlagRequired("column")
}
