package cmd

import (
	"github.com/KaramelBytes/edaloom-cli/internal/sentiment"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List sentiment backends and whether they can be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		sc := sentimentConfig(c)
		tw := tablewriter.NewWriter(cmd.OutOrStdout())
		tw.SetHeader([]string{"Backend", "Title", "Status", "Description"})
		tw.SetAutoWrapText(false)
		for _, info := range sentiment.Backends() {
			status := "✓ available"
			if ok, err := sentiment.Available(info.Name, sc); !ok {
				status = "✗ " + err.Error()
			}
			tw.Append([]string{info.Name, info.Title, status, info.Description})
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}
