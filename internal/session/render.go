package session

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/classify"

	"github.com/olekukonko/tablewriter"
)

// table renders rows with a header into a string for the prompter.
func table(header []string, rows [][]string) string {
	var b strings.Builder
	tw := tablewriter.NewWriter(&b)
	tw.SetHeader(header)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(rows)
	tw.Render()
	return b.String()
}

func classificationTable(cls *classify.Classification) string {
	rows := make([][]string, 0, len(cls.Columns))
	for _, col := range cls.Columns {
		storage := "text"
		if col.Numeric {
			storage = "numeric"
		}
		rows = append(rows, []string{col.Name, storage, strconv.Itoa(col.Distinct), string(col.Category)})
	}
	return table([]string{"Column", "Storage", "Distinct", "Category"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
